// Package report turns analysis results into markdown briefs and renders
// them for the terminal. Section order is fixed per report so regulars can
// scan straight to the numbers they need.
package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/glamour"

	"dealdesk/internal/appraisal"
	"dealdesk/internal/leaseopt"
	"dealdesk/internal/mcda"
	"dealdesk/internal/money"
	"dealdesk/internal/negotiation"
)

// Render styles markdown for the terminal. Plain mode passes the markdown
// through untouched for piping and files.
func Render(markdown string, plain bool) (string, error) {
	if plain {
		return markdown, nil
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return markdown, fmt.Errorf("failed to build renderer: %w", err)
	}
	out, err := renderer.Render(markdown)
	if err != nil {
		return markdown, fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}

// Settlement builds the negotiation brief.
func Settlement(a *negotiation.Analysis) string {
	var b strings.Builder

	title := "Settlement Analysis"
	if a.Matter != "" {
		title += " - " + a.Matter
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	b.WriteString("## Executive Summary\n\n")
	if a.Strategy == negotiation.StrategySettle {
		b.WriteString("**Recommendation: negotiate a settlement.**\n\n")
	} else {
		b.WriteString("**Recommendation: proceed to hearing.**\n\n")
	}
	fmt.Fprintf(&b, "%s\n\n", a.Rationale)

	b.WriteString("## BATNA Analysis\n\n")
	b.WriteString("| Outcome | Probability | Award |\n")
	b.WriteString("|---------|------------:|------:|\n")
	for _, tier := range a.BATNA.Tiers {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", tier.Name, money.Percent(tier.Probability), money.USD(tier.Award))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "- Expected award: **%s**\n", money.USD(a.BATNA.ExpectedAward))
	fmt.Fprintf(&b, "- Hearing costs: %s\n", money.USD(a.BATNA.TotalCosts))
	fmt.Fprintf(&b, "- Net BATNA: **%s**\n\n", money.USD(a.BATNA.Net))

	b.WriteString("## ZOPA Analysis\n\n")
	if a.ZOPA.Exists {
		fmt.Fprintf(&b, "- Zone: **%s to %s**\n", money.USD(a.ZOPA.Lower), money.USD(a.ZOPA.Upper))
		fmt.Fprintf(&b, "- Midpoint: %s\n\n", money.USD(a.ZOPA.Midpoint))
	} else {
		fmt.Fprintf(&b, "- **No zone of possible agreement.** The positions are %s apart.\n\n", money.USD(a.ZOPA.Gap))
	}

	b.WriteString("## Holdout Risk\n\n")
	fmt.Fprintf(&b, "Score **%d/30** - band **%s** - escalation probability %s\n\n",
		a.Holdout.Score, a.Holdout.Band, money.Percent(a.Holdout.Probability))
	b.WriteString("| Factor | Level | Points |\n")
	b.WriteString("|--------|-------|-------:|\n")
	for _, c := range a.Holdout.Contributions {
		fmt.Fprintf(&b, "| %s | %s | %d |\n", c.Factor, c.Level, c.Points)
	}
	b.WriteString("\n")

	if a.Range != nil {
		b.WriteString("## Settlement Range\n\n")
		fmt.Fprintf(&b, "- Opening offer: **%s**", money.USD(a.Range.Opening))
		if a.Range.Discount > 0 {
			fmt.Fprintf(&b, " (%s below target for the %s band)", money.Percent(a.Range.Discount), a.Holdout.Band)
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "- Target: **%s**\n", money.USD(a.Range.Target))
		fmt.Fprintf(&b, "- Floor: %s\n", money.USD(a.Range.Floor))
		fmt.Fprintf(&b, "- Ceiling: %s\n", money.USD(a.Range.Ceiling))
		fmt.Fprintf(&b, "- Walkaway: **%s**\n\n", money.USD(a.Range.Walkaway))
	}

	if len(a.Schedule) > 0 {
		b.WriteString("## Concession Strategy\n\n")
		b.WriteString("| Round | Offer | Concession | Tactical Note |\n")
		b.WriteString("|------:|------:|-----------:|---------------|\n")
		for _, step := range a.Schedule {
			fmt.Fprintf(&b, "| %d | %s | %s | %s |\n",
				step.Round, money.USD(step.Offer), money.USD(step.Concession), step.Note)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Action Items\n\n")
	for _, item := range settlementActions(a) {
		fmt.Fprintf(&b, "- %s\n", item)
	}
	return b.String()
}

func settlementActions(a *negotiation.Analysis) []string {
	if a.Strategy == negotiation.StrategyHearing {
		return []string{
			fmt.Sprintf("Budget %s for the hearing path.", money.USD(a.BATNA.TotalCosts)),
			"Brief counsel and line up the expert witnesses.",
			fmt.Sprintf("Reopen talks only if the seller drops below %s.", money.USD(a.BATNA.Net)),
		}
	}
	items := []string{
		fmt.Sprintf("Open at %s with comparable evidence in hand.", money.USD(a.Range.Opening)),
		fmt.Sprintf("Secure settlement authority up to the %s walkaway.", money.USD(a.Range.Walkaway)),
		fmt.Sprintf("Keep the hearing fallback warm; net BATNA is %s.", money.USD(a.BATNA.Net)),
	}
	if a.Holdout.Band == negotiation.BandHigh || a.Holdout.Band == negotiation.BandCritical {
		items = append(items, "Plan for a long negotiation; the owner can afford to hold out.")
	}
	return items
}

// Appraisal builds the cost-approach brief.
func Appraisal(v *appraisal.Valuation) string {
	var b strings.Builder

	title := "Cost Approach Valuation"
	if v.Property != "" {
		title += " - " + v.Property
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	b.WriteString("## Cost Build-Up\n\n")
	b.WriteString("| Component | Amount |\n")
	b.WriteString("|-----------|-------:|\n")
	fmt.Fprintf(&b, "| Direct cost (materials + labor) | %s |\n", money.USD(v.Cost.DirectCost))
	fmt.Fprintf(&b, "| Overhead | %s |\n", money.USD(v.Cost.Overhead))
	fmt.Fprintf(&b, "| Entrepreneurial profit | %s |\n", money.USD(v.Cost.Profit))
	fmt.Fprintf(&b, "| **Replacement cost new** | **%s** |\n\n", money.USD(v.Cost.RCN))

	b.WriteString("## Depreciation\n\n")
	fmt.Fprintf(&b, "- Combined rate: %s\n", money.Percent(v.DepreciationRate))
	fmt.Fprintf(&b, "- Amount: %s\n", money.USD(v.DepreciationAmount))
	fmt.Fprintf(&b, "- Depreciated improvements: **%s**\n\n", money.USD(v.DepreciatedCost))

	b.WriteString("## Indicated Value\n\n")
	if v.LandValue > 0 {
		fmt.Fprintf(&b, "- Land: %s\n", money.USD(v.LandValue))
	}
	fmt.Fprintf(&b, "- Cost indication: **%s**\n\n", money.USD(v.CostValue))

	if v.Reconciled != nil {
		b.WriteString("## Reconciliation\n\n")
		fmt.Fprintf(&b, "- Market indication: %s\n", money.USD(v.MarketValue))
		fmt.Fprintf(&b, "- Spread: %s", money.Percent(v.Reconciled.Spread))
		if v.Reconciled.WithinThreshold {
			b.WriteString(" (within threshold)\n")
		} else {
			b.WriteString(" (beyond threshold; market weighted up)\n")
		}
		fmt.Fprintf(&b, "- Weights: %s cost / %s market\n",
			money.Percent(v.Reconciled.CostWeight), money.Percent(v.Reconciled.MarketWeight))
		fmt.Fprintf(&b, "- **Reconciled value: %s**\n", money.USD(v.FinalValue))
	} else {
		fmt.Fprintf(&b, "**Final value: %s**\n", money.USD(v.FinalValue))
	}
	return b.String()
}

// Ranking builds the comparable ranking brief.
func Ranking(subject string, ranked []mcda.Ranked) string {
	var b strings.Builder

	title := "Comparable Ranking"
	if subject != "" {
		title += " - " + subject
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	b.WriteString("## Rankings\n\n")
	b.WriteString("| Rank | Comparable | Composite | Net Rent | TMI | Distance | Class |\n")
	b.WriteString("|-----:|------------|----------:|---------:|----:|---------:|:-----:|\n")
	for _, r := range ranked {
		fmt.Fprintf(&b, "| %d | %s | %.1f | %s | %s | %.1f mi | %s |\n",
			r.Rank, r.Name, r.Composite,
			money.USD(r.NetRent), money.USD(r.TMI), r.Distance, r.BuildingClass)
	}
	b.WriteString("\n")

	if len(ranked) > 0 {
		b.WriteString("## Method\n\n")
		fmt.Fprintf(&b, "Scores are min-max normalized across %d comparables over %d weighted criteria; composite is on a 0-100 scale. Best match: **%s**.\n",
			len(ranked), len(mcda.CriterionNames()), ranked[0].Name)
	}
	return b.String()
}

// LeaseOption builds the option pricing brief.
func LeaseOption(a *leaseopt.Assessment) string {
	var b strings.Builder

	b.WriteString("# Lease Option Analysis\n\n")

	b.WriteString("## Option Pricing\n\n")
	fmt.Fprintf(&b, "- Call (purchase option): **%s**\n", money.USD(a.Pricing.Call))
	fmt.Fprintf(&b, "- Put: %s\n", money.USD(a.Pricing.Put))
	fmt.Fprintf(&b, "- Call delta: %.4f\n", a.Pricing.CallDelta)
	fmt.Fprintf(&b, "- d1 / d2: %.4f / %.4f\n\n", a.Pricing.D1, a.Pricing.D2)

	b.WriteString("## Fee Assessment\n\n")
	fmt.Fprintf(&b, "- Quoted option fee: %s\n", money.USD(a.QuotedFee))
	fmt.Fprintf(&b, "- Theoretical value: %s\n", money.USD(a.Pricing.Call))
	switch {
	case math.IsInf(a.Premium, 1):
		b.WriteString("- Premium over theoretical: n/a (option has no theoretical value)\n")
	case a.Premium >= 0:
		fmt.Fprintf(&b, "- Premium over theoretical: %s\n", money.Percent(a.Premium))
	default:
		fmt.Fprintf(&b, "- Discount to theoretical: %s\n", money.Percent(-a.Premium))
	}
	fmt.Fprintf(&b, "- **Verdict: %s**\n", a.Verdict)
	return b.String()
}
