package negotiation

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"dealdesk/internal/types"
)

// probabilitySumTolerance is how far the outcome probabilities may drift from
// 1.0 before the distribution is rejected. Intake data is hand-entered, so a
// cent of rounding slack is allowed but a missing tier is not.
const probabilitySumTolerance = 0.01

// tierRank orders the conventional low/mid/high tier family. Keys are
// normalized tier names; see normalizeTier.
var tierRank = map[string]int{
	"low":    0,
	"mid":    1,
	"medium": 1,
	"high":   2,
}

func normalizeTier(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.TrimSuffix(n, "_award")
	n = strings.TrimSuffix(n, "_outcome")
	return n
}

// ComputeBATNA values the hearing path: the probability-weighted expected
// award across outcome tiers, plus the total cost of reaching a decision.
//
// Probabilities and awards must be keyed by the same tier names. Each
// probability must lie in [0,1] and the set must sum to 1.0 within
// probabilitySumTolerance. Awards and costs must be non-negative. When every
// tier name belongs to the low/mid/high family, awards must not decrease from
// low to high; tiers are returned in that canonical order. Unconventional tier
// names skip the ordering check and are returned sorted by name.
func ComputeBATNA(probabilities, awards map[string]float64, costs HearingCosts) (*BATNA, error) {
	if len(probabilities) == 0 {
		return nil, types.Validationf("probabilities", "at least one outcome tier is required")
	}
	if len(probabilities) != len(awards) {
		return nil, types.Validationf("awards", "got %d award tiers for %d probability tiers", len(awards), len(probabilities))
	}

	tiers := make([]OutcomeTier, 0, len(probabilities))
	sum := 0.0
	for name, p := range probabilities {
		award, ok := awards[name]
		if !ok {
			return nil, types.Validationf("awards", "no award for outcome tier %q", name)
		}
		if p < 0 || p > 1 {
			return nil, types.Validationf("probabilities", "tier %q probability %v outside [0,1]", name, p)
		}
		if award < 0 {
			return nil, types.Validationf("awards", "tier %q award %v is negative", name, award)
		}
		sum += p
		tiers = append(tiers, OutcomeTier{Name: name, Probability: p, Award: award})
	}
	if math.Abs(sum-1.0) > probabilitySumTolerance {
		return nil, types.Validationf("probabilities", "probabilities sum to %.4f, want 1.0 within %.2f", sum, probabilitySumTolerance)
	}
	if err := validateCosts(costs); err != nil {
		return nil, err
	}

	canonical := true
	for _, t := range tiers {
		if _, ok := tierRank[normalizeTier(t.Name)]; !ok {
			canonical = false
			break
		}
	}
	if canonical {
		sort.Slice(tiers, func(i, j int) bool {
			return tierRank[normalizeTier(tiers[i].Name)] < tierRank[normalizeTier(tiers[j].Name)]
		})
		for i := 1; i < len(tiers); i++ {
			if tiers[i].Award < tiers[i-1].Award {
				return nil, types.Validationf("awards", "tier %q award %v below tier %q award %v; awards must not decrease from low to high",
					tiers[i].Name, tiers[i].Award, tiers[i-1].Name, tiers[i-1].Award)
			}
		}
	} else {
		sort.Slice(tiers, func(i, j int) bool { return tiers[i].Name < tiers[j].Name })
	}

	expected := 0.0
	for _, t := range tiers {
		expected += t.Probability * t.Award
	}
	total := costs.Total()

	return &BATNA{
		ExpectedAward: expected,
		TotalCosts:    total,
		Net:           expected + total,
		Tiers:         tiers,
	}, nil
}

func validateCosts(costs HearingCosts) error {
	check := func(field string, v float64) error {
		if v < 0 {
			return types.Validationf(field, "cost %v is negative", v)
		}
		return nil
	}
	if err := check("costs.legal", costs.Legal); err != nil {
		return err
	}
	if err := check("costs.expert", costs.Expert); err != nil {
		return err
	}
	if err := check("costs.time", costs.Time); err != nil {
		return err
	}
	for name, v := range costs.Other {
		if err := check(fmt.Sprintf("costs.other.%s", name), v); err != nil {
			return err
		}
	}
	return nil
}
