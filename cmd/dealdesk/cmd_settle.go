package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dealdesk/internal/logging"
	"dealdesk/internal/negotiation"
	"dealdesk/internal/report"
	"dealdesk/internal/types"
)

var (
	settleConfidence float64
	settleRounds     int
	settleOut        outputFlags
)

var settleCmd = &cobra.Command{
	Use:   "settle <scenario.json>",
	Short: "Analyze a settlement position",
	Long: `Runs the settlement engine over one scenario record: probability-weighted
hearing value net of costs, zone of possible agreement, holdout risk
scoring, and either a settlement range with a concession schedule or a
proceed-to-hearing recommendation.`,
	Args: cobra.ExactArgs(1),
	RunE: runSettle,
}

func runSettle(cmd *cobra.Command, args []string) error {
	raw, doc, err := loadKind(args[0], types.KindSettlement)
	if err != nil {
		return err
	}

	opts := negotiation.Options{
		FallbackConfidence: cfg.Negotiation.DefaultConfidence,
		FallbackRounds:     cfg.Negotiation.DefaultRounds,
	}
	// Only a flag the user actually set may override the scenario file.
	if cmd.Flags().Changed("confidence") {
		opts.Confidence = settleConfidence
	}
	if cmd.Flags().Changed("rounds") {
		opts.Rounds = settleRounds
	}

	a, err := negotiation.Analyze(*doc.Settlement, opts)
	if err != nil {
		return err
	}
	logging.Settle("%s: %s", args[0], a.Headline())
	logger.Info("settlement analyzed",
		zap.String("matter", a.Matter),
		zap.String("strategy", string(a.Strategy)))

	if !settleOut.noStore {
		recordRun(a.ID, types.KindSettlement, args[0], a.Headline(), raw, a)
	}
	return settleOut.deliver(report.Settlement(a), a)
}

func init() {
	settleCmd.Flags().Float64Var(&settleConfidence, "confidence", 0, "Negotiation confidence in (0,1); overrides the scenario")
	settleCmd.Flags().IntVar(&settleRounds, "rounds", 0, "Concession rounds (2-12); overrides the scenario")
	settleOut.register(settleCmd)
	rootCmd.AddCommand(settleCmd)
}
