package main

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dealdesk/internal/appraisal"
	"dealdesk/internal/logging"
	"dealdesk/internal/report"
	"dealdesk/internal/types"
)

var appraiseOut outputFlags

var appraiseCmd = &cobra.Command{
	Use:   "appraise <input.json>",
	Short: "Value a property by the cost approach",
	Long: `Builds replacement cost new from direct costs, applies age-life and
obsolescence depreciation, adds land value, and reconciles the cost
indication against a market indication when one is present.`,
	Args: cobra.ExactArgs(1),
	RunE: runAppraise,
}

func runAppraise(cmd *cobra.Command, args []string) error {
	raw, doc, err := loadKind(args[0], types.KindAppraisal)
	if err != nil {
		return err
	}

	v, err := appraisal.Appraise(*doc.Appraisal, cfg.Reconcile)
	if err != nil {
		return err
	}
	logging.Appraise("%s: %s", args[0], v.Headline())
	logger.Info("appraisal complete",
		zap.String("property", v.Property),
		zap.Float64("final_value", v.FinalValue))

	if !appraiseOut.noStore {
		recordRun(uuid.NewString(), types.KindAppraisal, args[0], v.Headline(), raw, v)
	}
	return appraiseOut.deliver(report.Appraisal(v), v)
}

func init() {
	appraiseOut.register(appraiseCmd)
	rootCmd.AddCommand(appraiseCmd)
}
