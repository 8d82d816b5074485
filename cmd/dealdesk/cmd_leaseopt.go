package main

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dealdesk/internal/leaseopt"
	"dealdesk/internal/logging"
	"dealdesk/internal/report"
	"dealdesk/internal/types"
)

var leaseoptOut outputFlags

var leaseoptCmd = &cobra.Command{
	Use:   "leaseopt <deal.json>",
	Short: "Price a lease-option purchase right",
	Long: `Prices the purchase option embedded in a lease-option deal as a European
call under Black-Scholes, derives the put by parity, and grades the quoted
option fee as cheap, fair, or rich against theoretical value.`,
	Args: cobra.ExactArgs(1),
	RunE: runLeaseOpt,
}

func runLeaseOpt(cmd *cobra.Command, args []string) error {
	raw, doc, err := loadKind(args[0], types.KindLeaseOption)
	if err != nil {
		return err
	}

	a, err := leaseopt.Assess(doc.LeaseOption.Inputs, doc.LeaseOption.QuotedFee)
	if err != nil {
		return err
	}
	logging.Get(logging.CategoryLeaseOpt).Info("%s: %s", args[0], a.Headline())
	logger.Info("lease option priced",
		zap.Float64("call", a.Pricing.Call),
		zap.String("verdict", string(a.Verdict)))

	if !leaseoptOut.noStore {
		recordRun(uuid.NewString(), types.KindLeaseOption, args[0], a.Headline(), raw, a)
	}
	return leaseoptOut.deliver(report.LeaseOption(a), a)
}

func init() {
	leaseoptOut.register(leaseoptCmd)
	rootCmd.AddCommand(leaseoptCmd)
}
