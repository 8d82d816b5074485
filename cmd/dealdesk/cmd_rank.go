package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dealdesk/internal/export"
	"dealdesk/internal/logging"
	"dealdesk/internal/mcda"
	"dealdesk/internal/report"
	"dealdesk/internal/types"
)

var (
	rankXLSX string
	rankOut  outputFlags
)

var rankCmd = &cobra.Command{
	Use:   "rank <comps.json>",
	Short: "Rank comparable properties by weighted criteria",
	Long: `Scores each comparable across nine weighted variables (net rent, TMI,
clear height, office percentage, distance, area difference, year built,
building class, parking ratio) and ranks them on a 0-100 composite. Weights
come from the record or, when absent, from the configured defaults.`,
	Args: cobra.ExactArgs(1),
	RunE: runRank,
}

func runRank(cmd *cobra.Command, args []string) error {
	raw, doc, err := loadKind(args[0], types.KindRanking)
	if err != nil {
		return err
	}

	weights := doc.Ranking.Weights
	if weights == nil {
		weights = cfg.Weights()
	}
	ranked, err := mcda.Rank(doc.Ranking.Subject, doc.Ranking.Comparables, weights)
	if err != nil {
		return err
	}
	logging.Rank("%s: %s", args[0], mcda.Summarize(ranked))
	logger.Info("comparables ranked",
		zap.String("subject", doc.Ranking.Subject.Name),
		zap.Int("count", len(ranked)))

	if rankXLSX != "" {
		if err := export.RankingWorkbook(rankXLSX, doc.Ranking.Subject.Name, ranked); err != nil {
			return err
		}
		fmt.Printf("✅ Workbook written to %s\n", rankXLSX)
		logging.Get(logging.CategoryExport).Info("ranking workbook written to %s", rankXLSX)
	}

	if !rankOut.noStore {
		recordRun(uuid.NewString(), types.KindRanking, args[0], mcda.Summarize(ranked), raw, ranked)
	}
	return rankOut.deliver(report.Ranking(doc.Ranking.Subject.Name, ranked), ranked)
}

func init() {
	rankCmd.Flags().StringVar(&rankXLSX, "xlsx", "", "Also export the ranking as an Excel workbook")
	rankOut.register(rankCmd)
	rootCmd.AddCommand(rankCmd)
}
