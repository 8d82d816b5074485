package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"dealdesk/internal/appraisal"
	"dealdesk/internal/export"
	"dealdesk/internal/leaseopt"
	"dealdesk/internal/logging"
	"dealdesk/internal/mcda"
	"dealdesk/internal/negotiation"
	"dealdesk/internal/report"
	"dealdesk/internal/store"
	"dealdesk/internal/types"
	"dealdesk/internal/ui"
)

var (
	historyKind   string
	historyLimit  int
	historyJSON   bool
	historyRender bool
	exportXLSX    string
	exportLimit   int
	pruneAge      time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect recorded runs",
	Long: `Every analysis lands in the workspace history database. List recent runs,
replay a stored report, export runs to a spreadsheet, or prune old ones.`,
	RunE: runHistoryList,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Replay one run's report from its stored result",
	Long:  `Accepts a full run id or any unique prefix of one.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export runs to an Excel workbook",
	Args:  cobra.NoArgs,
	RunE:  runHistoryExport,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete runs older than a cutoff",
	Args:  cobra.NoArgs,
	RunE:  runHistoryPrune,
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count runs by kind",
	Args:  cobra.NoArgs,
	RunE:  runHistoryStats,
}

func parseKindFlag() (types.Kind, error) {
	if historyKind == "" {
		return "", nil
	}
	return types.ParseKind(historyKind)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	kind, err := parseKindFlag()
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(kind, historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	styles := ui.DefaultStyles()
	tbl := ui.NewSimpleTable("Run History", "ID", "Kind", "When", "Summary")
	for _, r := range runs {
		tbl.AddRow(shortID(r.ID), string(r.Kind),
			r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Summary)
	}
	fmt.Print(tbl.View(styles))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := st.GetRun(args[0])
	if err != nil {
		return err
	}

	if historyJSON {
		var buf json.RawMessage = run.Result
		data, err := json.MarshalIndent(buf, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	styles := ui.DefaultStyles()
	fmt.Println(styles.Muted.Render(fmt.Sprintf("%s  %s  %s",
		run.ID, run.Kind, run.CreatedAt.Local().Format("2006-01-02 15:04:05"))))
	if run.Source != "" {
		fmt.Println(styles.Muted.Render("source: " + run.Source))
	}
	fmt.Println(styles.RenderDivider(60))

	md, err := replayReport(run)
	if err != nil {
		return err
	}
	rendered, err := report.Render(md, !historyRender)
	if err != nil {
		return err
	}
	fmt.Println(rendered)
	return nil
}

// replayReport rebuilds a run's markdown report from its stored result.
func replayReport(run *store.Run) (string, error) {
	switch run.Kind {
	case types.KindSettlement:
		var a negotiation.Analysis
		if err := json.Unmarshal(run.Result, &a); err != nil {
			return "", fmt.Errorf("failed to decode stored result: %w", err)
		}
		return report.Settlement(&a), nil
	case types.KindAppraisal:
		var v appraisal.Valuation
		if err := json.Unmarshal(run.Result, &v); err != nil {
			return "", fmt.Errorf("failed to decode stored result: %w", err)
		}
		return report.Appraisal(&v), nil
	case types.KindRanking:
		var ranked []mcda.Ranked
		if err := json.Unmarshal(run.Result, &ranked); err != nil {
			return "", fmt.Errorf("failed to decode stored result: %w", err)
		}
		return report.Ranking("", ranked), nil
	case types.KindLeaseOption:
		var a leaseopt.Assessment
		if err := json.Unmarshal(run.Result, &a); err != nil {
			return "", fmt.Errorf("failed to decode stored result: %w", err)
		}
		return report.LeaseOption(&a), nil
	}
	return "", types.Validationf("kind", "unhandled run kind %q", run.Kind)
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	kind, err := parseKindFlag()
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(kind, exportLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs to export.")
		return nil
	}
	if err := export.HistoryWorkbook(exportXLSX, runs); err != nil {
		return err
	}
	logging.Get(logging.CategoryExport).Info("history workbook written to %s", exportXLSX)
	fmt.Printf("✅ Exported %d runs to %s\n", len(runs), exportXLSX)
	return nil
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	n, err := st.PruneOlderThan(pruneAge)
	if err != nil {
		return err
	}
	logging.Store("pruned %d runs older than %s", n, pruneAge)
	fmt.Printf("✅ Pruned %d runs older than %s\n", n, pruneAge)
	return nil
}

func runHistoryStats(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	stats, err := st.Stats()
	if err != nil {
		return err
	}
	styles := ui.DefaultStyles()
	tbl := ui.NewSimpleTable("Runs by Kind", "Kind", "Runs").AlignRight(1)
	total := 0
	for _, kind := range types.Kinds() {
		if n, ok := stats[kind]; ok {
			tbl.AddRow(string(kind), fmt.Sprintf("%d", n))
			total += n
		}
	}
	tbl.AddRow("total", fmt.Sprintf("%d", total))
	fmt.Print(tbl.View(styles))
	return nil
}

func init() {
	historyCmd.PersistentFlags().StringVar(&historyKind, "kind", "", "Filter by record kind (settlement, appraisal, ranking, lease_option)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum runs to list")
	historyListCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum runs to list")
	historyShowCmd.Flags().BoolVar(&historyJSON, "json", false, "Print the stored result JSON instead of the report")
	historyShowCmd.Flags().BoolVar(&historyRender, "render", false, "Render the report with terminal styling")
	historyExportCmd.Flags().StringVar(&exportXLSX, "xlsx", "history.xlsx", "Workbook path to write")
	historyExportCmd.Flags().IntVar(&exportLimit, "limit", 200, "Maximum runs to export")
	historyPruneCmd.Flags().DurationVar(&pruneAge, "older-than", 30*24*time.Hour, "Delete runs older than this")

	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyExportCmd,
		historyPruneCmd, historyStatsCmd, historyBrowseCmd)
	rootCmd.AddCommand(historyCmd)
}
