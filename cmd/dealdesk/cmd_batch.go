package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dealdesk/internal/batch"
	"dealdesk/internal/store"
	"dealdesk/internal/ui"
)

var (
	batchOutDir  string
	batchReports bool
	batchWorkers int
	batchNoStore bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <glob|directory>",
	Short: "Run every scenario file matching a glob",
	Long: `Discovers scenario files with a doublestar glob (a bare directory expands
with the configured pattern), detects each record's kind, and runs them
concurrently. Result JSON lands beside each input unless --out-dir is
given. The exit status is non-zero when any file fails.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func runBatch(cmd *cobra.Command, args []string) error {
	if batchWorkers > 0 {
		cfg.Batch.Concurrency = batchWorkers
	}

	var st *store.Store
	if !batchNoStore {
		var err error
		st, err = openStore()
		if err != nil {
			return err
		}
		defer st.Close()
	}
	runner := batch.New(cfg, st)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	summary, err := runner.Run(ctx, args[0])
	if err != nil {
		return err
	}

	writeOpts := batch.WriteOptions{OutDir: batchOutDir, Reports: batchReports}
	styles := ui.DefaultStyles()
	tbl := ui.NewSimpleTable("Batch Results", "File", "Kind", "Status", "Summary")
	failed := 0
	for _, res := range summary.Results {
		if res.Err != nil {
			failed++
			tbl.AddRow(res.Path, "-", styles.Error.Render("failed"), res.Err.Error())
			continue
		}
		if _, err := batch.WriteOutcome(res.Outcome, writeOpts); err != nil {
			failed++
			tbl.AddRow(res.Path, string(res.Outcome.Kind), styles.Error.Render("failed"), err.Error())
			continue
		}
		tbl.AddRow(res.Path, string(res.Outcome.Kind), styles.Success.Render("ok"), res.Outcome.Summary)
	}
	fmt.Print(tbl.View(styles))
	fmt.Printf("\n%d files: %d succeeded, %d failed in %s\n",
		len(summary.Results), len(summary.Results)-failed, failed,
		summary.Elapsed.Round(time.Millisecond))
	logger.Info("batch finished",
		zap.Int("files", len(summary.Results)),
		zap.Int("failed", failed))

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(summary.Results))
	}
	return nil
}

func init() {
	batchCmd.Flags().StringVar(&batchOutDir, "out-dir", "", "Write results here instead of beside each input")
	batchCmd.Flags().BoolVar(&batchReports, "reports", false, "Also write a markdown report per file")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "Concurrent workers (default from config)")
	batchCmd.Flags().BoolVar(&batchNoStore, "no-store", false, "Skip recording runs in history")
	rootCmd.AddCommand(batchCmd)
}
