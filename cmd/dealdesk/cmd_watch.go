package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"dealdesk/internal/batch"
	"dealdesk/internal/store"
	"dealdesk/internal/ui"
	"dealdesk/internal/watch"
)

var (
	watchOutDir   string
	watchReports  bool
	watchNoWrite  bool
	watchNoStore  bool
	watchDebounce time.Duration
	watchIgnore   []string
)

var watchCmd = &cobra.Command{
	Use:   "watch <file|directory>",
	Short: "Recompute scenarios on every save",
	Long: `Watches one scenario file or a directory of them and reruns the matching
calculator whenever a file changes. Saves within the debounce window
collapse into one recompute. Results land beside each input unless
--no-write or --out-dir says otherwise.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	var st *store.Store
	if !watchNoStore {
		var err error
		st, err = openStore()
		if err != nil {
			return err
		}
		defer st.Close()
	}
	runner := batch.New(cfg, st)

	styles := ui.DefaultStyles()
	wopts := watch.Options{
		Debounce: watchDebounce,
		Ignore:   watchIgnore,
		OnCycle: func(res watch.CycleResult) {
			printCycle(styles, res)
		},
	}
	if !watchNoWrite {
		wopts.Write = &batch.WriteOptions{OutDir: watchOutDir, Reports: watchReports}
	}

	w, err := watch.New(runner, args[0], wopts)
	if err != nil {
		return err
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	// Compute the current state once so the watcher starts from fresh output.
	if err := w.RunOnce(ctx); err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}

	fmt.Printf("Watching %s (Ctrl+C to stop)\n", args[0])
	<-ctx.Done()

	stats := w.GetStats()
	fmt.Printf("\nStopped after %d events, %d recomputes, %d failures.\n",
		stats.Events, stats.Recomputes, stats.Failures)
	return nil
}

func printCycle(styles ui.Styles, res watch.CycleResult) {
	stamp := styles.Muted.Render(time.Now().Format("15:04:05"))
	if res.Err != nil {
		fmt.Printf("%s %s %s: %v\n", stamp, styles.Error.Render("✗"), res.Path, res.Err)
		return
	}
	fmt.Printf("%s %s %s: %s\n", stamp, styles.Success.Render("✓"), res.Path, res.Outcome.Summary)
}

func init() {
	watchCmd.Flags().StringVar(&watchOutDir, "out-dir", "", "Write results here instead of beside each input")
	watchCmd.Flags().BoolVar(&watchReports, "reports", false, "Also write a markdown report per cycle")
	watchCmd.Flags().BoolVar(&watchNoWrite, "no-write", false, "Print cycle summaries without writing artifacts")
	watchCmd.Flags().BoolVar(&watchNoStore, "no-store", false, "Skip recording runs in history")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 0, "Debounce window for file events (default 500ms)")
	watchCmd.Flags().StringSliceVar(&watchIgnore, "ignore", nil, "Glob patterns to skip, relative to the watched directory (repeatable)")
	rootCmd.AddCommand(watchCmd)
}
