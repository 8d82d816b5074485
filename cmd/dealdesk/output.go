package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dealdesk/internal/report"
	"dealdesk/internal/scenario"
	"dealdesk/internal/store"
	"dealdesk/internal/types"
)

// outputFlags are the delivery options shared by the calculator commands.
type outputFlags struct {
	output  string
	report  string
	render  bool
	noStore bool
}

func (f *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Write the result JSON to this file")
	cmd.Flags().StringVar(&f.report, "report", "", "Write the markdown report to this file")
	cmd.Flags().BoolVar(&f.render, "render", false, "Render the report with terminal styling")
	cmd.Flags().BoolVar(&f.noStore, "no-store", false, "Skip recording the run in history")
}

// deliver writes the requested artifacts and prints the report.
func (f *outputFlags) deliver(markdown string, result any) error {
	if f.output != "" {
		if err := writeJSON(f.output, result); err != nil {
			return err
		}
		fmt.Printf("✅ Result written to %s\n", f.output)
	}
	if f.report != "" {
		if err := os.WriteFile(f.report, []byte(markdown), 0644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Printf("✅ Report written to %s\n", f.report)
	}

	rendered, err := report.Render(markdown, !f.render)
	if err != nil {
		return err
	}
	fmt.Println(rendered)
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}

// openStore opens the run history database under the workspace.
func openStore() (*store.Store, error) {
	return store.New(cfg.DatabasePath())
}

// recordRun persists one calculation in history. Storage trouble is logged,
// not fatal; the analysis already happened and its report still prints.
func recordRun(id string, kind types.Kind, source, summary string, input []byte, result any) {
	st, err := openStore()
	if err != nil {
		logger.Warn("run history unavailable", zap.Error(err))
		return
	}
	defer st.Close()

	res, err := json.Marshal(result)
	if err != nil {
		logger.Warn("failed to encode run result", zap.Error(err))
		return
	}
	if err := st.SaveRun(&store.Run{
		ID:      id,
		Kind:    kind,
		Source:  source,
		Summary: summary,
		Input:   input,
		Result:  res,
	}); err != nil {
		logger.Warn("failed to record run", zap.Error(err))
		return
	}
	logger.Debug("run recorded", zap.String("id", id), zap.String("kind", string(kind)))
}

// loadKind reads one scenario file and requires it to hold the given kind.
// It returns the raw bytes alongside the parsed document so history keeps
// the input exactly as written.
func loadKind(path string, want types.Kind) ([]byte, *scenario.File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	doc, err := scenario.Parse(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	doc.Source = path
	if doc.Kind != want {
		return nil, nil, fmt.Errorf("%s holds a %s record, want %s", path, doc.Kind, want)
	}
	return raw, doc, nil
}
