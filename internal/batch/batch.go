// Package batch discovers scenario files by glob and runs each one through
// the calculator matching its kind, with bounded concurrency. The watch loop
// reuses the single-file pipeline for its recompute cycles.
package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"dealdesk/internal/appraisal"
	"dealdesk/internal/config"
	"dealdesk/internal/leaseopt"
	"dealdesk/internal/logging"
	"dealdesk/internal/mcda"
	"dealdesk/internal/negotiation"
	"dealdesk/internal/report"
	"dealdesk/internal/scenario"
	"dealdesk/internal/store"
	"dealdesk/internal/types"
)

// ResultSuffix marks files this package wrote. Discovery skips them, and the
// watch loop ignores their events, so a run's output never feeds back in as
// a scenario.
const ResultSuffix = ".result.json"

// Runner executes scenario files against the configured calculators. A nil
// store disables run persistence.
type Runner struct {
	cfg *config.Config
	st  *store.Store
}

// New creates a Runner. The store may be nil.
func New(cfg *config.Config, st *store.Store) *Runner {
	return &Runner{cfg: cfg, st: st}
}

// Outcome is one completed calculation: the typed result, its markdown
// report, and the persisted run id when a store is attached.
type Outcome struct {
	Path    string
	Kind    types.Kind
	RunID   string
	Summary string
	Report  string
	Result  any
}

// FileResult pairs a discovered file with its outcome or failure.
type FileResult struct {
	Path    string
	Outcome *Outcome
	Err     error
}

// Summary aggregates one batch run.
type Summary struct {
	Pattern   string
	Results   []FileResult
	Succeeded int
	Failed    int
	Elapsed   time.Duration
}

// Discover expands a doublestar pattern to the sorted list of matching
// files. A bare directory argument expands with the configured pattern.
// Files written by a previous run are skipped.
func (r *Runner) Discover(pattern string) ([]string, error) {
	if info, err := os.Stat(pattern); err == nil && info.IsDir() {
		pattern = filepath.Join(pattern, r.cfg.Batch.Pattern)
	}

	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, types.Validationf("pattern", "bad glob %q: %v", pattern, err)
	}

	var files []string
	for _, m := range matches {
		if strings.HasSuffix(m, ResultSuffix) {
			continue
		}
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, m)
	}
	sort.Strings(files)
	return files, nil
}

// Run processes every file matching the pattern. Individual file failures
// are collected, not fatal; the summary carries both tallies. The error
// return covers discovery problems and context cancellation only.
func (r *Runner) Run(ctx context.Context, pattern string) (*Summary, error) {
	started := time.Now()

	files, err := r.Discover(pattern)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, types.Validationf("pattern", "no scenario files match %q", pattern)
	}

	workers := r.cfg.Batch.Concurrency
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	logging.Batch("run started: %d files, %d workers, pattern %q", len(files), workers, pattern)

	results := make([]FileResult, len(files))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, path := range files {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			out, err := r.ExecuteFile(egCtx, path)
			results[i] = FileResult{Path: path, Outcome: out, Err: err}
			if err != nil {
				logging.Batch("%s: failed: %v", path, err)
			} else {
				logging.Batch("%s: %s", path, out.Summary)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	s := &Summary{Pattern: pattern, Results: results, Elapsed: time.Since(started)}
	for _, res := range results {
		if res.Err != nil {
			s.Failed++
		} else {
			s.Succeeded++
		}
	}
	logging.Batch("run finished: %d succeeded, %d failed in %s",
		s.Succeeded, s.Failed, s.Elapsed.Round(time.Millisecond))
	return s, nil
}

// ExecuteFile loads one scenario file, dispatches it to the calculator for
// its kind, and records the run when a store is attached.
func (r *Runner) ExecuteFile(ctx context.Context, path string) (*Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	doc, err := scenario.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc.Source = path

	out := &Outcome{Path: path, Kind: doc.Kind}
	switch doc.Kind {
	case types.KindSettlement:
		a, err := negotiation.Analyze(*doc.Settlement, negotiation.Options{
			FallbackConfidence: r.cfg.Negotiation.DefaultConfidence,
			FallbackRounds:     r.cfg.Negotiation.DefaultRounds,
		})
		if err != nil {
			return nil, err
		}
		out.RunID = a.ID
		out.Summary = a.Headline()
		out.Report = report.Settlement(a)
		out.Result = a

	case types.KindAppraisal:
		v, err := appraisal.Appraise(*doc.Appraisal, r.cfg.Reconcile)
		if err != nil {
			return nil, err
		}
		out.Summary = v.Headline()
		out.Report = report.Appraisal(v)
		out.Result = v

	case types.KindRanking:
		weights := doc.Ranking.Weights
		if weights == nil {
			weights = r.cfg.Weights()
		}
		ranked, err := mcda.Rank(doc.Ranking.Subject, doc.Ranking.Comparables, weights)
		if err != nil {
			return nil, err
		}
		out.Summary = mcda.Summarize(ranked)
		out.Report = report.Ranking(doc.Ranking.Subject.Name, ranked)
		out.Result = ranked

	case types.KindLeaseOption:
		a, err := leaseopt.Assess(doc.LeaseOption.Inputs, doc.LeaseOption.QuotedFee)
		if err != nil {
			return nil, err
		}
		out.Summary = a.Headline()
		out.Report = report.LeaseOption(a)
		out.Result = a

	default:
		return nil, types.Validationf("kind", "unhandled scenario kind %q", doc.Kind)
	}

	if out.RunID == "" {
		out.RunID = uuid.NewString()
	}

	if r.st != nil {
		resJSON, err := json.Marshal(out.Result)
		if err != nil {
			return nil, fmt.Errorf("failed to encode result: %w", err)
		}
		run := &store.Run{
			ID:      out.RunID,
			Kind:    out.Kind,
			Source:  path,
			Summary: out.Summary,
			Input:   raw,
			Result:  resJSON,
		}
		if err := r.st.SaveRun(run); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// WriteOptions say where per-file artifacts land. The zero value writes the
// result JSON next to its input.
type WriteOptions struct {
	OutDir  string
	Reports bool
}

// WriteOutcome writes the result JSON, and optionally the markdown report,
// for one outcome. It returns the paths written.
func WriteOutcome(out *Outcome, opts WriteOptions) ([]string, error) {
	dir := filepath.Dir(out.Path)
	if opts.OutDir != "" {
		dir = opts.OutDir
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	base := strings.TrimSuffix(filepath.Base(out.Path), filepath.Ext(out.Path))

	data, err := json.MarshalIndent(out.Result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	resultPath := filepath.Join(dir, base+ResultSuffix)
	if err := os.WriteFile(resultPath, append(data, '\n'), 0644); err != nil {
		return nil, fmt.Errorf("failed to write result: %w", err)
	}
	paths := []string{resultPath}

	if opts.Reports {
		reportPath := filepath.Join(dir, base+".report.md")
		if err := os.WriteFile(reportPath, []byte(out.Report), 0644); err != nil {
			return nil, fmt.Errorf("failed to write report: %w", err)
		}
		paths = append(paths, reportPath)
	}
	return paths, nil
}
