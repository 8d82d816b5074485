package watch_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"dealdesk/internal/batch"
	"dealdesk/internal/config"
	"dealdesk/internal/types"
	"dealdesk/internal/watch"
)

const settlementJSON = `{
	"matter": "Corridor parcel 12",
	"buyer_max": 200000,
	"seller_min": 150000,
	"probabilities": {"low": 0.2, "mid": 0.5, "high": 0.3},
	"awards": {"low": 140000, "mid": 175000, "high": 210000},
	"costs": {"legal": 45000, "expert": 25000, "time": 25000},
	"owner_profile": {
		"motivation": {"financial_need": "moderate", "emotional_attachment": "moderate", "business_impact": "moderate"},
		"sophistication": {"real_estate_experience": "some", "legal_representation": "general_counsel", "previous_negotiations": "some"},
		"alternatives": {"relocation_options": "limited", "financial_flexibility": "moderate", "timeline_pressure": "moderate"}
	}
}`

// testDebounce keeps cycles fast; the sweep ticker still runs at 100ms.
const testDebounce = 50 * time.Millisecond

func newWatcher(t *testing.T, target string, opts watch.Options) (*watch.Watcher, chan watch.CycleResult) {
	t.Helper()
	cycles := make(chan watch.CycleResult, 8)
	if opts.Debounce == 0 {
		opts.Debounce = testDebounce
	}
	if opts.OnCycle == nil {
		opts.OnCycle = func(r watch.CycleResult) { cycles <- r }
	}
	w, err := watch.New(batch.New(config.DefaultConfig(), nil), target, opts)
	require.NoError(t, err)
	return w, cycles
}

func waitCycle(t *testing.T, cycles chan watch.CycleResult) watch.CycleResult {
	t.Helper()
	select {
	case res := <-cycles:
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("no recompute cycle within 5s")
		return watch.CycleResult{}
	}
}

func expectQuiet(t *testing.T, cycles chan watch.CycleResult) {
	t.Helper()
	select {
	case res := <-cycles:
		t.Fatalf("unexpected cycle for %s", res.Path)
	case <-time.After(500 * time.Millisecond):
	}
}

func TestWatcherRecomputesOnChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "deal.json")
	require.NoError(t, os.WriteFile(path, []byte(settlementJSON), 0644))

	w, cycles := newWatcher(t, dir, watch.Options{})
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte(settlementJSON), 0644))

	res := waitCycle(t, cycles)
	require.NoError(t, res.Err)
	require.NotNil(t, res.Outcome)
	require.Equal(t, types.KindSettlement, res.Outcome.Kind)
	require.Contains(t, res.Outcome.Summary, "negotiate toward")

	stats := w.GetStats()
	require.GreaterOrEqual(t, stats.Events, 1)
	require.GreaterOrEqual(t, stats.Recomputes, 1)
}

func TestWatcherWritesArtifactsWithoutFeedback(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "deal.json")
	require.NoError(t, os.WriteFile(path, []byte(settlementJSON), 0644))

	w, cycles := newWatcher(t, dir, watch.Options{
		Write: &batch.WriteOptions{Reports: true},
	})
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte(settlementJSON), 0644))

	res := waitCycle(t, cycles)
	require.NoError(t, res.Err)
	require.Len(t, res.Written, 2)
	for _, written := range res.Written {
		_, err := os.Stat(written)
		require.NoError(t, err, written)
	}

	// The result JSON just written into the watched directory must not
	// trigger another cycle.
	expectQuiet(t, cycles)
}

func TestWatcherSingleFileFilter(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	target := filepath.Join(dir, "deal.json")
	require.NoError(t, os.WriteFile(target, []byte(settlementJSON), 0644))

	w, cycles := newWatcher(t, target, watch.Options{})
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte(settlementJSON), 0644))
	expectQuiet(t, cycles)

	require.NoError(t, os.WriteFile(target, []byte(settlementJSON), 0644))
	res := waitCycle(t, cycles)
	require.Equal(t, filepath.Clean(target), filepath.Clean(res.Path))
}

func TestWatcherIgnorePatterns(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	w, cycles := newWatcher(t, dir, watch.Options{
		Ignore: []string{"draft-*.json", "scratch/**"},
	})
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "draft-deal.json"), []byte(settlementJSON), 0644))
	expectQuiet(t, cycles)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "deal.json"), []byte(settlementJSON), 0644))
	res := waitCycle(t, cycles)
	require.NoError(t, res.Err)
	require.Equal(t, filepath.Join(dir, "deal.json"), filepath.Clean(res.Path))
}

func TestWatcherReportsBadScenario(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	w, cycles := newWatcher(t, dir, watch.Options{})
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("not json"), 0644))

	res := waitCycle(t, cycles)
	require.Error(t, res.Err)
	require.True(t, types.IsInputError(res.Err), "want input error, got %v", res.Err)
	require.Nil(t, res.Outcome)

	require.GreaterOrEqual(t, w.GetStats().Failures, 1)
}

func TestWatcherRunOnce(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte(settlementJSON), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.json"), []byte(settlementJSON), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.result.json"), []byte("{}"), 0644))

	w, cycles := newWatcher(t, dir, watch.Options{})
	defer w.Stop()

	require.NoError(t, w.RunOnce(context.Background()))
	require.Len(t, cycles, 2)
}

func TestWatcherStartStopIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	w, _ := newWatcher(t, dir, watch.Options{})

	require.False(t, w.IsWatching())
	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Start(context.Background()))
	require.True(t, w.IsWatching())

	w.Stop()
	w.Stop()
	require.False(t, w.IsWatching())
}
