package analysis

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeu5/tabular-rl/core"
	"github.com/zeu5/tabular-rl/util"
)

func testTrace() *core.Trace {
	trace := core.NewTrace()
	trace.AddStep(&core.Step{State: core.NamedState("a"), Action: core.NamedAction("go"), Reward: 0, NextState: core.NamedState("b")})
	trace.AddStep(&core.Step{State: core.NamedState("b"), Action: core.NamedAction("go"), Reward: 2, NextState: core.NamedState("c")})
	return trace
}

func episodeContext(episode int) *core.EpisodeContext {
	eCtx := core.NewEpisodeContext(context.Background(), nil)
	eCtx.Episode = episode
	return eCtx
}

func TestReturnAndLengthAnalyzers(t *testing.T) {
	returns := NewReturnAnalyzer(0.5)
	lengths := NewEpisodeLengthAnalyzer()
	for i := 1; i <= 3; i++ {
		returns.Analyze(episodeContext(i), testTrace())
		lengths.Analyze(episodeContext(i), testTrace())
	}
	assert.Equal(t, []float64{1, 1, 1}, returns.DataSet())
	assert.Equal(t, []int{2, 2, 2}, lengths.DataSet())

	ds := returns.DataSet().([]float64)
	returns.Reset()
	assert.Len(t, ds, 3)
	assert.Empty(t, returns.DataSet())
}

func TestVisitAndCoverageAnalyzers(t *testing.T) {
	visits := NewVisitAnalyzer()
	coverage := NewCoverageAnalyzer()
	for i := 1; i <= 2; i++ {
		visits.Analyze(episodeContext(i), testTrace())
		coverage.Analyze(episodeContext(i), testTrace())
	}
	assert.Equal(t, map[string]int{"a": 2, "b": 2}, visits.DataSet())

	cov := coverage.DataSet().(*coverageDataset)
	assert.Equal(t, []int{2, 4}, cov.Timesteps)
	assert.Equal(t, []int{3, 3}, cov.UniqueStates)
}

func TestCheckpointAnalyzer(t *testing.T) {
	a := NewCheckpointAnalyzer()
	a.ObserveCheckpoint(core.Checkpoint{Episode: 10, Mean: 1})
	a.ObserveCheckpoint(core.Checkpoint{Episode: 20, Mean: 2})
	ds := a.DataSet().([]core.Checkpoint)
	require.Len(t, ds, 2)
	assert.Equal(t, 20, ds[1].Episode)

	a.Reset()
	assert.Empty(t, a.DataSet())
	assert.Len(t, ds, 2)
}

func TestComparatorsWriteFiles(t *testing.T) {
	dir := t.TempDir()
	names := []string{"greedy", "failed"}
	checkpoints := []core.DataSet{
		[]core.Checkpoint{{Episode: 10, Mean: 1}, {Episode: 20, Mean: 3, StdDev: 0.5}},
		nil,
	}

	NewCheckpointPlotterConstructor(dir).NewComparator(0).Compare(names, checkpoints)
	NewCheckpointChartConstructor(dir).NewComparator(0).Compare(names, checkpoints)
	NewReturnPlotterConstructor(dir).NewComparator(1).Compare(names, []core.DataSet{[]float64{0, 1, 2}, nil})
	NewJsonComparatorConstructor(dir, "checkpoints.json").NewComparator(2).Compare(names, checkpoints)

	for _, f := range []string{"0_checkpoints.png", "0_checkpoints.html", "1_returns.png", "2_checkpoints.json"} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, f)
	}

	out := make(map[string][]core.Checkpoint)
	require.NoError(t, util.ReadJson(filepath.Join(dir, "2_checkpoints.json"), &out))
	assert.Equal(t, checkpoints[0], out["greedy"])
	assert.NotContains(t, out, "failed")
}

func TestCoverageComparator(t *testing.T) {
	dir := t.TempDir()
	c := NewCoverageAnalyzer()
	c.Analyze(episodeContext(1), testTrace())
	NewCoverageComparatorConstructor(dir).NewComparator(3).Compare([]string{"x"}, []core.DataSet{c.DataSet()})

	out := make(map[string]*coverageDataset)
	require.NoError(t, util.ReadJson(filepath.Join(dir, "3", "coverage.json"), &out))
	assert.Equal(t, []int{3}, out["x"].UniqueStates)
}

func TestTraceDumpAnalyzer(t *testing.T) {
	dir := t.TempDir()
	a := NewTraceDumpAnalyzerConstructor(dir, 2).NewAnalyzer("exp", 0)
	a.Analyze(episodeContext(1), testTrace())
	a.Analyze(episodeContext(2), testTrace())

	_, err := os.Stat(filepath.Join(dir, "traces", "0_exp_trace_1.txt"))
	assert.True(t, os.IsNotExist(err))
	bs, err := os.ReadFile(filepath.Join(dir, "traces", "0_exp_trace_2.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(bs), "Next State: c")
	assert.Contains(t, string(bs), "Return: 2.000000")
}
