package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingComparator struct {
	names    [][]string
	datasets [][]DataSet
}

func (r *recordingComparator) Compare(names []string, datasets []DataSet) {
	r.names = append(r.names, names)
	r.datasets = append(r.datasets, datasets)
}

type recordingComparatorConstructor struct {
	comparators []*recordingComparator
}

func (r *recordingComparatorConstructor) NewComparator(_ int) Comparator {
	c := &recordingComparator{}
	r.comparators = append(r.comparators, c)
	return c
}

type countingAnalyzerConstructor struct{}

func (c *countingAnalyzerConstructor) NewAnalyzer(_ string, _ int) Analyzer {
	return &countingAnalyzer{}
}

func TestComparisonSkipsFailedExperiments(t *testing.T) {
	broken := newChainEnv(5, 1)
	broken.broken = 2

	cmp := NewComparison()
	cmp.AddExperiment(&Experiment{Name: "ok", Environment: newChainEnv(5, 2), Policy: &fixedActionPolicy{action: 1}, Seed: 1})
	cmp.AddExperiment(&Experiment{Name: "broken", Environment: broken, Policy: &fixedActionPolicy{action: 1}, Seed: 1})
	comparator := &recordingComparator{}
	cmp.AddAnalysis("count", &countingAnalyzer{}, comparator)

	result, err := cmp.Run(context.Background(), 2, &ComparisonConfig{Train: *testTrainConfig(4, 10)})
	require.NoError(t, err)
	require.Len(t, result.Runs, 2)
	for _, run := range result.Runs {
		assert.Contains(t, run, "ok")
		assert.NotContains(t, run, "broken")
	}

	require.Len(t, comparator.datasets, 2)
	for i := range comparator.datasets {
		assert.Equal(t, []string{"ok", "broken"}, comparator.names[i])
		assert.Equal(t, []int{4, 8, 0}, comparator.datasets[i][0])
		assert.Nil(t, comparator.datasets[i][1])
	}
}

func TestComparisonStopsOnConfigurationError(t *testing.T) {
	cmp := NewComparison()
	cmp.AddExperiment(&Experiment{Name: "ok", Environment: newChainEnv(5, 2), Policy: &fixedActionPolicy{action: 1}})

	_, err := cmp.Run(context.Background(), 1, &ComparisonConfig{Train: TrainConfig{}})
	assert.ErrorIs(t, err, ErrConfiguration)
}

func parallelChainComparison() (*ParallelComparison, *recordingComparatorConstructor) {
	cmp := NewParallelComparison()
	for i, name := range []string{"a", "b", "c", "d", "e"} {
		cmp.AddExperiment(&ParallelExperiment{
			Name:        name,
			Environment: &chainEnvConstructor{n: 7, start: -1},
			Policy:      &uniformPolicyConstructor{},
			Seed:        uint64(10 * i),
		})
	}
	comparators := &recordingComparatorConstructor{}
	cmp.AddAnalysis("count", &countingAnalyzerConstructor{}, comparators)
	return cmp, comparators
}

func TestParallelComparisonIndependentOfParallelism(t *testing.T) {
	config := &ComparisonConfig{Train: *testTrainConfig(30, 20)}

	cmp, _ := parallelChainComparison()
	sequential, err := cmp.Run(context.Background(), 2, config, 1)
	require.NoError(t, err)

	cmp, comparators := parallelChainComparison()
	parallel, err := cmp.Run(context.Background(), 2, config, 4)
	require.NoError(t, err)

	for run := range sequential.Runs {
		require.Len(t, parallel.Runs[run], 5)
		for name, want := range sequential.Runs[run] {
			got := parallel.Runs[run][name]
			require.NotNil(t, got, "run %d experiment %s", run, name)
			assert.Equal(t, want.TotalTimeSteps, got.TotalTimeSteps)
			for _, s := range want.Policy.States() {
				wantQ, _ := want.Policy.QValues(NamedState(s))
				gotQ, _ := got.Policy.QValues(NamedState(s))
				assert.Equal(t, wantQ, gotQ)
			}
		}
	}

	require.Len(t, comparators.comparators, 2)
	for _, c := range comparators.comparators {
		require.Len(t, c.datasets, 1)
		assert.Equal(t, []string{"a", "b", "c", "d", "e"}, c.names[0])
		for _, ds := range c.datasets[0] {
			assert.Equal(t, 30, ds.([]int)[0])
		}
	}
}

func TestParallelComparisonRejectsParallelism(t *testing.T) {
	cmp, _ := parallelChainComparison()
	_, err := cmp.Run(context.Background(), 1, &ComparisonConfig{Train: *testTrainConfig(3, 5)}, 0)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestTraceReturn(t *testing.T) {
	trace := NewTrace()
	assert.Nil(t, trace.Last())
	trace.AddStep(&Step{State: chainState(1), Action: chainAction(1), Reward: 1, NextState: chainState(2)})
	trace.AddStep(&Step{State: chainState(2), Action: chainAction(1), Reward: 2, NextState: chainState(3)})
	trace.AddStep(&Step{State: chainState(3), Action: chainAction(1), Reward: 4, NextState: chainState(4)})

	assert.Equal(t, 3, trace.Len())
	assert.Equal(t, chainState(4), trace.Last().NextState)
	assert.InDelta(t, 7.0, trace.Return(1), 1e-12)
	assert.InDelta(t, 1+2*0.5+4*0.25, trace.Return(0.5), 1e-12)
	assert.False(t, trace.Truncated())
}
