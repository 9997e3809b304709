package policies

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeu5/tabular-rl/core"
	"golang.org/x/exp/rand"
)

func table(t *testing.T, values ...float64) *core.QTable {
	q, err := core.NewQTable(1, len(values))
	require.NoError(t, err)
	for a, v := range values {
		q.Set(0, a, v)
	}
	return q
}

func stepContext(seed uint64) *core.StepContext {
	return &core.StepContext{
		EpisodeContext: core.NewEpisodeContext(context.Background(), rand.New(rand.NewSource(seed))),
	}
}

func TestEpsilonZeroIsGreedy(t *testing.T) {
	q := table(t, 0.1, 0.7, 0.3, 0.7)
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		a, err := EpsilonGreedyAction(q, 0, 0, r)
		require.NoError(t, err)
		assert.Equal(t, 1, a)
	}
}

func TestEpsilonOneIsUniform(t *testing.T) {
	q := table(t, 5, 0, 0, 0)
	r := rand.New(rand.NewSource(3))
	counts := make([]int, 4)
	draws := 10000
	for i := 0; i < draws; i++ {
		a, err := EpsilonGreedyAction(q, 0, 1, r)
		require.NoError(t, err)
		counts[a]++
	}
	for a, c := range counts {
		assert.InDelta(t, draws/4, c, 250, "action %d", a)
	}
}

func TestEpsilonOutOfRange(t *testing.T) {
	q := table(t, 0, 0)
	r := rand.New(rand.NewSource(1))
	for _, eps := range []float64{-0.1, 1.1} {
		_, err := EpsilonGreedyAction(q, 0, eps, r)
		assert.ErrorIs(t, err, core.ErrConfiguration)
	}
	_, err := NewEpsilonGreedyPolicy(ConstantSchedule(2))
	assert.ErrorIs(t, err, core.ErrConfiguration)
	_, err = NewEpsilonGreedyPolicy(&LinearSchedule{Start: 1, End: -0.5, Episodes: 10})
	assert.ErrorIs(t, err, core.ErrConfiguration)
	_, err = NewEpsilonGreedyPolicy(&ExponentialSchedule{Start: 1, Min: 0.1, Decay: 0})
	assert.ErrorIs(t, err, core.ErrConfiguration)
	_, err = NewEpsilonGreedyPolicy(nil)
	assert.ErrorIs(t, err, core.ErrConfiguration)
}

func TestSchedules(t *testing.T) {
	assert.Equal(t, 0.3, ConstantSchedule(0.3).Value(1))
	assert.Equal(t, 0.3, ConstantSchedule(0.3).Value(500))

	linear := &LinearSchedule{Start: 1, End: 0, Episodes: 11}
	assert.InDelta(t, 1.0, linear.Value(1), 1e-12)
	assert.InDelta(t, 0.5, linear.Value(6), 1e-12)
	assert.InDelta(t, 0.0, linear.Value(11), 1e-12)
	assert.InDelta(t, 0.0, linear.Value(100), 1e-12)

	exp := &ExponentialSchedule{Start: 1, Min: 0.2, Decay: 0.5}
	assert.InDelta(t, 1.0, exp.Value(1), 1e-12)
	assert.InDelta(t, 0.5, exp.Value(2), 1e-12)
	assert.InDelta(t, 0.25, exp.Value(3), 1e-12)
	assert.InDelta(t, 0.2, exp.Value(4), 1e-12)
}

func TestEpsilonGreedyPolicyFollowsSchedule(t *testing.T) {
	p, err := NewEpsilonGreedyPolicy(&LinearSchedule{Start: 1, End: 0, Episodes: 3})
	require.NoError(t, err)
	assert.Equal(t, 1.0, p.Epsilon())

	eCtx := core.NewEpisodeContext(context.Background(), rand.New(rand.NewSource(1)))
	eCtx.Episode = 3
	p.ResetEpisode(eCtx)
	assert.Equal(t, 0.0, p.Epsilon())

	q := table(t, 0, 2, 1)
	for i := 0; i < 100; i++ {
		assert.Equal(t, 1, p.PickAction(&core.StepContext{EpisodeContext: eCtx}, 0, q))
	}

	p.Reset()
	assert.Equal(t, 1.0, p.Epsilon())
}

func TestSoftmaxPolicy(t *testing.T) {
	_, err := NewSoftmaxPolicy(0)
	assert.ErrorIs(t, err, core.ErrConfiguration)

	p, err := NewSoftmaxPolicy(0.01)
	require.NoError(t, err)
	q := table(t, 0, 1, 0.5)
	step := stepContext(5)
	for i := 0; i < 200; i++ {
		assert.Equal(t, 1, p.PickAction(step, 0, q))
	}

	hot, err := NewSoftmaxPolicy(1e6)
	require.NoError(t, err)
	counts := make([]int, 3)
	for i := 0; i < 3000; i++ {
		counts[hot.PickAction(step, 0, q)]++
	}
	for a, c := range counts {
		assert.InDelta(t, 1000, c, 150, "action %d", a)
	}
}

func TestUCBPolicyTriesEveryActionFirst(t *testing.T) {
	p, err := NewUCBPolicy(1)
	require.NoError(t, err)
	q := table(t, 0, 0, 5)
	step := stepContext(1)

	assert.Equal(t, 0, p.PickAction(step, 0, q))
	assert.Equal(t, 1, p.PickAction(step, 0, q))
	assert.Equal(t, 2, p.PickAction(step, 0, q))
	// once every action was tried the value dominates the bonus
	assert.Equal(t, 2, p.PickAction(step, 0, q))
	assert.Equal(t, 2, p.Visits(0, 2))
	assert.Equal(t, 1, p.Visits(0, 0))

	p.Reset()
	assert.Equal(t, 0, p.Visits(0, 2))

	_, err = NewUCBPolicy(-1)
	assert.ErrorIs(t, err, core.ErrConfiguration)
}

func TestRandomPolicy(t *testing.T) {
	step := stepContext(2)
	_, err := NewRandomPolicy().Act(step, core.NamedState("s"))
	assert.ErrorIs(t, err, core.ErrEvaluation)

	p := NewRandomPolicy(core.NamedAction("a"), core.NamedAction("b"))
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		a, err := p.Act(step, core.NamedState("s"))
		require.NoError(t, err)
		seen[a.Hash()] = true
	}
	assert.Len(t, seen, 2)

	q := table(t, 9, 0, 0)
	counts := make([]int, 3)
	for i := 0; i < 300; i++ {
		counts[p.PickAction(step, 0, q)]++
	}
	for _, c := range counts {
		assert.Greater(t, c, 0)
	}
}
