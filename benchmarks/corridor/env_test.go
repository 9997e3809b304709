package corridor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeu5/tabular-rl/core"
	"github.com/zeu5/tabular-rl/policies"
	"golang.org/x/exp/rand"
)

func TestCorridorTransitions(t *testing.T) {
	env, err := NewEnvironment(DefaultConfig())
	require.NoError(t, err)
	r := rand.New(rand.NewSource(1))

	next, reward, err := env.SampleTransition(Position(2), Left, r)
	require.NoError(t, err)
	assert.Equal(t, Position(1), next)
	assert.Equal(t, 1.0, reward)
	assert.True(t, env.IsTerminal(next))

	next, reward, err = env.SampleTransition(Position(9), Right, r)
	require.NoError(t, err)
	assert.Equal(t, Position(10), next)
	assert.Equal(t, 10.0, reward)
	assert.True(t, env.IsTerminal(next))

	next, reward, err = env.SampleTransition(Position(5), Right, r)
	require.NoError(t, err)
	assert.Equal(t, Position(6), next)
	assert.Equal(t, 0.0, reward)
	assert.False(t, env.IsTerminal(next))

	_, _, err = env.SampleTransition(Position(11), Right, r)
	assert.ErrorIs(t, err, ErrUnknownState)
	_, _, err = env.SampleTransition(Position(5), Move("up"), r)
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestCorridorRandomStartIsInterior(t *testing.T) {
	config := DefaultConfig()
	config.Start = 0
	env, err := NewEnvironment(config)
	require.NoError(t, err)

	r := rand.New(rand.NewSource(4))
	seen := make(map[Position]bool)
	for i := 0; i < 500; i++ {
		s, err := env.InitialState(r)
		require.NoError(t, err)
		p := s.(Position)
		assert.False(t, env.IsTerminal(p))
		seen[p] = true
	}
	assert.Len(t, seen, 8)
}

func TestCorridorRejectsBadConfig(t *testing.T) {
	for _, c := range []Config{
		{Length: 2, Start: 1, Discount: 0.9},
		{Length: 10, Start: 11, Discount: 0.9},
		{Length: 10, Start: 4, Discount: 1},
	} {
		_, err := NewEnvironment(c)
		assert.ErrorIs(t, err, core.ErrConfiguration)
	}
}

func trainCorridor(t *testing.T, episodes, maxSteps int, seed uint64) *core.TrainResult {
	env, err := NewEnvironment(DefaultConfig())
	require.NoError(t, err)
	policy, err := policies.NewEpsilonGreedyPolicy(policies.ConstantSchedule(0.9))
	require.NoError(t, err)
	trainer, err := core.NewTrainer(env, policy, &core.TrainConfig{
		Episodes:     episodes,
		MaxSteps:     maxSteps,
		LearningRate: 0.1,
	}, rand.New(rand.NewSource(seed)))
	require.NoError(t, err)
	result, err := trainer.Train(context.Background())
	require.NoError(t, err)
	return result
}

func TestCorridorConvergesToMovingRight(t *testing.T) {
	for _, seed := range []uint64{1, 2, 3} {
		result := trainCorridor(t, 500, 50, seed)
		for p := 2; p <= 9; p++ {
			a, err := result.Policy.Action(Position(p))
			require.NoError(t, err)
			assert.Equal(t, Right, a, "seed %d position %d", seed, p)
		}
	}
}

func TestCorridorGreedyBeatsRandom(t *testing.T) {
	env, err := NewEnvironment(DefaultConfig())
	require.NoError(t, err)
	result := trainCorridor(t, 100, 100, 7)

	config := &core.EvalConfig{Episodes: 100, MaxSteps: 10, Discount: env.Discount()}
	greedy, err := core.Evaluate(context.Background(), result.Policy, env, config, rand.New(rand.NewSource(8)))
	require.NoError(t, err)
	random, err := core.Evaluate(context.Background(), policies.NewRandomPolicy(env.Actions()...), env, config, rand.New(rand.NewSource(8)))
	require.NoError(t, err)

	assert.Greater(t, greedy.Mean, random.Mean)
	assert.GreaterOrEqual(t, greedy.StdDev, 0.0)
}
