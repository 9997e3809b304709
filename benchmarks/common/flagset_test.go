package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeu5/tabular-rl/core"
	"github.com/zeu5/tabular-rl/policies"
)

func TestLoadFlagsDefaults(t *testing.T) {
	flags, err := LoadFlags("", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultFlags(), flags)
}

func TestLoadFlagsPrecedence(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("episodes: 250\nlearning-rate: 0.3\nhorizon: 40\n"), 0644))

	t.Setenv("TABRL_LEARNING_RATE", "0.5")
	t.Setenv("TABRL_SEED", "17")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("horizon", 100, "")
	fs.Int("length", 10, "")
	require.NoError(t, fs.Parse([]string{"--horizon", "60"}))

	flags, err := LoadFlags(configFile, fs)
	require.NoError(t, err)
	assert.Equal(t, 250, flags.Episodes)
	assert.Equal(t, 0.5, flags.LearningRate)
	assert.Equal(t, uint64(17), flags.Seed)
	assert.Equal(t, 60, flags.Horizon)
	// unset flags keep lower layers
	assert.Equal(t, 10, flags.Length)
	assert.Equal(t, 0.9, flags.Discount)
}

func TestLoadFlagsMissingConfigFile(t *testing.T) {
	_, err := LoadFlags(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.ErrorIs(t, err, core.ErrConfiguration)
}

func TestFlagsSchedule(t *testing.T) {
	flags := DefaultFlags()
	assert.Equal(t, policies.ConstantSchedule(0.9), flags.Schedule())

	flags.EpsilonMin = 0.1
	s, ok := flags.Schedule().(*policies.LinearSchedule)
	require.True(t, ok)
	assert.Equal(t, 0.9, s.Start)
	assert.Equal(t, 0.1, s.End)
	assert.Equal(t, flags.Episodes, s.Episodes)
}

func TestRecord(t *testing.T) {
	flags := DefaultFlags()
	flags.SavePath = t.TempDir()
	require.NoError(t, flags.Record())
	_, err := os.Stat(filepath.Join(flags.SavePath, "config.json"))
	assert.NoError(t, err)
}
