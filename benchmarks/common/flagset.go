package common

import (
	"fmt"
	"path"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/zeu5/tabular-rl/core"
	"github.com/zeu5/tabular-rl/util"
)

// EnvPrefix prefixes the environment variables that override flags, e.g.
// TABRL_EPISODES or TABRL_LEARNING_RATE.
const EnvPrefix = "TABRL"

type Flags struct {
	CorridorFlags `mapstructure:",squash"`
	GridFlags     `mapstructure:",squash"`
	RunFlags      `mapstructure:",squash"`
	LogFlags      `mapstructure:",squash"`

	SavePath    string `mapstructure:"save-path"`
	Parallelism int    `mapstructure:"parallelism"`
	Debug       bool   `mapstructure:"debug"`
}

type CorridorFlags struct {
	Length      int     `mapstructure:"length"`
	Start       int     `mapstructure:"start"`
	RewardLeft  float64 `mapstructure:"reward-left"`
	RewardRight float64 `mapstructure:"reward-right"`
	Discount    float64 `mapstructure:"discount"`
}

type GridFlags struct {
	Rows        int     `mapstructure:"rows"`
	Cols        int     `mapstructure:"cols"`
	Slip        float64 `mapstructure:"slip"`
	StepPenalty float64 `mapstructure:"step-penalty"`
}

type RunFlags struct {
	NumRuns      int     `mapstructure:"num-runs"`
	Seed         uint64  `mapstructure:"seed"`
	Episodes     int     `mapstructure:"episodes"`
	Horizon      int     `mapstructure:"horizon"`
	LearningRate float64 `mapstructure:"learning-rate"`
	Epsilon      float64 `mapstructure:"epsilon"`
	EpsilonMin   float64 `mapstructure:"epsilon-min"`
	Temperature  float64 `mapstructure:"temperature"`
	UCBConstant  float64 `mapstructure:"ucb-constant"`
	EvalEvery    int     `mapstructure:"eval-every"`
	EvalEpisodes int     `mapstructure:"eval-episodes"`
	EvalHorizon  int     `mapstructure:"eval-horizon"`
}

type LogFlags struct {
	LogLevel  string `mapstructure:"log-level"`
	LogFormat string `mapstructure:"log-format"`
	LogOutput string `mapstructure:"log-output"`
}

func DefaultFlags() *Flags {
	return &Flags{
		CorridorFlags: CorridorFlags{
			Length:      10,
			Start:       4,
			RewardLeft:  1.0,
			RewardRight: 10.0,
			Discount:    0.9,
		},
		GridFlags: GridFlags{
			Rows:        4,
			Cols:        4,
			Slip:        0.2,
			StepPenalty: 0.04,
		},
		RunFlags: RunFlags{
			NumRuns:      1,
			Seed:         0,
			Episodes:     1000,
			Horizon:      100,
			LearningRate: 0.1,
			Epsilon:      0.9,
			EpsilonMin:   0.9,
			Temperature:  1.0,
			UCBConstant:  1.0,
			EvalEvery:    100,
			EvalEpisodes: 100,
			EvalHorizon:  10,
		},
		LogFlags: LogFlags{
			LogLevel:  "info",
			LogFormat: "text",
			LogOutput: "stderr",
		},
		SavePath:    "results",
		Parallelism: 4,
		Debug:       false,
	}
}

// LoadFlags layers, from lowest to highest precedence, the defaults, the
// optional config file, TABRL_* environment variables and the flags the user
// set explicitly on the command line.
func LoadFlags(configFile string, fs *pflag.FlagSet) (*Flags, error) {
	v := viper.New()
	setDefaults(v, DefaultFlags())

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: failed to read config file: %w", core.ErrConfiguration, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		var bindErr error
		fs.VisitAll(func(f *pflag.Flag) {
			if bindErr != nil || !f.Changed {
				return
			}
			bindErr = v.BindPFlag(f.Name, f)
		})
		if bindErr != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrConfiguration, bindErr)
		}
	}

	flags := &Flags{}
	if err := v.Unmarshal(flags); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal config: %w", core.ErrConfiguration, err)
	}
	return flags, nil
}

func setDefaults(v *viper.Viper, d *Flags) {
	v.SetDefault("length", d.Length)
	v.SetDefault("start", d.Start)
	v.SetDefault("reward-left", d.RewardLeft)
	v.SetDefault("reward-right", d.RewardRight)
	v.SetDefault("discount", d.Discount)

	v.SetDefault("rows", d.Rows)
	v.SetDefault("cols", d.Cols)
	v.SetDefault("slip", d.Slip)
	v.SetDefault("step-penalty", d.StepPenalty)

	v.SetDefault("num-runs", d.NumRuns)
	v.SetDefault("seed", d.Seed)
	v.SetDefault("episodes", d.Episodes)
	v.SetDefault("horizon", d.Horizon)
	v.SetDefault("learning-rate", d.LearningRate)
	v.SetDefault("epsilon", d.Epsilon)
	v.SetDefault("epsilon-min", d.EpsilonMin)
	v.SetDefault("temperature", d.Temperature)
	v.SetDefault("ucb-constant", d.UCBConstant)
	v.SetDefault("eval-every", d.EvalEvery)
	v.SetDefault("eval-episodes", d.EvalEpisodes)
	v.SetDefault("eval-horizon", d.EvalHorizon)

	v.SetDefault("log-level", d.LogLevel)
	v.SetDefault("log-format", d.LogFormat)
	v.SetDefault("log-output", d.LogOutput)

	v.SetDefault("save-path", d.SavePath)
	v.SetDefault("parallelism", d.Parallelism)
	v.SetDefault("debug", d.Debug)
}

// TrainConfig maps the run flags onto a trainer configuration.
func (f *Flags) TrainConfig() core.TrainConfig {
	return core.TrainConfig{
		Episodes:     f.Episodes,
		MaxSteps:     f.Horizon,
		LearningRate: f.LearningRate,
		EvalEvery:    f.EvalEvery,
		EvalEpisodes: f.EvalEpisodes,
		EvalMaxSteps: f.EvalHorizon,
	}
}

func (f *Flags) Record() error {
	return util.SaveJson(path.Join(f.SavePath, "config.json"), f)
}
