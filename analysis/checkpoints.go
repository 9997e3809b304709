package analysis

import (
	"github.com/zeu5/tabular-rl/core"
)

// CheckpointAnalyzer keeps the evaluation checkpoints of a training run so
// that comparators can draw learning curves. Its dataset is a
// []core.Checkpoint.
type CheckpointAnalyzer struct {
	checkpoints []core.Checkpoint
}

var _ core.Analyzer = &CheckpointAnalyzer{}
var _ core.CheckpointObserver = &CheckpointAnalyzer{}

func NewCheckpointAnalyzer() *CheckpointAnalyzer {
	return &CheckpointAnalyzer{
		checkpoints: make([]core.Checkpoint, 0),
	}
}

func (c *CheckpointAnalyzer) Analyze(_ *core.EpisodeContext, _ *core.Trace) {}

func (c *CheckpointAnalyzer) ObserveCheckpoint(cp core.Checkpoint) {
	c.checkpoints = append(c.checkpoints, cp)
}

func (c *CheckpointAnalyzer) DataSet() core.DataSet {
	out := make([]core.Checkpoint, len(c.checkpoints))
	copy(out, c.checkpoints)
	return out
}

func (c *CheckpointAnalyzer) Reset() {
	c.checkpoints = make([]core.Checkpoint, 0)
}

type CheckpointAnalyzerConstructor struct{}

var _ core.AnalyzerConstructor = &CheckpointAnalyzerConstructor{}

func (c *CheckpointAnalyzerConstructor) NewAnalyzer(_ string, _ int) core.Analyzer {
	return NewCheckpointAnalyzer()
}
