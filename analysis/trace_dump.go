package analysis

import (
	"bytes"
	"fmt"
	"os"
	"path"

	"github.com/zeu5/tabular-rl/core"
)

// TraceDumpAnalyzer writes every training episode from thresholdEpisode on
// to a text file under <savePath>/traces.
type TraceDumpAnalyzer struct {
	savePath         string
	exp              string
	thresholdEpisode int
}

var _ core.Analyzer = &TraceDumpAnalyzer{}

func NewTraceDumpAnalyzer(savePath string, threshold int) *TraceDumpAnalyzer {
	tracePath := path.Join(savePath, "traces")
	if _, err := os.Stat(tracePath); os.IsNotExist(err) {
		os.MkdirAll(tracePath, 0755)
	}
	return &TraceDumpAnalyzer{
		savePath:         tracePath,
		thresholdEpisode: threshold,
	}
}

func (a *TraceDumpAnalyzer) Analyze(ctx *core.EpisodeContext, trace *core.Trace) {
	if ctx.Episode < a.thresholdEpisode {
		return
	}
	buf := new(bytes.Buffer)
	for i := 0; i < trace.Len(); i++ {
		buf.WriteString(fmt.Sprintf("Step %d\n%s\n", i, stepToString(trace.Step(i))))
	}
	if trace.Truncated() {
		buf.WriteString("Truncated\n")
	}
	fmt.Fprintf(buf, "Return: %f\n", trace.Return(1))

	fileName := fmt.Sprintf("%d_trace_%d.txt", ctx.Run, ctx.Episode)
	if a.exp != "" {
		fileName = fmt.Sprintf("%d_%s_trace_%d.txt", ctx.Run, a.exp, ctx.Episode)
	}
	os.WriteFile(path.Join(a.savePath, fileName), buf.Bytes(), 0644)
}

func stepToString(step *core.Step) string {
	return fmt.Sprintf(
		"State: %s\nAction: %s\nReward: %f\nNext State: %s\n",
		step.State.Hash(),
		step.Action.Hash(),
		step.Reward,
		step.NextState.Hash(),
	)
}

func (a *TraceDumpAnalyzer) DataSet() core.DataSet {
	return nil
}

func (a *TraceDumpAnalyzer) Reset() {}

type TraceDumpAnalyzerConstructor struct {
	SavePath         string
	ThresholdEpisode int
}

var _ core.AnalyzerConstructor = &TraceDumpAnalyzerConstructor{}

func NewTraceDumpAnalyzerConstructor(savePath string, thresholdEpisode int) *TraceDumpAnalyzerConstructor {
	return &TraceDumpAnalyzerConstructor{
		SavePath:         savePath,
		ThresholdEpisode: thresholdEpisode,
	}
}

func (c *TraceDumpAnalyzerConstructor) NewAnalyzer(exp string, _ int) core.Analyzer {
	a := NewTraceDumpAnalyzer(c.SavePath, c.ThresholdEpisode)
	a.exp = exp
	return a
}
