package analysis

import (
	"github.com/zeu5/tabular-rl/core"
	"github.com/zeu5/tabular-rl/util"
)

// VisitAnalyzer counts how often each state was left during training.
// Its dataset is a map[string]int keyed by state hash.
type VisitAnalyzer struct {
	visits map[string]int
}

var _ core.Analyzer = &VisitAnalyzer{}

func NewVisitAnalyzer() *VisitAnalyzer {
	return &VisitAnalyzer{
		visits: make(map[string]int),
	}
}

func (v *VisitAnalyzer) Analyze(_ *core.EpisodeContext, trace *core.Trace) {
	for i := 0; i < trace.Len(); i++ {
		v.visits[trace.Step(i).State.Hash()]++
	}
}

func (v *VisitAnalyzer) DataSet() core.DataSet {
	return util.CopyStringIntMap(v.visits)
}

func (v *VisitAnalyzer) Reset() {
	v.visits = make(map[string]int)
}

type VisitAnalyzerConstructor struct{}

var _ core.AnalyzerConstructor = &VisitAnalyzerConstructor{}

func (v *VisitAnalyzerConstructor) NewAnalyzer(_ string, _ int) core.Analyzer {
	return NewVisitAnalyzer()
}
