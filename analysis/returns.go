package analysis

import (
	"github.com/zeu5/tabular-rl/core"
	"github.com/zeu5/tabular-rl/util"
)

// ReturnAnalyzer records the discounted return of every training episode.
// Its dataset is a []float64 indexed by episode-1.
type ReturnAnalyzer struct {
	discount float64
	returns  []float64
}

var _ core.Analyzer = &ReturnAnalyzer{}

func NewReturnAnalyzer(discount float64) *ReturnAnalyzer {
	return &ReturnAnalyzer{
		discount: discount,
		returns:  make([]float64, 0),
	}
}

func (r *ReturnAnalyzer) Analyze(_ *core.EpisodeContext, trace *core.Trace) {
	r.returns = append(r.returns, trace.Return(r.discount))
}

func (r *ReturnAnalyzer) DataSet() core.DataSet {
	return util.CopyFloatSlice(r.returns)
}

func (r *ReturnAnalyzer) Reset() {
	r.returns = make([]float64, 0)
}

type ReturnAnalyzerConstructor struct {
	discount float64
}

var _ core.AnalyzerConstructor = &ReturnAnalyzerConstructor{}

func NewReturnAnalyzerConstructor(discount float64) *ReturnAnalyzerConstructor {
	return &ReturnAnalyzerConstructor{discount: discount}
}

func (c *ReturnAnalyzerConstructor) NewAnalyzer(_ string, _ int) core.Analyzer {
	return NewReturnAnalyzer(c.discount)
}

// EpisodeLengthAnalyzer records the number of steps of every training
// episode. Its dataset is a []int.
type EpisodeLengthAnalyzer struct {
	lengths []int
}

var _ core.Analyzer = &EpisodeLengthAnalyzer{}

func NewEpisodeLengthAnalyzer() *EpisodeLengthAnalyzer {
	return &EpisodeLengthAnalyzer{
		lengths: make([]int, 0),
	}
}

func (e *EpisodeLengthAnalyzer) Analyze(_ *core.EpisodeContext, trace *core.Trace) {
	e.lengths = append(e.lengths, trace.Len())
}

func (e *EpisodeLengthAnalyzer) DataSet() core.DataSet {
	return util.CopyIntSlice(e.lengths)
}

func (e *EpisodeLengthAnalyzer) Reset() {
	e.lengths = make([]int, 0)
}

type EpisodeLengthAnalyzerConstructor struct{}

var _ core.AnalyzerConstructor = &EpisodeLengthAnalyzerConstructor{}

func (e *EpisodeLengthAnalyzerConstructor) NewAnalyzer(_ string, _ int) core.Analyzer {
	return NewEpisodeLengthAnalyzer()
}
