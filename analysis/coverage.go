package analysis

import (
	"path"
	"strconv"

	"github.com/zeu5/tabular-rl/core"
	"github.com/zeu5/tabular-rl/util"
)

type coverageDataset struct {
	Timesteps    []int
	UniqueStates []int
}

func (c *coverageDataset) Copy() *coverageDataset {
	return &coverageDataset{
		Timesteps:    util.CopyIntSlice(c.Timesteps),
		UniqueStates: util.CopyIntSlice(c.UniqueStates),
	}
}

// CoverageAnalyzer tracks how many distinct states training has reached,
// sampled after every episode against the cumulative number of timesteps.
type CoverageAnalyzer struct {
	states  map[string]bool
	dataset *coverageDataset
}

var _ core.Analyzer = &CoverageAnalyzer{}

func NewCoverageAnalyzer() *CoverageAnalyzer {
	c := &CoverageAnalyzer{}
	c.Reset()
	return c
}

func (c *CoverageAnalyzer) Reset() {
	c.states = make(map[string]bool)
	c.dataset = &coverageDataset{
		Timesteps:    make([]int, 0),
		UniqueStates: make([]int, 0),
	}
}

func (c *CoverageAnalyzer) Analyze(_ *core.EpisodeContext, trace *core.Trace) {
	for i := 0; i < trace.Len(); i++ {
		step := trace.Step(i)
		c.states[step.State.Hash()] = true
		c.states[step.NextState.Hash()] = true
	}
	lastTimeStep := 0
	if len(c.dataset.Timesteps) > 0 {
		lastTimeStep = c.dataset.Timesteps[len(c.dataset.Timesteps)-1]
	}
	c.dataset.Timesteps = append(c.dataset.Timesteps, lastTimeStep+trace.Len())
	c.dataset.UniqueStates = append(c.dataset.UniqueStates, len(c.states))
}

func (c *CoverageAnalyzer) DataSet() core.DataSet {
	return c.dataset.Copy()
}

type CoverageAnalyzerConstructor struct{}

var _ core.AnalyzerConstructor = &CoverageAnalyzerConstructor{}

func (c *CoverageAnalyzerConstructor) NewAnalyzer(_ string, _ int) core.Analyzer {
	return NewCoverageAnalyzer()
}

type CoverageComparator struct {
	savePath string
}

var _ core.Comparator = &CoverageComparator{}

func NewCoverageComparator(savePath string) *CoverageComparator {
	return &CoverageComparator{
		savePath: path.Join(savePath, "coverage.json"),
	}
}

func (c *CoverageComparator) Compare(experimentNames []string, datasets []core.DataSet) {
	out := make(map[string]*coverageDataset)
	for i, name := range experimentNames {
		ds, ok := datasets[i].(*coverageDataset)
		if !ok {
			continue
		}
		out[name] = ds
	}

	util.SaveJson(c.savePath, out)
}

type CoverageComparatorConstructor struct {
	savePath string
}

var _ core.ComparatorConstructor = &CoverageComparatorConstructor{}

func NewCoverageComparatorConstructor(savePath string) *CoverageComparatorConstructor {
	return &CoverageComparatorConstructor{
		savePath: savePath,
	}
}

func (c *CoverageComparatorConstructor) NewComparator(run int) core.Comparator {
	return NewCoverageComparator(path.Join(c.savePath, strconv.Itoa(run)))
}
