package analysis

import (
	"os"
	"path"
	"strconv"

	"github.com/zeu5/tabular-rl/core"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// CheckpointPlotter draws the checkpoint means of every experiment of a run
// into <plotPath>/<run>_checkpoints.png.
type CheckpointPlotter struct {
	plotPath string
	run      int
}

var _ core.Comparator = &CheckpointPlotter{}

func NewCheckpointPlotter(plotPath string, run int) *CheckpointPlotter {
	if _, err := os.Stat(plotPath); err != nil {
		os.MkdirAll(plotPath, os.ModePerm)
	}
	return &CheckpointPlotter{plotPath: plotPath, run: run}
}

func (c *CheckpointPlotter) Compare(names []string, datasets []core.DataSet) {
	p := plot.New()
	p.Title.Text = "Greedy policy evaluation"
	p.X.Label.Text = "Episode"
	p.Y.Label.Text = "Mean discounted return"
	for i := 0; i < len(names); i++ {
		checkpoints, ok := datasets[i].([]core.Checkpoint)
		if !ok || len(checkpoints) == 0 {
			continue
		}
		points := make(plotter.XYs, len(checkpoints))
		for j, cp := range checkpoints {
			points[j] = plotter.XY{
				X: float64(cp.Episode),
				Y: cp.Mean,
			}
		}
		line, err := plotter.NewLine(points)
		if err != nil {
			continue
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(names[i], line)
	}
	p.Save(8*vg.Inch, 8*vg.Inch, path.Join(c.plotPath, strconv.Itoa(c.run)+"_checkpoints.png"))
}

type CheckpointPlotterConstructor struct {
	plotPath string
}

var _ core.ComparatorConstructor = &CheckpointPlotterConstructor{}

func NewCheckpointPlotterConstructor(plotPath string) *CheckpointPlotterConstructor {
	return &CheckpointPlotterConstructor{plotPath: plotPath}
}

func (c *CheckpointPlotterConstructor) NewComparator(run int) core.Comparator {
	return NewCheckpointPlotter(c.plotPath, run)
}

// ReturnPlotter draws the training return of every episode, one line per
// experiment, into <plotPath>/<run>_returns.png.
type ReturnPlotter struct {
	plotPath string
	run      int
}

var _ core.Comparator = &ReturnPlotter{}

func NewReturnPlotter(plotPath string, run int) *ReturnPlotter {
	if _, err := os.Stat(plotPath); err != nil {
		os.MkdirAll(plotPath, os.ModePerm)
	}
	return &ReturnPlotter{plotPath: plotPath, run: run}
}

func (r *ReturnPlotter) Compare(names []string, datasets []core.DataSet) {
	p := plot.New()
	p.Title.Text = "Training returns"
	p.X.Label.Text = "Episode"
	p.Y.Label.Text = "Discounted return"
	for i := 0; i < len(names); i++ {
		returns, ok := datasets[i].([]float64)
		if !ok || len(returns) == 0 {
			continue
		}
		points := make(plotter.XYs, len(returns))
		for j, v := range returns {
			points[j] = plotter.XY{X: float64(j + 1), Y: v}
		}
		line, err := plotter.NewLine(points)
		if err != nil {
			continue
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(names[i], line)
	}
	p.Save(8*vg.Inch, 8*vg.Inch, path.Join(r.plotPath, strconv.Itoa(r.run)+"_returns.png"))
}

type ReturnPlotterConstructor struct {
	plotPath string
}

var _ core.ComparatorConstructor = &ReturnPlotterConstructor{}

func NewReturnPlotterConstructor(plotPath string) *ReturnPlotterConstructor {
	return &ReturnPlotterConstructor{plotPath: plotPath}
}

func (r *ReturnPlotterConstructor) NewComparator(run int) core.Comparator {
	return NewReturnPlotter(r.plotPath, run)
}
