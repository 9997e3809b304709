package analysis

import (
	"fmt"
	"os"
	"path"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/zeu5/tabular-rl/core"
)

// CheckpointChart renders the checkpoint means of a run as an interactive
// html page, <chartPath>/<run>_checkpoints.html. Experiments are expected to
// share the same checkpoint schedule; the x axis is taken from the longest.
type CheckpointChart struct {
	chartPath string
	run       int
}

var _ core.Comparator = &CheckpointChart{}

func NewCheckpointChart(chartPath string, run int) *CheckpointChart {
	return &CheckpointChart{chartPath: chartPath, run: run}
}

func (c *CheckpointChart) Compare(names []string, datasets []core.DataSet) {
	page, ok := checkpointPage(names, datasets)
	if !ok {
		return
	}
	if err := os.MkdirAll(c.chartPath, 0755); err != nil {
		return
	}
	f, err := os.Create(path.Join(c.chartPath, strconv.Itoa(c.run)+"_checkpoints.html"))
	if err != nil {
		return
	}
	defer f.Close()
	page.Render(f)
}

func checkpointPage(names []string, datasets []core.DataSet) (*components.Page, bool) {
	var axis []core.Checkpoint
	series := make(map[int][]core.Checkpoint)
	for i := range names {
		checkpoints, ok := datasets[i].([]core.Checkpoint)
		if !ok || len(checkpoints) == 0 {
			continue
		}
		series[i] = checkpoints
		if len(checkpoints) > len(axis) {
			axis = checkpoints
		}
	}
	if len(series) == 0 {
		return nil, false
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "Greedy policy evaluation",
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
	)

	episodes := make([]string, len(axis))
	for i, cp := range axis {
		episodes[i] = fmt.Sprintf("%d", cp.Episode)
	}
	line = line.SetXAxis(episodes)
	for i, name := range names {
		checkpoints, ok := series[i]
		if !ok {
			continue
		}
		items := make([]opts.LineData, 0, len(checkpoints))
		for _, cp := range checkpoints {
			items = append(items, opts.LineData{Value: cp.Mean})
		}
		line.AddSeries(name, items)
	}

	page := components.NewPage()
	page.AddCharts(line)
	return page, true
}

type CheckpointChartConstructor struct {
	chartPath string
}

var _ core.ComparatorConstructor = &CheckpointChartConstructor{}

func NewCheckpointChartConstructor(chartPath string) *CheckpointChartConstructor {
	return &CheckpointChartConstructor{chartPath: chartPath}
}

func (c *CheckpointChartConstructor) NewComparator(run int) core.Comparator {
	return NewCheckpointChart(c.chartPath, run)
}
