package analysis

import (
	"path"
	"strconv"

	"github.com/zeu5/tabular-rl/core"
	"github.com/zeu5/tabular-rl/util"
)

// JsonComparator saves the datasets of a run, keyed by experiment name, to
// <savePath>/<run>_<fileName>. Failed experiments are left out.
type JsonComparator struct {
	file string
}

var _ core.Comparator = &JsonComparator{}

func NewJsonComparator(savePath, fileName string, run int) *JsonComparator {
	return &JsonComparator{
		file: path.Join(savePath, strconv.Itoa(run)+"_"+fileName),
	}
}

func (j *JsonComparator) Compare(names []string, datasets []core.DataSet) {
	out := make(map[string]core.DataSet)
	for i, name := range names {
		if datasets[i] == nil {
			continue
		}
		out[name] = datasets[i]
	}
	util.SaveJson(j.file, out)
}

type JsonComparatorConstructor struct {
	savePath string
	fileName string
}

var _ core.ComparatorConstructor = &JsonComparatorConstructor{}

func NewJsonComparatorConstructor(savePath, fileName string) *JsonComparatorConstructor {
	return &JsonComparatorConstructor{
		savePath: savePath,
		fileName: fileName,
	}
}

func (j *JsonComparatorConstructor) NewComparator(run int) core.Comparator {
	return NewJsonComparator(j.savePath, j.fileName, run)
}
