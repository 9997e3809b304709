package util

import (
	"fmt"
	"io"
	"strings"

	"github.com/logrusorgru/aurora"
	"github.com/zeu5/tabular-rl/core"
)

// RenderPolicy prints one row per state: the greedy action, its value and
// the action values the choice was made from. States whose values are all
// zero were never updated and are dimmed.
func RenderPolicy(w io.Writer, policy *core.GreedyPolicy, colors bool) {
	au := aurora.NewAurora(colors)

	actions := policy.Actions()
	header := make([]string, len(actions))
	for i, a := range actions {
		header[i] = fmt.Sprintf("%8s", a.Hash())
	}
	fmt.Fprintf(w, "%8s | %8s | %8s | %s\n", "state", "action", "value", strings.Join(header, " "))

	for _, hash := range policy.States() {
		state := core.NamedState(hash)
		action, err := policy.Action(state)
		if err != nil {
			continue
		}
		value, _ := policy.Value(state)
		qvalues, _ := policy.QValues(state)

		untouched := true
		cells := make([]string, len(qvalues))
		for i, v := range qvalues {
			if v != 0 {
				untouched = false
			}
			cells[i] = fmt.Sprintf("%8.3f", v)
		}

		if untouched {
			fmt.Fprintf(w, "%8s | %8s | %8s | %s\n",
				hash,
				au.Gray(12, "-"),
				au.Gray(12, fmt.Sprintf("%.3f", value)),
				au.Gray(12, strings.Join(cells, " ")))
			continue
		}
		fmt.Fprintf(w, "%8s | %8s | %8s | %s\n",
			hash,
			au.Green(action.Hash()),
			au.Blue(fmt.Sprintf("%.3f", value)),
			strings.Join(cells, " "))
	}
}
