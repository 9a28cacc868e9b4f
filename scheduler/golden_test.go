package scheduler_test

import (
	"fmt"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/rje4242/graft/internal/roundutil"
	"github.com/rje4242/graft/scheduler"
	"github.com/stretchr/testify/require"
)

// canonicalPrograms mirrors the scenario table's own turtle programs:
// the ones whose raw tick-by-tick trace is worth pinning so a future
// change to scheduling order or tick granularity shows up as a diff
// instead of a silent behavior change.
var canonicalPrograms = []struct {
	name     string
	src      string
	n        int
	maxForks int
}{
	{"two_strokes", "S() S()", 2, 1},
	{"turn_then_jump_then_stroke", "d+=90 s=25 J() S()", 4, 1},
	{"fork_joins_next_tick", "F() S()", 3, 2},
	{"fork_lineage_churns_per_tick", "T(5, F) d+=10", 3, 1},
	{"top_level_for_splits_per_tick", "arr=[7,2] For(arr,{:(it)x=it D()}) S()", 3, 1},
	{"label_sets_restart_point", "d=90 ^ d+=90 S()", 4, 1},
}

func TestGraftrunDebugTraces(t *testing.T) {
	for _, tc := range canonicalPrograms {
		t.Run(tc.name, func(t *testing.T) {
			program := mustProgram(t, tc.src)
			steps, err := scheduler.RunDebug(program, tc.n, noRand, tc.maxForks)
			require.NoError(t, err)

			var trace string
			for i, tick := range steps {
				trace += fmt.Sprintf("tick %d:\n", i)
				for _, st := range tick {
					trace += fmt.Sprintf("  turtle %d:", st.ForkID)
					if len(st.Strokes) == 0 {
						trace += " (none)\n"
						continue
					}
					trace += "\n"
					for _, s := range roundutil.RoundBatch(st.Strokes) {
						trace += fmt.Sprintf("    %s\n", s.String())
					}
				}
			}
			snaps.MatchSnapshot(t, trace)
		})
	}
}
