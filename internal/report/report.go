// Package report implements the execution log writer and the console
// summary renderer: a successful compilation writes the plan-library file
// and an execution log containing the input instruction, the intermediate
// LTLf formula, the DFA, the partition map, and per-disjunct search
// statistics. A failed compilation writes the log up to the failure point
// and exits non-zero (the exit-code side of that is cmd/ltlplanc's job;
// this package only writes the log and renders it).
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/dekarrin/rosed"

	"github.com/dekarrin/ltlplan/internal/util"
)

// consoleWidth is the fixed column width every human-readable console
// rendering wraps to.
const consoleWidth = 80

// DisjunctStats is one disjunct's search statistics: the states explored,
// transitions produced, whether its state graph came from the
// schema-level cache, and whether its search was truncated by budget.
type DisjunctStats struct {
	Transition     string `json:"transition"`
	Goal           string `json:"goal"`
	StatesExplored int    `json:"states_explored"`
	Transitions    int    `json:"transitions"`
	CacheHit       bool   `json:"cache_hit"`
	Truncated      bool   `json:"truncated"`
}

// Log is the full execution log of one compilation. Failure, when set,
// records the point at which compilation aborted; everything gathered up
// to that point is still written.
type Log struct {
	Instruction string          `json:"instruction"`
	LTLf        string          `json:"ltlf"`
	DFA         string          `json:"dfa"`
	Partitions  []string        `json:"partitions"`
	Disjuncts   []DisjunctStats `json:"disjuncts"`
	Failure     string          `json:"failure,omitempty"`
}

// AddDisjunct appends one disjunct's statistics to the log, in the order
// they were explored.
func (l *Log) AddDisjunct(d DisjunctStats) {
	l.Disjuncts = append(l.Disjuncts, d)
}

// WriteFile serialises the log as indented JSON to path.
func (l Log) WriteFile(path string) error {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal execution log: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write execution log %q: %w", path, err)
	}
	return nil
}

// Summary renders a human-readable report of the log, wrapped to the
// console width before printing.
func (l Log) Summary() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Instruction: %s\n\n", l.Instruction)
	if l.LTLf != "" {
		fmt.Fprintf(&sb, "LTLf specification: %s\n\n", l.LTLf)
	}
	fmt.Fprintf(&sb, "Partitions (%d): %s\n\n", len(l.Partitions), util.MakeTextList(append([]string(nil), l.Partitions...)))

	var totalStates, totalTrans, hits, truncated int
	for _, d := range l.Disjuncts {
		totalStates += d.StatesExplored
		totalTrans += d.Transitions
		if d.CacheHit {
			hits++
		}
		if d.Truncated {
			truncated++
		}
		fmt.Fprintf(&sb, "  %s (goal %s): %d states, %d transitions, cache_hit=%v, truncated=%v\n",
			d.Transition, d.Goal, d.StatesExplored, d.Transitions, d.CacheHit, d.Truncated)
	}
	fmt.Fprintf(&sb, "\nTotals: %d disjuncts, %d states explored, %d transitions, %d cache hits, %d truncated\n",
		len(l.Disjuncts), totalStates, totalTrans, hits, truncated)

	if l.Failure != "" {
		fmt.Fprintf(&sb, "\nFAILED: %s\n", l.Failure)
	}

	return rosed.Edit(sb.String()).Wrap(consoleWidth).String()
}
