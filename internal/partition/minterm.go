package partition

import (
	"fmt"

	"github.com/dekarrin/ltlplan/internal/boolexpr"
	"github.com/dekarrin/ltlplan/internal/dfa"
)

// MintermRefiner is the flat truth-table backend: every assignment of the
// used support is a candidate minterm, retained iff it satisfies at least
// one edge label.
type MintermRefiner struct{}

func (MintermRefiner) Refine(raw *dfa.Automaton) (*Refined, error) {
	support := usedSupport(raw)
	edges, err := parseEdges(raw)
	if err != nil {
		return nil, err
	}

	n := len(support)
	var partitions []Partition
	next := 0

	total := uint64(1) << uint(n)
	for bits := uint64(0); bits < total; bits++ {
		assignment := make(map[string]bool, n)
		for i, sym := range support {
			assignment[sym] = bits&(1<<uint(i)) != 0
		}

		satisfiesSome := false
		for _, e := range edges {
			if boolexpr.Eval(e.label, assignment) {
				satisfiesSome = true
				break
			}
		}
		if !satisfiesSome {
			continue
		}

		partitions = append(partitions, Partition{
			Symbol:     fmt.Sprintf("p%d", next),
			Assignment: assignment,
		})
		next++
	}

	return buildRefined(raw, support, partitions, edges), nil
}
