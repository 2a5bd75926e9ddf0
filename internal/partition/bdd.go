package partition

import (
	"fmt"

	"github.com/dekarrin/ltlplan/internal/boolexpr"
	"github.com/dekarrin/ltlplan/internal/dfa"
)

// tristate is a three-valued truth value used while walking the decision
// tree with only a prefix of the support assigned.
type tristate int

const (
	unknown tristate = iota
	isTrue
	isFalse
)

// BDDRefiner retains the same set of minterms as MintermRefiner but reaches
// them by a reduced Shannon-expansion walk over the support ordering
// instead of a flat truth-table scan, pruning any subtree whose combined
// edge-label disjunction is already decided false given the assignment so
// far. This is the backend of choice once the used support exceeds the
// flat-table threshold.
type BDDRefiner struct{}

func (BDDRefiner) Refine(raw *dfa.Automaton) (*Refined, error) {
	support := usedSupport(raw)
	edges, err := parseEdges(raw)
	if err != nil {
		return nil, err
	}

	var partitions []Partition
	next := 0
	assignment := make(map[string]bool, len(support))

	var walk func(depth int)
	walk = func(depth int) {
		if depth == len(support) {
			for _, e := range edges {
				if evalTri(e.label, assignment) == isTrue {
					partitions = append(partitions, Partition{
						Symbol:     fmt.Sprintf("p%d", next),
						Assignment: copyAssignment(assignment),
					})
					next++
					return
				}
			}
			return
		}

		sym := support[depth]
		for _, v := range [2]bool{false, true} {
			assignment[sym] = v
			if anyMaybeTrue(edges, assignment, support[depth+1:]) {
				walk(depth + 1)
			}
		}
		delete(assignment, sym)
	}

	walk(0)
	return buildRefined(raw, support, partitions, edges), nil
}

// anyMaybeTrue reports whether at least one edge label could still
// evaluate true given the partial assignment (the symbols in `free`
// remain unassigned). An edge already decided false given the assigned
// prefix is excluded from the recursion below it.
func anyMaybeTrue(edges []parsedEdge, assignment map[string]bool, free []string) bool {
	for _, e := range edges {
		switch evalTri(e.label, assignment) {
		case isTrue, unknown:
			return true
		}
	}
	return false
}

// evalTri adapts boolexpr.EvalPartial's Tristate onto this package's own
// tristate constants, so the walk above can short-circuit subtrees without
// importing boolexpr's naming into every call site.
func evalTri(e *boolexpr.Expr, assignment map[string]bool) tristate {
	switch boolexpr.EvalPartial(e, assignment) {
	case boolexpr.True:
		return isTrue
	case boolexpr.False:
		return isFalse
	default:
		return unknown
	}
}

func copyAssignment(a map[string]bool) map[string]bool {
	out := make(map[string]bool, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}
