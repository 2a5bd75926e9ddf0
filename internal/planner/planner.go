// Package planner implements the backward-search planner: given a goal
// condition and a domain, it regresses through action schemas to produce
// a bounded, deterministic directed state graph, with schema-level
// caching across goals that share structure.
package planner

import (
	"sort"
	"time"

	"github.com/dekarrin/ltlplan/internal/domain"
	"github.com/dekarrin/ltlplan/internal/state"
	"github.com/dekarrin/ltlplan/internal/symbol"
)

// Edge is one regression step in the produced graph: From is the
// (shallower) state this action helps achieve, To is the (deeper)
// predecessor state the regression produced.
type Edge struct {
	From        int
	To          int
	Action      string
	BranchIndex int
	Binding     map[string]symbol.Term
	Leftover    []symbol.Atom
	Achieved    []symbol.Atom

	// Pred is the regressed predecessor exactly as this edge discovered
	// it, in the same variable namespace as Binding and Leftover. It is
	// α-equivalent to States[To], but a duplicate discovery may name its
	// variables differently than the stored node, so rule emission reads
	// the edge's own copy rather than the node.
	Pred state.State
}

// Graph is the bounded directed state graph produced for one goal.
type Graph struct {
	States    []state.State
	Edges     []Edge
	Root      int
	Truncated bool
}

// Budget bounds one search.
type Budget struct {
	MaxStates    int
	MaxDepth     int // 0 means unbounded
	Deadline     time.Time
	ObjectBudget int // 0 means unchecked
}

// Stats is per-goal search telemetry for the execution log.
type Stats struct {
	StatesExplored int
	Transitions    int
	CacheHit       bool
	Truncated      bool
}

// explore runs the bounded, level-order BFS regression from a single root
// state, with no caching: the cache and schema-normalisation concerns
// live in cache.go, one layer up.
func explore(root state.State, dom domain.Domain, patterns []state.Pattern, singletons map[string]bool, budget Budget) *Graph {
	actions := append([]domain.ActionSchema(nil), dom.Actions...)
	sort.Slice(actions, func(i, j int) bool { return actions[i].Name < actions[j].Name })

	// States keep the variable namespace they were discovered in; only the
	// visited keys are α-renamed. This keeps every edge's binding and
	// leftover atoms co-referential with both its endpoint states, which is
	// what rule emission depends on.
	g := &Graph{Root: 0}
	g.States = append(g.States, root)
	visited := map[string]int{state.CanonicalKey(root): 0}

	type edgeKey struct {
		from, to, action string
		branch           int
	}
	seenEdges := map[edgeKey]bool{}

	worklist := []int{0}
	for len(worklist) > 0 {
		if budget.MaxStates > 0 && len(g.States) >= budget.MaxStates {
			g.Truncated = true
			break
		}
		if !budget.Deadline.IsZero() && !timeNow().Before(budget.Deadline) {
			g.Truncated = true
			break
		}

		cur := worklist[0]
		worklist = worklist[1:]
		curState := g.States[cur]

		if budget.MaxDepth > 0 && curState.Depth+1 > budget.MaxDepth {
			g.Truncated = true
			continue
		}

		types := varTypeIndex(curState, dom)

		for _, a := range actions {
			for bi, branch := range a.Branches {
				for _, target := range curState.Atoms {
					cands := regressAtAtom(a, bi, branch, curState, target, types, patterns, singletons, budget.ObjectBudget)
					for _, c := range cands {
						key := state.CanonicalKey(c.predecessor)
						ek := edgeKey{from: state.CanonicalKey(curState), to: key, action: c.action, branch: c.branchIndex}
						bk := sortedBindingKey(c.binding)
						ek2 := edgeKey{from: ek.from + bk, to: ek.to, action: ek.action, branch: ek.branch}
						if seenEdges[ek2] {
							continue
						}
						seenEdges[ek2] = true

						toIdx, ok := visited[key]
						if !ok {
							toIdx = len(g.States)
							g.States = append(g.States, c.predecessor)
							visited[key] = toIdx
							worklist = append(worklist, toIdx)
						}
						g.Edges = append(g.Edges, Edge{
							From:        cur,
							To:          toIdx,
							Action:      c.action,
							BranchIndex: c.branchIndex,
							Binding:     c.binding,
							Leftover:    c.leftover,
							Achieved:    c.achieved,
							Pred:        c.predecessor,
						})
					}
				}
			}
		}
	}

	return g
}

// timeNow is a seam so tests can freeze the deadline check; production
// code always uses the wall clock.
var timeNow = time.Now
