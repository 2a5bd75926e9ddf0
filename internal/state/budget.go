package state

import (
	"sort"

	"github.com/dekarrin/ltlplan/internal/symbol"
)

// constraintGraph is an undirected graph over the distinct terms (variables
// and constants) appearing in a state, used to compute the object-budget
// lower bound.
type constraintGraph struct {
	nodes []string
	idx   map[string]int
	adj   [][]bool
}

func newConstraintGraph(terms []symbol.Term) *constraintGraph {
	g := &constraintGraph{idx: map[string]int{}}
	for _, t := range terms {
		if _, ok := g.idx[t.Name]; ok {
			continue
		}
		g.idx[t.Name] = len(g.nodes)
		g.nodes = append(g.nodes, t.Name)
	}
	g.adj = make([][]bool, len(g.nodes))
	for i := range g.adj {
		g.adj[i] = make([]bool, len(g.nodes))
	}
	return g
}

func (g *constraintGraph) addEdge(a, b string) {
	i, iok := g.idx[a]
	j, jok := g.idx[b]
	if !iok || !jok || i == j {
		return
	}
	g.adj[i][j] = true
	g.adj[j][i] = true
}

// allTerms collects every variable and constant occurring in the state.
func allTerms(s State) []symbol.Term {
	seen := map[string]bool{}
	var terms []symbol.Term
	add := func(t symbol.Term) {
		if seen[t.Name] {
			return
		}
		seen[t.Name] = true
		terms = append(terms, t)
	}
	for _, a := range s.Atoms {
		for _, t := range a.Args {
			add(t)
		}
	}
	for _, c := range s.Constraints {
		add(c.T1)
		add(c.T2)
	}
	return terms
}

// BuildConstraintGraph constructs the distinctness graph over s's terms:
// an edge for every explicit inequality, an edge for every pair of
// distinct ground constants (ground constants are implicitly distinct),
// and an edge for every implicit inequality derivable from a singleton
// predicate shared between two distinct atom instances. Declared types
// are not propagated into the graph; see DESIGN.md.
func BuildConstraintGraph(s State, singletons map[string]bool) *constraintGraph {
	terms := allTerms(s)
	g := newConstraintGraph(terms)

	for _, c := range s.Constraints {
		g.addEdge(c.T1.Name, c.T2.Name)
	}

	var consts []string
	for _, t := range terms {
		if !t.IsVar {
			consts = append(consts, t.Name)
		}
	}
	sort.Strings(consts)
	for i := 0; i < len(consts); i++ {
		for j := i + 1; j < len(consts); j++ {
			g.addEdge(consts[i], consts[j])
		}
	}

	for i := 0; i < len(s.Atoms); i++ {
		ai := s.Atoms[i]
		if ai.Negated || !singletons[ai.Predicate] {
			continue
		}
		for j := i + 1; j < len(s.Atoms); j++ {
			aj := s.Atoms[j]
			if aj.Negated || aj.Predicate != ai.Predicate || ai.Equal(aj) {
				continue
			}
			for k := range ai.Args {
				if ai.Args[k] != aj.Args[k] {
					g.addEdge(ai.Args[k].Name, aj.Args[k].Name)
				}
			}
		}
	}

	return g
}

// GreedyMaxClique computes a greedy lower bound on the graph's maximum
// clique size, by repeatedly picking the highest-degree remaining vertex
// and restricting to its neighbourhood. This is sound as a LOWER bound on
// the true minimum object count but may underestimate it; an exact clique
// search would reject more states at the cost of its own deterministic
// tie-break rules, see DESIGN.md.
func (g *constraintGraph) GreedyMaxClique() int {
	remaining := make([]int, len(g.nodes))
	for i := range remaining {
		remaining[i] = i
	}

	clique := 0
	for len(remaining) > 0 {
		best := remaining[0]
		bestDeg := -1
		for _, v := range remaining {
			deg := 0
			for _, u := range remaining {
				if u != v && g.adj[v][u] {
					deg++
				}
			}
			if deg > bestDeg {
				bestDeg = deg
				best = v
			}
		}

		clique++

		var next []int
		for _, v := range remaining {
			if v != best && g.adj[best][v] {
				next = append(next, v)
			}
		}
		remaining = next
	}
	return clique
}

// ObjectBudgetLowerBound returns the greedy max-clique lower bound on the
// number of distinct objects s requires.
func ObjectBudgetLowerBound(s State, singletons map[string]bool) int {
	g := BuildConstraintGraph(s, singletons)
	return g.GreedyMaxClique()
}

// InfeasibleAtBudget reports whether s requires more than k distinct
// objects at its greedy clique lower bound.
func InfeasibleAtBudget(s State, singletons map[string]bool, k int) bool {
	if k <= 0 {
		return false
	}
	return ObjectBudgetLowerBound(s, singletons) > k
}
