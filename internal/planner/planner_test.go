package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/ltlplan/internal/state"
	"github.com/dekarrin/ltlplan/internal/symbol"
)

func TestExplore_rootIsGoalState(t *testing.T) {
	dom := stackDomain()
	root := state.New([]symbol.Atom{atom("on", c("a"), c("b"))}, nil, 0, 0)

	g := explore(root, dom, nil, nil, Budget{MaxStates: 25})

	assert.Equal(t, 0, g.Root)
	// with no object budget every regression step introduces fresh
	// variables, so the lifted space is unbounded and the 25-state budget
	// is exhausted.
	assert.True(t, g.Truncated)
	assert.NotEmpty(t, g.States)
	assert.NotEmpty(t, g.Edges, "regressing on(a,b) through move should yield at least one predecessor edge")
}

func TestExplore_respectsMaxStates(t *testing.T) {
	dom := stackDomain()
	root := state.New([]symbol.Atom{atom("on", c("a"), c("b"))}, nil, 0, 0)

	g := explore(root, dom, nil, nil, Budget{MaxStates: 1})

	assert.True(t, g.Truncated, "a budget of 1 state must truncate before expanding the root")
	assert.Len(t, g.States, 1)
}

func TestExplore_respectsDeadline(t *testing.T) {
	dom := stackDomain()
	root := state.New([]symbol.Atom{atom("on", c("a"), c("b"))}, nil, 0, 0)

	orig := timeNow
	defer func() { timeNow = orig }()
	past := time.Unix(0, 0)
	timeNow = func() time.Time { return past.Add(time.Hour) }

	g := explore(root, dom, nil, nil, Budget{MaxStates: 1000, Deadline: past})

	assert.True(t, g.Truncated, "a deadline already in the past must truncate the search immediately")
}

func TestExplore_respectsMaxDepth(t *testing.T) {
	dom := stackDomain()
	root := state.New([]symbol.Atom{atom("on", c("a"), c("b"))}, nil, 0, 0)

	g := explore(root, dom, nil, nil, Budget{MaxStates: 1000, MaxDepth: 1})

	for _, s := range g.States {
		assert.LessOrEqual(t, s.Depth, 1, "no explored state should exceed the configured max depth")
	}
	assert.True(t, g.Truncated)
}

func TestExplore_partialExplanationLeavesSubgoals(t *testing.T) {
	dom := stackDomain()
	root := state.New([]symbol.Atom{
		atom("on", c("a"), c("b")),
		atom("on", c("b"), c("c")),
	}, nil, 0, 0)

	g := explore(root, dom, nil, nil, Budget{MaxStates: 40})

	// move's single on/2 add template can only explain one of the two goal
	// atoms per binding, so every root edge must carry the other forward
	// both as a leftover subgoal and as an atom of its predecessor.
	found := false
	for _, e := range g.Edges {
		if e.From != 0 {
			continue
		}
		found = true
		assert.Len(t, e.Leftover, 1)
		assert.True(t, e.Pred.HasAtom(e.Leftover[0]),
			"the unexplained goal atom must survive into the predecessor")
	}
	assert.True(t, found)
}

func TestExplore_edgePredSharesNamespaceWithBinding(t *testing.T) {
	dom := stackDomain()
	root := state.New([]symbol.Atom{atom("on", c("a"), c("b"))}, nil, 0, 0)

	g := explore(root, dom, nil, nil, Budget{MaxStates: 25})

	for _, e := range g.Edges {
		names := map[string]bool{}
		for _, a := range e.Pred.Atoms {
			for _, term := range a.Args {
				names[term.Name] = true
			}
		}
		for _, a := range g.States[e.From].Atoms {
			for _, term := range a.Args {
				names[term.Name] = true
			}
		}
		for _, term := range e.Binding {
			assert.True(t, names[term.Name],
				"every bound term must name a term of the edge's own states, not of some rename")
		}
	}
}

func TestExplore_dedupesEquivalentEdges(t *testing.T) {
	dom := stackDomain()
	root := state.New([]symbol.Atom{atom("on", c("a"), c("b"))}, nil, 0, 0)

	g := explore(root, dom, nil, nil, Budget{MaxStates: 25})

	seen := map[string]bool{}
	for _, e := range g.Edges {
		key := state.CanonicalKey(g.States[e.From]) + "|" + state.CanonicalKey(g.States[e.To]) + "|" + e.Action + "|" + sortedBindingKey(e.Binding)
		assert.False(t, seen[key], "duplicate edge should have been deduplicated")
		seen[key] = true
	}
}
