package emit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/ltlplan/internal/domain"
	"github.com/dekarrin/ltlplan/internal/planner"
	"github.com/dekarrin/ltlplan/internal/state"
	"github.com/dekarrin/ltlplan/internal/symbol"
)

func a(pred string, args ...symbol.Term) symbol.Atom {
	return symbol.Atom{Predicate: pred, Args: args}
}

func moveDomain() domain.Domain {
	return domain.Domain{
		Predicates: []domain.Predicate{
			{Name: "on", Params: []domain.TypedVar{{Name: "?x", Type: "block"}, {Name: "?y", Type: "block"}}},
			{Name: "clear", Params: []domain.TypedVar{{Name: "?x", Type: "block"}}},
		},
		Actions: []domain.ActionSchema{{
			Name:   "move",
			Params: []domain.TypedVar{{Name: "?x", Type: "block"}, {Name: "?from", Type: "block"}, {Name: "?to", Type: "block"}},
		}},
	}
}

func TestBuildRules_substitutesConcreteObjects(t *testing.T) {
	dom := moveDomain()
	g := &planner.Graph{
		Root: 0,
		States: []state.State{
			state.New([]symbol.Atom{a("on", symbol.Var("?arg0"), symbol.Var("?arg1"))}, nil, 0, 0),
			state.New([]symbol.Atom{a("on", symbol.Var("?arg0"), symbol.Var("?1")), a("clear", symbol.Var("?arg0"))}, nil, 1, 1),
		},
		Edges: []planner.Edge{{
			From:   0,
			To:     1,
			Action: "move",
			Binding: map[string]symbol.Term{
				"?x":    symbol.Var("?arg0"),
				"?from": symbol.Var("?1"),
				"?to":   symbol.Var("?arg1"),
			},
			Leftover: []symbol.Atom{a("on", symbol.Var("?arg0"), symbol.Var("?1"))},
			Achieved: []symbol.Atom{a("on", symbol.Var("?arg0"), symbol.Var("?arg1"))},
			Pred:     state.New([]symbol.Atom{a("on", symbol.Var("?arg0"), symbol.Var("?1")), a("clear", symbol.Var("?arg0"))}, nil, 1, 1),
		}},
	}
	objMap := planner.ObjectMap{"?arg0": symbol.Const("crate-1"), "?arg1": symbol.Const("table")}

	rules := BuildRules(g, dom, objMap)

	if assert.Len(t, rules, 1) {
		r := rules[0]
		assert.Equal(t, "move", r.Action.Name)
		assert.Equal(t, "crate-1", r.Action.Terms[0].Name)
		assert.Equal(t, "table", r.Action.Terms[2].Name)
		assert.Equal(t, "crate-1", r.Trigger[0].Args[0].Name)
		assert.Len(t, r.Subgoals, 1)
	}
}

// searchDomain is a full move schema, so BuildRules can be exercised over
// a graph produced by the real cached search rather than a hand-built one.
func searchDomain() domain.Domain {
	dom := moveDomain()
	move := &dom.Actions[0]
	x, from, to := symbol.Var("?x"), symbol.Var("?from"), symbol.Var("?to")
	move.PrecondAtoms = []symbol.Atom{
		a("on", x, from),
		a("clear", x),
		a("clear", to),
	}
	move.PrecondNeqs = []domain.Neq{{A: "?from", B: "?to"}, {A: "?x", B: "?to"}}
	move.Branches = []domain.Branch{{
		Add: []symbol.Atom{a("on", x, to), a("clear", from)},
		Del: []symbol.Atom{a("on", x, from), a("clear", to)},
	}}
	return dom
}

func TestBuildRules_multiAtomGoalDenormalizesEveryPlaceholder(t *testing.T) {
	dom := searchDomain()
	cache := planner.NewCache()

	// the goal's atoms deliberately sort differently than given, so this
	// also covers the placeholder order diverging from canonical order.
	goal := []symbol.Atom{
		a("on", symbol.Const("a"), symbol.Const("b")),
		a("clear", symbol.Const("c")),
	}
	g, objMap, _ := cache.Search(goal, dom, nil, nil, planner.Budget{MaxStates: 30})
	rules := BuildRules(g, dom, objMap)

	if !assert.NotEmpty(t, rules) {
		return
	}
	rootRuleSeen := false
	for _, r := range rules {
		for _, atom := range r.Trigger {
			for _, term := range atom.Args {
				assert.NotContains(t, term.Name, "?arg",
					"no goal placeholder may survive into an emitted rule")
			}
		}
		if r.Depth == 1 && len(r.Trigger) == 2 {
			rootRuleSeen = true
			ground := map[string]bool{}
			for _, atom := range r.Trigger {
				for _, term := range atom.Args {
					if !term.IsVar {
						ground[term.Name] = true
					}
				}
			}
			assert.True(t, ground["a"] && ground["b"] && ground["c"],
				"the root rule's trigger must carry the goal's own objects")
		}
	}
	assert.True(t, rootRuleSeen)
}

func TestDedupeAndOrder_ordersByDepthThenContext(t *testing.T) {
	deep := Rule{Context: state.New([]symbol.Atom{a("clear", symbol.Const("b"))}, nil, 2, 0), Depth: 2}
	shallow := Rule{Context: state.New([]symbol.Atom{a("clear", symbol.Const("a"))}, nil, 1, 0), Depth: 1}

	out := dedupeAndOrder([]Rule{deep, shallow})

	assert.Equal(t, 1, out[0].Depth)
	assert.Equal(t, 2, out[1].Depth)
}

func TestDedupeAndOrder_dropsAlphaEquivalentDuplicates(t *testing.T) {
	r1 := Rule{
		Trigger: []symbol.Atom{a("on", symbol.Const("a"), symbol.Const("b"))},
		Context: state.New([]symbol.Atom{a("clear", symbol.Var("?0"))}, nil, 1, 1),
		Action:  ActionCall{Name: "move", Terms: []symbol.Term{symbol.Var("?0")}},
	}
	r2 := Rule{
		Trigger: []symbol.Atom{a("on", symbol.Const("a"), symbol.Const("b"))},
		Context: state.New([]symbol.Atom{a("clear", symbol.Var("?9"))}, nil, 1, 9),
		Action:  ActionCall{Name: "move", Terms: []symbol.Term{symbol.Var("?9")}},
	}

	out := dedupeAndOrder([]Rule{r1, r2})
	assert.Len(t, out, 1, "rules differing only by variable numbering are alpha-equivalent and should collapse")
}

func TestRender_producesObjectsAndPredicatesSections(t *testing.T) {
	dom := moveDomain()
	rules := []Rule{{
		Trigger: []symbol.Atom{a("on", symbol.Const("crate-1"), symbol.Const("table"))},
		Context: state.New(nil, nil, 0, 0),
		Action:  ActionCall{Name: "move", Terms: []symbol.Term{symbol.Const("crate-1"), symbol.Const("shelf"), symbol.Const("table")}},
	}}

	out := Render(rules, dom)

	assert.Contains(t, out, "objects ")
	assert.Contains(t, out, "crate-1")
	assert.Contains(t, out, "predicates ")
	assert.Contains(t, out, "on/2")
	assert.Contains(t, out, "clear/1")
	assert.Contains(t, out, "move(crate-1, shelf, table)")
}
