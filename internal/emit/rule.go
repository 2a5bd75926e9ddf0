// Package emit implements the rule emitter: it walks a backward-search
// state graph and renders one plan rule per edge in the textual
// plan-library format the agent runtime consumes.
package emit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dekarrin/ltlplan/internal/domain"
	"github.com/dekarrin/ltlplan/internal/planner"
	"github.com/dekarrin/ltlplan/internal/state"
	"github.com/dekarrin/ltlplan/internal/symbol"
)

// Rule is one emitted plan rule: Trigger is the goal this rule achieves,
// Context is the predecessor state's full atom/constraint conjunction,
// Action is the edge's action call, and Subgoals are the recursive
// "!"-prefixed calls for the predecessor's leftover atoms, the ones that
// themselves still require achievement.
type Rule struct {
	Trigger  []symbol.Atom
	Context  state.State
	Action   ActionCall
	Subgoals []symbol.Atom
	Depth    int
}

// ActionCall is one action invocation: its schema name plus the bound term
// for each declared parameter, in declaration order. Only the parameter's
// name is ever written, never its "- type" annotation.
type ActionCall struct {
	Name  string
	Terms []symbol.Term
}

func (c ActionCall) String() string {
	var sb strings.Builder
	sb.WriteString(c.Name)
	sb.WriteByte('(')
	for i, t := range c.Terms {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(t.Name)
	}
	sb.WriteByte(')')
	return sb.String()
}

// BuildRules walks g (a graph rooted at the normalised form of one goal)
// and derives one Rule per edge, substituting objMap's concrete objects
// back in for the goal's cache placeholders. dom supplies each action
// schema's declared parameter order.
func BuildRules(g *planner.Graph, dom domain.Domain, objMap planner.ObjectMap) []Rule {
	var rules []Rule
	for _, e := range g.Edges {
		from := g.States[e.From]

		action, found := lookupAction(dom, e.Action)
		if !found {
			continue
		}

		terms := make([]symbol.Term, len(action.Params))
		for i, p := range action.Params {
			terms[i] = e.Binding[p.Name]
		}

		// e.Pred, not g.States[e.To]: the edge's own predecessor copy
		// shares a variable namespace with the binding and leftover atoms,
		// which a duplicate-discovery node need not.
		rule := Rule{
			Trigger:  objMap.Denormalize(from.Atoms),
			Context:  denormalizeState(e.Pred, objMap),
			Action:   ActionCall{Name: action.Name, Terms: denormalizeTerms(terms, objMap)},
			Subgoals: objMap.Denormalize(e.Leftover),
			Depth:    e.Pred.Depth,
		}
		rules = append(rules, rule)
	}
	return dedupeAndOrder(rules)
}

func lookupAction(dom domain.Domain, name string) (domain.ActionSchema, bool) {
	for _, a := range dom.Actions {
		if a.Name == name {
			return a, true
		}
	}
	return domain.ActionSchema{}, false
}

func denormalizeTerms(terms []symbol.Term, objMap planner.ObjectMap) []symbol.Term {
	out := make([]symbol.Term, len(terms))
	for i, t := range terms {
		out[i] = objMap.DenormalizeTerm(t)
	}
	return out
}

func denormalizeState(s state.State, objMap planner.ObjectMap) state.State {
	atoms := objMap.Denormalize(s.Atoms)
	constraints := make([]state.Inequality, len(s.Constraints))
	for i, c := range s.Constraints {
		constraints[i] = state.Inequality{
			T1: objMap.DenormalizeTerm(c.T1),
			T2: objMap.DenormalizeTerm(c.T2),
		}
	}
	return state.New(atoms, constraints, s.Depth, s.MaxVar)
}

// canonicalKey gives a rule a deduplication key that ignores variable
// identity: one α-rename, assigned by first occurrence across the whole
// rule, so that which context variable the action binds still
// distinguishes two otherwise-identical rules. Renaming each part
// independently (or omitting the action's terms) would merge rules that
// differ only in that binding.
func canonicalKey(r Rule) string {
	rename := map[string]string{}
	next := 0
	renTerm := func(t symbol.Term) symbol.Term {
		if !t.IsVar {
			return t
		}
		n, ok := rename[t.Name]
		if !ok {
			n = fmt.Sprintf("?%d", next)
			next++
			rename[t.Name] = n
		}
		return symbol.Var(n)
	}
	renAtoms := func(atoms []symbol.Atom) []symbol.Atom {
		out := make([]symbol.Atom, len(atoms))
		for i, a := range atoms {
			args := make([]symbol.Term, len(a.Args))
			for j, t := range a.Args {
				args[j] = renTerm(t)
			}
			out[i] = symbol.Atom{Predicate: a.Predicate, Args: args, Negated: a.Negated}
		}
		return out
	}

	trigger := renAtoms(r.Trigger)
	ctxAtoms := renAtoms(r.Context.Atoms)
	ctxConstraints := make([]state.Inequality, len(r.Context.Constraints))
	for i, c := range r.Context.Constraints {
		ctxConstraints[i] = state.Inequality{T1: renTerm(c.T1), T2: renTerm(c.T2)}
	}
	terms := make([]symbol.Term, len(r.Action.Terms))
	for i, t := range r.Action.Terms {
		terms[i] = renTerm(t)
	}

	renamed := Rule{
		Trigger:  trigger,
		Context:  state.New(ctxAtoms, ctxConstraints, 0, 0),
		Action:   ActionCall{Name: r.Action.Name, Terms: terms},
		Subgoals: renAtoms(r.Subgoals),
	}
	return renderRule(renamed)
}

// dedupeAndOrder removes α-equivalent duplicate rules and sorts the
// remainder by increasing depth, so rule selection prefers rules closer
// to the goal-root; ties break on the context's stable canonical form.
func dedupeAndOrder(rules []Rule) []Rule {
	seen := map[string]bool{}
	var out []Rule
	for _, r := range rules {
		key := canonicalKey(r)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}

	cmp := newCollator()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Depth != out[j].Depth {
			return out[i].Depth < out[j].Depth
		}
		return cmp.less(out[i].Context.String(), out[j].Context.String())
	})
	return out
}
