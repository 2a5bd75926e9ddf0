package planner

import (
	"fmt"
	"sort"

	"github.com/dekarrin/ltlplan/internal/domain"
	"github.com/dekarrin/ltlplan/internal/state"
	"github.com/dekarrin/ltlplan/internal/symbol"
)

// binding is a substitution from an action schema's parameter names (e.g.
// "?x") to terms in the state being regressed, or to freshly allocated
// variables.
type binding map[string]symbol.Term

// unifyArgs attempts to unify tmplArgs (an add/del template's argument
// list, usually action-parameter variables) position-wise against
// targetArgs (the terms of the atom being matched against), returning the
// partial binding implied by that one atom. Two occurrences of the same
// parameter within tmplArgs (e.g. "on(?x, ?x)") must map to equal terms in
// targetArgs, or unification fails. A constant in tmplArgs (a domain that
// names an object directly in an effect) must match the target term
// exactly; it never binds anything.
func unifyArgs(tmplArgs, targetArgs []symbol.Term) (binding, bool) {
	if len(tmplArgs) != len(targetArgs) {
		return nil, false
	}
	b := binding{}
	for i, t := range tmplArgs {
		if !t.IsVar {
			if t != targetArgs[i] {
				return nil, false
			}
			continue
		}
		if existing, ok := b[t.Name]; ok {
			if existing != targetArgs[i] {
				return nil, false
			}
			continue
		}
		b[t.Name] = targetArgs[i]
	}
	return b, true
}

// varTypeIndex infers the declared type of every variable occurring in s,
// by looking at the declared parameter type of whatever predicate position
// it occupies. Constants carry no comparable type information here; only
// variables occupying a typed predicate slot do.
func varTypeIndex(s state.State, dom domain.Domain) map[string]string {
	idx := map[string]string{}
	for _, a := range s.Atoms {
		pred, ok := dom.Predicate(a.Predicate)
		if !ok {
			continue
		}
		for i, t := range a.Args {
			if !t.IsVar || i >= len(pred.Params) {
				continue
			}
			if ty := pred.Params[i].Type; ty != "" {
				idx[t.Name] = ty
			}
		}
	}
	return idx
}

// completeBinding extends a seed binding (derived from unifying one target
// atom) to a full binding over every parameter of a, allocating fresh
// variables in schema parameter order for any parameter the seed left
// unbound, starting past the state's own variable counter. It returns
// false if a bound parameter's term is a variable whose inferred type
// conflicts with the parameter's declared type; an incompatible binding
// is a silent skip, not an error.
func completeBinding(a domain.ActionSchema, seed binding, types map[string]string, startVar int) (binding, int, bool) {
	full := make(binding, len(a.Params))
	for k, v := range seed {
		full[k] = v
	}

	next := startVar
	for _, p := range a.Params {
		if v, ok := full[p.Name]; ok {
			if v.IsVar && p.Type != "" {
				if vt, known := types[v.Name]; known && vt != p.Type {
					return nil, 0, false
				}
			}
			continue
		}
		next++
		full[p.Name] = symbol.Var(fmt.Sprintf("?%d", next))
	}
	return full, next, true
}

// substituteAtom applies b to every argument of atom, leaving any term not
// covered by b unchanged (defensive: every atom template this package
// substitutes through uses only the owning schema's own parameters, all of
// which completeBinding has already bound).
func substituteAtom(a symbol.Atom, b binding) symbol.Atom {
	args := make([]symbol.Term, len(a.Args))
	for i, t := range a.Args {
		if t.IsVar {
			if v, ok := b[t.Name]; ok {
				args[i] = v
				continue
			}
		}
		args[i] = t
	}
	return symbol.Atom{Predicate: a.Predicate, Args: args, Negated: a.Negated}
}

func substituteAtoms(atoms []symbol.Atom, b binding) []symbol.Atom {
	out := make([]symbol.Atom, len(atoms))
	for i, a := range atoms {
		out[i] = substituteAtom(a, b)
	}
	return out
}

func substituteTermName(name string, b binding) symbol.Term {
	if v, ok := b[name]; ok {
		return v
	}
	return symbol.Const(name)
}

// sortedBindingKey gives a deterministic string for a binding, used as
// part of the edge dedup key.
func sortedBindingKey(b binding) string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	s := ""
	for _, k := range keys {
		s += k + "=" + b[k].Name + ";"
	}
	return s
}
