package planner

import (
	"github.com/dekarrin/ltlplan/internal/domain"
	"github.com/dekarrin/ltlplan/internal/state"
	"github.com/dekarrin/ltlplan/internal/symbol"
)

// candidate is one fully-built regression step: a new predecessor state
// plus the action/branch/binding that produced it, and the leftover
// subgoal atoms the rule emitter needs to recurse on.
type candidate struct {
	action      string
	branchIndex int
	binding     binding
	predecessor state.State
	leftover    []symbol.Atom // atoms of the source state this action's effects did not explain
	achieved    []symbol.Atom // atoms of the source state this action's effects DID explain
}

// regressAtAtom tries to explain target (one atom of cur) with every
// add/del template of branch under action a, producing zero or more
// candidates. A positive target atom is matched against add effects; a
// negative target atom against delete effects, since deleting P is
// exactly what achieves ¬P.
func regressAtAtom(a domain.ActionSchema, branchIndex int, branch domain.Branch, cur state.State, target symbol.Atom, types map[string]string, patterns []state.Pattern, singletons map[string]bool, objectBudget int) []candidate {
	var templates []symbol.Atom
	if target.Negated {
		templates = branch.Del
	} else {
		templates = branch.Add
	}

	var out []candidate
	for _, tmpl := range templates {
		if tmpl.Predicate != target.Predicate || len(tmpl.Args) != len(target.Args) {
			continue
		}
		seed, ok := unifyArgs(tmpl.Args, target.Args)
		if !ok {
			continue
		}
		full, newMaxVar, ok := completeBinding(a, seed, types, cur.MaxVar)
		if !ok {
			continue
		}

		instAdd := substituteAtoms(branch.Add, full)
		instDel := substituteAtoms(branch.Del, full)
		instPrecond := substituteAtoms(a.PrecondAtoms, full)

		predConstraints := append([]state.Inequality(nil), cur.Constraints...)
		contradiction := false
		for _, neq := range a.PrecondNeqs {
			t1 := substituteTermName(neq.A, full)
			t2 := substituteTermName(neq.B, full)
			if t1 == t2 {
				contradiction = true
				break
			}
			predConstraints = append(predConstraints, state.Inequality{T1: t1, T2: t2})
		}
		if contradiction {
			continue
		}

		explained := map[int]bool{}
		for i, atom := range cur.Atoms {
			if !atom.Negated && containsAtomPositive(instAdd, atom) {
				explained[i] = true
			}
			if atom.Negated && containsAtomPositive(instDel, positiveOf(atom)) {
				explained[i] = true
			}
		}
		if !explained[indexOf(cur.Atoms, target)] {
			// the seed atom itself must always be among the explained set;
			// if it is not (e.g. a degenerate template with empty args
			// matching unrelated atoms), this candidate is not a real
			// regression of target and is dropped.
			continue
		}

		// conflict check: an unexplained positive atom the branch deletes
		// (or an unexplained negated atom it adds) cannot survive the
		// action firing, so no predecessor exists for this binding.
		conflicted := false
		for i, atom := range cur.Atoms {
			if explained[i] {
				continue
			}
			if !atom.Negated && containsAtomPositive(instDel, atom) {
				conflicted = true
				break
			}
			if atom.Negated && containsAtomPositive(instAdd, positiveOf(atom)) {
				conflicted = true
				break
			}
		}
		if conflicted {
			continue
		}

		var leftover, achieved []symbol.Atom
		predAtoms := make([]symbol.Atom, 0, len(cur.Atoms)+len(instPrecond)+len(instDel))
		for i, atom := range cur.Atoms {
			if explained[i] {
				achieved = append(achieved, atom)
				continue
			}
			leftover = append(leftover, atom)
			predAtoms = append(predAtoms, atom)
		}
		predAtoms = append(predAtoms, instPrecond...)
		predAtoms = append(predAtoms, instDel...)
		predAtoms = dedupAtoms(predAtoms)
		if hasComplementaryPair(predAtoms) {
			// a predecessor required to hold both P and ¬P (e.g. a negated
			// precondition atom alongside the same atom as a delete effect)
			// denotes no concrete state at all.
			continue
		}

		cand := state.New(predAtoms, dedupConstraints(predConstraints), cur.Depth+1, newMaxVar)
		if state.HasMutexViolation(cand, patterns, singletons) {
			continue
		}
		if state.InfeasibleAtBudget(cand, singletons, objectBudget) {
			continue
		}

		// cand keeps the namespace it was discovered in (cur's variables
		// plus the fresh ones this binding allocated), so the binding,
		// leftover, and predecessor all co-refer; α-renaming happens only
		// inside CanonicalKey when the search dedups.
		out = append(out, candidate{
			action:      a.Name,
			branchIndex: branchIndex,
			binding:     full,
			predecessor: cand,
			leftover:    leftover,
			achieved:    achieved,
		})
	}
	return out
}

func positiveOf(a symbol.Atom) symbol.Atom {
	return symbol.Atom{Predicate: a.Predicate, Args: a.Args, Negated: false}
}

func containsAtomPositive(haystack []symbol.Atom, needle symbol.Atom) bool {
	want := positiveOf(needle)
	for _, a := range haystack {
		if positiveOf(a).Equal(want) {
			return true
		}
	}
	return false
}

func hasComplementaryPair(atoms []symbol.Atom) bool {
	for i := 0; i < len(atoms); i++ {
		for j := i + 1; j < len(atoms); j++ {
			if atoms[i].Negated != atoms[j].Negated && positiveOf(atoms[i]).Equal(positiveOf(atoms[j])) {
				return true
			}
		}
	}
	return false
}

func indexOf(atoms []symbol.Atom, target symbol.Atom) int {
	for i, a := range atoms {
		if a.Equal(target) {
			return i
		}
	}
	return -1
}

func dedupAtoms(atoms []symbol.Atom) []symbol.Atom {
	var out []symbol.Atom
	for _, a := range atoms {
		dup := false
		for _, o := range out {
			if o.Equal(a) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, a)
		}
	}
	return out
}

func dedupConstraints(cs []state.Inequality) []state.Inequality {
	var out []state.Inequality
	for _, c := range cs {
		n := c.Normalize()
		dup := false
		for _, o := range out {
			if o.Normalize() == n {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, n)
		}
	}
	return out
}
