package state

import (
	"fmt"
	"strings"

	"github.com/dekarrin/ltlplan/internal/symbol"
)

// Canonicalize returns an alpha-renamed copy of s where variables are
// assigned fresh consecutive indices ("?0", "?1", ...) by first occurrence
// in the traversal order fixed by sortAtoms/sortConstraints. Depth and
// MaxVar are preserved verbatim: they are not part of the renaming, only
// the variable identities are.
//
// Canonicalizing an already-canonical state is the identity, since the
// rename is purely a function of traversal order, which New already
// fixes.
func Canonicalize(s State) State {
	sorted := New(s.Atoms, s.Constraints, s.Depth, s.MaxVar)

	rename := map[string]symbol.Term{}
	next := 0
	freshen := func(t symbol.Term) symbol.Term {
		if !t.IsVar {
			return t
		}
		if v, ok := rename[t.Name]; ok {
			return v
		}
		v := symbol.Var(fmt.Sprintf("?%d", next))
		rename[t.Name] = v
		next++
		return v
	}

	newAtoms := make([]symbol.Atom, len(sorted.Atoms))
	for i, a := range sorted.Atoms {
		newArgs := make([]symbol.Term, len(a.Args))
		for j, t := range a.Args {
			newArgs[j] = freshen(t)
		}
		newAtoms[i] = symbol.Atom{Predicate: a.Predicate, Args: newArgs, Negated: a.Negated}
	}

	newConstraints := make([]Inequality, len(sorted.Constraints))
	for i, c := range sorted.Constraints {
		newConstraints[i] = Inequality{T1: freshen(c.T1), T2: freshen(c.T2)}
	}

	return New(newAtoms, newConstraints, sorted.Depth, sorted.MaxVar)
}

// CanonicalKey returns a string uniquely identifying s up to alpha-
// equivalence: the comparison behind State equality and the search's
// visited-map dedup.
//
// Depth is deliberately excluded from the key: two states reached at
// different depths via different regression paths are still the same node
// in the state graph. The visited map dedups on atoms and constraints
// alone; the first depth at which a state is discovered is the one that
// is kept, per BFS level order.
func CanonicalKey(s State) string {
	c := Canonicalize(s)
	var sb strings.Builder
	for _, a := range c.Atoms {
		sb.WriteString(a.String())
		sb.WriteByte(';')
	}
	sb.WriteByte('|')
	for _, ineq := range c.Constraints {
		sb.WriteString(ineq.String())
		sb.WriteByte(';')
	}
	return sb.String()
}

// Equal reports whether two states are equal up to alpha-renaming.
func Equal(a, b State) bool {
	return CanonicalKey(a) == CanonicalKey(b)
}
