// Package state implements the symbolic state model: abstract states over
// predicate atoms with equality/inequality constraints, a depth counter,
// and a variable counter, plus the static-invariant and object-budget
// pruning checks that make the backward-search planner's output finite
// and sound.
package state

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dekarrin/ltlplan/internal/symbol"
)

// Inequality is a constraint t1 != t2 over two terms: either two
// variables of the same type, or one variable and one constant.
type Inequality struct {
	T1, T2 symbol.Term
}

// Normalize returns an Inequality with its two terms in a canonical order,
// so that {a,b} and {b,a} compare equal.
func (ineq Inequality) Normalize() Inequality {
	if ineq.T1.Name > ineq.T2.Name {
		return Inequality{T1: ineq.T2, T2: ineq.T1}
	}
	return ineq
}

func (ineq Inequality) String() string {
	n := ineq.Normalize()
	return fmt.Sprintf("%s≠%s", n.T1.Name, n.T2.Name)
}

// State is an abstract state: a set of (possibly variable) predicate atoms,
// a set of inequality constraints, a depth (distance from the goal-root),
// and a max-variable counter governing fresh-variable allocation. Once
// installed into a state graph, a State is never mutated; every
// transformation below returns a new value.
type State struct {
	Atoms       []symbol.Atom
	Constraints []Inequality
	Depth       int
	MaxVar      int
}

// New constructs a State, sorting its atoms and constraints into the
// canonical traversal order used throughout this package (but WITHOUT
// performing the variable-renumbering half of canonicalisation; use
// Canonicalize for that).
func New(atoms []symbol.Atom, constraints []Inequality, depth, maxVar int) State {
	s := State{
		Atoms:       append([]symbol.Atom(nil), atoms...),
		Constraints: append([]Inequality(nil), constraints...),
		Depth:       depth,
		MaxVar:      maxVar,
	}
	sortAtoms(s.Atoms)
	sortConstraints(s.Constraints)
	return s
}

func atomSortKey(a symbol.Atom) string {
	var sb strings.Builder
	sb.WriteString(a.Predicate)
	sb.WriteByte('\x00')
	if a.Negated {
		sb.WriteByte('1')
	} else {
		sb.WriteByte('0')
	}
	for _, t := range a.Args {
		sb.WriteByte('\x00')
		if t.IsVar {
			sb.WriteByte('V')
		} else {
			sb.WriteByte('C')
			sb.WriteString(t.Name)
		}
	}
	return sb.String()
}

// sortAtoms orders atoms by (name, polarity, args-with-variables-
// placeholdered), the fixed traversal order canonicalisation renames
// in. Ties (atoms differing only in variable identity) keep their
// relative input order, since it is first-occurrence order that the
// renaming pass in Canonicalize depends on.
func sortAtoms(atoms []symbol.Atom) {
	sort.SliceStable(atoms, func(i, j int) bool {
		return atomSortKey(atoms[i]) < atomSortKey(atoms[j])
	})
}

func constraintSortKey(c Inequality) string {
	n := c.Normalize()
	return n.T1.Name + "\x00" + n.T2.Name
}

func sortConstraints(cs []Inequality) {
	for i := range cs {
		cs[i] = cs[i].Normalize()
	}
	sort.SliceStable(cs, func(i, j int) bool {
		return constraintSortKey(cs[i]) < constraintSortKey(cs[j])
	})
}

// HasAtom reports whether the state contains an atom equal to a.
func (s State) HasAtom(a symbol.Atom) bool {
	for _, existing := range s.Atoms {
		if existing.Equal(a) {
			return true
		}
	}
	return false
}

// Variables returns the distinct variable terms appearing anywhere in the
// state (atoms and constraints), in first-occurrence order.
func (s State) Variables() []symbol.Term {
	seen := map[string]bool{}
	var vars []symbol.Term
	consider := func(t symbol.Term) {
		if !t.IsVar || seen[t.Name] {
			return
		}
		seen[t.Name] = true
		vars = append(vars, t)
	}
	for _, a := range s.Atoms {
		for _, t := range a.Args {
			consider(t)
		}
	}
	for _, c := range s.Constraints {
		consider(c.T1)
		consider(c.T2)
	}
	return vars
}

// String renders the state as a conjunction, used for logging and as the
// final tie-break key when the rule emitter orders rules by context. Cache
// keys and state equality use CanonicalKey, not this rendering.
func (s State) String() string {
	var parts []string
	for _, a := range s.Atoms {
		parts = append(parts, a.String())
	}
	for _, c := range s.Constraints {
		parts = append(parts, c.String())
	}
	if len(parts) == 0 {
		return "⊤"
	}
	return strings.Join(parts, " ∧ ")
}
