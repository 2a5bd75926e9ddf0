// Package symbol implements the grounding map: a bijection between ground
// predicate atoms and the propositional symbols used on DFA edge labels.
package symbol

import "strings"

// Term is a single argument of a predicate atom: either a constant (object
// name) or a variable (named from a reserved numbering scheme, see
// internal/state). The grounding map only ever deals in constants; variables
// flow through internal/state instead.
type Term struct {
	// Name is the literal text of the term: an object name for a constant,
	// or "?<n>" style text for a variable.
	Name string

	// IsVar distinguishes a variable term from a constant term.
	IsVar bool
}

// Const builds a constant Term.
func Const(name string) Term { return Term{Name: name} }

// Var builds a variable Term.
func Var(name string) Term { return Term{Name: name, IsVar: true} }

func (t Term) String() string { return t.Name }

// Atom is a predicate applied to an ordered tuple of terms, with a
// polarity flag.
type Atom struct {
	Predicate string
	Args      []Term
	Negated   bool
}

// Ground reports whether every argument of the atom is a constant.
func (a Atom) Ground() bool {
	for _, t := range a.Args {
		if t.IsVar {
			return false
		}
	}
	return true
}

// Arity returns the number of arguments.
func (a Atom) Arity() int { return len(a.Args) }

// Equal compares atoms by name, polarity, and position-wise term
// equality.
func (a Atom) Equal(o Atom) bool {
	if a.Predicate != o.Predicate || a.Negated != o.Negated || len(a.Args) != len(o.Args) {
		return false
	}
	for i := range a.Args {
		if a.Args[i] != o.Args[i] {
			return false
		}
	}
	return true
}

// String renders the atom in "pred(arg1, arg2)" form, negation-prefixed
// with "¬" when Negated is set.
func (a Atom) String() string {
	var sb strings.Builder
	if a.Negated {
		sb.WriteString("¬")
	}
	sb.WriteString(a.Predicate)
	sb.WriteByte('(')
	for i, t := range a.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(t.Name)
	}
	sb.WriteByte(')')
	return sb.String()
}

// ArgNames returns the plain argument names, discarding term kind. Useful
// when the caller already knows all terms are ground constants.
func (a Atom) ArgNames() []string {
	if len(a.Args) == 0 {
		return nil
	}
	names := make([]string, len(a.Args))
	for i, t := range a.Args {
		names[i] = t.Name
	}
	return names
}
