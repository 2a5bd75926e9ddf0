// Package domain parses and represents the PDDL-style action domain that
// enters the compiler alongside the compiled DFA. The parser itself is
// deliberately a straightforward lexer plus a small recursive-descent
// reader over PDDL's s-expression syntax; the planner (internal/planner)
// is where the real complexity lives.
package domain

import "github.com/dekarrin/ltlplan/internal/symbol"

// TypedVar is a parameter: a variable name plus its declared type.
type TypedVar struct {
	Name string
	Type string
}

// Predicate declares a predicate's name and its typed parameter list.
type Predicate struct {
	Name   string
	Params []TypedVar
}

// Arity returns the predicate's declared number of parameters.
func (p Predicate) Arity() int { return len(p.Params) }

// Branch is one non-deterministic effect branch: a set of positive (Add)
// and negative (Del) atoms.
type Branch struct {
	Add []symbol.Atom
	Del []symbol.Atom
}

// ActionSchema is one action declaration: name, typed parameters, a
// precondition (conjunction of atoms plus inequality constraints), and one
// or more effect branches sharing that precondition.
type ActionSchema struct {
	Name         string
	Params       []TypedVar
	PrecondAtoms []symbol.Atom
	PrecondNeqs  []Neq
	Branches     []Branch
}

// Neq is a precondition inequality constraint "(not (= ?x ?y))".
type Neq struct {
	A, B string
}

// Deterministic reports whether the action has exactly one effect branch.
func (a ActionSchema) Deterministic() bool { return len(a.Branches) == 1 }

// Domain is the fully parsed action domain: its declared types, predicates,
// and action schemas.
type Domain struct {
	Name       string
	Types      []string
	Predicates []Predicate
	Actions    []ActionSchema
}

// Predicate looks up a declared predicate by name.
func (d Domain) Predicate(name string) (Predicate, bool) {
	for _, p := range d.Predicates {
		if p.Name == name {
			return p, true
		}
	}
	return Predicate{}, false
}
