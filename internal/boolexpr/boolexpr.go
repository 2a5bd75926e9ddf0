// Package boolexpr represents the boolean expressions carried by DFA edge
// labels and parses their textual form. After parsing, every implication
// and biconditional is desugared away; downstream code (internal/partition)
// only ever pattern-matches on the remaining variants.
package boolexpr

import "sort"

// Kind tags which node variant an Expr is.
type Kind int

const (
	KindLiteral Kind = iota
	KindAnd
	KindOr
	KindNot
)

// Expr is a boolean expression over propositional symbols. Implication and
// biconditional are not variants of this type: the parser desugars
// `a -> b` to `!a | b` and `a <-> b` to `(a & b) | (!a & !b)` at parse
// time, so every Expr a caller ever sees is one of literal, and, or, not.
type Expr struct {
	Kind    Kind
	Symbol  string // set iff Kind == KindLiteral
	Value   bool   // literal boolean constant when Symbol == ""
	Operand *Expr  // set iff Kind == KindNot
	Left    *Expr  // set iff Kind == KindAnd or KindOr
	Right   *Expr  // set iff Kind == KindAnd or KindOr
}

func Lit(symbol string) *Expr { return &Expr{Kind: KindLiteral, Symbol: symbol} }

func Const(v bool) *Expr { return &Expr{Kind: KindLiteral, Value: v} }

func Not(e *Expr) *Expr { return &Expr{Kind: KindNot, Operand: e} }

func And(l, r *Expr) *Expr { return &Expr{Kind: KindAnd, Left: l, Right: r} }

func Or(l, r *Expr) *Expr { return &Expr{Kind: KindOr, Left: l, Right: r} }

// Implies desugars `l -> r` to `!l | r`.
func Implies(l, r *Expr) *Expr { return Or(Not(l), r) }

// Iff desugars `l <-> r` to `(l & r) | (!l & !r)`.
func Iff(l, r *Expr) *Expr { return Or(And(l, r), And(Not(l), Not(r))) }

// Symbols returns every distinct propositional symbol occurring in e, in
// sorted order. This is the expression's used support.
func Symbols(e *Expr) []string {
	seen := map[string]bool{}
	var walk func(*Expr)
	walk = func(e *Expr) {
		if e == nil {
			return
		}
		switch e.Kind {
		case KindLiteral:
			if e.Symbol != "" {
				seen[e.Symbol] = true
			}
		case KindNot:
			walk(e.Operand)
		case KindAnd, KindOr:
			walk(e.Left)
			walk(e.Right)
		}
	}
	walk(e)
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Tristate is a three-valued truth value for evaluating an expression
// under a partial assignment: a symbol with no entry in the assignment is
// Unknown rather than assumed false.
type Tristate int

const (
	Unknown Tristate = iota
	True
	False
)

func triFromBool(b bool) Tristate {
	if b {
		return True
	}
	return False
}

// EvalPartial evaluates e under a partial assignment, short-circuiting
// where possible (e.g. `false & x` is False regardless of x) and
// returning Unknown only when the result genuinely depends on an
// unassigned symbol.
func EvalPartial(e *Expr, assignment map[string]bool) Tristate {
	switch e.Kind {
	case KindLiteral:
		if e.Symbol == "" {
			return triFromBool(e.Value)
		}
		v, ok := assignment[e.Symbol]
		if !ok {
			return Unknown
		}
		return triFromBool(v)
	case KindNot:
		switch EvalPartial(e.Operand, assignment) {
		case True:
			return False
		case False:
			return True
		default:
			return Unknown
		}
	case KindAnd:
		l := EvalPartial(e.Left, assignment)
		if l == False {
			return False
		}
		r := EvalPartial(e.Right, assignment)
		if r == False {
			return False
		}
		if l == True && r == True {
			return True
		}
		return Unknown
	case KindOr:
		l := EvalPartial(e.Left, assignment)
		if l == True {
			return True
		}
		r := EvalPartial(e.Right, assignment)
		if r == True {
			return True
		}
		if l == False && r == False {
			return False
		}
		return Unknown
	default:
		return Unknown
	}
}

// Eval evaluates e under the given total assignment of its symbols. A
// symbol absent from assignment is treated as false.
func Eval(e *Expr, assignment map[string]bool) bool {
	switch e.Kind {
	case KindLiteral:
		if e.Symbol == "" {
			return e.Value
		}
		return assignment[e.Symbol]
	case KindNot:
		return !Eval(e.Operand, assignment)
	case KindAnd:
		return Eval(e.Left, assignment) && Eval(e.Right, assignment)
	case KindOr:
		return Eval(e.Left, assignment) || Eval(e.Right, assignment)
	default:
		return false
	}
}
