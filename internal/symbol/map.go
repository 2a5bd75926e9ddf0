package symbol

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dekarrin/ltlplan/internal/ltlerr"
	"github.com/dekarrin/ltlplan/internal/util"
)

// ErrInvalidSymbol is returned by Encode when the predicate name or one of
// its arguments contains the "_" separator character used by the encoding
// itself.
var ErrInvalidSymbol = errors.New("predicate name or argument contains reserved '_' separator")

// hyphenEscape is the two-character sequence "-" is rewritten to inside an
// encoded symbol, so that "_" can be used unambiguously as the
// predicate/argument separator.
const hyphenEscape = "hh"

// Map is a bijection between ground atoms and the propositional symbols
// used on DFA edge labels. It is populated while the front-end flattens
// the LTLf specification (or built from the domain's predicates and
// objects when none is supplied) and consulted when a partition's symbol
// assignment is decoded back into the goal atoms handed to the planner.
//
// A Map is not safe for concurrent use; each compilation owns exactly
// one.
type Map struct {
	bySymbol map[string]Atom
	byAtom   map[string]string // keyed by a canonical atom string
}

// New creates an empty grounding map.
func New() *Map {
	return &Map{
		bySymbol: make(map[string]Atom),
		byAtom:   make(map[string]string),
	}
}

// atomKey produces a stable key for an atom's name+args (polarity is
// irrelevant to grounding: the map only ever stores positive ground atoms,
// since polarity is a property of how an atom is used on an edge label, not
// of the underlying proposition).
func atomKey(pred string, args []string) string {
	return pred + "\x00" + strings.Join(args, "\x00")
}

// Encode computes the propositional symbol for the ground atom
// pred(args...), inserts it into the map, and returns it. Returns
// ErrInvalidSymbol if pred or any argument contains "_". Returns a
// KindInternalInvariantViolation error if the same symbol would map to two
// different atoms (a collision), since the map promises injectivity.
func (m *Map) Encode(pred string, args []string) (string, error) {
	if strings.Contains(pred, "_") {
		return "", fmt.Errorf("%w: predicate %q", ErrInvalidSymbol, pred)
	}
	for _, a := range args {
		if strings.Contains(a, "_") {
			return "", fmt.Errorf("%w: argument %q", ErrInvalidSymbol, a)
		}
	}

	encodedArgs := make([]string, len(args))
	for i, a := range args {
		encodedArgs[i] = strings.ReplaceAll(a, "-", hyphenEscape)
	}

	sym := pred
	for _, a := range encodedArgs {
		sym += "_" + a
	}

	key := atomKey(pred, args)
	if existingSym, ok := m.byAtom[key]; ok {
		return existingSym, nil
	}

	if existing, collides := m.bySymbol[sym]; collides {
		if existing.Predicate != pred || !equalArgs(existing.ArgNames(), args) {
			return "", ltlerr.Newf(ltlerr.KindInternalInvariantViolation,
				"symbol %q already maps to a different atom %s", sym, existing)
		}
	}

	terms := make([]Term, len(args))
	for i, a := range args {
		terms[i] = Const(a)
	}
	atom := Atom{Predicate: pred, Args: terms}

	m.bySymbol[sym] = atom
	m.byAtom[key] = sym
	return sym, nil
}

func equalArgs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Decode looks up the ground atom previously associated with symbol. This
// is a lookup, not an algebraic string inversion, so "hh" occurring
// naturally in an object name is never confused with "hh" inserted by
// Encode.
func (m *Map) Decode(sym string) (Atom, error) {
	atom, ok := m.bySymbol[sym]
	if !ok {
		return Atom{}, ltlerr.Newf(ltlerr.KindUnknownSymbol, "no ground atom registered for symbol %q", sym)
	}
	return atom, nil
}

// Contains reports whether sym is a known propositional symbol.
func (m *Map) Contains(sym string) bool {
	_, ok := m.bySymbol[sym]
	return ok
}

// Iter returns every known symbol in deterministic (lexicographic) order.
func (m *Map) Iter() []string {
	return util.OrderedKeys(m.bySymbol)
}

// Len returns the number of registered symbols.
func (m *Map) Len() int { return len(m.bySymbol) }
