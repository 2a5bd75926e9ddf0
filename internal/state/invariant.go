package state

import (
	"github.com/dekarrin/ltlplan/internal/symbol"
)

// PredRef names one side of a lifted mutex pattern: a predicate name plus
// its declared arity.
type PredRef struct {
	Name  string
	Arity int
}

// PosPair is a pair of argument positions, the first indexing into the
// first predicate's argument list and the second into the second's.
type PosPair struct {
	A, B int
}

// Pattern is a lifted mutex pattern: two predicate templates plus the
// argument-position pairs that must agree (Shared) and the pairs that must
// be known-distinct (Different) for a pair of atoms to match it. Two atoms
// matching a pattern can never co-occur in any reachable state.
type Pattern struct {
	P, Q      PredRef
	Shared    []PosPair
	Different []PosPair
}

// Matches reports whether atoms a and b match the pattern, trying both
// predicate orderings since a pattern's two sides are unordered.
// distinct reports whether two terms are known to
// be pairwise distinct (e.g. because they are different ground constants or
// related by an explicit inequality constraint elsewhere in the state).
func (p Pattern) Matches(a, b symbol.Atom, distinct func(t1, t2 symbol.Term) bool) bool {
	if p.matchesOrdered(a, b, distinct) {
		return true
	}
	return p.matchesOrdered(b, a, distinct)
}

func (p Pattern) matchesOrdered(a, b symbol.Atom, distinct func(t1, t2 symbol.Term) bool) bool {
	if a.Predicate != p.P.Name || b.Predicate != p.Q.Name {
		return false
	}
	if len(a.Args) != p.P.Arity || len(b.Args) != p.Q.Arity {
		return false
	}
	if a.Negated || b.Negated {
		// a lifted mutex pattern only ever rules out two POSITIVE atoms
		// co-occurring; a negated atom is not "holding" anything.
		return false
	}
	for _, sp := range p.Shared {
		if a.Args[sp.A] != b.Args[sp.B] {
			return false
		}
	}
	for _, dp := range p.Different {
		if !distinct(a.Args[dp.A], b.Args[dp.B]) {
			return false
		}
	}
	return true
}

// equalTerm is the default equality used when no finer distinctness
// information is available: literal term identity.
func equalTerm(t1, t2 symbol.Term) bool {
	return t1.IsVar == t2.IsVar && t1.Name == t2.Name
}

// makeDistinctFn builds the "known distinct" predicate used by Pattern.Matches
// from the state's own explicit inequality constraints plus the rule that any
// two differently-named ground constants are always distinct.
func makeDistinctFn(s State) func(t1, t2 symbol.Term) bool {
	explicit := map[string]bool{}
	for _, c := range s.Constraints {
		n := c.Normalize()
		explicit[n.T1.Name+"\x00"+n.T2.Name] = true
	}
	return func(t1, t2 symbol.Term) bool {
		if equalTerm(t1, t2) {
			return false
		}
		if !t1.IsVar && !t2.IsVar {
			return true
		}
		key := t1.Name + "\x00" + t2.Name
		if t1.Name > t2.Name {
			key = t2.Name + "\x00" + t1.Name
		}
		return explicit[key]
	}
}

// HasMutexViolation reports whether any two atoms in s match one of the
// given lifted mutex patterns, or whether s holds two distinct positive
// instances of a singleton predicate. A state with a violation is
// unreachable and must never enter the state graph.
func HasMutexViolation(s State, patterns []Pattern, singletons map[string]bool) bool {
	distinct := makeDistinctFn(s)

	for i := 0; i < len(s.Atoms); i++ {
		ai := s.Atoms[i]
		if singletons != nil && singletons[ai.Predicate] && !ai.Negated {
			for j := i + 1; j < len(s.Atoms); j++ {
				aj := s.Atoms[j]
				if aj.Predicate == ai.Predicate && !aj.Negated && !ai.Equal(aj) {
					return true
				}
			}
		}
		for j := i + 1; j < len(s.Atoms); j++ {
			aj := s.Atoms[j]
			for _, p := range patterns {
				if p.Matches(ai, aj, distinct) {
					return true
				}
			}
		}
	}
	return false
}
