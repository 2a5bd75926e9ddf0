package state

import (
	"testing"

	"github.com/dekarrin/ltlplan/internal/symbol"
	"github.com/stretchr/testify/assert"
)

func onAtom(x, y symbol.Term) symbol.Atom {
	return symbol.Atom{Predicate: "on", Args: []symbol.Term{x, y}}
}

func Test_Canonicalize_Idempotent(t *testing.T) {
	assert := assert.New(t)

	x, y := symbol.Var("?x7"), symbol.Var("?y2")
	s := New([]symbol.Atom{onAtom(x, y)}, nil, 0, 7)

	once := Canonicalize(s)
	twice := Canonicalize(once)

	assert.True(Equal(once, twice))
	assert.Equal(CanonicalKey(once), CanonicalKey(twice))
}

func Test_Equal_AlphaEquivalence(t *testing.T) {
	assert := assert.New(t)

	a := New([]symbol.Atom{onAtom(symbol.Var("?x"), symbol.Var("?y"))}, nil, 0, 1)
	b := New([]symbol.Atom{onAtom(symbol.Var("?foo"), symbol.Var("?bar"))}, nil, 0, 1)

	assert.True(Equal(a, b))
}

func Test_Equal_DistinctStatesNotEqual(t *testing.T) {
	assert := assert.New(t)

	a := New([]symbol.Atom{onAtom(symbol.Const("a"), symbol.Const("b"))}, nil, 0, 0)
	b := New([]symbol.Atom{onAtom(symbol.Const("a"), symbol.Const("c"))}, nil, 0, 0)

	assert.False(Equal(a, b))
}

func Test_ObjectBudget_ChainRetainedAtTwo(t *testing.T) {
	// on(?x, ?y) ∧ on(?y, ?z) should be retained under budget 2: with no
	// inequalities and no singleton predicates the constraint graph has no
	// edges, so the clique lower bound is 1, well under the budget.
	assert := assert.New(t)

	x, y, z := symbol.Var("?x"), symbol.Var("?y"), symbol.Var("?z")
	s := New([]symbol.Atom{onAtom(x, y), onAtom(y, z)}, nil, 0, 2)

	assert.False(InfeasibleAtBudget(s, nil, 2))
}

func Test_ObjectBudget_ThreeMutuallyDistinctPruned(t *testing.T) {
	assert := assert.New(t)

	x, y, z := symbol.Var("?x"), symbol.Var("?y"), symbol.Var("?z")
	s := New([]symbol.Atom{onAtom(x, y), onAtom(y, z)}, []Inequality{
		{T1: x, T2: y}, {T1: y, T2: z}, {T1: x, T2: z},
	}, 0, 2)

	assert.True(InfeasibleAtBudget(s, nil, 2))
}

func Test_HasMutexViolation_SingletonPredicate(t *testing.T) {
	assert := assert.New(t)

	a := symbol.Atom{Predicate: "holding", Args: []symbol.Term{symbol.Const("a")}}
	b := symbol.Atom{Predicate: "holding", Args: []symbol.Term{symbol.Const("b")}}
	s := New([]symbol.Atom{a, b}, nil, 0, 0)

	singletons := map[string]bool{"holding": true}
	violated := HasMutexViolation(s, nil, singletons)
	assert.True(violated)
}

func Test_HasMutexViolation_Pattern(t *testing.T) {
	assert := assert.New(t)

	handempty := symbol.Atom{Predicate: "handempty"}
	holding := symbol.Atom{Predicate: "holding", Args: []symbol.Term{symbol.Const("a")}}
	s := New([]symbol.Atom{handempty, holding}, nil, 0, 0)

	pattern := Pattern{
		P: PredRef{Name: "handempty", Arity: 0},
		Q: PredRef{Name: "holding", Arity: 1},
	}

	assert.True(HasMutexViolation(s, []Pattern{pattern}, nil))
}
