package boolexpr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Parse_Precedence(t *testing.T) {
	assert := assert.New(t)

	e, err := Parse("p & !q | r")
	assert.NoError(err)
	// (p & !q) | r
	assert.Equal(KindOr, e.Kind)
	assert.Equal(KindAnd, e.Left.Kind)
	assert.Equal("r", e.Right.Symbol)
}

func Test_Parse_ImpliesDesugars(t *testing.T) {
	assert := assert.New(t)

	e, err := Parse("p -> q")
	assert.NoError(err)
	// !p | q
	assert.Equal(KindOr, e.Kind)
	assert.Equal(KindNot, e.Left.Kind)
	assert.Equal("p", e.Left.Operand.Symbol)
	assert.Equal("q", e.Right.Symbol)
}

func Test_Parse_IffDesugars(t *testing.T) {
	assert := assert.New(t)

	e, err := Parse("p <-> q")
	assert.NoError(err)
	assert.Equal(KindOr, e.Kind)
}

func Test_Parse_Parentheses(t *testing.T) {
	assert := assert.New(t)

	e, err := Parse("p & (q | r)")
	assert.NoError(err)
	assert.Equal(KindAnd, e.Kind)
	assert.Equal(KindOr, e.Right.Kind)
}

func Test_Symbols_Deduplicated(t *testing.T) {
	assert := assert.New(t)

	e, err := Parse("p & (q | p)")
	assert.NoError(err)
	assert.Equal([]string{"p", "q"}, Symbols(e))
}

func Test_Eval(t *testing.T) {
	assert := assert.New(t)

	e, err := Parse("p & !q")
	assert.NoError(err)
	assert.True(Eval(e, map[string]bool{"p": true, "q": false}))
	assert.False(Eval(e, map[string]bool{"p": true, "q": true}))
	assert.False(Eval(e, map[string]bool{}))
}

func Test_Parse_TrueLiteral(t *testing.T) {
	assert := assert.New(t)

	e, err := Parse("true")
	assert.NoError(err)
	assert.True(Eval(e, nil))
}
