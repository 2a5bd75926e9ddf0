package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Map_EncodeDecode_RoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		pred string
		args []string
	}{
		{name: "no args", pred: "handempty", args: nil},
		{name: "single const", pred: "clear", args: []string{"a"}},
		{name: "multiple const", pred: "on", args: []string{"a", "b"}},
		{name: "hyphenated constant", pred: "on", args: []string{"block-a", "block-b"}},
		{name: "multi-char constants with digits", pred: "at", args: []string{"robot1", "loc-22"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			m := New()
			sym, err := m.Encode(tc.pred, tc.args)
			if !assert.NoError(err) {
				return
			}

			atom, err := m.Decode(sym)
			if !assert.NoError(err) {
				return
			}

			assert.Equal(tc.pred, atom.Predicate)
			assert.Equal(tc.args, atom.ArgNames())
		})
	}
}

func Test_Map_Encode_Idempotent(t *testing.T) {
	assert := assert.New(t)

	m := New()
	sym1, err := m.Encode("on", []string{"a", "b"})
	assert.NoError(err)
	sym2, err := m.Encode("on", []string{"a", "b"})
	assert.NoError(err)

	assert.Equal(sym1, sym2)
	assert.Equal(1, m.Len())
}

func Test_Map_Encode_DistinctHyphenatedNamesDoNotCollide(t *testing.T) {
	assert := assert.New(t)

	m := New()
	// "a-b" and "a" + "b" each encode distinctly because hyphens are
	// escaped to "hh" while "_" remains the sole positional separator.
	sym1, err := m.Encode("p", []string{"a-b"})
	assert.NoError(err)
	sym2, err := m.Encode("p", []string{"a", "b"})
	assert.NoError(err)

	assert.NotEqual(sym1, sym2)

	atom1, err := m.Decode(sym1)
	assert.NoError(err)
	assert.Equal([]string{"a-b"}, atom1.ArgNames())

	atom2, err := m.Decode(sym2)
	assert.NoError(err)
	assert.Equal([]string{"a", "b"}, atom2.ArgNames())
}

func Test_Map_Encode_RejectsUnderscoreInPredicate(t *testing.T) {
	assert := assert.New(t)

	m := New()
	_, err := m.Encode("on_top", []string{"a"})
	assert.ErrorIs(err, ErrInvalidSymbol)
}

func Test_Map_Encode_RejectsUnderscoreInArgument(t *testing.T) {
	assert := assert.New(t)

	m := New()
	_, err := m.Encode("on", []string{"a_1"})
	assert.ErrorIs(err, ErrInvalidSymbol)
}

func Test_Map_Decode_UnknownSymbol(t *testing.T) {
	assert := assert.New(t)

	m := New()
	_, err := m.Decode("on_a_b")
	assert.Error(err)
	assert.False(m.Contains("on_a_b"))
}

func Test_Map_Iter_Deterministic(t *testing.T) {
	assert := assert.New(t)

	m := New()
	_, _ = m.Encode("on", []string{"b", "a"})
	_, _ = m.Encode("clear", []string{"a"})
	_, _ = m.Encode("handempty", nil)

	first := m.Iter()
	second := m.Iter()
	assert.Equal(first, second)
	assert.Len(first, 3)
}
