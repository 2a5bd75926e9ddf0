package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const blocksWorldSrc = `
(define (domain blocksworld)
  (:types block)
  (:predicates
    (on ?x - block ?y - block)
    (clear ?x - block)
    (holding ?x - block)
    (handempty))
  (:action pickup
    :parameters (?x - block)
    :precondition (and (clear ?x) (handempty))
    :effect (and (holding ?x) (not (clear ?x)) (not (handempty))))
  (:action putdown
    :parameters (?x - block ?y - block)
    :precondition (and (holding ?x) (clear ?y) (not (= ?x ?y)))
    :effect (oneof
      (and (on ?x ?y) (clear ?x) (handempty) (not (holding ?x)))
      (and (clear ?x) (handempty) (not (holding ?x))))))
`

func Test_Parse_BlocksWorld(t *testing.T) {
	assert := assert.New(t)

	d, err := Parse(blocksWorldSrc)
	assert.NoError(err)
	assert.Equal("blocksworld", d.Name)
	assert.Equal([]string{"block"}, d.Types)
	assert.Len(d.Predicates, 4)

	onPred, ok := d.Predicate("on")
	assert.True(ok)
	assert.Equal(2, onPred.Arity())

	assert.Len(d.Actions, 2)

	pickup := d.Actions[0]
	assert.Equal("pickup", pickup.Name)
	assert.True(pickup.Deterministic())
	assert.Len(pickup.PrecondAtoms, 2)
	assert.Len(pickup.Branches, 1)
	assert.Len(pickup.Branches[0].Add, 1)
	assert.Len(pickup.Branches[0].Del, 2)

	putdown := d.Actions[1]
	assert.Equal("putdown", putdown.Name)
	assert.False(putdown.Deterministic())
	assert.Len(putdown.PrecondNeqs, 1)
	assert.Equal(Neq{A: "?x", B: "?y"}, putdown.PrecondNeqs[0])
	assert.Len(putdown.Branches, 2)
	assert.Len(putdown.Branches[0].Add, 3)
	assert.Len(putdown.Branches[1].Add, 2)
}

func Test_Parse_RejectsMalformedDefine(t *testing.T) {
	assert := assert.New(t)

	_, err := Parse("(not-define (domain x))")
	assert.Error(err)
}

func Test_Parse_RejectsMultipleTopLevelForms(t *testing.T) {
	assert := assert.New(t)

	_, err := Parse(`(define (domain a)) (define (domain b))`)
	assert.Error(err)
}

func Test_ParseWithWarnings_FlagsUndeclaredType(t *testing.T) {
	assert := assert.New(t)

	src := `
(define (domain d)
  (:types block)
  (:predicates (on ?x - block ?y - widget)))
`
	d, warn, fatal := ParseWithWarnings(src)
	assert.NoError(fatal)
	assert.Error(warn)
	assert.Len(d.Predicates, 1)
}

func Test_ParseTypedVarList_UntypedTrailingVars(t *testing.T) {
	assert := assert.New(t)

	forms, err := readAll("(?x ?y - block ?z)")
	assert.NoError(err)
	vars, err := parseTypedVarList(forms[0].children)
	assert.NoError(err)
	assert.Equal([]TypedVar{
		{Name: "?x", Type: "block"},
		{Name: "?y", Type: "block"},
		{Name: "?z"},
	}, vars)
}
