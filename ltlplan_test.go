package ltlplan

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/ltlplan/internal/config"
)

const e2eDomainSrc = `
(define (domain blocks)
  (:types block)
  (:predicates
    (on ?x - block ?y - block)
    (clear ?x - block))
  (:action move
    :parameters (?x - block ?from - block ?to - block)
    :precondition (and (on ?x ?from) (clear ?x) (clear ?to) (not (= ?from ?to)) (not (= ?x ?to)))
    :effect (and (on ?x ?to) (clear ?from) (not (on ?x ?from)) (not (clear ?to)))))
`

const e2eDFASrc = `
init -> q0
q0 -> q1 [label="on_a_b"]
q1 -> q1 [label="true"]
q1 [accepting]
`

// stubTranslatorScript stands in for the external SAS⁺ translator: it
// honors the --sas-file flag and writes a fixed single-variable output,
// exercising the full invoke-then-parse path of invariant extraction.
const stubTranslatorScript = `#!/bin/sh
out="output.sas"
while [ "$#" -gt 0 ]; do
    if [ "$1" = "--sas-file" ]; then
        out="$2"
    fi
    shift
done
cat > "$out" <<'EOF'
begin_variable
var0
-1
2
Atom clear(a)
Atom on(b, a)
end_variable
EOF
`

func TestCompile_EndToEnd_BlocksWorld(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("the stub SAS translator is a shell script")
	}

	dir := t.TempDir()
	translator := filepath.Join(dir, "translate.sh")
	require.NoError(t, os.WriteFile(translator, []byte(stubTranslatorScript), 0755))

	cfg := config.Config{
		MaxStates:    200,
		ObjectBudget: 2,
		Tools:        config.Tools{SASTranslatorPath: translator},
	}
	c := New(cfg, nil)

	result, err := c.Compile(context.Background(), Input{
		Instruction: "put a on b",
		LTLf:        "F(on(a,b))",
		DFASource:   e2eDFASrc,
		DomainSrc:   e2eDomainSrc,
		Objects:     []string{"a", "b"},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.Rules)
	assert.Contains(t, result.PlanLibrary, "objects ")
	assert.Contains(t, result.PlanLibrary, "on/2")
	assert.Contains(t, result.PlanLibrary, "move(")

	require.NotEmpty(t, result.Log.Partitions)
	require.NotEmpty(t, result.Log.Disjuncts)

	hits := 0
	negGoalSeen := false
	for _, d := range result.Log.Disjuncts {
		if d.CacheHit {
			hits++
		}
		if strings.Contains(d.Goal, "¬on(a, b)") {
			negGoalSeen = true
		}
	}
	assert.Greater(t, hits, 0, "the q1 self-loop shares the q0 edge's goal and must hit the schema-level cache")
	assert.True(t, negGoalSeen, "the all-false partition on the self-loop regresses the negated literal")
}

func TestCompile_Deterministic(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("the stub SAS translator is a shell script")
	}

	dir := t.TempDir()
	translator := filepath.Join(dir, "translate.sh")
	require.NoError(t, os.WriteFile(translator, []byte(stubTranslatorScript), 0755))

	cfg := config.Config{
		MaxStates:    200,
		ObjectBudget: 2,
		Tools:        config.Tools{SASTranslatorPath: translator},
	}
	in := Input{
		Instruction: "put a on b",
		DFASource:   e2eDFASrc,
		DomainSrc:   e2eDomainSrc,
		Objects:     []string{"a", "b"},
	}

	first, err := New(cfg, nil).Compile(context.Background(), in)
	require.NoError(t, err)
	second, err := New(cfg, nil).Compile(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, first.PlanLibrary, second.PlanLibrary,
		"identical inputs and budgets must produce a byte-identical plan library")
}

func TestCompile_MissingTranslatorAborts(t *testing.T) {
	c := New(config.Config{}, nil)

	_, err := c.Compile(context.Background(), Input{
		DFASource: e2eDFASrc,
		DomainSrc: e2eDomainSrc,
		Objects:   []string{"a", "b"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "InvariantExtractionFailed")
}

func TestCompile_MalformedDomainSurfacesParseError(t *testing.T) {
	c := New(config.Config{}, nil)

	_, err := c.Compile(context.Background(), Input{
		DFASource: e2eDFASrc,
		DomainSrc: "(define (domain broken)",
		Objects:   []string{"a"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DomainParseError")
}
