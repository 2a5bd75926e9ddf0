package partition

import (
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/ltlplan/internal/boolexpr"
	"github.com/dekarrin/ltlplan/internal/dfa"
)

const twoSymbolDFA = `
init -> q0
q0 -> q1 [label="p & q"]
q0 -> q2 [label="p & !q"]
q0 -> q0 [label="!p"]
q1 -> q1 [label="true"]
q1 [accepting]
`

func mustParse(t *testing.T, src string) *dfa.Automaton {
	t.Helper()
	a, err := dfa.Parse(src)
	require.NoError(t, err)
	return a
}

// assignmentKey serialises one assignment over its sorted support, so two
// backends' partition sets can be compared without caring which backend
// numbered which partition first.
func assignmentKey(a map[string]bool) string {
	syms := make([]string, 0, len(a))
	for s := range a {
		syms = append(syms, s)
	}
	sort.Strings(syms)
	var sb strings.Builder
	for _, s := range syms {
		fmt.Fprintf(&sb, "%s=%v;", s, a[s])
	}
	return sb.String()
}

func Test_MintermRefiner_RetainsEverySatisfyingAssignment(t *testing.T) {
	assert := assert.New(t)

	raw := mustParse(t, twoSymbolDFA)
	refined, err := MintermRefiner{}.Refine(raw)
	require.NoError(t, err)

	// the q1 self-loop is labelled "true", so every assignment over {p, q}
	// satisfies at least one edge label and all four minterms are retained.
	assert.Equal([]string{"p", "q"}, refined.Support)
	assert.Len(refined.Partitions, 4)

	seen := map[string]bool{}
	for _, part := range refined.Partitions {
		key := assignmentKey(part.Assignment)
		assert.False(seen[key], "no two retained partitions may share an assignment")
		seen[key] = true
	}
}

func Test_MintermRefiner_EdgesCarryOnlySatisfyingPartitions(t *testing.T) {
	assert := assert.New(t)

	raw := mustParse(t, twoSymbolDFA)
	refined, err := MintermRefiner{}.Refine(raw)
	require.NoError(t, err)

	bySymbol := map[string]Partition{}
	for _, part := range refined.Partitions {
		bySymbol[part.Symbol] = part
	}

	// q0's "p & q" edge must survive as exactly one partition-labelled
	// edge to q1, and that partition's assignment must satisfy the label.
	var toQ1 []string
	for _, e := range refined.DFA.Edges("q0") {
		if e.Next == "q1" {
			toQ1 = append(toQ1, e.Label)
		}
	}
	if assert.Len(toQ1, 1) {
		part := bySymbol[toQ1[0]]
		expr, err := boolexpr.Parse("p & q")
		require.NoError(t, err)
		assert.True(boolexpr.Eval(expr, part.Assignment))
	}

	// the "true" self-loop on q1 is associated with the full partition set.
	assert.Len(refined.DFA.Edges("q1"), len(refined.Partitions))
}

func Test_MintermRefiner_DropsUnsatisfiableMinterms(t *testing.T) {
	assert := assert.New(t)

	// with no "true" self-loop, the assignment p=false q=true satisfies no
	// label and must not be retained.
	raw := mustParse(t, `
init -> q0
q0 -> q1 [label="p"]
q0 -> q0 [label="!p & !q"]
`)
	refined, err := MintermRefiner{}.Refine(raw)
	require.NoError(t, err)

	assert.Len(refined.Partitions, 3)
	for _, part := range refined.Partitions {
		assert.False(!part.Assignment["p"] && part.Assignment["q"],
			"the one unsatisfying assignment must have been dropped")
	}
}

func Test_BDDRefiner_MatchesMintermPartitionSet(t *testing.T) {
	assert := assert.New(t)

	raw := mustParse(t, twoSymbolDFA)

	viaMinterm, err := MintermRefiner{}.Refine(raw)
	require.NoError(t, err)
	viaBDD, err := BDDRefiner{}.Refine(raw)
	require.NoError(t, err)

	mintermSet := map[string]bool{}
	for _, part := range viaMinterm.Partitions {
		mintermSet[assignmentKey(part.Assignment)] = true
	}
	bddSet := map[string]bool{}
	for _, part := range viaBDD.Partitions {
		bddSet[assignmentKey(part.Assignment)] = true
	}

	assert.Equal(mintermSet, bddSet, "both backends must retain exactly the same set of assignments")
}

func Test_AutoSelect_SwitchesBackendPastThreshold(t *testing.T) {
	assert := assert.New(t)

	small := mustParse(t, twoSymbolDFA)
	_, isMinterm := AutoSelect(small).(MintermRefiner)
	assert.True(isMinterm, "a two-symbol support stays on the flat truth table")

	var sb strings.Builder
	sb.WriteString("init -> q0\n")
	for i := 0; i <= mintermThreshold; i++ {
		fmt.Fprintf(&sb, "q0 -> q0 [label=\"sym%d\"]\n", i)
	}
	big := mustParse(t, sb.String())
	_, isBDD := AutoSelect(big).(BDDRefiner)
	assert.True(isBDD, "a support past the threshold moves to the BDD walk")
}
