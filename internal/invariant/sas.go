package invariant

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dekarrin/ltlplan/internal/state"
)

// groundAtom is one value a SAS⁺ finite-domain variable can take, parsed
// from an "Atom pred(arg1, arg2, ...)" line. Trailing whitespace and
// blank lines are tolerated throughout.
type groundAtom struct {
	pred string
	args []string
}

var (
	varPattern = regexp.MustCompile(`(?s)begin_variable\s+var(\d+)\s+(-?\d+)\s+(\d+)\s+(.*?)\s*end_variable`)
	atomLine   = regexp.MustCompile(`^Atom\s+([\w-]+)\(([^)]*)\)$`)
	mutexGroup = regexp.MustCompile(`(?s)begin_mutex_group\s+\d+\s+((?:\d+\s+\d+\s*\n?)+)end_mutex_group`)
)

// parseSAS reads a SAS⁺ translator output and derives the two extraction
// artifacts from it: intra-variable pairs (every two values of one
// finite-domain variable are mutually exclusive by construction) and
// cross-variable pairs named by explicit mutex-group sections.
func parseSAS(sasContent string) Result {
	varAtoms := map[int][]groundAtom{}

	for _, m := range varPattern.FindAllStringSubmatch(sasContent, -1) {
		varID, _ := strconv.Atoi(m[1])
		var atoms []groundAtom
		for _, line := range strings.Split(strings.TrimSpace(m[4]), "\n") {
			line = strings.TrimSpace(line)
			if !strings.HasPrefix(line, "Atom ") {
				continue
			}
			am := atomLine.FindStringSubmatch(line)
			if am == nil {
				continue
			}
			var args []string
			if strings.TrimSpace(am[2]) != "" {
				for _, a := range strings.Split(am[2], ",") {
					args = append(args, strings.TrimSpace(a))
				}
			}
			atoms = append(atoms, groundAtom{pred: am[1], args: args})
		}
		varAtoms[varID] = atoms
	}

	patternSet := map[string]state.Pattern{}
	singletons := map[string]bool{}

	addPairs := func(atoms []groundAtom) {
		for i := 0; i < len(atoms); i++ {
			for j := i + 1; j < len(atoms); j++ {
				if p, ok := liftedPattern(atoms[i], atoms[j]); ok {
					patternSet[patternKey(p)] = p
				}
			}
		}
	}

	for _, atoms := range varAtoms {
		addPairs(atoms)
	}

	for _, gm := range mutexGroup.FindAllStringSubmatch(sasContent, -1) {
		var group []groundAtom
		predCount := map[string]int{}
		for _, line := range strings.Split(strings.TrimSpace(gm[1]), "\n") {
			fields := strings.Fields(line)
			if len(fields) != 2 {
				continue
			}
			varID, err1 := strconv.Atoi(fields[0])
			valID, err2 := strconv.Atoi(fields[1])
			if err1 != nil || err2 != nil {
				continue
			}
			atoms, ok := varAtoms[varID]
			if !ok || valID < 0 || valID >= len(atoms) {
				continue
			}
			a := atoms[valID]
			group = append(group, a)
			predCount[a.pred]++
		}
		addPairs(group)
		for pred, n := range predCount {
			if n > 1 {
				singletons[pred] = true
			}
		}
	}

	out := make([]state.Pattern, 0, len(patternSet))
	for _, p := range patternSet {
		out = append(out, p)
	}

	return Result{Singletons: singletons, Patterns: sortedPatterns(out)}
}

// liftedPattern derives the lifted mutex pattern for one pair of mutually
// exclusive ground atoms: every position pair (i, j) is marked shared when
// the two atoms' arguments there are textually equal and different
// otherwise. The full cross product matters: on(b1,b2) vs on(b2,b1) lifts
// to on(X,Y) vs on(Y,X), which only the cross pairs capture. Identical
// same-predicate atoms are discarded as trivial (they could only ever
// match a single ground atom with itself).
func liftedPattern(a, b groundAtom) (state.Pattern, bool) {
	var shared, different []state.PosPair

	for i, ai := range a.args {
		for j, bj := range b.args {
			if ai == bj {
				shared = append(shared, state.PosPair{A: i, B: j})
			} else {
				different = append(different, state.PosPair{A: i, B: j})
			}
		}
	}

	if a.pred == b.pred && identicalArgs(a.args, b.args) {
		return state.Pattern{}, false
	}

	return state.Pattern{
		P:         state.PredRef{Name: a.pred, Arity: len(a.args)},
		Q:         state.PredRef{Name: b.pred, Arity: len(b.args)},
		Shared:    shared,
		Different: different,
	}, true
}

func patternKey(p state.Pattern) string {
	p1, p2 := p.P, p.Q
	sh, di := p.Shared, p.Different
	if p2.Name < p1.Name {
		p1, p2 = p2, p1
		sh = swapPairs(p.Shared)
		di = swapPairs(p.Different)
	}
	var sb strings.Builder
	sb.WriteString(p1.Name)
	sb.WriteString(strconv.Itoa(p1.Arity))
	sb.WriteString(p2.Name)
	sb.WriteString(strconv.Itoa(p2.Arity))
	for _, pp := range sh {
		sb.WriteString("s")
		sb.WriteString(strconv.Itoa(pp.A))
		sb.WriteString("_")
		sb.WriteString(strconv.Itoa(pp.B))
	}
	for _, pp := range di {
		sb.WriteString("d")
		sb.WriteString(strconv.Itoa(pp.A))
		sb.WriteString("_")
		sb.WriteString(strconv.Itoa(pp.B))
	}
	return sb.String()
}

func identicalArgs(a, b []string) bool {
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

func swapPairs(pairs []state.PosPair) []state.PosPair {
	out := make([]state.PosPair, len(pairs))
	for i, p := range pairs {
		out[i] = state.PosPair{A: p.B, B: p.A}
	}
	return out
}
