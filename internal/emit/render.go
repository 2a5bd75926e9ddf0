package emit

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/dekarrin/ltlplan/internal/domain"
	"github.com/dekarrin/ltlplan/internal/state"
	"github.com/dekarrin/ltlplan/internal/symbol"
)

// Render writes the plan-library file: a known-objects declaration, a
// known-predicates declaration, then the ordered rule list.
func Render(rules []Rule, dom domain.Domain) string {
	// rules may aggregate several transitions' walks; α-equivalent rules
	// reached through different DFA edges collapse to one here, so the
	// emitted set is a function of the rule set alone, not of edge order.
	rules = dedupeAndOrder(rules)

	var sb strings.Builder

	objects := collectObjects(rules)
	sb.WriteString("objects ")
	sb.WriteString(strings.Join(objects, ", "))
	sb.WriteString("\n\n")

	sb.WriteString("predicates ")
	sb.WriteString(renderPredicates(dom))
	sb.WriteString("\n\n")

	for i, r := range rules {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(renderRule(r))
		sb.WriteString("\n")
	}

	return sb.String()
}

func collectObjects(rules []Rule) []string {
	// cases.Fold normalises object-name casing the way every other
	// case-insensitive identifier in this output is compared, before the
	// set is deduplicated and collated; the stable ordering extends to
	// the objects declaration, not only the rule list.
	fold := cases.Fold()

	seen := map[string]string{}
	for _, r := range rules {
		addTerms(seen, fold, r.Trigger)
		addTerms(seen, fold, r.Context.Atoms)
		addTerms(seen, fold, r.Subgoals)
		for _, t := range r.Action.Terms {
			addTerm(seen, fold, t)
		}
	}

	out := make([]string, 0, len(seen))
	for _, v := range seen {
		out = append(out, v)
	}
	cmp := newCollator()
	sort.Slice(out, func(i, j int) bool { return cmp.less(out[i], out[j]) })
	return out
}

func addTerms(seen map[string]string, fold cases.Caser, atoms []symbol.Atom) {
	for _, a := range atoms {
		for _, t := range a.Args {
			addTerm(seen, fold, t)
		}
	}
}

func addTerm(seen map[string]string, fold cases.Caser, t symbol.Term) {
	if t.IsVar {
		return
	}
	key := fold.String(t.Name)
	if _, ok := seen[key]; !ok {
		seen[key] = t.Name
	}
}

func renderPredicates(dom domain.Domain) string {
	names := make([]string, 0, len(dom.Predicates))
	for _, p := range dom.Predicates {
		names = append(names, p.Name+"/"+strconv.Itoa(p.Arity()))
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// renderRule writes one rule as "trigger : context <- body.", with
// variables carrying the literal "?" prefix (already how symbol.Term
// stores variable names), actions as "name(arg1, arg2, ...)", subgoals
// "!"-prefixed, and context atoms comma-separated.
func renderRule(r Rule) string {
	var sb strings.Builder

	sb.WriteString(renderAtoms(r.Trigger))
	sb.WriteString(" : ")
	sb.WriteString(renderContext(r.Context))
	sb.WriteString(" <- ")
	sb.WriteString(r.Action.String())
	for _, sg := range r.Subgoals {
		sb.WriteString(", !")
		sb.WriteString(sg.String())
	}
	sb.WriteString(".")

	return sb.String()
}

func renderAtoms(atoms []symbol.Atom) string {
	parts := make([]string, len(atoms))
	for i, a := range atoms {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}

// renderContext renders a predecessor state as a comma-separated
// conjunction of atoms and inequality constraints.
func renderContext(s state.State) string {
	var parts []string
	for _, a := range s.Atoms {
		parts = append(parts, a.String())
	}
	for _, c := range s.Constraints {
		parts = append(parts, c.String())
	}
	if len(parts) == 0 {
		return "true"
	}
	return strings.Join(parts, ", ")
}
