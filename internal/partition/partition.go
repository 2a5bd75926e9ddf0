// Package partition implements the partition refiner: it rewrites every
// DFA edge label, an arbitrary boolean expression over propositional
// symbols, into one or more atomic partition symbols so that every edge
// of the resulting automaton carries exactly one label and the automaton
// stays deterministic.
//
// Two backends satisfy the same narrow Refiner interface and are chosen
// at construction time: MintermRefiner enumerates the full truth table
// over the used propositional support, and BDDRefiner walks a reduced
// Shannon-expansion tree instead. Both honor the same contract; the BDD
// backend exists for domains whose used support exceeds the ~15-symbol
// threshold past which a flat truth table becomes wasteful.
package partition

import (
	"fmt"
	"sort"

	"github.com/dekarrin/ltlplan/internal/automaton"
	"github.com/dekarrin/ltlplan/internal/boolexpr"
	"github.com/dekarrin/ltlplan/internal/dfa"
)

// Partition is one retained minterm: a fresh symbol and the assignment
// over the used support S that it denotes.
type Partition struct {
	Symbol     string
	Assignment map[string]bool
}

// Refined is the atomic-alphabet DFA plus the partitions that produced
// its edge labels.
type Refined struct {
	DFA        *automaton.DFA[struct{}]
	Partitions []Partition
	Support    []string
}

// Refiner is the narrow capability both backends implement.
type Refiner interface {
	Refine(raw *dfa.Automaton) (*Refined, error)
}

// BackendKind selects a Refiner implementation.
type BackendKind int

const (
	BackendMinterm BackendKind = iota
	BackendBDD
)

// mintermThreshold is the used-support size past which the BDD backend
// should be preferred over the flat truth-table enumeration.
const mintermThreshold = 15

// Config selects and constructs a Refiner.
type Config struct {
	Backend BackendKind
}

// New constructs the Refiner named by cfg.
func New(cfg Config) Refiner {
	switch cfg.Backend {
	case BackendBDD:
		return BDDRefiner{}
	default:
		return MintermRefiner{}
	}
}

// AutoSelect picks a backend based on the DFA's used propositional
// support size.
func AutoSelect(raw *dfa.Automaton) Refiner {
	if len(usedSupport(raw)) > mintermThreshold {
		return BDDRefiner{}
	}
	return MintermRefiner{}
}

// usedSupport collects every propositional symbol occurring in any edge
// label of raw, parsing each label exactly once.
func usedSupport(raw *dfa.Automaton) []string {
	seen := map[string]bool{}
	for _, name := range raw.States() {
		for _, e := range raw.Edges(name) {
			expr, err := boolexpr.Parse(e.Label)
			if err != nil {
				continue
			}
			for _, s := range boolexpr.Symbols(expr) {
				seen[s] = true
			}
		}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// parsedEdge pairs a raw edge with its parsed label expression.
type parsedEdge struct {
	from, to string
	label    *boolexpr.Expr
}

func parseEdges(raw *dfa.Automaton) ([]parsedEdge, error) {
	var edges []parsedEdge
	for _, name := range raw.States() {
		for _, e := range raw.Edges(name) {
			expr, err := boolexpr.Parse(e.Label)
			if err != nil {
				return nil, fmt.Errorf("parsing edge label %q on state %q: %w", e.Label, name, err)
			}
			edges = append(edges, parsedEdge{from: name, to: e.Next, label: expr})
		}
	}
	return edges, nil
}

// buildRefined assembles the output automaton from the set of retained
// partitions, re-walking raw's edges and, for each, attaching one output
// edge per partition whose assignment satisfies the original label.
func buildRefined(raw *dfa.Automaton, support []string, partitions []Partition, edges []parsedEdge) *Refined {
	out := automaton.NewDFA[struct{}]()
	for _, name := range raw.States() {
		out.AddState(name, raw.IsAccepting(name))
	}
	out.Start = raw.Start

	for _, e := range edges {
		for _, part := range partitions {
			if boolexpr.Eval(e.label, part.Assignment) {
				out.AddEdge(e.from, part.Symbol, e.to)
			}
		}
	}

	return &Refined{DFA: out, Partitions: partitions, Support: support}
}
