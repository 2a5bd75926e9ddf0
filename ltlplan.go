// Package ltlplan compiles an LTLf specification over typed predicates,
// already reduced to a DFA by an external MONA-based translator, into a
// BDI-style reactive plan library over a PDDL-style action domain.
// Compiler is the top-level entry point: a small orchestration type that
// wires the component packages together and owns nothing they don't
// already own.
package ltlplan

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/hashicorp/go-hclog"

	"github.com/dekarrin/ltlplan/internal/compctx"
	"github.com/dekarrin/ltlplan/internal/config"
	"github.com/dekarrin/ltlplan/internal/dfa"
	"github.com/dekarrin/ltlplan/internal/domain"
	"github.com/dekarrin/ltlplan/internal/emit"
	"github.com/dekarrin/ltlplan/internal/invariant"
	"github.com/dekarrin/ltlplan/internal/ltlerr"
	"github.com/dekarrin/ltlplan/internal/partition"
	"github.com/dekarrin/ltlplan/internal/planner"
	"github.com/dekarrin/ltlplan/internal/report"
	"github.com/dekarrin/ltlplan/internal/symbol"
)

// Compiler holds the configuration and logger threaded through every
// compilation task it runs. It is safe to reuse across many independent
// compilations; each call to Compile builds its own compctx.Context, so
// concurrent Compile calls never share mutable state.
type Compiler struct {
	Config config.Config
	Log    hclog.Logger
}

// New constructs a Compiler. A nil logger falls back to a null logger,
// matching compctx.New.
func New(cfg config.Config, log hclog.Logger) *Compiler {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Compiler{Config: cfg, Log: log}
}

// Input is everything one compilation needs: the front-end's output (an
// instruction and its LTLf rendering, kept only for the execution log),
// the MONA-derived DFA's textual source, the domain's textual source, the
// grounding map the front-end populated while flattening the LTLf
// specification, and the problem's object list (needed both for invariant
// extraction's mock problem and for the planner's object-budget bound).
type Input struct {
	Instruction string
	LTLf        string
	DFASource   string
	DomainSrc   string
	Grounding   *symbol.Map
	Objects     []string

	// OnDisjunct, when set, is called once every time a DFA transition's
	// disjunct finishes searching. The search loop itself never does I/O;
	// this hook is the one seam a caller may use to drive a live view,
	// e.g. internal/inspect's status server.
	OnDisjunct func(report.DisjunctStats)
}

// Result is a successful compilation's output: the rendered plan-library
// file and its accompanying execution log.
type Result struct {
	PlanLibrary string
	Log         report.Log
	Rules       []emit.Rule
}

// Compile runs the full pipeline over one Input: parse the domain and
// DFA, refine the DFA's alphabet into atomic partitions, extract domain
// invariants once, then for every transition of the refined DFA regress
// from its partition's goal condition and emit rules for the resulting
// state graph.
func (c *Compiler) Compile(ctx context.Context, in Input) (Result, error) {
	cfg := c.Config.FillDefaults()
	logLog := report.Log{Instruction: in.Instruction, LTLf: in.LTLf, DFA: in.DFASource}

	dom, warnings, domErr := domain.ParseWithWarnings(in.DomainSrc)
	if domErr != nil {
		logLog.Failure = domErr.Error()
		return Result{Log: logLog}, domErr
	}
	if warnings != nil {
		c.Log.Warn("domain parse warnings", "warnings", warnings.Error())
	}

	raw, err := dfa.Parse(in.DFASource)
	if err != nil {
		logLog.Failure = err.Error()
		return Result{Log: logLog}, err
	}

	refiner := partition.AutoSelect(raw)
	refined, err := refiner.Refine(raw)
	if err != nil {
		logLog.Failure = err.Error()
		return Result{Log: logLog}, err
	}
	for _, p := range refined.Partitions {
		logLog.Partitions = append(logLog.Partitions, p.Symbol)
	}

	var invCache *invariant.Cache
	if cfg.Tools.InvariantCacheDir != "" {
		invCache, err = invariant.NewCache(cfg.Tools.InvariantCacheDir)
		if err != nil {
			c.Log.Warn("could not open invariant cache, proceeding uncached", "error", err)
			invCache = nil
		}
	}

	invResult, err := invariant.ExtractCached(ctx, c.Log, invCache, in.DomainSrc, dom, in.Objects,
		invariant.Config{TranslatorPath: cfg.Tools.SASTranslatorPath, Timeout: cfg.Timeout})
	if err != nil {
		logLog.Failure = err.Error()
		return Result{Log: logLog}, err
	}

	grounding := in.Grounding
	if grounding == nil {
		grounding, err = groundingFromDomain(dom, in.Objects)
		if err != nil {
			logLog.Failure = err.Error()
			return Result{Log: logLog}, err
		}
	}

	budget := planner.Budget{
		MaxStates:    cfg.MaxStates,
		MaxDepth:     cfg.MaxDepth,
		ObjectBudget: cfg.ObjectBudget,
	}
	if budget.ObjectBudget == 0 {
		// the problem's declared objects are the distinct constants the
		// planner may assume exist, so they are the natural budget when
		// none was configured explicitly.
		budget.ObjectBudget = len(in.Objects)
	}
	cc := compctx.New(c.Log, grounding, budget)
	cc.Budget = cc.WithDeadline(cfg.Timeout)

	var allRules []emit.Rule
	for _, from := range refined.DFA.States() {
		for _, e := range refined.DFA.Edges(from) {
			part, ok := lookupPartition(refined.Partitions, e.Label)
			if !ok {
				continue
			}
			goal, err := decodeGoal(grounding, part.Assignment)
			if err != nil {
				logLog.Failure = err.Error()
				return Result{Log: logLog}, err
			}
			if len(goal) == 0 {
				continue
			}

			graph, objMap, stats := cc.Cache.Search(goal, dom, invResult.Patterns, invResult.Singletons, cc.Budget)
			ds := report.DisjunctStats{
				Transition:     fmt.Sprintf("%s -[%s]-> %s", from, e.Label, e.Next),
				Goal:           goalString(goal),
				StatesExplored: stats.StatesExplored,
				Transitions:    stats.Transitions,
				CacheHit:       stats.CacheHit,
				Truncated:      stats.Truncated,
			}
			logLog.AddDisjunct(ds)
			if in.OnDisjunct != nil {
				in.OnDisjunct(ds)
			}

			rules := emit.BuildRules(graph, dom, objMap)
			allRules = append(allRules, rules...)
		}
	}

	planText := emit.Render(allRules, dom)
	return Result{PlanLibrary: planText, Log: logLog, Rules: allRules}, nil
}

// lookupPartition finds the Partition named sym among parts.
func lookupPartition(parts []partition.Partition, sym string) (partition.Partition, bool) {
	for _, p := range parts {
		if p.Symbol == sym {
			return p, true
		}
	}
	return partition.Partition{}, false
}

// decodeGoal turns a partition's truth assignment over the grounding map's
// propositional symbols into the conjunction of (possibly negated) ground
// atoms it denotes. A minterm assignment is already a single conjunctive
// disjunct, so no DNF expansion is needed beyond per-symbol decoding.
func decodeGoal(grounding *symbol.Map, assignment map[string]bool) ([]symbol.Atom, error) {
	syms := make([]string, 0, len(assignment))
	for s := range assignment {
		syms = append(syms, s)
	}
	// Sort before decoding so two runs over the same assignment produce
	// the same goal atom order, regardless of Go's randomized map
	// iteration.
	sort.Strings(syms)

	var goal []symbol.Atom
	for _, s := range syms {
		atom, err := grounding.Decode(s)
		if err != nil {
			return nil, ltlerr.Wrapf(ltlerr.KindUnknownSymbol, err, "decoding partition literal %q", s)
		}
		// A false-valued symbol is as much a part of the partition's
		// condition as a true one: the plan must make that atom not hold,
		// which the planner regresses through delete effects.
		atom.Negated = !assignment[s]
		goal = append(goal, atom)
	}
	return goal, nil
}

// groundingFromDomain populates a grounding map by enumerating every
// ground atom of dom's predicates over the declared objects. The map is
// normally populated by the front-end while flattening the LTLf
// specification; when the core is driven directly from an already-compiled
// DFA (as ltlplanc does), the same encoding is reproduced here so edge
// symbols still resolve by lookup. Atoms whose predicate or object names
// cannot be encoded (an embedded "_") are skipped; a DFA edge referencing
// one still surfaces as UnknownSymbol at decode time.
func groundingFromDomain(dom domain.Domain, objects []string) (*symbol.Map, error) {
	m := symbol.New()
	for _, p := range dom.Predicates {
		for _, args := range argTuples(objects, len(p.Params)) {
			if _, err := m.Encode(p.Name, args); err != nil {
				if errors.Is(err, symbol.ErrInvalidSymbol) {
					continue
				}
				return nil, err
			}
		}
	}
	return m, nil
}

// argTuples enumerates objects^arity in a fixed order (earlier positions
// vary slowest), so the grounding map's contents do not depend on map
// iteration anywhere.
func argTuples(objects []string, arity int) [][]string {
	if arity == 0 {
		return [][]string{nil}
	}
	var out [][]string
	for _, prefix := range argTuples(objects, arity-1) {
		for _, o := range objects {
			tuple := make([]string, 0, arity)
			tuple = append(tuple, prefix...)
			tuple = append(tuple, o)
			out = append(out, tuple)
		}
	}
	return out
}

func goalString(goal []symbol.Atom) string {
	var out string
	for i, a := range goal {
		if i > 0 {
			out += " & "
		}
		out += a.String()
	}
	return out
}

