// Package invariant implements the invariant extractor: a one-shot,
// per-domain derivation of singleton predicates and lifted mutex patterns
// by invoking an external SAS⁺ translator and parsing its output.
// The extractor synthesizes a minimal well-typed mock problem, runs the
// translator's --translate step, and reads the resulting variable and
// mutex-group declarations back out of its SAS⁺ file.
package invariant

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/dekarrin/ltlplan/internal/domain"
	"github.com/dekarrin/ltlplan/internal/ltlerr"
	"github.com/dekarrin/ltlplan/internal/state"
)

// Config names the external collaborator and its invocation limits
// (filled from internal/config's tools.sas_translator_path and the
// compilation timeout).
type Config struct {
	// TranslatorPath is the SAS⁺ translator executable, e.g. a
	// fast-downward.py invocation configured with --translate.
	TranslatorPath string
	Timeout        time.Duration
}

// Result is what extraction hands to the rest of the compiler: the
// singleton predicate set and the lifted mutex patterns.
type Result struct {
	Singletons map[string]bool
	Patterns   []state.Pattern
}

// Extract runs the external translator against domainSrc (the domain's raw
// textual source, exactly as read from disk, since the translator needs the
// PDDL file itself, not our parsed internal/domain.Domain representation)
// and a synthesized mock problem over objects, then parses the resulting
// SAS⁺ output into a Result.
//
// Any inability to run or parse the translator is fatal: it returns a
// ltlerr error of Kind KindInvariantExtractionFailed, never a partial or
// empty Result. Downstream state pruning depends on a sound invariant
// set, so there is no silent fallback.
func Extract(ctx context.Context, log hclog.Logger, domainSrc string, dom domain.Domain, objects []string, cfg Config) (Result, error) {
	if cfg.TranslatorPath == "" {
		return Result{}, ltlerr.New(ltlerr.KindInvariantExtractionFailed, "no SAS⁺ translator configured")
	}

	log = log.Named("invariant")

	domainFile, problemFile, cleanup, err := writeMockProblem(domainSrc, dom, objects)
	if err != nil {
		return Result{}, ltlerr.Wrap(ltlerr.KindInvariantExtractionFailed, err, "synthesizing mock problem")
	}
	defer cleanup()

	sasPath, err := runTranslator(ctx, log, cfg, domainFile, problemFile)
	if err != nil {
		return Result{}, ltlerr.Wrap(ltlerr.KindInvariantExtractionFailed, err, "running SAS⁺ translator")
	}

	sasContent, err := os.ReadFile(sasPath)
	if err != nil {
		return Result{}, ltlerr.Wrap(ltlerr.KindInvariantExtractionFailed, err, "reading SAS⁺ output")
	}

	if !varPattern.Match(sasContent) {
		return Result{}, ltlerr.New(ltlerr.KindInvariantExtractionFailed, "SAS⁺ output contains no variable declarations")
	}

	result := parseSAS(string(sasContent))
	log.Debug("extracted invariants", "singletons", len(result.Singletons), "patterns", len(result.Patterns))
	return result, nil
}

// domainNamePattern pulls the domain's declared name out of its source
// text, in case the parsed Domain carries none.
var domainNamePattern = regexp.MustCompile(`\(define\s+\(domain\s+([\w-]+)\)`)

// writeMockProblem synthesizes a minimal well-typed problem over objects
// and writes both it and a copy of the domain source to a temp directory,
// so the external translator can be invoked against real files. Init facts
// are seeded conservatively: every nullary predicate is asserted true, and
// every unary predicate is asserted true of each object, giving the
// translator enough grounded structure to derive invariants without
// assuming any particular domain's predicate vocabulary.
func writeMockProblem(domainSrc string, dom domain.Domain, objects []string) (domainFile, problemFile string, cleanup func(), err error) {
	dir, err := os.MkdirTemp("", "ltlplan-invariant-")
	if err != nil {
		return "", "", nil, err
	}
	cleanup = func() { os.RemoveAll(dir) }

	domainName := dom.Name
	if m := domainNamePattern.FindStringSubmatch(domainSrc); m != nil {
		domainName = m[1]
	}
	if domainName == "" {
		domainName = "ltlplan-mock"
	}

	domainFile = filepath.Join(dir, "domain.pddl")
	if err := os.WriteFile(domainFile, []byte(domainSrc), 0644); err != nil {
		cleanup()
		return "", "", nil, err
	}

	problemFile = filepath.Join(dir, "problem.pddl")
	if err := os.WriteFile(problemFile, []byte(mockProblemText(domainName, dom, objects)), 0644); err != nil {
		cleanup()
		return "", "", nil, err
	}

	return domainFile, problemFile, cleanup, nil
}

func mockProblemText(domainName string, dom domain.Domain, objects []string) string {
	objType := ""
	if len(dom.Types) > 0 {
		objType = " - " + dom.Types[0]
	}

	var objLine string
	for i, o := range objects {
		if i > 0 {
			objLine += " "
		}
		objLine += o
	}
	if objType != "" {
		objLine += objType
	}

	var init []string
	for _, p := range dom.Predicates {
		switch p.Arity() {
		case 0:
			init = append(init, fmt.Sprintf("    (%s)", p.Name))
		case 1:
			for _, o := range objects {
				init = append(init, fmt.Sprintf("    (%s %s)", p.Name, o))
			}
		}
	}

	goal := "(and)"
	for _, p := range dom.Predicates {
		if p.Arity() > 0 && p.Arity() <= len(objects) {
			args := objects[:p.Arity()]
			goal = fmt.Sprintf("(and (%s %s))", p.Name, joinSpace(args))
			break
		}
	}

	return fmt.Sprintf(`(define (problem ltlplan-mock-invariant-extraction)
  (:domain %s)
  (:objects %s)
  (:init
%s
  )
  (:goal %s)
)
`, domainName, objLine, joinLines(init), goal)
}

func joinSpace(xs []string) string {
	out := ""
	for i, x := range xs {
		if i > 0 {
			out += " "
		}
		out += x
	}
	return out
}

func joinLines(xs []string) string {
	out := ""
	for i, x := range xs {
		if i > 0 {
			out += "\n"
		}
		out += x
	}
	return out
}

// runTranslator invokes the translator synchronously with --translate,
// returning the path to the generated SAS⁺ file.
func runTranslator(ctx context.Context, log hclog.Logger, cfg Config, domainFile, problemFile string) (string, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	outDir, err := os.MkdirTemp("", "ltlplan-sas-")
	if err != nil {
		return "", err
	}
	sasPath := filepath.Join(outDir, "output.sas")

	cmd := exec.CommandContext(ctx, cfg.TranslatorPath,
		"--translate", domainFile, problemFile,
		"--sas-file", sasPath,
	)
	cmd.Dir = outDir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	log.Debug("invoking SAS⁺ translator", "path", cfg.TranslatorPath)
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s: %w (stderr: %s)", cfg.TranslatorPath, err, stderr.String())
	}

	if _, err := os.Stat(sasPath); err != nil {
		return "", fmt.Errorf("translator did not produce %s", sasPath)
	}
	return sasPath, nil
}

// sortedPatterns returns patterns in a stable order, used by callers that
// need deterministic output (e.g. the rezi cache and test assertions).
func sortedPatterns(patterns []state.Pattern) []state.Pattern {
	out := append([]state.Pattern(nil), patterns...)
	sort.Slice(out, func(i, j int) bool {
		return fmt.Sprint(out[i]) < fmt.Sprint(out[j])
	})
	return out
}
