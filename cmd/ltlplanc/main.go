/*
Ltlplanc compiles an LTLf specification over a PDDL-style action domain into
a BDI-style reactive plan library.

Usage:

	ltlplanc [flags]

The flags are:

	-v, --version
		Give the current version of ltlplanc and then exit.

	-c, --config FILE
		Load compiler configuration (tool paths, search budgets, inspection
		server settings) from the given TOML file.

	-d, --domain FILE
		The PDDL-style domain file to compile against. Required.

	-a, --dfa FILE
		The textual DFA file produced by the upstream LTLf→DFA translator.
		Required.

	-i, --instruction TEXT
		The natural-language instruction the DFA was compiled from, carried
		through only for the execution log.

	-o, --out FILE
		Write the compiled plan-library file here. Defaults to
		"plan-library.txt".

	-l, --log FILE
		Write the execution log here. Defaults to "ltlplan.log.json".

	--objects LIST
		Comma-separated list of object constants known to the problem.

	--max-states N, --max-depth N, --timeout SECONDS
		Override the configured search budget (defaults: 200000, unbounded,
		300s).

	--repl
		After a successful compilation, open an interactive session over the
		compiled plan library using GNU readline-style input.

Exit codes distinguish the failure classes: a domain parse error, a DFA
parse error, an unknown grounding symbol, and invariant-extraction failure
each exit with their own non-zero code; any other internal invariant
violation exits with the highest code.
*/
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/pflag"

	"github.com/dekarrin/ltlplan"
	"github.com/dekarrin/ltlplan/internal/config"
	"github.com/dekarrin/ltlplan/internal/inspect"
	"github.com/dekarrin/ltlplan/internal/ltlerr"
	"github.com/dekarrin/ltlplan/internal/report"
	"github.com/dekarrin/ltlplan/internal/version"
)

const (
	ExitSuccess = iota
	ExitUsageError
	ExitDomainParseError
	ExitDFAParseError
	ExitUnknownSymbol
	ExitInvariantExtractionFailed
	ExitInternalInvariantViolation
)

var (
	returnCode      = ExitSuccess
	flagVersion     = pflag.BoolP("version", "v", false, "Give the current version of ltlplanc and then exit")
	flagConfig      = pflag.StringP("config", "c", "", "Load compiler configuration from the given TOML file")
	flagDomain      = pflag.StringP("domain", "d", "", "The PDDL-style domain file to compile against")
	flagDFA         = pflag.StringP("dfa", "a", "", "The textual DFA file to compile")
	flagInstruction = pflag.StringP("instruction", "i", "", "The natural-language instruction the DFA was compiled from")
	flagOut         = pflag.StringP("out", "o", "plan-library.txt", "Where to write the compiled plan-library file")
	flagLog         = pflag.StringP("log", "l", "ltlplan.log.json", "Where to write the execution log")
	flagObjects     = pflag.String("objects", "", "Comma-separated list of object constants known to the problem")
	flagMaxStates   = pflag.Int("max-states", 0, "Override the configured max-states budget")
	flagMaxDepth    = pflag.Int("max-depth", 0, "Override the configured max-depth budget")
	flagTimeout     = pflag.Int("timeout", 0, "Override the configured timeout, in seconds")
	flagRepl        = pflag.Bool("repl", false, "Open an interactive session over the compiled plan library")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	if *flagDomain == "" || *flagDFA == "" {
		fmt.Fprintf(os.Stderr, "ERROR: --domain and --dfa are required\nDo -h for help.\n")
		returnCode = ExitUsageError
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitUsageError
		return
	}

	domainSrc, err := os.ReadFile(*flagDomain)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: reading domain file: %s\n", err.Error())
		returnCode = ExitUsageError
		return
	}
	dfaSrc, err := os.ReadFile(*flagDFA)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: reading dfa file: %s\n", err.Error())
		returnCode = ExitUsageError
		return
	}

	var objects []string
	if *flagObjects != "" {
		objects = strings.Split(*flagObjects, ",")
		for i := range objects {
			objects[i] = strings.TrimSpace(objects[i])
		}
	}

	log := hclog.New(&hclog.LoggerOptions{Name: "ltlplanc", Level: hclog.Info})
	compiler := ltlplan.New(cfg, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	onDisjunct := startInspectServer(cfg, log, cancel)

	result, compErr := compiler.Compile(ctx, ltlplan.Input{
		Instruction: *flagInstruction,
		DFASource:   string(dfaSrc),
		DomainSrc:   string(domainSrc),
		Objects:     objects,
		OnDisjunct:  onDisjunct,
	})

	if logErr := result.Log.WriteFile(*flagLog); logErr != nil {
		fmt.Fprintf(os.Stderr, "WARNING: could not write execution log: %s\n", logErr.Error())
	}

	if compErr != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", compErr.Error())
		returnCode = exitCodeFor(compErr)
		return
	}

	if err := os.WriteFile(*flagOut, []byte(result.PlanLibrary), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: writing plan library: %s\n", err.Error())
		returnCode = ExitInternalInvariantViolation
		return
	}

	fmt.Print(result.Log.Summary())

	if *flagRepl {
		if err := runRepl(result); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitInternalInvariantViolation
		}
	}
}

// startInspectServer brings up the optional chi-routed status server when
// cfg.Inspect.Enabled, returning the hook Compile should call after each
// disjunct finishes. The core search loop itself never does I/O, so any
// live view of a running compilation has to be driven from outside it.
// Returns nil when inspection is disabled, so the caller can pass the
// result straight through as ltlplan.Input.OnDisjunct.
func startInspectServer(cfg config.Config, log hclog.Logger, cancel context.CancelFunc) func(report.DisjunctStats) {
	if !cfg.Inspect.Enabled {
		return nil
	}

	status := &inspect.Status{TaskID: "ltlplanc-cli"}
	srv, err := inspect.NewServer(status, cfg.Inspect.TokenSecret, cancel)
	if err != nil {
		log.Warn("could not start inspect server, proceeding without one", "error", err)
		return nil
	}

	go func() {
		if err := http.ListenAndServe(cfg.Inspect.ListenAddr, srv.Router); err != nil {
			log.Error("inspect server stopped", "error", err)
		}
	}()

	return func(d report.DisjunctStats) {
		status.RecordDisjunct(d.StatesExplored, d.Transitions, d.Truncated)
	}
}

func loadConfig() (config.Config, error) {
	var cfg config.Config
	var err error
	if *flagConfig != "" {
		cfg, err = config.Load(*flagConfig)
		if err != nil {
			return config.Config{}, err
		}
	}
	if *flagMaxStates > 0 {
		cfg.MaxStates = *flagMaxStates
	}
	if *flagMaxDepth > 0 {
		cfg.MaxDepth = *flagMaxDepth
	}
	if *flagTimeout > 0 {
		cfg.Timeout = time.Duration(*flagTimeout) * time.Second
	}
	cfg = cfg.FillDefaults()
	return cfg, nil
}

func exitCodeFor(err error) int {
	switch {
	case ltlerr.Is(err, ltlerr.KindDomainParse):
		return ExitDomainParseError
	case ltlerr.Is(err, ltlerr.KindDFAParse):
		return ExitDFAParseError
	case ltlerr.Is(err, ltlerr.KindUnknownSymbol):
		return ExitUnknownSymbol
	case ltlerr.Is(err, ltlerr.KindInvariantExtractionFailed):
		return ExitInvariantExtractionFailed
	default:
		return ExitInternalInvariantViolation
	}
}

// runRepl opens an interactive session over the just-compiled plan
// library's rules, exactly as tqi opens one over game commands
// (internal/input.NewInteractiveReader): the user types a goal-atom
// substring and the REPL prints every rule whose trigger matches it.
func runRepl(result ltlplan.Result) error {
	rl, err := readline.NewEx(&readline.Config{Prompt: "ltlplan> "})
	if err != nil {
		return fmt.Errorf("create readline session: %w", err)
	}
	defer rl.Close()

	fmt.Fprintln(rl.Stderr(), "Enter a goal-atom substring to find matching rules, or QUIT to exit.")
	for {
		line, err := rl.Readline()
		if err != nil {
			if err == io.EOF || err == readline.ErrInterrupt {
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "QUIT") {
			return nil
		}
		printMatches(rl.Stdout(), result, line)
	}
}

func printMatches(w io.Writer, result ltlplan.Result, needle string) {
	found := 0
	for _, r := range result.Rules {
		triggerStr := ""
		for _, a := range r.Trigger {
			triggerStr += a.String() + " "
		}
		if strings.Contains(triggerStr, needle) {
			fmt.Fprintf(w, "%s <- %s\n", strings.TrimSpace(triggerStr), r.Action.String())
			found++
		}
	}
	if found == 0 {
		fmt.Fprintln(w, "(no matching rules)")
	}
}
