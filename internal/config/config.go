// Package config loads the compiler's configuration: the search budget
// (max-states, max-depth, timeout) plus the external-tool paths the
// compilation's two blocking calls need, from a TOML file overridable by
// CLI flags.
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// Default search budgets: 200 000 states, unbounded depth, 300 s.
const (
	DefaultMaxStates = 200_000
	DefaultMaxDepth  = 0 // unbounded
	DefaultTimeout   = 300 * time.Second
)

// Tools names the external collaborators the compiler invokes
// synchronously: the MONA-based LTLf→DFA compiler and the SAS⁺ translator
// used once per compilation for invariant extraction.
type Tools struct {
	DFACompilerPath   string `toml:"dfa_compiler_path"`
	SASTranslatorPath string `toml:"sas_translator_path"`
	InvariantCacheDir string `toml:"invariant_cache_dir"`
}

// Inspect configures the optional status server (internal/inspect).
type Inspect struct {
	Enabled     bool   `toml:"enabled"`
	ListenAddr  string `toml:"listen_addr"`
	TokenSecret string `toml:"token_secret"`
}

// Config is the full compiler configuration, as loaded from a TOML file
// and/or overridden by CLI flags.
type Config struct {
	MaxStates    int           `toml:"max_states"`
	MaxDepth     int           `toml:"max_depth"`
	Timeout      time.Duration `toml:"-"`
	TimeoutSecs  int           `toml:"timeout_seconds"`
	ObjectBudget int           `toml:"object_budget"`
	Tools        Tools         `toml:"tools"`
	Inspect      Inspect       `toml:"inspect"`
}

// Load reads and parses a TOML configuration file at path. A missing
// TimeoutSecs/MaxStates/MaxDepth is left at zero; call FillDefaults to
// apply the defaults before use.
func Load(path string) (Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config %q: %w", path, err)
	}
	cfg.Timeout = time.Duration(cfg.TimeoutSecs) * time.Second
	return cfg, nil
}

// FillDefaults returns a copy of cfg with unset fields set to their
// defaults.
func (cfg Config) FillDefaults() Config {
	out := cfg
	if out.MaxStates == 0 {
		out.MaxStates = DefaultMaxStates
	}
	// MaxDepth's zero value already means "unbounded", so there is
	// nothing to fill in for it.
	if out.Timeout == 0 {
		out.Timeout = DefaultTimeout
	}
	return out
}

// Validate returns an error if cfg cannot be used to run a compilation.
// The SAS⁺ translator path is load-bearing: without it invariant
// extraction aborts the whole compilation, so it is checked up front.
func (cfg Config) Validate() error {
	if cfg.MaxStates < 0 {
		return fmt.Errorf("max_states must not be negative, got %d", cfg.MaxStates)
	}
	if cfg.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative, got %d", cfg.MaxDepth)
	}
	if cfg.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", cfg.Timeout)
	}
	if cfg.Tools.SASTranslatorPath == "" {
		return fmt.Errorf("tools.sas_translator_path must be set")
	}
	// DFACompilerPath is not validated here: this compiler never invokes
	// the LTLf→DFA translator itself; ltlplanc accepts an already
	// compiled DFA file. The field exists so a surrounding tool that does
	// invoke the translator can share this config file.
	if cfg.Inspect.Enabled && cfg.Inspect.ListenAddr == "" {
		return fmt.Errorf("inspect.listen_addr must be set when inspect.enabled is true")
	}
	return nil
}
