// Package compctx carries the per-compilation task state the compiler is
// threaded through: a structured logger named by the task's UUID, the
// grounding map, the schema-level goal cache, and the resource budgets.
// Each compilation owns its own context value; there is no global state.
package compctx

import (
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/dekarrin/ltlplan/internal/planner"
	"github.com/dekarrin/ltlplan/internal/symbol"
)

// Context is one compilation task's mutable world. It is created once per
// invocation of the compiler and discarded at the end of the compilation;
// nothing it holds outlives the task, so the caches are released when the
// compilation ends.
type Context struct {
	// ID uniquely identifies this compilation task. It names the logger.
	ID uuid.UUID

	// Log is this task's structured logger, named by ID. Every external
	// call the compilation makes logs through this handle, never a
	// package-level logger.
	Log hclog.Logger

	// Grounding is the bidirectional ground-atom/symbol map, populated
	// before the search runs.
	Grounding *symbol.Map

	// Cache is the schema-level goal cache, shared across every DFA
	// transition processed by this task so that symmetric goals reuse
	// one exploration.
	Cache *planner.Cache

	// Budget bounds every individual disjunct's backward search.
	Budget planner.Budget

	// Started is when the compilation task began, used to derive
	// Budget.Deadline from a configured timeout.
	Started time.Time
}

// New creates a fresh per-compilation context: a new UUID, a logger named
// by it, an empty goal cache, and the given search budget.
func New(base hclog.Logger, grounding *symbol.Map, budget planner.Budget) *Context {
	id := uuid.New()
	if base == nil {
		base = hclog.NewNullLogger()
	}
	return &Context{
		ID:        id,
		Log:       base.Named(id.String()),
		Grounding: grounding,
		Cache:     planner.NewCache(),
		Budget:    budget,
		Started:   time.Now(),
	}
}

// WithDeadline returns a copy of ctx's budget with Deadline set to
// Started+timeout; a zero timeout leaves the budget unbounded in
// wall-clock terms.
func (c *Context) WithDeadline(timeout time.Duration) planner.Budget {
	b := c.Budget
	if timeout > 0 {
		b.Deadline = c.Started.Add(timeout)
	}
	return b
}
