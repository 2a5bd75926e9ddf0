// Package ltlerr defines the typed error kinds surfaced across the
// compilation pipeline.
//
// Each kind carries both a technical message (returned by Error) and,
// where relevant, a human-oriented rendering for inclusion in the
// execution log. Per-regression skips are deliberately NOT modeled here;
// those are silent prunes, not errors (see internal/planner).
package ltlerr

import "fmt"

// Kind identifies which error class an error belongs to.
type Kind int

const (
	// KindDomainParse is a malformed domain input.
	KindDomainParse Kind = iota

	// KindDFAParse is a malformed DFA label or graph.
	KindDFAParse

	// KindUnknownSymbol is a propositional symbol on a DFA edge that is
	// absent from the grounding map.
	KindUnknownSymbol

	// KindInvariantExtractionFailed means the external SAS⁺ tool was
	// unavailable, timed out, or produced unparseable output.
	KindInvariantExtractionFailed

	// KindInternalInvariantViolation is a canonicalisation or cache-key
	// mismatch bug.
	KindInternalInvariantViolation
)

func (k Kind) String() string {
	switch k {
	case KindDomainParse:
		return "DomainParseError"
	case KindDFAParse:
		return "DFAParseError"
	case KindUnknownSymbol:
		return "UnknownSymbol"
	case KindInvariantExtractionFailed:
		return "InvariantExtractionFailed"
	case KindInternalInvariantViolation:
		return "InternalInvariantViolation"
	default:
		return "UnknownErrorKind"
	}
}

// compileError is the concrete error type for every kind above.
type compileError struct {
	kind  Kind
	msg   string
	human string
	wrap  error
}

func (e *compileError) Error() string {
	return fmt.Sprintf("%s: %s", e.kind, e.msg)
}

// Unwrap gives the error that this one wraps, if any.
func (e *compileError) Unwrap() error {
	return e.wrap
}

// Kind returns the error classification, for callers that branch on it
// (e.g. the CLI's exit-code selection).
func (e *compileError) Kind() Kind {
	return e.kind
}

// Human returns the message suitable for display in the execution log,
// falling back to the technical message when none was set.
func (e *compileError) Human() string {
	if e.human == "" {
		return e.msg
	}
	return e.human
}

// New creates an error of the given kind with a technical message.
func New(kind Kind, msg string) error {
	return &compileError{kind: kind, msg: msg}
}

// Newf is New with fmt.Sprintf-style formatting.
func Newf(kind Kind, format string, a ...interface{}) error {
	return New(kind, fmt.Sprintf(format, a...))
}

// Wrap creates an error of the given kind that wraps an underlying cause.
func Wrap(kind Kind, cause error, msg string) error {
	return &compileError{kind: kind, msg: msg, wrap: cause}
}

// Wrapf is Wrap with fmt.Sprintf-style formatting.
func Wrapf(kind Kind, cause error, format string, a ...interface{}) error {
	return Wrap(kind, cause, fmt.Sprintf(format, a...))
}

// WithHuman attaches a human-readable rendering to an error built by New
// or Wrap, returning the same error for chaining.
func WithHuman(err error, human string) error {
	if ce, ok := err.(*compileError); ok {
		ce.human = human
	}
	return err
}

// Is reports whether err (or any error it wraps) is of the given Kind.
func Is(err error, kind Kind) bool {
	for err != nil {
		if ce, ok := err.(*compileError); ok {
			if ce.kind == kind {
				return true
			}
			err = ce.wrap
			continue
		}
		type unwrapper interface{ Unwrap() error }
		u, ok := err.(unwrapper)
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// HumanMessage returns the human-oriented message for err if it is one of
// this package's kinds, otherwise err.Error().
func HumanMessage(err error) string {
	if ce, ok := err.(*compileError); ok {
		return ce.Human()
	}
	return err.Error()
}
