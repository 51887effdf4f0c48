package schemaid

import (
	"errors"
	"fmt"

	"github.com/schema-tools/schemaid/canonical"
	"github.com/schema-tools/schemaid/schema"
)

// Sentinel errors surfaced by identifier computation. They can be tested
// with errors.Is regardless of wrapping.
var (
	// ErrUnsupportedNode indicates the extractor met a schema construct this
	// engine version cannot canonicalize. Always fatal: silently skipping a
	// construct would break the sensitivity guarantee.
	ErrUnsupportedNode = schema.ErrUnsupportedNode

	// ErrUnknownDefinition indicates a reference to a schema definition that
	// does not exist in the extracted graph.
	ErrUnknownDefinition = canonical.ErrUnknownDefinition

	// ErrNodeLimit indicates a schema graph that exceeded the configured
	// node-count bound, guarding against malformed external descriptions.
	ErrNodeLimit = canonical.ErrNodeLimit
)

// Error kinds categorize identifier computation failures.
const (
	// KindExtraction covers failures while building the schema graph.
	KindExtraction = "extraction"

	// KindCanonicalization covers failures while normalizing or encoding
	// the graph.
	KindCanonicalization = "canonicalization"

	// KindLimit covers defensive resource-bound failures.
	KindLimit = "limit"
)

// Error is a structured error wrapping the underlying failure with the
// operation that failed and the category of error.
//
// Error supports errors.Is and errors.As through Unwrap.
type Error struct {
	// Op is the operation that failed (e.g. "Engine.IdentifierFor").
	Op string

	// Kind categorizes the error (KindExtraction, KindCanonicalization,
	// KindLimit).
	Kind string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("schemaid: %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("schemaid: %s (%s): %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches either the underlying error or another *Error with the same
// kind (and operation, when the target sets one).
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		if t.Kind != "" && e.Kind == t.Kind {
			return t.Op == "" || e.Op == t.Op
		}
	}
	return errors.Is(e.Err, target)
}

// wrapError classifies an underlying failure into an *Error for the given
// operation.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	kind := KindCanonicalization
	switch {
	case errors.Is(err, ErrNodeLimit):
		kind = KindLimit
	case errors.Is(err, ErrUnsupportedNode):
		kind = KindExtraction
	}
	return &Error{Op: op, Kind: kind, Err: err}
}
