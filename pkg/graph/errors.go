package graph

import (
	"errors"
	"fmt"
)

// InvalidIdentifierError reports an identifier that is empty (or whitespace
// only) after normalization. The insertion that produced it is rejected as a
// whole; bulk loaders are expected to skip-and-log rather than abort.
type InvalidIdentifierError struct {
	Field string // which input was bad: "pass_id", "lot_id", "query"
	Raw   string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("invalid %s: %q is empty after normalization", e.Field, e.Raw)
}

// UnknownNodeError reports an identifier that was never inserted into the
// graph in the namespace(s) consulted.
type UnknownNodeError struct {
	ID string // canonical form
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("unknown identifier %q", e.ID)
}

// AmbiguousIdentifierError reports an identifier present in both the pass and
// lot namespaces. Collisions are a data-integrity defect: insertion still
// succeeds, but an undirected query for the identifier must surface the
// ambiguity instead of guessing a direction.
type AmbiguousIdentifierError struct {
	ID string // canonical form
}

func (e *AmbiguousIdentifierError) Error() string {
	return fmt.Sprintf("identifier %q matches both a pass and a lot", e.ID)
}

// IsInvalidIdentifier reports whether err is an InvalidIdentifierError.
func IsInvalidIdentifier(err error) bool {
	var target *InvalidIdentifierError
	return errors.As(err, &target)
}

// IsUnknownNode reports whether err is an UnknownNodeError.
func IsUnknownNode(err error) bool {
	var target *UnknownNodeError
	return errors.As(err, &target)
}

// IsAmbiguousIdentifier reports whether err is an AmbiguousIdentifierError.
func IsAmbiguousIdentifier(err error) bool {
	var target *AmbiguousIdentifierError
	return errors.As(err, &target)
}
