// Package jtqerrors declares the error-kind taxonomy for the query and
// template-merge engine (see spec §7: parse/structural, unresolved
// dataset, unresolvable placeholder, cycle, join failure).
package jtqerrors

import (
	"fmt"
	"strings"

	errors "gopkg.in/src-d/go-errors.v1"
)

var (
	// ErrUnresolvedDataset is raised by the pure evaluator when a query
	// references a dataset name absent from the registry (and not
	// poisoned as None). Recoverable by the resolution driver.
	ErrUnresolvedDataset = errors.NewKind("unresolved dataset: %s")

	// ErrIllegalArgument covers malformed input: bad join arity,
	// non-object constructor input, unknown join operator, and similar.
	ErrIllegalArgument = errors.NewKind("illegal argument: %s")

	// ErrParse covers query/path syntax errors.
	ErrParse = errors.NewKind("parse error at position %d in %q: %s")

	// ErrCycle marks a dictionary name whose resolution chain references
	// itself (§4.5/§9 repeating-suffix detector).
	ErrCycle = errors.NewKind("cycle detected resolving dataset %q")

	// ErrJoinFailure covers join arity mismatches, non-container
	// operands, and unresolvable join operands (§4.3/§7 item 5).
	ErrJoinFailure = errors.NewKind("join failed: %s")
)

// ParseError is returned by the lang scanner/parser. It carries enough
// context to reconstruct the go-errors.v1 ErrParse, but is also usable
// directly since the positional fields are part of the public contract
// (mirrors the teacher's own ParseError shape).
type ParseError struct {
	Input   string
	Pos     int
	Message string
}

func (e *ParseError) Error() string {
	return ErrParse.New(e.Pos, e.Input, e.Message).Error()
}

// Unwrap lets callers use errors.Is/As against the underlying Kind.
func (e *ParseError) Unwrap() error {
	return ErrParse.New(e.Pos, e.Input, e.Message)
}

// NoValuePresent is the terminal failure of a merge (§6/§7): it carries
// the unresolved dataset names, the unresolvable placeholder queries,
// and the best-effort partially merged text.
type NoValuePresent struct {
	UnresolvedDatasets      []string
	UnresolvablePlaceholders []string
	PartialMergedText       string
}

func (e *NoValuePresent) Error() string {
	var b strings.Builder
	b.WriteString("no value present")
	if len(e.UnresolvedDatasets) > 0 {
		fmt.Fprintf(&b, "; unresolved datasets: %s", strings.Join(e.UnresolvedDatasets, ", "))
	}
	if len(e.UnresolvablePlaceholders) > 0 {
		fmt.Fprintf(&b, "; unresolvable placeholders: %s", strings.Join(e.UnresolvablePlaceholders, ", "))
	}
	return b.String()
}

// UnresolvedDatasetError is the concrete error returned by the pure
// evaluator, carrying the missing dataset name for the driver to act
// on. AlreadyPoisoned distinguishes a name the registry has never seen
// (worth a new resolver callback) from one already stored as
// known-unresolvable (must not be retried this merge, spec §3/§9).
type UnresolvedDatasetError struct {
	Name            string
	AlreadyPoisoned bool
}

func (e *UnresolvedDatasetError) Error() string {
	return ErrUnresolvedDataset.New(e.Name).Error()
}

// IsUnresolvedDataset reports whether err is an UnresolvedDatasetError,
// returning it so callers can inspect both Name and AlreadyPoisoned.
func IsUnresolvedDataset(err error) (*UnresolvedDatasetError, bool) {
	ude, ok := err.(*UnresolvedDatasetError)
	if !ok {
		return nil, false
	}
	return ude, true
}

// IllegalArgument wraps ErrIllegalArgument with a formatted message.
func IllegalArgument(format string, args ...any) error {
	return ErrIllegalArgument.New(fmt.Sprintf(format, args...))
}

// JoinFailure wraps ErrJoinFailure with a formatted message.
func JoinFailure(format string, args ...any) error {
	return ErrJoinFailure.New(fmt.Sprintf(format, args...))
}
