package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for the distinguishable fatal conditions. Callers use
// errors.Is to tell "nothing to ground on" apart from structural failures.
var (
	// ErrNoEvidence: evidence-based format requested but gathered evidence is empty
	ErrNoEvidence = errors.New("no gathered evidence to ground the response on")

	// ErrEmptyReferences: a reference-requiring paragraph cites nothing
	ErrEmptyReferences = errors.New("paragraph references must not be empty")

	// ErrDuplicateReference: the same URL cited more than once across paragraphs
	ErrDuplicateReference = errors.New("duplicate reference URL across paragraphs")

	// ErrFabricatedURL: a URL not present in the permitted source set
	ErrFabricatedURL = errors.New("URL not present in gathered sources")

	// ErrResourceMissing: the cited resource returned 404/410
	ErrResourceMissing = errors.New("resource missing")

	// ErrUnreachable: the cited resource could not be reached
	ErrUnreachable = errors.New("resource unreachable")
)

// ReferenceError reports why a cited URL was rejected
type ReferenceError struct {
	URL    string
	Status int // 0 when the failure was at transport level
	Err    error
}

func (e *ReferenceError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("reference %s: status %d: %v", e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("reference %s: %v", e.URL, e.Err)
}

func (e *ReferenceError) Unwrap() error { return e.Err }

// SchemaError reports a structured-output response that failed to parse or
// failed its schema checks after the retry budget was exhausted.
type SchemaError struct {
	Stage string
	Err   error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: structured output invalid: %v", e.Stage, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }
