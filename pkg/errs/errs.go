// Package errs defines the closed error taxonomy shared by the upstream
// client, the asset store and the fetch gateway. Callers match on Kind
// instead of inspecting error messages.
package errs

import (
	"errors"
	"fmt"
)

// Kind tags an error with its failure class.
type Kind int

const (
	// KindConnection means the upstream service was unreachable.
	KindConnection Kind = iota + 1
	// KindTimeout means an operation exceeded its time budget.
	KindTimeout
	// KindNotFound means the asset does not exist upstream.
	KindNotFound
	// KindUpstream means the upstream answered with a non-2xx, non-404 status.
	KindUpstream
	// KindStorage means a local filesystem operation failed.
	KindStorage
	// KindGeneration means the generation call itself reported failure.
	KindGeneration
)

func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindTimeout:
		return "timeout"
	case KindNotFound:
		return "not_found"
	case KindUpstream:
		return "upstream"
	case KindStorage:
		return "storage"
	case KindGeneration:
		return "generation"
	}
	return "unknown"
}

// Error is the single error type produced by the gateway's own layers.
// Status is the upstream HTTP status when one was received, 0 otherwise.
type Error struct {
	Kind   Kind
	Op     string
	Status int
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// E builds a tagged error. Op names the failed operation
// ("upstream.Download", "store.Write", ...), err may be nil.
func E(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// EStatus is E with the upstream HTTP status attached.
func EStatus(kind Kind, op string, status int, err error) *Error {
	return &Error{Kind: kind, Op: op, Status: status, Err: err}
}

// KindOf returns the Kind carried by err, or 0 when err is not from this
// taxonomy.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Is reports whether err carries the given Kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// StatusOf returns the upstream HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}
