// Package indexer defines the error taxonomy and shared envelope types used
// across the indexer runtime's components (catalog, schema, gateway,
// sandbox, scheduler, registry, queryplanner).
package indexer

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for conditions common across components.
var (
	// ErrTxStarted describes starting a second transaction while one is in
	// flight. No package in this module returns it: gateway.Gateway.Begin
	// hands out an independent Transaction on every call.
	ErrTxStarted = errors.New("indexer: cannot start a transaction within a transaction")

	// ErrNoTx describes a transaction-scoped operation invoked before
	// start_transaction. No package in this module returns it: the gateway's
	// operations are methods of an already-begun Transaction.
	ErrNoTx = errors.New("indexer: no transaction in progress")

	// ErrMeteringExhausted describes a sandboxed handler invocation that
	// exceeds its metering budget. Package sandbox reports that condition
	// with its own sandbox.ErrMeteringExhausted, not with this value.
	ErrMeteringExhausted = errors.New("indexer: metering budget exhausted")
)

// Kind classifies a runtime error per the taxonomy in the error handling
// design: each Kind dictates how the scheduler reacts to a failure.
type Kind uint8

const (
	// KindSchema covers parse, unsupported-type, and undefined-reference
	// failures while compiling a user GraphQL schema. Registration fails;
	// nothing is committed.
	KindSchema Kind = iota
	// KindCatalog covers database errors while writing catalog rows.
	// The enclosing transaction reverts; registration fails.
	KindCatalog
	// KindModule covers module load/link failure or a missing required
	// export. Fatal: the indexer stops.
	KindModule
	// KindHandler covers a trap inside the sandbox, including metering
	// exhaustion. The batch reverts; the kill-switch is set only when the
	// underlying cause is fatal.
	KindHandler
	// KindData covers a bad value surfaced by a host call (oversize
	// string, unknown type-id). The batch reverts; the scheduler advances
	// past it.
	KindData
	// KindTransient covers a DB-acquire or node-RPC failure. Retried with
	// backoff by the caller.
	KindTransient
	// KindAuth covers an unauthenticated or unauthorized mutating request.
	KindAuth
)

// String returns the lower-case name of the Kind, matching the taxonomy
// names used in the error handling design and log fields.
func (k Kind) String() string {
	switch k {
	case KindSchema:
		return "schema"
	case KindCatalog:
		return "catalog"
	case KindModule:
		return "module"
	case KindHandler:
		return "handler"
	case KindData:
		return "data"
	case KindTransient:
		return "transient"
	case KindAuth:
		return "auth"
	default:
		return "unknown"
	}
}

// Error is the concrete error type carried through the runtime. The
// executors in package sandbox return errors wrapping an *Error, so the
// scheduler can classify handler failures with errors.As without a
// component-specific type switch; other packages (catalog, schema,
// gateway, registry) return their own error types.
type Error struct {
	Kind    Kind
	Indexer string // namespace.identifier, when known
	Height  uint32 // block height, when known
	Cursor  string // scheduler cursor token, when known
	Op      string // operation that failed, e.g. "compile", "put_object"
	Err     error  // underlying cause
	// Fatal indicates the failure should trip the kill-switch for the
	// owning indexer rather than being retried or skipped.
	Fatal bool
}

// Error returns the error string.
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "indexer: %s", e.Kind)
	if e.Indexer != "" {
		fmt.Fprintf(&b, " [%s]", e.Indexer)
	}
	if e.Op != "" {
		fmt.Fprintf(&b, " during %s", e.Op)
	}
	if e.Height > 0 {
		fmt.Fprintf(&b, " at height %d", e.Height)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// New returns a new *Error of the given Kind wrapping err.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// WithIndexer sets the owning indexer's namespace.identifier and returns e
// for chaining.
func (e *Error) WithIndexer(uid string) *Error {
	e.Indexer = uid
	return e
}

// WithHeight sets the block height associated with the failure and returns
// e for chaining.
func (e *Error) WithHeight(h uint32) *Error {
	e.Height = h
	return e
}

// WithCursor sets the scheduler cursor associated with the failure and
// returns e for chaining.
func (e *Error) WithCursor(c string) *Error {
	e.Cursor = c
	return e
}

// AsFatal marks the error fatal (trips the kill-switch) and returns e.
func (e *Error) AsFatal() *Error {
	e.Fatal = true
	return e
}

// KindOf returns the Kind carried by err, and whether err (or something it
// wraps) is an *Error at all.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsKind reports whether err wraps an *Error of the given Kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// IsFatal reports whether err wraps an *Error marked Fatal.
func IsFatal(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Fatal
}

// AggregateError represents multiple errors collected during one operation,
// e.g. several host-call failures surfaced while reverting a batch.
type AggregateError struct {
	Errors []error
}

// Error returns the error string.
func (e *AggregateError) Error() string {
	if len(e.Errors) == 0 {
		return "indexer: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("indexer: multiple errors:")
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "\n  [%d] %v", i+1, err)
	}
	return sb.String()
}

// NewAggregateError returns a new AggregateError if there are any non-nil
// errors, the lone error if there's exactly one, or nil otherwise.
func NewAggregateError(errs ...error) error {
	var filtered []error
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	switch len(filtered) {
	case 0:
		return nil
	case 1:
		return filtered[0]
	default:
		return &AggregateError{Errors: filtered}
	}
}

// Envelope is the response shape the out-of-scope HTTP API layer uses to
// surface both successes and failures; it is defined here so that layer
// never has to invent its own.
type Envelope struct {
	Success string `json:"success"`
	Details string `json:"details,omitempty"`
}

// OK returns a successful Envelope.
func OK(details string) Envelope {
	return Envelope{Success: "true", Details: details}
}

// Failed returns a failed Envelope carrying err's message.
func Failed(err error) Envelope {
	if err == nil {
		return Envelope{Success: "false"}
	}
	return Envelope{Success: "false", Details: err.Error()}
}
