package payments

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no payment matches the given id or gateway
// reference.
var ErrNotFound = errors.New("payment not found")

// ValidationError carries field-level input errors. It is produced before any
// persistence or gateway I/O happens.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	return "invalid payment data"
}

func (e *ValidationError) add(field, message string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], message)
}

func (e *ValidationError) empty() bool {
	return len(e.Fields) == 0
}

// StoreError wraps a persistence failure. It is fatal to the current request
// but never to the process.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("payment store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// TransitionError is returned when a webhook event asks for a state change
// the state machine forbids, e.g. failing an already completed payment.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s -> %s", e.From, e.To)
}
