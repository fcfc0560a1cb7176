package services

import (
	"errors"
	"fmt"
	"strings"
)

// Kinds of lifecycle failure. Every error returned by OrderLifecycle matches
// exactly one of these with errors.Is, a partial commit matches two.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("conflict")
	ErrUpstream          = errors.New("upstream failure")
	ErrPartialCommit     = errors.New("partial commit")
)

type LifecycleError struct {
	Op      string
	Kind    error
	Message string
	Err     error
}

func (e *LifecycleError) Error() string {
	msg := e.Op + ": " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LifecycleError) Is(target error) bool {
	return target == e.Kind
}

func (e *LifecycleError) Unwrap() error {
	return e.Err
}

func newError(op string, kind error, format string, args ...interface{}) *LifecycleError {
	return &LifecycleError{Op: op, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapError(op string, kind error, err error, format string, args ...interface{}) *LifecycleError {
	return &LifecycleError{Op: op, Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// PartialCommitError is returned when a multi-step operation stopped after at
// least one step was durably written. Committed steps are not rolled back.
type PartialCommitError struct {
	Op        string
	OrderID   string
	Committed []string
	Failed    string
	Hint      string
	Err       error
}

func (e *PartialCommitError) Error() string {
	return fmt.Sprintf("%s: partial commit for order %s (done: %s; failed: %s): %s: %v",
		e.Op, e.OrderID, strings.Join(e.Committed, ", "), e.Failed, e.Hint, e.Err)
}

func (e *PartialCommitError) Is(target error) bool {
	return target == ErrPartialCommit
}

func (e *PartialCommitError) Unwrap() error {
	return e.Err
}

// Message -> teks untuk kasir.
func (e *PartialCommitError) Message() string {
	return e.Hint
}
