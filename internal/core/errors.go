package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAuthenticated is returned when a mutation is attempted without a
	// signed-in identity. Nothing is performed.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrNotFound is returned when an operation targets a ledger item or post
	// that does not exist.
	ErrNotFound = errors.New("not found")

	ErrInvalidAmount = errors.New("invalid amount")
)

// ValidationError reports a rejected input field. The caller must not submit.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + " " + e.Message
}

// RemoteOperationError wraps a failure of the remote store. Local state is left
// unchanged when one is returned.
type RemoteOperationError struct {
	Op  string
	Err error
}

func (e *RemoteOperationError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *RemoteOperationError) Unwrap() error { return e.Err }

// DecodeError reports a persisted record that could not be read back. It is
// logged and recovered from, never handed to callers of the ledger.
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %q: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Remote wraps err as a RemoteOperationError unless it already is one, is nil
// or reports a missing row. ErrNotFound passes through unwrapped.
func Remote(op string, err error) error {
	if err == nil || errors.Is(err, ErrNotFound) {
		return err
	}
	var roe *RemoteOperationError
	if errors.As(err, &roe) {
		return err
	}
	return &RemoteOperationError{Op: op, Err: err}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsRemote reports whether err is a RemoteOperationError.
func IsRemote(err error) bool {
	var roe *RemoteOperationError
	return errors.As(err, &roe)
}
