package core

import (
	"errors"
	"fmt"
)

// TransientError marks a store failure that may or may not have been
// applied, such as a timeout during the spend-update half of a write.
// Callers must not retry the mutation blindly; reconciliation recomputes
// from the ledger instead.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient store failure during %s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// Transient wraps err as a TransientError for the given operation.
func Transient(op string, err error) error {
	return &TransientError{Op: op, Err: err}
}

// IsTransient reports whether err is (or wraps) a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
