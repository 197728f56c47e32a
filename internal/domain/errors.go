package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrSourceUnavailable = errors.New("metric source unavailable")
	ErrNotFound          = errors.New("influencer not found upstream")
	ErrTimeout           = errors.New("metric source timed out")
)

// StoreError wraps a persistence failure with the operation that hit it.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// PartialWriteError reports an ingestion where some observation rows
// were appended before a write failed. Rows already written stay;
// appends are pure inserts, so the caller may safely re-run.
type PartialWriteError struct {
	Written int
	Err     error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("partial snapshot write: %d row(s) stored before failure: %v", e.Written, e.Err)
}

func (e *PartialWriteError) Unwrap() error { return e.Err }
