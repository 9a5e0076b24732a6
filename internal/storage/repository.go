package storage

import (
	"context"
	"errors"
	"fmt"
)

var ErrStorageUnavailable = errors.New("storage unavailable")

// Repository persists finished sessions. Add is an upsert keyed by the
// session id, so retrying a failed save with the same record is safe.
type Repository interface {
	Add(ctx context.Context, record *SessionRecord) error

	// GetByDate returns every record whose Date equals date, in no
	// particular order.
	GetByDate(ctx context.Context, date string) ([]SessionRecord, error)

	Close() error
}

// StorageError wraps a backend failure with the operation that caused it.
type StorageError struct {
	Op      string
	Backend string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Backend, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func wrapErr(backend, op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Backend: backend, Err: err}
}

func unavailable(backend string, err error) error {
	return &StorageError{Op: "open", Backend: backend, Err: fmt.Errorf("%w: %v", ErrStorageUnavailable, err)}
}
