package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a unique or primary key constraint is violated.
	ErrDuplicate = errors.New("duplicate key value")

	// ErrForeignKey is returned when a row references a missing parent.
	ErrForeignKey = errors.New("foreign key violation")

	// ErrConstraint is returned for check and not-null violations.
	ErrConstraint = errors.New("constraint violation")
)

// ConstraintError ties a driver error to one of the sentinels above.
type ConstraintError struct {
	Kind error
	Err  error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

// Is reports whether target is the sentinel kind.
func (e *ConstraintError) Is(target error) bool {
	return target == e.Kind
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}

// Wrap returns err classified as kind.
func Wrap(kind, err error) error {
	return &ConstraintError{Kind: kind, Err: err}
}
