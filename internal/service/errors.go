package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/pliu/warbler/internal/store"
)

var (
	// ErrAccountTaken is returned by Signup when the username or email is in
	// use. It matches store.ErrDuplicate as well.
	ErrAccountTaken = fmt.Errorf("username or email already taken: %w", store.ErrDuplicate)

	// ErrInvalidCredentials covers both an unknown username and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountGone is returned when the acting user of a still signed
	// session no longer exists. It matches store.ErrNotFound as well.
	ErrAccountGone = fmt.Errorf("account no longer exists: %w", store.ErrNotFound)

	ErrSelfFollow = errors.New("users cannot follow themselves")
	ErrForbidden  = errors.New("forbidden")
)

// ValidationError represents a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// requireAccount checks that the acting user still exists.
func requireAccount(ctx context.Context, q store.Queries, userID int) error {
	if _, err := q.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAccountGone
		}
		return err
	}
	return nil
}
