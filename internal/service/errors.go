package service

import (
	"errors"
	"fmt"

	"inkwell/blog-api/pkg/security"
)

var (
	ErrUnauthenticated  = errors.New("authentication required")
	ErrForbidden        = errors.New("access denied")
	ErrConflict         = errors.New("conflict")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrContentRejected  = errors.New("content rejected by moderation, account has been blocked")
	ErrNotFound         = errors.New("not found")

	ErrTokenExpired  = security.ErrTokenExpired
	ErrTokenMismatch = security.ErrTokenMismatch

	ErrEmailTaken       = fmt.Errorf("%w: this email is already registered", ErrConflict)
	ErrAlreadyFollowing = fmt.Errorf("%w: you are already following this user", ErrConflict)
	ErrBusy             = fmt.Errorf("%w: too many concurrent updates, try again", ErrConflict)

	ErrSelfFollow      = fmt.Errorf("%w: you can't follow yourself", ErrInvalidOperation)
	ErrSelfBlock       = fmt.Errorf("%w: you can't block yourself", ErrInvalidOperation)
	ErrAlreadyVerified = fmt.Errorf("%w: account is already verified", ErrInvalidOperation)
)

// inputError marks a validator failure. It reads like the validator error
// but also matches ErrInvalidOperation.
type inputError struct {
	err error
}

func (e *inputError) Error() string {
	return e.err.Error()
}

func (e *inputError) Unwrap() []error {
	return []error{ErrInvalidOperation, e.err}
}

func invalidInput(err error) error {
	if err == nil {
		return nil
	}

	return &inputError{err: err}
}
