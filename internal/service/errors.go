package service

import (
	"errors"
	"strings"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrFollowSelf      = errors.New("cannot follow yourself")
	ErrStorageDisabled = errors.New("image storage is not configured")
	ErrInvalidToken    = errors.New("invalid token")
	ErrUserExists      = errors.New("user already exists")
)

// ValidationError carries every problem found in a request.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

func (e *ValidationError) add(msg string) {
	e.Errors = append(e.Errors, msg)
}

func (e *ValidationError) orNil() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}
