package service

import (
	"errors"
	"fmt"

	"github.com/metagate-hq/platform/internal/platform/domain"
)

// Domain error taxonomy. Every operation returns one of these kinds (or an
// ErrInfrastructure-wrapped fault); callers dispatch with errors.Is and never
// string-match. None of the domain kinds are retryable without new input.
var (
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is not active")
	ErrNotFound           = errors.New("account not found")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrNoPasswordSet      = errors.New("account has no password")
	ErrAlreadyVerified    = errors.New("email already verified")

	// ErrIllegalTransition is the domain sentinel re-exported so callers
	// only need to import this package to classify failures.
	ErrIllegalTransition = domain.ErrIllegalTransition

	// ErrInfrastructure marks store or network faults. Unlike the domain
	// kinds above it is safe for callers to retry with backoff, except
	// after an ambiguous account creation.
	ErrInfrastructure = errors.New("infrastructure failure")
)

// infraErr wraps a store/network fault so it carries both the taxonomy kind
// and the underlying cause.
func infraErr(err error) error {
	return fmt.Errorf("%w: %w", ErrInfrastructure, err)
}

func validationErr(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
