package service

import (
	"context"
	"errors"

	"golang.org/x/sync/semaphore"

	"github.com/metagate-hq/platform/pkg/cryptox"
)

// DefaultHashConcurrency bounds how many Argon2id computations run at once.
// Each hash pins ~19 MiB, so an unbounded login burst would exhaust memory
// long before it exhausts CPU.
const DefaultHashConcurrency = 4

// CredentialService hashes and verifies account passwords. All hashing goes
// through a weighted semaphore; callers waiting for a slot honour context
// cancellation, but a hash that has started always runs to completion.
type CredentialService struct {
	params cryptox.Argon2Params
	pepper string
	sem    *semaphore.Weighted
}

// NewCredentialService builds a credential service with the given Argon2id
// parameters and optional pepper. concurrency <= 0 falls back to
// DefaultHashConcurrency.
func NewCredentialService(params cryptox.Argon2Params, pepper string, concurrency int) *CredentialService {
	if concurrency <= 0 {
		concurrency = DefaultHashConcurrency
	}
	return &CredentialService{
		params: params,
		pepper: pepper,
		sem:    semaphore.NewWeighted(int64(concurrency)),
	}
}

// Hash derives a PHC-encoded Argon2id digest for the given password.
func (s *CredentialService) Hash(ctx context.Context, password string) (string, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return "", infraErr(err)
	}
	defer s.sem.Release(1)

	digest, err := cryptox.HashPassword(password, s.pepper, s.params)
	if err != nil {
		return "", infraErr(err)
	}
	return digest, nil
}

// Verify checks a password against a stored digest. A mismatch returns
// ErrInvalidCredentials; a digest that cannot be decoded is an
// infrastructure fault since it means stored data is corrupt.
func (s *CredentialService) Verify(ctx context.Context, password, digest string) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return infraErr(err)
	}
	defer s.sem.Release(1)

	err := cryptox.VerifyPassword(password, s.pepper, digest)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, cryptox.ErrPasswordMismatch):
		return ErrInvalidCredentials
	default:
		return infraErr(err)
	}
}
