package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/metagate-hq/platform/internal/platform/domain"
	"github.com/metagate-hq/platform/internal/platform/store"
	"github.com/metagate-hq/platform/pkg/idx"
)

// BootstrapService seeds the first administrator so a fresh deployment is
// reachable. It only ever acts on an empty accounts table.
type BootstrapService struct {
	store store.Store
	creds *CredentialService
	log   *slog.Logger
}

func NewBootstrapService(st store.Store, creds *CredentialService, log *slog.Logger) *BootstrapService {
	return &BootstrapService{store: st, creds: creds, log: log}
}

// EnsureAdmin creates an ACTIVE, verified admin account with the given
// credentials when no accounts exist yet. It is a no-op otherwise, so
// repeated startups with the same configuration are safe.
func (s *BootstrapService) EnsureAdmin(ctx context.Context, email, username, password string) error {
	if email == "" || username == "" || password == "" {
		return nil // bootstrap not configured
	}

	stats, err := s.store.Accounts().Stats(ctx)
	if err != nil {
		return infraErr(err)
	}
	if stats.Total > 0 {
		return nil
	}

	normEmail, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	if err := validateUsername(username); err != nil {
		return err
	}
	if err := validatePassword(password); err != nil {
		return err
	}

	hash, err := s.creds.Hash(ctx, password)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	acct := domain.Account{
		ID:            idx.New().String(),
		Email:         normEmail,
		Username:      username,
		PasswordHash:  hash,
		EmailVerified: true,
		Role:          domain.RoleAdmin,
		Status:        domain.StatusActive,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.store.Accounts().Create(ctx, acct)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrAlreadyExists):
		// A concurrent replica bootstrapped first.
		return nil
	default:
		return infraErr(err)
	}

	s.log.InfoContext(ctx, "bootstrap admin created",
		slog.String("account_id", acct.ID),
		slog.String("username", acct.Username),
	)
	return nil
}
