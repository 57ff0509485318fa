package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/metagate-hq/platform/internal/platform/domain"
	"github.com/metagate-hq/platform/internal/platform/store"
)

// AdminService implements the administrative lifecycle and role operations.
// Every mutation goes through the transition methods on domain.Account, so
// an unreachable transition is rejected with ErrIllegalTransition instead of
// silently overwriting status.
type AdminService struct {
	store   store.Store
	log     *slog.Logger
	timeout time.Duration
	now     func() time.Time
}

func NewAdminService(st store.Store, log *slog.Logger, timeout time.Duration) *AdminService {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return &AdminService{store: st, log: log, timeout: timeout, now: time.Now}
}

// Suspend moves any non-terminal account to SUSPENDED.
func (s *AdminService) Suspend(ctx context.Context, accountID, reason string) error {
	return s.transition(ctx, accountID, "suspend", func(a *domain.Account) error {
		if err := a.Suspend(); err != nil {
			return err
		}
		s.log.InfoContext(ctx, "account suspended",
			slog.String("account_id", a.ID),
			slog.String("reason", reason),
		)
		return nil
	})
}

// Activate moves an ACTIVE, INACTIVE or SUSPENDED account to ACTIVE. Pending
// accounts activate through email verification only.
func (s *AdminService) Activate(ctx context.Context, accountID string) error {
	return s.transition(ctx, accountID, "activate", func(a *domain.Account) error {
		return a.Activate()
	})
}

// Deactivate moves an account to INACTIVE.
func (s *AdminService) Deactivate(ctx context.Context, accountID string) error {
	return s.transition(ctx, accountID, "deactivate", func(a *domain.Account) error {
		return a.Deactivate()
	})
}

// Promote grants the admin role.
func (s *AdminService) Promote(ctx context.Context, accountID string) error {
	return s.transition(ctx, accountID, "promote", func(a *domain.Account) error {
		return a.ChangeRole(domain.RoleAdmin)
	})
}

// Demote reverts the account to the user role.
func (s *AdminService) Demote(ctx context.Context, accountID string) error {
	return s.transition(ctx, accountID, "demote", func(a *domain.Account) error {
		return a.ChangeRole(domain.RoleUser)
	})
}

// SoftDelete stamps DeletedAt and moves the account to the terminal DELETED
// status. The row stays behind for audit; its email and username become
// available for re-registration immediately.
func (s *AdminService) SoftDelete(ctx context.Context, accountID string) error {
	return s.transition(ctx, accountID, "soft delete", func(a *domain.Account) error {
		return a.SoftDelete(s.now().UTC())
	})
}

// HardDelete permanently removes the row. Irreversible, and intentionally
// not part of any normal flow.
func (s *AdminService) HardDelete(ctx context.Context, accountID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.store.Accounts().HardDelete(ctx, accountID)
	switch {
	case err == nil:
		s.log.WarnContext(ctx, "account hard deleted", slog.String("account_id", accountID))
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	default:
		return infraErr(err)
	}
}

// List returns accounts matching the filter for admin review.
func (s *AdminService) List(ctx context.Context, f store.AccountFilter) ([]domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	accts, err := s.store.Accounts().List(ctx, f)
	if err != nil {
		return nil, infraErr(err)
	}
	return accts, nil
}

// Stats returns aggregate account counts.
func (s *AdminService) Stats(ctx context.Context) (store.AccountStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	stats, err := s.store.Accounts().Stats(ctx)
	if err != nil {
		return store.AccountStats{}, infraErr(err)
	}
	return stats, nil
}

// transition loads the account, applies fn inside a transaction and persists
// the result. Running inside a transaction keeps concurrent admin actions
// from interleaving their read-modify-write cycles.
func (s *AdminService) transition(ctx context.Context, accountID, name string, fn func(*domain.Account) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		acct, err := tx.Accounts().GetByID(ctx, accountID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return infraErr(err)
		}
		if err := fn(&acct); err != nil {
			return err
		}
		acct.UpdatedAt = s.now().UTC()
		if err := tx.Accounts().Update(ctx, acct); err != nil {
			return infraErr(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "account transition applied",
		slog.String("account_id", accountID),
		slog.String("operation", name),
	)
	return nil
}
