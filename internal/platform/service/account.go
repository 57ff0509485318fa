package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/metagate-hq/platform/internal/platform/domain"
	"github.com/metagate-hq/platform/internal/platform/store"
)

// ProfileUpdate carries the freely mutable profile fields. Nil pointers
// leave the corresponding field untouched.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Nickname  *string
	Phone     *string
	AvatarURL *string
	Bio       *string
}

// AccountService serves account reads and profile updates for the account
// owner. Lifecycle and role mutations live in AdminService.
type AccountService struct {
	store   store.Store
	timeout time.Duration
	now     func() time.Time
}

func NewAccountService(st store.Store, timeout time.Duration) *AccountService {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return &AccountService{store: st, timeout: timeout, now: time.Now}
}

func (s *AccountService) GetByID(ctx context.Context, id string) (domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.get(s.store.Accounts().GetByID(ctx, id))
}

func (s *AccountService) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.get(s.store.Accounts().GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email))))
}

func (s *AccountService) GetByUsername(ctx context.Context, username string) (domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.get(s.store.Accounts().GetByUsername(ctx, username))
}

func (s *AccountService) get(acct domain.Account, err error) (domain.Account, error) {
	switch {
	case err == nil:
		return acct, nil
	case errors.Is(err, store.ErrNotFound):
		return domain.Account{}, ErrNotFound
	default:
		return domain.Account{}, infraErr(err)
	}
}

// UpdateProfile applies the non-nil fields of upd and returns the updated
// account. Deleted accounts cannot be edited.
func (s *AccountService) UpdateProfile(ctx context.Context, accountID string, upd ProfileUpdate) (domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var out domain.Account
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		acct, err := tx.Accounts().GetByID(ctx, accountID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return infraErr(err)
		}
		if acct.IsDeleted() {
			return ErrIllegalTransition
		}

		applyIfSet(&acct.FirstName, upd.FirstName)
		applyIfSet(&acct.LastName, upd.LastName)
		applyIfSet(&acct.Nickname, upd.Nickname)
		applyIfSet(&acct.Phone, upd.Phone)
		applyIfSet(&acct.AvatarURL, upd.AvatarURL)
		applyIfSet(&acct.Bio, upd.Bio)
		acct.UpdatedAt = s.now().UTC()

		if err := tx.Accounts().Update(ctx, acct); err != nil {
			return infraErr(err)
		}
		out = acct
		return nil
	})
	if err != nil {
		return domain.Account{}, err
	}
	return out, nil
}

func applyIfSet(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}
