// Package store defines the persistence contracts consumed by the services.
// Concrete drivers live under drivers/ and must surface uniqueness conflicts
// as ErrAlreadyExists and absence as ErrNotFound, never as ambient errors.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/metagate-hq/platform/internal/platform/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. It exposes sub-repositories to
// keep concerns tidy and testable.
type Store interface {
	Accounts() Accounts
	Organizations() Organizations
	Workspaces() Workspaces
	Projects() Projects

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing when fn returns
	// nil and rolling back otherwise. Prefer this over Tx.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// AccountFilter narrows admin listings. Nil fields match everything.
type AccountFilter struct {
	Status   *domain.Status
	Role     *domain.Role
	Verified *bool
	Limit    int
	Offset   int
}

// AccountStats are the aggregate counts reported to administrators.
type AccountStats struct {
	Total     int64
	Pending   int64
	Active    int64
	Inactive  int64
	Suspended int64
	Deleted   int64
	Admins    int64
	Verified  int64
}

type Accounts interface {
	// Create inserts a new account. Returns ErrAlreadyExists when any of
	// the live-row uniqueness constraints (email, username, external
	// identity pair) is violated.
	Create(ctx context.Context, a domain.Account) error

	// Update persists the full mutable state of an existing account.
	// Uniqueness conflicts surface as ErrAlreadyExists.
	Update(ctx context.Context, a domain.Account) error

	GetByID(ctx context.Context, id string) (domain.Account, error)

	// GetByEmail matches non-deleted accounts only; email is compared as
	// stored (callers lower-case it first).
	GetByEmail(ctx context.Context, email string) (domain.Account, error)

	// GetByEmailIncludeDeleted matches deleted rows too, preferring a live
	// one when both exist. Login uses it so a soft-deleted account with a
	// correct password is reported as inactive rather than unknown.
	GetByEmailIncludeDeleted(ctx context.Context, email string) (domain.Account, error)

	GetByUsername(ctx context.Context, username string) (domain.Account, error)

	// GetByExternalIdentity looks a non-deleted account up by its
	// (provider, provider id) pair.
	GetByExternalIdentity(ctx context.Context, provider, providerID string) (domain.Account, error)

	// GetBySingleUseToken looks an account up by the fingerprint of a
	// persisted single-use token with the given purpose. Expiry is NOT
	// checked here; the caller owns token semantics.
	GetBySingleUseToken(ctx context.Context, purpose domain.TokenPurpose, fingerprint string) (domain.Account, error)

	// ExistsByEmail and ExistsByUsername exclude soft-deleted rows, so a
	// deleted account never blocks re-registration.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	List(ctx context.Context, f AccountFilter) ([]domain.Account, error)
	Stats(ctx context.Context) (AccountStats, error)

	// HardDelete permanently removes the row. Irreversible.
	HardDelete(ctx context.Context, id string) error

	// ClearExpiredTokens wipes single-use tokens whose expiry is before
	// now. Returns the number of affected rows. Housekeeping only.
	ClearExpiredTokens(ctx context.Context, now time.Time) (int64, error)
}

type Organizations interface {
	Create(ctx context.Context, o domain.Organization) error
	GetByID(ctx context.Context, id string) (domain.Organization, error)
	List(ctx context.Context, ownerID string) ([]domain.Organization, error)
	Update(ctx context.Context, o domain.Organization) error
	Delete(ctx context.Context, id string) error
}

type Workspaces interface {
	Create(ctx context.Context, w domain.Workspace) error
	GetByID(ctx context.Context, id string) (domain.Workspace, error)
	List(ctx context.Context, ownerID string) ([]domain.Workspace, error)
	Update(ctx context.Context, w domain.Workspace) error
	Delete(ctx context.Context, id string) error
}

type Projects interface {
	Create(ctx context.Context, p domain.Project) error
	GetByID(ctx context.Context, id string) (domain.Project, error)
	List(ctx context.Context, ownerID string) ([]domain.Project, error)
	Update(ctx context.Context, p domain.Project) error
	Delete(ctx context.Context, id string) error
}
