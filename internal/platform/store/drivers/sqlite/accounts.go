package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/metagate-hq/platform/internal/platform/domain"
	"github.com/metagate-hq/platform/internal/platform/store"
)

type accountsRepo struct {
	db dbtx
}

const accountColumns = `id, email, username, password_hash, provider, provider_id,
	email_verified, verification_token_hash, verification_expires,
	reset_token_hash, reset_expires,
	first_name, last_name, nickname, phone, avatar_url, bio,
	role, status, is_active, last_login_at, last_login_ip,
	created_at, updated_at, deleted_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var (
		a                                  domain.Account
		role, status                       string
		verifExp, resetExp, lastLogin, del sql.NullTime
	)
	err := row.Scan(
		&a.ID, &a.Email, &a.Username, &a.PasswordHash, &a.Provider, &a.ProviderID,
		&a.EmailVerified, &a.VerificationTokenHash, &verifExp,
		&a.ResetTokenHash, &resetExp,
		&a.FirstName, &a.LastName, &a.Nickname, &a.Phone, &a.AvatarURL, &a.Bio,
		&role, &status, &a.IsActive, &lastLogin, &a.LastLoginIP,
		&a.CreatedAt, &a.UpdatedAt, &del,
	)
	if err != nil {
		return domain.Account{}, err
	}

	a.Role = domain.Role(role)
	a.Status = domain.Status(status)
	a.VerificationExpires = mapNullTimePtr(verifExp)
	a.ResetExpires = mapNullTimePtr(resetExp)
	a.LastLoginAt = mapNullTimePtr(lastLogin)
	a.DeletedAt = mapNullTimePtr(del)
	return a, nil
}

func (r *accountsRepo) Create(ctx context.Context, a domain.Account) error {
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Email, a.Username, a.PasswordHash, a.Provider, a.ProviderID,
		a.EmailVerified, a.VerificationTokenHash, mapOptionalTime(a.VerificationExpires),
		a.ResetTokenHash, mapOptionalTime(a.ResetExpires),
		a.FirstName, a.LastName, a.Nickname, a.Phone, a.AvatarURL, a.Bio,
		string(a.Role), string(a.Status), a.IsActive,
		mapOptionalTime(a.LastLoginAt), a.LastLoginIP,
		a.CreatedAt, a.UpdatedAt, mapOptionalTime(a.DeletedAt),
	)
	return mapConstraint(err)
}

func (r *accountsRepo) Update(ctx context.Context, a domain.Account) error {
	// Persist the caller's UpdatedAt so the value it holds matches the row.
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET
			email = ?, username = ?, password_hash = ?, provider = ?, provider_id = ?,
			email_verified = ?, verification_token_hash = ?, verification_expires = ?,
			reset_token_hash = ?, reset_expires = ?,
			first_name = ?, last_name = ?, nickname = ?, phone = ?, avatar_url = ?, bio = ?,
			role = ?, status = ?, is_active = ?, last_login_at = ?, last_login_ip = ?,
			updated_at = ?, deleted_at = ?
		WHERE id = ?`,
		a.Email, a.Username, a.PasswordHash, a.Provider, a.ProviderID,
		a.EmailVerified, a.VerificationTokenHash, mapOptionalTime(a.VerificationExpires),
		a.ResetTokenHash, mapOptionalTime(a.ResetExpires),
		a.FirstName, a.LastName, a.Nickname, a.Phone, a.AvatarURL, a.Bio,
		string(a.Role), string(a.Status), a.IsActive,
		mapOptionalTime(a.LastLoginAt), a.LastLoginIP,
		a.UpdatedAt, mapOptionalTime(a.DeletedAt),
		a.ID,
	)
	if err != nil {
		return mapConstraint(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *accountsRepo) GetByID(ctx context.Context, id string) (domain.Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id))
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = ? AND deleted_at IS NULL`, email))
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) GetByEmailIncludeDeleted(ctx context.Context, email string) (domain.Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = ?
		 ORDER BY (deleted_at IS NULL) DESC, created_at DESC LIMIT 1`, email))
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) GetByUsername(ctx context.Context, username string) (domain.Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE username = ? AND deleted_at IS NULL`, username))
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) GetByExternalIdentity(ctx context.Context, provider, providerID string) (domain.Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts
		 WHERE provider = ? AND provider_id = ? AND deleted_at IS NULL`, provider, providerID))
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) GetBySingleUseToken(ctx context.Context, purpose domain.TokenPurpose, fingerprint string) (domain.Account, error) {
	if fingerprint == "" {
		return domain.Account{}, store.ErrNotFound
	}

	column := "verification_token_hash"
	if purpose == domain.PurposePasswordReset {
		column = "reset_token_hash"
	}

	a, err := scanAccount(r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts
		 WHERE `+column+` = ? AND deleted_at IS NULL`, fingerprint))
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE email = ? AND deleted_at IS NULL)`,
		email).Scan(&exists)
	return exists, err
}

func (r *accountsRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE username = ? AND deleted_at IS NULL)`,
		username).Scan(&exists)
	return exists, err
}

func (r *accountsRepo) List(ctx context.Context, f store.AccountFilter) ([]domain.Account, error) {
	var (
		conds []string
		args  []any
	)
	if f.Status != nil {
		conds = append(conds, "status = ?")
		args = append(args, string(*f.Status))
	}
	if f.Role != nil {
		conds = append(conds, "role = ?")
		args = append(args, string(*f.Role))
	}
	if f.Verified != nil {
		conds = append(conds, "email_verified = ?")
		args = append(args, *f.Verified)
	}

	query := `SELECT ` + accountColumns + ` FROM accounts`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
		if f.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, f.Offset)
		}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *accountsRepo) Stats(ctx context.Context) (store.AccountStats, error) {
	var s store.AccountStats
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'active'),
			COUNT(*) FILTER (WHERE status = 'inactive'),
			COUNT(*) FILTER (WHERE status = 'suspended'),
			COUNT(*) FILTER (WHERE status = 'deleted'),
			COUNT(*) FILTER (WHERE role = 'admin'),
			COUNT(*) FILTER (WHERE email_verified)
		FROM accounts`).Scan(
		&s.Total, &s.Pending, &s.Active, &s.Inactive,
		&s.Suspended, &s.Deleted, &s.Admins, &s.Verified,
	)
	return s, err
}

func (r *accountsRepo) HardDelete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *accountsRepo) ClearExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	var total int64

	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET verification_token_hash = '', verification_expires = NULL
		WHERE verification_expires IS NOT NULL AND verification_expires < ?`, now)
	if err != nil {
		return 0, err
	}
	if n, err := res.RowsAffected(); err == nil {
		total += n
	}

	res, err = r.db.ExecContext(ctx, `
		UPDATE accounts SET reset_token_hash = '', reset_expires = NULL
		WHERE reset_expires IS NOT NULL AND reset_expires < ?`, now)
	if err != nil {
		return total, err
	}
	if n, err := res.RowsAffected(); err == nil {
		total += n
	}

	return total, nil
}
