package domain

import "time"

// Role is the authorization axis, independent from Status.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// ParseRole validates a role name.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser, RoleModerator, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

// Account is the identity aggregate root. All status mutations go through
// the transition methods on this type; repositories persist whatever state
// the methods produced and never flip fields themselves.
type Account struct {
	ID       string
	Email    string // stored lower-cased
	Username string

	// Credentials. PasswordHash is empty for external-identity-only
	// accounts; Provider/ProviderID are empty for password accounts. Both
	// may be present after account linking.
	PasswordHash string // argon2id PHC encoded
	Provider     string // external identity provider name
	ProviderID   string // provider-assigned id

	// Email verification and single-use tokens. Only fingerprints are
	// persisted, never raw token values.
	EmailVerified         bool
	VerificationTokenHash string
	VerificationExpires   *time.Time
	ResetTokenHash        string
	ResetExpires          *time.Time

	// Profile, freely mutable.
	FirstName string
	LastName  string
	Nickname  string
	Phone     string
	AvatarURL string
	Bio       string

	Role     Role
	Status   Status
	IsActive bool

	LastLoginAt *time.Time
	LastLoginIP string

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time // set once, terminal
}

// HasPassword reports whether the account can authenticate with a password.
func (a *Account) HasPassword() bool { return a.PasswordHash != "" }

// HasExternalIdentity reports whether the account is linked to an external
// identity provider.
func (a *Account) HasExternalIdentity() bool { return a.Provider != "" && a.ProviderID != "" }

// IsDeleted reports whether the account has been soft-deleted.
func (a *Account) IsDeleted() bool { return a.Status == StatusDeleted }

// DisplayName returns the nickname when set, the username otherwise.
func (a *Account) DisplayName() string {
	if a.Nickname != "" {
		return a.Nickname
	}
	return a.Username
}

// RecordLogin updates the last-login bookkeeping.
func (a *Account) RecordLogin(ip string, now time.Time) {
	a.LastLoginAt = &now
	if ip != "" {
		a.LastLoginIP = ip
	}
}

// SetVerificationToken arms a fresh email verification token.
func (a *Account) SetVerificationToken(fingerprint string, expires time.Time) {
	a.VerificationTokenHash = fingerprint
	a.VerificationExpires = &expires
}

// SetResetToken arms a fresh password reset token.
func (a *Account) SetResetToken(fingerprint string, expires time.Time) {
	a.ResetTokenHash = fingerprint
	a.ResetExpires = &expires
}

// ClearVerificationToken removes the verification token entirely; a consumed
// token is cleared, not marked used.
func (a *Account) ClearVerificationToken() {
	a.VerificationTokenHash = ""
	a.VerificationExpires = nil
}

// ClearResetToken removes the reset token entirely.
func (a *Account) ClearResetToken() {
	a.ResetTokenHash = ""
	a.ResetExpires = nil
}

// VerifyEmail marks the email verified, clears the token and activates a
// pending account.
func (a *Account) VerifyEmail() error {
	if a.Status == StatusDeleted {
		return ErrIllegalTransition
	}
	a.EmailVerified = true
	a.ClearVerificationToken()
	if a.Status == StatusPending {
		a.Status = StatusActive
		a.IsActive = true
	}
	return nil
}

// Activate transitions to ACTIVE. Pending accounts activate through email
// verification, not through this method.
func (a *Account) Activate() error {
	switch a.Status {
	case StatusActive, StatusInactive, StatusSuspended:
		a.Status = StatusActive
		a.IsActive = true
		return nil
	}
	return ErrIllegalTransition
}

// Deactivate transitions to INACTIVE.
func (a *Account) Deactivate() error {
	switch a.Status {
	case StatusActive, StatusInactive, StatusSuspended:
		a.Status = StatusInactive
		a.IsActive = false
		return nil
	}
	return ErrIllegalTransition
}

// Suspend transitions any non-terminal status to SUSPENDED.
func (a *Account) Suspend() error {
	if a.Status == StatusDeleted {
		return ErrIllegalTransition
	}
	a.Status = StatusSuspended
	a.IsActive = false
	return nil
}

// SoftDelete transitions any non-terminal status to DELETED and stamps
// DeletedAt. DELETED is terminal; DeletedAt is never cleared.
func (a *Account) SoftDelete(now time.Time) error {
	if a.Status == StatusDeleted {
		return ErrIllegalTransition
	}
	a.Status = StatusDeleted
	a.IsActive = false
	a.DeletedAt = &now
	return nil
}

// ChangeRole moves the account to role. Permitted in any non-DELETED status.
func (a *Account) ChangeRole(role Role) error {
	if a.Status == StatusDeleted {
		return ErrIllegalTransition
	}
	a.Role = role
	return nil
}
