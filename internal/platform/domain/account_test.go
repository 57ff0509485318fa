package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func pendingAccount() *Account {
	return &Account{ID: "acct-1", Status: StatusPending, Role: RoleUser}
}

func TestVerifyEmail(t *testing.T) {
	t.Parallel()

	t.Run("activates a pending account and clears the token", func(t *testing.T) {
		a := pendingAccount()
		exp := time.Now().Add(24 * time.Hour)
		a.SetVerificationToken("fp", exp)

		require.NoError(t, a.VerifyEmail())
		require.True(t, a.EmailVerified)
		require.Equal(t, StatusActive, a.Status)
		require.True(t, a.IsActive)
		require.Empty(t, a.VerificationTokenHash)
		require.Nil(t, a.VerificationExpires)
	})

	t.Run("leaves a non-pending status alone", func(t *testing.T) {
		a := &Account{Status: StatusSuspended}
		require.NoError(t, a.VerifyEmail())
		require.True(t, a.EmailVerified)
		require.Equal(t, StatusSuspended, a.Status)
	})

	t.Run("rejected on deleted accounts", func(t *testing.T) {
		a := &Account{Status: StatusDeleted}
		require.ErrorIs(t, a.VerifyEmail(), ErrIllegalTransition)
	})
}

func TestStatusTransitions(t *testing.T) {
	t.Parallel()

	t.Run("activate from active, inactive, suspended", func(t *testing.T) {
		for _, from := range []Status{StatusActive, StatusInactive, StatusSuspended} {
			a := &Account{Status: from}
			require.NoError(t, a.Activate())
			require.Equal(t, StatusActive, a.Status)
			require.True(t, a.IsActive)
		}
	})

	t.Run("activate rejected from pending", func(t *testing.T) {
		a := pendingAccount()
		require.ErrorIs(t, a.Activate(), ErrIllegalTransition)
	})

	t.Run("deactivate from active, inactive, suspended", func(t *testing.T) {
		for _, from := range []Status{StatusActive, StatusInactive, StatusSuspended} {
			a := &Account{Status: from, IsActive: true}
			require.NoError(t, a.Deactivate())
			require.Equal(t, StatusInactive, a.Status)
			require.False(t, a.IsActive)
		}
	})

	t.Run("suspend from any non-terminal", func(t *testing.T) {
		for _, from := range []Status{StatusPending, StatusActive, StatusInactive, StatusSuspended} {
			a := &Account{Status: from, IsActive: true}
			require.NoError(t, a.Suspend())
			require.Equal(t, StatusSuspended, a.Status)
			require.False(t, a.IsActive)
		}
	})

	t.Run("soft delete stamps deleted_at", func(t *testing.T) {
		now := time.Now()
		a := &Account{Status: StatusActive, IsActive: true}
		require.NoError(t, a.SoftDelete(now))
		require.Equal(t, StatusDeleted, a.Status)
		require.False(t, a.IsActive)
		require.NotNil(t, a.DeletedAt)
		require.Equal(t, now, *a.DeletedAt)
	})

	t.Run("deleted is terminal", func(t *testing.T) {
		a := &Account{Status: StatusDeleted}
		require.ErrorIs(t, a.Activate(), ErrIllegalTransition)
		require.ErrorIs(t, a.Deactivate(), ErrIllegalTransition)
		require.ErrorIs(t, a.Suspend(), ErrIllegalTransition)
		require.ErrorIs(t, a.SoftDelete(time.Now()), ErrIllegalTransition)
		require.ErrorIs(t, a.ChangeRole(RoleAdmin), ErrIllegalTransition)
	})
}

func TestChangeRole(t *testing.T) {
	t.Parallel()

	for _, from := range []Status{StatusPending, StatusActive, StatusInactive, StatusSuspended} {
		a := &Account{Status: from, Role: RoleUser}
		require.NoError(t, a.ChangeRole(RoleAdmin))
		require.Equal(t, RoleAdmin, a.Role)
		require.NoError(t, a.ChangeRole(RoleUser))
		require.Equal(t, RoleUser, a.Role)
	}
}

func TestAccountHelpers(t *testing.T) {
	t.Parallel()

	t.Run("credential predicates", func(t *testing.T) {
		pw := &Account{PasswordHash: "$argon2id$..."}
		require.True(t, pw.HasPassword())
		require.False(t, pw.HasExternalIdentity())

		ext := &Account{Provider: "google", ProviderID: "g-123"}
		require.False(t, ext.HasPassword())
		require.True(t, ext.HasExternalIdentity())
	})

	t.Run("record login", func(t *testing.T) {
		now := time.Now()
		a := &Account{}
		a.RecordLogin("1.2.3.4", now)
		require.Equal(t, "1.2.3.4", a.LastLoginIP)
		require.Equal(t, now, *a.LastLoginAt)

		// Empty origin keeps the previous address.
		later := now.Add(time.Hour)
		a.RecordLogin("", later)
		require.Equal(t, "1.2.3.4", a.LastLoginIP)
		require.Equal(t, later, *a.LastLoginAt)
	})

	t.Run("display name", func(t *testing.T) {
		require.Equal(t, "alice", (&Account{Username: "alice"}).DisplayName())
		require.Equal(t, "Al", (&Account{Username: "alice", Nickname: "Al"}).DisplayName())
	})
}

func TestParseHelpers(t *testing.T) {
	t.Parallel()

	_, ok := ParseRole("admin")
	require.True(t, ok)
	_, ok = ParseRole("root")
	require.False(t, ok)

	_, ok = ParseStatus("suspended")
	require.True(t, ok)
	_, ok = ParseStatus("banned")
	require.False(t, ok)
}
