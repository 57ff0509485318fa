package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metagate-hq/platform/internal/platform/service"
)

func TestAccountServiceGets(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	accounts := service.NewAccountService(e.store, 0)

	acct := e.registerActive(t, "a@x.com", "alice", "Secret123")

	byID, err := accounts.GetByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, acct.ID, byID.ID)

	byEmail, err := accounts.GetByEmail(ctx, "A@X.com")
	require.NoError(t, err)
	assert.Equal(t, acct.ID, byEmail.ID)

	byName, err := accounts.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, acct.ID, byName.ID)

	_, err = accounts.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestAccountServiceUpdateProfile(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	accounts := service.NewAccountService(e.store, 0)

	acct := e.registerActive(t, "a@x.com", "alice", "Secret123")

	nick := " Ally "
	bio := "hello"
	updated, err := accounts.UpdateProfile(ctx, acct.ID, service.ProfileUpdate{
		Nickname: &nick,
		Bio:      &bio,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ally", updated.Nickname)
	assert.Equal(t, "hello", updated.Bio)
	assert.Equal(t, "Ally", updated.DisplayName())

	// Nil fields stay untouched.
	first := "Alice"
	updated, err = accounts.UpdateProfile(ctx, acct.ID, service.ProfileUpdate{FirstName: &first})
	require.NoError(t, err)
	assert.Equal(t, "Ally", updated.Nickname)
	assert.Equal(t, "Alice", updated.FirstName)
}

func TestAccountServiceUpdateDeletedRejected(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	accounts := service.NewAccountService(e.store, 0)

	acct := e.registerActive(t, "a@x.com", "alice", "Secret123")
	require.NoError(t, e.admin.SoftDelete(ctx, acct.ID))

	nick := "ghost"
	_, err := accounts.UpdateProfile(ctx, acct.ID, service.ProfileUpdate{Nickname: &nick})
	assert.ErrorIs(t, err, service.ErrIllegalTransition)
}
