package service_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metagate-hq/platform/internal/platform/service"
)

func TestHousekeepingSweep(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	// One fresh and one expired verification token.
	e.register(t, "a@x.com", "alice", "Secret123")
	expired := e.register(t, "b@x.com", "bob", "Secret123")

	acct, err := e.store.Accounts().GetByID(ctx, expired.Account.ID)
	require.NoError(t, err)
	past := time.Now().Add(-time.Minute)
	acct.VerificationExpires = &past
	require.NoError(t, e.store.Accounts().Update(ctx, acct))

	hk := service.NewHousekeepingService(e.store, slog.New(slog.DiscardHandler), time.Hour)
	hk.Start()
	hk.Stop() // the startup sweep runs before the loop waits on the ticker

	acct, err = e.store.Accounts().GetByID(ctx, expired.Account.ID)
	require.NoError(t, err)
	assert.Empty(t, acct.VerificationTokenHash)
	assert.Nil(t, acct.VerificationExpires)

	fresh, err := e.store.Accounts().GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.VerificationTokenHash)
}
