package service_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metagate-hq/platform/internal/platform/domain"
	"github.com/metagate-hq/platform/internal/platform/service"
)

func TestBootstrapEnsureAdmin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	boot := service.NewBootstrapService(e.store, e.creds, slog.New(slog.DiscardHandler))

	require.NoError(t, boot.EnsureAdmin(ctx, "root@x.com", "root", "Secret123"))

	acct, err := e.store.Accounts().GetByEmail(ctx, "root@x.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, acct.Role)
	assert.Equal(t, domain.StatusActive, acct.Status)
	assert.True(t, acct.EmailVerified)

	// The admin can log in straight away.
	_, err = e.auth.Login(ctx, "root@x.com", "Secret123", "")
	require.NoError(t, err)
}

func TestBootstrapSkipsNonEmptyStore(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	boot := service.NewBootstrapService(e.store, e.creds, slog.New(slog.DiscardHandler))

	e.register(t, "a@x.com", "alice", "Secret123")

	require.NoError(t, boot.EnsureAdmin(ctx, "root@x.com", "root", "Secret123"))

	_, err := e.store.Accounts().GetByEmail(ctx, "root@x.com")
	assert.Error(t, err)
}

func TestBootstrapUnconfigured(t *testing.T) {
	e := newEnv(t)
	boot := service.NewBootstrapService(e.store, e.creds, slog.New(slog.DiscardHandler))

	require.NoError(t, boot.EnsureAdmin(context.Background(), "", "", ""))

	stats, err := e.store.Accounts().Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
}
