package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metagate-hq/platform/internal/platform/service"
)

func TestCredentialServiceHashAndVerify(t *testing.T) {
	creds := service.NewCredentialService(testParams, "pepper", 2)
	ctx := context.Background()

	digest, err := creds.Hash(ctx, "Secret123")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(digest, "$argon2id$"))

	require.NoError(t, creds.Verify(ctx, "Secret123", digest))
	assert.ErrorIs(t, creds.Verify(ctx, "WrongPW12", digest), service.ErrInvalidCredentials)
}

func TestCredentialServiceCorruptDigest(t *testing.T) {
	creds := service.NewCredentialService(testParams, "", 2)

	err := creds.Verify(context.Background(), "Secret123", "$argon2id$garbage")
	assert.ErrorIs(t, err, service.ErrInfrastructure)
}

func TestCredentialServicePepperMatters(t *testing.T) {
	ctx := context.Background()
	peppered := service.NewCredentialService(testParams, "pepper", 2)
	plain := service.NewCredentialService(testParams, "", 2)

	digest, err := peppered.Hash(ctx, "Secret123")
	require.NoError(t, err)

	assert.ErrorIs(t, plain.Verify(ctx, "Secret123", digest), service.ErrInvalidCredentials)
}

func TestCredentialServiceCancelledContext(t *testing.T) {
	creds := service.NewCredentialService(testParams, "", 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := creds.Hash(ctx, "Secret123")
	assert.ErrorIs(t, err, service.ErrInfrastructure)
}
