package jwtx

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testSecret = []byte(strings.Repeat("s", MinSecretLength))

func newTestSigner(t *testing.T) *Signer {
	t.Helper()
	s, err := NewSigner(testSecret, "HS256", "platform-test")
	require.NoError(t, err)
	return s
}

func TestNewSigner(t *testing.T) {
	t.Parallel()

	t.Run("rejects short secrets", func(t *testing.T) {
		_, err := NewSigner([]byte("short"), "HS256", "iss")
		require.ErrorIs(t, err, ErrSecretTooShort)
	})

	t.Run("rejects unsupported algorithms", func(t *testing.T) {
		_, err := NewSigner(testSecret, "RS256", "iss")
		require.ErrorIs(t, err, ErrAlgorithm)
	})

	t.Run("defaults to HS256", func(t *testing.T) {
		s, err := NewSigner(testSecret, "", "iss")
		require.NoError(t, err)
		require.Equal(t, "HS256", s.method.Alg())
	})

	t.Run("accepts HS384 and HS512", func(t *testing.T) {
		for _, alg := range []string{"HS384", "HS512"} {
			_, err := NewSigner(testSecret, alg, "iss")
			require.NoError(t, err)
		}
	})
}

func TestSignAndVerify(t *testing.T) {
	t.Parallel()

	s := newTestSigner(t)
	now := time.Now()

	token, err := s.Sign("account-1", TokenTypeAccess, 15*time.Minute, now)
	require.NoError(t, err)

	claims, err := s.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "account-1", claims.Subject)
	require.Equal(t, "platform-test", claims.Issuer)
	require.Equal(t, TokenTypeAccess, claims.TokenType)
	require.NotEmpty(t, claims.ID)
	require.WithinDuration(t, now.Add(15*time.Minute), claims.ExpiresAt.Time, time.Second)
}

func TestVerifyFailures(t *testing.T) {
	t.Parallel()

	s := newTestSigner(t)

	t.Run("expired token", func(t *testing.T) {
		token, err := s.Sign("account-1", TokenTypeAccess, time.Minute, time.Now().Add(-time.Hour))
		require.NoError(t, err)

		_, err = s.Verify(token)
		require.ErrorIs(t, err, ErrExpired)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewSigner([]byte(strings.Repeat("x", MinSecretLength)), "HS256", "platform-test")
		require.NoError(t, err)

		token, err := other.Sign("account-1", TokenTypeAccess, time.Minute, time.Now())
		require.NoError(t, err)

		_, err = s.Verify(token)
		require.ErrorIs(t, err, ErrSignatureInvalid)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := s.Verify("not.a.jwt")
		require.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other, err := NewSigner(testSecret, "HS256", "someone-else")
		require.NoError(t, err)

		token, err := other.Sign("account-1", TokenTypeAccess, time.Minute, time.Now())
		require.NoError(t, err)

		_, err = s.Verify(token)
		require.ErrorIs(t, err, ErrIssuer)
	})
}

func TestRequireType(t *testing.T) {
	t.Parallel()

	s := newTestSigner(t)

	token, err := s.Sign("account-1", TokenTypeRefresh, time.Hour, time.Now())
	require.NoError(t, err)

	claims, err := s.Verify(token)
	require.NoError(t, err)
	require.NoError(t, claims.RequireType(TokenTypeRefresh))
	require.ErrorIs(t, claims.RequireType(TokenTypeAccess), ErrWrongTokenType)
}
