package service

import (
	"context"
	"errors"
	"time"

	"github.com/metagate-hq/platform/internal/platform/domain"
	"github.com/metagate-hq/platform/internal/platform/store"
	"github.com/metagate-hq/platform/pkg/cryptox"
	"github.com/metagate-hq/platform/pkg/idx"
	"github.com/metagate-hq/platform/pkg/jwtx"
)

// Default token lifetimes. Single-use lifetimes differ per purpose: email
// verification links live a day, password reset links an hour.
const (
	DefaultAccessTTL       = 15 * time.Minute
	DefaultRefreshTTL      = 7 * 24 * time.Hour
	DefaultVerificationTTL = 24 * time.Hour
	DefaultResetTTL        = time.Hour
)

// TokenService issues and validates signed session tokens, and mints the
// opaque single-use tokens used by email verification and password reset.
// Only SHA-256 fingerprints of opaque tokens ever reach the store.
type TokenService struct {
	signer     *jwtx.Signer
	store      store.Store
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenService wires a token service. Zero TTLs take the defaults.
func NewTokenService(signer *jwtx.Signer, st store.Store, accessTTL, refreshTTL time.Duration) *TokenService {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}
	return &TokenService{
		signer:     signer,
		store:      st,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// IssuePair signs a fresh access/refresh pair for the given account.
func (s *TokenService) IssuePair(accountID string) (domain.TokenPair, error) {
	now := time.Now()

	access, err := s.signer.Sign(accountID, jwtx.TokenTypeAccess, s.accessTTL, now)
	if err != nil {
		return domain.TokenPair{}, infraErr(err)
	}
	refresh, err := s.signer.Sign(accountID, jwtx.TokenTypeRefresh, s.refreshTTL, now)
	if err != nil {
		return domain.TokenPair{}, infraErr(err)
	}

	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

// VerifySigned validates a signed token of the expected type and returns the
// account ID it was issued for. Expiry maps to ErrTokenExpired; every other
// verification failure maps to ErrTokenInvalid.
func (s *TokenService) VerifySigned(token, tokenType string) (string, error) {
	claims, err := s.signer.Verify(token)
	switch {
	case err == nil:
	case errors.Is(err, jwtx.ErrExpired):
		return "", ErrTokenExpired
	default:
		return "", ErrTokenInvalid
	}

	if err := claims.RequireType(tokenType); err != nil {
		return "", ErrTokenInvalid
	}

	if _, err := idx.Parse(claims.Subject); err != nil {
		return "", ErrTokenInvalid
	}
	return claims.Subject, nil
}

// NewSingleUse mints an opaque single-use token and returns both the raw
// value (handed to the delivery channel) and the fingerprint to persist.
func (s *TokenService) NewSingleUse() (raw, fingerprint string, err error) {
	raw, err = cryptox.NewOpaqueToken(cryptox.TokenSize256)
	if err != nil {
		return "", "", infraErr(err)
	}
	return raw, cryptox.Fingerprint(raw), nil
}

// LookupSingleUse resolves a raw single-use token to the account holding it.
// The token must exist for the given purpose and be unexpired; unknown
// fingerprints map to ErrTokenInvalid regardless of why so the response
// leaks nothing about which accounts exist.
func (s *TokenService) LookupSingleUse(ctx context.Context, purpose domain.TokenPurpose, raw string) (domain.Account, error) {
	if raw == "" {
		return domain.Account{}, ErrTokenInvalid
	}

	acct, err := s.store.Accounts().GetBySingleUseToken(ctx, purpose, cryptox.Fingerprint(raw))
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		return domain.Account{}, ErrTokenInvalid
	default:
		return domain.Account{}, infraErr(err)
	}

	var expires *time.Time
	switch purpose {
	case domain.PurposeEmailVerification:
		expires = acct.VerificationExpires
	case domain.PurposePasswordReset:
		expires = acct.ResetExpires
	default:
		return domain.Account{}, ErrTokenInvalid
	}
	if expires == nil || time.Now().After(*expires) {
		return domain.Account{}, ErrTokenExpired
	}
	return acct, nil
}
