// Package jwtx signs and verifies the stateless bearer tokens issued by the
// identity core. Tokens are HMAC-signed JWTs; verification needs only the
// shared secret, never a store lookup.
package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token type claim values. The type is embedded so a refresh token can never
// be presented where an access token is expected.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// MinSecretLength is the minimum signing secret length in bytes. 32 bytes
// (256 bits) is the floor for HMAC-SHA256 keys.
const MinSecretLength = 32

var (
	ErrExpired          = errors.New("jwtx: token expired")
	ErrMalformed        = errors.New("jwtx: malformed token")
	ErrSignatureInvalid = errors.New("jwtx: invalid signature")
	ErrWrongTokenType   = errors.New("jwtx: wrong token type")
	ErrIssuer           = errors.New("jwtx: unexpected issuer")
	ErrAlgorithm        = errors.New("jwtx: unsupported signing algorithm")
	ErrSecretTooShort   = errors.New("jwtx: signing secret too short")
)

// Claims are the claim set carried by every signed token.
type Claims struct {
	jwt.RegisteredClaims

	// TokenType distinguishes access from refresh tokens.
	TokenType string `json:"typ"`
}

// Signer issues and verifies HMAC-signed tokens with a single shared secret.
type Signer struct {
	secret []byte
	method jwt.SigningMethod
	issuer string
}

// NewSigner builds a Signer for the given algorithm identifier (HS256, HS384
// or HS512). The secret must be at least MinSecretLength bytes.
func NewSigner(secret []byte, algorithm, issuer string) (*Signer, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrSecretTooShort
	}

	var method jwt.SigningMethod
	switch algorithm {
	case "HS256", "":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("%w: %s", ErrAlgorithm, algorithm)
	}

	return &Signer{secret: secret, method: method, issuer: issuer}, nil
}

// Sign issues a token for subject with the given type and lifetime.
func (s *Signer) Sign(subject, tokenType string, ttl time.Duration, now time.Time) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        newJTI(),
		},
		TokenType: tokenType,
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning its claims. The signature,
// expiry window and issuer are checked; callers still need to check
// TokenType against what they expect.
func (s *Signer) Verify(token string) (Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{s.method.Alg()}))

	var claims Claims
	_, err := parser.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid),
			errors.Is(err, jwt.ErrTokenUnverifiable):
			return Claims{}, ErrSignatureInvalid
		default:
			return Claims{}, ErrMalformed
		}
	}

	if s.issuer != "" && claims.Issuer != s.issuer {
		return Claims{}, ErrIssuer
	}

	return claims, nil
}

// RequireType checks the typ claim against want.
func (c Claims) RequireType(want string) error {
	if c.TokenType != want {
		return ErrWrongTokenType
	}
	return nil
}

// newJTI returns a URL-safe random identifier for the "jti" claim.
func newJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
