package platformsdk

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// refreshSkew is subtracted from the access token lifetime so the session
// refreshes shortly before the server would reject the token.
const refreshSkew = 30 * time.Second

// Session is an authenticated API session with automatic token refresh.
// Sessions are safe for concurrent use.
type Session struct {
	client *Client

	mu           sync.RWMutex
	account      Account
	accessToken  string
	refreshToken string
	expiresAt    time.Time
}

func newSession(c *Client, account Account, tokens TokenResponse) *Session {
	return &Session{
		client:       c,
		account:      account,
		accessToken:  tokens.AccessToken,
		refreshToken: tokens.RefreshToken,
		expiresAt:    time.Now().Add(time.Duration(tokens.ExpiresIn)*time.Second - refreshSkew),
	}
}

// Account returns the account snapshot captured at login. It is not updated
// by profile changes made outside this session; call Me for a fresh copy.
func (s *Session) Account() Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.account
}

// AccessToken returns the current access token without checking expiry.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the current refresh token, suitable for persisting
// and later resuming with AuthenticateWithRefreshToken.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// getValidToken returns a non-expired access token, refreshing if needed.
func (s *Session) getValidToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if time.Now().Before(s.expiresAt) {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another goroutine may have refreshed while we waited for the lock.
	if time.Now().Before(s.expiresAt) {
		return s.accessToken, nil
	}
	if s.refreshToken == "" {
		return "", fmt.Errorf("platformsdk: access token expired and no refresh token available")
	}

	tokens, err := s.client.Refresh(ctx, s.refreshToken)
	if err != nil {
		return "", fmt.Errorf("platformsdk: refresh session: %w", err)
	}

	s.accessToken = tokens.AccessToken
	s.refreshToken = tokens.RefreshToken
	s.expiresAt = time.Now().Add(time.Duration(tokens.ExpiresIn)*time.Second - refreshSkew)
	return s.accessToken, nil
}

// doJSON performs an authenticated request and decodes the response into
// target (nil target discards the body).
func (s *Session) doJSON(ctx context.Context, method, path string, body, target any, expectedStatus int) error {
	token, err := s.getValidToken(ctx)
	if err != nil {
		return err
	}
	return s.client.roundTrip(ctx, method, path, token, body, target, expectedStatus)
}

// ChangePassword replaces the session account's password after verifying the
// current one.
func (s *Session) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	body := struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}{CurrentPassword: currentPassword, NewPassword: newPassword}

	return s.doJSON(ctx, http.MethodPost, "/v1/auth/password", body, nil, http.StatusNoContent)
}
