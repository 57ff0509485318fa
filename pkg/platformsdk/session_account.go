package platformsdk

import (
	"context"
	"net/http"
)

// Me fetches the authenticated account and updates the session snapshot.
func (s *Session) Me(ctx context.Context) (*Account, error) {
	var acct Account
	if err := s.doJSON(ctx, http.MethodGet, "/v1/accounts/me", nil, &acct, http.StatusOK); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.account = acct
	s.mu.Unlock()
	return &acct, nil
}

// UpdateProfile applies a partial profile update and returns the resulting
// account.
func (s *Session) UpdateProfile(ctx context.Context, update ProfileUpdate) (*Account, error) {
	var acct Account
	if err := s.doJSON(ctx, http.MethodPatch, "/v1/accounts/me", update, &acct, http.StatusOK); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.account = acct
	s.mu.Unlock()
	return &acct, nil
}
