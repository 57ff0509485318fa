package platformsdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// ListAccounts returns accounts matching the filter. Requires the admin
// role.
func (s *Session) ListAccounts(ctx context.Context, opts AccountListOptions) ([]Account, error) {
	q := url.Values{}
	if opts.Status != "" {
		q.Set("status", opts.Status)
	}
	if opts.Role != "" {
		q.Set("role", opts.Role)
	}
	if opts.Verified != nil {
		q.Set("verified", strconv.FormatBool(*opts.Verified))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		q.Set("offset", strconv.Itoa(opts.Offset))
	}

	path := "/v1/admin/accounts"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var res struct {
		Accounts []Account `json:"accounts"`
	}
	if err := s.doJSON(ctx, http.MethodGet, path, nil, &res, http.StatusOK); err != nil {
		return nil, err
	}
	return res.Accounts, nil
}

// AccountStats returns aggregate account counts. Requires the admin role.
func (s *Session) AccountStats(ctx context.Context) (*AccountStats, error) {
	var stats AccountStats
	if err := s.doJSON(ctx, http.MethodGet, "/v1/admin/stats", nil, &stats, http.StatusOK); err != nil {
		return nil, err
	}
	return &stats, nil
}

// SuspendAccount moves an account to SUSPENDED. Requires the admin role.
func (s *Session) SuspendAccount(ctx context.Context, accountID, reason string) error {
	body := struct {
		Reason string `json:"reason"`
	}{Reason: reason}

	return s.doJSON(ctx, http.MethodPost, adminAccountPath(accountID, "suspend"), body, nil, http.StatusNoContent)
}

// ActivateAccount moves an account to ACTIVE. Requires the admin role.
func (s *Session) ActivateAccount(ctx context.Context, accountID string) error {
	return s.doJSON(ctx, http.MethodPost, adminAccountPath(accountID, "activate"), nil, nil, http.StatusNoContent)
}

// DeactivateAccount moves an account to INACTIVE. Requires the admin role.
func (s *Session) DeactivateAccount(ctx context.Context, accountID string) error {
	return s.doJSON(ctx, http.MethodPost, adminAccountPath(accountID, "deactivate"), nil, nil, http.StatusNoContent)
}

// PromoteAccount grants the admin role. Requires the admin role.
func (s *Session) PromoteAccount(ctx context.Context, accountID string) error {
	return s.doJSON(ctx, http.MethodPost, adminAccountPath(accountID, "promote"), nil, nil, http.StatusNoContent)
}

// DemoteAccount reverts an account to the user role. Requires the admin
// role.
func (s *Session) DemoteAccount(ctx context.Context, accountID string) error {
	return s.doJSON(ctx, http.MethodPost, adminAccountPath(accountID, "demote"), nil, nil, http.StatusNoContent)
}

// DeleteAccount soft-deletes an account. The row stays behind for audit but
// the account is terminal. Requires the admin role.
func (s *Session) DeleteAccount(ctx context.Context, accountID string) error {
	return s.doJSON(ctx, http.MethodDelete, "/v1/admin/accounts/"+url.PathEscape(accountID), nil, nil, http.StatusNoContent)
}

// PurgeAccount permanently removes an account row. Irreversible. Requires
// the admin role.
func (s *Session) PurgeAccount(ctx context.Context, accountID string) error {
	return s.doJSON(ctx, http.MethodDelete, adminAccountPath(accountID, "purge"), nil, nil, http.StatusNoContent)
}

func adminAccountPath(accountID, action string) string {
	return fmt.Sprintf("/v1/admin/accounts/%s/%s", url.PathEscape(accountID), action)
}
