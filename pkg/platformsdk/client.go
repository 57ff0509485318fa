package platformsdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Client talks to the platform API. It serves the unauthenticated endpoints
// directly and creates authenticated Sessions from the login flows.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a platform API client.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Register creates a password account. The account starts in PENDING; the
// returned verification token activates it through VerifyEmail.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	var res RegisterResult
	if err := c.doJSON(ctx, http.MethodPost, "/v1/auth/register", req, &res, http.StatusCreated); err != nil {
		return nil, err
	}
	return &res, nil
}

// AuthenticateWithPassword logs in with email and password and returns an
// authenticated session.
func (c *Client) AuthenticateWithPassword(ctx context.Context, email, password string) (*Session, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}

	var res authResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/auth/login", body, &res, http.StatusOK); err != nil {
		return nil, err
	}
	return newSession(c, res.Account, res.Tokens), nil
}

// AuthenticateExternal logs in with an externally verified identity,
// creating a local account on first sighting. The second return reports
// whether this call created the account.
func (c *Client) AuthenticateExternal(ctx context.Context, req ExternalLoginRequest) (*Session, bool, error) {
	var res struct {
		authResponse
		IsNewAccount bool `json:"is_new_account"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/auth/external", req, &res, http.StatusOK); err != nil {
		return nil, false, err
	}
	return newSession(c, res.Account, res.Tokens), res.IsNewAccount, nil
}

// AuthenticateWithRefreshToken creates a session from a stored refresh
// token. The session's account information is not populated until the first
// Me call.
func (c *Client) AuthenticateWithRefreshToken(ctx context.Context, refreshToken string) (*Session, error) {
	tokens, err := c.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	return newSession(c, Account{}, *tokens), nil
}

// Refresh exchanges a refresh token for a fresh token pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	body := struct {
		RefreshToken string `json:"refresh_token"`
	}{RefreshToken: refreshToken}

	var res TokenResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/auth/refresh", body, &res, http.StatusOK); err != nil {
		return nil, err
	}
	return &res, nil
}

// VerifyEmail consumes a single-use verification token and returns the
// activated account.
func (c *Client) VerifyEmail(ctx context.Context, token string) (*Account, error) {
	body := struct {
		Token string `json:"token"`
	}{Token: token}

	var acct Account
	if err := c.doJSON(ctx, http.MethodPost, "/v1/auth/verify-email", body, &acct, http.StatusOK); err != nil {
		return nil, err
	}
	return &acct, nil
}

// ResendVerification re-issues the verification token for an unverified
// account. The returned token is empty when the email is unknown or already
// verified; the server acknowledges either way.
func (c *Client) ResendVerification(ctx context.Context, email string) (string, error) {
	var res singleUseTokenResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/auth/verify-email/resend", emailBody(email), &res, http.StatusAccepted); err != nil {
		return "", err
	}
	return res.Token, nil
}

// RequestPasswordReset arms a single-use reset token. The returned token is
// empty when the email does not map to a password account.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	var res singleUseTokenResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/auth/password-reset", emailBody(email), &res, http.StatusAccepted); err != nil {
		return "", err
	}
	return res.Token, nil
}

// ConfirmPasswordReset consumes a reset token and installs the new password.
func (c *Client) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	body := struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}{Token: token, NewPassword: newPassword}

	return c.doJSON(ctx, http.MethodPost, "/v1/auth/password-reset/confirm", body, nil, http.StatusNoContent)
}

// Liveness reports whether the service process is up.
func (c *Client) Liveness(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.doJSON(ctx, http.MethodGet, "/livez", nil, &h, http.StatusOK); err != nil {
		return nil, err
	}
	return &h, nil
}

// Readiness reports whether the service can reach its dependencies.
func (c *Client) Readiness(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.doJSON(ctx, http.MethodGet, "/readyz", nil, &h, http.StatusOK); err != nil {
		return nil, err
	}
	return &h, nil
}

func emailBody(email string) any {
	return struct {
		Email string `json:"email"`
	}{Email: email}
}
