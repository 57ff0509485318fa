package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpapi "github.com/metagate-hq/platform/internal/platform/http"
	"github.com/metagate-hq/platform/internal/platform/service"
	"github.com/metagate-hq/platform/internal/platform/store"
	"github.com/metagate-hq/platform/internal/platform/store/drivers/sqlite"
	"github.com/metagate-hq/platform/pkg/cryptox"
	"github.com/metagate-hq/platform/pkg/jwtx"
)

var testParams = cryptox.Argon2Params{
	Memory:      8 * 1024,
	Iterations:  1,
	Parallelism: 1,
	KeyLength:   32,
}

type testServer struct {
	srv   *httptest.Server
	store store.Store
	admin *service.AdminService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	log := slog.New(slog.DiscardHandler)
	signer, err := jwtx.NewSigner([]byte("0123456789abcdef0123456789abcdef"), "HS256", "platform-test")
	require.NoError(t, err)

	creds := service.NewCredentialService(testParams, "", 2)
	tokens := service.NewTokenService(signer, st, time.Minute, time.Hour)
	admin := service.NewAdminService(st, log, 0)

	router := httpapi.NewRouter(signer, "test", st, log)
	router.AuthService = service.NewAuthService(st, creds, tokens, log, 0)
	router.AccountService = service.NewAccountService(st, 0)
	router.AdminService = admin
	router.TenancyService = service.NewTenancyService(st, 0)
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{srv: srv, store: st, admin: admin}
}

func (ts *testServer) do(t *testing.T, method, path, bearer string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, &buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := ts.srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

type accountPayload struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Username      string `json:"username"`
	Nickname      string `json:"nickname"`
	Role          string `json:"role"`
	Status        string `json:"status"`
	EmailVerified bool   `json:"email_verified"`
}

type tokensPayload struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

type registerPayload struct {
	Account           accountPayload `json:"account"`
	VerificationToken string         `json:"verification_token"`
}

type authPayload struct {
	Account accountPayload `json:"account"`
	Tokens  tokensPayload  `json:"tokens"`
}

// signup registers, verifies and logs a user in through the API, returning
// an access token.
func (ts *testServer) signup(t *testing.T, email, username, password string) (accountPayload, string) {
	t.Helper()

	resp := ts.do(t, http.MethodPost, "/v1/auth/register", "", map[string]string{
		"email": email, "username": username, "password": password,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var reg registerPayload
	decodeBody(t, resp, &reg)

	resp = ts.do(t, http.MethodPost, "/v1/auth/verify-email", "", map[string]string{
		"token": reg.VerificationToken,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var auth authPayload
	decodeBody(t, resp, &auth)
	return auth.Account, auth.Tokens.AccessToken
}

func TestRegisterVerifyLoginFlow(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/v1/auth/register", "", map[string]string{
		"email": "a@x.com", "username": "alice", "password": "Secret123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var reg registerPayload
	decodeBody(t, resp, &reg)
	assert.Equal(t, "pending", reg.Account.Status)
	assert.NotEmpty(t, reg.VerificationToken)

	// Login before verification is rejected.
	resp = ts.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email": "a@x.com", "password": "Secret123",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/v1/auth/verify-email", "", map[string]string{
		"token": reg.VerificationToken,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var verified accountPayload
	decodeBody(t, resp, &verified)
	assert.Equal(t, "active", verified.Status)
	assert.True(t, verified.EmailVerified)

	resp = ts.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email": "a@x.com", "password": "Secret123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var auth authPayload
	decodeBody(t, resp, &auth)
	assert.Equal(t, "Bearer", auth.Tokens.TokenType)
	assert.NotEmpty(t, auth.Tokens.AccessToken)
}

func TestLoginErrorStatuses(t *testing.T) {
	ts := newTestServer(t)
	ts.signup(t, "a@x.com", "alice", "Secret123")

	resp := ts.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email": "a@x.com", "password": "WrongPW12",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email": "nobody@x.com", "password": "Secret123",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRegisterConflictStatus(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/v1/auth/register", "", map[string]string{
		"email": "a@x.com", "username": "alice", "password": "Secret123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/v1/auth/register", "", map[string]string{
		"email": "a@x.com", "username": "other", "password": "Secret123",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestMeAndProfileUpdate(t *testing.T) {
	ts := newTestServer(t)
	acct, access := ts.signup(t, "a@x.com", "alice", "Secret123")

	resp := ts.do(t, http.MethodGet, "/v1/accounts/me", access, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me accountPayload
	decodeBody(t, resp, &me)
	assert.Equal(t, acct.ID, me.ID)

	resp = ts.do(t, http.MethodPatch, "/v1/accounts/me", access, map[string]string{
		"nickname": "Ally",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &me)
	assert.Equal(t, "Ally", me.Nickname)

	// Without a token the endpoint is unauthorized.
	resp = ts.do(t, http.MethodGet, "/v1/accounts/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRefreshEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/v1/auth/register", "", map[string]string{
		"email": "a@x.com", "username": "alice", "password": "Secret123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var reg registerPayload
	decodeBody(t, resp, &reg)

	resp = ts.do(t, http.MethodPost, "/v1/auth/verify-email", "", map[string]string{"token": reg.VerificationToken})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email": "a@x.com", "password": "Secret123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var auth authPayload
	decodeBody(t, resp, &auth)

	resp = ts.do(t, http.MethodPost, "/v1/auth/refresh", "", map[string]string{
		"refresh_token": auth.Tokens.RefreshToken,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var pair tokensPayload
	decodeBody(t, resp, &pair)
	assert.NotEmpty(t, pair.AccessToken)

	resp = ts.do(t, http.MethodPost, "/v1/auth/refresh", "", map[string]string{
		"refresh_token": auth.Tokens.AccessToken,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPasswordResetEndpoints(t *testing.T) {
	ts := newTestServer(t)
	ts.signup(t, "a@x.com", "alice", "Secret123")

	resp := ts.do(t, http.MethodPost, "/v1/auth/password-reset", "", map[string]string{
		"email": "a@x.com",
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	var tok struct {
		Token string `json:"token"`
	}
	decodeBody(t, resp, &tok)
	require.NotEmpty(t, tok.Token)

	resp = ts.do(t, http.MethodPost, "/v1/auth/password-reset/confirm", "", map[string]string{
		"token": tok.Token, "new_password": "NewSecret1",
	})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email": "a@x.com", "password": "NewSecret1",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Unknown addresses get the same 202, with no token.
	resp = ts.do(t, http.MethodPost, "/v1/auth/password-reset", "", map[string]string{
		"email": "nobody@x.com",
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	tok.Token = "filled"
	decodeBody(t, resp, &tok)
	assert.Equal(t, "filled", tok.Token) // field omitted entirely
}

func TestAdminEndpointsRequireAdminRole(t *testing.T) {
	ts := newTestServer(t)
	acct, access := ts.signup(t, "a@x.com", "alice", "Secret123")

	resp := ts.do(t, http.MethodGet, "/v1/admin/accounts", access, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Promote out of band, then the same token passes the role check.
	require.NoError(t, ts.admin.Promote(t.Context(), acct.ID))

	resp = ts.do(t, http.MethodGet, "/v1/admin/accounts", access, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/v1/admin/stats", access, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdminLifecycleEndpoints(t *testing.T) {
	ts := newTestServer(t)
	admin, access := ts.signup(t, "root@x.com", "root", "Secret123")
	require.NoError(t, ts.admin.Promote(t.Context(), admin.ID))

	target, _ := ts.signup(t, "b@x.com", "bob", "Secret123")

	resp := ts.do(t, http.MethodPost,
		fmt.Sprintf("/v1/admin/accounts/%s/suspend", target.ID), access,
		map[string]string{"reason": "abuse"})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = ts.do(t, http.MethodPost,
		fmt.Sprintf("/v1/admin/accounts/%s/activate", target.ID), access, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = ts.do(t, http.MethodDelete,
		"/v1/admin/accounts/"+target.ID, access, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Soft-deleted: a second soft delete is an illegal transition.
	resp = ts.do(t, http.MethodDelete,
		"/v1/admin/accounts/"+target.ID, access, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestTenancyEndpoints(t *testing.T) {
	ts := newTestServer(t)
	_, access := ts.signup(t, "a@x.com", "alice", "Secret123")

	resp := ts.do(t, http.MethodPost, "/v1/organizations", access, map[string]string{
		"name": "Acme", "description": "widgets",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var org struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	decodeBody(t, resp, &org)
	assert.Equal(t, "Acme", org.Name)

	resp = ts.do(t, http.MethodGet, "/v1/organizations/"+org.ID, access, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/v1/workspaces", access, map[string]string{
		"name": "Platform", "status": "active", "org_id": org.ID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var ws struct {
		ID string `json:"id"`
	}
	decodeBody(t, resp, &ws)

	resp = ts.do(t, http.MethodPost, "/v1/projects", access, map[string]string{
		"name": "Rollout", "status": "active", "workspace_id": ws.ID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/v1/projects", access, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var projects struct {
		Projects []struct {
			Name string `json:"name"`
		} `json:"projects"`
	}
	decodeBody(t, resp, &projects)
	require.Len(t, projects.Projects, 1)
	assert.Equal(t, "Rollout", projects.Projects[0].Name)

	// Unauthenticated access is rejected.
	resp = ts.do(t, http.MethodGet, "/v1/organizations", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/livez", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMalformedJSONRejected(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, ts.srv.URL+"/v1/auth/register",
		bytes.NewBufferString("{not json"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := ts.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
