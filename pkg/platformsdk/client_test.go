package platformsdk_test

import (
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
	"github.com/metagate-hq/platform/internal/platform/store/drivers/sqlite"
	"github.com/metagate-hq/platform/pkg/cryptox"
	"github.com/metagate-hq/platform/pkg/jwtx"
	"github.com/metagate-hq/platform/pkg/platformsdk"
)

var testParams = cryptox.Argon2Params{
	Memory:      8 * 1024,
	Iterations:  1,
	Parallelism: 1,
	KeyLength:   32,
}

type testEnv struct {
	client *platformsdk.Client
	admin  *service.AdminService
}

func newTestEnv(t *testing.T) *testEnv {
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

	return &testEnv{client: platformsdk.NewClient(srv.URL), admin: admin}
}

// signup registers and verifies an account, returning its id.
func (env *testEnv) signup(t *testing.T, email, username, password string) string {
	t.Helper()
	ctx := t.Context()

	reg, err := env.client.Register(ctx, platformsdk.RegisterRequest{
		Email:    email,
		Username: username,
		Password: password,
	})
	require.NoError(t, err)
	require.NotEmpty(t, reg.VerificationToken)

	_, err = env.client.VerifyEmail(ctx, reg.VerificationToken)
	require.NoError(t, err)
	return reg.Account.ID
}

func TestClientRegisterVerifyLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	reg, err := env.client.Register(ctx, platformsdk.RegisterRequest{
		Email:    "Sdk@Example.com",
		Username: "sdkuser",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, "sdk@example.com", reg.Account.Email)
	assert.Equal(t, "pending", reg.Account.Status)
	require.NotEmpty(t, reg.VerificationToken)

	// Login before verification is rejected as inactive.
	_, err = env.client.AuthenticateWithPassword(ctx, "sdk@example.com", "password123")
	var apiErr *platformsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, platformsdk.ErrorCodeAccountInactive, apiErr.Code)

	acct, err := env.client.VerifyEmail(ctx, reg.VerificationToken)
	require.NoError(t, err)
	assert.Equal(t, "active", acct.Status)
	assert.True(t, acct.EmailVerified)

	session, err := env.client.AuthenticateWithPassword(ctx, "sdk@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, reg.Account.ID, session.Account().ID)
	assert.NotEmpty(t, session.AccessToken())
	assert.NotEmpty(t, session.RefreshToken())

	me, err := session.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sdkuser", me.Username)
}

func TestClientLoginErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	env.signup(t, "known@example.com", "known", "password123")

	_, err := env.client.AuthenticateWithPassword(ctx, "known@example.com", "wrong-password")
	assert.True(t, platformsdk.IsUnauthorized(err))

	_, err = env.client.AuthenticateWithPassword(ctx, "unknown@example.com", "password123")
	assert.True(t, platformsdk.IsUnauthorized(err))
}

func TestClientExternalLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	req := platformsdk.ExternalLoginRequest{
		Provider:   "github",
		ProviderID: "gh-1001",
		Email:      "ext@example.com",
		Username:   "extuser",
	}

	session, isNew, err := env.client.AuthenticateExternal(ctx, req)
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, "extuser", session.Account().Username)
	assert.Equal(t, "active", session.Account().Status)

	again, isNew, err := env.client.AuthenticateExternal(ctx, req)
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, session.Account().ID, again.Account().ID)
}

func TestClientRefreshSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	env.signup(t, "refresh@example.com", "refresher", "password123")
	session, err := env.client.AuthenticateWithPassword(ctx, "refresh@example.com", "password123")
	require.NoError(t, err)

	resumed, err := env.client.AuthenticateWithRefreshToken(ctx, session.RefreshToken())
	require.NoError(t, err)

	me, err := resumed.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "refresher", me.Username)
}

func TestSessionProfileAndPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	env.signup(t, "profile@example.com", "profiled", "password123")
	session, err := env.client.AuthenticateWithPassword(ctx, "profile@example.com", "password123")
	require.NoError(t, err)

	acct, err := session.UpdateProfile(ctx, platformsdk.ProfileUpdate{
		Nickname: platformsdk.String("Prof"),
		Bio:      platformsdk.String("hello"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Prof", acct.Nickname)
	assert.Equal(t, "Prof", session.Account().Nickname)

	require.NoError(t, session.ChangePassword(ctx, "password123", "password456"))

	_, err = env.client.AuthenticateWithPassword(ctx, "profile@example.com", "password123")
	assert.True(t, platformsdk.IsUnauthorized(err))
	_, err = env.client.AuthenticateWithPassword(ctx, "profile@example.com", "password456")
	require.NoError(t, err)
}

func TestClientPasswordResetFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	env.signup(t, "reset@example.com", "resetter", "password123")

	token, err := env.client.RequestPasswordReset(ctx, "reset@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.NoError(t, env.client.ConfirmPasswordReset(ctx, token, "password789"))

	_, err = env.client.AuthenticateWithPassword(ctx, "reset@example.com", "password789")
	require.NoError(t, err)

	// Unknown emails get the same acknowledgment with no token.
	token, err = env.client.RequestPasswordReset(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestSessionAdminOperations(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	adminID := env.signup(t, "root@example.com", "root", "password123")
	targetID := env.signup(t, "target@example.com", "target", "password123")
	require.NoError(t, env.admin.Promote(ctx, adminID))

	session, err := env.client.AuthenticateWithPassword(ctx, "root@example.com", "password123")
	require.NoError(t, err)

	accounts, err := session.ListAccounts(ctx, platformsdk.AccountListOptions{})
	require.NoError(t, err)
	assert.Len(t, accounts, 2)

	admins, err := session.ListAccounts(ctx, platformsdk.AccountListOptions{Role: "admin"})
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, adminID, admins[0].ID)

	stats, err := session.AccountStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(1), stats.Admins)

	require.NoError(t, session.SuspendAccount(ctx, targetID, "abuse"))
	_, err = env.client.AuthenticateWithPassword(ctx, "target@example.com", "password123")
	var apiErr *platformsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, platformsdk.ErrorCodeAccountInactive, apiErr.Code)

	require.NoError(t, session.ActivateAccount(ctx, targetID))
	require.NoError(t, session.DeleteAccount(ctx, targetID))

	// A soft-deleted account is terminal.
	err = session.ActivateAccount(ctx, targetID)
	assert.True(t, platformsdk.IsConflict(err))
}

func TestSessionAdminRequiresRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	env.signup(t, "plain@example.com", "plain", "password123")
	session, err := env.client.AuthenticateWithPassword(ctx, "plain@example.com", "password123")
	require.NoError(t, err)

	_, err = session.AccountStats(ctx)
	var apiErr *platformsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}

func TestSessionTenancy(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	env.signup(t, "tenant@example.com", "tenant", "password123")
	session, err := env.client.AuthenticateWithPassword(ctx, "tenant@example.com", "password123")
	require.NoError(t, err)

	org, err := session.CreateOrganization(ctx, platformsdk.OrganizationRequest{
		Name:        "Acme",
		Description: "widgets",
	})
	require.NoError(t, err)
	require.NotEmpty(t, org.ID)

	ws, err := session.CreateWorkspace(ctx, platformsdk.WorkspaceRequest{
		Name:      "Q3",
		Status:    "active",
		OrgID:     org.ID,
		StartDate: time.Now().UTC().Format(time.RFC3339),
	})
	require.NoError(t, err)

	proj, err := session.CreateProject(ctx, platformsdk.ProjectRequest{
		Name:        "Launch",
		Status:      "active",
		WorkspaceID: ws.ID,
	})
	require.NoError(t, err)

	orgs, err := session.ListOrganizations(ctx)
	require.NoError(t, err)
	require.Len(t, orgs, 1)

	org, err = session.UpdateOrganization(ctx, org.ID, platformsdk.OrganizationRequest{
		Name:        "Acme Corp",
		Description: "widgets",
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", org.Name)

	require.NoError(t, session.DeleteProject(ctx, proj.ID))
	require.NoError(t, session.DeleteWorkspace(ctx, ws.ID))
	require.NoError(t, session.DeleteOrganization(ctx, org.ID))

	_, err = session.GetOrganization(ctx, org.ID)
	assert.True(t, platformsdk.IsNotFound(err))
}

func TestClientHealth(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	live, err := env.client.Liveness(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ok", live.Status)

	ready, err := env.client.Readiness(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ok", ready.Database)
}

func TestClientConflictOnDuplicateRegister(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	env.signup(t, "dup@example.com", "dup", "password123")

	for i, req := range []platformsdk.RegisterRequest{
		{Email: "dup@example.com", Username: "other", Password: "password123"},
		{Email: "other@example.com", Username: "dup", Password: "password123"},
	} {
		_, err := env.client.Register(ctx, req)
		assert.True(t, platformsdk.IsConflict(err), fmt.Sprintf("case %d", i))
	}
}
