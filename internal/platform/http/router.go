package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/metagate-hq/platform/internal/platform/service"
	"github.com/metagate-hq/platform/internal/platform/store"
	"github.com/metagate-hq/platform/pkg/httpx"
	"github.com/metagate-hq/platform/pkg/jwtx"
	"github.com/metagate-hq/platform/pkg/slogx"
)

// Router holds the shared dependencies for all HTTP handlers and wires the
// route table.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	signer       *jwtx.Signer
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	AuthService    *service.AuthService
	AccountService *service.AccountService
	AdminService   *service.AdminService
	TenancyService *service.TenancyService
}

func NewRouter(signer *jwtx.Signer, buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		signer:       signer,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
	}
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}
	return r
}

// ServeHTTP applies the global middleware chain around the route table.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerAccounts()
	r.registerAdmin()
	r.registerTenancy()
	r.registerSystem()
}

// resolveRole backs RequireRole with a store lookup on the authenticated
// account.
func (r *Router) resolveRole(ctx context.Context, accountID string) (string, error) {
	acct, err := r.store.Accounts().GetByID(ctx, accountID)
	if err != nil {
		return "", err
	}
	return string(acct.Role), nil
}

func (r *Router) registerAuth() {
	h := &AuthHandler{Auth: r.AuthService}

	// Credential and token-consuming endpoints get the strict per-IP limit
	// to slow down brute force and token guessing.
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(http.HandlerFunc(h.Register),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.Login),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/external",
		httpx.Chain(http.HandlerFunc(h.ExternalLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(http.HandlerFunc(h.Refresh),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/verify-email",
		httpx.Chain(http.HandlerFunc(h.VerifyEmail),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/verify-email/resend",
		httpx.Chain(http.HandlerFunc(h.ResendVerification),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/password-reset",
		httpx.Chain(http.HandlerFunc(h.RequestPasswordReset),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/password-reset/confirm",
		httpx.Chain(http.HandlerFunc(h.ConfirmPasswordReset),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /v1/auth/password",
		httpx.Chain(http.HandlerFunc(h.ChangePassword),
			httpx.AuthnMiddleware(r.signer),
			httpx.RateLimitByPrincipal(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerAccounts() {
	h := &AccountHandler{Accounts: r.AccountService}

	r.Mux.Handle("GET /v1/accounts/me",
		httpx.Chain(http.HandlerFunc(h.Me),
			httpx.AuthnMiddleware(r.signer),
			httpx.RateLimitByPrincipal(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("PATCH /v1/accounts/me",
		httpx.Chain(http.HandlerFunc(h.UpdateProfile),
			httpx.AuthnMiddleware(r.signer),
			httpx.RateLimitByPrincipal(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerAdmin() {
	h := &AdminHandler{Admin: r.AdminService}

	guard := func(next http.HandlerFunc, cfg httpx.RateLimitConfig) http.Handler {
		return httpx.Chain(next,
			httpx.AuthnMiddleware(r.signer),
			httpx.RequireRole(r.resolveRole, "admin"),
			httpx.RateLimitByPrincipal(cfg),
		)
	}

	r.Mux.Handle("GET /v1/admin/accounts", guard(h.List, httpx.LenientLimit))
	r.Mux.Handle("GET /v1/admin/stats", guard(h.Stats, httpx.LenientLimit))

	r.Mux.Handle("POST /v1/admin/accounts/{id}/suspend", guard(h.Suspend, httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/admin/accounts/{id}/activate", guard(h.Activate, httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/admin/accounts/{id}/deactivate", guard(h.Deactivate, httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/admin/accounts/{id}/promote", guard(h.Promote, httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/admin/accounts/{id}/demote", guard(h.Demote, httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/admin/accounts/{id}", guard(h.SoftDelete, httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/admin/accounts/{id}/purge", guard(h.HardDelete, httpx.ModerateLimit))
}

func (r *Router) registerTenancy() {
	h := &TenancyHandler{Tenancy: r.TenancyService}

	secured := func(next http.HandlerFunc, cfg httpx.RateLimitConfig) http.Handler {
		return httpx.Chain(next,
			httpx.AuthnMiddleware(r.signer),
			httpx.RateLimitByPrincipal(cfg),
		)
	}

	r.Mux.Handle("POST /v1/organizations", secured(h.CreateOrganization, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/organizations", secured(h.ListOrganizations, httpx.LenientLimit))
	r.Mux.Handle("GET /v1/organizations/{id}", secured(h.GetOrganization, httpx.LenientLimit))
	r.Mux.Handle("PUT /v1/organizations/{id}", secured(h.UpdateOrganization, httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/organizations/{id}", secured(h.DeleteOrganization, httpx.ModerateLimit))

	r.Mux.Handle("POST /v1/workspaces", secured(h.CreateWorkspace, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/workspaces", secured(h.ListWorkspaces, httpx.LenientLimit))
	r.Mux.Handle("GET /v1/workspaces/{id}", secured(h.GetWorkspace, httpx.LenientLimit))
	r.Mux.Handle("PUT /v1/workspaces/{id}", secured(h.UpdateWorkspace, httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/workspaces/{id}", secured(h.DeleteWorkspace, httpx.ModerateLimit))

	r.Mux.Handle("POST /v1/projects", secured(h.CreateProject, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/projects", secured(h.ListProjects, httpx.LenientLimit))
	r.Mux.Handle("GET /v1/projects/{id}", secured(h.GetProject, httpx.LenientLimit))
	r.Mux.Handle("PUT /v1/projects/{id}", secured(h.UpdateProject, httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/projects/{id}", secured(h.DeleteProject, httpx.ModerateLimit))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
