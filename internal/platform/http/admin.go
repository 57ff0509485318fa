package http

import (
	"net/http"
	"strconv"

	"github.com/metagate-hq/platform/internal/platform/domain"
	"github.com/metagate-hq/platform/internal/platform/service"
	"github.com/metagate-hq/platform/internal/platform/store"
	"github.com/metagate-hq/platform/pkg/httpx"
)

// AdminHandler serves the administrative account endpoints. Routes are
// guarded by RequireRole(admin) in the router.
type AdminHandler struct {
	Admin *service.AdminService
}

type suspendRequest struct {
	Reason string `json:"reason"`
}

func (h *AdminHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	var req suspendRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.apply(w, r, func(id string) error {
		return h.Admin.Suspend(r.Context(), id, req.Reason)
	})
}

func (h *AdminHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(id string) error { return h.Admin.Activate(r.Context(), id) })
}

func (h *AdminHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(id string) error { return h.Admin.Deactivate(r.Context(), id) })
}

func (h *AdminHandler) Promote(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(id string) error { return h.Admin.Promote(r.Context(), id) })
}

func (h *AdminHandler) Demote(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(id string) error { return h.Admin.Demote(r.Context(), id) })
}

func (h *AdminHandler) SoftDelete(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(id string) error { return h.Admin.SoftDelete(r.Context(), id) })
}

func (h *AdminHandler) HardDelete(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(id string) error { return h.Admin.HardDelete(r.Context(), id) })
}

func (h *AdminHandler) apply(w http.ResponseWriter, r *http.Request, fn func(id string) error) {
	if err := fn(r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type listAccountsResponse struct {
	Accounts []accountResponse `json:"accounts"`
}

func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	f, ok := parseAccountFilter(w, r)
	if !ok {
		return
	}

	accts, err := h.Admin.List(r.Context(), f)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := listAccountsResponse{Accounts: make([]accountResponse, len(accts))}
	for i, a := range accts {
		out.Accounts[i] = toAccountResponse(a)
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

type statsResponse struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Active    int64 `json:"active"`
	Inactive  int64 `json:"inactive"`
	Suspended int64 `json:"suspended"`
	Deleted   int64 `json:"deleted"`
	Admins    int64 `json:"admins"`
	Verified  int64 `json:"verified"`
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Admin.Stats(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, statsResponse{
		Total:     stats.Total,
		Pending:   stats.Pending,
		Active:    stats.Active,
		Inactive:  stats.Inactive,
		Suspended: stats.Suspended,
		Deleted:   stats.Deleted,
		Admins:    stats.Admins,
		Verified:  stats.Verified,
	})
}

func parseAccountFilter(w http.ResponseWriter, r *http.Request) (store.AccountFilter, bool) {
	var f store.AccountFilter
	q := r.URL.Query()

	if s := q.Get("status"); s != "" {
		status, ok := domain.ParseStatus(s)
		if !ok {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "unknown status")
			return f, false
		}
		f.Status = &status
	}
	if s := q.Get("role"); s != "" {
		role, ok := domain.ParseRole(s)
		if !ok {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "unknown role")
			return f, false
		}
		f.Role = &role
	}
	if s := q.Get("verified"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "verified must be a boolean")
			return f, false
		}
		f.Verified = &v
	}
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "limit must be a non-negative integer")
			return f, false
		}
		f.Limit = n
	}
	if s := q.Get("offset"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "offset must be a non-negative integer")
			return f, false
		}
		f.Offset = n
	}
	return f, true
}
