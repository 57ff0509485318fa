package http

import (
	"net/http"
	"time"

	"github.com/metagate-hq/platform/internal/platform/domain"
	"github.com/metagate-hq/platform/internal/platform/service"
	"github.com/metagate-hq/platform/pkg/httpx"
)

// TenancyHandler serves the organization, workspace and project CRUD
// endpoints. All routes require authentication; records are scoped to the
// calling account as owner.
type TenancyHandler struct {
	Tenancy *service.TenancyService
}

type organizationRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type organizationResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	OwnerID     string `json:"owner_id"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func (h *TenancyHandler) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	var req organizationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	org, err := h.Tenancy.CreateOrganization(r.Context(), domain.Organization{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     httpx.AccountID(r.Context()),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toOrganizationResponse(org))
}

func (h *TenancyHandler) GetOrganization(w http.ResponseWriter, r *http.Request) {
	org, err := h.Tenancy.GetOrganization(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toOrganizationResponse(org))
}

func (h *TenancyHandler) ListOrganizations(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.Tenancy.ListOrganizations(r.Context(), httpx.AccountID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]organizationResponse, len(orgs))
	for i, o := range orgs {
		out[i] = toOrganizationResponse(o)
	}
	httpx.WriteJSON(w, http.StatusOK, map[string][]organizationResponse{"organizations": out})
}

func (h *TenancyHandler) UpdateOrganization(w http.ResponseWriter, r *http.Request) {
	var req organizationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	org, err := h.Tenancy.GetOrganization(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	org.Name = req.Name
	org.Description = req.Description

	org, err = h.Tenancy.UpdateOrganization(r.Context(), org)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toOrganizationResponse(org))
}

func (h *TenancyHandler) DeleteOrganization(w http.ResponseWriter, r *http.Request) {
	if err := h.Tenancy.DeleteOrganization(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type workspaceRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	OrgID       string `json:"org_id"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

type workspaceResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	OwnerID     string `json:"owner_id"`
	OrgID       string `json:"org_id,omitempty"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func (h *TenancyHandler) CreateWorkspace(w http.ResponseWriter, r *http.Request) {
	var req workspaceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	start, end, ok := parseDateRange(w, req.StartDate, req.EndDate)
	if !ok {
		return
	}

	ws, err := h.Tenancy.CreateWorkspace(r.Context(), domain.Workspace{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		OwnerID:     httpx.AccountID(r.Context()),
		OrgID:       req.OrgID,
		StartDate:   start,
		EndDate:     end,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toWorkspaceResponse(ws))
}

func (h *TenancyHandler) GetWorkspace(w http.ResponseWriter, r *http.Request) {
	ws, err := h.Tenancy.GetWorkspace(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toWorkspaceResponse(ws))
}

func (h *TenancyHandler) ListWorkspaces(w http.ResponseWriter, r *http.Request) {
	wss, err := h.Tenancy.ListWorkspaces(r.Context(), httpx.AccountID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]workspaceResponse, len(wss))
	for i, ws := range wss {
		out[i] = toWorkspaceResponse(ws)
	}
	httpx.WriteJSON(w, http.StatusOK, map[string][]workspaceResponse{"workspaces": out})
}

func (h *TenancyHandler) UpdateWorkspace(w http.ResponseWriter, r *http.Request) {
	var req workspaceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	start, end, ok := parseDateRange(w, req.StartDate, req.EndDate)
	if !ok {
		return
	}

	ws, err := h.Tenancy.GetWorkspace(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	ws.Name = req.Name
	ws.Description = req.Description
	ws.Status = req.Status
	ws.StartDate = start
	ws.EndDate = end

	ws, err = h.Tenancy.UpdateWorkspace(r.Context(), ws)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toWorkspaceResponse(ws))
}

func (h *TenancyHandler) DeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	if err := h.Tenancy.DeleteWorkspace(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type projectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	WorkspaceID string `json:"workspace_id"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

type projectResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	OwnerID     string `json:"owner_id"`
	WorkspaceID string `json:"workspace_id,omitempty"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func (h *TenancyHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	start, end, ok := parseDateRange(w, req.StartDate, req.EndDate)
	if !ok {
		return
	}

	p, err := h.Tenancy.CreateProject(r.Context(), domain.Project{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		OwnerID:     httpx.AccountID(r.Context()),
		WorkspaceID: req.WorkspaceID,
		StartDate:   start,
		EndDate:     end,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toProjectResponse(p))
}

func (h *TenancyHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.Tenancy.GetProject(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toProjectResponse(p))
}

func (h *TenancyHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Tenancy.ListProjects(r.Context(), httpx.AccountID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]projectResponse, len(ps))
	for i, p := range ps {
		out[i] = toProjectResponse(p)
	}
	httpx.WriteJSON(w, http.StatusOK, map[string][]projectResponse{"projects": out})
}

func (h *TenancyHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	start, end, ok := parseDateRange(w, req.StartDate, req.EndDate)
	if !ok {
		return
	}

	p, err := h.Tenancy.GetProject(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	p.Name = req.Name
	p.Description = req.Description
	p.Status = req.Status
	p.StartDate = start
	p.EndDate = end

	p, err = h.Tenancy.UpdateProject(r.Context(), p)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toProjectResponse(p))
}

func (h *TenancyHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.Tenancy.DeleteProject(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseDateRange accepts RFC 3339 dates; empty values mean "unset".
func parseDateRange(w http.ResponseWriter, startStr, endStr string) (start, end time.Time, ok bool) {
	var err error
	if startStr != "" {
		start, err = time.Parse(time.RFC3339, startStr)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "start_date must be RFC 3339")
			return start, end, false
		}
	}
	if endStr != "" {
		end, err = time.Parse(time.RFC3339, endStr)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "end_date must be RFC 3339")
			return start, end, false
		}
	}
	return start, end, true
}

func toOrganizationResponse(o domain.Organization) organizationResponse {
	return organizationResponse{
		ID:          o.ID,
		Name:        o.Name,
		Description: o.Description,
		OwnerID:     o.OwnerID,
		CreatedAt:   o.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   o.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toWorkspaceResponse(ws domain.Workspace) workspaceResponse {
	return workspaceResponse{
		ID:          ws.ID,
		Name:        ws.Name,
		Description: ws.Description,
		Status:      ws.Status,
		OwnerID:     ws.OwnerID,
		OrgID:       ws.OrgID,
		StartDate:   ws.StartDate.UTC().Format(time.RFC3339),
		EndDate:     ws.EndDate.UTC().Format(time.RFC3339),
		CreatedAt:   ws.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   ws.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toProjectResponse(p domain.Project) projectResponse {
	return projectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Status:      p.Status,
		OwnerID:     p.OwnerID,
		WorkspaceID: p.WorkspaceID,
		StartDate:   p.StartDate.UTC().Format(time.RFC3339),
		EndDate:     p.EndDate.UTC().Format(time.RFC3339),
		CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
