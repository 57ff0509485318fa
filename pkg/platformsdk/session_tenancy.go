package platformsdk

import (
	"context"
	"net/http"
	"net/url"
)

// CreateOrganization creates an organization owned by the session account.
func (s *Session) CreateOrganization(ctx context.Context, req OrganizationRequest) (*Organization, error) {
	var org Organization
	if err := s.doJSON(ctx, http.MethodPost, "/v1/organizations", req, &org, http.StatusCreated); err != nil {
		return nil, err
	}
	return &org, nil
}

// GetOrganization fetches an organization by id.
func (s *Session) GetOrganization(ctx context.Context, id string) (*Organization, error) {
	var org Organization
	if err := s.doJSON(ctx, http.MethodGet, "/v1/organizations/"+url.PathEscape(id), nil, &org, http.StatusOK); err != nil {
		return nil, err
	}
	return &org, nil
}

// ListOrganizations lists the session account's organizations.
func (s *Session) ListOrganizations(ctx context.Context) ([]Organization, error) {
	var res struct {
		Organizations []Organization `json:"organizations"`
	}
	if err := s.doJSON(ctx, http.MethodGet, "/v1/organizations", nil, &res, http.StatusOK); err != nil {
		return nil, err
	}
	return res.Organizations, nil
}

// UpdateOrganization replaces an organization's mutable fields.
func (s *Session) UpdateOrganization(ctx context.Context, id string, req OrganizationRequest) (*Organization, error) {
	var org Organization
	if err := s.doJSON(ctx, http.MethodPut, "/v1/organizations/"+url.PathEscape(id), req, &org, http.StatusOK); err != nil {
		return nil, err
	}
	return &org, nil
}

// DeleteOrganization removes an organization.
func (s *Session) DeleteOrganization(ctx context.Context, id string) error {
	return s.doJSON(ctx, http.MethodDelete, "/v1/organizations/"+url.PathEscape(id), nil, nil, http.StatusNoContent)
}

// CreateWorkspace creates a workspace owned by the session account.
func (s *Session) CreateWorkspace(ctx context.Context, req WorkspaceRequest) (*Workspace, error) {
	var ws Workspace
	if err := s.doJSON(ctx, http.MethodPost, "/v1/workspaces", req, &ws, http.StatusCreated); err != nil {
		return nil, err
	}
	return &ws, nil
}

// GetWorkspace fetches a workspace by id.
func (s *Session) GetWorkspace(ctx context.Context, id string) (*Workspace, error) {
	var ws Workspace
	if err := s.doJSON(ctx, http.MethodGet, "/v1/workspaces/"+url.PathEscape(id), nil, &ws, http.StatusOK); err != nil {
		return nil, err
	}
	return &ws, nil
}

// ListWorkspaces lists the session account's workspaces.
func (s *Session) ListWorkspaces(ctx context.Context) ([]Workspace, error) {
	var res struct {
		Workspaces []Workspace `json:"workspaces"`
	}
	if err := s.doJSON(ctx, http.MethodGet, "/v1/workspaces", nil, &res, http.StatusOK); err != nil {
		return nil, err
	}
	return res.Workspaces, nil
}

// UpdateWorkspace replaces a workspace's mutable fields.
func (s *Session) UpdateWorkspace(ctx context.Context, id string, req WorkspaceRequest) (*Workspace, error) {
	var ws Workspace
	if err := s.doJSON(ctx, http.MethodPut, "/v1/workspaces/"+url.PathEscape(id), req, &ws, http.StatusOK); err != nil {
		return nil, err
	}
	return &ws, nil
}

// DeleteWorkspace removes a workspace.
func (s *Session) DeleteWorkspace(ctx context.Context, id string) error {
	return s.doJSON(ctx, http.MethodDelete, "/v1/workspaces/"+url.PathEscape(id), nil, nil, http.StatusNoContent)
}

// CreateProject creates a project owned by the session account.
func (s *Session) CreateProject(ctx context.Context, req ProjectRequest) (*Project, error) {
	var p Project
	if err := s.doJSON(ctx, http.MethodPost, "/v1/projects", req, &p, http.StatusCreated); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProject fetches a project by id.
func (s *Session) GetProject(ctx context.Context, id string) (*Project, error) {
	var p Project
	if err := s.doJSON(ctx, http.MethodGet, "/v1/projects/"+url.PathEscape(id), nil, &p, http.StatusOK); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProjects lists the session account's projects.
func (s *Session) ListProjects(ctx context.Context) ([]Project, error) {
	var res struct {
		Projects []Project `json:"projects"`
	}
	if err := s.doJSON(ctx, http.MethodGet, "/v1/projects", nil, &res, http.StatusOK); err != nil {
		return nil, err
	}
	return res.Projects, nil
}

// UpdateProject replaces a project's mutable fields.
func (s *Session) UpdateProject(ctx context.Context, id string, req ProjectRequest) (*Project, error) {
	var p Project
	if err := s.doJSON(ctx, http.MethodPut, "/v1/projects/"+url.PathEscape(id), req, &p, http.StatusOK); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteProject removes a project.
func (s *Session) DeleteProject(ctx context.Context, id string) error {
	return s.doJSON(ctx, http.MethodDelete, "/v1/projects/"+url.PathEscape(id), nil, nil, http.StatusNoContent)
}
