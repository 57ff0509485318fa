package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/metagate-hq/platform/internal/platform/domain"
	"github.com/metagate-hq/platform/internal/platform/store"
	"github.com/metagate-hq/platform/pkg/idx"
)

// TenancyService is plain CRUD over organizations, workspaces and projects.
// These records carry no lifecycle rules of their own.
type TenancyService struct {
	store   store.Store
	timeout time.Duration
	now     func() time.Time
}

func NewTenancyService(st store.Store, timeout time.Duration) *TenancyService {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return &TenancyService{store: st, timeout: timeout, now: time.Now}
}

func (s *TenancyService) CreateOrganization(ctx context.Context, o domain.Organization) (domain.Organization, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	o.Name = strings.TrimSpace(o.Name)
	if o.Name == "" {
		return domain.Organization{}, validationErr("organization name is required")
	}
	now := s.now().UTC()
	o.ID = idx.New().String()
	o.CreatedAt = now
	o.UpdatedAt = now

	if err := s.store.Organizations().Create(ctx, o); err != nil {
		return domain.Organization{}, infraErr(err)
	}
	return o, nil
}

func (s *TenancyService) GetOrganization(ctx context.Context, id string) (domain.Organization, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	o, err := s.store.Organizations().GetByID(ctx, id)
	if err != nil {
		return domain.Organization{}, mapStoreErr(err)
	}
	return o, nil
}

func (s *TenancyService) ListOrganizations(ctx context.Context, ownerID string) ([]domain.Organization, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	os, err := s.store.Organizations().List(ctx, ownerID)
	if err != nil {
		return nil, infraErr(err)
	}
	return os, nil
}

func (s *TenancyService) UpdateOrganization(ctx context.Context, o domain.Organization) (domain.Organization, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	o.Name = strings.TrimSpace(o.Name)
	if o.Name == "" {
		return domain.Organization{}, validationErr("organization name is required")
	}
	o.UpdatedAt = s.now().UTC()

	if err := s.store.Organizations().Update(ctx, o); err != nil {
		return domain.Organization{}, mapStoreErr(err)
	}
	return o, nil
}

func (s *TenancyService) DeleteOrganization(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.store.Organizations().Delete(ctx, id); err != nil {
		return mapStoreErr(err)
	}
	return nil
}

func (s *TenancyService) CreateWorkspace(ctx context.Context, w domain.Workspace) (domain.Workspace, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	w.Name = strings.TrimSpace(w.Name)
	if w.Name == "" {
		return domain.Workspace{}, validationErr("workspace name is required")
	}
	now := s.now().UTC()
	w.ID = idx.New().String()
	w.CreatedAt = now
	w.UpdatedAt = now

	if err := s.store.Workspaces().Create(ctx, w); err != nil {
		return domain.Workspace{}, infraErr(err)
	}
	return w, nil
}

func (s *TenancyService) GetWorkspace(ctx context.Context, id string) (domain.Workspace, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	w, err := s.store.Workspaces().GetByID(ctx, id)
	if err != nil {
		return domain.Workspace{}, mapStoreErr(err)
	}
	return w, nil
}

func (s *TenancyService) ListWorkspaces(ctx context.Context, ownerID string) ([]domain.Workspace, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ws, err := s.store.Workspaces().List(ctx, ownerID)
	if err != nil {
		return nil, infraErr(err)
	}
	return ws, nil
}

func (s *TenancyService) UpdateWorkspace(ctx context.Context, w domain.Workspace) (domain.Workspace, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	w.Name = strings.TrimSpace(w.Name)
	if w.Name == "" {
		return domain.Workspace{}, validationErr("workspace name is required")
	}
	w.UpdatedAt = s.now().UTC()

	if err := s.store.Workspaces().Update(ctx, w); err != nil {
		return domain.Workspace{}, mapStoreErr(err)
	}
	return w, nil
}

func (s *TenancyService) DeleteWorkspace(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.store.Workspaces().Delete(ctx, id); err != nil {
		return mapStoreErr(err)
	}
	return nil
}

func (s *TenancyService) CreateProject(ctx context.Context, p domain.Project) (domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return domain.Project{}, validationErr("project name is required")
	}
	now := s.now().UTC()
	p.ID = idx.New().String()
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := s.store.Projects().Create(ctx, p); err != nil {
		return domain.Project{}, infraErr(err)
	}
	return p, nil
}

func (s *TenancyService) GetProject(ctx context.Context, id string) (domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	p, err := s.store.Projects().GetByID(ctx, id)
	if err != nil {
		return domain.Project{}, mapStoreErr(err)
	}
	return p, nil
}

func (s *TenancyService) ListProjects(ctx context.Context, ownerID string) ([]domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ps, err := s.store.Projects().List(ctx, ownerID)
	if err != nil {
		return nil, infraErr(err)
	}
	return ps, nil
}

func (s *TenancyService) UpdateProject(ctx context.Context, p domain.Project) (domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return domain.Project{}, validationErr("project name is required")
	}
	p.UpdatedAt = s.now().UTC()

	if err := s.store.Projects().Update(ctx, p); err != nil {
		return domain.Project{}, mapStoreErr(err)
	}
	return p, nil
}

func (s *TenancyService) DeleteProject(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.store.Projects().Delete(ctx, id); err != nil {
		return mapStoreErr(err)
	}
	return nil
}

func mapStoreErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return infraErr(err)
}
