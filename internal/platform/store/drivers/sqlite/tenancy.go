package sqlite

import (
	"context"
	"time"

	"github.com/metagate-hq/platform/internal/platform/domain"
	"github.com/metagate-hq/platform/internal/platform/store"
)

type organizationsRepo struct {
	db dbtx
}

func (r *organizationsRepo) Create(ctx context.Context, o domain.Organization) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO organizations (id, name, description, owner_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		o.ID, o.Name, o.Description, o.OwnerID, now, now)
	return mapConstraint(err)
}

func (r *organizationsRepo) GetByID(ctx context.Context, id string) (domain.Organization, error) {
	var o domain.Organization
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, owner_id, created_at, updated_at
		FROM organizations WHERE id = ?`, id).
		Scan(&o.ID, &o.Name, &o.Description, &o.OwnerID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return domain.Organization{}, mapNotFound(err)
	}
	return o, nil
}

func (r *organizationsRepo) List(ctx context.Context, ownerID string) ([]domain.Organization, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, owner_id, created_at, updated_at
		FROM organizations WHERE owner_id = ? ORDER BY id`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orgs []domain.Organization
	for rows.Next() {
		var o domain.Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.Description, &o.OwnerID, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		orgs = append(orgs, o)
	}
	return orgs, rows.Err()
}

func (r *organizationsRepo) Update(ctx context.Context, o domain.Organization) error {
	return execExpectingRow(ctx, r.db, `
		UPDATE organizations SET name = ?, description = ?, updated_at = ? WHERE id = ?`,
		o.Name, o.Description, time.Now().UTC(), o.ID)
}

func (r *organizationsRepo) Delete(ctx context.Context, id string) error {
	return execExpectingRow(ctx, r.db, `DELETE FROM organizations WHERE id = ?`, id)
}

type workspacesRepo struct {
	db dbtx
}

func (r *workspacesRepo) Create(ctx context.Context, w domain.Workspace) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO workspaces (id, name, description, status, owner_id, org_id,
			start_date, end_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.Name, w.Description, w.Status, w.OwnerID, w.OrgID,
		w.StartDate, w.EndDate, now, now)
	return mapConstraint(err)
}

func (r *workspacesRepo) GetByID(ctx context.Context, id string) (domain.Workspace, error) {
	var w domain.Workspace
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, status, owner_id, org_id,
			start_date, end_date, created_at, updated_at
		FROM workspaces WHERE id = ?`, id).
		Scan(&w.ID, &w.Name, &w.Description, &w.Status, &w.OwnerID, &w.OrgID,
			&w.StartDate, &w.EndDate, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return domain.Workspace{}, mapNotFound(err)
	}
	return w, nil
}

func (r *workspacesRepo) List(ctx context.Context, ownerID string) ([]domain.Workspace, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, status, owner_id, org_id,
			start_date, end_date, created_at, updated_at
		FROM workspaces WHERE owner_id = ? ORDER BY id`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workspaces []domain.Workspace
	for rows.Next() {
		var w domain.Workspace
		if err := rows.Scan(&w.ID, &w.Name, &w.Description, &w.Status, &w.OwnerID, &w.OrgID,
			&w.StartDate, &w.EndDate, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		workspaces = append(workspaces, w)
	}
	return workspaces, rows.Err()
}

func (r *workspacesRepo) Update(ctx context.Context, w domain.Workspace) error {
	return execExpectingRow(ctx, r.db, `
		UPDATE workspaces SET name = ?, description = ?, status = ?,
			start_date = ?, end_date = ?, updated_at = ?
		WHERE id = ?`,
		w.Name, w.Description, w.Status, w.StartDate, w.EndDate, time.Now().UTC(), w.ID)
}

func (r *workspacesRepo) Delete(ctx context.Context, id string) error {
	return execExpectingRow(ctx, r.db, `DELETE FROM workspaces WHERE id = ?`, id)
}

type projectsRepo struct {
	db dbtx
}

func (r *projectsRepo) Create(ctx context.Context, p domain.Project) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, description, status, owner_id, workspace_id,
			start_date, end_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, p.Status, p.OwnerID, p.WorkspaceID,
		p.StartDate, p.EndDate, now, now)
	return mapConstraint(err)
}

func (r *projectsRepo) GetByID(ctx context.Context, id string) (domain.Project, error) {
	var p domain.Project
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, status, owner_id, workspace_id,
			start_date, end_date, created_at, updated_at
		FROM projects WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.Status, &p.OwnerID, &p.WorkspaceID,
			&p.StartDate, &p.EndDate, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Project{}, mapNotFound(err)
	}
	return p, nil
}

func (r *projectsRepo) List(ctx context.Context, ownerID string) ([]domain.Project, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, status, owner_id, workspace_id,
			start_date, end_date, created_at, updated_at
		FROM projects WHERE owner_id = ? ORDER BY id`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Status, &p.OwnerID, &p.WorkspaceID,
			&p.StartDate, &p.EndDate, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *projectsRepo) Update(ctx context.Context, p domain.Project) error {
	return execExpectingRow(ctx, r.db, `
		UPDATE projects SET name = ?, description = ?, status = ?,
			start_date = ?, end_date = ?, updated_at = ?
		WHERE id = ?`,
		p.Name, p.Description, p.Status, p.StartDate, p.EndDate, time.Now().UTC(), p.ID)
}

func (r *projectsRepo) Delete(ctx context.Context, id string) error {
	return execExpectingRow(ctx, r.db, `DELETE FROM projects WHERE id = ?`, id)
}

// execExpectingRow runs a statement that must touch exactly one existing row.
func execExpectingRow(ctx context.Context, db dbtx, query string, args ...any) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapConstraint(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
