package domain

import "time"

// Organization, Workspace and Project are plain persistence records for the
// tenancy modules. They carry no invariants beyond what the schema enforces.

type Organization struct {
	ID          string
	Name        string
	Description string
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Workspace struct {
	ID          string
	Name        string
	Description string
	Status      string
	OwnerID     string
	OrgID       string
	StartDate   time.Time
	EndDate     time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Project struct {
	ID          string
	Name        string
	Description string
	Status      string
	OwnerID     string
	WorkspaceID string
	StartDate   time.Time
	EndDate     time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
