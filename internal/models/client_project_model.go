package models

import (
	"time"
)

// ClientProject is a client's subscription to a project. CoolifyUUID is the
// project's handle on the deployment platform; the row references it, it does
// not own it.
type ClientProject struct {
	ID        int64     `db:"id" json:"id"`
	ClientID  int64     `db:"client_id" json:"client_id"`
	ProjectID int64     `db:"project_id" json:"project_id"`
	Status    string    `db:"status" json:"status"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	Notes     *string   `db:"notes" json:"notes"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	ProjectName        string  `db:"project_name" json:"project_name,omitempty"`
	ProjectDescription *string `db:"project_description" json:"project_description,omitempty"`
	CoolifyUUID        string  `db:"coolify_uuid" json:"coolify_uuid,omitempty"`
	ClientName         string  `db:"client_name" json:"client_name,omitempty"`
}

const (
	ClientProjectStatusActive = "active"
	ClientProjectStatusPaused = "paused"
)

// Expired reports whether the subscription's end date is before now.
func (cp *ClientProject) Expired(now time.Time) bool {
	return cp.EndDate.Before(now)
}

type DashboardStats struct {
	ClientsCount     int64 `json:"clientsCount"`
	ProjectsCount    int64 `json:"projectsCount"`
	ActiveProjects   int64 `json:"activeProjects"`
	ExpiringProjects int64 `json:"expiringProjects"`
}
