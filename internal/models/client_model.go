package models

import "time"

type Client struct {
	ID            int64     `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Email         *string   `db:"email" json:"email"`
	Phone         *string   `db:"phone" json:"phone"`
	Company       *string   `db:"company" json:"company"`
	Notes         *string   `db:"notes" json:"notes"`
	ProjectsCount int64     `db:"projects_count" json:"projects_count"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
