package models

import "time"

type Project struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	CoolifyUUID  string    `db:"coolify_uuid" json:"coolify_uuid"`
	Description  *string   `db:"description" json:"description"`
	ClientsCount int64     `db:"clients_count" json:"clients_count"`
	ActiveCount  int64     `db:"active_count" json:"active_count"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
