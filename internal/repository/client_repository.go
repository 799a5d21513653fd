package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/maheshrc27/coolify-admin/internal/models"
)

type ClientRepository interface {
	List(ctx context.Context) ([]*models.Client, error)
	GetByID(ctx context.Context, id int64) (*models.Client, bool, error)
	Create(ctx context.Context, client *models.Client) (*models.Client, error)
	Update(ctx context.Context, client *models.Client) (*models.Client, bool, error)
	Remove(ctx context.Context, id int64) (bool, error)
}

type clientRepository struct {
	db *sql.DB
}

func NewClientRepository(db *sql.DB) ClientRepository {
	return &clientRepository{db: db}
}

const clientColumns = "id, name, email, phone, company, notes, created_at, updated_at"

func scanClient(row interface{ Scan(...any) error }, c *models.Client) error {
	return row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
}

func (r *clientRepository) List(ctx context.Context) ([]*models.Client, error) {
	query := `
		SELECT c.id, c.name, c.email, c.phone, c.company, c.notes, c.created_at, c.updated_at,
			COUNT(cp.id) AS projects_count
		FROM clients c
		LEFT JOIN client_projects cp ON c.id = cp.client_id
		GROUP BY c.id
		ORDER BY c.created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	clients := []*models.Client{}
	for rows.Next() {
		var c models.Client
		err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Notes, &c.CreatedAt, &c.UpdatedAt, &c.ProjectsCount)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		clients = append(clients, &c)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return clients, nil
}

func (r *clientRepository) GetByID(ctx context.Context, id int64) (*models.Client, bool, error) {
	var c models.Client
	err := scanClient(r.db.QueryRowContext(ctx, "SELECT "+clientColumns+" FROM clients WHERE id = $1", id), &c)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return &c, true, nil
}

func (r *clientRepository) Create(ctx context.Context, client *models.Client) (*models.Client, error) {
	query := `
		INSERT INTO clients (name, email, phone, company, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + clientColumns

	var c models.Client
	err := scanClient(r.db.QueryRowContext(ctx, query, client.Name, client.Email, client.Phone, client.Company, client.Notes), &c)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &c, nil
}

func (r *clientRepository) Update(ctx context.Context, client *models.Client) (*models.Client, bool, error) {
	query := `
		UPDATE clients
		SET name = $1,
			email = $2,
			phone = $3,
			company = $4,
			notes = $5,
			updated_at = NOW()
		WHERE id = $6
		RETURNING ` + clientColumns

	var c models.Client
	err := scanClient(r.db.QueryRowContext(ctx, query, client.Name, client.Email, client.Phone, client.Company, client.Notes, client.ID), &c)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return &c, true, nil
}

func (r *clientRepository) Remove(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return affected > 0, nil
}
