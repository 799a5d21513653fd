package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/maheshrc27/coolify-admin/internal/models"
)

type ClientProjectRepository interface {
	GetByID(ctx context.Context, id int64) (*models.ClientProject, bool, error)
	ListByClientID(ctx context.Context, clientID int64) ([]*models.ClientProject, error)
	Exists(ctx context.Context, clientID, projectID int64) (bool, error)
	Create(ctx context.Context, cp *models.ClientProject) (int64, error)
	UpdateSchedule(ctx context.Context, id int64, endDate time.Time, notes *string) (bool, error)
	SetStatus(ctx context.Context, id int64, status string) (bool, error)
	TransitionStatus(ctx context.Context, id int64, from, to string) (bool, error)
	ListExpired(ctx context.Context, now time.Time) ([]*models.ClientProject, error)
	ListRenewed(ctx context.Context, now time.Time) ([]*models.ClientProject, error)
	Stats(ctx context.Context, now time.Time, expiringWithin time.Duration) (*models.DashboardStats, error)
	Remove(ctx context.Context, id int64) (bool, error)
}

type clientProjectRepository struct {
	db *sql.DB
}

func NewClientProjectRepository(db *sql.DB) ClientProjectRepository {
	return &clientProjectRepository{db: db}
}

const clientProjectSelect = `
	SELECT cp.id, cp.client_id, cp.project_id, cp.status, cp.start_date, cp.end_date, cp.notes,
		cp.created_at, cp.updated_at,
		p.name AS project_name, p.description AS project_description, p.coolify_uuid
	FROM client_projects cp
	JOIN projects p ON cp.project_id = p.id
`

func scanClientProject(row interface{ Scan(...any) error }, cp *models.ClientProject) error {
	return row.Scan(&cp.ID, &cp.ClientID, &cp.ProjectID, &cp.Status, &cp.StartDate, &cp.EndDate, &cp.Notes,
		&cp.CreatedAt, &cp.UpdatedAt, &cp.ProjectName, &cp.ProjectDescription, &cp.CoolifyUUID)
}

func (r *clientProjectRepository) GetByID(ctx context.Context, id int64) (*models.ClientProject, bool, error) {
	var cp models.ClientProject
	err := scanClientProject(r.db.QueryRowContext(ctx, clientProjectSelect+" WHERE cp.id = $1", id), &cp)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return &cp, true, nil
}

func (r *clientProjectRepository) ListByClientID(ctx context.Context, clientID int64) ([]*models.ClientProject, error) {
	rows, err := r.db.QueryContext(ctx, clientProjectSelect+" WHERE cp.client_id = $1 ORDER BY cp.created_at DESC", clientID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	list := []*models.ClientProject{}
	for rows.Next() {
		var cp models.ClientProject
		if err := scanClientProject(rows, &cp); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		list = append(list, &cp)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return list, nil
}

func (r *clientProjectRepository) Exists(ctx context.Context, clientID, projectID int64) (bool, error) {
	query := "SELECT 1 FROM client_projects WHERE client_id = $1 AND project_id = $2"

	var result int
	err := r.db.QueryRowContext(ctx, query, clientID, projectID).Scan(&result)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}
	return result == 1, nil
}

func (r *clientProjectRepository) Create(ctx context.Context, cp *models.ClientProject) (int64, error) {
	query := `
		INSERT INTO client_projects (client_id, project_id, start_date, end_date, notes, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	var id int64
	err := r.db.QueryRowContext(ctx, query, cp.ClientID, cp.ProjectID, cp.StartDate, cp.EndDate, cp.Notes, cp.Status).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

// UpdateSchedule changes the end date. A nil notes value keeps the current
// notes.
func (r *clientProjectRepository) UpdateSchedule(ctx context.Context, id int64, endDate time.Time, notes *string) (bool, error) {
	query := `
		UPDATE client_projects
		SET end_date = $1,
			notes = COALESCE($2, notes),
			updated_at = NOW()
		WHERE id = $3
	`
	return r.exec(ctx, query, endDate, notes, id)
}

// SetStatus overwrites the status unconditionally. Used for operator actions.
func (r *clientProjectRepository) SetStatus(ctx context.Context, id int64, status string) (bool, error) {
	query := `
		UPDATE client_projects
		SET status = $1,
			updated_at = NOW()
		WHERE id = $2
	`
	return r.exec(ctx, query, status, id)
}

// TransitionStatus moves the row from one status to another only if it still
// holds the expected status. It reports false when another writer got there
// first.
func (r *clientProjectRepository) TransitionStatus(ctx context.Context, id int64, from, to string) (bool, error) {
	query := `
		UPDATE client_projects
		SET status = $1,
			updated_at = NOW()
		WHERE id = $2 AND status = $3
	`
	return r.exec(ctx, query, to, id, from)
}

func (r *clientProjectRepository) exec(ctx context.Context, query string, args ...any) (bool, error) {
	result, err := r.db.ExecContext(ctx, query, args...)
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

const reconcileSelect = `
	SELECT cp.id, cp.status, cp.end_date, p.coolify_uuid, p.name AS project_name, c.name AS client_name
	FROM client_projects cp
	JOIN projects p ON cp.project_id = p.id
	JOIN clients c ON cp.client_id = c.id
`

func (r *clientProjectRepository) listForReconcile(ctx context.Context, where string, args ...any) ([]*models.ClientProject, error) {
	rows, err := r.db.QueryContext(ctx, reconcileSelect+where+" ORDER BY cp.id", args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	list := []*models.ClientProject{}
	for rows.Next() {
		var cp models.ClientProject
		if err := rows.Scan(&cp.ID, &cp.Status, &cp.EndDate, &cp.CoolifyUUID, &cp.ProjectName, &cp.ClientName); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		list = append(list, &cp)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return list, nil
}

// ListExpired returns active subscriptions whose end date has passed.
func (r *clientProjectRepository) ListExpired(ctx context.Context, now time.Time) ([]*models.ClientProject, error) {
	return r.listForReconcile(ctx, " WHERE cp.status = $1 AND cp.end_date < $2", models.ClientProjectStatusActive, now)
}

// ListRenewed returns paused subscriptions whose end date lies in the future.
func (r *clientProjectRepository) ListRenewed(ctx context.Context, now time.Time) ([]*models.ClientProject, error) {
	return r.listForReconcile(ctx, " WHERE cp.status = $1 AND cp.end_date > $2", models.ClientProjectStatusPaused, now)
}

func (r *clientProjectRepository) Stats(ctx context.Context, now time.Time, expiringWithin time.Duration) (*models.DashboardStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM clients),
			(SELECT COUNT(*) FROM projects),
			(SELECT COUNT(*) FROM client_projects WHERE status = 'active'),
			(SELECT COUNT(*) FROM client_projects WHERE status = 'active' AND end_date >= $1 AND end_date <= $2)
	`
	var stats models.DashboardStats
	err := r.db.QueryRowContext(ctx, query, now, now.Add(expiringWithin)).Scan(
		&stats.ClientsCount, &stats.ProjectsCount, &stats.ActiveProjects, &stats.ExpiringProjects)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &stats, nil
}

func (r *clientProjectRepository) Remove(ctx context.Context, id int64) (bool, error) {
	return r.exec(ctx, `DELETE FROM client_projects WHERE id = $1`, id)
}
