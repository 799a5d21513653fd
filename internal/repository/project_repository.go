package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/maheshrc27/coolify-admin/internal/models"
)

type ProjectRepository interface {
	List(ctx context.Context) ([]*models.Project, error)
	GetByID(ctx context.Context, id int64) (*models.Project, bool, error)
	GetByUUID(ctx context.Context, coolifyUUID string) (*models.Project, bool, error)
	Create(ctx context.Context, project *models.Project) (*models.Project, error)
	Upsert(ctx context.Context, project *models.Project) (inserted bool, err error)
}

type projectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) ProjectRepository {
	return &projectRepository{db: db}
}

const projectColumns = "id, name, coolify_uuid, description, created_at, updated_at"

func scanProject(row interface{ Scan(...any) error }, p *models.Project) error {
	return row.Scan(&p.ID, &p.Name, &p.CoolifyUUID, &p.Description, &p.CreatedAt, &p.UpdatedAt)
}

func (r *projectRepository) List(ctx context.Context) ([]*models.Project, error) {
	query := `
		SELECT id, name, coolify_uuid, description, created_at, updated_at,
			(SELECT COUNT(*) FROM client_projects cp WHERE cp.project_id = projects.id) AS clients_count,
			(SELECT COUNT(*) FROM client_projects cp WHERE cp.project_id = projects.id AND cp.status = 'active') AS active_count
		FROM projects
		ORDER BY name ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	projects := []*models.Project{}
	for rows.Next() {
		var p models.Project
		err := rows.Scan(&p.ID, &p.Name, &p.CoolifyUUID, &p.Description, &p.CreatedAt, &p.UpdatedAt, &p.ClientsCount, &p.ActiveCount)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		projects = append(projects, &p)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return projects, nil
}

func (r *projectRepository) GetByID(ctx context.Context, id int64) (*models.Project, bool, error) {
	var p models.Project
	err := scanProject(r.db.QueryRowContext(ctx, "SELECT "+projectColumns+" FROM projects WHERE id = $1", id), &p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return &p, true, nil
}

func (r *projectRepository) GetByUUID(ctx context.Context, coolifyUUID string) (*models.Project, bool, error) {
	var p models.Project
	err := scanProject(r.db.QueryRowContext(ctx, "SELECT "+projectColumns+" FROM projects WHERE coolify_uuid = $1", coolifyUUID), &p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return &p, true, nil
}

func (r *projectRepository) Create(ctx context.Context, project *models.Project) (*models.Project, error) {
	query := `
		INSERT INTO projects (name, coolify_uuid, description)
		VALUES ($1, $2, $3)
		RETURNING ` + projectColumns

	var p models.Project
	err := scanProject(r.db.QueryRowContext(ctx, query, project.Name, project.CoolifyUUID, project.Description), &p)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &p, nil
}

// Upsert inserts the project or refreshes name and description of the row
// with the same coolify_uuid. xmax is zero only for freshly inserted tuples.
func (r *projectRepository) Upsert(ctx context.Context, project *models.Project) (bool, error) {
	query := `
		INSERT INTO projects (coolify_uuid, name, description)
		VALUES ($1, $2, $3)
		ON CONFLICT (coolify_uuid) DO UPDATE
		SET name = EXCLUDED.name,
			description = EXCLUDED.description,
			updated_at = NOW()
		RETURNING (xmax = 0) AS inserted
	`
	var inserted bool
	err := r.db.QueryRowContext(ctx, query, project.CoolifyUUID, project.Name, project.Description).Scan(&inserted)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return inserted, nil
}
