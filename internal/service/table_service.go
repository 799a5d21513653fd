package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"slices"

	"github.com/maheshrc27/coolify-admin/internal/models"
	"github.com/maheshrc27/coolify-admin/internal/repository"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 500
	maxPage          = math.MaxInt / maxPageLimit
)

// hiddenTables are never browsable, even when allow-listed. Editing the
// migration bookkeeping would stop the next startup.
var hiddenTables = []string{"schema_migrations"}

// TableService backs the database browser. Every table and column name is
// checked against the live schema, and against the configured allow-list when
// one is set, before it reaches a query.
type TableService interface {
	ListTables(ctx context.Context) ([]models.Table, error)
	Schema(ctx context.Context, table string) ([]models.TableColumn, error)
	Rows(ctx context.Context, table string, page, limit int) ([]models.Row, *models.Pagination, error)
	Insert(ctx context.Context, table string, values map[string]any) (models.Row, error)
	Update(ctx context.Context, table, id string, values map[string]any) (models.Row, error)
	Delete(ctx context.Context, table, id string) error
}

type tableService struct {
	t       repository.TableRepository
	allowed []string
}

func NewTableService(t repository.TableRepository, allowed []string) TableService {
	return &tableService{
		t:       t,
		allowed: allowed,
	}
}

func (s *tableService) ListTables(ctx context.Context) ([]models.Table, error) {
	tables, err := s.t.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	if len(s.allowed) == 0 {
		return tables, nil
	}

	visible := []models.Table{}
	for _, t := range tables {
		if slices.Contains(s.allowed, t.Name) && !slices.Contains(hiddenTables, t.Name) {
			visible = append(visible, t)
		}
	}
	return visible, nil
}

func (s *tableService) Schema(ctx context.Context, table string) ([]models.TableColumn, error) {
	return s.columns(ctx, table)
}

func (s *tableService) Rows(ctx context.Context, table string, page, limit int) ([]models.Row, *models.Pagination, error) {
	columns, err := s.columns(ctx, table)
	if err != nil {
		return nil, nil, err
	}

	page = min(max(page, 1), maxPage)
	if limit < 1 {
		limit = defaultPageLimit
	}
	limit = min(limit, maxPageLimit)
	offset := (page - 1) * limit

	orderBy := ""
	if hasColumn(columns, "id") {
		orderBy = "id"
	}

	rows, total, err := s.t.Rows(ctx, table, orderBy, limit, offset)
	if err != nil {
		return nil, nil, err
	}

	return rows, &models.Pagination{
		Page:    page,
		Limit:   limit,
		Total:   total,
		Pages:   (total + int64(limit) - 1) / int64(limit),
		HasMore: int64(offset+limit) < total,
	}, nil
}

func (s *tableService) Insert(ctx context.Context, table string, values map[string]any) (models.Row, error) {
	_, args, err := s.checkValues(ctx, table, values)
	if err != nil {
		return nil, err
	}
	return s.t.Insert(ctx, table, args)
}

func (s *tableService) Update(ctx context.Context, table, id string, values map[string]any) (models.Row, error) {
	columns, args, err := s.checkValues(ctx, table, values)
	if err != nil {
		return nil, err
	}
	if !hasColumn(columns, "id") {
		return nil, fmt.Errorf("%w: table %s has no id column", ErrUnknownColumn, table)
	}

	row, updated, err := s.t.Update(ctx, table, id, args)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrNotFound
	}
	return row, nil
}

func (s *tableService) Delete(ctx context.Context, table, id string) error {
	columns, err := s.columns(ctx, table)
	if err != nil {
		return err
	}
	if !hasColumn(columns, "id") {
		return fmt.Errorf("%w: table %s has no id column", ErrUnknownColumn, table)
	}

	deleted, err := s.t.Delete(ctx, table, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

// columns returns the table's columns, or ErrUnknownTable when the table is
// hidden by the allow-list or does not exist in the current schema.
func (s *tableService) columns(ctx context.Context, table string) ([]models.TableColumn, error) {
	if table == "" || slices.Contains(hiddenTables, table) ||
		(len(s.allowed) > 0 && !slices.Contains(s.allowed, table)) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}

	columns, err := s.t.Columns(ctx, table)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	return columns, nil
}

// checkValues validates column names and encodes nested JSON values so they
// can be written to json and jsonb columns.
func (s *tableService) checkValues(ctx context.Context, table string, values map[string]any) ([]models.TableColumn, map[string]any, error) {
	columns, err := s.columns(ctx, table)
	if err != nil {
		return nil, nil, err
	}
	if len(values) == 0 {
		return nil, nil, fmt.Errorf("%w: no values given", ErrValidation)
	}

	args := make(map[string]any, len(values))
	for name, value := range values {
		if !hasColumn(columns, name) {
			return nil, nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, table, name)
		}

		switch value.(type) {
		case map[string]any, []any:
			encoded, err := json.Marshal(value)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: %s: %v", ErrValidation, name, err)
			}
			args[name] = string(encoded)
		default:
			args[name] = value
		}
	}
	return columns, args, nil
}

func hasColumn(columns []models.TableColumn, name string) bool {
	return slices.ContainsFunc(columns, func(c models.TableColumn) bool { return c.Name == name })
}
