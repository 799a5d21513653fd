package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/maheshrc27/coolify-admin/internal/models"
)

// TableRepository reads and writes arbitrary tables of the current schema.
// Table and column names are quoted here but must already have been checked
// against Columns by the caller.
type TableRepository interface {
	ListTables(ctx context.Context) ([]models.Table, error)
	Columns(ctx context.Context, table string) ([]models.TableColumn, error)
	Rows(ctx context.Context, table, orderBy string, limit, offset int) ([]models.Row, int64, error)
	Insert(ctx context.Context, table string, values map[string]any) (models.Row, error)
	Update(ctx context.Context, table, id string, values map[string]any) (models.Row, bool, error)
	Delete(ctx context.Context, table, id string) (bool, error)
}

type tableRepository struct {
	db *sqlx.DB
}

func NewTableRepository(db *sql.DB) TableRepository {
	return &tableRepository{db: sqlx.NewDb(db, "postgres")}
}

func (r *tableRepository) ListTables(ctx context.Context) ([]models.Table, error) {
	query := `
		SELECT t.table_name, COUNT(c.column_name) AS column_count
		FROM information_schema.tables t
		LEFT JOIN information_schema.columns c
			ON c.table_schema = t.table_schema AND c.table_name = t.table_name
		WHERE t.table_schema = current_schema()
			AND t.table_type = 'BASE TABLE'
			AND t.table_name <> 'schema_migrations'
		GROUP BY t.table_name
		ORDER BY t.table_name
	`
	tables := []models.Table{}
	if err := r.db.SelectContext(ctx, &tables, query); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return tables, nil
}

func (r *tableRepository) Columns(ctx context.Context, table string) ([]models.TableColumn, error) {
	query := `
		SELECT column_name, data_type, is_nullable, column_default
		FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = $1
		ORDER BY ordinal_position
	`
	columns := []models.TableColumn{}
	if err := r.db.SelectContext(ctx, &columns, query, table); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return columns, nil
}

func (r *tableRepository) Rows(ctx context.Context, table, orderBy string, limit, offset int) ([]models.Row, int64, error) {
	quoted := pq.QuoteIdentifier(table)

	var total int64
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM "+quoted); err != nil {
		slog.Info(err.Error())
		return nil, 0, err
	}

	query := "SELECT * FROM " + quoted
	if orderBy != "" {
		query += " ORDER BY " + pq.QuoteIdentifier(orderBy) + " DESC"
	}
	query += " LIMIT $1 OFFSET $2"

	rows, err := r.db.QueryxContext(ctx, query, limit, offset)
	if err != nil {
		slog.Info(err.Error())
		return nil, 0, err
	}
	defer rows.Close()

	list := []models.Row{}
	for rows.Next() {
		row := map[string]any{}
		if err := rows.MapScan(row); err != nil {
			slog.Info(err.Error())
			return nil, 0, err
		}
		list = append(list, normalizeRow(row))
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, 0, err
	}
	return list, total, nil
}

func (r *tableRepository) Insert(ctx context.Context, table string, values map[string]any) (models.Row, error) {
	columns, args := sortedColumns(values)

	quotedCols := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, col := range columns {
		quotedCols[i] = pq.QuoteIdentifier(col)
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		pq.QuoteIdentifier(table), strings.Join(quotedCols, ", "), strings.Join(placeholders, ", "))

	row := map[string]any{}
	if err := r.db.QueryRowxContext(ctx, query, args...).MapScan(row); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return normalizeRow(row), nil
}

func (r *tableRepository) Update(ctx context.Context, table, id string, values map[string]any) (models.Row, bool, error) {
	columns, args := sortedColumns(values)

	assignments := make([]string, len(columns))
	for i, col := range columns {
		assignments[i] = fmt.Sprintf("%s = $%d", pq.QuoteIdentifier(col), i+1)
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d RETURNING *",
		pq.QuoteIdentifier(table), strings.Join(assignments, ", "), len(args))

	row := map[string]any{}
	if err := r.db.QueryRowxContext(ctx, query, args...).MapScan(row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return normalizeRow(row), true, nil
}

func (r *tableRepository) Delete(ctx context.Context, table, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM "+pq.QuoteIdentifier(table)+" WHERE id = $1", id)
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

// sortedColumns fixes the column order so generated statements are stable.
func sortedColumns(values map[string]any) ([]string, []any) {
	columns := make([]string, 0, len(values))
	for col := range values {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	args := make([]any, len(columns))
	for i, col := range columns {
		args[i] = values[col]
	}
	return columns, args
}

// normalizeRow turns the driver's []byte values (text, numeric, json) into
// strings so rows encode as readable JSON.
func normalizeRow(row map[string]any) models.Row {
	for k, v := range row {
		if b, ok := v.([]byte); ok {
			row[k] = string(b)
		}
	}
	return row
}
