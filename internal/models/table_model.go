package models

type Table struct {
	Name        string `db:"table_name" json:"table_name"`
	ColumnCount int64  `db:"column_count" json:"column_count"`
}

type TableColumn struct {
	Name       string  `db:"column_name" json:"column_name"`
	DataType   string  `db:"data_type" json:"data_type"`
	IsNullable string  `db:"is_nullable" json:"is_nullable"`
	Default    *string `db:"column_default" json:"column_default"`
}

// Row is one table row keyed by column name.
type Row map[string]any

type Pagination struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	Pages   int64 `json:"pages"`
	HasMore bool  `json:"hasMore"`
}
