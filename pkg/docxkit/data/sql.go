package data

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "modernc.org/sqlite"

	"github.com/benjaminschreck/go-docxkit/pkg/docxkit"
)

const driverName = "sqlite"

// OpenSQLite opens an existing SQLite database file.
func OpenSQLite(path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}
	return db, nil
}

// QueryTable runs query and returns its result set as a table for the table
// helper. Column names come from the query.
func QueryTable(ctx context.Context, db *sql.DB, query string, args ...any) (*docxkit.Table, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	t := docxkit.NewTable(columns...)
	for rows.Next() {
		cells := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("error reading row %d: %w", len(t.Rows)+1, err)
		}
		for i, c := range cells {
			cells[i] = sqlValue(c)
		}
		t.AddRow(cells...)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return t, nil
}

func sqlValue(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case int64:
		return int(x)
	case time.Time:
		return x.UTC()
	}
	return v
}
