package datasource

import (
	"database/sql"
	"fmt"
)

// ScanRowsToMaps reads every row of a database/sql result set into
// column-name→value maps. []byte values are converted to strings so that
// text columns survive drivers that return raw bytes.
func ScanRowsToMaps(rows *sql.Rows) ([]map[string]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read result columns: %w", err)
	}

	var out []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		row := make(map[string]any, len(columns))
		for i, name := range columns {
			if b, ok := values[i].([]byte); ok {
				row[name] = string(b)
				continue
			}
			row[name] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

// IndexColumnRow is one (index, column) pair from an index catalog query.
type IndexColumnRow struct {
	IndexName  string
	ColumnName string
	IsUnique   bool
}

// GroupIndexColumns folds per-column index rows into IndexMetadata records,
// preserving the order indexes first appear in.
func GroupIndexColumns(rows []IndexColumnRow) []IndexMetadata {
	byName := make(map[string]*IndexMetadata)
	var order []string
	for _, row := range rows {
		if row.IndexName == "" {
			continue
		}
		idx, ok := byName[row.IndexName]
		if !ok {
			idx = &IndexMetadata{Name: row.IndexName, IsUnique: row.IsUnique}
			byName[row.IndexName] = idx
			order = append(order, row.IndexName)
		}
		idx.Columns = append(idx.Columns, row.ColumnName)
	}

	out := make([]IndexMetadata, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	return out
}
