package core

import (
	"context"
	"fmt"
)

// DefaultMasterQuery reads the broadcast schedule in its natural order.
// Column aliases must match the master column names.
const DefaultMasterQuery = `SELECT * FROM broadcast_schedule ORDER BY row_number`

// LoadMasterFromDB reads a master table with a query.
// Every column is rendered as text; NULL becomes "". Row order is the
// query's order, so the query should carry an ORDER BY.
func LoadMasterFromDB(ctx context.Context, db DBTX, query string, args ...any) (*Table, error) {
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query master: %w", err)
	}
	defer rows.Close()

	descs := rows.FieldDescriptions()
	columns := make([]string, len(descs))
	for i, fd := range descs {
		columns[i] = fd.Name
	}

	var data [][]string
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read master row %d: %w", len(data)+1, err)
		}
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = TextValue(v)
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read master: %w", err)
	}

	return NewTable(columns, data), nil
}
