package store

import (
	"context"
	"database/sql"
	"fmt"
)

// ReferenceRow is one record from a reference table, fields keyed by their
// source column name. The matcher maps those to canonical fields.
type ReferenceRow struct {
	ID     int64
	Fields map[string]string
}

type ReferenceRepo struct{ DB *sql.DB }

func NewReferenceRepo(db *sql.DB) *ReferenceRepo { return &ReferenceRepo{DB: db} }

// referenceTables whitelists queryable tables; table names never come from
// the request directly.
var referenceTables = map[string]bool{
	"devices":     true,
	"instruments": true,
	"components":  true,
	"pcb_boards":  true,
}

// List loads up to limit rows from one reference table with all of its text
// columns. Column sets differ per table, so columns are discovered from the
// result instead of being hardcoded.
func (r *ReferenceRepo) List(ctx context.Context, table string, limit int) ([]ReferenceRow, error) {
	if !referenceTables[table] {
		return nil, fmt.Errorf("unknown reference table %q", table)
	}
	if limit <= 0 {
		limit = 500
	}
	rows, err := r.DB.QueryContext(ctx, fmt.Sprintf(`select * from %s limit $1`, table), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []ReferenceRow
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		rec := ReferenceRow{Fields: make(map[string]string, len(cols))}
		for i, c := range cols {
			switch v := vals[i].(type) {
			case int64:
				if c == "id" {
					rec.ID = v
				}
			case string:
				rec.Fields[c] = v
			case []byte:
				rec.Fields[c] = string(v)
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
