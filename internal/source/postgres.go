package source

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

const DefaultTable = "passages"

// PostgresSource reads passages from a table with id and text columns.
type PostgresSource struct {
	DB     *sql.DB
	Table  string
	Column string
	// IDs restricts the read to these passage ids when non-empty.
	IDs []string
}

func (s PostgresSource) query() (string, []any) {
	table := s.Table
	if table == "" {
		table = DefaultTable
	}
	column := s.Column
	if column == "" {
		column = DefaultTextColumn
	}

	q := fmt.Sprintf("SELECT id::text, %s FROM %s", pq.QuoteIdentifier(column), pq.QuoteIdentifier(table))
	var args []any
	if len(s.IDs) > 0 {
		q += " WHERE id::text = ANY($1)"
		args = append(args, pq.Array(s.IDs))
	}
	return q + " ORDER BY id", args
}

func (s PostgresSource) Passages(ctx context.Context) ([]Passage, error) {
	q, args := s.query()
	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query passages: %w", err)
	}
	defer rows.Close()

	var passages []Passage
	for rows.Next() {
		var p Passage
		var text sql.NullString
		if err := rows.Scan(&p.ID, &text); err != nil {
			return nil, err
		}
		if !text.Valid || text.String == "" {
			continue
		}
		p.Text = text.String
		passages = append(passages, p)
	}
	return passages, rows.Err()
}
