package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const DefaultTextColumn = "text"

// CSVSource reads passages from one column of a CSV file with a header row.
type CSVSource struct {
	Path   string
	Column string
}

func (s CSVSource) Passages(ctx context.Context) ([]Passage, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.Path, err)
	}
	defer f.Close()

	passages, err := ReadCSV(ctx, f, s.Column)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.Path, err)
	}
	return passages, nil
}

// ReadCSV reads passages from column (DefaultTextColumn when empty). Rows
// whose text is blank are skipped; passage IDs are 1-based data row numbers.
func ReadCSV(ctx context.Context, r io.Reader, column string) ([]Passage, error) {
	if column == "" {
		column = DefaultTextColumn
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("csv is empty")
		}
		return nil, err
	}
	idx := -1
	for i, h := range header {
		if strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("column %q not found", column)
	}

	var passages []Passage
	for row := 1; ; row++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		if idx >= len(record) || strings.TrimSpace(record[idx]) == "" {
			continue
		}
		passages = append(passages, Passage{ID: strconv.Itoa(row), Text: record[idx]})
	}
	return passages, nil
}
