// Package sheets pushes the CSV projection of a view to a spreadsheet.
package sheets

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/backup"
	"fintrack/internal/core"
)

// RowWriter replaces the contents of one sheet with rows.
type RowWriter interface {
	WriteRows(ctx context.Context, rows [][]string) (ref string, err error)
}

// Export writes view, header first, through w. An empty view is refused
// with backup.ErrNoRows.
func Export(ctx context.Context, w RowWriter, view []core.Transaction, res backup.Resolver, labels core.Labels) (string, error) {
	if w == nil {
		return "", errors.New("sheets writer not configured")
	}
	if len(view) == 0 {
		return "", backup.ErrNoRows
	}
	ref, err := w.WriteRows(ctx, backup.Rows(view, res, labels))
	if err != nil {
		return "", fmt.Errorf("write rows: %w", err)
	}
	return ref, nil
}
