// Package memory is an in-process RowWriter used for dry runs and tests.
package memory

import (
	"context"
	"fmt"
	"sync"
)

type Writer struct {
	mu     sync.Mutex
	rows   [][]string
	writes int
}

func New() *Writer {
	return &Writer{}
}

// WriteRows keeps a copy of rows and returns a synthetic range reference.
func (w *Writer) WriteRows(_ context.Context, rows [][]string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.rows = make([][]string, len(rows))
	for i, r := range rows {
		w.rows[i] = append([]string(nil), r...)
	}
	w.writes++
	width := 0
	if len(rows) > 0 {
		width = len(rows[0])
	}
	return fmt.Sprintf("mem!A1:%s%d", columnName(width), len(rows)), nil
}

// Rows returns the last rows written.
func (w *Writer) Rows() [][]string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rows
}

// Writes counts WriteRows calls.
func (w *Writer) Writes() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writes
}

func columnName(n int) string {
	if n <= 0 {
		return "A"
	}
	name := ""
	for n > 0 {
		n--
		name = string(rune('A'+n%26)) + name
		n /= 26
	}
	return name
}
