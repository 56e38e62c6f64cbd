package backup

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"fintrack/internal/core"
)

// ErrNoRows refuses an export with nothing in it.
var ErrNoRows = errors.New("no data matches the filter")

// byteOrderMark makes spreadsheet tools read the file as UTF-8.
const byteOrderMark = "\uFEFF"

// Header is the fixed CSV column order.
var Header = []string{"Date", "Description", "Category", "Source", "Type", "Amount", "Payment Method", "Bank"}

// Resolver turns stored keys into display names.
type Resolver interface {
	CategoryLabel(typ core.TransactionType, value string) (string, bool)
	BankName(id string) (string, bool)
}

// Rows projects view into display rows, header first. Unknown categories
// show their raw value; unknown banks show nothing.
func Rows(view []core.Transaction, res Resolver, labels core.Labels) [][]string {
	rows := make([][]string, 0, len(view)+1)
	rows = append(rows, append([]string(nil), Header...))
	for _, t := range view {
		category, ok := res.CategoryLabel(t.Type, t.Category)
		if !ok {
			category = t.Category
		}
		bank := ""
		if t.Bank != "" {
			bank, _ = res.BankName(t.Bank)
		}
		rows = append(rows, []string{
			t.Date.UTC().Format("2006-01-02T15:04:05.000Z"),
			t.Description,
			category,
			labels.Source(t.Source),
			labels.Type(t.Type),
			t.Amount.String(),
			labels.PaymentMethod(t.PaymentMethod),
			bank,
		})
	}
	return rows
}

// WriteCSV writes view as CSV prefixed with a UTF-8 byte order mark. The
// description column is always quoted; other cells are quoted only when they
// contain a separator, quote or line break.
func WriteCSV(w io.Writer, view []core.Transaction, res Resolver, labels core.Labels) error {
	if len(view) == 0 {
		return ErrNoRows
	}

	bw := bufio.NewWriter(w)
	bw.WriteString(byteOrderMark)
	for i, row := range Rows(view, res, labels) {
		cells := make([]string, len(row))
		for j, cell := range row {
			if i > 0 && j == 1 {
				cells[j] = quote(cell)
			} else {
				cells[j] = quoteIfNeeded(cell)
			}
		}
		bw.WriteString(strings.Join(cells, ","))
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func quoteIfNeeded(s string) string {
	if strings.ContainsAny(s, ",\"\r\n") {
		return quote(s)
	}
	return s
}

// ExportFileName is the suggested name for a CSV export made at now.
func ExportFileName(now time.Time) string {
	return "fintrack-export-" + now.Format(time.DateOnly) + ".csv"
}
