// Package backup moves the whole ledger in and out of portable files: a JSON
// snapshot for backup/restore and a CSV projection for spreadsheets.
package backup

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

// Version tags the snapshot schema.
const Version = "1.0"

var (
	ErrInvalidFormat       = errors.New("backup file is not a JSON object")
	ErrMissingTransactions = errors.New("backup file has no transactions array")
	ErrCorruptSnapshot     = errors.New("backup file is corrupt")
)

// Snapshot is the on-disk backup document.
type Snapshot struct {
	Transactions      []core.Transaction `json:"transactions"`
	IncomeCategories  []core.Category    `json:"incomeCategories"`
	ExpenseCategories []core.Category    `json:"expenseCategories"`
	Banks             []core.Bank        `json:"banks"`
	ExportedAt        string             `json:"exportedAt"`
	Version           string             `json:"version"`
}

// NewSnapshot captures c at now.
func NewSnapshot(c core.Collection, now time.Time) Snapshot {
	c = c.Clone()
	return Snapshot{
		Transactions:      c.Transactions,
		IncomeCategories:  c.IncomeCategories,
		ExpenseCategories: c.ExpenseCategories,
		Banks:             c.Banks,
		ExportedAt:        now.UTC().Format("2006-01-02T15:04:05.000Z"),
		Version:           Version,
	}
}

// ExportSnapshot writes c as indented JSON.
func ExportSnapshot(w io.Writer, c core.Collection, now time.Time) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewSnapshot(c, now)); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// ValidationResult is the outcome of reading a backup file: either a
// Replacement ready for the store or the reason it was rejected.
type ValidationResult struct {
	Replacement store.Replacement
	Err         error

	// Ignored lists optional fields that were present but not arrays.
	Ignored []string
	Version string
}

// OK reports whether the file can be restored.
func (r ValidationResult) OK() bool {
	return r.Err == nil
}

func invalid(err error) ValidationResult {
	return ValidationResult{Err: err}
}

// ParseSnapshot validates raw. Only a transactions array is required; each
// of incomeCategories, expenseCategories and banks replaces its collection
// when it is present and an array and is ignored otherwise.
func ParseSnapshot(raw []byte) ValidationResult {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil || doc == nil {
		if err == nil {
			err = errors.New("null document")
		}
		return invalid(fmt.Errorf("%w: %v", ErrInvalidFormat, err))
	}

	txRaw, ok := doc["transactions"]
	if !ok || !isArray(txRaw) {
		return invalid(ErrMissingTransactions)
	}

	var res ValidationResult
	if err := json.Unmarshal(txRaw, &res.Replacement.Transactions); err != nil {
		return invalid(fmt.Errorf("%w: transactions: %v", ErrCorruptSnapshot, err))
	}

	optional := []struct {
		name string
		dst  any
	}{
		{"incomeCategories", &res.Replacement.IncomeCategories},
		{"expenseCategories", &res.Replacement.ExpenseCategories},
		{"banks", &res.Replacement.Banks},
	}
	for _, f := range optional {
		fieldRaw, ok := doc[f.name]
		if !ok {
			continue
		}
		if !isArray(fieldRaw) {
			res.Ignored = append(res.Ignored, f.name)
			continue
		}
		if err := json.Unmarshal(fieldRaw, f.dst); err != nil {
			return invalid(fmt.Errorf("%w: %s: %v", ErrCorruptSnapshot, f.name, err))
		}
	}

	if v, ok := doc["version"]; ok {
		_ = json.Unmarshal(v, &res.Version)
	}
	return res
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

// BackupFileName is the suggested name for a snapshot taken at now.
func BackupFileName(now time.Time) string {
	return "fintrack-backup-" + now.Format(time.DateOnly) + ".json"
}
