package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"fintrack/internal/backup"
	"fintrack/internal/filter"
	"fintrack/internal/sheets"
	"fintrack/internal/sheets/memory"
)

// createOutput opens path for writing; "-" is stdout.
func createOutput(e *env, path string) (io.Writer, func() error, error) {
	if path == "-" {
		return e.out, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func runBackup(_ context.Context, e *env, args []string) error {
	fs := newFlagSet("backup", e)
	out := fs.String("o", "", "output file, - for stdout (default "+backup.BackupFileName(e.now())+")")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path := *out
	if path == "" {
		path = backup.BackupFileName(e.now())
	}

	w, closeFn, err := createOutput(e, path)
	if err != nil {
		return err
	}
	err = backup.ExportSnapshot(w, e.app.Store.Snapshot(), e.now())
	if cerr := closeFn(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	if path != "-" {
		fmt.Fprintf(e.out, "backup written to %s\n", path)
	}
	return nil
}

func runRestore(ctx context.Context, e *env, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	res := backup.ParseSnapshot(raw)
	if !res.OK() {
		return res.Err
	}
	if !e.confirm(fmt.Sprintf("Replace current data with %d transaction(s) from %s?", len(res.Replacement.Transactions), args[0])) {
		fmt.Fprintln(e.out, "cancelled")
		return nil
	}
	e.app.Store.Replace(ctx, res.Replacement)

	fmt.Fprintf(e.out, "restored %d transaction(s)\n", len(res.Replacement.Transactions))
	if len(res.Ignored) > 0 {
		fmt.Fprintf(e.out, "ignored malformed fields: %s\n", strings.Join(res.Ignored, ", "))
	}
	return nil
}

func runExportCSV(_ context.Context, e *env, args []string) error {
	fs := newFlagSet("export-csv", e)
	out := fs.String("o", "", "output file, - for stdout (default "+backup.ExportFileName(e.now())+")")
	cf := bindCriteria(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	c, err := cf.criteria(e.criteria())
	if err != nil {
		return err
	}
	view := filter.Apply(e.app.Store.Transactions(), c)
	if len(view) == 0 {
		return backup.ErrNoRows
	}

	path := *out
	if path == "" {
		path = backup.ExportFileName(e.now())
	}
	w, closeFn, err := createOutput(e, path)
	if err != nil {
		return err
	}
	err = backup.WriteCSV(w, view, e.app.Store, e.app.Labels)
	if cerr := closeFn(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	if path != "-" {
		fmt.Fprintf(e.out, "exported %d transaction(s) to %s\n", len(view), path)
	}
	return nil
}

func runExportSheets(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("export-sheets", e)
	dryRun := fs.Bool("dry-run", false, "build the rows without contacting Google")
	cf := bindCriteria(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	c, err := cf.criteria(e.criteria())
	if err != nil {
		return err
	}
	view := filter.Apply(e.app.Store.Transactions(), c)

	var w sheets.RowWriter
	if *dryRun {
		w = memory.New()
	} else {
		if w, err = e.app.SheetsWriter(ctx); err != nil {
			return err
		}
	}

	ref, err := sheets.Export(ctx, w, view, e.app.Store, e.app.Labels)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "exported %d transaction(s) to %s\n", len(view), ref)
	return nil
}

func runReset(ctx context.Context, e *env, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	if !e.confirm("Delete all transactions and restore default categories and banks?") {
		fmt.Fprintln(e.out, "cancelled")
		return nil
	}
	e.app.Store.Reset(ctx)
	fmt.Fprintln(e.out, "all data cleared")
	return nil
}
