// Command fintrack is a personal finance ledger for the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"fintrack/internal/cli"
	"fintrack/internal/log"
)

// env is what every command runs against.
type env struct {
	app *cli.App
	in  io.Reader
	out io.Writer
	yes bool
	now func() time.Time
}

// confirm asks before a destructive action unless -yes was given.
func (e *env) confirm(question string) bool {
	if e.yes {
		return true
	}
	return cli.Confirm(e.in, e.out, question)
}

type command struct {
	usage string
	run   func(ctx context.Context, e *env, args []string) error
}

var errUsage = errors.New("usage")

var commands = map[string]command{
	"add":           {"add -desc D -amount N -type income|expense -category C [-date YYYY-MM-DD] [-method cash|online] [-bank ID] [-source S] [-reimbursable]", runAdd},
	"edit":          {"edit -id ID [-desc D] [-amount N] [...] | edit -ids ID,ID [-category C] [-source S] [...]", runEdit},
	"delete":        {"delete ID", runDelete},
	"list":          {"list [filters]", runList},
	"dashboard":     {"dashboard [filters]", runDashboard},
	"years":         {"years", runYears},
	"reimburse":     {"reimburse clear [filters] ID...|-all | reimburse cancel ID | reimburse mark|unmark ID | reimburse pending [filters]", runReimburse},
	"category":      {"category add -type T -label L [-icon I] | category delete -type T VALUE | category list [-type T] [-used]", runCategory},
	"bank":          {"bank add NAME | bank delete ID | bank list", runBank},
	"backup":        {"backup [-o FILE]", runBackup},
	"restore":       {"restore FILE", runRestore},
	"export-csv":    {"export-csv [-o FILE] [filters]", runExportCSV},
	"export-sheets": {"export-sheets [-dry-run] [filters]", runExportSheets},
	"advice":        {"advice [filters]", runAdvice},
	"reset":         {"reset", runReset},
	"watch":         {"watch", runWatch},
}

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := cli.Bootstrap(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to start", log.FieldError, err)
		os.Exit(1)
	}

	e := &env{app: app, in: os.Stdin, out: os.Stdout, now: time.Now}
	code := run(ctx, e, os.Args[1:])

	if err := app.Close(); err != nil {
		logger.Warn("Cleanup failed", log.FieldError, err)
	}
	os.Exit(code)
}

// run parses global flags, dispatches to a command and maps its error to an
// exit code.
func run(ctx context.Context, e *env, args []string) int {
	fs := flag.NewFlagSet("fintrack", flag.ContinueOnError)
	fs.SetOutput(e.out)
	fs.BoolVar(&e.yes, "yes", false, "skip confirmation prompts")
	fs.Usage = func() { printUsage(e.out) }
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		printUsage(e.out)
		return 2
	}

	name := fs.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(e.out, "unknown command %q\n\n", name)
		printUsage(e.out)
		return 2
	}

	if err := cmd.run(ctx, e, fs.Args()[1:]); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(e.out, "usage: fintrack %s\n", cmd.usage)
			return 2
		}
		fmt.Fprintf(e.out, "error: %v\n", err)
		return 1
	}
	if e.app.Store.Degraded() {
		fmt.Fprintf(e.out, "warning: changes are kept in memory only: %v\n", e.app.Store.LastPersistError())
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: fintrack [-yes] <command> [arguments]")
	fmt.Fprintln(w)
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", commands[name].usage)
	}
}

func newFlagSet(name string, e *env) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.out)
	return fs
}
