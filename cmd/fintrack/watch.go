package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fintrack/internal/amqp"
	"fintrack/internal/log"
)

var errWatchDisabled = errors.New("AMQP_URL is not configured")

// runWatch prints ledger change events published by other fintrack
// processes until interrupted.
func runWatch(ctx context.Context, e *env, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	client := e.app.Publisher()
	if client == nil {
		return errWatchDisabled
	}

	e.app.Logger.Info("Watching ledger changes")
	err := client.ConsumeLedgerChanges(ctx, func(msg *amqp.LedgerChangeMessage) error {
		fmt.Fprintf(e.out, "%s  %-12s rev=%d  %s\n",
			msg.Timestamp.Local().Format("2006-01-02 15:04:05"),
			msg.Operation,
			msg.Revision,
			strings.Join(msg.IDs, ","))
		return nil
	})
	if errors.Is(err, context.Canceled) {
		e.app.Logger.Info("Watch stopped", log.FieldOperation, "watch")
		return nil
	}
	return err
}
