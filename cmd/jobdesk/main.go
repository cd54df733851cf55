package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"jobdesk/internal/backend"
	"jobdesk/internal/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, presentError(err))
		}
		stop()
		os.Exit(1)
	}
}

// presentError collapses authorization failures to the login instruction so
// every command reports an expired session the same way.
func presentError(err error) string {
	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		return backend.ErrUnauthorized.Error()
	case errors.Is(err, session.ErrNoSession):
		return session.ErrNoSession.Error()
	default:
		return err.Error()
	}
}
