package cmd

import (
	"context"
	"os/signal"
	"syscall"
)

// signalContext returns a context canceled on SIGINT or SIGTERM so that
// long enumerations and the report server stop cleanly.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
