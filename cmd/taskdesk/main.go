// Package main is the entry point for the taskdesk CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"taskdesk/internal/cli"
	"taskdesk/internal/commands"
	"taskdesk/internal/transport"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reg := prometheus.NewRegistry()
	metrics := transport.NewMetrics(reg)

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry,
		cli.HTTPServiceFactory(metrics),
		cli.WithMetrics(reg),
	)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}
