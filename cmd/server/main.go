// AyaBridge HTTP server - serves the tool surface over HTTP with health
// and Prometheus metrics endpoints.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ayalabs/ayabridge/internal/app"
	"github.com/ayalabs/ayabridge/internal/config"
	"github.com/ayalabs/ayabridge/internal/logging"
	"github.com/ayalabs/ayabridge/internal/server"
	"github.com/ayalabs/ayabridge/internal/traces"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, false)

	ctx := context.Background()
	shutdownTraces, err := traces.Init(ctx, cfg.OTLPEndpoint, logger)
	if err != nil {
		logger.Warn("tracing disabled", "error", err)
	} else {
		defer func() { _ = shutdownTraces(ctx) }()
	}

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("failed to wire engine", "error", err)
		os.Exit(1)
	}
	defer func() { _ = a.Close(ctx) }()

	srv := server.New(cfg, a.Registry, logger)
	if err := srv.Run(); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}
