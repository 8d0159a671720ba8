// AyaBridge MCP server - exposes the bridge evaluation engine as MCP tools
// for LLMs over stdio. Logs go to stderr so stdout stays protocol-clean.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/ayalabs/ayabridge/internal/app"
	"github.com/ayalabs/ayabridge/internal/config"
	"github.com/ayalabs/ayabridge/internal/logging"
	"github.com/ayalabs/ayabridge/internal/mcpserver"
	"github.com/ayalabs/ayabridge/internal/traces"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, true)

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

	s := mcpserver.NewMCPServer(a.Registry)
	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "MCP server error: %v\n", err)
		os.Exit(1)
	}
}
