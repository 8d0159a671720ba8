package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ayalabs/ayabridge/internal/tools"
)

// Handlers adapts the shared tool registry to MCP tool callbacks. Every
// tool returns the registry's JSON envelope as text; dispatch failures
// surface as MCP tool errors, never as protocol errors.
type Handlers struct {
	registry *tools.Registry
}

func NewHandlers(registry *tools.Registry) *Handlers {
	return &Handlers{registry: registry}
}

// Handle dispatches one named tool through the registry.
func (h *Handlers) Handle(name string) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		resp := h.registry.Dispatch(ctx, name, tools.Args(req.GetArguments()))

		body, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode response: %v", err)), nil
		}
		if !resp.Success {
			return mcp.NewToolResultError(string(body)), nil
		}
		return mcp.NewToolResultText(string(body)), nil
	}
}
