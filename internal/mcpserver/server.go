// Package mcpserver exposes the tool surface over the Model Context
// Protocol for LLM clients speaking stdio.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/ayalabs/ayabridge/internal/tools"
)

// NewMCPServer creates a configured MCP server with all AyaBridge tools
// registered against the shared registry.
func NewMCPServer(registry *tools.Registry) *server.MCPServer {
	s := server.NewMCPServer("ayabridge", "1.0.0")
	h := NewHandlers(registry)

	s.AddTool(ToolAnalyzeBridgeRoute, h.Handle("analyze_bridge_route"))
	s.AddTool(ToolCalculateBridgeCosts, h.Handle("calculate_bridge_costs"))
	s.AddTool(ToolAssessBridgeRisks, h.Handle("assess_bridge_risks"))
	s.AddTool(ToolExecuteBridgeTransaction, h.Handle("execute_bridge_transaction"))
	s.AddTool(ToolMonitorBridgeStatus, h.Handle("monitor_bridge_status"))
	s.AddTool(ToolFindYieldOpportunities, h.Handle("find_yield_opportunities"))
	s.AddTool(ToolOptimizeGasStrategy, h.Handle("optimize_gas_strategy"))
	s.AddTool(ToolEmergencyBridgePause, h.Handle("emergency_bridge_pause"))
	s.AddTool(ToolResumeBridgeOperations, h.Handle("resume_bridge_operations"))

	return s
}
