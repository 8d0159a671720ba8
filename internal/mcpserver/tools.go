package mcpserver

import "github.com/mark3labs/mcp-go/mcp"

// Tool definitions for the AyaBridge MCP server.
// Descriptions are what the LLM reads to decide which tool to use.

var ToolAnalyzeBridgeRoute = mcp.NewTool("analyze_bridge_route",
	mcp.WithDescription(
		"Analyze and rank the optimal bridge routes between two chains. "+
			"Returns the cheapest recommended route plus up to three alternatives, "+
			"each with an estimated time, total cost, and preliminary risk score."),
	mcp.WithString("fromChain",
		mcp.Required(),
		mcp.Description("Source chain (e.g. 'ethereum', 'polygon', 'arbitrum')")),
	mcp.WithString("toChain",
		mcp.Required(),
		mcp.Description("Destination chain")),
	mcp.WithString("token",
		mcp.Required(),
		mcp.Description("Token symbol to bridge (e.g. 'usdc')")),
	mcp.WithString("amount",
		mcp.Required(),
		mcp.Description("Amount to bridge, as a decimal string")),
)

var ToolCalculateBridgeCosts = mcp.NewTool("calculate_bridge_costs",
	mcp.WithDescription(
		"Break a route's total cost into bridge, gas, and protocol fee components, "+
			"with an optimistic/realistic/pessimistic completion time band. "+
			"Pass a route object from analyze_bridge_route."),
	mcp.WithObject("route",
		mcp.Required(),
		mcp.Description("A route object as returned by analyze_bridge_route")),
	mcp.WithString("gasPrice",
		mcp.Description("Override gas price in gwei; omit to use the live oracle")),
)

var ToolAssessBridgeRisks = mcp.NewTool("assess_bridge_risks",
	mcp.WithDescription(
		"AI-powered risk assessment for a bridge protocol and transfer. "+
			"Scores run 0-100 where higher is safer, with a LOW/MEDIUM/HIGH/CRITICAL "+
			"risk level, contributing factors, and recommendations."),
	mcp.WithString("protocol",
		mcp.Required(),
		mcp.Description("Bridge protocol name (e.g. 'Stargate', 'Hop')")),
	mcp.WithString("amount",
		mcp.Required(),
		mcp.Description("Transfer amount, as a decimal string")),
	mcp.WithString("fromChain",
		mcp.Required(),
		mcp.Description("Source chain")),
	mcp.WithString("toChain",
		mcp.Required(),
		mcp.Description("Destination chain")),
)

var ToolExecuteBridgeTransaction = mcp.NewTool("execute_bridge_transaction",
	mcp.WithDescription(
		"Execute a bridge transfer along a chosen route. "+
			"Returns the source-chain transaction hash and tracking identifiers. "+
			"Rejected while the emergency pause is active."),
	mcp.WithObject("route",
		mcp.Required(),
		mcp.Description("The route object to execute, from analyze_bridge_route")),
	mcp.WithString("userAddress",
		mcp.Required(),
		mcp.Description("The user's 0x address receiving funds on the destination chain")),
)

var ToolMonitorBridgeStatus = mcp.NewTool("monitor_bridge_status",
	mcp.WithDescription(
		"Track a bridge transaction's progress: status, confirmations, "+
			"percentage complete, and the four transfer stages."),
	mcp.WithString("txHash",
		mcp.Required(),
		mcp.Description("Source-chain transaction hash from execute_bridge_transaction")),
	mcp.WithString("fromChain",
		mcp.Required(),
		mcp.Description("Source chain of the transaction")),
)

var ToolFindYieldOpportunities = mcp.NewTool("find_yield_opportunities",
	mcp.WithDescription(
		"Find yield opportunities for funds after bridging: ranked pools, "+
			"an AI-suggested allocation, and projected returns."),
	mcp.WithString("token",
		mcp.Required(),
		mcp.Description("Token symbol to deploy (e.g. 'usdc')")),
	mcp.WithString("amount",
		mcp.Required(),
		mcp.Description("Amount available to deploy, as a decimal string")),
	mcp.WithString("riskTolerance",
		mcp.Description("Risk appetite for the allocation (default 'moderate')"),
		mcp.Enum("conservative", "moderate", "aggressive")),
)

var ToolOptimizeGasStrategy = mcp.NewTool("optimize_gas_strategy",
	mcp.WithDescription(
		"Predict the optimal gas window for a chain: current price, the "+
			"model's recommended price and execution time, and expected savings."),
	mcp.WithString("chain",
		mcp.Required(),
		mcp.Description("Chain to optimize for (e.g. 'ethereum')")),
	mcp.WithString("transactionType",
		mcp.Description("Transaction type the prediction is for (default 'bridge')")),
)

var ToolEmergencyBridgePause = mcp.NewTool("emergency_bridge_pause",
	mcp.WithDescription(
		"Pause bridge operations immediately. All new executions are rejected "+
			"until resume_bridge_operations is called. Use for suspected exploits "+
			"or stuck infrastructure."),
	mcp.WithString("reason",
		mcp.Required(),
		mcp.Description("Why operations are being paused")),
	mcp.WithString("bridgeId",
		mcp.Description("Scope the pause announcement to one bridge; omit for all")),
)

var ToolResumeBridgeOperations = mcp.NewTool("resume_bridge_operations",
	mcp.WithDescription(
		"Lift an emergency pause and resume bridge operations."),
	mcp.WithString("reason",
		mcp.Required(),
		mcp.Description("Why it is safe to resume")),
)
