// Package tools is the shared tool surface: one registry dispatching named
// operations to the engine components, returning a uniform envelope. Both
// the MCP stdio server and the HTTP server sit on top of it.
package tools

import "time"

// Response is the envelope every tool returns. Exactly one of Data and
// Error is set; Timestamp is epoch millis at envelope construction.
type Response struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

func ok(data any, now time.Time) Response {
	return Response{Success: true, Data: data, Timestamp: now.UnixMilli()}
}

func fail(msg string, now time.Time) Response {
	return Response{Success: false, Error: msg, Timestamp: now.UnixMilli()}
}
