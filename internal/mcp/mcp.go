// Package mcp implements the Model Context Protocol servers for Flowline.
//
// Each service (analytics, crm) gets its own MCP server with a fixed tool
// registry declared at construction time. Tool listing and dispatch are
// delegated to mcp-go: an unknown tool name is rejected by the protocol
// layer before any handler — and therefore any store access — is reached.
// Handlers trust their arguments beyond required-field presence checks;
// schema validation is the host's concern.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/flowline-ai/flowline/internal/telemetry"
)

// newToolCallCounter builds the per-tool invocation counter. A counter
// creation failure is logged and dispatch proceeds unmetered.
func newToolCallCounter(logger *slog.Logger) metric.Int64Counter {
	counter, err := telemetry.Meter("flowline/mcp").Int64Counter(
		"mcp.tool_calls",
		metric.WithDescription("Number of MCP tool invocations, by tool name"),
	)
	if err != nil {
		logger.Warn("failed to create tool call counter", "error", err)
		return nil
	}
	return counter
}

// countCall records one invocation of the named tool.
func countCall(ctx context.Context, counter metric.Int64Counter, tool string) {
	if counter == nil {
		return
	}
	counter.Add(ctx, 1, metric.WithAttributes(attribute.String("tool", tool)))
}

// errorResult wraps a failure message in an IsError tool result. Tool
// failures are reported in-band so the host can distinguish a failed call
// from a successful-but-empty result (e.g. get_contact returning null).
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}

// textResult wraps an already-serialized payload in a text content result.
func textResult(text string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult marshals v and wraps it in a text content result.
func jsonResult(v any) *mcplib.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("failed to encode result: %v", err))
	}
	return textResult(string(data))
}
