package mcp

import (
	"context"
	"fmt"
	"log/slog"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/metric"

	"github.com/flowline-ai/flowline/internal/service/analytics"
)

// AnalyticsServer wraps the MCP server for the analytics service.
type AnalyticsServer struct {
	mcpServer *mcpserver.MCPServer
	svc       *analytics.Service
	logger    *slog.Logger
	calls     metric.Int64Counter
}

// NewAnalytics creates and configures the analytics MCP server with its
// tool registry.
func NewAnalytics(svc *analytics.Service, logger *slog.Logger, version string) *AnalyticsServer {
	s := &AnalyticsServer{
		svc:    svc,
		logger: logger,
		calls:  newToolCallCounter(logger),
	}

	s.mcpServer = mcpserver.NewMCPServer(
		"analytics",
		version,
		mcpserver.WithToolCapabilities(true),
	)

	s.registerTools()

	return s
}

// MCPServer returns the underlying mcp-go server for transport setup.
func (s *AnalyticsServer) MCPServer() *mcpserver.MCPServer {
	return s.mcpServer
}

func (s *AnalyticsServer) registerTools() {
	// track_event — append a custom event.
	s.mcpServer.AddTool(
		mcplib.NewTool("track_event",
			mcplib.WithDescription("Track a custom event"),
			mcplib.WithDestructiveHintAnnotation(false),
			mcplib.WithIdempotentHintAnnotation(false),
			mcplib.WithOpenWorldHintAnnotation(false),
			mcplib.WithString("event_type",
				mcplib.Description("Event category, e.g. signup or page_view. Any string is accepted."),
				mcplib.Required(),
			),
			mcplib.WithObject("metadata",
				mcplib.Description("Arbitrary key-value payload stored with the event"),
			),
		),
		s.handleTrackEvent,
	)

	// get_metrics — conversation metrics over a trailing window.
	s.mcpServer.AddTool(
		mcplib.NewTool("get_metrics",
			mcplib.WithDescription("Get conversation metrics: totals, completion rate, and top flows for a trailing window"),
			mcplib.WithReadOnlyHintAnnotation(true),
			mcplib.WithIdempotentHintAnnotation(true),
			mcplib.WithOpenWorldHintAnnotation(false),
			mcplib.WithNumber("days",
				mcplib.Description("Window size in days"),
				mcplib.Min(1),
				mcplib.DefaultNumber(analytics.DefaultMetricsWindowDays),
			),
		),
		s.handleGetMetrics,
	)
}

func (s *AnalyticsServer) handleTrackEvent(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	countCall(ctx, s.calls, "track_event")

	eventType := request.GetString("event_type", "")
	if eventType == "" {
		return errorResult("event_type is required"), nil
	}

	var metadata map[string]any
	if raw, ok := request.GetArguments()["metadata"]; ok && raw != nil {
		metadata, ok = raw.(map[string]any)
		if !ok {
			return errorResult("metadata must be an object"), nil
		}
	}

	if err := s.svc.TrackEvent(ctx, eventType, metadata); err != nil {
		return errorResult(fmt.Sprintf("failed to track event: %v", err)), nil
	}

	return jsonResult(map[string]any{"status": "tracked"}), nil
}

func (s *AnalyticsServer) handleGetMetrics(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	countCall(ctx, s.calls, "get_metrics")

	days := request.GetInt("days", analytics.DefaultMetricsWindowDays)

	report, err := s.svc.GetMetrics(ctx, days)
	if err != nil {
		return errorResult(fmt.Sprintf("failed to compute metrics: %v", err)), nil
	}

	return jsonResult(report), nil
}
