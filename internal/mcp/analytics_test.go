package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mcplib "github.com/mark3labs/mcp-go/mcp"

	"github.com/flowline-ai/flowline/internal/model"
	"github.com/flowline-ai/flowline/internal/service/analytics"
	"github.com/flowline-ai/flowline/internal/storage"
	"github.com/flowline-ai/flowline/internal/testutil"
)

func newAnalyticsServer(t *testing.T) (*AnalyticsServer, *storage.DB) {
	t.Helper()
	db := testutil.OpenAnalyticsDB(t)
	svc := analytics.New(db, testutil.TestLogger())
	return NewAnalytics(svc, testutil.TestLogger(), "test"), db
}

// callRequest builds a CallToolRequest with the given name and arguments.
func callRequest(name string, args map[string]any) mcplib.CallToolRequest {
	return mcplib.CallToolRequest{
		Params: mcplib.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

// parseToolText extracts the first TextContent text from a CallToolResult.
func parseToolText(t *testing.T, result *mcplib.CallToolResult) string {
	t.Helper()
	for _, c := range result.Content {
		if tc, ok := c.(mcplib.TextContent); ok {
			return tc.Text
		}
	}
	t.Fatal("no TextContent found in tool result")
	return ""
}

func TestTrackEventTool(t *testing.T) {
	s, db := newAnalyticsServer(t)
	ctx := context.Background()

	result, err := s.handleTrackEvent(ctx, callRequest("track_event", map[string]any{
		"event_type": "signup",
		"metadata":   map[string]any{"src": "ad"},
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, "track should succeed: %s", parseToolText(t, result))

	var resp struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(parseToolText(t, result)), &resp))
	assert.Equal(t, "tracked", resp.Status)

	// Metadata is optional; a second bare event persists independently.
	result, err = s.handleTrackEvent(ctx, callRequest("track_event", map[string]any{
		"event_type": "signup",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	count, err := db.CountEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestTrackEventToolRequiresType(t *testing.T) {
	s, _ := newAnalyticsServer(t)

	result, err := s.handleTrackEvent(context.Background(), callRequest("track_event", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, parseToolText(t, result), "event_type is required")
}

func TestGetMetricsTool(t *testing.T) {
	s, db := newAnalyticsServer(t)
	ctx := context.Background()

	recent := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 2; i++ {
		_, err := db.InsertConversation(ctx, model.Conversation{
			Status:      model.ConversationCompleted,
			CurrentFlow: "onboarding",
			CreatedAt:   recent,
		})
		require.NoError(t, err)
		_, err = db.InsertConversation(ctx, model.Conversation{
			Status:      model.ConversationActive,
			CurrentFlow: "support",
			CreatedAt:   recent,
		})
		require.NoError(t, err)
	}

	result, err := s.handleGetMetrics(ctx, callRequest("get_metrics", map[string]any{"days": 7}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var report model.MetricsReport
	require.NoError(t, json.Unmarshal([]byte(parseToolText(t, result)), &report))
	assert.Equal(t, 7, report.PeriodDays)
	assert.Equal(t, int64(4), report.TotalConversations)
	assert.Equal(t, int64(2), report.CompletedFlows)
	assert.Equal(t, 0.5, report.CompletionRate)
	require.Len(t, report.TopFlows, 2)
	assert.Equal(t, "onboarding", report.TopFlows[0].Flow)
}

func TestGetMetricsToolDefaultsDays(t *testing.T) {
	s, _ := newAnalyticsServer(t)

	result, err := s.handleGetMetrics(context.Background(), callRequest("get_metrics", map[string]any{}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var report model.MetricsReport
	require.NoError(t, json.Unmarshal([]byte(parseToolText(t, result)), &report))
	assert.Equal(t, analytics.DefaultMetricsWindowDays, report.PeriodDays)
	assert.Equal(t, 0.0, report.CompletionRate, "empty window must report rate 0")
}

// Unknown tool names are rejected by mcp-go's dispatch: the JSON-RPC
// response is an error and no handler — and therefore no store access —
// ever runs.
func TestUnknownToolNeverReachesStore(t *testing.T) {
	s, db := newAnalyticsServer(t)
	ctx := context.Background()

	msg := json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"nonexistent_tool","arguments":{}}}`)
	resp := s.MCPServer().HandleMessage(ctx, msg)

	errResp, ok := resp.(mcplib.JSONRPCError)
	if !ok {
		p, pok := resp.(*mcplib.JSONRPCError)
		require.True(t, pok, "expected a JSON-RPC error response, got %T", resp)
		errResp = *p
	}
	assert.Contains(t, errResp.Error.Message, "not found")

	count, err := db.CountEvents(ctx)
	require.NoError(t, err)
	assert.Zero(t, count, "failed dispatch must not touch the store")
}
