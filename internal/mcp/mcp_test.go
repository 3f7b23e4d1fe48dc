package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONResultReportsMarshalFailure(t *testing.T) {
	// Channels have no JSON encoding.
	result := jsonResult(map[string]any{"ch": make(chan int)})

	require.True(t, result.IsError)
	assert.Contains(t, parseToolText(t, result), "failed to encode result")
}
