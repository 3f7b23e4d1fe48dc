package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowline-ai/flowline/internal/service/crm"
	"github.com/flowline-ai/flowline/internal/storage"
	"github.com/flowline-ai/flowline/internal/testutil"
)

func newCRMServer(t *testing.T, opts crm.Options) (*CRMServer, *storage.DB) {
	t.Helper()
	db := testutil.OpenCRMDB(t)
	svc := crm.New(db, opts, testutil.TestLogger())
	return NewCRM(svc, testutil.TestLogger(), "test"), db
}

func TestCreateContactToolRequiresName(t *testing.T) {
	s, _ := newCRMServer(t, crm.Options{})

	result, err := s.handleCreateContact(context.Background(), callRequest("create_contact", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, parseToolText(t, result), "name is required")
}

func TestGetContactToolMissingReturnsNull(t *testing.T) {
	s, _ := newCRMServer(t, crm.Options{})

	result, err := s.handleGetContact(context.Background(), callRequest("get_contact", map[string]any{
		"contact_id": 4242,
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError, "a missing contact is a null result, not a tool failure")
	assert.Equal(t, "null", parseToolText(t, result))
}

func TestCreateDealToolRequiresFields(t *testing.T) {
	s, _ := newCRMServer(t, crm.Options{})
	ctx := context.Background()

	result, err := s.handleCreateDeal(ctx, callRequest("create_deal", map[string]any{
		"title": "No contact", "value": 10,
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, parseToolText(t, result), "contact_id is required")

	result, err = s.handleCreateDeal(ctx, callRequest("create_deal", map[string]any{
		"contact_id": 1, "title": "No value",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, parseToolText(t, result), "value is required")
}

func TestCreateDealToolStrictMode(t *testing.T) {
	s, _ := newCRMServer(t, crm.Options{StrictRefs: true})

	result, err := s.handleCreateDeal(context.Background(), callRequest("create_deal", map[string]any{
		"contact_id": 999, "title": "Dangling", "value": 10,
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, parseToolText(t, result), "contact does not exist")
}

// Full scenario against a fresh store: first contact gets id 1, first deal
// gets id 1 with the default stage, and the contact reads back with null
// optionals and empty tags.
func TestCRMScenario(t *testing.T) {
	s, _ := newCRMServer(t, crm.Options{})
	ctx := context.Background()

	result, err := s.handleCreateContact(ctx, callRequest("create_contact", map[string]any{
		"name": "Ana",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, "create_contact failed: %s", parseToolText(t, result))

	var created struct {
		ContactID int64  `json:"contact_id"`
		Status    string `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(parseToolText(t, result)), &created))
	assert.Equal(t, int64(1), created.ContactID)
	assert.Equal(t, "created", created.Status)

	result, err = s.handleCreateDeal(ctx, callRequest("create_deal", map[string]any{
		"contact_id": 1,
		"title":      "Renewal",
		"value":      500,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, "create_deal failed: %s", parseToolText(t, result))

	var deal struct {
		DealID int64  `json:"deal_id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(parseToolText(t, result)), &deal))
	assert.Equal(t, int64(1), deal.DealID)
	assert.Equal(t, "created", deal.Status)

	result, err = s.handleGetContact(ctx, callRequest("get_contact", map[string]any{
		"contact_id": 1,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var contact struct {
		ID      int64    `json:"id"`
		Name    string   `json:"name"`
		Email   *string  `json:"email"`
		Phone   *string  `json:"phone"`
		Company *string  `json:"company"`
		Tags    []string `json:"tags"`
	}
	require.NoError(t, json.Unmarshal([]byte(parseToolText(t, result)), &contact))
	assert.Equal(t, int64(1), contact.ID)
	assert.Equal(t, "Ana", contact.Name)
	assert.Nil(t, contact.Email)
	assert.Nil(t, contact.Phone)
	assert.Nil(t, contact.Company)
	assert.Equal(t, []string{}, contact.Tags)
}

func TestCreateContactToolWithTags(t *testing.T) {
	s, _ := newCRMServer(t, crm.Options{})
	ctx := context.Background()

	result, err := s.handleCreateContact(ctx, callRequest("create_contact", map[string]any{
		"name":    "Bo",
		"email":   "bo@example.com",
		"tags":    []any{"vip", "beta"},
		"company": "Initech",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var created struct {
		ContactID int64 `json:"contact_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(parseToolText(t, result)), &created))

	// GetInt converts int, float64 and string arguments, not int64.
	result, err = s.handleGetContact(ctx, callRequest("get_contact", map[string]any{
		"contact_id": int(created.ContactID),
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var contact struct {
		Email *string  `json:"email"`
		Tags  []string `json:"tags"`
	}
	require.NoError(t, json.Unmarshal([]byte(parseToolText(t, result)), &contact))
	require.NotNil(t, contact.Email)
	assert.Equal(t, "bo@example.com", *contact.Email)
	assert.Equal(t, []string{"vip", "beta"}, contact.Tags)
}

// The registry is fixed at construction: tools/list returns exactly the
// declared tools.
func TestCRMToolRegistry(t *testing.T) {
	s, _ := newCRMServer(t, crm.Options{})

	msg := json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	resp := s.MCPServer().HandleMessage(context.Background(), msg)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var listed struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(raw, &listed))

	names := make([]string, 0, len(listed.Result.Tools))
	for _, tool := range listed.Result.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"create_contact", "get_contact", "create_deal"}, names)
}
