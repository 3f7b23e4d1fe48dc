package mcp

import (
	"context"
	"fmt"
	"log/slog"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/metric"

	"github.com/flowline-ai/flowline/internal/service/crm"
)

// CRMServer wraps the MCP server for the CRM service.
type CRMServer struct {
	mcpServer *mcpserver.MCPServer
	svc       *crm.Service
	logger    *slog.Logger
	calls     metric.Int64Counter
}

// NewCRM creates and configures the CRM MCP server with its tool registry.
func NewCRM(svc *crm.Service, logger *slog.Logger, version string) *CRMServer {
	s := &CRMServer{
		svc:    svc,
		logger: logger,
		calls:  newToolCallCounter(logger),
	}

	s.mcpServer = mcpserver.NewMCPServer(
		"crm-integration",
		version,
		mcpserver.WithToolCapabilities(true),
	)

	s.registerTools()

	return s
}

// MCPServer returns the underlying mcp-go server for transport setup.
func (s *CRMServer) MCPServer() *mcpserver.MCPServer {
	return s.mcpServer
}

func (s *CRMServer) registerTools() {
	// create_contact — add a contact to the CRM.
	s.mcpServer.AddTool(
		mcplib.NewTool("create_contact",
			mcplib.WithDescription("Create a new contact in the CRM"),
			mcplib.WithDestructiveHintAnnotation(false),
			mcplib.WithIdempotentHintAnnotation(false),
			mcplib.WithOpenWorldHintAnnotation(false),
			mcplib.WithString("name",
				mcplib.Description("Full name of the contact"),
				mcplib.Required(),
			),
			mcplib.WithString("email", mcplib.Description("Email address")),
			mcplib.WithString("phone", mcplib.Description("Phone number")),
			mcplib.WithString("company", mcplib.Description("Company name")),
			mcplib.WithArray("tags",
				mcplib.Description("Labels attached to the contact"),
				mcplib.Items(map[string]any{"type": "string"}),
			),
		),
		s.handleCreateContact,
	)

	// get_contact — fetch a contact by id.
	s.mcpServer.AddTool(
		mcplib.NewTool("get_contact",
			mcplib.WithDescription("Retrieve contact information. Returns null if no such contact exists."),
			mcplib.WithReadOnlyHintAnnotation(true),
			mcplib.WithIdempotentHintAnnotation(true),
			mcplib.WithOpenWorldHintAnnotation(false),
			mcplib.WithNumber("contact_id",
				mcplib.Description("Contact identifier returned by create_contact"),
				mcplib.Required(),
			),
		),
		s.handleGetContact,
	)

	// create_deal — attach a deal to a contact.
	s.mcpServer.AddTool(
		mcplib.NewTool("create_deal",
			mcplib.WithDescription("Create a new deal for a contact"),
			mcplib.WithDestructiveHintAnnotation(false),
			mcplib.WithIdempotentHintAnnotation(false),
			mcplib.WithOpenWorldHintAnnotation(false),
			mcplib.WithNumber("contact_id",
				mcplib.Description("Contact the deal belongs to"),
				mcplib.Required(),
			),
			mcplib.WithString("title",
				mcplib.Description("Deal title, e.g. 'Annual renewal'"),
				mcplib.Required(),
			),
			mcplib.WithNumber("value",
				mcplib.Description("Monetary value of the deal"),
				mcplib.Required(),
			),
			mcplib.WithString("stage",
				mcplib.Description("Pipeline stage (defaults to \"new\")"),
			),
		),
		s.handleCreateDeal,
	)
}

func (s *CRMServer) handleCreateContact(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	countCall(ctx, s.calls, "create_contact")

	name := request.GetString("name", "")
	if name == "" {
		return errorResult("name is required"), nil
	}

	in := crm.CreateContactInput{Name: name}
	if v := request.GetString("email", ""); v != "" {
		in.Email = &v
	}
	if v := request.GetString("phone", ""); v != "" {
		in.Phone = &v
	}
	if v := request.GetString("company", ""); v != "" {
		in.Company = &v
	}
	if raw, ok := request.GetArguments()["tags"]; ok && raw != nil {
		items, ok := raw.([]any)
		if !ok {
			return errorResult("tags must be an array of strings"), nil
		}
		tags := make([]string, 0, len(items))
		for _, item := range items {
			tag, ok := item.(string)
			if !ok {
				return errorResult("tags must be an array of strings"), nil
			}
			tags = append(tags, tag)
		}
		in.Tags = tags
	}

	id, err := s.svc.CreateContact(ctx, in)
	if err != nil {
		return errorResult(fmt.Sprintf("failed to create contact: %v", err)), nil
	}

	return jsonResult(map[string]any{
		"contact_id": id,
		"status":     "created",
	}), nil
}

func (s *CRMServer) handleGetContact(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	countCall(ctx, s.calls, "get_contact")

	args := request.GetArguments()
	if _, ok := args["contact_id"]; !ok {
		return errorResult("contact_id is required"), nil
	}
	id := int64(request.GetInt("contact_id", 0))

	contact, err := s.svc.GetContact(ctx, id)
	if err != nil {
		return errorResult(fmt.Sprintf("failed to get contact: %v", err)), nil
	}

	// A missing contact serializes as JSON null: a normal result, not a
	// tool failure.
	return jsonResult(contact), nil
}

func (s *CRMServer) handleCreateDeal(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	countCall(ctx, s.calls, "create_deal")

	args := request.GetArguments()
	if _, ok := args["contact_id"]; !ok {
		return errorResult("contact_id is required"), nil
	}
	if _, ok := args["value"]; !ok {
		return errorResult("value is required"), nil
	}
	title := request.GetString("title", "")
	if title == "" {
		return errorResult("title is required"), nil
	}

	id, err := s.svc.CreateDeal(ctx, crm.CreateDealInput{
		ContactID: int64(request.GetInt("contact_id", 0)),
		Title:     title,
		Value:     request.GetFloat("value", 0),
		Stage:     request.GetString("stage", ""),
	})
	if err != nil {
		return errorResult(fmt.Sprintf("failed to create deal: %v", err)), nil
	}

	return jsonResult(map[string]any{
		"deal_id": id,
		"status":  "created",
	}), nil
}
