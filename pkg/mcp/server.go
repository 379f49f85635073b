package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/campusworks/parkgraph/pkg/client"
)

// Server adapts parkgraph-d to the Model Context Protocol.
type Server struct {
	mcpServer *server.MCPServer
	apiClient *client.Client
}

// NewServer creates a new MCP server instance.
func NewServer(apiURL string) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"parkgraph",
			"1.0.0",
		),
		apiClient: client.NewClient(apiURL),
	}
	s.registerResources()
	s.registerTools()
	s.registerPrompts()
	return s
}

// Serve starts the MCP server on stdio.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcpServer)
}

// --- Resources ---

func (s *Server) registerResources() {
	// parkgraph://graph
	s.mcpServer.AddResource(mcp.NewResource(
		"parkgraph://graph",
		"Parking Permissions Graph",
		mcp.WithResourceDescription("Full pass/lot adjacency in both orientations, with stats"),
		mcp.WithMIMEType("application/json"),
	), s.handleReadGraph)

	// parkgraph://validation
	s.mcpServer.AddResource(mcp.NewResource(
		"parkgraph://validation",
		"Graph Validation Report",
		mcp.WithResourceDescription("Structural findings: totals plus isolated passes and lots"),
		mcp.WithMIMEType("application/json"),
	), s.handleReadValidation)
}

// --- Tools ---

func (s *Server) registerTools() {
	// query_access
	s.mcpServer.AddTool(mcp.NewTool(
		"query_access",
		mcp.WithDescription("Look up which lots a pass can park in, or which passes a lot admits. Matching is case-insensitive."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Pass or lot identifier (e.g., 'C' or 'LotA2')")),
		mcp.WithString("direction", mcp.Description("Force 'pass_to_lots' or 'lot_to_passes' when the identifier exists as both")),
	), s.handleQueryAccess)

	// add_edge
	s.mcpServer.AddTool(mcp.NewTool(
		"add_edge",
		mcp.WithDescription("Grant a pass access to a lot in the live graph"),
		mcp.WithString("pass_id", mcp.Required(), mcp.Description("The pass receiving access")),
		mcp.WithString("lot_id", mcp.Required(), mcp.Description("The lot being granted")),
	), s.handleAddEdge)

	// validate_graph
	s.mcpServer.AddTool(mcp.NewTool(
		"validate_graph",
		mcp.WithDescription("Check the graph for passes with no lots and lots no pass can enter"),
	), s.handleValidateGraph)
}

// --- Prompts ---

func (s *Server) registerPrompts() {
	s.mcpServer.AddPrompt(mcp.NewPrompt(
		"explain_access",
		mcp.WithPromptDescription("Provides context about parkgraph concepts (Passes, Lots, Queries)"),
	), s.handleGetPrompt)
}

// --- Handlers ---

func (s *Server) handleReadGraph(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	snap, err := s.apiClient.Graph(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch graph: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal graph: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleReadValidation(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	report, err := s.apiClient.Validate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch validation report: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleQueryAccess(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := mcp.ParseString(request, "id", "")
	direction := mcp.ParseString(request, "direction", "")

	var result *client.Result
	var err error
	if direction != "" {
		result, err = s.apiClient.QueryAs(ctx, id, direction)
	} else {
		result, err = s.apiClient.Query(ctx, id)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
	}

	if result.Direction == client.DirectionPassToLots {
		if len(result.Matches) == 0 {
			return mcp.NewToolResultText(fmt.Sprintf("Pass %s has no lot access.", result.Display)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Pass %s can park in: %s", result.Display, strings.Join(result.Matches, ", "))), nil
	}
	if len(result.Matches) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("Lot %s admits no passes.", result.Display)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Lot %s admits passes: %s", result.Display, strings.Join(result.Matches, ", "))), nil
}

func (s *Server) handleAddEdge(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	passID := mcp.ParseString(request, "pass_id", "")
	lotID := mcp.ParseString(request, "lot_id", "")

	if err := s.apiClient.AddEdge(ctx, passID, lotID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("add_edge failed: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Granted: pass %s -> lot %s", passID, lotID)), nil
}

func (s *Server) handleValidateGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := s.apiClient.Validate(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("validate failed: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "passes=%d lots=%d edges=%d\n", report.Stats.Passes, report.Stats.Lots, report.Stats.Edges)
	if len(report.IsolatedPasses) == 0 && len(report.IsolatedLots) == 0 {
		b.WriteString("No isolated nodes.")
		return mcp.NewToolResultText(b.String()), nil
	}
	if len(report.IsolatedPasses) > 0 {
		fmt.Fprintf(&b, "Passes with no lot access: %s\n", strings.Join(report.IsolatedPasses, ", "))
	}
	if len(report.IsolatedLots) > 0 {
		fmt.Fprintf(&b, "Lots no pass can enter: %s\n", strings.Join(report.IsolatedLots, ", "))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleGetPrompt(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := request.Params.Name
	if name != "explain_access" {
		return nil, fmt.Errorf("prompt not found: %s", name)
	}

	promptText := `You are interacting with parkgraph, a campus parking permissions service.

Concepts:
- Pass: A parking permit class (e.g., 'A', 'C', 'Faculty').
- Lot: A parking area (e.g., 'LotA2', 'LibraryGarage').
- Edge: Permission for a pass to park in a lot.
- Query: One identifier in, the reachable identifiers out. The service picks
  the direction from whichever namespace the identifier lives in.

Identifiers match case-insensitively, so 'lota2' and 'LotA2' are the same lot.
If a query reports an ambiguous identifier, retry the 'query_access' tool with
the 'direction' argument set to 'pass_to_lots' or 'lot_to_passes'.
`

	return mcp.NewGetPromptResult(
		"explain_access",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(promptText)),
		},
	), nil
}
