package mcpserver

import (
	"context"

	"sueca-referee/internal/referee"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerTableTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_tables",
			mcp.WithDescription("List tables currently being refereed"),
		),
		s.handleListTables,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_table_state",
			mcp.WithDescription("Current round, suit availability per seat and recent verdicts of a table"),
			mcp.WithString("table_id", mcp.Required(), mcp.Description("Table id")),
		),
		s.handleGetTableState,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"create_table",
			mcp.WithDescription("Open a new table and start its game loop"),
			mcp.WithBoolean("reveal_trump", mcp.Description("Read a turned-up trump card before trick 1")),
			mcp.WithString("drain_policy", mcp.Description("remaining|none, default from server config")),
		),
		s.handleCreateTable,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"close_table",
			mcp.WithDescription("Stop a table after its queued cards are consumed"),
			mcp.WithString("table_id", mcp.Required(), mcp.Description("Table id")),
		),
		s.handleCloseTable,
	)
}

func (s *Server) handleListTables(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return toolResult(map[string]any{"items": s.coord.ListTables()}), nil
}

func (s *Server) handleGetTableState(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tableID, err := request.RequireString("table_id")
	if err != nil {
		return invalidArgument(err), nil
	}
	state, err := s.coord.GetState(tableID)
	if err != nil {
		return refereeError(err), nil
	}
	return toolResult(state), nil
}

func (s *Server) handleCreateTable(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	spec := referee.TableSpec{DrainPolicy: request.GetString("drain_policy", "")}
	if v, ok := request.GetArguments()["reveal_trump"].(bool); ok {
		spec.RevealTrump = &v
	}
	info, err := s.coord.CreateTable(ctx, spec)
	if err != nil {
		return refereeError(err), nil
	}
	return toolResult(info), nil
}

func (s *Server) handleCloseTable(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tableID, err := request.RequireString("table_id")
	if err != nil {
		return invalidArgument(err), nil
	}
	if err := s.coord.CloseTable(ctx, tableID); err != nil {
		return refereeError(err), nil
	}
	return toolResult(map[string]any{"ok": true, "table_id": tableID}), nil
}
