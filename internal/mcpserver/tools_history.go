package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 500
)

func (s *Server) registerHistoryTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_rounds",
			mcp.WithDescription("Recorded rounds of a table with their verdicts"),
			mcp.WithString("table_id", mcp.Required(), mcp.Description("Table id")),
			mcp.WithNumber("limit", mcp.Description("Page size, default 50, max 500")),
			mcp.WithNumber("offset", mcp.Description("Page offset, default 0")),
		),
		s.handleListRounds,
	)
	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_plays",
			mcp.WithDescription("Cards of one recorded round in play order, the offending card flagged"),
			mcp.WithString("round_id", mcp.Required(), mcp.Description("Round id from list_rounds")),
		),
		s.handleListPlays,
	)
}

func (s *Server) handleListRounds(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tableID, err := request.RequireString("table_id")
	if err != nil {
		return invalidArgument(err), nil
	}
	if s.store == nil {
		return storeUnavailable(), nil
	}
	limit, offset := clampPagination(request.GetInt("limit", defaultPageLimit), request.GetInt("offset", 0), maxPageLimit)
	rounds, err := s.store.ListRounds(ctx, tableID, limit, offset)
	if err != nil {
		return refereeError(err), nil
	}
	return toolResult(map[string]any{"items": rounds, "limit": limit, "offset": offset}), nil
}

func (s *Server) handleListPlays(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	roundID, err := request.RequireString("round_id")
	if err != nil {
		return invalidArgument(err), nil
	}
	if s.store == nil {
		return storeUnavailable(), nil
	}
	plays, err := s.store.ListPlays(ctx, roundID)
	if err != nil {
		return refereeError(err), nil
	}
	return toolResult(map[string]any{"round_id": roundID, "items": plays}), nil
}

func storeUnavailable() *mcp.CallToolResult {
	return toolError("store_unavailable", "no database configured")
}

// clampPagination applies the default page to a non-positive limit.
func clampPagination(limit, offset, maxLimit int) (int, int) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	return min(limit, maxLimit), max(offset, 0)
}
