package mcpserver

import (
	"context"

	"sueca-referee/internal/referee"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerCardTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"submit_card",
			mcp.WithDescription("Feed one played card to a table, e.g. A♣, 7h or a deck number 1..40"),
			mcp.WithString("table_id", mcp.Required(), mcp.Description("Table id")),
			mcp.WithString("card", mcp.Required(), mcp.Description("Card identifier")),
		),
		s.handleSubmitCard,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"submit_scan",
			mcp.WithDescription("Feed a recognition result; ignored below the confidence floor"),
			mcp.WithString("table_id", mcp.Required(), mcp.Description("Table id")),
			mcp.WithString("rank", mcp.Required(), mcp.Description("A|2..7|J|Q|K")),
			mcp.WithString("suit", mcp.Required(), mcp.Description("Clubs|Diamonds|Hearts|Spades")),
			mcp.WithNumber("confidence", mcp.Description("Detection confidence 0..1, default 1")),
		),
		s.handleSubmitScan,
	)
}

func (s *Server) handleSubmitCard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tableID, err := request.RequireString("table_id")
	if err != nil {
		return invalidArgument(err), nil
	}
	card, err := request.RequireString("card")
	if err != nil {
		return invalidArgument(err), nil
	}
	if err := s.coord.SubmitCard(ctx, tableID, card); err != nil {
		return refereeError(err), nil
	}
	return toolResult(map[string]any{"accepted": true, "table_id": tableID, "card": card}), nil
}

func (s *Server) handleSubmitScan(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tableID, err := request.RequireString("table_id")
	if err != nil {
		return invalidArgument(err), nil
	}
	rank, err := request.RequireString("rank")
	if err != nil {
		return invalidArgument(err), nil
	}
	suit, err := request.RequireString("suit")
	if err != nil {
		return invalidArgument(err), nil
	}
	res, err := s.coord.SubmitScan(ctx, tableID, referee.ScanEvent{
		Source:  "mcp",
		Success: true,
		Detection: &referee.Detection{
			Rank:       rank,
			Suit:       suit,
			Confidence: request.GetFloat("confidence", 1),
		},
	})
	if err != nil {
		return refereeError(err), nil
	}
	return toolResult(res), nil
}
