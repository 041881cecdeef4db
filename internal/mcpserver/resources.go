package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

const tableScheme = "table://"

// tableResource splits table://{table_id}/{view}.
func tableResource(uri string) (tableID, view string, err error) {
	rest, ok := strings.CutPrefix(uri, tableScheme)
	if !ok {
		return "", "", fmt.Errorf("not a table resource: %q", uri)
	}
	tableID, view, ok = strings.Cut(rest, "/")
	if !ok || tableID == "" {
		return "", "", fmt.Errorf("malformed table resource: %q", uri)
	}
	return tableID, view, nil
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: uri, MIMEType: "application/json", Text: string(payload)},
	}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResourceTemplate(
		mcp.NewResourceTemplate(
			tableScheme+"{table_id}/state",
			"table_state",
			mcp.WithTemplateDescription("Live referee state of a table: current round, suit availability and recent verdicts"),
			mcp.WithTemplateMIMEType("application/json"),
		),
		s.readTableResource,
	)
	s.mcpServer.AddResourceTemplate(
		mcp.NewResourceTemplate(
			tableScheme+"{table_id}/verdicts",
			"table_verdicts",
			mcp.WithTemplateDescription("Verdicts of the rounds a table still holds in memory, oldest first"),
			mcp.WithTemplateMIMEType("application/json"),
		),
		s.readTableResource,
	)
}

func (s *Server) readTableResource(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := request.Params.URI
	tableID, view, err := tableResource(uri)
	if err != nil {
		return nil, err
	}
	state, err := s.coord.GetState(tableID)
	if err != nil {
		return nil, err
	}
	switch view {
	case "state":
		return jsonResource(uri, state)
	case "verdicts":
		return jsonResource(uri, state.History)
	}
	return nil, fmt.Errorf("unknown table view %q", view)
}
