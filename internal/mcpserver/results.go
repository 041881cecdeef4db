package mcpserver

import (
	"errors"

	"sueca-referee/internal/referee"
	"sueca-referee/internal/store"

	"github.com/mark3labs/mcp-go/mcp"
)

// toolFailure is the structured payload of a failed tool call. Code carries
// the same strings the HTTP API answers with.
type toolFailure struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func toolResult(data any) *mcp.CallToolResult {
	return mcp.NewToolResultStructuredOnly(data)
}

func toolError(code, message string) *mcp.CallToolResult {
	res := mcp.NewToolResultStructured(
		struct {
			Error toolFailure `json:"error"`
		}{toolFailure{Code: code, Message: message}},
		code+": "+message,
	)
	res.IsError = true
	return res
}

func invalidArgument(err error) *mcp.CallToolResult {
	return toolError("invalid_request", err.Error())
}

// refereeError translates coordinator and store failures into tool errors.
func refereeError(err error) *mcp.CallToolResult {
	if err == nil {
		return toolError("internal_error", "unknown error")
	}
	var code string
	switch {
	case errors.Is(err, referee.ErrInvalidTableSpec):
		code = "invalid_request"
	case errors.Is(err, store.ErrNotFound):
		code = "not_found"
	default:
		_, code = referee.MapSubmitError(err)
	}
	return toolError(code, err.Error())
}
