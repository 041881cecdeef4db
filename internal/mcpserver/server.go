package mcpserver

import (
	"net/http"

	"sueca-referee/internal/referee"
	"sueca-referee/internal/store"

	"github.com/mark3labs/mcp-go/server"
)

const (
	serverName    = "sueca-referee"
	serverVersion = "0.2.0"
)

// Server exposes the referee to MCP clients: table listing, state, card
// submission and, when a store is configured, round history.
type Server struct {
	coord *referee.Coordinator
	store *store.Store

	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
}

// New builds the MCP server. st may be nil, in which case history tools
// report store_unavailable.
func New(coord *referee.Coordinator, st *store.Store) *Server {
	mcpSrv := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
		server.WithResourceRecovery(),
	)
	s := &Server{
		coord:      coord,
		store:      st,
		mcpServer:  mcpSrv,
		httpServer: server.NewStreamableHTTPServer(mcpSrv, server.WithStateLess(true), server.WithDisableStreaming(true)),
	}
	s.registerTableTools()
	s.registerCardTools()
	s.registerHistoryTools()
	s.registerResources()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.httpServer
}
