package httptransport

import (
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"sueca-referee/internal/config"
	"sueca-referee/internal/mcpserver"
	"sueca-referee/internal/referee"
	"sueca-referee/internal/spectatorgateway"
	"sueca-referee/internal/store"
	"sueca-referee/internal/ws"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
)

// NewRouter wires every HTTP surface of the referee. st may be nil when no
// database is configured; history routes then answer store_unavailable.
func NewRouter(st *store.Store, cfg config.ServerConfig, logCfg config.LogConfig, coord *referee.Coordinator) *chi.Mux {
	mcpSrv := mcpserver.New(coord, st)
	wsSrv := ws.NewServer(coord)

	tableHandlers := NewTableHandlers(coord)
	adminHandlers := NewAdminHandlers(st, coord)
	apiLog := APILogMiddleware(logCfg.AccessLog)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Admin-Key", "Last-Event-ID"},
			AllowCredentials: true,
		}).Handler)
	}

	r.With(apiLog).Get("/healthz", adminHandlers.Health())
	r.With(apiLog).MethodFunc(http.MethodOptions, "/mcp", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Allow", "POST, GET, DELETE, OPTIONS")
		w.WriteHeader(http.StatusNoContent)
	})
	r.With(apiLog).Method(http.MethodPost, "/mcp", mcpSrv.Handler())
	r.With(apiLog).Method(http.MethodGet, "/mcp", mcpSrv.Handler())
	r.With(apiLog).Method(http.MethodDelete, "/mcp", mcpSrv.Handler())
	r.Get("/ws", wsSrv.HandleWS)

	r.Route("/api", func(r chi.Router) {
		r.Use(apiLog)
		r.Post("/tables", tableHandlers.Create())
		r.Get("/tables", tableHandlers.List())
		r.Get("/tables/{table_id}/state", spectatorgateway.StateHandler(coord))
		r.Get("/tables/{table_id}/events", spectatorgateway.EventsHandler(coord))
		r.Delete("/tables/{table_id}", tableHandlers.Close())
		r.With(CardBodyLogger(defaultCaptureLimit)).Post("/tables/{table_id}/cards", tableHandlers.SubmitCard())
		r.With(CardBodyLogger(defaultCaptureLimit)).Post("/tables/{table_id}/scan", tableHandlers.SubmitScan())

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.AdminAPIKey))
			r.Get("/tables/{table_id}/rounds", adminHandlers.Rounds())
			r.Get("/rounds/{round_id}/plays", adminHandlers.Plays())

			r.Get("/debug/vars", expvar.Handler().ServeHTTP)
		})
	})
	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 32)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
