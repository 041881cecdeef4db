package httptransport

import (
	"errors"
	"net/http"

	"sueca-referee/internal/referee"
	"sueca-referee/internal/store"

	"github.com/go-chi/chi/v5"
)

type AdminHandlers struct {
	store *store.Store
	coord *referee.Coordinator
}

func NewAdminHandlers(st *store.Store, coord *referee.Coordinator) *AdminHandlers {
	return &AdminHandlers{store: st, coord: coord}
}

func (h *AdminHandlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tables := len(h.coord.ListTables())
		if h.store == nil {
			writeJSON(w, http.StatusOK, map[string]any{"ok": true, "db": "disabled", "tables": tables})
			return
		}
		if err := h.store.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "db": "down", "tables": tables})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "db": "up", "tables": tables})
	}
}

func (h *AdminHandlers) Rounds() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.store == nil {
			WriteHTTPError(w, http.StatusServiceUnavailable, "store_unavailable")
			return
		}
		tableID := chi.URLParam(r, "table_id")
		if _, err := h.store.GetTable(r.Context(), tableID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				WriteHTTPError(w, http.StatusNotFound, "table_not_found")
				return
			}
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		limit, offset := ParsePagination(r)
		items, err := h.store.ListRounds(r.Context(), tableID, limit, offset)
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items, "limit": limit, "offset": offset})
	}
}

func (h *AdminHandlers) Plays() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.store == nil {
			WriteHTTPError(w, http.StatusServiceUnavailable, "store_unavailable")
			return
		}
		items, err := h.store.ListPlays(r.Context(), chi.URLParam(r, "round_id"))
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
	}
}
