package httptransport

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"sueca-referee/internal/referee"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type TableHandlers struct {
	coord *referee.Coordinator
}

func NewTableHandlers(coord *referee.Coordinator) *TableHandlers {
	return &TableHandlers{coord: coord}
}

func (h *TableHandlers) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricTableCreateTotal.Add(1)
		var spec referee.TableSpec
		if err := json.NewDecoder(r.Body).Decode(&spec); err != nil && !errors.Is(err, io.EOF) {
			metricTableCreateErrors.Add(1)
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		info, err := h.coord.CreateTable(r.Context(), spec)
		if err != nil {
			metricTableCreateErrors.Add(1)
			if errors.Is(err, referee.ErrInvalidTableSpec) {
				WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
				return
			}
			log.Error().Err(err).Msg("create table failed")
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		writeJSON(w, http.StatusCreated, info)
	}
}

func (h *TableHandlers) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"items": h.coord.ListTables()})
	}
}

func (h *TableHandlers) Close() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tableID := chi.URLParam(r, "table_id")
		if err := h.coord.CloseTable(r.Context(), tableID); err != nil {
			status, code := referee.MapSubmitError(err)
			WriteHTTPError(w, status, code)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "table_id": tableID})
	}
}

func (h *TableHandlers) SubmitCard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricCardSubmitTotal.Add(1)
		tableID := chi.URLParam(r, "table_id")
		var body struct {
			Card string `json:"card"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			metricCardSubmitErrors.Add(1)
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if err := h.coord.SubmitCard(r.Context(), tableID, body.Card); err != nil {
			metricCardSubmitErrors.Add(1)
			status, code := referee.MapSubmitError(err)
			WriteHTTPError(w, status, code)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]any{"accepted": true, "card": body.Card})
	}
}

// SubmitScan takes the recognition app's payload as is. Frames without a
// usable detection are acknowledged with success false.
func (h *TableHandlers) SubmitScan() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricScanSubmitTotal.Add(1)
		tableID := chi.URLParam(r, "table_id")
		var ev referee.ScanEvent
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			metricScanSubmitErrors.Add(1)
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		res, err := h.coord.SubmitScan(r.Context(), tableID, ev)
		if err != nil {
			metricScanSubmitErrors.Add(1)
			status, code := referee.MapSubmitError(err)
			WriteHTTPError(w, status, code)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
