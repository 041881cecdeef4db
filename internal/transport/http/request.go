package httptransport

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

type errorBody struct {
	Error string `json:"error"`
}

// WriteHTTPError answers with {"error": code}; codes are the stable strings
// clients switch on, never free text.
func WriteHTTPError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, errorBody{Error: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ParsePagination reads limit and offset for the history listings. Garbage
// falls back to the defaults; out of range values are clamped.
func ParsePagination(r *http.Request) (limit, offset int) {
	q := r.URL.Query()
	limit = queryInt(q.Get("limit"), defaultPageSize)
	offset = queryInt(q.Get("offset"), 0)
	limit = min(max(limit, 1), maxPageSize)
	offset = max(offset, 0)
	return limit, offset
}

func queryInt(v string, fallback int) int {
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// isSSERequest matches the table event streams, which must not be buffered.
func isSSERequest(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "text/event-stream") {
		return true
	}
	p := r.URL.Path
	return strings.HasPrefix(p, "/api/tables/") && strings.HasSuffix(p, "/events")
}
