package spectatorgateway

import (
	"encoding/json"
	"net/http"
	"strconv"

	"sueca-referee/internal/referee"
	"sueca-referee/internal/referee/stream"
)

func StateHandler(coord *referee.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tableID := tableIDFrom(r)
		if tableID == "" {
			writeError(w, http.StatusBadRequest, "table_id_required")
			return
		}
		metricStateRequests.Add(1)
		state, err := coord.GetState(tableID)
		if err != nil {
			writeError(w, http.StatusNotFound, "table_not_found")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(state)
	}
}

func writeError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": code})
}

func eventSeq(ev stream.StreamEvent) int64 {
	n, _ := strconv.ParseInt(ev.EventID, 10, 64)
	return n
}
