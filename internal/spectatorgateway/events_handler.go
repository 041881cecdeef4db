package spectatorgateway

import (
	"net/http"
	"time"

	"sueca-referee/internal/referee"
	"sueca-referee/internal/referee/stream"

	"github.com/go-chi/chi/v5"
)

var pingInterval = 15 * time.Second

func tableIDFrom(r *http.Request) string {
	if id := chi.URLParam(r, "table_id"); id != "" {
		return id
	}
	return r.URL.Query().Get("table_id")
}

// EventsHandler streams a table's events as SSE. Buffered events newer than
// Last-Event-ID are replayed first; the stream ends when the table closes.
func EventsHandler(coord *referee.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tableID := tableIDFrom(r)
		buf, err := coord.GetBuffer(tableID)
		if err != nil {
			writeError(w, http.StatusNotFound, "table_not_found")
			return
		}
		flusher, ok := w.(http.Flusher)
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		metricSSEOpened.Add(1)
		metricSSEActive.Add(1)
		metricSSEByTable.Add(tableID, 1)
		defer metricSSEActive.Add(-1)

		// Subscribe before replaying so nothing falls between the two.
		ch := buf.Subscribe()
		defer buf.Unsubscribe(ch)

		stream.SetSSEHeaders(w)
		lastEventID := r.Header.Get("Last-Event-ID")
		if lastEventID == "" {
			lastEventID = r.URL.Query().Get("last_event_id")
		}
		sent := int64(0)
		for _, ev := range buf.ReplayAfter(lastEventID) {
			if err := stream.WriteSSE(w, ev); err != nil {
				return
			}
			sent = eventSeq(ev)
			metricSSEReplayed.Add(1)
		}
		flusher.Flush()

		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-r.Context().Done():
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				if eventSeq(ev) <= sent {
					continue
				}
				if err := stream.WriteSSE(w, ev); err != nil {
					return
				}
				metricSSEDelivered.Add(1)
				flusher.Flush()
			case <-ticker.C:
				if err := stream.WriteSSE(w, stream.Ping(tableID)); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}
