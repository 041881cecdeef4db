package stream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SetSSEHeaders applies headers that keep event streams stable across proxies.
func SetSSEHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache, no-transform")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
}

func WriteSSE(w http.ResponseWriter, ev StreamEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if ev.EventID != "" {
		if _, err := fmt.Fprintf(w, "id: %s\n", ev.EventID); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Event, data)
	return err
}

// Ping is the keep-alive frame; it carries no id so it never affects replay.
func Ping(tableID string) StreamEvent {
	now := time.Now().UnixMilli()
	return StreamEvent{
		Event:    "ping",
		TableID:  tableID,
		ServerTS: now,
		Data:     map[string]any{"ts": now},
	}
}
