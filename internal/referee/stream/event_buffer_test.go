package stream

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestEventBufferOrderAndReplay(t *testing.T) {
	buf := NewEventBuffer("t1", 10)
	for _, name := range []string{"round_started", "trump_set", "card_played"} {
		if _, ok := buf.Append(name, 1, map[string]any{"n": name}); !ok {
			t.Fatalf("Append(%s) rejected", name)
		}
	}

	replay := buf.ReplayAfter("1")
	if len(replay) != 2 {
		t.Fatalf("replay len = %d, want 2", len(replay))
	}
	if replay[0].EventID != "2" || replay[1].Event != "card_played" {
		t.Fatalf("unexpected replay order: %+v", replay)
	}
	if replay[0].TableID != "t1" || replay[0].Round != 1 {
		t.Fatalf("unexpected event envelope: %+v", replay[0])
	}
	if all := buf.ReplayAfter("garbage"); len(all) != 3 {
		t.Fatalf("replay of bad id = %d, want 3", len(all))
	}
}

func TestEventBufferTrimsOldest(t *testing.T) {
	buf := NewEventBuffer("t1", 2)
	buf.Append("a", 1, nil)
	buf.Append("b", 1, nil)
	buf.Append("c", 1, nil)
	if buf.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", buf.Len())
	}
	replay := buf.ReplayAfter("")
	if replay[0].Event != "b" || replay[1].EventID != "3" {
		t.Fatalf("unexpected retained events: %+v", replay)
	}
}

func TestEventBufferSubscribeAndClose(t *testing.T) {
	buf := NewEventBuffer("t1", 10)
	ch := buf.Subscribe()
	buf.Append("card_played", 1, nil)
	ev := <-ch
	if ev.Event != "card_played" {
		t.Fatalf("event = %q, want card_played", ev.Event)
	}
	buf.Close()
	if _, ok := <-ch; ok {
		t.Fatal("subscription should be closed")
	}
	if _, ok := buf.Append("late", 1, nil); ok {
		t.Fatal("Append after Close should be rejected")
	}
	if late := buf.Subscribe(); late != nil {
		if _, ok := <-late; ok {
			t.Fatal("subscribe after close should yield a closed channel")
		}
	}
	if len(buf.ReplayAfter("")) != 1 {
		t.Fatal("closed buffer should keep replay")
	}
}

func TestWriteSSEFrame(t *testing.T) {
	rec := httptest.NewRecorder()
	SetSSEHeaders(rec)
	buf := NewEventBuffer("t1", 10)
	ev, _ := buf.Append("round_invalidated", 2, map[string]any{"reason": "reneged"})
	if err := WriteSSE(rec, ev); err != nil {
		t.Fatalf("WriteSSE() error = %v", err)
	}
	if err := WriteSSE(rec, Ping("t1")); err != nil {
		t.Fatalf("WriteSSE(ping) error = %v", err)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "id: 1\nevent: round_invalidated\ndata: {") {
		t.Fatalf("unexpected frame: %q", body)
	}
	if strings.Count(body, "id: ") != 1 || !strings.Contains(body, "event: ping\n") {
		t.Fatalf("ping frame should carry no id: %q", body)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("Content-Type = %q", got)
	}
}

func TestEventBufferReplayAcrossWrap(t *testing.T) {
	buf := NewEventBuffer("t1", 3)
	for i := 0; i < 7; i++ {
		buf.Append("card_played", 1, i)
	}
	replay := buf.ReplayAfter("5")
	if len(replay) != 2 || replay[0].EventID != "6" || replay[1].EventID != "7" {
		t.Fatalf("replay after 5 = %+v", replay)
	}
	if old := buf.ReplayAfter("2"); len(old) != 3 || old[0].EventID != "5" {
		t.Fatalf("replay past the ring = %+v", old)
	}
	if none := buf.ReplayAfter("7"); len(none) != 0 {
		t.Fatalf("replay after newest = %+v", none)
	}
}
