package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"sueca-referee/internal/referee"
)

func dialTable(t *testing.T, coord *referee.Coordinator, tableID string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	srv := NewServer(coord)
	server := httptest.NewServer(http.HandlerFunc(srv.HandleWS))
	t.Cleanup(server.Close)
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?table_id=" + tableID
	return websocket.DefaultDialer.Dial(url, nil)
}

func readFrame(t *testing.T, conn *websocket.Conn) (map[string]any, []byte) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	return m, raw
}

// readUntil returns the first frame matching type and, for events, name.
func readUntil(t *testing.T, conn *websocket.Conn, typ, event string) map[string]any {
	t.Helper()
	schema := compileProtocolSchema(t)
	for i := 0; i < 50; i++ {
		m, raw := readFrame(t, conn)
		validateFrame(t, schema, raw)
		if m["type"] == typ && (event == "" || m["event"] == event) {
			return m
		}
	}
	t.Fatalf("no %s %s frame", typ, event)
	return nil
}

func TestRelayAcceptsCardsAndStreamsEvents(t *testing.T) {
	coord := referee.NewCoordinator(referee.Options{ScanMinConfidence: 0.5})
	info, err := coord.CreateTable(context.Background(), referee.TableSpec{})
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	conn, _, err := dialTable(t, coord, info.TableID)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := readUntil(t, conn, TypeHello, "")
	if hello["table_id"] != info.TableID {
		t.Fatalf("hello = %v", hello)
	}

	if err := conn.WriteJSON(ScanMessage{Type: TypeScan, RequestID: "r1", Card: "A♥"}); err != nil {
		t.Fatalf("write scan: %v", err)
	}
	ack := readUntil(t, conn, TypeScanResult, "")
	if ack["ok"] != true || ack["request_id"] != "r1" {
		t.Fatalf("ack = %v", ack)
	}
	trump := readUntil(t, conn, TypeEvent, referee.EventTrumpSet)
	if data := trump["data"].(map[string]any); data["card"] != "A♥" {
		t.Fatalf("trump event = %v", trump)
	}

	det := &referee.Detection{Rank: "2", Suit: "Clubs", Confidence: 0.9}
	if err := conn.WriteJSON(ScanMessage{Type: TypeScan, RequestID: "r2", Source: "android", Success: true, Detection: det}); err != nil {
		t.Fatalf("write detection: %v", err)
	}
	ack = readUntil(t, conn, TypeScanResult, "")
	if ack["ok"] != true || ack["card"] != "2♣" {
		t.Fatalf("detection ack = %v", ack)
	}
	void := readUntil(t, conn, TypeEvent, referee.EventSuitVoid)
	if data := void["data"].(map[string]any); data["seat"] != "player2" || data["suit"] != "♥" {
		t.Fatalf("void event = %v", void)
	}

	if err := conn.WriteJSON(ScanMessage{Type: TypeScan, RequestID: "r3", Detection: &referee.Detection{Rank: "9", Suit: "Clubs", Confidence: 0.9}}); err != nil {
		t.Fatalf("write bad detection: %v", err)
	}
	ack = readUntil(t, conn, TypeScanResult, "")
	if ack["ok"] != false || ack["error"] != "invalid_card" {
		t.Fatalf("bad detection ack = %v", ack)
	}
}

func TestRelayClosesWithTable(t *testing.T) {
	coord := referee.NewCoordinator(referee.Options{})
	info, _ := coord.CreateTable(context.Background(), referee.TableSpec{})
	conn, _, err := dialTable(t, coord, info.TableID)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	readUntil(t, conn, TypeHello, "")

	if err := coord.CloseTable(context.Background(), info.TableID); err != nil {
		t.Fatalf("close table: %v", err)
	}
	readUntil(t, conn, TypeEvent, referee.EventTableClosed)
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Fatalf("expected normal close, got %v", err)
	}
}

func TestRelayUnknownTable(t *testing.T) {
	_, resp, err := dialTable(t, referee.NewCoordinator(referee.Options{}), "missing")
	if err == nil {
		t.Fatal("dial should fail for unknown table")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("response = %+v", resp)
	}
}
