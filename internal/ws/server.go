package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"sueca-referee/internal/referee"
	"sueca-referee/internal/referee/stream"
)

const (
	writeWait     = 5 * time.Second
	submitTimeout = 5 * time.Second
	sendBuffer    = 64
)

type outbound struct {
	data  []byte
	close bool
}

// Client is one relay connection bound to a single table.
type Client struct {
	conn    *websocket.Conn
	tableID string
	send    chan outbound
	done    chan struct{}
	once    sync.Once
}

// Server relays card scans from a camera client into a table and streams the
// table's events back on the same connection.
type Server struct {
	coord    *referee.Coordinator
	upgrader websocket.Upgrader
}

func NewServer(coord *referee.Coordinator) *Server {
	return &Server{
		coord:    coord,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	tableID := r.URL.Query().Get("table_id")
	buf, err := s.coord.GetBuffer(tableID)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "table_not_found"})
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &Client{
		conn:    conn,
		tableID: tableID,
		send:    make(chan outbound, sendBuffer),
		done:    make(chan struct{}),
	}
	metricWSConnectionsTotal.Add(1)
	metricWSConnectionsActive.Add(1)
	defer metricWSConnectionsActive.Add(-1)

	events := buf.Subscribe()
	go s.writeLoop(c)
	go s.forwardEvents(c, buf, events)
	c.enqueue(Hello{Type: TypeHello, ProtocolVersion: ProtocolVersion, TableID: tableID})
	s.readLoop(c)
}

func (s *Server) readLoop(c *Client) {
	defer func() {
		c.shutdown()
		_ = c.conn.Close()
	}()
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var base struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(msg, &base); err != nil {
			c.enqueue(ScanResult{Type: TypeScanResult, ProtocolVersion: ProtocolVersion, Error: "invalid_json"})
			continue
		}
		switch base.Type {
		case TypeScan:
			var scan ScanMessage
			if err := json.Unmarshal(msg, &scan); err != nil {
				c.enqueue(ScanResult{Type: TypeScanResult, ProtocolVersion: ProtocolVersion, Error: "invalid_json"})
				continue
			}
			c.enqueue(s.handleScan(c, scan))
		default:
			c.enqueue(ScanResult{Type: TypeScanResult, ProtocolVersion: ProtocolVersion, Error: "unknown_type"})
		}
	}
}

func (s *Server) handleScan(c *Client, scan ScanMessage) ScanResult {
	metricWSScansTotal.Add(1)
	res := ScanResult{Type: TypeScanResult, ProtocolVersion: ProtocolVersion, RequestID: scan.RequestID}
	ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
	defer cancel()

	if scan.Card != "" {
		if err := s.coord.SubmitCard(ctx, c.tableID, scan.Card); err != nil {
			_, res.Error = referee.MapSubmitError(err)
			return res
		}
		res.Ok = true
		res.Card = scan.Card
		return res
	}
	out, err := s.coord.SubmitScan(ctx, c.tableID, referee.ScanEvent{
		Source:    scan.Source,
		Success:   scan.Success,
		Message:   scan.Message,
		Detection: scan.Detection,
	})
	if err != nil {
		_, res.Error = referee.MapSubmitError(err)
		return res
	}
	res.Ok = out.Success
	res.Card = out.Card
	res.Message = out.Message
	return res
}

// forwardEvents pushes table events to the client and closes the connection
// once the table is gone.
func (s *Server) forwardEvents(c *Client, buf *stream.EventBuffer, events chan stream.StreamEvent) {
	defer buf.Unsubscribe(events)
	for {
		select {
		case <-c.done:
			return
		case ev, ok := <-events:
			if !ok {
				select {
				case c.send <- outbound{close: true}:
				case <-c.done:
				}
				return
			}
			c.enqueue(EventFrame{
				Type:            TypeEvent,
				ProtocolVersion: ProtocolVersion,
				EventID:         ev.EventID,
				Event:           ev.Event,
				TableID:         ev.TableID,
				Round:           ev.Round,
				ServerTS:        ev.ServerTS,
				Data:            ev.Data,
			})
		}
	}
}

func (s *Server) writeLoop(c *Client) {
	defer c.shutdown()
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if msg.close {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "table_closed"))
				_ = c.conn.Close()
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg.data); err != nil {
				log.Debug().Err(err).Str("table_id", c.tableID).Msg("ws write failed")
				_ = c.conn.Close()
				return
			}
		}
	}
}

func (c *Client) enqueue(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case c.send <- outbound{data: data}:
	case <-c.done:
	}
}

func (c *Client) shutdown() {
	c.once.Do(func() { close(c.done) })
}
