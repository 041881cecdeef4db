// Command scan-bot replays a list of card identifiers into a table over the
// recognition websocket, the way the camera app would, and logs what the
// referee answers.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"time"

	"sueca-referee/internal/config"
	"sueca-referee/internal/game"
	"sueca-referee/internal/intake"
	"sueca-referee/internal/logging"
	"sueca-referee/internal/referee"
	"sueca-referee/internal/ws"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func main() {
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	logging.Init(logCfg)
	cfg, err := config.LoadScanBot()
	if err != nil {
		log.Fatal().Err(err).Msg("load scan bot config failed")
	}

	var src io.Reader = os.Stdin
	if cfg.CardsFile != "" {
		f, err := os.Open(cfg.CardsFile)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.CardsFile).Msg("open cards file failed")
		}
		defer f.Close()
		src = f
	}
	cards, err := readCards(src)
	if err != nil {
		log.Fatal().Err(err).Msg("read cards failed")
	}

	target, err := tableURL(cfg.WSURL, cfg.TableID)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid WS_URL")
	}
	conn, _, err := websocket.DefaultDialer.Dial(target, nil)
	if err != nil {
		log.Fatal().Err(err).Str("url", target).Msg("dial failed")
	}
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		readFrames(conn)
	}()

	interval := time.Duration(cfg.IntervalMs) * time.Millisecond
	for i, card := range cards {
		msg := ws.ScanMessage{
			Type:      ws.TypeScan,
			RequestID: strconv.Itoa(i + 1),
			Card:      card,
			Source:    "scan-bot",
		}
		if err := conn.WriteJSON(msg); err != nil {
			log.Error().Err(err).Msg("send scan failed")
			return
		}
		if interval > 0 {
			time.Sleep(interval)
		}
	}
	log.Info().Int("cards", len(cards)).Msg("all cards sent")
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	select {
	case <-done:
	case <-time.After(time.Second):
	}
}

func readCards(r io.Reader) ([]string, error) {
	in := intake.NewLines(r)
	var out []string
	for {
		id, err := in.NextCard(context.Background())
		if err != nil {
			if errors.Is(err, game.ErrIntakeClosed) {
				return out, nil
			}
			return nil, err
		}
		out = append(out, id)
	}
}

func tableURL(base, tableID string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	q := u.Query()
	q.Set("table_id", tableID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func readFrames(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var base struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &base); err != nil {
			continue
		}
		switch base.Type {
		case ws.TypeScanResult:
			var res ws.ScanResult
			if err := json.Unmarshal(data, &res); err != nil {
				continue
			}
			if !res.Ok {
				log.Warn().Str("request_id", res.RequestID).Str("error", res.Error).Msg("scan rejected")
			}
		case ws.TypeEvent:
			var ev ws.EventFrame
			if err := json.Unmarshal(data, &ev); err != nil {
				continue
			}
			logEvent(ev)
		}
	}
}

func logEvent(ev ws.EventFrame) {
	switch ev.Event {
	case referee.EventRoundInvalidated:
		log.Warn().Int("round", ev.Round).Interface("data", ev.Data).Msg("RENUNCIA")
	case referee.EventRoundComplete, referee.EventTableClosed, referee.EventCardsDrained:
		log.Info().Int("round", ev.Round).Str("event", ev.Event).Interface("data", ev.Data).Msg("table event")
	}
}
