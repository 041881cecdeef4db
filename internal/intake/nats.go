package intake

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

var natsLogger = log.With().Str("logger_name", "intake::nats").Logger()

// SubmitFunc hands one card identifier to the table it was published for.
type SubmitFunc func(ctx context.Context, tableID, card string) error

// NATSFeed forwards card messages published on <prefix>.<table_id>.cards.
// The payload is either the bare identifier or {"card": "..."}.
type NATSFeed struct {
	prefix  string
	submit  SubmitFunc
	timeout time.Duration
	sub     *natsgo.Subscription
}

type natsCardMessage struct {
	Card string `json:"card"`
}

// natsReply answers publishers that asked for one.
type natsReply struct {
	Accepted bool   `json:"accepted"`
	Error    string `json:"error,omitempty"`
}

func SubscribeNATS(nc *natsgo.Conn, prefix string, submit SubmitFunc) (*NATSFeed, error) {
	if nc == nil {
		return nil, errors.New("nats connection is required")
	}
	if submit == nil {
		return nil, errors.New("submit func is required")
	}
	prefix = strings.Trim(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		prefix = "sueca"
	}
	f := &NATSFeed{prefix: prefix, submit: submit, timeout: 5 * time.Second}
	subject := f.Subject("*")
	sub, err := nc.Subscribe(subject, f.handle)
	if err != nil {
		return nil, err
	}
	f.sub = sub
	natsLogger.Info().Str("subject", subject).Msg("listening for card messages")
	return f, nil
}

// Subject is the subject cards for tableID are published on.
func (f *NATSFeed) Subject(tableID string) string {
	return f.prefix + "." + tableID + ".cards"
}

func (f *NATSFeed) Close() error {
	if f == nil || f.sub == nil {
		return nil
	}
	return f.sub.Unsubscribe()
}

func (f *NATSFeed) handle(msg *natsgo.Msg) {
	tableID, card, err := decodeNATSCard(f.prefix, msg.Subject, msg.Data)
	if err != nil {
		natsLogger.Warn().Err(err).Str("subject", msg.Subject).Msg("drop card message")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()
	err = f.submit(ctx, tableID, card)
	if err != nil {
		natsLogger.Warn().Err(err).Str("table_id", tableID).Str("card", card).Msg("submit card failed")
	}
	if msg.Reply == "" {
		return
	}
	reply := natsReply{Accepted: err == nil}
	if err != nil {
		reply.Error = err.Error()
	}
	raw, _ := json.Marshal(reply)
	_ = msg.Respond(raw)
}

func decodeNATSCard(prefix, subject string, data []byte) (string, string, error) {
	rest, ok := strings.CutPrefix(subject, prefix+".")
	if !ok {
		return "", "", errors.New("unexpected subject")
	}
	tableID, ok := strings.CutSuffix(rest, ".cards")
	if !ok || tableID == "" || strings.Contains(tableID, ".") {
		return "", "", errors.New("unexpected subject")
	}
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var m natsCardMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return "", "", err
		}
		data = []byte(strings.TrimSpace(m.Card))
	}
	if len(data) == 0 {
		return "", "", errors.New("empty card")
	}
	return tableID, string(data), nil
}
