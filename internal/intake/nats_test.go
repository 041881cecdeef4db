package intake

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"sueca-referee/internal/store"
	"sueca-referee/internal/testutil"
)

func TestDecodeNATSCard(t *testing.T) {
	cases := []struct {
		subject string
		data    string
		table   string
		card    string
		wantErr bool
	}{
		{subject: "sueca.t1.cards", data: "A♣", table: "t1", card: "A♣"},
		{subject: "sueca.t1.cards", data: ` {"card":" 7h "} `, table: "t1", card: "7h"},
		{subject: "sueca.t1.cards", data: "", wantErr: true},
		{subject: "sueca.t1.cards", data: `{"card":`, wantErr: true},
		{subject: "other.t1.cards", data: "A♣", wantErr: true},
		{subject: "sueca.a.b.cards", data: "A♣", wantErr: true},
		{subject: "sueca.t1.scan", data: "A♣", wantErr: true},
	}
	for _, tc := range cases {
		table, card, err := decodeNATSCard("sueca", tc.subject, []byte(tc.data))
		if tc.wantErr {
			if err == nil {
				t.Fatalf("decodeNATSCard(%q, %q) expected error", tc.subject, tc.data)
			}
			continue
		}
		if err != nil {
			t.Fatalf("decodeNATSCard(%q, %q) error = %v", tc.subject, tc.data, err)
		}
		if table != tc.table || card != tc.card {
			t.Fatalf("decodeNATSCard(%q) = %q, %q; want %q, %q", tc.subject, table, card, tc.table, tc.card)
		}
	}
}

func TestSubscribeNATSRequiresConnection(t *testing.T) {
	if _, err := SubscribeNATS(nil, "sueca", nil); err == nil {
		t.Fatal("expected error for nil connection")
	}
}

func TestNATSFeedSubmitsAndReplies(t *testing.T) {
	nc := testutil.ConnectTestNATS(t)
	prefix := "sueca_test_" + strings.ToLower(store.NewID())

	var mu sync.Mutex
	var got []string
	feed, err := SubscribeNATS(nc, prefix, func(_ context.Context, tableID, card string) error {
		if tableID == "closed" {
			return errors.New("table_closed")
		}
		mu.Lock()
		defer mu.Unlock()
		got = append(got, tableID+"/"+card)
		return nil
	})
	if err != nil {
		t.Fatalf("SubscribeNATS() error = %v", err)
	}
	defer feed.Close()

	msg, err := nc.Request(feed.Subject("t1"), []byte(`{"card":"A♥"}`), 2*time.Second)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	var reply natsReply
	if err := json.Unmarshal(msg.Data, &reply); err != nil || !reply.Accepted {
		t.Fatalf("reply = %s (%v)", msg.Data, err)
	}

	msg, err = nc.Request(feed.Subject("closed"), []byte("2C"), 2*time.Second)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	reply = natsReply{}
	if err := json.Unmarshal(msg.Data, &reply); err != nil || reply.Accepted || reply.Error != "table_closed" {
		t.Fatalf("reply = %s (%v)", msg.Data, err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0] != "t1/A♥" {
		t.Fatalf("submitted = %q", got)
	}
}
