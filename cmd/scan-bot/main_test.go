package main

import (
	"strings"
	"testing"
)

func TestReadCardsSkipsCommentsAndBlanks(t *testing.T) {
	cards, err := readCards(strings.NewReader("# deal 1\nA♥\n\n 2C \n# done\n"))
	if err != nil {
		t.Fatalf("read cards: %v", err)
	}
	if len(cards) != 2 || cards[0] != "A♥" || cards[1] != "2C" {
		t.Fatalf("cards = %q", cards)
	}
}

func TestTableURL(t *testing.T) {
	got, err := tableURL("ws://localhost:8080/ws", "01JTABLE")
	if err != nil {
		t.Fatalf("table url: %v", err)
	}
	if got != "ws://localhost:8080/ws?table_id=01JTABLE" {
		t.Fatalf("url = %s", got)
	}
	if _, err := tableURL("http://localhost:8080/ws", "t"); err == nil {
		t.Fatal("expected error for non-websocket scheme")
	}
}
