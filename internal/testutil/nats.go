package testutil

import (
	"testing"

	"sueca-referee/internal/config"

	natsgo "github.com/nats-io/nats.go"
)

// ConnectTestNATS dials TEST_NATS_URL, skipping the test when it is unset.
func ConnectTestNATS(t *testing.T) *natsgo.Conn {
	t.Helper()
	cfg, err := config.LoadTest()
	if err != nil {
		t.Fatalf("load test config: %v", err)
	}
	if cfg.NATSURL == "" {
		t.Skip("TEST_NATS_URL not set")
	}
	nc, err := natsgo.Connect(cfg.NATSURL, natsgo.Name("sueca-referee-test"))
	if err != nil {
		t.Fatalf("connect nats: %v", err)
	}
	t.Cleanup(nc.Close)
	return nc
}
