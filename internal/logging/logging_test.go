package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"sueca-referee/internal/config"
)

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "referee.log")
	Init(config.LogConfig{Level: "debug", File: path, MaxMB: 1})
	defer Close()

	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Fatalf("GlobalLevel() = %v, want debug", zerolog.GlobalLevel())
	}
	log.Warn().Str("reason", "reneged").Msg("RENUNCIA")
	if _, err := Writer().Write([]byte("{\"msg\":\"access\"}\n")); err != nil {
		t.Fatalf("Writer().Write error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "RENUNCIA") || !strings.Contains(string(data), "access") {
		t.Fatalf("log file missing lines: %s", data)
	}
}

func TestInitFallsBackOnBadLevel(t *testing.T) {
	Init(config.LogConfig{Level: "loud"})
	defer Close()

	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Fatalf("GlobalLevel() = %v, want info", zerolog.GlobalLevel())
	}
	if Writer() != os.Stdout {
		t.Fatal("Writer() should default to stdout")
	}
}
