package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"sueca-referee/internal/config"
)

var (
	mu     sync.RWMutex
	output io.Writer = os.Stdout
	file   *rotatingFile
)

// Init configures the global zerolog logger. It may be called again to
// reconfigure; a previously opened log file is closed.
func Init(cfg config.LogConfig) {
	level := zerolog.InfoLevel
	if v := strings.TrimSpace(cfg.Level); v != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = parsed
		}
	}

	var sink io.Writer = os.Stdout
	var fileErr error
	var w *rotatingFile
	if cfg.File != "" {
		w, fileErr = openRotatingFile(cfg.File, cfg.MaxMB, cfg.Backups)
		if fileErr == nil {
			sink = io.MultiWriter(os.Stdout, w)
		}
	}

	mu.Lock()
	if file != nil {
		_ = file.Close()
	}
	file = w
	output = sink
	mu.Unlock()

	var console io.Writer = sink
	if cfg.Pretty {
		console = zerolog.ConsoleWriter{Out: sink}
	}

	zerolog.SetGlobalLevel(level)
	ctx := zerolog.New(console).With().Timestamp()
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	logger := ctx.Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger
	if fileErr != nil {
		log.Warn().Err(fileErr).Str("path", cfg.File).Msg("log file disabled")
	}
}

// Writer is the raw sink the global logger writes to, for other loggers
// (HTTP access logs) that should land in the same place.
func Writer() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return output
}

func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if file == nil {
		return nil
	}
	err := file.Close()
	file = nil
	output = os.Stdout
	return err
}
