package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type LogConfig struct {
	Level       string `env:"LOG_LEVEL" envDefault:"info"`
	Pretty      bool   `env:"LOG_PRETTY" envDefault:"false"`
	SampleEvery int    `env:"LOG_SAMPLE_EVERY" envDefault:"0"`
	// Caller adds file:line to every line; useful when chasing a verdict.
	Caller  bool   `env:"LOG_CALLER" envDefault:"false"`
	File    string `env:"LOG_FILE"`
	MaxMB   int    `env:"LOG_MAX_MB" envDefault:"10"`
	Backups int    `env:"LOG_BACKUPS" envDefault:"1"`
	// AccessLog toggles the per-request HTTP log lines.
	AccessLog bool `env:"LOG_HTTP_ACCESS" envDefault:"true"`
}

func LoadLog() (LogConfig, error) {
	cfg, err := env.ParseAs[LogConfig]()
	if err != nil {
		return LogConfig{}, err
	}
	if cfg.File != "" && (cfg.MaxMB < 1 || cfg.Backups < 0) {
		return LogConfig{}, fmt.Errorf("LOG_MAX_MB must be >= 1 and LOG_BACKUPS >= 0, got %d and %d", cfg.MaxMB, cfg.Backups)
	}
	return cfg, nil
}
