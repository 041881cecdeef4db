package config

import (
	"strings"

	"github.com/caarlos0/env/v11"
)

type ServerConfig struct {
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
	PostgresDSN string `env:"POSTGRES_DSN"`

	AdminAPIKey string `env:"ADMIN_API_KEY"`

	NATSURL           string `env:"NATS_URL"`
	NATSSubjectPrefix string `env:"NATS_SUBJECT_PREFIX" envDefault:"sueca"`

	TableIdleTimeoutMs int64   `env:"TABLE_IDLE_TIMEOUT_MS" envDefault:"1800000"`
	EventBufferSize    int     `env:"EVENT_BUFFER_SIZE" envDefault:"500"`
	IntakeBuffer       int     `env:"INTAKE_BUFFER" envDefault:"64"`
	DrainPolicy        string  `env:"DRAIN_POLICY" envDefault:"remaining"`
	RevealTrump        bool    `env:"REVEAL_TRUMP" envDefault:"false"`
	ScanMinConfidence  float64 `env:"SCAN_MIN_CONFIDENCE" envDefault:"0"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	SpectatorPushEnabled    bool   `env:"SPECTATOR_PUSH_ENABLED" envDefault:"false"`
	SpectatorPushConfigPath string `env:"SPECTATOR_PUSH_CONFIG_PATH"`
	SpectatorPushWorkers    int    `env:"SPECTATOR_PUSH_WORKERS" envDefault:"4"`
	SpectatorPushRetryMax   int    `env:"SPECTATOR_PUSH_RETRY_MAX" envDefault:"3"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	origins := cfg.CORSAllowedOrigins[:0]
	for _, o := range cfg.CORSAllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	cfg.CORSAllowedOrigins = origins
	return cfg, nil
}
