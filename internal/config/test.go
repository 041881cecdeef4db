package config

import "github.com/caarlos0/env/v11"

// TestConfig points integration tests at live services. A test skips when
// the service it needs is left unset.
type TestConfig struct {
	PostgresDSN string `env:"TEST_POSTGRES_DSN"`
	NATSURL     string `env:"TEST_NATS_URL"`
}

func LoadTest() (TestConfig, error) {
	var cfg TestConfig
	err := env.Parse(&cfg)
	return cfg, err
}
