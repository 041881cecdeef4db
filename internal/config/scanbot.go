package config

import "github.com/caarlos0/env/v11"

type ScanBotConfig struct {
	WSURL      string `env:"WS_URL" envDefault:"ws://localhost:8080/ws"`
	TableID    string `env:"TABLE_ID,required,notEmpty"`
	CardsFile  string `env:"CARDS_FILE"`
	IntervalMs int    `env:"INTERVAL_MS" envDefault:"250"`
}

func LoadScanBot() (ScanBotConfig, error) {
	var cfg ScanBotConfig
	err := env.Parse(&cfg)
	return cfg, err
}
