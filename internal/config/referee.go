package config

import "github.com/caarlos0/env/v11"

// RefereeConfig drives the single-table command line referee.
type RefereeConfig struct {
	CardsFile   string `env:"CARDS_FILE"`
	DrainPolicy string `env:"DRAIN_POLICY" envDefault:"remaining"`
	RevealTrump bool   `env:"REVEAL_TRUMP" envDefault:"false"`
}

func LoadReferee() (RefereeConfig, error) {
	var cfg RefereeConfig
	err := env.Parse(&cfg)
	return cfg, err
}
