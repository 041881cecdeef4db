package config

import (
	"fmt"
	"time"

	"sueca-referee/internal/game"
)

type AppConfig struct {
	Server ServerConfig
	Log    LogConfig
}

func LoadApp() (AppConfig, error) {
	logCfg, err := LoadLog()
	if err != nil {
		return AppConfig{}, err
	}
	serverCfg, err := LoadServer()
	if err != nil {
		return AppConfig{}, err
	}
	if _, err := game.ParseDrainPolicy(serverCfg.DrainPolicy); err != nil {
		return AppConfig{}, fmt.Errorf("DRAIN_POLICY: %w", err)
	}
	return AppConfig{
		Server: serverCfg,
		Log:    logCfg,
	}, nil
}

// TableRules is the rule set every table created by the server plays with.
func (c ServerConfig) TableRules() (game.Rules, game.DrainPolicy) {
	drain, err := game.ParseDrainPolicy(c.DrainPolicy)
	if err != nil {
		drain = game.DrainRemaining
	}
	return game.Rules{RevealTrump: c.RevealTrump}, drain
}

func (c ServerConfig) IdleTimeout() time.Duration {
	if c.TableIdleTimeoutMs <= 0 {
		return 0
	}
	return time.Duration(c.TableIdleTimeoutMs) * time.Millisecond
}
