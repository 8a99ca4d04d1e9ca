package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

const (
	defaultBaseBet     = 100
	defaultTurnSeconds = 20
	defaultBotDelay    = 15
)

type BetTier struct {
	ID      string `json:"id"`
	BaseBet int64  `json:"base_bet"`
}

type GameConfig struct {
	DefaultTier string    `json:"default_tier"`
	Tiers       []BetTier `json:"tiers"`
	// TurnDurationSeconds bounds how long a player may sit on their turn
	// before the table acts for them.
	TurnDurationSeconds int `json:"turn_duration_seconds"`
	// BotAutoFillDelaySeconds configures how many seconds a solo human
	// waits in the lobby before a bot is seated.
	BotAutoFillDelaySeconds int `json:"bot_auto_fill_delay_seconds"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		var c GameConfig
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the global game configuration.
func GetGameConfig() *GameConfig {
	return cfg
}

// GetBaseBet returns the base bet for a given tier ID, or the default
// tier's bet when the ID is empty or unknown.
func GetBaseBet(tierID string) int64 {
	if cfg == nil {
		return defaultBaseBet
	}

	target := tierID
	if target == "" {
		target = cfg.DefaultTier
	}

	for _, tier := range cfg.Tiers {
		if tier.ID == target {
			return tier.BaseBet
		}
	}
	for _, tier := range cfg.Tiers {
		if tier.ID == cfg.DefaultTier {
			return tier.BaseBet
		}
	}

	return defaultBaseBet
}

// GetTurnDuration returns the per-turn time limit.
func GetTurnDuration() time.Duration {
	if cfg == nil || cfg.TurnDurationSeconds <= 0 {
		return defaultTurnSeconds * time.Second
	}
	return time.Duration(cfg.TurnDurationSeconds) * time.Second
}

// GetBotAutoFillDelay returns how long a lone player waits before a bot
// is seated at the table.
func GetBotAutoFillDelay() time.Duration {
	if cfg == nil || cfg.BotAutoFillDelaySeconds <= 0 {
		return defaultBotDelay * time.Second
	}
	return time.Duration(cfg.BotAutoFillDelaySeconds) * time.Second
}
