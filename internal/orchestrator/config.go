// internal/orchestrator/config.go
package orchestrator

import "time"

type Config struct {
	// UseExternalSearch enables coordinate resolution before places nodes.
	UseExternalSearch bool
	// TurnTimeout bounds one whole turn. Zero means no limit.
	TurnTimeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		UseExternalSearch: false,
		TurnTimeout:       120 * time.Second,
	}
}
