// internal/agents/core/data-generator/config.go
package datagenerator

import "time"

type Config struct {
	// Timeout bounds one generation call on top of the model's own timeout.
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 60 * time.Second,
	}
}
