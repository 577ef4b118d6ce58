// internal/agents/travel/flight-search/config.go
package flightsearch

import "time"

type Config struct {
	MaxToolIterations int
	GenerateSummaries bool
	// Now is used to anchor relative dates in the prompt.
	Now func() time.Time
}

func LoadConfig() *Config {
	return &Config{
		MaxToolIterations: 6,
		GenerateSummaries: true,
		Now:               time.Now,
	}
}
