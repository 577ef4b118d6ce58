// internal/agents/content/destination-tips/config.go
package destinationtips

import "time"

type Config struct {
	// Timeout bounds the encyclopedia-grounded pipeline. Fallbacks run on
	// the caller's context.
	Timeout      time.Duration
	CacheEnabled bool
	CacheTTL     time.Duration
	// MaxSourceChars caps the source text sent per category.
	MaxSourceChars int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:        60 * time.Second,
		CacheEnabled:   false,
		CacheTTL:       24 * time.Hour,
		MaxSourceChars: 6000,
	}
}
