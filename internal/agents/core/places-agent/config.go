// internal/agents/core/places-agent/config.go
package placesagent

type Config struct {
	UseExternalSearch bool
	GenerateSummaries bool
}

func LoadConfig() *Config {
	return &Config{
		UseExternalSearch: false,
		GenerateSummaries: true,
	}
}
