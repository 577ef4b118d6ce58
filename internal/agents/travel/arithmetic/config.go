// internal/agents/travel/arithmetic/config.go
package arithmetic

type Config struct {
	MaxToolIterations int
	GenerateSummaries bool
}

func LoadConfig() *Config {
	return &Config{
		MaxToolIterations: 6,
		GenerateSummaries: true,
	}
}
