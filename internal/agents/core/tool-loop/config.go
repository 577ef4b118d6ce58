// internal/agents/core/tool-loop/config.go
package toolloop

type Config struct {
	MaxIterations int
}

func LoadConfig() *Config {
	return &Config{
		MaxIterations: 6,
	}
}
