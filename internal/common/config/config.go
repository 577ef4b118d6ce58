// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Models    ModelsConfig    `mapstructure:"models"`
	Providers ProvidersConfig `mapstructure:"providers"`
	APIs      APIsConfig      `mapstructure:"apis"`
	Features  FeaturesConfig  `mapstructure:"features"`
	Agents    AgentsConfig    `mapstructure:"agents"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port            int `mapstructure:"port"`
	ReadTimeout     int `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int `mapstructure:"shutdown_timeout"` // milliseconds
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// --- Model tiers ---

// ModelSpec maps one logical tier to a concrete provider and model.
type ModelSpec struct {
	Company     string  `mapstructure:"company"`
	Name        string  `mapstructure:"name"`
	Temperature float64 `mapstructure:"temperature"`
}

type ModelsConfig struct {
	Fast     ModelSpec `mapstructure:"fast"`
	Standard ModelSpec `mapstructure:"standard"`
	Smart    ModelSpec `mapstructure:"smart"`
}

// Tiers returns the tier specs keyed by tier name.
func (m ModelsConfig) Tiers() map[string]ModelSpec {
	return map[string]ModelSpec{
		"fast":     m.Fast,
		"standard": m.Standard,
		"smart":    m.Smart,
	}
}

type ProvidersConfig struct {
	OpenAI struct {
		BaseURL string `mapstructure:"base_url"`
		APIKey  string `mapstructure:"api_key"`
	} `mapstructure:"openai"`

	Google struct {
		APIKey string `mapstructure:"api_key"`
	} `mapstructure:"google"`
}

// --- External APIs ---

// APIsConfig holds settings for external API integrations.
type APIsConfig struct {
	LLM struct {
		Timeout int `mapstructure:"timeout"` // milliseconds, per call
	} `mapstructure:"llm"`

	Amadeus struct {
		BaseURL      string `mapstructure:"base_url"`
		ClientID     string `mapstructure:"client_id"`
		ClientSecret string `mapstructure:"client_secret"`
		TokenBuffer  int    `mapstructure:"token_buffer"` // milliseconds
		MaxResults   int    `mapstructure:"max_results"`
		Timeout      int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"amadeus"`

	Places struct {
		BaseURL    string  `mapstructure:"base_url"`
		APIKey     string  `mapstructure:"api_key"`
		RadiusM    float64 `mapstructure:"radius_m"`
		MaxResults int     `mapstructure:"max_results"`
		Timeout    int     `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"places"`

	Wikipedia struct {
		BaseURL   string `mapstructure:"base_url"`
		UserAgent string `mapstructure:"user_agent"`
		Timeout   int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"wikipedia"`
}

// FeaturesConfig toggles cost/latency trade-offs.
type FeaturesConfig struct {
	UseExternalSearch bool `mapstructure:"use_external_search"`
	GenerateSummaries bool `mapstructure:"generate_summaries"`
	TipsCache         struct {
		Enabled bool `mapstructure:"enabled"`
		TTL     int  `mapstructure:"ttl"` // milliseconds
	} `mapstructure:"tips_cache"`
}

// AgentsConfig holds settings shared by the domain agents.
type AgentsConfig struct {
	MaxToolIterations int `mapstructure:"max_tool_iterations"`
	TurnTimeout       int `mapstructure:"turn_timeout"` // milliseconds
	TipsTimeout       int `mapstructure:"tips_timeout"` // milliseconds
	// RegistryPath overrides the built-in agent catalog when set.
	RegistryPath string `mapstructure:"registry_path"`
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// TracingConfig controls OpenTelemetry spans. Spans are exported to Jaeger
// only when JaegerEndpoint is set.
type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	SampleRatio    float64 `mapstructure:"sample_ratio"`
}
