// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var supportedCompanies = map[string]bool{
	"openai": true,
	"google": true,
}

func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional per-environment overlay

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	// Zero is a valid ratio, so this default cannot be a zero check.
	v.SetDefault("tracing.sample_ratio", 1.0)
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideFromEnv(&cfg)
	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			// Unset variables expand to "" so validation sees them as missing.
			if expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideFromEnv applies the conventional environment names on top of the
// file configuration. Env always wins when set.
func overrideFromEnv(cfg *Config) {
	tiers := []struct {
		prefix string
		spec   *ModelSpec
	}{
		{"FAST", &cfg.Models.Fast},
		{"STANDARD", &cfg.Models.Standard},
		{"SMART", &cfg.Models.Smart},
	}
	for _, t := range tiers {
		setString(&t.spec.Company, t.prefix+"_MODEL_COMPANY")
		setString(&t.spec.Name, t.prefix+"_MODEL_NAME")
		setFloat(&t.spec.Temperature, t.prefix+"_MODEL_TEMPERATURE")
	}

	setString(&cfg.Providers.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&cfg.Providers.OpenAI.BaseURL, "OPENAI_BASE_URL")
	setString(&cfg.Providers.Google.APIKey, "GOOGLE_API_KEY")

	setString(&cfg.APIs.Amadeus.ClientID, "AMADEUS_CLIENT_ID")
	setString(&cfg.APIs.Amadeus.ClientSecret, "AMADEUS_CLIENT_SECRET")
	setString(&cfg.APIs.Places.APIKey, "GOOGLE_PLACES_API_KEY")

	setBool(&cfg.Features.UseExternalSearch, "USE_EXTERNAL_SEARCH")
	setBool(&cfg.Features.GenerateSummaries, "GENERATE_SUMMARIES")

	setString(&cfg.Database.Redis.Address, "REDIS_ADDRESS")
	setString(&cfg.Database.Redis.Password, "REDIS_PASSWORD")

	setBool(&cfg.Tracing.Enabled, "TRACING_ENABLED")
	setString(&cfg.Tracing.JaegerEndpoint, "JAEGER_ENDPOINT")
}

func setString(dst *string, key string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func setFloat(dst *float64, key string) {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "travel-agents"
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 120000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10000
	}

	if cfg.Providers.OpenAI.BaseURL == "" {
		cfg.Providers.OpenAI.BaseURL = "https://api.openai.com/v1"
	}

	if cfg.APIs.LLM.Timeout == 0 {
		cfg.APIs.LLM.Timeout = 60000
	}

	if cfg.APIs.Amadeus.BaseURL == "" {
		cfg.APIs.Amadeus.BaseURL = "https://test.api.amadeus.com"
	}
	if cfg.APIs.Amadeus.TokenBuffer == 0 {
		cfg.APIs.Amadeus.TokenBuffer = 5 * 60 * 1000
	}
	if cfg.APIs.Amadeus.MaxResults == 0 {
		cfg.APIs.Amadeus.MaxResults = 5
	}
	if cfg.APIs.Amadeus.Timeout == 0 {
		cfg.APIs.Amadeus.Timeout = 20000
	}

	if cfg.APIs.Places.BaseURL == "" {
		cfg.APIs.Places.BaseURL = "https://places.googleapis.com/v1"
	}
	if cfg.APIs.Places.RadiusM == 0 {
		cfg.APIs.Places.RadiusM = 10000
	}
	if cfg.APIs.Places.MaxResults == 0 {
		cfg.APIs.Places.MaxResults = 10
	}
	if cfg.APIs.Places.Timeout == 0 {
		cfg.APIs.Places.Timeout = 10000
	}

	if cfg.APIs.Wikipedia.BaseURL == "" {
		cfg.APIs.Wikipedia.BaseURL = "https://en.wikipedia.org/w/api.php"
	}
	if cfg.APIs.Wikipedia.UserAgent == "" {
		cfg.APIs.Wikipedia.UserAgent = "travel-agents/1.0"
	}
	if cfg.APIs.Wikipedia.Timeout == 0 {
		cfg.APIs.Wikipedia.Timeout = 10000
	}

	if cfg.Features.TipsCache.TTL == 0 {
		cfg.Features.TipsCache.TTL = 24 * 60 * 60 * 1000
	}

	if cfg.Agents.MaxToolIterations == 0 {
		cfg.Agents.MaxToolIterations = 6
	}
	if cfg.Agents.TurnTimeout == 0 {
		cfg.Agents.TurnTimeout = 90000
	}
	if cfg.Agents.TipsTimeout == 0 {
		cfg.Agents.TipsTimeout = 60000
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// validateConfig validates critical configuration fields. Anything missing
// here is a startup failure, never a per-request one.
func validateConfig(cfg *Config) error {
	usesCompany := map[string]bool{}
	for tier, spec := range cfg.Models.Tiers() {
		if spec.Company == "" {
			return fmt.Errorf("models.%s.company is required", tier)
		}
		if spec.Name == "" {
			return fmt.Errorf("models.%s.name is required", tier)
		}
		if !supportedCompanies[spec.Company] {
			return fmt.Errorf("models.%s.company %q is not supported", tier, spec.Company)
		}
		usesCompany[spec.Company] = true
	}

	if usesCompany["openai"] && cfg.Providers.OpenAI.APIKey == "" {
		return fmt.Errorf("providers.openai.api_key is required")
	}
	if usesCompany["google"] && cfg.Providers.Google.APIKey == "" {
		return fmt.Errorf("providers.google.api_key is required")
	}

	if cfg.APIs.Amadeus.ClientID == "" || cfg.APIs.Amadeus.ClientSecret == "" {
		return fmt.Errorf("apis.amadeus.client_id and client_secret are required")
	}

	if cfg.Features.UseExternalSearch && cfg.APIs.Places.APIKey == "" {
		return fmt.Errorf("apis.places.api_key is required when features.use_external_search is enabled")
	}

	if cfg.Features.TipsCache.Enabled && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when features.tips_cache is enabled")
	}

	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		return fmt.Errorf("tracing.sample_ratio must be between 0 and 1")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
