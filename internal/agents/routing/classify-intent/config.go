// internal/agents/routing/classify-intent/config.go
package classifyintent

type Config struct {
	// WindowSize is how many recent messages the classifier sees.
	WindowSize int
	// ToolPreviewChars caps how much of a tool result is shown.
	ToolPreviewChars int
}

func LoadConfig() *Config {
	return &Config{
		WindowSize:       6,
		ToolPreviewChars: 200,
	}
}
