package provider

// Config holds all provider configuration. It is constructed once at process
// start (from flags and environment) and passed by reference into everything
// that talks to a provider; nothing reads the environment after startup.
type Config struct {
	OpenAI OpenAIConfig
	Gemini GeminiConfig

	// MaxTokens caps the completion length of every request.
	MaxTokens int

	// Temperature controls sampling randomness for every request.
	Temperature float64
}

// OpenAIConfig configures the OpenAI-convention client. BaseURL may point at
// any OpenAI-compatible endpoint.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string

	// Models is tried in order by attempt index; keep the preferred model
	// first and a cheaper fallback after it.
	Models []string
}

// GeminiConfig configures the Gemini client.
type GeminiConfig struct {
	APIKey string
	Models []string
}

// DefaultConfig returns a Config with sensible defaults; API keys must still
// be supplied by the caller.
func DefaultConfig() Config {
	return Config{
		OpenAI: OpenAIConfig{
			Models: []string{"gpt-4o", "gpt-4o-mini"},
		},
		Gemini: GeminiConfig{
			Models: []string{"gemini-2.0-flash", "gemini-2.0-flash-lite"},
		},
		MaxTokens:   4096,
		Temperature: 0.7,
	}
}
