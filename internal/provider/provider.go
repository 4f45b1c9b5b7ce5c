package provider

import "context"

// Provider names used in subject routing and error reporting.
const (
	NameOpenAI = "openai"
	NameGemini = "gemini"
)

// Client sends a single completion request to one AI provider and returns
// the raw text of the first completion. Implementations carry no retry
// logic; retry and fallback policy live in the generate package.
type Client interface {
	// Name returns the provider name ("openai", "gemini").
	Name() string

	// Complete sends the prompt and returns the provider's raw text output.
	// The attempt index selects the model: later attempts move down the
	// configured model list, so retries can land on a cheaper model when a
	// quota error knocked out the first choice.
	Complete(ctx context.Context, prompt string, attempt int) (string, error)
}

// pickModel selects a model for the given attempt. Attempts past the end of
// the list stay on the last model.
func pickModel(models []string, attempt int) string {
	if len(models) == 0 {
		return ""
	}
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= len(models) {
		attempt = len(models) - 1
	}
	return models[attempt]
}
