package provider

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// GeminiClient implements Client using the Google Gemini API.
type GeminiClient struct {
	client    *genai.Client
	models    []string
	maxTokens int
	temp      float64
}

// NewGemini creates a Gemini client. Like NewOpenAI, a missing API key is
// deferred to call time so the process still starts with one provider
// unconfigured.
func NewGemini(ctx context.Context, cfg GeminiConfig, maxTokens int, temperature float64) (*GeminiClient, error) {
	c := &GeminiClient{
		models:    cfg.Models,
		maxTokens: maxTokens,
		temp:      temperature,
	}
	if cfg.APIKey == "" {
		return c, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	c.client = client
	return c, nil
}

func (c *GeminiClient) Name() string { return NameGemini }

func (c *GeminiClient) Complete(ctx context.Context, prompt string, attempt int) (string, error) {
	if c.client == nil {
		return "", &CredentialError{Provider: NameGemini, EnvVar: "PAPERGEN_GEMINI_API_KEY"}
	}

	temp := float32(c.temp)
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(c.maxTokens),
		Temperature:     &temp,
	}
	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: prompt}}},
	}

	result, err := c.client.Models.GenerateContent(ctx, pickModel(c.models, attempt), contents, config)
	if err != nil {
		return "", mapGeminiError(err)
	}

	text := result.Text()
	if text == "" {
		return "", &Error{
			Provider: NameGemini,
			Err:      fmt.Errorf("response contained no text"),
		}
	}
	return text, nil
}

func mapGeminiError(err error) error {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		return &Error{
			Provider: NameGemini,
			Status:   apiErr.Code,
			Body:     apiErr.Message,
			Err:      err,
		}
	}
	return &Error{Provider: NameGemini, Err: err}
}
