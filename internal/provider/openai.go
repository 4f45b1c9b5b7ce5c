package provider

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient implements Client using the OpenAI chat completions API.
// A custom BaseURL makes it work against any OpenAI-compatible endpoint.
type OpenAIClient struct {
	api       *openai.Client
	models    []string
	maxTokens int
	temp      float64
	haveKey   bool
}

// NewOpenAI creates an OpenAI-convention client. A missing API key is not an
// error here: the client is still constructed and every Complete call fails
// with a CredentialError, so one unconfigured provider only costs the
// subjects routed to it.
func NewOpenAI(cfg OpenAIConfig, maxTokens int, temperature float64) *OpenAIClient {
	apiConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiConfig.BaseURL = cfg.BaseURL
	}
	return &OpenAIClient{
		api:       openai.NewClientWithConfig(apiConfig),
		models:    cfg.Models,
		maxTokens: maxTokens,
		temp:      temperature,
		haveKey:   cfg.APIKey != "",
	}
}

func (c *OpenAIClient) Name() string { return NameOpenAI }

func (c *OpenAIClient) Complete(ctx context.Context, prompt string, attempt int) (string, error) {
	if !c.haveKey {
		return "", &CredentialError{Provider: NameOpenAI, EnvVar: "PAPERGEN_OPENAI_API_KEY"}
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: pickModel(c.models, attempt),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: float32(c.temp),
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", mapOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return "", &Error{
			Provider: NameOpenAI,
			Err:      fmt.Errorf("response contained no choices"),
		}
	}
	return resp.Choices[0].Message.Content, nil
}

func mapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &Error{
			Provider: NameOpenAI,
			Status:   apiErr.HTTPStatusCode,
			Body:     apiErr.Message,
			Err:      err,
		}
	}
	return &Error{Provider: NameOpenAI, Err: err}
}
