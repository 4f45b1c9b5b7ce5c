package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func TestPickModel(t *testing.T) {
	models := []string{"big", "small"}

	tests := []struct {
		name    string
		models  []string
		attempt int
		want    string
	}{
		{"first attempt", models, 0, "big"},
		{"second attempt", models, 1, "small"},
		{"past the end stays on last", models, 5, "small"},
		{"negative clamps to first", models, -1, "big"},
		{"empty list", nil, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pickModel(tt.models, tt.attempt); got != tt.want {
				t.Errorf("pickModel(%v, %d) = %q, want %q", tt.models, tt.attempt, got, tt.want)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			"status and body",
			&Error{Provider: NameOpenAI, Status: 429, Body: "quota exceeded"},
			"openai API error (status 429): quota exceeded",
		},
		{
			"wrapped error only",
			&Error{Provider: NameGemini, Err: errors.New("connection refused")},
			"gemini API error: connection refused",
		},
		{
			"status only",
			&Error{Provider: NameOpenAI, Status: 500},
			"openai API error (status 500)",
		},
		{
			"missing credential",
			&CredentialError{Provider: NameGemini, EnvVar: "PAPERGEN_GEMINI_API_KEY"},
			"gemini API key not configured (set PAPERGEN_GEMINI_API_KEY)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &Error{Provider: NameOpenAI, Err: inner}
	if !errors.Is(err, inner) {
		t.Error("Error should unwrap to its inner error")
	}
}

func TestMapOpenAIError(t *testing.T) {
	apiErr := &openai.APIError{
		HTTPStatusCode: http.StatusPaymentRequired,
		Message:        "insufficient funds",
	}
	got := mapOpenAIError(fmt.Errorf("request failed: %w", apiErr))

	var provErr *Error
	if !errors.As(got, &provErr) {
		t.Fatalf("mapOpenAIError returned %T, want *Error", got)
	}
	if provErr.Status != http.StatusPaymentRequired {
		t.Errorf("Status = %d, want %d", provErr.Status, http.StatusPaymentRequired)
	}
	if provErr.Body != "insufficient funds" {
		t.Errorf("Body = %q, want the API message", provErr.Body)
	}

	// Non-API errors keep the cause without inventing a status.
	cause := errors.New("dial tcp: timeout")
	got = mapOpenAIError(cause)
	if !errors.As(got, &provErr) {
		t.Fatalf("mapOpenAIError returned %T, want *Error", got)
	}
	if provErr.Status != 0 || !errors.Is(got, cause) {
		t.Errorf("got %+v, want wrapped cause with no status", provErr)
	}
}

func TestMockClientFIFO(t *testing.T) {
	boom := errors.New("boom")
	m := NewMock(NameOpenAI,
		MockResponse{Text: "first"},
		MockResponse{Err: boom},
		MockResponse{Text: "third"},
	)

	ctx := context.Background()

	if got, err := m.Complete(ctx, "p1", 0); err != nil || got != "first" {
		t.Errorf("call 1 = (%q, %v), want (first, nil)", got, err)
	}
	if _, err := m.Complete(ctx, "p2", 1); !errors.Is(err, boom) {
		t.Errorf("call 2 error = %v, want boom", err)
	}
	if got, err := m.Complete(ctx, "p3", 0); err != nil || got != "third" {
		t.Errorf("call 3 = (%q, %v), want (third, nil)", got, err)
	}

	// An exhausted queue reports a provider error, not a panic.
	_, err := m.Complete(ctx, "p4", 0)
	var provErr *Error
	if !errors.As(err, &provErr) || provErr.Status != http.StatusServiceUnavailable {
		t.Errorf("exhausted queue error = %v, want 503 provider error", err)
	}

	calls := m.Calls()
	if len(calls) != 4 {
		t.Fatalf("recorded %d calls, want 4", len(calls))
	}
	if calls[1].Prompt != "p2" || calls[1].Attempt != 1 {
		t.Errorf("call 2 recorded as %+v", calls[1])
	}
	if m.CallCount() != 4 {
		t.Errorf("CallCount() = %d, want 4", m.CallCount())
	}
}

func TestOpenAIMissingKey(t *testing.T) {
	c := NewOpenAI(OpenAIConfig{Models: []string{"gpt-4o"}}, 256, 0.7)

	_, err := c.Complete(context.Background(), "prompt", 0)
	var credErr *CredentialError
	if !errors.As(err, &credErr) {
		t.Fatalf("Complete without key = %v, want CredentialError", err)
	}
	if credErr.Provider != NameOpenAI {
		t.Errorf("Provider = %q, want openai", credErr.Provider)
	}
}

func TestGeminiMissingKey(t *testing.T) {
	c, err := NewGemini(context.Background(), GeminiConfig{Models: []string{"gemini-2.0-flash"}}, 256, 0.7)
	if err != nil {
		t.Fatalf("NewGemini without key: %v", err)
	}

	_, err = c.Complete(context.Background(), "prompt", 0)
	var credErr *CredentialError
	if !errors.As(err, &credErr) {
		t.Fatalf("Complete without key = %v, want CredentialError", err)
	}
	if credErr.Provider != NameGemini {
		t.Errorf("Provider = %q, want gemini", credErr.Provider)
	}
}
