package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anupamd/papergen/internal/model"
	"github.com/anupamd/papergen/internal/provider"
)

// MalformedResponseError indicates provider output that survived extraction
// but still failed to parse as JSON. Treated like a provider error for retry
// purposes.
type MalformedResponseError struct {
	Provider string
	Err      error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed %s response: %v", e.Provider, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// SubjectConfig configures per-subject generation.
type SubjectConfig struct {
	// Preferences maps a subject name to its preferred provider. Subjects
	// not listed fall back to a category default.
	Preferences map[string]string

	// MaxAttempts bounds the retry loop across providers.
	MaxAttempts int

	// Backoff is the delay before each retry attempt.
	Backoff time.Duration
}

// DefaultPreferences routes language and reasoning subjects to Gemini and
// technical/quantitative subjects to the OpenAI-convention provider.
func DefaultPreferences() map[string]string {
	return map[string]string{
		"General Awareness":                provider.NameGemini,
		"General Intelligence & Reasoning": provider.NameGemini,
		"English Language":                 provider.NameGemini,
		"Mathematics":                      provider.NameOpenAI,
		"General Science":                  provider.NameOpenAI,
	}
}

// SubjectGenerator produces the question batch for a single subject:
// pick a provider, call it, extract, parse, normalize; retry once against
// the other provider on failure; synthesize placeholders when both fail.
type SubjectGenerator struct {
	clients map[string]provider.Client
	cfg     SubjectConfig
}

// NewSubjectGenerator creates a SubjectGenerator over the given clients,
// keyed by provider name.
func NewSubjectGenerator(clients map[string]provider.Client, cfg SubjectConfig) *SubjectGenerator {
	if cfg.Preferences == nil {
		cfg.Preferences = DefaultPreferences()
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 2
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 500 * time.Millisecond
	}
	return &SubjectGenerator{clients: clients, cfg: cfg}
}

// Generate returns exactly subject.Marks canonical questions. It never
// fails: exhausting the retry budget yields a placeholder-filled batch of
// the same length, so one subject's outage cannot sink the whole paper.
func (g *SubjectGenerator) Generate(ctx context.Context, subject model.Subject, category model.Category) []model.Question {
	primary := g.providerFor(subject.Name, category)
	order := []string{primary, otherProvider(primary)}

	var attemptErrs []error
	for attempt := 0; attempt < g.cfg.MaxAttempts; attempt++ {
		name := order[attempt%len(order)]

		if attempt > 0 {
			select {
			case <-ctx.Done():
				attemptErrs = append(attemptErrs, ctx.Err())
				return g.placeholders(subject, category, errors.Join(attemptErrs...))
			case <-time.After(g.cfg.Backoff):
			}
		}

		client, ok := g.clients[name]
		if !ok {
			attemptErrs = append(attemptErrs, fmt.Errorf("no %q provider configured", name))
			continue
		}

		questions, err := g.attempt(ctx, client, subject, category, attempt)
		if err != nil {
			slog.Warn("subject generation attempt failed",
				"subject", subject.Name,
				"provider", name,
				"attempt", attempt,
				"error", err,
			)
			attemptErrs = append(attemptErrs, err)
			continue
		}
		return g.fit(questions, subject, category)
	}

	slog.Error("subject generation exhausted all providers, using placeholders",
		"subject", subject.Name,
		"attempts", g.cfg.MaxAttempts,
	)
	return g.placeholders(subject, category, errors.Join(attemptErrs...))
}

// attempt runs one provider call end to end: prompt, complete, extract,
// parse, normalize.
func (g *SubjectGenerator) attempt(ctx context.Context, client provider.Client, subject model.Subject, category model.Category, attempt int) ([]model.Question, error) {
	prompt := buildPrompt(subject, category)

	raw, err := client.Complete(ctx, prompt, attempt)
	if err != nil {
		return nil, err
	}

	var parsed any
	if err := json.Unmarshal([]byte(ExtractJSON(raw)), &parsed); err != nil {
		return nil, &MalformedResponseError{Provider: client.Name(), Err: err}
	}

	return Normalize(parsed, subject.Name, category), nil
}

func (g *SubjectGenerator) providerFor(subjectName string, category model.Category) string {
	if name, ok := g.cfg.Preferences[subjectName]; ok {
		return name
	}
	if category == model.CategoryTechnical {
		return provider.NameOpenAI
	}
	return provider.NameGemini
}

func otherProvider(name string) string {
	if name == provider.NameOpenAI {
		return provider.NameGemini
	}
	return provider.NameOpenAI
}

// fit forces a batch to exactly subject.Marks records: surplus is dropped,
// shortfall is topped up with placeholders.
func (g *SubjectGenerator) fit(questions []model.Question, subject model.Subject, category model.Category) []model.Question {
	if len(questions) >= subject.Marks {
		return questions[:subject.Marks]
	}
	short := fmt.Errorf("provider returned %d of %d questions", len(questions), subject.Marks)
	for i := len(questions); i < subject.Marks; i++ {
		questions = append(questions, g.placeholder(subject, category, i, short))
	}
	return questions
}

// placeholders synthesizes a full batch after all attempts failed. The
// records are valid canonical questions, flagged as synthetic through their
// text and explanation.
func (g *SubjectGenerator) placeholders(subject model.Subject, category model.Category, reason error) []model.Question {
	out := make([]model.Question, subject.Marks)
	for i := range out {
		out[i] = g.placeholder(subject, category, i, reason)
	}
	return out
}

func (g *SubjectGenerator) placeholder(subject model.Subject, category model.Category, i int, reason error) model.Question {
	topic := subject.Name
	if len(subject.Topics) > 0 {
		topic = subject.Topics[i%len(subject.Topics)]
	}
	return model.Question{
		QuestionText: fmt.Sprintf("Question about %s in %s?", topic, subject.Name),
		Options: model.Options{
			A: "Option A",
			B: "Option B",
			C: "Option C",
			D: "Option D",
		},
		CorrectAnswer: "a",
		Explanation:   fmt.Sprintf("Auto-generated placeholder: %v", reason),
		Category:      category,
		Subject:       subject.Name,
		Difficulty:    model.DifficultyMedium,
		Marks:         1,
	}
}
