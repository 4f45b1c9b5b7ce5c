package generate

import (
	"strconv"
	"strings"

	"github.com/anupamd/papergen/internal/model"
)

// Field aliases seen across providers and models, highest priority first.
// Adding a new provider quirk is a line here, not a new branch of logic.
var (
	questionTextKeys = []string{"question_text", "question", "text"}
	answerKeys       = []string{"correct_answer", "answer"}
	explanationKeys  = []string{"explanation", "reason"}
)

// answerLetters is checked in order by normalizeAnswer; first containment
// match wins.
var answerLetters = []string{"a", "b", "c", "d"}

const (
	defaultQuestionText = "Question text missing"
	defaultExplanation  = "No explanation provided."
)

// Normalize maps arbitrary provider-shaped JSON into canonical questions.
// It is total: every JSON-parseable input yields at least one valid record,
// so one malformed question never aborts a subject's batch. Category and
// subject come from the caller, never from the provider; difficulty and
// marks are fixed because providers are not asked to self-rate.
func Normalize(parsed any, subject string, category model.Category) []model.Question {
	items, ok := parsed.([]any)
	if !ok || len(items) == 0 {
		items = []any{parsed}
	}

	out := make([]model.Question, 0, len(items))
	for _, item := range items {
		obj, _ := item.(map[string]any)

		out = append(out, model.Question{
			QuestionText:  firstString(obj, questionTextKeys, defaultQuestionText),
			Options:       normalizeOptions(obj["options"]),
			CorrectAnswer: normalizeAnswer(firstString(obj, answerKeys, "")),
			Explanation:   firstString(obj, explanationKeys, defaultExplanation),
			Category:      category,
			Subject:       subject,
			Difficulty:    model.DifficultyMedium,
			Marks:         1,
		})
	}
	return out
}

// firstString returns the first non-empty string value among the aliased
// keys, or fallback.
func firstString(obj map[string]any, keys []string, fallback string) string {
	for _, k := range keys {
		if s := stringify(obj[k]); s != "" {
			return s
		}
	}
	return fallback
}

// normalizeOptions accepts a 4-element positional sequence or an object with
// upper- or lower-case letter keys. Anything else, or any missing slot,
// falls back to a letter placeholder; a record never fails on its options.
func normalizeOptions(v any) model.Options {
	var o model.Options
	switch t := v.(type) {
	case []any:
		slots := []*string{&o.A, &o.B, &o.C, &o.D}
		for i, slot := range slots {
			if i < len(t) {
				*slot = stringify(t[i])
			}
		}
	case map[string]any:
		o.A = letterValue(t, "a")
		o.B = letterValue(t, "b")
		o.C = letterValue(t, "c")
		o.D = letterValue(t, "d")
	}

	if o.A == "" {
		o.A = "A"
	}
	if o.B == "" {
		o.B = "B"
	}
	if o.C == "" {
		o.C = "C"
	}
	if o.D == "" {
		o.D = "D"
	}
	return o
}

func letterValue(obj map[string]any, letter string) string {
	if s := stringify(obj[letter]); s != "" {
		return s
	}
	return stringify(obj[strings.ToUpper(letter)])
}

// normalizeAnswer reduces free-form answer text ("B", "Option A", "c)") to a
// single letter by containment, first match in a..d order, defaulting to "a".
func normalizeAnswer(s string) string {
	s = strings.ToLower(s)
	for _, letter := range answerLetters {
		if strings.Contains(s, letter) {
			return letter
		}
	}
	return "a"
}

// stringify renders a decoded JSON scalar as a string. Numbers keep their
// shortest decimal form so option values like 4 survive as "4".
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
