package generate

import (
	"encoding/json"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"bare array",
			`[{"question": "2+2?"}]`,
			`[{"question": "2+2?"}]`,
		},
		{
			"array wrapped in prose",
			"Here are your questions:\n[{\"question\": \"2+2?\"}]\nHope that helps!",
			`[{"question": "2+2?"}]`,
		},
		{
			"array inside a fence",
			"```json\n[{\"question\": \"2+2?\"}]\n```",
			`[{"question": "2+2?"}]`,
		},
		{
			"fenced object falls back to fence stripping",
			"```json\n{\"question\": \"2+2?\"}\n```",
			`{"question": "2+2?"}`,
		},
		{
			"fence without language tag",
			"```\n{\"question\": \"2+2?\"}\n```",
			`{"question": "2+2?"}`,
		},
		{
			"no match returns trimmed input",
			"  sorry, I cannot help with that  ",
			"sorry, I cannot help with that",
		},
		{
			"bare object without fence returns trimmed input",
			` {"question": "2+2?"} `,
			`{"question": "2+2?"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractJSON(tt.in)
			if got != tt.want {
				t.Errorf("ExtractJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractJSONResultParses(t *testing.T) {
	raw := "Sure! Here is the JSON you asked for:\n\n" +
		`[{"question_text": "2+2?", "options": ["3", "4", "5", "6"], "correct_answer": "b", "explanation": "basic addition"},` + "\n" +
		`{"question_text": "3*3?", "options": ["6", "9", "12", "3"], "correct_answer": "b", "explanation": "basic multiplication"}]` +
		"\n\nLet me know if you need more."

	var parsed []map[string]any
	if err := json.Unmarshal([]byte(ExtractJSON(raw)), &parsed); err != nil {
		t.Fatalf("extracted substring does not parse: %v", err)
	}
	if len(parsed) != 2 {
		t.Errorf("expected 2 items, got %d", len(parsed))
	}
}
