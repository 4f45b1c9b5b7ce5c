package generate

import (
	"fmt"
	"strings"

	"github.com/anupamd/papergen/internal/model"
)

// buildPrompt constructs the generation prompt for one subject. The prompt
// pins down the output contract hard because provider output is fed straight
// into extraction and parsing: a bare JSON array, exact count, exact keys.
func buildPrompt(subject model.Subject, category model.Category) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate exactly %d multiple-choice questions for a %q mock exam section.\n\n", subject.Marks, subject.Name)

	fmt.Fprintf(&b, "Subject: %s\n", subject.Name)
	fmt.Fprintf(&b, "Category: %s\n", category)
	fmt.Fprintf(&b, "Topics to cover: %s\n\n", strings.Join(subject.Topics, ", "))

	b.WriteString("Rules:\n")
	b.WriteString("- Each question has exactly 4 options and exactly one correct answer.\n")
	b.WriteString("- Spread the questions across the listed topics.\n")
	b.WriteString("- Include a brief explanation of the correct answer.\n")
	b.WriteString("- Respond with ONLY a JSON array, no prose and no markdown fences.\n\n")

	b.WriteString("Each array element must have this exact shape:\n")
	b.WriteString(`{"question_text": "...", "options": {"a": "...", "b": "...", "c": "...", "d": "..."}, "correct_answer": "a", "explanation": "..."}`)
	b.WriteString("\n")

	return b.String()
}
