package generate

import (
	"regexp"
	"strings"
)

// arrayPattern matches the first JSON-array-of-objects literal in a blob of
// provider output. Greedy on purpose: the array spans to the last closing
// brace-bracket pair, so prose before or after the array is cut away.
var arrayPattern = regexp.MustCompile(`(?s)\[\s*\{.*\}\s*\]`)

// ExtractJSON pulls the JSON payload out of raw provider text. Providers
// asked for "only a JSON array" still wrap it in prose or markdown fences
// often enough that this cannot be skipped.
//
// The bracket match is the primary strategy; stripping a fenced code block
// is the fallback when no array literal is found. If neither applies, the
// trimmed input is returned unchanged and the caller's JSON parse fails
// explicitly instead of this function guessing.
func ExtractJSON(raw string) string {
	if m := arrayPattern.FindString(raw); m != "" {
		return m
	}
	if inner, ok := stripFence(raw); ok {
		return inner
	}
	return strings.TrimSpace(raw)
}

// stripFence returns the content of the first markdown code fence, skipping
// the language tag on the opening line.
func stripFence(s string) (string, bool) {
	s = strings.TrimSpace(s)
	start := strings.Index(s, "```")
	if start == -1 {
		return "", false
	}
	s = s[start+3:]
	if nl := strings.Index(s, "\n"); nl != -1 {
		s = s[nl+1:]
	}
	if end := strings.Index(s, "```"); end != -1 {
		s = s[:end]
	}
	return strings.TrimSpace(s), true
}
