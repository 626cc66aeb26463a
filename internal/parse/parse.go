// Package parse extracts structured JSON from free-form model output.
//
// Models wrap JSON in explanatory prose, markdown fences, or nothing at all.
// Extraction runs an ordered list of strategies from most to least specific
// and returns the first span that is valid JSON. Failure is never fatal: the
// caller gets ok=false and decides how to degrade.
package parse

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

var extractPatterns = []*regexp.Regexp{
	// Fenced block explicitly labeled as JSON.
	regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```"),
	// Any fenced code block.
	regexp.MustCompile("(?s)```\\s*(\\{.*?\\})\\s*```"),
	// First non-greedy brace span anywhere in the text.
	regexp.MustCompile(`(?s)(\{.*?\})`),
}

// ExtractJSON returns the first valid JSON object found in text.
// The same text always yields the same result.
//
// Each strategy contributes only its first match: scanning deeper would pick
// up inner objects of a nested document and return a fragment instead of
// falling through to the whole-text strategy.
func ExtractJSON(text string) (json.RawMessage, bool) {
	for _, pattern := range extractPatterns {
		if match := pattern.FindStringSubmatch(text); match != nil {
			candidate := match[1]
			if gjson.Valid(candidate) {
				return json.RawMessage(candidate), true
			}
		}
	}

	trimmed := strings.TrimSpace(text)
	if trimmed != "" && gjson.Valid(trimmed) {
		return json.RawMessage(trimmed), true
	}
	return nil, false
}

// ExtractInto extracts a JSON object from text and unmarshals it into v.
// Returns false when no parsable object is present or it does not fit v.
func ExtractInto(text string, v interface{}) bool {
	raw, ok := ExtractJSON(text)
	if !ok {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

// StripFences removes markdown code fences without attempting extraction.
// Used when a response is expected to be JSON but may be wrapped.
func StripFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}
