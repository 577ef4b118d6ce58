package llm

import (
	"encoding/json"
	"strings"
)

// StripCodeFences removes a surrounding Markdown code fence, with or without
// a language tag.
func StripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if nl := strings.IndexByte(trimmed, '\n'); nl >= 0 {
		first := strings.TrimSpace(trimmed[:nl])
		if first == "" || !strings.ContainsAny(first, "{[") {
			trimmed = trimmed[nl+1:]
		}
	}
	trimmed = strings.TrimSpace(trimmed)
	trimmed = strings.TrimSuffix(trimmed, "```")
	return strings.TrimSpace(trimmed)
}

// DecodeJSON parses a model reply into out, retrying once with code fences
// stripped.
func DecodeJSON(content string, out interface{}) error {
	err := json.Unmarshal([]byte(strings.TrimSpace(content)), out)
	if err == nil {
		return nil
	}
	if stripped := StripCodeFences(content); stripped != strings.TrimSpace(content) {
		return json.Unmarshal([]byte(stripped), out)
	}
	return err
}
