package utils

import (
	"strings"
)

// ExtractJSONObject returns the span from the first '{' to the last '}' in raw
// model output. Markdown fences and prose around the object are dropped.
func ExtractJSONObject(input string) (string, bool) {
	start := strings.Index(input, "{")
	if start < 0 {
		return "", false
	}
	end := strings.LastIndex(input, "}")
	if end < start {
		return "", false
	}
	return input[start : end+1], true
}
