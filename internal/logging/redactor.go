package logging

import (
	"strings"
)

// sensitiveSegments are key segments whose values never reach the log.
// Session tokens and the gateway API key travel through these fields.
var sensitiveSegments = []string{"secret", "password", "token", "key", "auth", "credential", "cookie"}

// redactPairs walks a flattened key-value slice and replaces the value
// of any sensitive key with a placeholder. The input is not modified.
func redactPairs(pairs []any) []any {
	if len(pairs) == 0 {
		return pairs
	}
	out := make([]any, len(pairs))
	copy(out, pairs)
	for i := 0; i+1 < len(out); i += 2 {
		key, ok := out[i].(string)
		if !ok {
			continue
		}
		if isSensitiveKey(key) {
			out[i+1] = "[REDACTED]"
		}
	}
	return out
}

// isSensitiveKey reports whether any segment of the key matches a
// sensitive word. Segments split on non-alphanumeric runes, so
// "api_key" matches while "keyboard" does not.
func isSensitiveKey(key string) bool {
	for _, part := range splitSegments(strings.ToLower(key)) {
		for _, word := range sensitiveSegments {
			if part == word {
				return true
			}
		}
	}
	return false
}

func splitSegments(key string) []string {
	var segs []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			segs = append(segs, cur.String())
			cur.Reset()
		}
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			cur.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return segs
}
