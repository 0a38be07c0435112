package llm

import "strings"

// CleanJSON strips Markdown fences and surrounding junk from model output
// that should be raw JSON. Works for both objects and arrays.
func CleanJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			// Single-line weirdness; just return as-is.
			return s
		}
		s = strings.TrimSpace(s)
	}

	// Remove trailing ``` if present.
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// Extra safety: if there's still junk around the JSON value, keep only
	// from the first opening bracket to its matching last closing one.
	start := strings.IndexAny(s, "[{")
	if start == -1 {
		return s
	}
	var closer string
	if s[start] == '[' {
		closer = "]"
	} else {
		closer = "}"
	}
	if end := strings.LastIndex(s, closer); end > start {
		s = strings.TrimSpace(s[start : end+1])
	}

	return s
}
