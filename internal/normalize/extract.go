package normalize

import "strings"

// stripFences removes Markdown code fences around a model response. Models
// routinely wrap JSON in ```json ... ``` even when told not to; the content
// between the first fence pair is returned, otherwise the input unchanged.
func stripFences(s string) string {
	trimmed := strings.TrimSpace(s)
	start := strings.Index(trimmed, "```")
	if start == -1 {
		return trimmed
	}
	rest := trimmed[start+3:]
	// Drop a language tag such as "json" on the fence line.
	if nl := strings.IndexByte(rest, '\n'); nl != -1 {
		first := strings.TrimSpace(rest[:nl])
		if first == "" || isFenceTag(first) {
			rest = rest[nl+1:]
		}
	}
	if end := strings.Index(rest, "```"); end != -1 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}

func isFenceTag(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

// findJSONCandidates scans the input for top-level JSON object or array
// candidates. It tracks brace/bracket depth and string escaping with a
// byte-level state machine, which is safe because UTF-8 guarantees ASCII
// delimiter bytes never appear inside a multi-byte sequence.
func findJSONCandidates(s string) []string {
	var candidates []string
	var depth int
	start := -1
	var open, close byte
	var inString, escape bool

	for i := 0; i < len(s); i++ {
		b := s[i]

		if escape {
			escape = false
			continue
		}
		if inString {
			if b == '\\' {
				escape = true
			} else if b == '"' {
				inString = false
			}
			continue
		}
		if b == '"' {
			// Only strings inside a candidate matter; a quote outside any
			// bracket is prose.
			if depth > 0 {
				inString = true
			}
			continue
		}

		if depth == 0 {
			if b == '{' || b == '[' {
				open = b
				if b == '{' {
					close = '}'
				} else {
					close = ']'
				}
				start = i
				depth = 1
			}
			continue
		}

		switch b {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 && start != -1 {
				candidates = append(candidates, s[start:i+1])
				start = -1
			}
		}
	}
	return candidates
}
