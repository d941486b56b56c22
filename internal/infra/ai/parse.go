package ai

import (
	"errors"
	"strings"
)

// ErrNoJSON is returned when no JSON object can be found in a completion.
var ErrNoJSON = errors.New("no JSON object in completion")

// ExtractJSON pulls the first balanced JSON object out of a completion.
// Models wrap their output in markdown fences, preambles and trailing
// chatter; the scanner ignores all of it and tracks strings and escapes
// so braces inside values do not break the balance count.
func ExtractJSON(text string) (string, error) {
	text = stripFences(text)

	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", ErrNoJSON
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return sanitize(text[start : i+1]), nil
			}
		}
	}
	return "", ErrNoJSON
}

func stripFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	return strings.ReplaceAll(text, "```", "")
}

// sanitize collapses raw control characters models leave inside string
// values, which encoding/json rejects.
func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString && !escaped {
			switch c {
			case '\n':
				b.WriteString(`\n`)
				continue
			case '\r':
				continue
			case '\t':
				b.WriteString(`\t`)
				continue
			}
		}
		if escaped {
			escaped = false
		} else if c == '\\' {
			escaped = true
		} else if c == '"' {
			inString = !inString
		}
		b.WriteByte(c)
	}
	return b.String()
}
