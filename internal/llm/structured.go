package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SchemaValidator checks a decoded value; a non-nil error rejects it.
type SchemaValidator[T any] func(T) error

// ExtractText returns the prose of a plain-text answer: code fences are
// dropped and surrounding whitespace trimmed. An answer with no text left is
// ErrEmptyResponse.
func ExtractText(raw string) (string, error) {
	text := strings.TrimSpace(unfence(raw))
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// ExtractJSON decodes the first JSON object in a model answer into T.
// Prose around the object, markdown fences, comments, trailing commas and
// numbers written as ".5" are tolerated. A non-nil validator runs on the
// decoded value; every failure wraps ErrInvalidOutput.
func ExtractJSON[T any](raw string, validator SchemaValidator[T]) (T, error) {
	var zero T

	obj, ok := firstObject(unfence(raw))
	if !ok {
		return zero, fmt.Errorf("%w: no JSON object found in response", ErrInvalidOutput)
	}

	var out T
	if err := json.Unmarshal([]byte(repairJSON(obj)), &out); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if validator != nil {
		if err := validator(out); err != nil {
			return zero, fmt.Errorf("%w: validation failed: %v", ErrInvalidOutput, err)
		}
	}
	return out, nil
}

// unfence drops markdown fence lines, with or without a language tag, and
// keeps what they enclose.
func unfence(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// lexState tracks string literals while scanning JSON-like text byte by byte.
type lexState struct {
	inString bool
	escaped  bool
}

// step consumes c and reports whether it belongs to a string literal,
// quotes included.
func (l *lexState) step(c byte) bool {
	switch {
	case l.escaped:
		l.escaped = false
		return true
	case l.inString && c == '\\':
		l.escaped = true
		return true
	case c == '"':
		l.inString = !l.inString
		return true
	}
	return l.inString
}

// firstObject returns the first balanced {...} block of s.
func firstObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	var lx lexState
	depth := 0
	for i := start; i < len(s); i++ {
		if lx.step(s[i]) {
			continue
		}
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// repairJSON fixes the mistakes models make most often, outside string
// literals only: it removes // and /* */ comments, drops a comma right before
// a closing bracket and turns ".5" / "-.5" into "0.5" / "-0.5".
func repairJSON(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)

	var lx lexState
	var last byte // last non-space byte written
	write := func(c byte) {
		b.WriteByte(c)
		if !isSpace(c) {
			last = c
		}
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		if lx.step(c) {
			write(c)
			continue
		}
		if n := commentLen(s, i); n > 0 {
			i += n - 1
			continue
		}
		switch {
		case c == ',' && closesAt(s, i+1):
			continue
		case c == '.' && i+1 < len(s) && isDigit(s[i+1]) && startsValue(last):
			write('0')
		}
		write(c)
	}
	return b.String()
}

// commentLen returns the length of the comment starting at s[i], or 0.
// An unterminated block comment runs to the end of s.
func commentLen(s string, i int) int {
	if s[i] != '/' || i+1 >= len(s) {
		return 0
	}
	switch s[i+1] {
	case '/':
		if end := strings.IndexByte(s[i:], '\n'); end >= 0 {
			return end
		}
		return len(s) - i
	case '*':
		if end := strings.Index(s[i+2:], "*/"); end >= 0 {
			return end + 4
		}
		return len(s) - i
	}
	return 0
}

// closesAt reports whether the next token from s[j] on, skipping blanks and
// comments, is a closing bracket.
func closesAt(s string, j int) bool {
	for j < len(s) {
		if isSpace(s[j]) {
			j++
			continue
		}
		if n := commentLen(s, j); n > 0 {
			j += n
			continue
		}
		return s[j] == '}' || s[j] == ']'
	}
	return false
}

// startsValue reports whether a number may begin right after prev.
func startsValue(prev byte) bool {
	switch prev {
	case 0, ':', ',', '[', '{', '-':
		return true
	}
	return false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
