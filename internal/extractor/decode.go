package extractor

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// ErrNotJSON means the oracle's answer holds no JSON document at all. It is
// the only reconciliation outcome that leads to a degraded result.
var ErrNotJSON = errors.New("extractor: response is not JSON")

// Decode parses oracle output into an untyped document. Markdown fences and
// chatter around the document are tolerated. Numbers are kept as json.Number.
func Decode(s string) (any, error) {
	if v, err := decodeStrict(stripFences(s)); err == nil {
		return v, nil
	}
	if candidate := extractJSON(s); candidate != "" {
		if v, err := decodeStrict(candidate); err == nil {
			return v, nil
		}
	}
	return nil, ErrNotJSON
}

func decodeStrict(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after JSON document")
	}
	return v, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\r\n", "\n"))
	for _, f := range []string{"```json", "```JSON", "```"} {
		s = strings.TrimPrefix(s, f)
	}
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}

// extractJSON finds the first balanced JSON object or array in a string and
// returns it. Brackets inside string literals are skipped.
func extractJSON(s string) string {
	start := strings.IndexAny(s, "{[")
	if start == -1 {
		return ""
	}

	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return strings.TrimSpace(s[start : i+1])
			}
		}
	}

	// no balanced found
	return ""
}
