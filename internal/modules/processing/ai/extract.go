package ai

import (
	"encoding/json"
	"reflect"
	"regexp"
	"strings"

	"github.com/nadi-health/core/internal/pkg/apperr"
)

var fencedJSON = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)```")

// ExtractJSON pulls the JSON payload out of a model reply. Fenced code
// blocks win; otherwise the first balanced object or array that parses is
// returned.
func ExtractJSON(raw string) (string, error) {
	candidates := jsonCandidates(raw)
	if len(candidates) == 0 {
		return "", errNoPayload
	}
	return candidates[0], nil
}

var errNoPayload = &apperr.GenerationFormatError{Reason: "no JSON payload in model response"}

// jsonCandidates lists every valid JSON payload in raw in preference order:
// fenced blocks first, then balanced objects and arrays left to right.
// Fragments nested inside an accepted payload are not listed separately.
func jsonCandidates(raw string) []string {
	var out []string
	for _, m := range fencedJSON.FindAllStringSubmatch(raw, -1) {
		if body := strings.TrimSpace(m[1]); json.Valid([]byte(body)) {
			out = append(out, body)
		}
	}

	for i := 0; i < len(raw); i++ {
		if raw[i] != '{' && raw[i] != '[' {
			continue
		}
		end := matchingClose(raw, i)
		if end < 0 {
			continue
		}
		if candidate := raw[i : end+1]; json.Valid([]byte(candidate)) {
			out = append(out, candidate)
			i = end
		}
	}
	return out
}

// extractArray returns the first payload that is a JSON array.
func extractArray(raw string) (string, error) {
	candidates := jsonCandidates(raw)
	if len(candidates) == 0 {
		return "", errNoPayload
	}
	for _, c := range candidates {
		if strings.HasPrefix(c, "[") {
			return c, nil
		}
	}
	return "", &apperr.GenerationFormatError{Reason: "expected a JSON array of blocks"}
}

// matchingClose returns the index of the bracket closing the one at start,
// ignoring brackets inside string literals, or -1.
func matchingClose(s string, start int) int {
	depth := 0
	inString := false
	escaped := false
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
				return i
			}
		}
	}
	return -1
}

// decodeJSON unmarshals the first payload in a model reply that fits out,
// so bracketed citations or stray snippets ahead of the real answer are
// passed over.
func decodeJSON(raw string, out interface{}) error {
	candidates := jsonCandidates(raw)
	if len(candidates) == 0 {
		return errNoPayload
	}

	target := reflect.ValueOf(out).Elem()
	var lastErr error
	for _, c := range candidates {
		fresh := reflect.New(target.Type())
		if err := json.Unmarshal([]byte(c), fresh.Interface()); err != nil {
			lastErr = err
			continue
		}
		target.Set(fresh.Elem())
		return nil
	}
	return &apperr.GenerationFormatError{Reason: "unexpected JSON shape", Err: lastErr}
}
