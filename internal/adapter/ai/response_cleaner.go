// Package ai provides response cleaning and call-guarding utilities shared
// by oracle client implementations.
package ai

import (
	"encoding/json"
	"regexp"
	"strings"
)

// ResponseCleaner normalizes the JSON an LLM returns before decoding.
// Models wrap payloads in markdown fences, prepend prose, or emit almost-JSON
// with trailing commas and unquoted keys; the cleaner strips all of that.
type ResponseCleaner struct{}

// NewResponseCleaner creates a new response cleaner.
func NewResponseCleaner() *ResponseCleaner {
	return &ResponseCleaner{}
}

var (
	fenceRe         = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
	trailingCommaRe = regexp.MustCompile(`,(\s*[}\]])`)
	bareKeyRe       = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
)

// CleanJSONResponse extracts and repairs the first JSON object found in a
// model response. The input is returned unchanged when no object is present.
func (rc *ResponseCleaner) CleanJSONResponse(response string) string {
	response = rc.stripFences(response)
	obj := rc.extractObject(response)
	if obj == "" {
		return strings.TrimSpace(response)
	}
	if rc.IsValidJSON(obj) {
		return obj
	}
	return rc.repair(obj)
}

// stripFences unwraps a markdown code fence if the response carries one.
func (rc *ResponseCleaner) stripFences(response string) string {
	if m := fenceRe.FindStringSubmatch(response); len(m) == 2 {
		return m[1]
	}
	return strings.TrimSpace(response)
}

// extractObject returns the first balanced {...} block, or "".
func (rc *ResponseCleaner) extractObject(response string) string {
	start := strings.Index(response, "{")
	if start == -1 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(response); i++ {
		c := response[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case !inString && c == '{':
			depth++
		case !inString && c == '}':
			depth--
			if depth == 0 {
				return response[start : i+1]
			}
		}
	}
	return ""
}

// repair applies the common almost-JSON fixes: trailing commas, unquoted
// object keys, single-quoted strings.
func (rc *ResponseCleaner) repair(s string) string {
	s = trailingCommaRe.ReplaceAllString(s, "$1")
	s = bareKeyRe.ReplaceAllString(s, `$1"$2":`)
	if !rc.IsValidJSON(s) && strings.Contains(s, "'") {
		s = strings.ReplaceAll(s, "'", `"`)
	}
	return s
}

// IsValidJSON checks if a string is valid JSON.
func (rc *ResponseCleaner) IsValidJSON(response string) bool {
	var v any
	return json.Unmarshal([]byte(response), &v) == nil
}

// CleanAndDecode cleans the response and unmarshals it into out.
func (rc *ResponseCleaner) CleanAndDecode(response string, out any) error {
	cleaned := rc.CleanJSONResponse(response)
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return &JSONValidationError{Original: response, Cleaned: cleaned, Message: "cleaned response is still not valid JSON: " + err.Error()}
	}
	return nil
}

// JSONValidationError reports a response that could not be repaired.
type JSONValidationError struct {
	Original string
	Cleaned  string
	Message  string
}

func (e *JSONValidationError) Error() string {
	return e.Message
}
