package jsonutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrNoObject is returned when the text contains no brace-delimited span
	// at all. Callers must treat this separately from a parse failure.
	ErrNoObject = errors.New("no JSON object found")

	// ErrMalformedPayload is returned when a brace-delimited span exists but
	// is not valid JSON.
	ErrMalformedPayload = errors.New("malformed JSON payload")
)

// objectPattern matches the first single-level {...} span. It deliberately
// does not balance nested braces: classifier output is prompted to be a flat
// object, and a nested response is mis-extracted by contract.
var objectPattern = regexp.MustCompile(`\{[^{}]*\}`)

// ExtractObject locates the first non-nested {...} span in text and decodes
// it as a JSON object.
func ExtractObject(text string) (map[string]any, error) {
	span := objectPattern.FindString(text)
	if span == "" {
		return nil, ErrNoObject
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(span), &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return decoded, nil
}
