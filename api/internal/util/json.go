package util

import (
	"encoding/json"
	"fmt"
	"strings"
)

func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ExtractJSONObject pulls the first-`{`-to-last-`}` window out of raw model
// text. Models routinely wrap their JSON in prose or code fences; a strict
// parse of the whole string would reject perfectly usable output.
func ExtractJSONObject(s string) (string, bool) {
	s = StripCodeFences(s)
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// DecodeLoose extracts the JSON object embedded in raw model text and
// unmarshals it into v.
func DecodeLoose(raw string, v any) error {
	obj, ok := ExtractJSONObject(raw)
	if !ok {
		return fmt.Errorf("no JSON object in model output")
	}
	if err := json.Unmarshal([]byte(obj), v); err != nil {
		return fmt.Errorf("bad JSON in model output: %w", err)
	}
	return nil
}
