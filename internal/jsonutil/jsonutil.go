package jsonutil

import (
	"bytes"
	"encoding/json"
	"strings"
)

// UnmarshalFlex unmarshals model output into v with best effort:
// a direct unmarshal first, then one pass that strips markdown code fences
// and unescapes double-escaped unicode sequences. Model output crosses a
// JSON-in-JSON boundary and often arrives slightly mangled.
func UnmarshalFlex(raw []byte, v any) error {
	if err := json.Unmarshal(raw, v); err == nil {
		return nil
	}
	cleaned := []byte(StripFences(string(raw)))
	if err := json.Unmarshal(cleaned, v); err == nil {
		return nil
	}
	norm, err := normalizeUnicode(cleaned)
	if err != nil {
		return err
	}
	return json.Unmarshal(norm, v)
}

// StripFences removes a surrounding markdown code fence (``` or ```json)
// if present. Returns the input unchanged otherwise.
func StripFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return s
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if i := strings.IndexByte(trimmed, '\n'); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// MarshalNoEscape encodes v into JSON without escaping <, >, & to < etc.
func MarshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// normalizeUnicode reparses the payload and recursively unescapes
// double-escaped unicode sequences (e.g. "\\u003e") inside string values.
func normalizeUnicode(raw []byte) ([]byte, error) {
	var anyVal any
	if err := json.Unmarshal(raw, &anyVal); err != nil {
		// The whole payload may itself be a quoted JSON string.
		var s string
		if err2 := json.Unmarshal(raw, &s); err2 != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(s), &anyVal); err != nil {
			return nil, err
		}
	}
	return MarshalNoEscape(deepUnescape(anyVal))
}

func deepUnescape(v any) any {
	switch x := v.(type) {
	case string:
		if s, err := unescapeUnicode(x); err == nil {
			return s
		}
		return x
	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = deepUnescape(x[i])
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, vv := range x {
			out[k] = deepUnescape(vv)
		}
		return out
	default:
		return v
	}
}

// unescapeUnicode converts escapes like ">" into actual characters by
// round-tripping the value through a quoted JSON string.
func unescapeUnicode(s string) (string, error) {
	esc := strings.ReplaceAll(s, `\`, `\\`)
	esc = strings.ReplaceAll(esc, `"`, `\"`)
	var out string
	if err := json.Unmarshal([]byte(`"`+esc+`"`), &out); err != nil {
		return "", err
	}
	return out, nil
}
