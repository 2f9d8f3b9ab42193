package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// decodeJSON decodes raw into generic values, keeping numbers as json.Number.
func decodeJSON(raw []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out interface{}
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("unexpected data after top-level JSON value")
	}
	return out, nil
}

// unwrapTextPayload resolves responses that arrive as a JSON string holding
// JSON, or as bare text. It returns the decoded value and its JSON encoding,
// or the offending text when nothing parses.
func unwrapTextPayload(raw []byte) (value interface{}, encoded []byte, text string, ok bool) {
	decoded, err := decodeJSON(raw)
	if err != nil {
		return nil, nil, string(raw), false
	}
	inner, isText := decoded.(string)
	if !isText {
		return decoded, raw, "", true
	}
	decoded, err = decodeJSON([]byte(inner))
	if err != nil {
		return nil, nil, inner, false
	}
	return decoded, []byte(inner), "", true
}

func object(v interface{}) (map[string]interface{}, bool) {
	m, ok := v.(map[string]interface{})
	return m, ok
}

func objectField(m map[string]interface{}, key string) (map[string]interface{}, bool) {
	if m == nil {
		return nil, false
	}
	return object(m[key])
}

func listField(m map[string]interface{}, key string) []interface{} {
	if m == nil {
		return nil
	}
	list, _ := m[key].([]interface{})
	return list
}

// stringValue renders scalars as text; absent, null and nested values are "".
func stringValue(v interface{}) string {
	switch value := v.(type) {
	case string:
		return value
	case json.Number:
		return value.String()
	case bool:
		return strconv.FormatBool(value)
	default:
		return ""
	}
}

func stringField(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	return stringValue(m[key])
}

// intValue reads integral numbers and numeric strings.
func intValue(v interface{}) (int, bool) {
	switch value := v.(type) {
	case json.Number:
		if n, err := value.Int64(); err == nil {
			return clampInt(n)
		}
		f, err := value.Float64()
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return 0, false
		}
		return clampInt(int64(f))
	case string:
		return atoi(strings.TrimSpace(value))
	default:
		return 0, false
	}
}

func intField(m map[string]interface{}, key string, fallback int) int {
	if m == nil {
		return fallback
	}
	if n, ok := intValue(m[key]); ok {
		return n
	}
	return fallback
}

// truthy follows loose JSON truthiness: true, non-zero numbers and non-empty strings.
func truthy(v interface{}) bool {
	switch value := v.(type) {
	case bool:
		return value
	case json.Number:
		f, err := value.Float64()
		return err == nil && f != 0
	case string:
		return value != ""
	case []interface{}:
		return len(value) > 0
	case map[string]interface{}:
		return len(value) > 0
	default:
		return false
	}
}

func atoi(s string) (int, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return clampInt(n)
}

func clampInt(n int64) (int, bool) {
	if n > math.MaxInt32 || n < math.MinInt32 {
		return 0, false
	}
	return int(n), true
}
