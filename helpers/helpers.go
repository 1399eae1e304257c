// Package helpers provides structural predicates and coercions over decoded
// input values (map[string]any, []any, string, float64/json.Number, bool,
// nil). They are the building blocks for guards and rules and never panic.
package helpers

import (
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

var (
	truthy = map[string]struct{}{"true": {}, "1": {}, "on": {}}
	falsy  = map[string]struct{}{"false": {}, "0": {}}
)

// IsTrue reports whether v is one of true, 1, "true", "1" or "on".
func IsTrue(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		_, ok := truthy[t]
		return ok
	}
	f, ok := numberOf(v)
	return ok && f == 1
}

// IsFalse reports whether v is one of false, 0, "false" or "0".
func IsFalse(v any) bool {
	switch t := v.(type) {
	case bool:
		return !t
	case string:
		_, ok := falsy[t]
		return ok
	}
	f, ok := numberOf(v)
	return ok && f == 0
}

// IsString reports whether v is a string.
func IsString(v any) bool {
	_, ok := v.(string)
	return ok
}

// IsObject reports whether v is a decoded JSON object. nil maps and arrays
// are not objects.
func IsObject(v any) bool {
	m, ok := v.(map[string]any)
	return ok && m != nil
}

// IsArray reports whether v is a decoded JSON array.
func IsArray(v any) bool {
	a, ok := v.([]any)
	return ok && a != nil
}

// IsNumber reports whether v is a numeric value (not a numeric string).
func IsNumber(v any) bool {
	_, ok := numberOf(v)
	return ok
}

// IsBoolean reports whether v is a bool.
func IsBoolean(v any) bool {
	_, ok := v.(bool)
	return ok
}

// IsMissing reports whether v is nil.
func IsMissing(v any) bool { return v == nil }

// IsNumeric reports whether s parses as a finite number.
func IsNumeric(s string) bool {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil && !math.IsInf(f, 0) && !math.IsNaN(f)
}

// AsNumber converts v to float64. It returns NaN when v is neither a number
// nor a numeric string.
func AsNumber(v any) float64 {
	if f, ok := numberOf(v); ok {
		return f
	}
	if s, ok := v.(string); ok && IsNumeric(s) {
		f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return f
	}
	return math.NaN()
}

// AsBoolean converts v to a bool. ok is false when v is neither truthy nor
// falsy per IsTrue/IsFalse.
func AsBoolean(v any) (b bool, ok bool) {
	if IsTrue(v) {
		return true, true
	}
	if IsFalse(v) {
		return false, true
	}
	return false, false
}

// Field returns m[key] when v is an object.
func Field(v any, key string) (any, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	x, ok := m[key]
	return x, ok
}

func numberOf(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	}
	return 0, false
}
