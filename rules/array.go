package rules

import (
	"fmt"
	"strings"

	vine "github.com/reoring/vine"
	"github.com/reoring/vine/helpers"
)

// NotEmptyRule fails for an empty array.
var NotEmptyRule = vine.CreateRule("notEmpty", func(value any, _ any, field *vine.FieldContext) {
	if arr, ok := value.([]any); ok && len(arr) == 0 {
		field.Report(vine.CodeNotEmpty, "notEmpty", nil)
	}
})

// NotEmpty binds NotEmptyRule.
func NotEmpty() vine.Validation { return NotEmptyRule.With(nil) }

// DistinctOptions project object elements on Fields before comparing. An
// empty Fields compares whole scalar elements.
type DistinctOptions struct {
	Fields []string `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// DistinctRule fails on the first duplicate element.
var DistinctRule = vine.CreateRule("distinct", func(value any, options any, field *vine.FieldContext) {
	arr, ok := value.([]any)
	if !ok {
		return
	}
	fields := options.(DistinctOptions).Fields
	seen := make(map[string]int, len(arr))
	for i, el := range arr {
		key, ok := distinctKey(el, fields)
		if !ok {
			continue
		}
		if j, dup := seen[key]; dup {
			field.Report(vine.CodeDistinct, "distinct", map[string]any{"first": j, "dup": i})
			return
		}
		seen[key] = i
	}
})

// distinctKey renders a type-qualified key so "1" and 1 never collide.
func distinctKey(el any, fields []string) (string, bool) {
	if len(fields) == 0 {
		return scalarKey(el)
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		v, ok := helpers.Field(el, f)
		if !ok {
			v = nil
		}
		k, ok := scalarKey(v)
		if !ok {
			return "", false
		}
		parts = append(parts, k)
	}
	return strings.Join(parts, "\x00"), true
}

func scalarKey(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "null", true
	case string:
		return "s:" + t, true
	case bool:
		return fmt.Sprintf("b:%t", t), true
	}
	if helpers.IsNumber(v) {
		return fmt.Sprintf("n:%v", helpers.AsNumber(v)), true
	}
	return "", false
}

// Distinct binds DistinctRule to a copy of fields.
func Distinct(fields ...string) vine.Validation {
	return DistinctRule.With(DistinctOptions{Fields: append([]string(nil), fields...)})
}

// CompactRule drops nil and empty-string elements from the array. It never
// fails.
var CompactRule = vine.CreateRule("compact", func(value any, _ any, field *vine.FieldContext) {
	arr, ok := value.([]any)
	if !ok {
		return
	}
	out := make([]any, 0, len(arr))
	for _, el := range arr {
		if el == nil || el == "" {
			continue
		}
		out = append(out, el)
	}
	field.Mutate(out)
})

// Compact binds CompactRule.
func Compact() vine.Validation { return CompactRule.With(nil) }
