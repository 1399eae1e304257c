// Package rules is the built-in rule catalogue. Every rule is created with
// vine.CreateRule and bound to its options by a small factory, e.g.
// rules.MinLength(2). Rules tolerate values of the wrong type: the type rule
// attached by each schema kind reports those, so independent rules can
// still run when bail is disabled.
package rules

import (
	"fmt"
	"reflect"
	"unicode/utf8"

	vine "github.com/reoring/vine"
	"github.com/reoring/vine/helpers"
)

// LengthOptions are shared by the length rules of strings and arrays.
type LengthOptions struct {
	Min  int `json:"min,omitempty" yaml:"min,omitempty"`
	Max  int `json:"max,omitempty" yaml:"max,omitempty"`
	Size int `json:"size,omitempty" yaml:"size,omitempty"`
}

// lengthOf measures strings in runes and arrays in elements.
func lengthOf(v any) (int, bool) {
	switch t := v.(type) {
	case string:
		return utf8.RuneCountInString(t), true
	case []any:
		return len(t), true
	}
	return 0, false
}

// MinLengthRule fails when a string or array is shorter than Min.
var MinLengthRule = vine.CreateRule("minLength", func(value any, options any, field *vine.FieldContext) {
	n, ok := lengthOf(value)
	opt := options.(LengthOptions)
	if ok && n < opt.Min {
		field.Report(vine.CodeTooShort, "minLength", map[string]any{"min": opt.Min})
	}
})

// MaxLengthRule fails when a string or array is longer than Max.
var MaxLengthRule = vine.CreateRule("maxLength", func(value any, options any, field *vine.FieldContext) {
	n, ok := lengthOf(value)
	opt := options.(LengthOptions)
	if ok && n > opt.Max {
		field.Report(vine.CodeTooLong, "maxLength", map[string]any{"max": opt.Max})
	}
})

// FixedLengthRule fails when a string or array length differs from Size.
var FixedLengthRule = vine.CreateRule("fixedLength", func(value any, options any, field *vine.FieldContext) {
	n, ok := lengthOf(value)
	opt := options.(LengthOptions)
	if ok && n != opt.Size {
		field.Report(vine.CodeFixedLength, "fixedLength", map[string]any{"size": opt.Size})
	}
})

func MinLength(n int) vine.Validation   { return MinLengthRule.With(LengthOptions{Min: n}) }
func MaxLength(n int) vine.Validation   { return MaxLengthRule.With(LengthOptions{Max: n}) }
func FixedLength(n int) vine.Validation { return FixedLengthRule.With(LengthOptions{Size: n}) }

// EqualsOptions hold the expected literal.
type EqualsOptions struct {
	Expected any `json:"expected" yaml:"expected"`
}

// EqualsRule compares the value with a scalar literal. Numbers compare by
// value regardless of their Go representation; on success the value is
// replaced by the expected literal.
var EqualsRule = vine.CreateRule("equals", func(value any, options any, field *vine.FieldContext) {
	want := options.(EqualsOptions).Expected
	if LiteralEqual(value, want) {
		field.Mutate(want)
		return
	}
	field.Report(vine.CodeLiteral, "equals", map[string]any{"expected": fmt.Sprint(want)})
})

// Equals binds EqualsRule to v.
func Equals(v any) vine.Validation { return EqualsRule.With(EqualsOptions{Expected: v}) }

// LiteralEqual reports whether got equals the scalar literal want.
func LiteralEqual(got, want any) bool {
	if helpers.IsNumber(want) {
		return helpers.IsNumber(got) && helpers.AsNumber(got) == helpers.AsNumber(want)
	}
	if got == nil || want == nil {
		return got == want
	}
	tg, tw := reflect.TypeOf(got), reflect.TypeOf(want)
	if tg != tw || !tg.Comparable() {
		return false
	}
	return got == want
}
