package rules

import (
	"math"

	vine "github.com/reoring/vine"
	"github.com/reoring/vine/helpers"
)

// NumberRule accepts numbers and numeric strings and normalizes them to
// float64.
var NumberRule = vine.CreateRule("number", func(value any, _ any, field *vine.FieldContext) {
	f := helpers.AsNumber(value)
	if _, isBool := value.(bool); isBool || math.IsNaN(f) || math.IsInf(f, 0) {
		field.Report(vine.CodeInvalidType, "number", map[string]any{"expected": "number"})
		return
	}
	field.Mutate(f)
})

// Number binds NumberRule.
func Number() vine.Validation { return NumberRule.With(nil) }

// BoundOptions carry numeric bounds. Nil means unbounded.
type BoundOptions struct {
	Min *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	// Exclusive makes both bounds strict.
	Exclusive bool `json:"exclusive,omitempty" yaml:"exclusive,omitempty"`
}

// RangeRule checks numeric bounds.
var RangeRule = vine.CreateRule("range", func(value any, options any, field *vine.FieldContext) {
	if !helpers.IsNumber(value) {
		return
	}
	f := helpers.AsNumber(value)
	opt := options.(BoundOptions)
	if opt.Min != nil && (f < *opt.Min || (opt.Exclusive && f == *opt.Min)) {
		field.Report(vine.CodeTooSmall, "range", map[string]any{"min": *opt.Min})
		return
	}
	if opt.Max != nil && (f > *opt.Max || (opt.Exclusive && f == *opt.Max)) {
		field.Report(vine.CodeTooBig, "range", map[string]any{"max": *opt.Max})
	}
})

func Min(n float64) vine.Validation      { return RangeRule.With(BoundOptions{Min: &n}) }
func Max(n float64) vine.Validation      { return RangeRule.With(BoundOptions{Max: &n}) }
func Range(lo, hi float64) vine.Validation { return RangeRule.With(BoundOptions{Min: &lo, Max: &hi}) }

func Positive() vine.Validation {
	zero := 0.0
	return RangeRule.With(BoundOptions{Min: &zero, Exclusive: true})
}

func Negative() vine.Validation {
	zero := 0.0
	return RangeRule.With(BoundOptions{Max: &zero, Exclusive: true})
}

// WithoutDecimalsRule fails for numbers with a fractional part.
var WithoutDecimalsRule = vine.CreateRule("withoutDecimals", func(value any, _ any, field *vine.FieldContext) {
	if !helpers.IsNumber(value) {
		return
	}
	f := helpers.AsNumber(value)
	if f != math.Trunc(f) {
		field.Report(vine.CodeDecimal, "withoutDecimals", nil)
	}
})

// WithoutDecimals binds WithoutDecimalsRule.
func WithoutDecimals() vine.Validation { return WithoutDecimalsRule.With(nil) }

// BooleanRule accepts booleans and their string/number spellings and
// normalizes them to bool.
var BooleanRule = vine.CreateRule("boolean", func(value any, _ any, field *vine.FieldContext) {
	b, ok := helpers.AsBoolean(value)
	if !ok {
		field.Report(vine.CodeInvalidType, "boolean", map[string]any{"expected": "boolean"})
		return
	}
	field.Mutate(b)
})

// Boolean binds BooleanRule.
func Boolean() vine.Validation { return BooleanRule.With(nil) }
