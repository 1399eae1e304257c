package vine

import (
	"context"

	"github.com/reoring/vine/i18n"
)

// Parser transforms a raw input value before any validation runs. It must be
// synchronous and must not retain the value.
type Parser func(value any) any

// Guard decides whether a union or group branch applies to a raw input
// value. Guards must be pure: no panics, no mutation of the input.
type Guard func(value any) bool

// NoMatchFunc runs when no union/group branch matched. It may report an
// issue through field; when it reports nothing the value is omitted.
type NoMatchFunc func(value any, field *FieldContext)

// ValidatorFunc is the body of a validation rule. It receives the current
// value, the compiled options of the Validation and the field context, and
// signals failure through field.Report.
type ValidatorFunc func(value any, options any, field *FieldContext)

// Rule is a named, reusable validator.
type Rule struct {
	Name     string
	Validate ValidatorFunc
	// Implicit rules run even when the field value is missing.
	Implicit bool
}

// RuleOption configures a Rule created by CreateRule.
type RuleOption func(*Rule)

// Implicit marks a rule to run for missing values as well.
func Implicit() RuleOption { return func(r *Rule) { r.Implicit = true } }

// CreateRule registers fn under name. The returned Rule is bound to options
// with Rule.With before being attached to a schema via Use.
func CreateRule(name string, fn ValidatorFunc, opts ...RuleOption) *Rule {
	if fn == nil {
		Configf("createRule", "rule %q has a nil validator", name)
	}
	r := &Rule{Name: name, Validate: fn}
	for _, o := range opts {
		o(r)
	}
	return r
}

// With binds compiled options to the rule.
func (r *Rule) With(options any) Validation {
	return Validation{Rule: r, Options: options}
}

// Validation is a rule together with its compiled options, ready to be
// attached to a schema type.
type Validation struct {
	Rule    *Rule
	Options any
}

// IsZero reports whether v carries no rule.
func (v Validation) IsZero() bool { return v.Rule == nil || v.Rule.Validate == nil }

// ErrorReporter collects issues emitted by rules, parsers and no-match
// handlers during one validation run.
type ErrorReporter interface {
	Report(Issue)
}

// FieldContext describes the field under validation. The engine creates one
// per node visit; rules may read it, mutate the value, or report failures.
type FieldContext struct {
	Ctx context.Context
	// Value is the current value. Rules may replace it via Mutate.
	Value  any
	Parent any
	// Name is the input key ("*" for array elements, "" for the root).
	Name string
	// OutputName is the key used in the output (case-transformed when requested).
	OutputName string
	Pointer    string
	IsDefined  bool
	IsValid    bool
	Meta       map[string]any
	Reporter   ErrorReporter
}

// Mutate replaces the field value seen by subsequent rules and the output.
func (f *FieldContext) Mutate(v any) { f.Value = v }

// Report marks the field invalid and records an issue with a translated
// message.
func (f *FieldContext) Report(code, rule string, params map[string]any) {
	f.IsValid = false
	if f.Reporter == nil {
		return
	}
	f.Reporter.Report(Issue{
		Path:    f.Pointer,
		Code:    code,
		Message: i18n.Format(code, f.Name, params),
		Field:   f.Name,
		Rule:    rule,
		Params:  params,
	})
}
