package dsl

import (
	vine "github.com/reoring/vine"
	"github.com/reoring/vine/casing"
	"github.com/reoring/vine/ir"
)

// Schema is implemented by every schema type of this package. Its methods
// are unexported: only Compile walks a schema tree.
type Schema interface {
	emit(field string, t *tracker, opts ParserOptions) (ir.Node, error)
	cloneSchema() Schema
}

// TypeMember is a schema that can discriminate itself in UnionOfTypes.
// IsOfType must be pure and must not panic.
type TypeMember interface {
	Schema
	UniqueName() string
	IsOfType(v any) bool
}

// ParserOptions flow from the root to every node during emission.
type ParserOptions struct {
	// ToCamelCase forces output names through CaseTransform.
	ToCamelCase bool
	// CaseTransform defaults to casing.ToCamelCase.
	CaseTransform func(string) string
}

func (o ParserOptions) outputName(field string) string {
	if !o.ToCamelCase || field == "" || field == "*" {
		return field
	}
	if o.CaseTransform == nil {
		return casing.ToCamelCase(field)
	}
	return o.CaseTransform(field)
}

// fieldOptions are the per-node options shared by every schema type.
type fieldOptions struct {
	isOptional bool
	allowNull  bool
	bail       bool
	parse      vine.Parser
}

// bail defaults to true: a node stops at its first failing rule.
func defaultOptions() fieldOptions { return fieldOptions{bail: true} }

// base carries options and validations. S is the concrete schema pointer
// returned by the chaining methods.
type base[S any] struct {
	self        S
	options     fieldOptions
	validations []vine.Validation
}

func newBase[S any](self S, validations ...vine.Validation) base[S] {
	return base[S]{self: self, options: defaultOptions(), validations: validations}
}

// Optional allows the field to be missing.
func (b *base[S]) Optional() S {
	b.options.isOptional = true
	return b.self
}

// Nullable allows an explicit null.
func (b *base[S]) Nullable() S {
	b.options.allowNull = true
	return b.self
}

// Bail sets whether validation of this node stops after the first failing
// rule (true, the default) or collects every failure (false).
func (b *base[S]) Bail(state bool) S {
	b.options.bail = state
	return b.self
}

// Parse registers a transform applied to the raw value before validation.
func (b *base[S]) Parse(p vine.Parser) S {
	if p == nil {
		vine.Configf("parse", "parser must not be nil")
	}
	b.options.parse = p
	return b.self
}

// Use appends a validation. Validations run in the order they were added.
func (b *base[S]) Use(v vine.Validation) S {
	if v.IsZero() {
		vine.Configf("use", "validation has no rule")
	}
	b.validations = append(b.validations, v)
	return b.self
}

// cloneBase copies options and duplicates the validation list for a new
// owner.
func (b *base[S]) cloneBase(self S) base[S] {
	return base[S]{
		self:        self,
		options:     b.options,
		validations: append([]vine.Validation(nil), b.validations...),
	}
}

func (b *base[S]) emitField(kind, field string, t *tracker, opts ParserOptions) (ir.Field, error) {
	parseRef, err := t.parser(b.options.parse)
	if err != nil {
		return ir.Field{}, err
	}
	validations, err := t.validations(b.validations)
	if err != nil {
		return ir.Field{}, err
	}
	return ir.Field{
		Type:        kind,
		FieldName:   field,
		OutputName:  opts.outputName(field),
		IsOptional:  b.options.isOptional,
		AllowNull:   b.options.allowNull,
		Bail:        b.options.bail,
		ParseRef:    parseRef,
		Validations: validations,
	}, nil
}

// lengthBounds rejects contradictory length rules as they are added.
type lengthBounds struct {
	min, max, fixed          int
	hasMin, hasMax, hasFixed bool
}

func (l *lengthBounds) setMin(op string, n int) {
	switch {
	case n < 0:
		vine.Configf(op, "length must not be negative, got %d", n)
	case l.hasMax && n > l.max:
		vine.Configf(op, "min length %d exceeds max length %d", n, l.max)
	case l.hasFixed && n > l.fixed:
		vine.Configf(op, "min length %d exceeds fixed length %d", n, l.fixed)
	}
	l.min, l.hasMin = n, true
}

func (l *lengthBounds) setMax(op string, n int) {
	switch {
	case n < 0:
		vine.Configf(op, "length must not be negative, got %d", n)
	case l.hasMin && n < l.min:
		vine.Configf(op, "max length %d is below min length %d", n, l.min)
	case l.hasFixed && n < l.fixed:
		vine.Configf(op, "max length %d is below fixed length %d", n, l.fixed)
	}
	l.max, l.hasMax = n, true
}

func (l *lengthBounds) setFixed(op string, n int) {
	switch {
	case n < 0:
		vine.Configf(op, "length must not be negative, got %d", n)
	case l.hasFixed && n != l.fixed:
		vine.Configf(op, "fixed length already set to %d", l.fixed)
	case l.hasMin && n < l.min:
		vine.Configf(op, "fixed length %d is below min length %d", n, l.min)
	case l.hasMax && n > l.max:
		vine.Configf(op, "fixed length %d exceeds max length %d", n, l.max)
	}
	l.fixed, l.hasFixed = n, true
}
