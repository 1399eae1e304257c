package dsl

import (
	vine "github.com/reoring/vine"
	"github.com/reoring/vine/helpers"
	"github.com/reoring/vine/ir"
	"github.com/reoring/vine/rules"
)

// ArrayType validates every element with a single element schema.
type ArrayType struct {
	base[*ArrayType]
	element Schema
	bounds  lengthBounds
}

// Array returns an array schema whose elements must satisfy element.
func Array(element Schema) *ArrayType {
	if element == nil {
		vine.Configf("array", "element schema must not be nil")
	}
	a := &ArrayType{element: element}
	a.base = newBase(a)
	return a
}

func (a *ArrayType) UniqueName() string  { return "vine.array" }
func (a *ArrayType) IsOfType(v any) bool { return helpers.IsArray(v) }

// Element returns a clone of the element schema.
func (a *ArrayType) Element() Schema { return a.element.cloneSchema() }

// MinLength enforces a minimum number of elements.
func (a *ArrayType) MinLength(n int) *ArrayType {
	a.bounds.setMin("array.minLength", n)
	return a.Use(rules.MinLength(n))
}

// MaxLength enforces a maximum number of elements.
func (a *ArrayType) MaxLength(n int) *ArrayType {
	a.bounds.setMax("array.maxLength", n)
	return a.Use(rules.MaxLength(n))
}

// FixedLength enforces an exact number of elements.
func (a *ArrayType) FixedLength(n int) *ArrayType {
	a.bounds.setFixed("array.fixedLength", n)
	return a.Use(rules.FixedLength(n))
}

// NotEmpty rejects an empty array.
func (a *ArrayType) NotEmpty() *ArrayType { return a.Use(rules.NotEmpty()) }

// Distinct rejects duplicate elements. With fields, object elements are
// compared on the projection of those keys only.
func (a *ArrayType) Distinct(fields ...string) *ArrayType { return a.Use(rules.Distinct(fields...)) }

// Compact drops nil and empty-string elements before elements are validated.
func (a *ArrayType) Compact() *ArrayType { return a.Use(rules.Compact()) }

// Clone returns an independent copy including a clone of the element schema.
func (a *ArrayType) Clone() *ArrayType {
	c := &ArrayType{element: a.element.cloneSchema(), bounds: a.bounds}
	c.base = a.cloneBase(c)
	return c
}

func (a *ArrayType) cloneSchema() Schema { return a.Clone() }

func (a *ArrayType) emit(field string, t *tracker, opts ParserOptions) (ir.Node, error) {
	f, err := a.emitField("array", field, t, opts)
	if err != nil {
		return nil, err
	}
	elem, err := a.element.emit("*", t.at("*"), opts)
	if err != nil {
		return nil, err
	}
	return &ir.ArrayNode{Field: f, Element: elem}, nil
}
