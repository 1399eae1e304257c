package dsl

import (
	"math"
	"regexp"

	vine "github.com/reoring/vine"
	"github.com/reoring/vine/helpers"
	"github.com/reoring/vine/ir"
	"github.com/reoring/vine/rules"
)

func emitLiteral[S any](b *base[S], subtype, field string, t *tracker, opts ParserOptions) (ir.Node, error) {
	f, err := b.emitField("literal", field, t, opts)
	if err != nil {
		return nil, err
	}
	return &ir.LiteralNode{Field: f, Subtype: subtype}, nil
}

// StringType represents a string value.
type StringType struct {
	base[*StringType]
	bounds lengthBounds
}

// String returns a string schema. The string type rule is always first.
func String() *StringType {
	s := &StringType{}
	s.base = newBase(s, rules.String())
	return s
}

func (s *StringType) UniqueName() string  { return "vine.string" }
func (s *StringType) IsOfType(v any) bool { return helpers.IsString(v) }

// Email validates the value to be an email address.
func (s *StringType) Email(opts ...rules.EmailOptions) *StringType {
	return s.Use(rules.Email(opts...))
}

// URL validates the value to be an absolute URL.
func (s *StringType) URL(opts ...rules.URLOptions) *StringType { return s.Use(rules.URL(opts...)) }

// ActiveURL validates the value to be a URL whose host resolves in DNS.
// The lookup runs during validation.
func (s *StringType) ActiveURL(opts ...rules.ActiveURLOptions) *StringType {
	return s.Use(rules.ActiveURL(opts...))
}

// Mobile validates the value to look like a phone number.
func (s *StringType) Mobile() *StringType { return s.Use(rules.Mobile()) }

// HexCode validates the value to be a hex color code.
func (s *StringType) HexCode() *StringType { return s.Use(rules.HexCode()) }

// Regex validates the value against re.
func (s *StringType) Regex(re *regexp.Regexp) *StringType {
	if re == nil {
		vine.Configf("string.regex", "expression must not be nil")
	}
	return s.Use(rules.Regex(re))
}

// Alpha restricts the value to letters.
func (s *StringType) Alpha(opts ...rules.AlphaOptions) *StringType {
	return s.Use(rules.Alpha(firstAlpha(opts)))
}

// AlphaNumeric restricts the value to letters and digits.
func (s *StringType) AlphaNumeric(opts ...rules.AlphaOptions) *StringType {
	return s.Use(rules.AlphaNumeric(firstAlpha(opts)))
}

func firstAlpha(opts []rules.AlphaOptions) rules.AlphaOptions {
	if len(opts) == 0 {
		return rules.AlphaOptions{}
	}
	return opts[0]
}

func (s *StringType) MinLength(n int) *StringType {
	s.bounds.setMin("string.minLength", n)
	return s.Use(rules.MinLength(n))
}

func (s *StringType) MaxLength(n int) *StringType {
	s.bounds.setMax("string.maxLength", n)
	return s.Use(rules.MaxLength(n))
}

func (s *StringType) FixedLength(n int) *StringType {
	s.bounds.setFixed("string.fixedLength", n)
	return s.Use(rules.FixedLength(n))
}

func (s *StringType) StartsWith(sub string) *StringType { return s.Use(rules.StartsWith(sub)) }
func (s *StringType) EndsWith(sub string) *StringType   { return s.Use(rules.EndsWith(sub)) }

// In restricts the value to one of choices.
func (s *StringType) In(choices ...string) *StringType {
	if len(choices) == 0 {
		vine.Configf("string.in", "at least one choice is required")
	}
	return s.Use(rules.In(choices...))
}

func (s *StringType) Trim() *StringType        { return s.Use(rules.Trim()) }
func (s *StringType) ToLowerCase() *StringType { return s.Use(rules.ToLowerCase()) }
func (s *StringType) ToUpperCase() *StringType { return s.Use(rules.ToUpperCase()) }

// Sanitize strips HTML tags from the value.
func (s *StringType) Sanitize() *StringType { return s.Use(rules.Sanitize()) }

// Clone returns an independent copy. Options and validations are copied.
func (s *StringType) Clone() *StringType {
	c := &StringType{bounds: s.bounds}
	c.base = s.cloneBase(c)
	return c
}

func (s *StringType) cloneSchema() Schema { return s.Clone() }

func (s *StringType) emit(field string, t *tracker, opts ParserOptions) (ir.Node, error) {
	return emitLiteral(&s.base, s.UniqueName(), field, t, opts)
}

// LiteralType accepts exactly one scalar value.
type LiteralType struct {
	base[*LiteralType]
	value any
}

// Literal returns a schema accepting only v. v must be a string, bool or
// number.
func Literal(v any) *LiteralType {
	switch v.(type) {
	case string, bool:
	default:
		if !helpers.IsNumber(v) {
			vine.Configf("literal", "unsupported literal %T", v)
		}
	}
	l := &LiteralType{value: v}
	l.base = newBase(l, rules.Equals(v))
	return l
}

// Value returns the expected literal.
func (l *LiteralType) Value() any { return l.value }

func (l *LiteralType) UniqueName() string  { return "vine.literal" }
func (l *LiteralType) IsOfType(v any) bool { return rules.LiteralEqual(v, l.value) }

func (l *LiteralType) Clone() *LiteralType {
	c := &LiteralType{value: l.value}
	c.base = l.cloneBase(c)
	return c
}

func (l *LiteralType) cloneSchema() Schema { return l.Clone() }

func (l *LiteralType) emit(field string, t *tracker, opts ParserOptions) (ir.Node, error) {
	return emitLiteral(&l.base, l.UniqueName(), field, t, opts)
}

// NumberType accepts numbers and numeric strings.
type NumberType struct {
	base[*NumberType]
}

// Number returns a number schema.
func Number() *NumberType {
	n := &NumberType{}
	n.base = newBase(n, rules.Number())
	return n
}

func (n *NumberType) UniqueName() string { return "vine.number" }

func (n *NumberType) IsOfType(v any) bool {
	if helpers.IsBoolean(v) {
		return false
	}
	return !math.IsNaN(helpers.AsNumber(v))
}

func (n *NumberType) Min(v float64) *NumberType { return n.Use(rules.Min(v)) }
func (n *NumberType) Max(v float64) *NumberType { return n.Use(rules.Max(v)) }

// Range accepts values within [lo, hi].
func (n *NumberType) Range(lo, hi float64) *NumberType {
	if lo > hi {
		vine.Configf("number.range", "min %v exceeds max %v", lo, hi)
	}
	return n.Use(rules.Range(lo, hi))
}

func (n *NumberType) Positive() *NumberType        { return n.Use(rules.Positive()) }
func (n *NumberType) Negative() *NumberType        { return n.Use(rules.Negative()) }
func (n *NumberType) WithoutDecimals() *NumberType { return n.Use(rules.WithoutDecimals()) }

func (n *NumberType) Clone() *NumberType {
	c := &NumberType{}
	c.base = n.cloneBase(c)
	return c
}

func (n *NumberType) cloneSchema() Schema { return n.Clone() }

func (n *NumberType) emit(field string, t *tracker, opts ParserOptions) (ir.Node, error) {
	return emitLiteral(&n.base, n.UniqueName(), field, t, opts)
}

// BooleanType accepts booleans and their common spellings ("on", "1", ...).
type BooleanType struct {
	base[*BooleanType]
}

// Boolean returns a boolean schema.
func Boolean() *BooleanType {
	b := &BooleanType{}
	b.base = newBase(b, rules.Boolean())
	return b
}

func (b *BooleanType) UniqueName() string { return "vine.boolean" }

func (b *BooleanType) IsOfType(v any) bool {
	_, ok := helpers.AsBoolean(v)
	return ok
}

func (b *BooleanType) Clone() *BooleanType {
	c := &BooleanType{}
	c.base = b.cloneBase(c)
	return c
}

func (b *BooleanType) cloneSchema() Schema { return b.Clone() }

func (b *BooleanType) emit(field string, t *tracker, opts ParserOptions) (ir.Node, error) {
	return emitLiteral(&b.base, b.UniqueName(), field, t, opts)
}
