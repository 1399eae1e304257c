package schemadoc_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vine "github.com/reoring/vine"
	"github.com/reoring/vine/dsl"
	"github.com/reoring/vine/ir"
	"github.com/reoring/vine/rules"
	"github.com/reoring/vine/schemadoc"
)

const contactDoc = `
type: object
camelCase: true
properties:
  full_name:
    type: string
    rules: [trim, {minLength: 2}]
  contact:
    type: union
    branches:
      - when: isObject(value) && field(value, "type") == "email"
        schema:
          type: object
          properties:
            type: {type: literal, value: email}
            email: {type: string, rules: [email]}
      - when: isObject(value) && value["type"] == "phone"
        schema:
          type: object
          properties:
            type: {type: literal, value: phone}
            mobile_number: {type: string}
  tags:
    type: array
    optional: true
    element: {type: string}
    rules: [compact, {maxLength: 3}, distinct]
`

func compile(t *testing.T, doc string, opts ...schemadoc.Option) *dsl.Compiled {
	t.Helper()
	s, err := schemadoc.New(opts...).Load([]byte(doc))
	require.NoError(t, err)
	c, err := dsl.Compile(s)
	require.NoError(t, err)
	return c
}

func TestLoad_ContactDocument(t *testing.T) {
	c := compile(t, contactDoc)

	obj, ok := c.Root.Schema.(*ir.ObjectNode)
	require.True(t, ok)
	var names []string
	for _, p := range obj.Properties {
		names = append(names, p.Base().OutputName)
	}
	assert.Equal(t, []string{"fullName", "contact", "tags"}, names, "document order and camelCase")

	out, err := c.Validate(context.Background(), map[string]any{
		"full_name": "  Ada ",
		"contact":   map[string]any{"type": "phone", "mobile_number": "9210210102"},
		"tags":      []any{"a", "", "b"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"fullName": "Ada",
		"contact":  map[string]any{"type": "phone", "mobileNumber": "9210210102"},
		"tags":     []any{"a", "b"},
	}, out)

	_, err = c.Validate(context.Background(), map[string]any{
		"full_name": "Ada",
		"contact":   map[string]any{"type": "fax"},
	}, nil)
	iss, ok := vine.AsIssues(err)
	require.True(t, ok, "expected issues, got %v", err)
	assert.Equal(t, vine.CodeUnionNoMatch, iss[0].Code)
	assert.Equal(t, "/contact", iss[0].Path)
}

func TestLoad_GroupsAndOtherwise(t *testing.T) {
	doc := `
type: object
properties:
  kind: {type: string, rules: [{in: [person, company]}]}
groups:
  - conditions:
      - when: value.kind == "person"
        properties:
          age: {type: number, rules: [positive, withoutDecimals]}
      - when: value.kind == "company"
        properties:
          vat: {type: string, rules: [{regex: "^[A-Z]{2}[0-9]+$"}]}
    otherwise: reject
`
	c := compile(t, doc)
	out, err := c.Validate(context.Background(), map[string]any{"kind": "person", "age": 30}, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"kind": "person", "age": float64(30)}, out)

	_, err = c.Validate(context.Background(), map[string]any{"kind": "company", "vat": "x1"}, nil)
	iss, ok := vine.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, vine.CodePattern, iss[0].Code)
	assert.Equal(t, "/vat", iss[0].Path)
}

func TestLoad_UnionOfTypesAndLiterals(t *testing.T) {
	doc := `
type: unionOfTypes
members:
  - {type: boolean}
  - {type: array, element: {type: number, rules: [{range: [1, 5]}]}}
`
	c := compile(t, doc)
	out, err := c.Validate(context.Background(), []any{"2", 3}, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{float64(2), float64(3)}, out)

	_, err = c.Validate(context.Background(), []any{9}, nil)
	assert.Error(t, err)
}

func TestLoad_FormatOptions(t *testing.T) {
	doc := `
type: object
properties:
  owner:
    type: string
    rules: [{email: {allowDisplayName: true, hosts: [example.com]}}]
  homepage:
    type: string
    rules: [{url: {protocols: [https], requireTld: true}}]
  mirror:
    type: string
    rules: [activeUrl]
`
	c := compile(t, doc)
	obj := c.Root.Schema.(*ir.ObjectNode)
	require.Len(t, obj.Properties, 3)

	owner := obj.Properties[0].Base().Validations
	require.Len(t, owner, 2)
	assert.Equal(t, rules.FormatOptions{Format: "email", AllowDisplayName: true, Hosts: []string{"example.com"}}, owner[1].Options)

	homepage := obj.Properties[1].Base().Validations
	require.Len(t, homepage, 2)
	assert.Equal(t, rules.FormatOptions{Format: "url", Protocols: []string{"https"}, RequireTLD: true}, homepage[1].Options)

	mirror := obj.Properties[2].Base().Validations
	require.Len(t, mirror, 2)
	assert.Equal(t, "activeUrl", mirror[1].Rule)

	_, err := c.Validate(context.Background(), map[string]any{
		"owner":    "Ada <ada@other.org>",
		"homepage": "http://example.com",
		"mirror":   7.0,
	}, nil)
	iss, ok := vine.AsIssues(err)
	require.True(t, ok, "expected issues, got %v", err)
	var got []string
	for _, is := range iss {
		got = append(got, is.Code+"@"+is.Path)
	}
	assert.Equal(t, []string{"invalid_format@/owner", "invalid_format@/homepage", "invalid_type@/mirror"}, got)
}

func TestLoad_CustomRule(t *testing.T) {
	banned := vine.CreateRule("notWord", func(value any, options any, f *vine.FieldContext) {
		if value == options {
			f.Report(vine.CodeCustom, "notWord", nil)
		}
	})
	c := compile(t, `{type: string, rules: [{notWord: admin}]}`, schemadoc.WithRule("notWord", banned))
	_, err := c.Validate(context.Background(), "admin", nil)
	assert.Error(t, err)
	_, err = c.Validate(context.Background(), "guest", nil)
	assert.NoError(t, err)
}

func TestLoad_CustomFunction(t *testing.T) {
	doc := `
type: union
branches:
  - when: isEven(value)
    schema: {type: number}
otherwise: omit
`
	isEven := func(params ...any) (any, error) {
		f, ok := params[0].(float64)
		return ok && int(f)%2 == 0, nil
	}
	c := compile(t, doc, schemadoc.WithFunction("isEven", isEven, new(func(any) bool)))
	out, err := c.Validate(context.Background(), float64(4), nil)
	require.NoError(t, err)
	assert.Equal(t, float64(4), out)

	out, err = c.Validate(context.Background(), float64(3), nil)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		line int
	}{
		{"missing type", "optional: true", 1},
		{"unknown type", "type: date", 1},
		{"unknown key", "type: string\nminimum: 3", 2},
		{"unknown rule", "type: string\nrules: [shout]", 2},
		{"bad expression", "type: union\nbranches:\n  - when: 'value &&'\n    schema: {type: string}", 3},
		{"conflicting lengths", "type: array\nelement: {type: string}\nrules: [{minLength: 3}, {maxLength: 1}]", 1},
		{"bad regex", "type: string\nrules: [{regex: '('}]", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := schemadoc.Load([]byte(tt.doc))
			var de *schemadoc.Error
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.line, de.Line)
		})
	}

	_, err := schemadoc.Load([]byte("type: array\nelement: {type: string}\nrules: [{minLength: 3}, {maxLength: 1}]"))
	var ce *vine.ConfigError
	assert.ErrorAs(t, err, &ce)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contactDoc), 0o600))
	s, err := schemadoc.New().LoadFile(path)
	require.NoError(t, err)
	_, err = dsl.Compile(s)
	require.NoError(t, err)
}
