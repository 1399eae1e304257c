package jsonschema_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	d "github.com/reoring/vine/dsl"
	"github.com/reoring/vine/helpers"
	"github.com/reoring/vine/jsonschema"
)

func ptr[T any](v T) *T { return &v }

func TestExport_Object(t *testing.T) {
	schema := d.Object(
		d.Prop("user_name", d.String().MinLength(2).MaxLength(8).Regex(regexp.MustCompile(`^[a-z]+$`))),
		d.Prop("email", d.String().Email().Optional()),
		d.Prop("age", d.Number().Range(0, 130).WithoutDecimals()),
		d.Prop("tags", d.Array(d.String().In("a", "b")).FixedLength(2).Distinct()),
		d.Prop("kind", d.Literal("user")),
		d.Prop("note", d.String().Nullable()),
	).ToCamelCase()
	got, err := jsonschema.Export(d.MustCompile(schema).Root)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	closed := false
	want := &jsonschema.Schema{
		Dialect: jsonschema.Draft,
		Type:    "object",
		Properties: map[string]*jsonschema.Schema{
			"user_name": {Type: "string", MinLength: ptr(2), MaxLength: ptr(8), Pattern: `^[a-z]+$`},
			"email":     {Type: "string", Format: "email"},
			"age":       {Type: "integer", Minimum: ptr(0.0), Maximum: ptr(130.0)},
			"tags": {
				Type:        "array",
				Items:       &jsonschema.Schema{Type: "string", Enum: []any{"a", "b"}},
				MinItems:    ptr(2),
				MaxItems:    ptr(2),
				UniqueItems: true,
			},
			"kind": {Const: "user"},
			"note": {AnyOf: []*jsonschema.Schema{{Type: "string"}, {Type: "null"}}},
		},
		Required:             []string{"user_name", "age", "tags", "kind", "note"},
		AdditionalProperties: &closed,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("schema mismatch (-want +got):\n%s", diff)
	}

	named, err := jsonschema.Export(d.MustCompile(schema).Root, jsonschema.WithOutputNames())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if _, ok := named.Properties["userName"]; !ok {
		t.Fatalf("output names not used: %v", named.Properties)
	}
}

func TestExport_UnionAndGroups(t *testing.T) {
	schema := d.Object(
		d.Prop("id", d.Union(
			d.UnionIf(helpers.IsString, d.String()),
			d.UnionElse(d.Number().Positive()),
		)),
	).AllowUnknownProperties().Merge(d.Group(
		d.GroupIf(func(any) bool { return true }, d.Prop("extra", d.Boolean())),
	))
	got, err := jsonschema.Export(d.MustCompile(schema).Root)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if got.AdditionalProperties != nil {
		t.Fatalf("open objects must not set additionalProperties")
	}
	id := got.Properties["id"]
	want := []*jsonschema.Schema{{Type: "string"}, {Type: "number", ExclusiveMinimum: ptr(0.0)}}
	if diff := cmp.Diff(want, id.AnyOf); diff != "" {
		t.Fatalf("union mismatch (-want +got):\n%s", diff)
	}
	if got.Properties["extra"] == nil {
		t.Fatalf("group property missing")
	}
	if diff := cmp.Diff([]string{"id"}, got.Required); diff != "" {
		t.Fatalf("group properties must stay optional (-want +got):\n%s", diff)
	}

	b, err := got.JSON()
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	if !strings.Contains(string(b), `"$schema": "https://json-schema.org/draft/2020-12/schema"`) {
		t.Fatalf("missing dialect:\n%s", b)
	}
}

func TestExport_EmptyRoot(t *testing.T) {
	if _, err := jsonschema.Export(nil); err == nil {
		t.Fatalf("expected error for nil root")
	}
}
