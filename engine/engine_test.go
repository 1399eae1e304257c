package engine_test

import (
	"context"
	"errors"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	vine "github.com/reoring/vine"
	d "github.com/reoring/vine/dsl"
	"github.com/reoring/vine/engine"
	"github.com/reoring/vine/helpers"
)

func mustIssues(t *testing.T, err error) vine.Issues {
	t.Helper()
	iss, ok := vine.AsIssues(err)
	if !ok {
		t.Fatalf("expected vine.Issues, got %v", err)
	}
	return iss
}

func codes(iss vine.Issues) []string {
	out := make([]string, 0, len(iss))
	for _, it := range iss {
		out = append(out, it.Code+"@"+it.Path)
	}
	return out
}

func TestValidate_ObjectWithCamelCaseOutput(t *testing.T) {
	schema := d.Object(
		d.Prop("first_name", d.String()),
		d.Prop("age", d.Number().Optional()),
	).ToCamelCase()
	c := d.MustCompile(schema)

	out, err := c.Validate(context.Background(), map[string]any{"first_name": "Ada", "extra": true}, nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := map[string]any{"firstName": "Ada"}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_UnknownPropertiesPassThrough(t *testing.T) {
	c := d.MustCompile(d.Object(d.Prop("id", d.Number())).AllowUnknownProperties())
	out, err := c.Validate(context.Background(), map[string]any{"id": 1, "note": "x"}, nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := map[string]any{"id": float64(1), "note": "x"}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_RequiredAndNull(t *testing.T) {
	schema := d.Object(
		d.Prop("a", d.String()),
		d.Prop("b", d.String().Nullable()),
		d.Prop("c", d.String().Optional()),
	)
	c := d.MustCompile(schema)
	out, err := c.Validate(context.Background(), map[string]any{"b": nil, "c": nil}, nil)
	iss := mustIssues(t, err)
	if diff := cmp.Diff([]string{"required@/a"}, codes(iss)); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
	if out != nil {
		t.Fatalf("expected nil output on failure, got %#v", out)
	}

	out, err = c.Validate(context.Background(), map[string]any{"a": "x", "b": nil, "c": nil}, nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"a": "x", "b": nil}, out); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_BailStopsAtFirstFailure(t *testing.T) {
	bailing := d.MustCompile(d.String().MinLength(5).StartsWith("x"))
	_, err := bailing.Validate(context.Background(), "abc", nil)
	if got := codes(mustIssues(t, err)); len(got) != 1 {
		t.Fatalf("expected one issue with bail, got %v", got)
	}

	collecting := d.MustCompile(d.String().MinLength(5).StartsWith("x").Bail(false))
	_, err = collecting.Validate(context.Background(), "abc", nil)
	if got := codes(mustIssues(t, err)); len(got) != 2 {
		t.Fatalf("expected two issues without bail, got %v", got)
	}
}

func TestValidate_ArrayElementsAndCompact(t *testing.T) {
	c := d.MustCompile(d.Array(d.String().MinLength(2)).Compact().MinLength(1))
	out, err := c.Validate(context.Background(), []any{"ab", nil, "", "cd"}, nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if diff := cmp.Diff([]any{"ab", "cd"}, out); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}

	_, err = c.Validate(context.Background(), []any{"ab", "x"}, nil)
	iss := mustIssues(t, err)
	if diff := cmp.Diff([]string{"too_short@/1"}, codes(iss)); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
	if iss[0].Field != "1" {
		t.Fatalf("element issue should name the index, got %q", iss[0].Field)
	}
}

func TestValidate_UnionFirstMatchWins(t *testing.T) {
	var calls []string
	schema := d.Union(
		d.UnionIf(func(v any) bool { calls = append(calls, "string"); return helpers.IsString(v) }, d.String().ToUpperCase()),
		d.UnionIf(func(v any) bool { calls = append(calls, "any"); return true }, d.Number()),
	)
	c := d.MustCompile(schema, d.WithoutGuardProbe())
	out, err := c.Validate(context.Background(), "abc", nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out != "ABC" {
		t.Fatalf("unexpected output: %#v", out)
	}
	if diff := cmp.Diff([]string{"string"}, calls); diff != "" {
		t.Fatalf("later guards must not run after a match (-want +got):\n%s", diff)
	}
}

func TestValidate_UnionNoMatch(t *testing.T) {
	schema := d.Object(d.Prop("contact", d.Union(
		d.UnionIf(func(v any) bool { return helpers.IsString(v) }, d.String().Email()),
	)))
	c := d.MustCompile(schema)
	_, err := c.Validate(context.Background(), map[string]any{"contact": 12}, nil)
	iss := mustIssues(t, err)
	if diff := cmp.Diff([]string{"union_no_match@/contact"}, codes(iss)); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_UnionOtherwiseDecides(t *testing.T) {
	silent := d.Union(d.UnionIf(helpers.IsString, d.String())).
		Otherwise(func(any, *vine.FieldContext) {})
	out, err := d.MustCompile(d.Object(d.Prop("v", silent))).Validate(context.Background(), map[string]any{"v": true}, nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if diff := cmp.Diff(map[string]any{}, out); diff != "" {
		t.Fatalf("value should be omitted (-want +got):\n%s", diff)
	}

	loud := d.Union(d.UnionIf(helpers.IsString, d.String())).
		Otherwise(func(_ any, f *vine.FieldContext) { f.Report(vine.CodeCustom, "otherwise", nil) })
	_, err = d.MustCompile(loud).Validate(context.Background(), true, nil)
	if diff := cmp.Diff([]string{"custom@/"}, codes(mustIssues(t, err))); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_GroupsFirstMatchAndLastGroupWins(t *testing.T) {
	isType := func(want string) vine.Guard {
		return func(v any) bool {
			got, _ := helpers.Field(v, "type")
			return got == want
		}
	}
	first := d.Group(
		d.GroupIf(isType("a"), d.Prop("x", d.String())),
		d.GroupIf(isType("a"), d.Prop("x", d.Number())),
	)
	second := d.Group(
		d.GroupElse(d.Prop("x", d.String().ToUpperCase())),
	)
	schema := d.Object(d.Prop("type", d.String())).Merge(first).Merge(second)
	out, err := d.MustCompile(schema).Validate(context.Background(), map[string]any{"type": "a", "x": "hi"}, nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := map[string]any{"type": "a", "x": "HI"}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_GroupWithoutMatchContributesNothing(t *testing.T) {
	g := d.Group(d.GroupIf(func(any) bool { return false }, d.Prop("x", d.String())))
	out, err := d.MustCompile(d.Object().Merge(g)).Validate(context.Background(), map[string]any{"x": "y"}, nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if diff := cmp.Diff(map[string]any{}, out); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_GuardPanicIsReported(t *testing.T) {
	boom := d.Union(d.UnionIf(func(v any) bool {
		if v == "boom" {
			panic("bad guard")
		}
		return true
	}, d.String()))
	c := d.MustCompile(boom)
	_, err := c.Validate(context.Background(), "boom", nil)
	if diff := cmp.Diff([]string{"guard_panic@/"}, codes(mustIssues(t, err))); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_GroupGuardPanicKeepsOtherGroups(t *testing.T) {
	broken := d.Group(d.GroupIf(func(v any) bool {
		if boom, _ := helpers.Field(v, "boom"); boom == true {
			panic("bad guard")
		}
		return false
	}, d.Prop("x", d.String()))).
		Otherwise(func(_ any, f *vine.FieldContext) { f.Report(vine.CodeCustom, "otherwise", nil) })
	healthy := d.Group(d.GroupElse(d.Prop("y", d.Number())))
	c := d.MustCompile(d.Object().Merge(broken).Merge(healthy))

	_, err := c.Validate(context.Background(), map[string]any{"boom": true, "y": "nope"}, nil)
	if diff := cmp.Diff([]string{"guard_panic@/", "invalid_type@/y"}, codes(mustIssues(t, err))); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_UnknownKeyCannotReplaceDeclaredOutput(t *testing.T) {
	schema := d.Object(
		d.Prop("first_name", d.String().ToUpperCase()),
		d.Prop("nick_name", d.String().Optional()),
	).AllowUnknownProperties().ToCamelCase()
	c := d.MustCompile(schema)

	tests := []struct {
		name string
		in   map[string]any
		want map[string]any
	}{
		{
			name: "validated value kept",
			in:   map[string]any{"first_name": "ada", "firstName": 123, "note": "x"},
			want: map[string]any{"firstName": "ADA", "note": "x"},
		},
		{
			name: "missing optional is not filled from raw input",
			in:   map[string]any{"first_name": "ada", "nickName": 42},
			want: map[string]any{"firstName": "ADA"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := c.Validate(context.Background(), tt.in, nil)
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if diff := cmp.Diff(tt.want, out); diff != "" {
				t.Fatalf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidate_ParserRunsFirst(t *testing.T) {
	c := d.MustCompile(d.Number().Parse(func(v any) any {
		if v == nil {
			return 7
		}
		return v
	}))
	out, err := c.Validate(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out != float64(7) {
		t.Fatalf("unexpected output: %#v", out)
	}
}

func TestValidate_FailFast(t *testing.T) {
	schema := d.Object(d.Prop("a", d.String()), d.Prop("b", d.String()))
	c := d.MustCompile(schema, d.WithEngineOptions(engine.WithFailFast()))
	_, err := c.Validate(context.Background(), map[string]any{}, nil)
	if got := mustIssues(t, err); len(got) != 1 {
		t.Fatalf("fail fast should stop at one issue, got %v", codes(got))
	}
}

func TestValidate_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := d.MustCompile(d.String()).Validate(ctx, "x", nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestValidate_MetaReachesRules(t *testing.T) {
	rule := vine.CreateRule("tenant", func(_ any, _ any, f *vine.FieldContext) {
		if f.Meta["tenant"] != "acme" {
			f.Report(vine.CodeCustom, "tenant", nil)
		}
	})
	c := d.MustCompile(d.String().Use(rule.With(nil)))
	if _, err := c.Validate(context.Background(), "x", map[string]any{"tenant": "acme"}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := c.Validate(context.Background(), "x", nil); err == nil {
		t.Fatalf("expected failure without meta")
	}
}

func TestValidateJSON_Numbers(t *testing.T) {
	c := d.MustCompile(d.Object(d.Prop("n", d.Number().WithoutDecimals())).AllowUnknownProperties())
	out, err := c.ValidateJSON(context.Background(), []byte(`{"n": 42, "raw": 1.5}`), nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := map[string]any{"n": float64(42), "raw": json.Number("1.5")}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}
