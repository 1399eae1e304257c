package helpers_test

import (
	"math"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/reoring/vine/helpers"
)

func TestIsTrue(t *testing.T) {
	for _, v := range []any{true, 1, "true", "1", "on", json.Number("1")} {
		if !helpers.IsTrue(v) {
			t.Fatalf("expected %#v to be true", v)
		}
	}
	if helpers.IsTrue("foo") {
		t.Fatalf("foo must not be true")
	}
}

func TestIsFalse(t *testing.T) {
	for _, v := range []any{false, 0, "false", "0"} {
		if !helpers.IsFalse(v) {
			t.Fatalf("expected %#v to be false", v)
		}
	}
	for _, v := range []any{"on", "true"} {
		if helpers.IsFalse(v) {
			t.Fatalf("%#v must not be false", v)
		}
	}
}

func TestIsString(t *testing.T) {
	if !helpers.IsString("hello") || helpers.IsString(true) {
		t.Fatalf("IsString mismatch")
	}
}

func TestIsObject(t *testing.T) {
	if !helpers.IsObject(map[string]any{}) {
		t.Fatalf("empty map is an object")
	}
	var nilMap map[string]any
	for _, v := range []any{nil, nilMap, []any{}, "hello"} {
		if helpers.IsObject(v) {
			t.Fatalf("%#v must not be an object", v)
		}
	}
	v := any(map[string]any{"foo": "bar"})
	if got, ok := helpers.Field(v, "foo"); !ok || got != "bar" {
		t.Fatalf("Field(foo) = %v, %v", got, ok)
	}
	if _, ok := helpers.Field(v, "baz"); ok {
		t.Fatalf("baz must be absent")
	}
}

func TestIsArray(t *testing.T) {
	if !helpers.IsArray([]any{}) {
		t.Fatalf("empty slice is an array")
	}
	for _, v := range []any{nil, map[string]any{}, "hello"} {
		if helpers.IsArray(v) {
			t.Fatalf("%#v must not be an array", v)
		}
	}
}

func TestIsNumeric(t *testing.T) {
	for _, s := range []string{"22", "22.12", "22.00"} {
		if !helpers.IsNumeric(s) {
			t.Fatalf("%q must be numeric", s)
		}
	}
	if helpers.IsNumeric("foo") {
		t.Fatalf("foo must not be numeric")
	}
}

func TestAsNumber(t *testing.T) {
	cases := map[string]float64{"22": 22, "22.12": 22.12, "22.00": 22}
	for in, want := range cases {
		if got := helpers.AsNumber(in); got != want {
			t.Fatalf("AsNumber(%q) = %v, want %v", in, got, want)
		}
	}
	if !math.IsNaN(helpers.AsNumber("foo")) {
		t.Fatalf("AsNumber(foo) must be NaN")
	}
}

func TestAsBoolean(t *testing.T) {
	for _, v := range []any{true, 1, "true", "1", "on"} {
		if b, ok := helpers.AsBoolean(v); !ok || !b {
			t.Fatalf("AsBoolean(%#v) = %v, %v", v, b, ok)
		}
	}
	for _, v := range []any{false, 0, "false", "0"} {
		if b, ok := helpers.AsBoolean(v); !ok || b {
			t.Fatalf("AsBoolean(%#v) = %v, %v", v, b, ok)
		}
	}
	if _, ok := helpers.AsBoolean("foo"); ok {
		t.Fatalf("AsBoolean(foo) must not convert")
	}
}
