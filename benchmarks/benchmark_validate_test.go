package benchmarks_test

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"testing"

	"github.com/reoring/vine/dsl"
	"github.com/reoring/vine/engine"
	"github.com/reoring/vine/helpers"
)

// ---- Helpers ----

func smallUserSchema() dsl.Schema {
	return dsl.Object(
		dsl.Prop("id", dsl.String().MinLength(1)),
		dsl.Prop("name", dsl.String().Trim()),
	)
}

func smallUserJSON() []byte {
	return []byte(`{"id":"u_1","name":"alice"}`)
}

// generateHugeJSONArray returns a JSON array of objects of the form:
// [{"id":"obj_0","name":"n0","age":0,"active":true,"meta":{"score":0},"k0":"v0",...}, ...]
func generateHugeJSONArray(numObjects int, extraFields int) []byte {
	var buf bytes.Buffer
	buf.Grow(numObjects * (64 + extraFields*16))
	buf.WriteByte('[')
	for i := 0; i < numObjects; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		fmt.Fprintf(&buf, "\"id\":\"obj_%d\",", i)
		fmt.Fprintf(&buf, "\"name\":\"n%d\",", i)
		fmt.Fprintf(&buf, "\"age\":%d,", i)
		if i%2 == 0 {
			buf.WriteString("\"active\":true,")
		} else {
			buf.WriteString("\"active\":false,")
		}
		fmt.Fprintf(&buf, "\"meta\":{\"score\":%d}", i)
		for k := 0; k < extraFields; k++ {
			buf.WriteString(",\"k" + strconv.Itoa(k) + "\":\"v" + strconv.Itoa(i) + "_" + strconv.Itoa(k) + "\"")
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes()
}

func hugeArraySchema() dsl.Schema {
	return dsl.Array(dsl.Object(
		dsl.Prop("id", dsl.String()),
		dsl.Prop("age", dsl.Number().Min(0)),
		dsl.Prop("active", dsl.Boolean()),
		dsl.Prop("meta", dsl.Object(dsl.Prop("score", dsl.Number())).AllowUnknownProperties()),
	).ToCamelCase())
}

func unionSchema() dsl.Schema {
	kind := func(want string) func(any) bool {
		return func(v any) bool {
			k, _ := helpers.Field(v, "kind")
			return k == want
		}
	}
	return dsl.Array(dsl.Union(
		dsl.UnionIf(kind("a"), dsl.Object(dsl.Prop("kind", dsl.Literal("a")), dsl.Prop("x", dsl.Number()))),
		dsl.UnionIf(kind("b"), dsl.Object(dsl.Prop("kind", dsl.Literal("b")), dsl.Prop("y", dsl.String()))),
		dsl.UnionElse(dsl.Object().AllowUnknownProperties()),
	))
}

func mustCompile(b *testing.B, s dsl.Schema, opts ...dsl.CompileOption) *dsl.Compiled {
	b.Helper()
	c, err := dsl.Compile(s, opts...)
	if err != nil {
		b.Fatalf("compile failed: %v", err)
	}
	return c
}

// ---- Compile ----

func Benchmark_Compile_SmallObject(b *testing.B) {
	s := smallUserSchema()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := dsl.Compile(s); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_Compile_Union_NoProbe(b *testing.B) {
	s := unionSchema()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := dsl.Compile(s, dsl.WithoutGuardProbe()); err != nil {
			b.Fatal(err)
		}
	}
}

// ---- Validate (small inputs) ----

func Benchmark_ValidateJSON_Object_Small(b *testing.B) {
	ctx := context.Background()
	c := mustCompile(b, smallUserSchema())
	data := smallUserJSON()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.ValidateJSON(ctx, data, nil); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_Validate_Object_Small_Decoded(b *testing.B) {
	ctx := context.Background()
	c := mustCompile(b, smallUserSchema())
	data := map[string]any{"id": "u_1", "name": " alice "}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Validate(ctx, data, nil); err != nil {
			b.Fatal(err)
		}
	}
}

// ---- Validate (large inputs) ----

func Benchmark_ValidateJSON_HugeArray(b *testing.B) {
	for _, n := range []int{1_000, 10_000} {
		b.Run(strconv.Itoa(n), func(b *testing.B) {
			ctx := context.Background()
			c := mustCompile(b, hugeArraySchema())
			data := generateHugeJSONArray(n, 8)
			b.ReportAllocs()
			b.SetBytes(int64(len(data)))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := c.ValidateJSON(ctx, data, nil); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func Benchmark_DecodeJSON_HugeArray(b *testing.B) {
	data := generateHugeJSONArray(10_000, 8)
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.DecodeJSON(data, engine.DupLastWins, 0); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_ValidateJSON_Union(b *testing.B) {
	ctx := context.Background()
	c := mustCompile(b, unionSchema())
	data := []byte(`[{"kind":"a","x":1},{"kind":"b","y":"z"},{"kind":"c","w":true},{"kind":"a","x":2}]`)
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.ValidateJSON(ctx, data, nil); err != nil {
			b.Fatal(err)
		}
	}
}
