package schemadoc

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"gopkg.in/yaml.v3"

	vine "github.com/reoring/vine"
	"github.com/reoring/vine/helpers"
)

// when compiles the "when" expression of a branch into a guard. Runtime
// errors (for example a field access on a non-object) count as no match.
func (l *Loader) when(f *fields) (vine.Guard, error) {
	n, ok := f.get("when")
	if !ok {
		return nil, errAt(f.node, nil, "condition needs when or else")
	}
	if n.Kind != yaml.ScalarNode {
		return nil, errAt(n, nil, "when must be an expression string")
	}
	opts := append([]expr.Option{expr.Env(map[string]any{"value": nil}), expr.AsBool()}, l.functions...)
	prog, err := expr.Compile(n.Value, opts...)
	if err != nil {
		return nil, errAt(n, err, "invalid guard expression")
	}
	l.logger.Debug("guard compiled", "at", describe(n), "expr", n.Value)
	return programGuard(prog), nil
}

func programGuard(prog *vm.Program) vine.Guard {
	return func(v any) bool {
		out, err := expr.Run(prog, map[string]any{"value": v})
		if err != nil {
			return false
		}
		b, _ := out.(bool)
		return b
	}
}

func predicate(name string, fn func(any) bool) expr.Option {
	return expr.Function(name, func(params ...any) (any, error) {
		return fn(params[0]), nil
	}, new(func(any) bool))
}

func builtinFunctions() []expr.Option {
	return []expr.Option{
		predicate("isString", helpers.IsString),
		predicate("isObject", helpers.IsObject),
		predicate("isArray", helpers.IsArray),
		predicate("isNumber", helpers.IsNumber),
		predicate("isBoolean", helpers.IsBoolean),
		predicate("isTrue", helpers.IsTrue),
		predicate("isFalse", helpers.IsFalse),
		predicate("isMissing", helpers.IsMissing),
		predicate("isNumeric", func(v any) bool {
			s, ok := v.(string)
			return ok && helpers.IsNumeric(s)
		}),
		expr.Function("asNumber", func(params ...any) (any, error) {
			return helpers.AsNumber(params[0]), nil
		}, new(func(any) float64)),
		expr.Function("field", func(params ...any) (any, error) {
			v, _ := helpers.Field(params[0], params[1].(string))
			return v, nil
		}, new(func(any, string) any)),
	}
}
