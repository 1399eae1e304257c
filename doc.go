// Package vine holds the contracts shared by the schema builder, the IR
// compiler and the execution engine.
//
// - Callback signatures referenced from compiled IR (Parser, Guard, NoMatchFunc, Rule)
// - FieldContext, the view a rule gets of the field being validated
// - A stable error model via Issues (JSON Pointer, code, message)
// - Typed configuration and compile errors (ConfigError, CompileError)
//
// Design policy:
// - Keep only contracts in the root package; builders live in dsl/, the IR and
//   reference store in ir/, the reference engine in engine/.
// - Compiled IR references callbacks by integer id only, so it stays a plain,
//   serializable value.
//
// Typical usage:
//
//	schema := dsl.Object(
//	    dsl.Prop("email", dsl.String().Email()),
//	    dsl.Prop("tags", dsl.Array(dsl.String()).MinLength(1)),
//	)
//	compiled, err := dsl.Compile(schema)
//	out, err := compiled.Validate(ctx, data, nil)
package vine
