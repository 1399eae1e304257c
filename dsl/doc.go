// Package dsl provides the schema builder for vine and the compiler that
// turns a builder tree into IR.
//
// Overview
//   - Literal types: String(), Number(), Boolean(), Literal(v).
//   - Composites: Array(elem), Object(props...) with Prop(name, schema), Union(conds...)
//     and UnionOfTypes(members...).
//   - Conditional properties: Group(GroupIf(...), GroupElse(...)) attached with Object.Merge.
//   - Compile(root) walks the tree once and returns a Compiled artifact: the IR
//     (ir.RootNode) and a sealed ir.RefsStore holding every callback the IR refers to.
//
// Builders are mutable and single-owner. Chaining methods modify the receiver
// and return it; use Clone before sharing a schema as a template. Invalid
// configuration (negative lengths, conflicting bounds, duplicate properties)
// panics with *vine.ConfigError at the offending call.
//
// Emission order
//
// A node tracks its parser, then its validations, then its children. Union
// conditions track their guard right before emitting their branch. Group
// conditions resolve after the object's own properties, in the order groups
// were merged.
//
// Quickstart
//
//	schema := dsl.Object(
//	    dsl.Prop("full_name", dsl.String().Trim()),
//	    dsl.Prop("contact", dsl.Union(
//	        dsl.UnionIf(isEmail, dsl.Object(dsl.Prop("email", dsl.String().Email()))),
//	        dsl.UnionIf(isPhone, dsl.Object(dsl.Prop("mobile", dsl.String().Mobile()))),
//	    )),
//	).ToCamelCase()
//	compiled, err := dsl.Compile(schema)
//	if err != nil { /* malformed tree */ }
//	out, err := compiled.Validate(ctx, input, nil)
//	if iss, ok := vine.AsIssues(err); ok { /* report */ }
package dsl
