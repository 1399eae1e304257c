// Package openapi exports compiled schemas as OpenAPI 3.0 components using
// kin-openapi. It converts the JSON Schema projection of the jsonschema
// package, so the same approximations apply.
package openapi

import (
	"context"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/reoring/vine/ir"
	"github.com/reoring/vine/jsonschema"
)

// Version is the OpenAPI version written by Document.
const Version = "3.0.3"

// Schema converts one compiled tree.
func Schema(root *ir.RootNode, opts ...jsonschema.Option) (*openapi3.Schema, error) {
	js, err := jsonschema.Export(root, opts...)
	if err != nil {
		return nil, err
	}
	return convert(js), nil
}

// Document builds a document whose components hold one schema per entry of
// roots. The document is validated before it is returned.
func Document(ctx context.Context, title, version string, roots map[string]*ir.RootNode, opts ...jsonschema.Option) (*openapi3.T, error) {
	doc := &openapi3.T{
		OpenAPI:    Version,
		Info:       &openapi3.Info{Title: title, Version: version},
		Paths:      openapi3.NewPaths(),
		Components: &openapi3.Components{Schemas: openapi3.Schemas{}},
	}
	for name, root := range roots {
		s, err := Schema(root, opts...)
		if err != nil {
			return nil, fmt.Errorf("openapi: schema %q: %w", name, err)
		}
		doc.Components.Schemas[name] = openapi3.NewSchemaRef("", s)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("openapi: validate document: %w", err)
	}
	return doc, nil
}

func convert(js *jsonschema.Schema) *openapi3.Schema {
	// OpenAPI 3.0 has no null type: a {T, null} pair becomes a nullable T.
	if len(js.AnyOf) == 2 && js.AnyOf[1].Type == "null" {
		s := convert(js.AnyOf[0])
		s.Nullable = true
		return s
	}
	s := &openapi3.Schema{
		Description: js.Description,
		Format:      js.Format,
		Pattern:     js.Pattern,
		Required:    js.Required,
		UniqueItems: js.UniqueItems,
	}
	if js.Type != "" {
		s.Type = &openapi3.Types{js.Type}
	}
	if js.Const != nil {
		s.Enum = []any{js.Const}
	}
	if len(js.Enum) > 0 {
		s.Enum = append([]any(nil), js.Enum...)
	}
	if js.MinLength != nil {
		s.MinLength = uint64(*js.MinLength)
	}
	if js.MaxLength != nil {
		s.MaxLength = openapi3.Uint64Ptr(uint64(*js.MaxLength))
	}
	s.Min, s.Max = js.Minimum, js.Maximum
	if js.ExclusiveMinimum != nil {
		s.Min, s.ExclusiveMin = js.ExclusiveMinimum, true
	}
	if js.ExclusiveMaximum != nil {
		s.Max, s.ExclusiveMax = js.ExclusiveMaximum, true
	}
	if js.Items != nil {
		s.Items = openapi3.NewSchemaRef("", convert(js.Items))
	}
	if js.MinItems != nil {
		s.MinItems = uint64(*js.MinItems)
	}
	if js.MaxItems != nil {
		s.MaxItems = openapi3.Uint64Ptr(uint64(*js.MaxItems))
	}
	if js.Properties != nil {
		s.Properties = make(openapi3.Schemas, len(js.Properties))
		for name, p := range js.Properties {
			s.Properties[name] = openapi3.NewSchemaRef("", convert(p))
		}
	}
	if js.AdditionalProperties != nil {
		s.AdditionalProperties = openapi3.AdditionalProperties{Has: openapi3.BoolPtr(*js.AdditionalProperties)}
	}
	for _, b := range js.AnyOf {
		s.AnyOf = append(s.AnyOf, openapi3.NewSchemaRef("", convert(b)))
	}
	return s
}
