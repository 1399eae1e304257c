package dsl

import (
	vine "github.com/reoring/vine"
	"github.com/reoring/vine/helpers"
	"github.com/reoring/vine/ir"
)

// Property is a named child schema of an object or group condition.
type Property struct {
	Name   string
	Schema Schema
}

// Prop pairs name with schema.
func Prop(name string, s Schema) Property { return Property{Name: name, Schema: s} }

func checkProperties(op string, props []Property) []Property {
	seen := make(map[string]struct{}, len(props))
	for _, p := range props {
		if p.Schema == nil {
			vine.Configf(op, "property %q has no schema", p.Name)
		}
		if _, dup := seen[p.Name]; dup {
			vine.Configf(op, "duplicate property %q", p.Name)
		}
		seen[p.Name] = struct{}{}
	}
	return append([]Property(nil), props...)
}

func cloneProperties(props []Property) []Property {
	out := make([]Property, len(props))
	for i, p := range props {
		out[i] = Property{Name: p.Name, Schema: p.Schema.cloneSchema()}
	}
	return out
}

func emitProperties(props []Property, t *tracker, opts ParserOptions) ([]ir.Node, error) {
	out := make([]ir.Node, 0, len(props))
	for _, p := range props {
		n, err := p.Schema.emit(p.Name, t.at(p.Name), opts)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// ObjectType validates an object with declared properties and conditional
// groups. Property order is kept in the compiled output.
type ObjectType struct {
	base[*ObjectType]
	properties   []Property
	groups       []*GroupType
	allowUnknown bool
}

// Object returns an object schema. Duplicate property names panic.
func Object(props ...Property) *ObjectType {
	o := &ObjectType{properties: checkProperties("object", props)}
	o.base = newBase(o)
	return o
}

func (o *ObjectType) UniqueName() string  { return "vine.object" }
func (o *ObjectType) IsOfType(v any) bool { return helpers.IsObject(v) }

// GetProperties returns clones of the declared properties in order. Groups
// are not included.
func (o *ObjectType) GetProperties() []Property { return cloneProperties(o.properties) }

// AllowUnknownProperties copies undeclared keys to the output. There is no
// way to turn it off again.
func (o *ObjectType) AllowUnknownProperties() *ObjectType {
	o.allowUnknown = true
	return o
}

// Merge attaches a conditional group. Groups resolve in the order they were
// merged.
func (o *ObjectType) Merge(g *GroupType) *ObjectType {
	if g == nil {
		vine.Configf("object.merge", "group must not be nil")
	}
	o.groups = append(o.groups, g)
	return o
}

// ToCamelCase wraps the object so its output keys, and those of every
// descendant, are camelCased. The object itself is not modified.
func (o *ObjectType) ToCamelCase() *CamelCaseObject { return &CamelCaseObject{object: o} }

// Clone returns an independent copy: properties and groups are cloned too.
func (o *ObjectType) Clone() *ObjectType {
	c := &ObjectType{
		properties:   cloneProperties(o.properties),
		allowUnknown: o.allowUnknown,
	}
	for _, g := range o.groups {
		c.groups = append(c.groups, g.Clone())
	}
	c.base = o.cloneBase(c)
	return c
}

func (o *ObjectType) cloneSchema() Schema { return o.Clone() }

func (o *ObjectType) emit(field string, t *tracker, opts ParserOptions) (ir.Node, error) {
	f, err := o.emitField("object", field, t, opts)
	if err != nil {
		return nil, err
	}
	props, err := emitProperties(o.properties, t, opts)
	if err != nil {
		return nil, err
	}
	groups, err := emitGroups(o.groups, t, opts)
	if err != nil {
		return nil, err
	}
	return &ir.ObjectNode{
		Field:                  f,
		AllowUnknownProperties: o.allowUnknown,
		Properties:             props,
		Groups:                 groups,
	}, nil
}

// CamelCaseObject is a view over an ObjectType that forces camelCase output
// names during emission. Configuration calls are forwarded to the object.
type CamelCaseObject struct {
	object *ObjectType
}

// Unwrap returns the wrapped object.
func (c *CamelCaseObject) Unwrap() *ObjectType { return c.object }

func (c *CamelCaseObject) Optional() *CamelCaseObject { c.object.Optional(); return c }
func (c *CamelCaseObject) Nullable() *CamelCaseObject { c.object.Nullable(); return c }

func (c *CamelCaseObject) Bail(state bool) *CamelCaseObject {
	c.object.Bail(state)
	return c
}

func (c *CamelCaseObject) Parse(p vine.Parser) *CamelCaseObject {
	c.object.Parse(p)
	return c
}

func (c *CamelCaseObject) Use(v vine.Validation) *CamelCaseObject {
	c.object.Use(v)
	return c
}

func (c *CamelCaseObject) UniqueName() string  { return c.object.UniqueName() }
func (c *CamelCaseObject) IsOfType(v any) bool { return c.object.IsOfType(v) }

// Clone clones the wrapped object and wraps the clone.
func (c *CamelCaseObject) Clone() *CamelCaseObject {
	return &CamelCaseObject{object: c.object.Clone()}
}

func (c *CamelCaseObject) cloneSchema() Schema { return c.Clone() }

func (c *CamelCaseObject) emit(field string, t *tracker, opts ParserOptions) (ir.Node, error) {
	opts.ToCamelCase = true
	return c.object.emit(field, t, opts)
}
