package jsonschema

import (
	"fmt"

	"github.com/reoring/vine/ir"
	"github.com/reoring/vine/rules"
)

// Option configures Export.
type Option func(*exporter)

// WithOutputNames names object properties by their output name instead of
// the input key. Use it to describe validated output rather than input.
func WithOutputNames() Option { return func(e *exporter) { e.outputNames = true } }

type exporter struct {
	outputNames bool
}

// Export projects a compiled tree onto JSON Schema. Guards and parsers are
// opaque callbacks, so the result is an approximation: union branches become
// anyOf, group properties become optional properties and custom rules are
// ignored.
func Export(root *ir.RootNode, opts ...Option) (*Schema, error) {
	if root == nil || root.Schema == nil {
		return nil, fmt.Errorf("jsonschema: empty root")
	}
	e := &exporter{}
	for _, o := range opts {
		o(e)
	}
	s, err := e.node(root.Schema)
	if err != nil {
		return nil, err
	}
	s.Dialect = Draft
	return s, nil
}

func (e *exporter) node(n ir.Node) (*Schema, error) {
	var s *Schema
	switch t := n.(type) {
	case *ir.LiteralNode:
		s = literal(t)
	case *ir.ArrayNode:
		items, err := e.node(t.Element)
		if err != nil {
			return nil, err
		}
		s = &Schema{Type: "array", Items: items}
	case *ir.ObjectNode:
		var err error
		if s, err = e.object(t); err != nil {
			return nil, err
		}
	case *ir.UnionNode:
		s = &Schema{}
		for _, c := range t.Conditions {
			b, err := e.node(c.Schema)
			if err != nil {
				return nil, err
			}
			s.AnyOf = append(s.AnyOf, b)
		}
	default:
		return nil, fmt.Errorf("jsonschema: unsupported node %T", n)
	}
	applyValidations(s, n.Base().Validations)
	if n.Base().AllowNull {
		s = &Schema{AnyOf: []*Schema{s, {Type: "null"}}}
	}
	return s, nil
}

func literal(n *ir.LiteralNode) *Schema {
	switch n.Subtype {
	case "vine.string":
		return &Schema{Type: "string"}
	case "vine.number":
		return &Schema{Type: "number"}
	case "vine.boolean":
		return &Schema{Type: "boolean"}
	}
	return &Schema{}
}

func (e *exporter) object(n *ir.ObjectNode) (*Schema, error) {
	s := &Schema{Type: "object", Properties: map[string]*Schema{}}
	if !n.AllowUnknownProperties {
		closed := false
		s.AdditionalProperties = &closed
	}
	if err := e.properties(s, n.Properties, true); err != nil {
		return nil, err
	}
	if err := e.groups(s, n.Groups); err != nil {
		return nil, err
	}
	return s, nil
}

func (e *exporter) properties(s *Schema, props []ir.Node, declared bool) error {
	for _, p := range props {
		b := p.Base()
		name := b.FieldName
		if e.outputNames {
			name = b.OutputName
		}
		ps, err := e.node(p)
		if err != nil {
			return err
		}
		s.Properties[name] = ps
		if declared && !b.IsOptional {
			s.Required = append(s.Required, name)
		}
	}
	return nil
}

// groups adds every conditional property as optional; which one applies is
// decided by guards at runtime.
func (e *exporter) groups(s *Schema, groups []*ir.GroupNode) error {
	for _, g := range groups {
		for _, c := range g.Conditions {
			if err := e.properties(s, c.Properties, false); err != nil {
				return err
			}
			if err := e.groups(s, c.Groups); err != nil {
				return err
			}
		}
	}
	return nil
}

func applyValidations(s *Schema, vs []ir.ValidationNode) {
	for _, v := range vs {
		switch o := v.Options.(type) {
		case rules.LengthOptions:
			length(s, v.Rule, o)
		case rules.FormatOptions:
			switch o.Format {
			case "email":
				s.Format = "email"
			case "url":
				s.Format = "uri"
			}
		case rules.RegexOptions:
			if o.Pattern != nil {
				s.Pattern = o.Pattern.String()
			}
		case rules.InOptions:
			for _, c := range o.Choices {
				s.Enum = append(s.Enum, c)
			}
		case rules.EqualsOptions:
			s.Const = o.Expected
		case rules.BoundOptions:
			bounds(s, o)
		case rules.DistinctOptions:
			if len(o.Fields) == 0 {
				s.UniqueItems = true
			}
		}
		if v.Rule == "withoutDecimals" && s.Type == "number" {
			s.Type = "integer"
		}
	}
}

func length(s *Schema, rule string, o rules.LengthOptions) {
	min, max := &s.MinLength, &s.MaxLength
	if s.Type == "array" {
		min, max = &s.MinItems, &s.MaxItems
	}
	switch rule {
	case "minLength":
		*min = intPtr(o.Min)
	case "maxLength":
		*max = intPtr(o.Max)
	case "fixedLength":
		*min, *max = intPtr(o.Size), intPtr(o.Size)
	}
}

func bounds(s *Schema, o rules.BoundOptions) {
	if o.Min != nil {
		v := *o.Min
		if o.Exclusive {
			s.ExclusiveMinimum = &v
		} else {
			s.Minimum = &v
		}
	}
	if o.Max != nil {
		v := *o.Max
		if o.Exclusive {
			s.ExclusiveMaximum = &v
		} else {
			s.Maximum = &v
		}
	}
}

func intPtr(n int) *int { return &n }
