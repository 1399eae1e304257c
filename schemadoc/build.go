package schemadoc

import (
	"regexp"

	"gopkg.in/yaml.v3"

	vine "github.com/reoring/vine"
	"github.com/reoring/vine/dsl"
	"github.com/reoring/vine/rules"
)

var commonKeys = []string{"type", "optional", "nullable", "bail", "rules", "description"}

func keys(extra ...string) []string { return append(append([]string(nil), commonKeys...), extra...) }

// configurable is the option surface shared by every dsl type.
type configurable[S any] interface {
	Optional() S
	Nullable() S
	Bail(bool) S
	Use(vine.Validation) S
}

func configure[S any](s configurable[S], f *fields) error {
	for _, k := range []string{"optional", "nullable", "bail"} {
		if _, ok := f.get(k); !ok {
			continue
		}
		b, err := f.flag(k)
		if err != nil {
			return err
		}
		switch k {
		case "optional":
			if b {
				s.Optional()
			}
		case "nullable":
			if b {
				s.Nullable()
			}
		case "bail":
			s.Bail(b)
		}
	}
	return nil
}

func (l *Loader) schema(n *yaml.Node) (dsl.Schema, error) {
	f, err := mappingOf(n)
	if err != nil {
		return nil, err
	}
	typ, ok, err := f.text("type")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errAt(f.node, nil, "missing type")
	}
	var out dsl.Schema
	err = guarded(f.node, func() error {
		var err error
		switch typ {
		case "string":
			out, err = l.stringType(f)
		case "number":
			out, err = l.numberType(f)
		case "boolean":
			out, err = l.booleanType(f)
		case "literal":
			out, err = l.literalType(f)
		case "array":
			out, err = l.arrayType(f)
		case "object":
			out, err = l.objectType(f)
		case "union":
			out, err = l.unionType(f)
		case "unionOfTypes":
			out, err = l.unionOfTypes(f)
		default:
			err = errAt(f.vals["type"], nil, "unknown type %q", typ)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// custom binds a rule registered with WithRule.
func (l *Loader) custom(r ruleSpec) (vine.Validation, error) {
	rule, ok := l.rules[r.name]
	if !ok {
		return vine.Validation{}, r.unknown()
	}
	var opts any
	if r.arg != nil {
		if err := r.arg.Decode(&opts); err != nil {
			return vine.Validation{}, errAt(r.arg, err, "invalid argument for rule %q", r.name)
		}
	}
	return rule.With(opts), nil
}

func (l *Loader) stringType(f *fields) (dsl.Schema, error) {
	if err := f.only(keys()...); err != nil {
		return nil, err
	}
	s := dsl.String()
	rs, err := ruleList(f)
	if err != nil {
		return nil, err
	}
	for _, r := range rs {
		if err := l.stringRule(s, r); err != nil {
			return nil, err
		}
	}
	return s, configure[*dsl.StringType](s, f)
}

func (l *Loader) stringRule(s *dsl.StringType, r ruleSpec) error {
	switch r.name {
	case "email":
		var o rules.EmailOptions
		if r.arg != nil {
			if err := r.decode(&o); err != nil {
				return err
			}
		}
		s.Email(o)
	case "url":
		var o rules.URLOptions
		if r.arg != nil {
			if err := r.decode(&o); err != nil {
				return err
			}
		}
		s.URL(o)
	case "activeUrl":
		s.ActiveURL()
	case "mobile":
		s.Mobile()
	case "hexCode":
		s.HexCode()
	case "alpha":
		s.Alpha()
	case "alphaNumeric":
		s.AlphaNumeric()
	case "trim":
		s.Trim()
	case "toLowerCase":
		s.ToLowerCase()
	case "toUpperCase":
		s.ToUpperCase()
	case "sanitize":
		s.Sanitize()
	case "minLength", "maxLength", "fixedLength":
		n, err := r.int()
		if err != nil {
			return err
		}
		map[string]func(int) *dsl.StringType{"minLength": s.MinLength, "maxLength": s.MaxLength, "fixedLength": s.FixedLength}[r.name](n)
	case "startsWith", "endsWith":
		sub, err := r.text()
		if err != nil {
			return err
		}
		if r.name == "startsWith" {
			s.StartsWith(sub)
		} else {
			s.EndsWith(sub)
		}
	case "regex":
		src, err := r.text()
		if err != nil {
			return err
		}
		re, err := regexp.Compile(src)
		if err != nil {
			return errAt(r.arg, err, "invalid regex")
		}
		s.Regex(re)
	case "in":
		choices, err := r.texts()
		if err != nil {
			return err
		}
		s.In(choices...)
	default:
		v, err := l.custom(r)
		if err != nil {
			return err
		}
		s.Use(v)
	}
	return nil
}

func (l *Loader) numberType(f *fields) (dsl.Schema, error) {
	if err := f.only(keys()...); err != nil {
		return nil, err
	}
	s := dsl.Number()
	rs, err := ruleList(f)
	if err != nil {
		return nil, err
	}
	for _, r := range rs {
		switch r.name {
		case "min", "max":
			v, err := r.float()
			if err != nil {
				return nil, err
			}
			if r.name == "min" {
				s.Min(v)
			} else {
				s.Max(v)
			}
		case "range":
			lo, hi, err := r.pair()
			if err != nil {
				return nil, err
			}
			s.Range(lo, hi)
		case "positive":
			s.Positive()
		case "negative":
			s.Negative()
		case "withoutDecimals":
			s.WithoutDecimals()
		default:
			v, err := l.custom(r)
			if err != nil {
				return nil, err
			}
			s.Use(v)
		}
	}
	return s, configure[*dsl.NumberType](s, f)
}

func (l *Loader) booleanType(f *fields) (dsl.Schema, error) {
	if err := f.only(keys()...); err != nil {
		return nil, err
	}
	s := dsl.Boolean()
	if err := l.customOnly(f, func(v vine.Validation) { s.Use(v) }); err != nil {
		return nil, err
	}
	return s, configure[*dsl.BooleanType](s, f)
}

func (l *Loader) literalType(f *fields) (dsl.Schema, error) {
	if err := f.only(keys("value")...); err != nil {
		return nil, err
	}
	vn, ok := f.get("value")
	if !ok {
		return nil, errAt(f.node, nil, "literal needs a value")
	}
	var v any
	if err := vn.Decode(&v); err != nil {
		return nil, errAt(vn, err, "invalid literal")
	}
	s := dsl.Literal(v)
	if err := l.customOnly(f, func(v vine.Validation) { s.Use(v) }); err != nil {
		return nil, err
	}
	return s, configure[*dsl.LiteralType](s, f)
}

func (l *Loader) customOnly(f *fields, use func(vine.Validation)) error {
	rs, err := ruleList(f)
	if err != nil {
		return err
	}
	for _, r := range rs {
		v, err := l.custom(r)
		if err != nil {
			return err
		}
		use(v)
	}
	return nil
}

func (l *Loader) arrayType(f *fields) (dsl.Schema, error) {
	if err := f.only(keys("element")...); err != nil {
		return nil, err
	}
	en, ok := f.get("element")
	if !ok {
		return nil, errAt(f.node, nil, "array needs an element schema")
	}
	elem, err := l.schema(en)
	if err != nil {
		return nil, err
	}
	s := dsl.Array(elem)
	rs, err := ruleList(f)
	if err != nil {
		return nil, err
	}
	for _, r := range rs {
		switch r.name {
		case "minLength", "maxLength", "fixedLength":
			n, err := r.int()
			if err != nil {
				return nil, err
			}
			map[string]func(int) *dsl.ArrayType{"minLength": s.MinLength, "maxLength": s.MaxLength, "fixedLength": s.FixedLength}[r.name](n)
		case "notEmpty":
			s.NotEmpty()
		case "compact":
			s.Compact()
		case "distinct":
			var by []string
			if r.arg != nil {
				if by, err = r.texts(); err != nil {
					return nil, err
				}
			}
			s.Distinct(by...)
		default:
			v, err := l.custom(r)
			if err != nil {
				return nil, err
			}
			s.Use(v)
		}
	}
	return s, configure[*dsl.ArrayType](s, f)
}

func (l *Loader) properties(n *yaml.Node) ([]dsl.Property, error) {
	pf, err := mappingOf(n)
	if err != nil {
		return nil, err
	}
	props := make([]dsl.Property, 0, len(pf.keys))
	for _, k := range pf.keys {
		ps, err := l.schema(pf.vals[k])
		if err != nil {
			return nil, err
		}
		props = append(props, dsl.Prop(k, ps))
	}
	return props, nil
}

func (l *Loader) objectType(f *fields) (dsl.Schema, error) {
	if err := f.only(keys("properties", "allowUnknownProperties", "camelCase", "groups")...); err != nil {
		return nil, err
	}
	var props []dsl.Property
	if pn, ok := f.get("properties"); ok {
		var err error
		if props, err = l.properties(pn); err != nil {
			return nil, err
		}
	}
	o := dsl.Object(props...)
	if open, err := f.flag("allowUnknownProperties"); err != nil {
		return nil, err
	} else if open {
		o.AllowUnknownProperties()
	}
	if gn, ok := f.get("groups"); ok {
		items, err := sequenceOf(gn)
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			g, err := l.group(it)
			if err != nil {
				return nil, err
			}
			o.Merge(g)
		}
	}
	if err := l.customOnly(f, func(v vine.Validation) { o.Use(v) }); err != nil {
		return nil, err
	}
	if err := configure[*dsl.ObjectType](o, f); err != nil {
		return nil, err
	}
	camel, err := f.flag("camelCase")
	if err != nil {
		return nil, err
	}
	if camel {
		return o.ToCamelCase(), nil
	}
	return o, nil
}

// group reads {conditions: [...], otherwise: omit|reject}.
func (l *Loader) group(n *yaml.Node) (*dsl.GroupType, error) {
	f, err := mappingOf(n)
	if err != nil {
		return nil, err
	}
	if err := f.only("conditions", "otherwise"); err != nil {
		return nil, err
	}
	cn, ok := f.get("conditions")
	if !ok {
		return nil, errAt(f.node, nil, "group needs conditions")
	}
	items, err := sequenceOf(cn)
	if err != nil {
		return nil, err
	}
	conds := make([]*dsl.GroupCondition, 0, len(items))
	for _, it := range items {
		c, err := l.groupCondition(it)
		if err != nil {
			return nil, err
		}
		conds = append(conds, c)
	}
	g := dsl.Group(conds...)
	if fn, err := otherwise(f, vine.CodeGroupNoMatch); err != nil {
		return nil, err
	} else if fn != nil {
		g.Otherwise(fn)
	}
	return g, nil
}

func (l *Loader) groupCondition(n *yaml.Node) (*dsl.GroupCondition, error) {
	f, err := mappingOf(n)
	if err != nil {
		return nil, err
	}
	if err := f.only("when", "else", "properties", "groups"); err != nil {
		return nil, err
	}
	var props []dsl.Property
	if pn, ok := f.get("properties"); ok {
		if props, err = l.properties(pn); err != nil {
			return nil, err
		}
	}
	var c *dsl.GroupCondition
	if isElse, err := f.flag("else"); err != nil {
		return nil, err
	} else if isElse {
		c = dsl.GroupElse(props...)
	} else {
		g, err := l.when(f)
		if err != nil {
			return nil, err
		}
		c = dsl.GroupIf(g, props...)
	}
	if gn, ok := f.get("groups"); ok {
		items, err := sequenceOf(gn)
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			nested, err := l.group(it)
			if err != nil {
				return nil, err
			}
			c.Merge(nested)
		}
	}
	return c, nil
}

func (l *Loader) unionType(f *fields) (dsl.Schema, error) {
	if err := f.only(keys("branches", "otherwise")...); err != nil {
		return nil, err
	}
	bn, ok := f.get("branches")
	if !ok {
		return nil, errAt(f.node, nil, "union needs branches")
	}
	items, err := sequenceOf(bn)
	if err != nil {
		return nil, err
	}
	conds := make([]*dsl.UnionCondition, 0, len(items))
	for _, it := range items {
		bf, err := mappingOf(it)
		if err != nil {
			return nil, err
		}
		if err := bf.only("when", "else", "schema"); err != nil {
			return nil, err
		}
		sn, ok := bf.get("schema")
		if !ok {
			return nil, errAt(bf.node, nil, "branch needs a schema")
		}
		s, err := l.schema(sn)
		if err != nil {
			return nil, err
		}
		if isElse, err := bf.flag("else"); err != nil {
			return nil, err
		} else if isElse {
			conds = append(conds, dsl.UnionElse(s))
			continue
		}
		g, err := l.when(bf)
		if err != nil {
			return nil, err
		}
		conds = append(conds, dsl.UnionIf(g, s))
	}
	u := dsl.Union(conds...)
	if fn, err := otherwise(f, vine.CodeUnionNoMatch); err != nil {
		return nil, err
	} else if fn != nil {
		u.Otherwise(fn)
	}
	if err := l.customOnly(f, func(v vine.Validation) { u.Use(v) }); err != nil {
		return nil, err
	}
	return u, configure[*dsl.UnionType](u, f)
}

func (l *Loader) unionOfTypes(f *fields) (dsl.Schema, error) {
	if err := f.only(keys("members")...); err != nil {
		return nil, err
	}
	mn, ok := f.get("members")
	if !ok {
		return nil, errAt(f.node, nil, "unionOfTypes needs members")
	}
	items, err := sequenceOf(mn)
	if err != nil {
		return nil, err
	}
	members := make([]dsl.TypeMember, 0, len(items))
	for _, it := range items {
		s, err := l.schema(it)
		if err != nil {
			return nil, err
		}
		m, ok := s.(dsl.TypeMember)
		if !ok {
			return nil, errAt(it, nil, "schema cannot be a union member")
		}
		members = append(members, m)
	}
	u := dsl.UnionOfTypes(members...)
	if err := l.customOnly(f, func(v vine.Validation) { u.Use(v) }); err != nil {
		return nil, err
	}
	return u, configure[*dsl.UnionType](u, f)
}

// otherwise maps "omit" to a silent handler and "reject" to one reporting
// code.
func otherwise(f *fields, code string) (vine.NoMatchFunc, error) {
	mode, ok, err := f.text("otherwise")
	if err != nil || !ok {
		return nil, err
	}
	switch mode {
	case "omit":
		return func(any, *vine.FieldContext) {}, nil
	case "reject":
		return func(_ any, field *vine.FieldContext) { field.Report(code, "otherwise", nil) }, nil
	}
	return nil, errAt(f.vals["otherwise"], nil, "otherwise must be omit or reject")
}
