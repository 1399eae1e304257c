package dsl

import (
	vine "github.com/reoring/vine"
	"github.com/reoring/vine/ir"
)

// UnionCondition selects schema when guard matches the raw field value.
type UnionCondition struct {
	name   string
	guard  vine.Guard
	isElse bool
	schema Schema
}

// UnionIf returns a condition selecting s when guard matches. A nil guard
// is reported by Compile.
func UnionIf(guard vine.Guard, s Schema) *UnionCondition {
	if s == nil {
		vine.Configf("union.if", "schema must not be nil")
	}
	return &UnionCondition{name: "if", guard: guard, schema: s}
}

// UnionElse returns a condition that always matches. It must be last.
func UnionElse(s Schema) *UnionCondition {
	if s == nil {
		vine.Configf("union.else", "schema must not be nil")
	}
	return &UnionCondition{name: "else", guard: always, isElse: true, schema: s}
}

func (c *UnionCondition) clone() *UnionCondition {
	return &UnionCondition{name: c.name, guard: c.guard, isElse: c.isElse, schema: c.schema.cloneSchema()}
}

// UnionType validates a value with the schema of the first condition whose
// guard matches. When nothing matches and no Otherwise handler is set the
// value is rejected.
type UnionType struct {
	base[*UnionType]
	conditions []*UnionCondition
	otherwise  vine.NoMatchFunc
}

// Union returns a union over conds, evaluated in order.
func Union(conds ...*UnionCondition) *UnionType {
	for i, c := range conds {
		if c == nil {
			vine.Configf("union", "condition %d is nil", i)
		}
		if c.isElse && i != len(conds)-1 {
			vine.Configf("union", "else must be the last condition")
		}
	}
	u := &UnionType{conditions: append([]*UnionCondition(nil), conds...)}
	u.base = newBase(u)
	return u
}

// UnionOfTypes builds a union whose guards are the members' own IsOfType
// predicates. Members must have distinct unique names.
func UnionOfTypes(members ...TypeMember) *UnionType {
	seen := make(map[string]struct{}, len(members))
	conds := make([]*UnionCondition, 0, len(members))
	for _, m := range members {
		if m == nil {
			vine.Configf("unionOfTypes", "member must not be nil")
		}
		name := m.UniqueName()
		if _, dup := seen[name]; dup {
			vine.Configf("unionOfTypes", "duplicate schema type %q", name)
		}
		seen[name] = struct{}{}
		conds = append(conds, &UnionCondition{name: name, guard: m.IsOfType, schema: m})
	}
	u := &UnionType{conditions: conds}
	u.base = newBase(u)
	return u
}

// Otherwise registers a handler invoked when no condition matched. The
// handler may report an issue; if it does not, the value is omitted.
func (u *UnionType) Otherwise(fn vine.NoMatchFunc) *UnionType {
	if fn == nil {
		vine.Configf("union.otherwise", "handler must not be nil")
	}
	if n := len(u.conditions); n > 0 && u.conditions[n-1].isElse {
		vine.Configf("union.otherwise", "unreachable after an else condition")
	}
	u.otherwise = fn
	return u
}

// Clone returns an independent copy; every branch schema is cloned.
func (u *UnionType) Clone() *UnionType {
	c := &UnionType{otherwise: u.otherwise}
	for _, cond := range u.conditions {
		c.conditions = append(c.conditions, cond.clone())
	}
	c.base = u.cloneBase(c)
	return c
}

func (u *UnionType) cloneSchema() Schema { return u.Clone() }

// emit registers each guard before emitting its branch, so guard and branch
// refs interleave in declaration order.
func (u *UnionType) emit(field string, t *tracker, opts ParserOptions) (ir.Node, error) {
	f, err := u.emitField("union", field, t, opts)
	if err != nil {
		return nil, err
	}
	node := &ir.UnionNode{Field: f, Conditions: make([]ir.UnionCondition, 0, len(u.conditions))}
	for _, c := range u.conditions {
		guardRef, err := t.guard(c.name, c.guard)
		if err != nil {
			return nil, err
		}
		child, err := c.schema.emit(field, t, opts)
		if err != nil {
			return nil, err
		}
		node.Conditions = append(node.Conditions, ir.UnionCondition{GuardRef: guardRef, Schema: child})
	}
	otherwise, err := t.otherwise(u.otherwise)
	if err != nil {
		return nil, err
	}
	node.OtherwiseRef = otherwise
	return node, nil
}
