package dsl

import (
	vine "github.com/reoring/vine"
	"github.com/reoring/vine/ir"
)

// always is the guard of Else conditions.
func always(any) bool { return true }

// GroupCondition adds properties (and nested groups) to an object when its
// guard matches the object value.
type GroupCondition struct {
	name       string
	guard      vine.Guard
	isElse     bool
	properties []Property
	groups     []*GroupType
}

// GroupIf returns a condition applying props when guard matches. A nil
// guard is reported by Compile.
func GroupIf(guard vine.Guard, props ...Property) *GroupCondition {
	return &GroupCondition{name: "if", guard: guard, properties: checkProperties("group.if", props)}
}

// GroupElse returns a condition that always matches. It must be last.
func GroupElse(props ...Property) *GroupCondition {
	return &GroupCondition{name: "else", guard: always, isElse: true, properties: checkProperties("group.else", props)}
}

// Merge nests g inside the condition; it resolves only when the condition
// matched.
func (c *GroupCondition) Merge(g *GroupType) *GroupCondition {
	if g == nil {
		vine.Configf("group.if.merge", "group must not be nil")
	}
	c.groups = append(c.groups, g)
	return c
}

func (c *GroupCondition) clone() *GroupCondition {
	out := &GroupCondition{
		name:       c.name,
		guard:      c.guard,
		isElse:     c.isElse,
		properties: cloneProperties(c.properties),
	}
	for _, g := range c.groups {
		out.groups = append(out.groups, g.Clone())
	}
	return out
}

// GroupType is a set of mutually exclusive conditions merged into an object
// with ObjectType.Merge. The first matching condition wins.
type GroupType struct {
	conditions []*GroupCondition
	otherwise  vine.NoMatchFunc
}

// Group returns a group over conds. An Else condition must come last.
func Group(conds ...*GroupCondition) *GroupType {
	for i, c := range conds {
		if c == nil {
			vine.Configf("group", "condition %d is nil", i)
		}
		if c.isElse && i != len(conds)-1 {
			vine.Configf("group", "else must be the last condition")
		}
	}
	return &GroupType{conditions: append([]*GroupCondition(nil), conds...)}
}

// Otherwise registers a handler invoked when no condition matched. Without
// one, an unmatched group contributes nothing and is not an error.
func (g *GroupType) Otherwise(fn vine.NoMatchFunc) *GroupType {
	if fn == nil {
		vine.Configf("group.otherwise", "handler must not be nil")
	}
	if n := len(g.conditions); n > 0 && g.conditions[n-1].isElse {
		vine.Configf("group.otherwise", "unreachable after an else condition")
	}
	g.otherwise = fn
	return g
}

// Clone returns an independent copy of the group and its conditions.
func (g *GroupType) Clone() *GroupType {
	c := &GroupType{otherwise: g.otherwise}
	for _, cond := range g.conditions {
		c.conditions = append(c.conditions, cond.clone())
	}
	return c
}

func emitGroups(groups []*GroupType, t *tracker, opts ParserOptions) ([]*ir.GroupNode, error) {
	out := make([]*ir.GroupNode, 0, len(groups))
	for _, g := range groups {
		n, err := g.emit(t, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (g *GroupType) emit(t *tracker, opts ParserOptions) (*ir.GroupNode, error) {
	node := &ir.GroupNode{Type: "group", Conditions: make([]ir.GroupCondition, 0, len(g.conditions))}
	for _, c := range g.conditions {
		guardRef, err := t.guard(c.name, c.guard)
		if err != nil {
			return nil, err
		}
		props, err := emitProperties(c.properties, t, opts)
		if err != nil {
			return nil, err
		}
		nested, err := emitGroups(c.groups, t, opts)
		if err != nil {
			return nil, err
		}
		node.Conditions = append(node.Conditions, ir.GroupCondition{GuardRef: guardRef, Properties: props, Groups: nested})
	}
	otherwise, err := t.otherwise(g.otherwise)
	if err != nil {
		return nil, err
	}
	node.OtherwiseRef = otherwise
	return node, nil
}
