// Package ir defines the intermediate representation produced by compiling a
// schema tree. Nodes are plain values: callbacks are referenced by RefID and
// live in a RefsStore next to the tree.
package ir

// NodeKind identifies an IR node type.
type NodeKind int

const (
	NodeLiteral NodeKind = iota
	NodeArray
	NodeObject
	NodeUnion
	NodeGroup
	NodeRoot
)

var kindNames = [...]string{"literal", "array", "object", "union", "group", "root"}

func (k NodeKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Node is the IR node interface. Concrete types are *LiteralNode,
// *ArrayNode, *ObjectNode and *UnionNode.
type Node interface {
	Kind() NodeKind
	// Base exposes the fields common to every schema node.
	Base() *Field
}

// ValidationNode references a rule in the store together with its options.
type ValidationNode struct {
	Rule     string `json:"rule" yaml:"rule"`
	RuleRef  RefID  `json:"ruleRef" yaml:"ruleRef"`
	Implicit bool   `json:"implicit,omitempty" yaml:"implicit,omitempty"`
	Options  any    `json:"options,omitempty" yaml:"options,omitempty"`
}

// Field holds what every schema node carries.
type Field struct {
	Type        string           `json:"type" yaml:"type"`
	FieldName   string           `json:"fieldName" yaml:"fieldName"`
	OutputName  string           `json:"outputName" yaml:"outputName"`
	IsOptional  bool             `json:"isOptional" yaml:"isOptional"`
	AllowNull   bool             `json:"allowNull" yaml:"allowNull"`
	Bail        bool             `json:"bail" yaml:"bail"`
	ParseRef    *RefID           `json:"parseRef,omitempty" yaml:"parseRef,omitempty"`
	Validations []ValidationNode `json:"validations" yaml:"validations"`
}

func (f *Field) Base() *Field { return f }

// LiteralNode is a leaf value (string, number, boolean, exact literal).
type LiteralNode struct {
	Field   `yaml:",inline"`
	Subtype string `json:"subtype" yaml:"subtype"` // unique name of the literal kind
}

func (n *LiteralNode) Kind() NodeKind { return NodeLiteral }

// ArrayNode validates every element with the single Element node.
type ArrayNode struct {
	Field   `yaml:",inline"`
	Element Node `json:"element" yaml:"element"`
}

func (n *ArrayNode) Kind() NodeKind { return NodeArray }

// ObjectNode holds declared properties and conditional groups.
type ObjectNode struct {
	Field                  `yaml:",inline"`
	AllowUnknownProperties bool         `json:"allowUnknownProperties" yaml:"allowUnknownProperties"`
	Properties             []Node       `json:"properties" yaml:"properties"`
	Groups                 []*GroupNode `json:"groups" yaml:"groups"`
}

func (n *ObjectNode) Kind() NodeKind { return NodeObject }

// GroupNode is a list of mutually exclusive conditions. The first condition
// whose guard matches is merged into the parent object.
type GroupNode struct {
	Type         string           `json:"type" yaml:"type"`
	Conditions   []GroupCondition `json:"conditions" yaml:"conditions"`
	OtherwiseRef *RefID           `json:"otherwiseRef,omitempty" yaml:"otherwiseRef,omitempty"`
}

// GroupCondition pairs a guard with the properties and nested groups it adds.
type GroupCondition struct {
	GuardRef   RefID        `json:"guardRef" yaml:"guardRef"`
	Properties []Node       `json:"properties" yaml:"properties"`
	Groups     []*GroupNode `json:"groups" yaml:"groups"`
}

// UnionNode selects one child schema by evaluating guards in order.
// A nil OtherwiseRef means a value matching no condition is a failure.
type UnionNode struct {
	Field        `yaml:",inline"`
	Conditions   []UnionCondition `json:"conditions" yaml:"conditions"`
	OtherwiseRef *RefID           `json:"otherwiseRef,omitempty" yaml:"otherwiseRef,omitempty"`
}

func (n *UnionNode) Kind() NodeKind { return NodeUnion }

// UnionCondition pairs a guard with the schema used when it matches.
type UnionCondition struct {
	GuardRef RefID `json:"guardRef" yaml:"guardRef"`
	Schema   Node  `json:"schema" yaml:"schema"`
}

// RootNode wraps the compiled tree.
type RootNode struct {
	Type   string `json:"type" yaml:"type"`
	Schema Node   `json:"schema" yaml:"schema"`
}

// Walk calls fn for every schema node reachable from n in emission order
// (properties before groups, union conditions in declaration order).
func Walk(n Node, fn func(Node)) {
	if n == nil {
		return
	}
	fn(n)
	switch t := n.(type) {
	case *ArrayNode:
		Walk(t.Element, fn)
	case *ObjectNode:
		for _, p := range t.Properties {
			Walk(p, fn)
		}
		walkGroups(t.Groups, fn)
	case *UnionNode:
		for _, c := range t.Conditions {
			Walk(c.Schema, fn)
		}
	}
}

func walkGroups(groups []*GroupNode, fn func(Node)) {
	for _, g := range groups {
		for _, c := range g.Conditions {
			for _, p := range c.Properties {
				Walk(p, fn)
			}
			walkGroups(c.Groups, fn)
		}
	}
}
