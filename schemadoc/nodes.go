package schemadoc

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// fields is a mapping node indexed by key, keeping document order.
type fields struct {
	node *yaml.Node
	keys []string
	vals map[string]*yaml.Node
	kns  map[string]*yaml.Node
}

func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func mappingOf(n *yaml.Node) (*fields, error) {
	n = resolve(n)
	if n.Kind != yaml.MappingNode {
		return nil, errAt(n, nil, "expected a mapping")
	}
	f := &fields{node: n, vals: map[string]*yaml.Node{}, kns: map[string]*yaml.Node{}}
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], resolve(n.Content[i+1])
		if _, dup := f.vals[k.Value]; dup {
			return nil, errAt(k, nil, "duplicate key %q", k.Value)
		}
		f.keys = append(f.keys, k.Value)
		f.vals[k.Value] = v
		f.kns[k.Value] = k
	}
	return f, nil
}

func sequenceOf(n *yaml.Node) ([]*yaml.Node, error) {
	n = resolve(n)
	if n.Kind != yaml.SequenceNode {
		return nil, errAt(n, nil, "expected a sequence")
	}
	out := make([]*yaml.Node, len(n.Content))
	for i, c := range n.Content {
		out[i] = resolve(c)
	}
	return out, nil
}

// only rejects keys outside allowed.
func (f *fields) only(allowed ...string) error {
	for _, k := range f.keys {
		found := false
		for _, a := range allowed {
			if a == k {
				found = true
				break
			}
		}
		if !found {
			return errAt(f.kns[k], nil, "unknown key %q (allowed: %s)", k, strings.Join(allowed, ", "))
		}
	}
	return nil
}

func (f *fields) get(key string) (*yaml.Node, bool) {
	v, ok := f.vals[key]
	return v, ok
}

func (f *fields) flag(key string) (bool, error) {
	v, ok := f.vals[key]
	if !ok {
		return false, nil
	}
	var b bool
	if err := v.Decode(&b); err != nil {
		return false, errAt(v, err, "%s must be a boolean", key)
	}
	return b, nil
}

func (f *fields) text(key string) (string, bool, error) {
	v, ok := f.vals[key]
	if !ok {
		return "", false, nil
	}
	if v.Kind != yaml.ScalarNode {
		return "", false, errAt(v, nil, "%s must be a string", key)
	}
	return v.Value, true, nil
}

// ruleSpec is one entry of a rules list: a bare name or a single-key
// mapping from name to argument.
type ruleSpec struct {
	name string
	arg  *yaml.Node
	node *yaml.Node
}

func ruleList(f *fields) ([]ruleSpec, error) {
	v, ok := f.get("rules")
	if !ok {
		return nil, nil
	}
	items, err := sequenceOf(v)
	if err != nil {
		return nil, err
	}
	out := make([]ruleSpec, 0, len(items))
	for _, it := range items {
		switch it.Kind {
		case yaml.ScalarNode:
			out = append(out, ruleSpec{name: it.Value, node: it})
		case yaml.MappingNode:
			if len(it.Content) != 2 {
				return nil, errAt(it, nil, "a rule mapping must have exactly one key")
			}
			out = append(out, ruleSpec{name: it.Content[0].Value, arg: resolve(it.Content[1]), node: it})
		default:
			return nil, errAt(it, nil, "invalid rule")
		}
	}
	return out, nil
}

func (r ruleSpec) decode(dst any) error {
	if r.arg == nil {
		return errAt(r.node, nil, "rule %q needs an argument", r.name)
	}
	if err := r.arg.Decode(dst); err != nil {
		return errAt(r.arg, err, "invalid argument for rule %q", r.name)
	}
	return nil
}

func (r ruleSpec) int() (int, error) {
	var n int
	return n, r.decode(&n)
}

func (r ruleSpec) float() (float64, error) {
	var n float64
	return n, r.decode(&n)
}

func (r ruleSpec) text() (string, error) {
	var s string
	return s, r.decode(&s)
}

func (r ruleSpec) texts() ([]string, error) {
	var s []string
	return s, r.decode(&s)
}

func (r ruleSpec) pair() (float64, float64, error) {
	var p []float64
	if err := r.decode(&p); err != nil {
		return 0, 0, err
	}
	if len(p) != 2 {
		return 0, 0, errAt(r.arg, nil, "rule %q takes [min, max]", r.name)
	}
	return p[0], p[1], nil
}

func (r ruleSpec) unknown() error {
	return errAt(r.node, nil, "unknown rule %q", r.name)
}

func describe(n *yaml.Node) string {
	return fmt.Sprintf("%d:%d", n.Line, n.Column)
}
