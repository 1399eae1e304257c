// Package engine executes a compiled schema: it walks the IR tree against an
// input value, calls the callbacks held in the reference store and collects
// issues.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	vine "github.com/reoring/vine"
	"github.com/reoring/vine/ir"
)

// Validator runs one compiled schema. It holds no per-run state and is safe
// for concurrent use.
type Validator struct {
	root     *ir.RootNode
	refs     *ir.RefsStore
	failFast bool
	maxDepth int
	dup      DuplicateKeys
	logger   *slog.Logger
}

// New returns a validator for root whose references resolve in refs.
func New(root *ir.RootNode, refs *ir.RefsStore, opts ...Option) *Validator {
	v := &Validator{root: root, refs: refs, maxDepth: defaultMaxDepth, logger: discardLogger()}
	for _, o := range opts {
		o(v)
	}
	return v
}

// Validate checks data and returns the output value. Validation failures are
// returned as vine.Issues; any other error means the run could not complete.
func (v *Validator) Validate(ctx context.Context, data any, meta map[string]any) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	r := &run{v: v, ctx: ctx, meta: meta}
	out, keep := r.node(v.root.Schema, "", data, true, nil, vine.Root(), 0)
	if r.err != nil {
		return nil, r.err
	}
	if len(r.issues) > 0 {
		v.logger.Debug("validation failed", "issues", len(r.issues))
		return nil, r.issues
	}
	if !keep {
		return nil, nil
	}
	return out, nil
}

// ValidateJSON decodes b with numbers kept as json.Number and validates the
// result.
func (v *Validator) ValidateJSON(ctx context.Context, b []byte, meta map[string]any) (any, error) {
	data, err := DecodeJSON(b, v.dup, v.maxDepth)
	if err != nil {
		return nil, err
	}
	return v.Validate(ctx, data, meta)
}

// run is the state of one Validate call.
type run struct {
	v       *Validator
	ctx     context.Context
	meta    map[string]any
	issues  vine.Issues
	stopped bool
	err     error
}

// Report implements vine.ErrorReporter.
func (r *run) Report(is vine.Issue) {
	r.issues = vine.AppendIssues(r.issues, is)
	if r.v.failFast {
		r.stopped = true
	}
}

func (r *run) halted() bool {
	if r.err == nil {
		if err := r.ctx.Err(); err != nil {
			r.err = err
		}
	}
	return r.err != nil || r.stopped
}

func (r *run) internal(pointer string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("engine: %s: %w", pointer, err)
	}
}

// node validates value against n. keep is false when the value must be left
// out of the output: it was missing, omitted or invalid.
func (r *run) node(n ir.Node, name string, value any, exists bool, parent any, path vine.PathRef, depth int) (out any, keep bool) {
	if r.halted() {
		return nil, false
	}
	f := n.Base()
	field := &vine.FieldContext{
		Ctx:        r.ctx,
		Value:      value,
		Parent:     parent,
		Name:       name,
		OutputName: f.OutputName,
		Pointer:    path.Pointer(),
		IsDefined:  exists,
		IsValid:    true,
		Meta:       r.meta,
		Reporter:   r,
	}
	if r.v.maxDepth > 0 && depth > r.v.maxDepth {
		field.Report(vine.CodeMaxDepth, "", map[string]any{"max": r.v.maxDepth})
		return nil, false
	}
	if f.ParseRef != nil {
		p, err := r.v.refs.Parser(*f.ParseRef)
		if err != nil {
			r.internal(path.Pointer(), err)
			return nil, false
		}
		if !r.parse(p, field) {
			return nil, false
		}
	}

	if field.Value == nil {
		missing := !exists
		switch {
		case missing && f.IsOptional:
			r.implicit(f, field)
			return nil, false
		case !missing && f.AllowNull:
			return nil, field.IsValid
		case !missing && f.IsOptional:
			return nil, false
		}
		if _, isUnion := n.(*ir.UnionNode); !isUnion {
			field.Report(vine.CodeRequired, "required", nil)
			return nil, false
		}
	}

	switch t := n.(type) {
	case *ir.LiteralNode:
		if !r.rules(f, field) {
			return nil, false
		}
		return field.Value, true
	case *ir.ArrayNode:
		return r.array(t, field, path, depth)
	case *ir.ObjectNode:
		return r.object(t, field, path, depth)
	case *ir.UnionNode:
		return r.union(t, field, parent, path, depth)
	}
	r.internal(path.Pointer(), fmt.Errorf("unsupported node %T", n))
	return nil, false
}

// parse applies a parser and converts a panic into a parse_error issue.
func (r *run) parse(p vine.Parser, field *vine.FieldContext) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			field.Report(vine.CodeParseError, "parse", map[string]any{"reason": fmt.Sprint(rec)})
			ok = false
		}
	}()
	field.Value = p(field.Value)
	if field.Value != nil {
		field.IsDefined = true
	}
	return true
}

// rules runs the validations of f in order. With bail set the first failure
// stops the chain.
func (r *run) rules(f *ir.Field, field *vine.FieldContext) bool {
	for _, vn := range f.Validations {
		if r.halted() {
			return false
		}
		val, err := r.v.refs.Validation(vn.RuleRef)
		if err != nil {
			r.internal(field.Pointer, err)
			return false
		}
		r.call(val, field)
		if !field.IsValid && f.Bail {
			break
		}
	}
	return field.IsValid
}

// implicit runs only the rules marked implicit, for a missing value.
func (r *run) implicit(f *ir.Field, field *vine.FieldContext) {
	for _, vn := range f.Validations {
		if !vn.Implicit {
			continue
		}
		val, err := r.v.refs.Validation(vn.RuleRef)
		if err != nil {
			r.internal(field.Pointer, err)
			return
		}
		r.call(val, field)
		if !field.IsValid && f.Bail {
			return
		}
	}
}

func (r *run) call(val vine.Validation, field *vine.FieldContext) {
	defer func() {
		if rec := recover(); rec != nil {
			field.Report(vine.CodeCustom, val.Rule.Name, map[string]any{"reason": fmt.Sprint(rec)})
		}
	}()
	val.Rule.Validate(field.Value, val.Options, field)
}

// guard evaluates g. A panic is reported on field and counts as no match.
func (r *run) guard(id ir.RefID, value any, field *vine.FieldContext) (matched bool, ok bool) {
	g, err := r.v.refs.Guard(id)
	if err != nil {
		r.internal(field.Pointer, err)
		return false, false
	}
	defer func() {
		if rec := recover(); rec != nil {
			field.Report(vine.CodeGuardPanic, "guard", map[string]any{"reason": fmt.Sprint(rec)})
			matched, ok = false, false
		}
	}()
	return g(value), true
}

func (r *run) otherwise(id *ir.RefID, field *vine.FieldContext) {
	fn, err := r.v.refs.Otherwise(*id)
	if err != nil {
		r.internal(field.Pointer, err)
		return
	}
	fn(field.Value, field)
}

func (r *run) array(n *ir.ArrayNode, field *vine.FieldContext, path vine.PathRef, depth int) (any, bool) {
	if _, ok := field.Value.([]any); !ok {
		field.Report(vine.CodeInvalidType, "array", map[string]any{"expected": "array"})
		return nil, false
	}
	if !r.rules(&n.Field, field) && n.Bail {
		return nil, false
	}
	arr, ok := field.Value.([]any)
	if !ok {
		return nil, false
	}
	out := make([]any, 0, len(arr))
	for i, el := range arr {
		if r.halted() {
			return nil, false
		}
		o, keep := r.node(n.Element, strconv.Itoa(i), el, true, arr, path.Index(i), depth+1)
		if keep {
			out = append(out, o)
		}
	}
	return out, field.IsValid
}

func (r *run) object(n *ir.ObjectNode, field *vine.FieldContext, path vine.PathRef, depth int) (any, bool) {
	if obj, ok := field.Value.(map[string]any); !ok || obj == nil {
		field.Report(vine.CodeInvalidType, "object", map[string]any{"expected": "object"})
		return nil, false
	}
	if !r.rules(&n.Field, field) && n.Bail {
		return nil, false
	}
	obj, ok := field.Value.(map[string]any)
	if !ok {
		return nil, false
	}
	out := make(map[string]any, len(obj))
	claimed := make(map[string]struct{}, len(n.Properties))
	r.properties(n.Properties, obj, out, claimed, path, depth)
	r.groups(n.Groups, obj, out, claimed, field, path, depth)
	if n.AllowUnknownProperties {
		for k, v := range obj {
			if _, ok := claimed[k]; ok {
				continue
			}
			// Declared output keys always carry the validated value.
			if _, ok := out[k]; ok {
				continue
			}
			out[k] = v
		}
	}
	return out, field.IsValid
}

func (r *run) properties(props []ir.Node, obj, out map[string]any, claimed map[string]struct{}, path vine.PathRef, depth int) {
	for _, p := range props {
		b := p.Base()
		claimed[b.FieldName] = struct{}{}
		claimed[b.OutputName] = struct{}{}
		v, exists := obj[b.FieldName]
		o, keep := r.node(p, b.FieldName, v, exists, obj, path.Field(b.FieldName), depth+1)
		if keep {
			out[b.OutputName] = o
		}
	}
}

// groups resolves each group against the whole object. Within a group the
// first matching condition wins; across groups a later write to the same
// output key replaces the earlier one. A panicking guard abandons its own
// group only.
func (r *run) groups(groups []*ir.GroupNode, obj, out map[string]any, claimed map[string]struct{}, field *vine.FieldContext, path vine.PathRef, depth int) {
	for _, g := range groups {
		if r.halted() {
			return
		}
		matched, failed := false, false
		for i, c := range g.Conditions {
			hit, ok := r.guard(c.GuardRef, obj, field)
			if !ok {
				failed = true
				break
			}
			if !hit {
				continue
			}
			r.v.logger.Debug("group condition matched", "path", path.Pointer(), "condition", i)
			r.properties(c.Properties, obj, out, claimed, path, depth)
			r.groups(c.Groups, obj, out, claimed, field, path, depth)
			matched = true
			break
		}
		if !matched && !failed && g.OtherwiseRef != nil {
			r.otherwise(g.OtherwiseRef, field)
		}
	}
}

// union validates the value with the first branch whose guard matches. The
// branch sees the same name and path as the union.
func (r *run) union(n *ir.UnionNode, field *vine.FieldContext, parent any, path vine.PathRef, depth int) (any, bool) {
	if !r.rules(&n.Field, field) && n.Bail {
		return nil, false
	}
	for i, c := range n.Conditions {
		hit, ok := r.guard(c.GuardRef, field.Value, field)
		if !ok {
			return nil, false
		}
		if hit {
			r.v.logger.Debug("union branch selected", "path", path.Pointer(), "branch", i)
			return r.node(c.Schema, field.Name, field.Value, field.IsDefined, parent, path, depth)
		}
	}
	if n.OtherwiseRef != nil {
		r.otherwise(n.OtherwiseRef, field)
		return nil, false
	}
	field.Report(vine.CodeUnionNoMatch, "union", nil)
	return nil, false
}
