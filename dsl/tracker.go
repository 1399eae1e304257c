package dsl

import (
	"fmt"

	json "github.com/goccy/go-json"

	vine "github.com/reoring/vine"
	"github.com/reoring/vine/ir"
)

// tracker registers callbacks in the store during one compile pass and
// remembers where in the tree emission currently is, for error paths.
type tracker struct {
	refs       *ir.RefsStore
	path       vine.PathRef
	probeGuard bool
}

func (t *tracker) at(field string) *tracker {
	return &tracker{refs: t.refs, path: t.path.Field(field), probeGuard: t.probeGuard}
}

func (t *tracker) fail(reason string, cause error) error {
	return &vine.CompileError{Path: t.path.Pointer(), Reason: reason, Cause: cause}
}

func (t *tracker) parser(p vine.Parser) (*ir.RefID, error) {
	if p == nil {
		return nil, nil
	}
	id, err := t.refs.TrackParser(p)
	if err != nil {
		return nil, t.fail("cannot track parser", err)
	}
	return id.Ptr(), nil
}

func (t *tracker) validations(vs []vine.Validation) ([]ir.ValidationNode, error) {
	out := make([]ir.ValidationNode, 0, len(vs))
	for _, v := range vs {
		id, err := t.refs.TrackValidation(v)
		if err != nil {
			return nil, t.fail("cannot track validation", err)
		}
		out = append(out, ir.ValidationNode{
			Rule:     v.Rule.Name,
			RuleRef:  id,
			Implicit: v.Rule.Implicit,
			Options:  v.Options,
		})
	}
	return out, nil
}

func (t *tracker) guard(name string, g vine.Guard) (ir.RefID, error) {
	if g == nil {
		return 0, t.fail(fmt.Sprintf("guard %q is not callable", name), vine.ErrNilCallback)
	}
	if t.probeGuard {
		if err := probe(g); err != nil {
			return 0, t.fail(fmt.Sprintf("guard %q is not total", name), err)
		}
	}
	id, err := t.refs.TrackGuard(name, g)
	if err != nil {
		return 0, t.fail("cannot track guard", err)
	}
	return id, nil
}

func (t *tracker) otherwise(fn vine.NoMatchFunc) (*ir.RefID, error) {
	if fn == nil {
		return nil, nil
	}
	id, err := t.refs.TrackOtherwise(fn)
	if err != nil {
		return nil, t.fail("cannot track otherwise handler", err)
	}
	return id.Ptr(), nil
}

// probeValues are the shapes every guard must survive: one per decoded JSON
// kind.
func probeValues() []any {
	return []any{nil, "", float64(0), json.Number("0"), false, map[string]any{}, []any{}}
}

// probe runs g against probeValues and converts a panic into an error.
func probe(g vine.Guard) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", vine.ErrGuardPanic, r)
		}
	}()
	for _, v := range probeValues() {
		g(v)
	}
	return nil
}
