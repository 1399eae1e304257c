// Package schemadoc builds dsl schemas from declarative YAML (or JSON)
// documents. Branch guards are written as expr-lang expressions over the
// variable value, for example:
//
//	type: object
//	properties:
//	  contact:
//	    type: union
//	    branches:
//	      - when: isObject(value) && value["type"] == "email"
//	        schema:
//	          type: object
//	          properties:
//	            type: {type: literal, value: email}
//	            email: {type: string, rules: [email]}
//	      - else: true
//	        schema: {type: string, rules: [mobile]}
//
// Property order follows the document.
package schemadoc

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/expr-lang/expr"
	"gopkg.in/yaml.v3"

	vine "github.com/reoring/vine"
	"github.com/reoring/vine/dsl"
)

// Error locates a problem in a schema document.
type Error struct {
	Line   int
	Column int
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("schemadoc: line %d, column %d: %s", e.Line, e.Column, e.Msg)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func errAt(n *yaml.Node, err error, format string, args ...any) *Error {
	return &Error{Line: n.Line, Column: n.Column, Msg: fmt.Sprintf(format, args...), Err: err}
}

// Option configures a Loader.
type Option func(*Loader)

// WithRule makes a custom rule available under name. The rule's options are
// the decoded argument given in the document (nil for a bare name).
func WithRule(name string, r *vine.Rule) Option {
	return func(l *Loader) { l.rules[name] = r }
}

// WithFunction exposes an extra function to guard expressions. types follow
// expr.Function.
func WithFunction(name string, fn func(params ...any) (any, error), types ...any) Option {
	return func(l *Loader) { l.functions = append(l.functions, expr.Function(name, fn, types...)) }
}

// WithLogger sets the logger for load diagnostics.
func WithLogger(lg *slog.Logger) Option {
	return func(l *Loader) {
		if lg != nil {
			l.logger = lg
		}
	}
}

// Loader turns documents into schemas. A Loader is safe for concurrent use
// once configured.
type Loader struct {
	rules     map[string]*vine.Rule
	functions []expr.Option
	logger    *slog.Logger
}

// New returns a Loader with the built-in guard functions.
func New(opts ...Option) *Loader {
	l := &Loader{
		rules:     map[string]*vine.Rule{},
		functions: builtinFunctions(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Load parses one document.
func Load(b []byte) (dsl.Schema, error) { return New().Load(b) }

// LoadFile reads and parses the document at path.
func (l *Loader) LoadFile(path string) (dsl.Schema, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return l.Load(b)
}

// Load parses one document. Builder configuration errors are reported as
// *Error with the position of the offending node.
func (l *Loader) Load(b []byte) (s dsl.Schema, err error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("schemadoc: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errors.New("schemadoc: empty document")
	}
	return l.schema(doc.Content[0])
}

// guarded calls fn and converts a builder panic into an Error at n.
func guarded(n *yaml.Node, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			var ce *vine.ConfigError
			if e, ok := r.(error); ok && errors.As(e, &ce) {
				err = errAt(n, ce, "invalid schema")
				return
			}
			panic(r)
		}
	}()
	return fn()
}
