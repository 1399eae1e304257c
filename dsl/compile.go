package dsl

import (
	"context"
	"io"
	"log/slog"

	vine "github.com/reoring/vine"
	"github.com/reoring/vine/engine"
	"github.com/reoring/vine/ir"
)

// CompileOption configures Compile.
type CompileOption func(*compileConfig)

type compileConfig struct {
	caseTransform func(string) string
	logger        *slog.Logger
	probeGuards   bool
	engineOpts    []engine.Option
}

// WithCaseTransform replaces the camelCase collaborator used by
// ToCamelCase objects.
func WithCaseTransform(fn func(string) string) CompileOption {
	return func(c *compileConfig) { c.caseTransform = fn }
}

// WithLogger sets the logger used for compile diagnostics.
func WithLogger(l *slog.Logger) CompileOption {
	return func(c *compileConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithoutGuardProbe skips calling every guard with sample values during
// compilation. Use it for guards that are expensive or count their calls.
func WithoutGuardProbe() CompileOption {
	return func(c *compileConfig) { c.probeGuards = false }
}

// WithEngineOptions passes options to the validator built for the result.
func WithEngineOptions(opts ...engine.Option) CompileOption {
	return func(c *compileConfig) { c.engineOpts = append(c.engineOpts, opts...) }
}

// Compiled is the artifact produced by Compile: the IR tree and the sealed
// reference store it points into. It is read-only and safe for concurrent
// use.
type Compiled struct {
	Root *ir.RootNode
	Refs *ir.RefsStore

	validator *engine.Validator
}

// Compile walks root, emits its IR and registers callbacks in a fresh
// reference store. Every call produces an independent artifact.
func Compile(root Schema, opts ...CompileOption) (*Compiled, error) {
	cfg := compileConfig{
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		probeGuards: true,
	}
	for _, o := range opts {
		o(&cfg)
	}
	if root == nil {
		return nil, &vine.CompileError{Path: "/", Reason: "root schema is nil"}
	}
	refs := ir.NewRefsStore()
	t := &tracker{refs: refs, path: vine.Root(), probeGuard: cfg.probeGuards}
	node, err := root.emit("", t, ParserOptions{CaseTransform: cfg.caseTransform})
	if err != nil {
		cfg.logger.Debug("schema compile failed", "error", err)
		return nil, err
	}
	refs.Seal()
	cfg.logger.Debug("schema compiled", "root", node.Kind().String(), "refs", refs.Len())
	rn := &ir.RootNode{Type: "root", Schema: node}
	return &Compiled{
		Root:      rn,
		Refs:      refs,
		validator: engine.New(rn, refs, cfg.engineOpts...),
	}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(root Schema, opts ...CompileOption) *Compiled {
	c, err := Compile(root, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Validate runs data through the reference engine. meta is exposed to rules
// as FieldContext.Meta.
func (c *Compiled) Validate(ctx context.Context, data any, meta map[string]any) (any, error) {
	return c.validator.Validate(ctx, data, meta)
}

// ValidateJSON decodes b and validates the result.
func (c *Compiled) ValidateJSON(ctx context.Context, b []byte, meta map[string]any) (any, error) {
	return c.validator.ValidateJSON(ctx, b, meta)
}

// Artifact returns the serializable view of c.
func (c *Compiled) Artifact() ir.Artifact { return ir.NewArtifact(c.Root, c.Refs) }

// MarshalJSON renders the artifact as JSON.
func (c *Compiled) MarshalJSON() ([]byte, error) { return c.Artifact().JSON() }
