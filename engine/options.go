package engine

import (
	"io"
	"log/slog"
)

// Option configures a Validator.
type Option func(*Validator)

// WithFailFast stops a run at the first reported issue.
func WithFailFast() Option { return func(v *Validator) { v.failFast = true } }

// WithMaxDepth bounds the nesting depth of input values. Zero disables the
// check.
func WithMaxDepth(n int) Option { return func(v *Validator) { v.maxDepth = n } }

// WithDuplicateKeys sets the duplicate key policy used by ValidateJSON.
func WithDuplicateKeys(p DuplicateKeys) Option { return func(v *Validator) { v.dup = p } }

// WithLogger sets the logger for per-run diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(v *Validator) {
		if l != nil {
			v.logger = l
		}
	}
}

const defaultMaxDepth = 256

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }
