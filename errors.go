package vine

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType   = "invalid_type"
	CodeRequired      = "required"
	CodeTooShort      = "too_short"
	CodeTooLong       = "too_long"
	CodeFixedLength   = "fixed_length"
	CodeNotEmpty      = "not_empty"
	CodeDistinct      = "distinct"
	CodePattern       = "pattern"
	CodeInvalidFormat = "invalid_format"
	CodeLiteral       = "literal"
	CodeInvalidEnum   = "invalid_enum"
	CodeTooSmall      = "too_small"
	CodeTooBig        = "too_big"
	CodeDecimal       = "decimal"
	CodeParseError    = "parse_error"
	CodeMaxDepth      = "max_depth"
	// Branch selection
	CodeUnionNoMatch = "union_no_match"
	CodeGroupNoMatch = "group_no_match"
	CodeGuardPanic   = "guard_panic"
	// Custom rules that do not pick a more specific code.
	CodeCustom = "custom"
)

// Issue represents a single validation entry.
type Issue struct {
	Path    string `json:"path"` // JSON Pointer (for example: /items/2/price).
	Code    string `json:"code"` // One of the codes listed above.
	Message string `json:"message"`
	// Field is the wire name of the failing field ("*" for array elements).
	Field string `json:"field,omitempty"`
	// Rule optionally records the rule name that produced this issue.
	Rule string `json:"rule,omitempty"`
	// Params carries structured parameters (e.g., {"min":1, "max":10}) for
	// i18n and observability.
	Params map[string]any `json:"params,omitempty"`
	Cause  error          `json:"-"`
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at /path
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// Sentinel causes carried by CompileError.
var (
	ErrNilCallback = errors.New("vine: callback is nil")
	ErrStoreSealed = errors.New("vine: reference store is sealed")
	ErrUnknownRef  = errors.New("vine: unknown reference id")
	ErrGuardPanic  = errors.New("vine: guard panicked")
)

// ConfigError reports an invalid builder configuration. Builders panic with
// a *ConfigError at the call that introduces the problem.
type ConfigError struct {
	Op     string // builder call, e.g. "array.maxLength"
	Reason string
}

func (e *ConfigError) Error() string {
	return "vine: invalid configuration in " + e.Op + ": " + e.Reason
}

// Configf panics with a ConfigError for op.
func Configf(op, format string, args ...any) {
	panic(&ConfigError{Op: op, Reason: fmt.Sprintf(format, args...)})
}

// CompileError reports a malformed schema tree found while compiling.
type CompileError struct {
	Path   string // JSON Pointer of the offending node ("/" for the root)
	Reason string
	Cause  error
}

func (e *CompileError) Error() string {
	msg := "vine: compile " + e.Path + ": " + e.Reason
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *CompileError) Unwrap() error { return e.Cause }
