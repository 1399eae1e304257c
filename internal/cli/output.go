package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	json "github.com/goccy/go-json"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	vine "github.com/reoring/vine"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Validation failed or documents differ
	ExitCommandError = 2 // Bad flags, unreadable files, invalid schema documents
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// palette holds the colors used for text output.
type palette struct {
	path, code, add, del *color.Color
}

func newPalette(mode string, w io.Writer) *palette {
	p := &palette{
		path: color.New(color.FgCyan),
		code: color.New(color.FgRed, color.Bold),
		add:  color.New(color.FgGreen),
		del:  color.New(color.FgRed),
	}
	on := mode == "always"
	if mode == "auto" {
		f, ok := w.(*os.File)
		on = ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
	}
	for _, c := range []*color.Color{p.path, p.code, p.add, p.del} {
		if on {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// writeData renders v in the requested format. Text falls back to JSON.
func writeData(w io.Writer, format string, v any) error {
	if format == "yaml" {
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(toPlain(v)); err != nil {
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}
		_, err := w.Write(buf.Bytes())
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", b)
	return err
}

// toPlain round-trips v through JSON so yaml sees json tags and omitempty.
func toPlain(v any) any {
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := yaml.Unmarshal(b, &out); err != nil {
		return v
	}
	return out
}

func writeIssues(w io.Writer, p *palette, iss vine.Issues) {
	for _, is := range iss {
		path := is.Path
		if path == "" {
			path = "/"
		}
		fmt.Fprintf(w, "%s %s %s\n", p.path.Sprint(path), p.code.Sprint(is.Code), is.Message)
	}
}
