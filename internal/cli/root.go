// Package cli implements the vine command line tool.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/reoring/vine/dsl"
	"github.com/reoring/vine/schemadoc"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "text" | "json" | "yaml"
	Color   string // "auto" | "always" | "never"

	logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

var validColors = []string{"auto", "always", "never"}

// NewRootCommand creates the root command for the vine CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "vine",
		Short: "Compile and run YAML schema documents",
		Long: `vine compiles schema documents into their intermediate representation,
validates JSON data against them and exports them as JSON Schema or OpenAPI.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			if !slices.Contains(validColors, opts.Color) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid color mode %q: must be one of %v", opts.Color, validColors))
			}
			opts.logger = newLogger(cmd.ErrOrStderr(), opts.Verbose)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output on stderr")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().StringVar(&opts.Color, "color", "auto", "colorize text output (auto|always|never)")

	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewJSONSchemaCommand(opts))
	cmd.AddCommand(NewOpenAPICommand(opts))
	cmd.AddCommand(NewDiffCommand(opts))

	return cmd
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Logger returns the configured logger, or a quiet one when commands are
// executed without the root command.
func (o *RootOptions) Logger() *slog.Logger {
	if o.logger == nil {
		o.logger = newLogger(io.Discard, false)
	}
	return o.logger
}

// compileFile loads and compiles a schema document.
func compileFile(opts *RootOptions, path string, extra ...dsl.CompileOption) (*dsl.Compiled, error) {
	lg := opts.Logger()
	s, err := schemadoc.New(schemadoc.WithLogger(lg)).LoadFile(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "loading "+path, err)
	}
	c, err := dsl.Compile(s, append([]dsl.CompileOption{dsl.WithLogger(lg)}, extra...)...)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "compiling "+path, err)
	}
	lg.Debug("compiled schema document", "path", path, "refs", c.Refs.Len())
	return c, nil
}
