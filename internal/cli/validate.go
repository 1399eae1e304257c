package cli

import (
	"context"
	"io"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	vine "github.com/reoring/vine"
	"github.com/reoring/vine/dsl"
	"github.com/reoring/vine/engine"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	FailFast         bool
	MaxDepth         int
	RejectDuplicates bool
	Meta             string
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <schema.yaml> <data.json>",
		Short: "Validate JSON data against a schema document",
		Long: `Validate a JSON document and print the validated output. When validation
fails the issues are printed and the command exits with status 1. Use "-"
to read data from stdin.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.FailFast, "fail-fast", false, "stop at the first issue")
	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", 0, "maximum nesting depth (0 keeps the default)")
	cmd.Flags().BoolVar(&opts.RejectDuplicates, "reject-duplicate-keys", false, "fail on duplicate object keys")
	cmd.Flags().StringVar(&opts.Meta, "meta", "", "JSON object passed to rules as metadata")

	return cmd
}

func (o *ValidateOptions) engineOptions() []engine.Option {
	eo := []engine.Option{engine.WithLogger(o.Logger())}
	if o.FailFast {
		eo = append(eo, engine.WithFailFast())
	}
	if o.MaxDepth > 0 {
		eo = append(eo, engine.WithMaxDepth(o.MaxDepth))
	}
	if o.RejectDuplicates {
		eo = append(eo, engine.WithDuplicateKeys(engine.DupError))
	}
	return eo
}

func runValidate(ctx context.Context, opts *ValidateOptions, schemaPath, dataPath string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var meta map[string]any
	if opts.Meta != "" {
		if err := json.Unmarshal([]byte(opts.Meta), &meta); err != nil {
			return WrapExitError(ExitCommandError, "parsing --meta", err)
		}
	}
	c, err := compileFile(opts.RootOptions, schemaPath, dsl.WithEngineOptions(opts.engineOptions()...))
	if err != nil {
		return err
	}
	data, err := readInput(cmd, dataPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "reading "+dataPath, err)
	}

	out, err := c.ValidateJSON(ctx, data, meta)
	w := cmd.OutOrStdout()
	if err != nil {
		iss, ok := vine.AsIssues(err)
		if !ok {
			return WrapExitError(ExitCommandError, "validating "+dataPath, err)
		}
		if opts.Format == "text" {
			writeIssues(w, newPalette(opts.Color, w), iss)
		} else if werr := writeData(w, opts.Format, map[string]any{"valid": false, "issues": iss}); werr != nil {
			return werr
		}
		return WrapExitError(ExitFailure, "validation failed", iss)
	}
	if opts.Format == "text" {
		return writeData(w, "json", out)
	}
	return writeData(w, opts.Format, map[string]any{"valid": true, "value": out})
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
