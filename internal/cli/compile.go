package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <schema.yaml>",
		Short: "Compile a schema document to its IR",
		Long: `Compile a schema document and print the compiled tree together with the
reference table. Text and json formats print JSON, yaml prints YAML.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	c, err := compileFile(opts.RootOptions, path)
	if err != nil {
		return err
	}
	art := c.Artifact()
	var b []byte
	if opts.Format == "yaml" {
		b, err = art.YAML()
	} else {
		b, err = art.JSON()
		b = append(b, '\n')
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "encoding IR", err)
	}
	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, b, 0o644); err != nil {
			return WrapExitError(ExitCommandError, "writing output file", err)
		}
		opts.Logger().Info("wrote IR", "path", opts.Output)
		return nil
	}
	_, err = cmd.OutOrStdout().Write(b)
	return err
}
