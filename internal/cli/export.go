package cli

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reoring/vine/ir"
	"github.com/reoring/vine/jsonschema"
	"github.com/reoring/vine/openapi"
)

// ExportOptions holds flags shared by the export commands.
type ExportOptions struct {
	*RootOptions
	OutputNames bool
	Title       string
	Version     string
}

func (o *ExportOptions) schemaOptions() []jsonschema.Option {
	if o.OutputNames {
		return []jsonschema.Option{jsonschema.WithOutputNames()}
	}
	return nil
}

// NewJSONSchemaCommand creates the jsonschema command.
func NewJSONSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "jsonschema <schema.yaml>",
		Short: "Export a schema document as JSON Schema (draft 2020-12)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := compileFile(opts.RootOptions, args[0])
			if err != nil {
				return err
			}
			s, err := jsonschema.Export(c.Root, opts.schemaOptions()...)
			if err != nil {
				return WrapExitError(ExitCommandError, "exporting JSON Schema", err)
			}
			return writeData(cmd.OutOrStdout(), opts.Format, s)
		},
	}

	cmd.Flags().BoolVar(&opts.OutputNames, "output-names", false, "describe the validated output instead of the input")

	return cmd
}

// NewOpenAPICommand creates the openapi command.
func NewOpenAPICommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "openapi <schema.yaml>...",
		Short: "Export schema documents as OpenAPI component schemas",
		Long: `Export one or more schema documents into the components section of an
OpenAPI 3.0 document. Each component is named after its file.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roots := make(map[string]*ir.RootNode, len(args))
			for _, path := range args {
				c, err := compileFile(opts.RootOptions, path)
				if err != nil {
					return err
				}
				roots[componentName(path)] = c.Root
			}
			doc, err := openapi.Document(cmd.Context(), opts.Title, opts.Version, roots, opts.schemaOptions()...)
			if err != nil {
				return WrapExitError(ExitCommandError, "building OpenAPI document", err)
			}
			return writeData(cmd.OutOrStdout(), opts.Format, doc)
		},
	}

	cmd.Flags().BoolVar(&opts.OutputNames, "output-names", false, "describe the validated output instead of the input")
	cmd.Flags().StringVar(&opts.Title, "title", "vine schemas", "info.title of the document")
	cmd.Flags().StringVar(&opts.Version, "api-version", "0.0.0", "info.version of the document")

	return cmd
}

func componentName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
