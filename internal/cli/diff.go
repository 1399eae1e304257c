package cli

import (
	"fmt"
	"io"
	"strings"

	jsonpatch "github.com/evanphx/json-patch"
	json "github.com/goccy/go-json"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"
)

// DiffResult is the structured output of the diff command.
type DiffResult struct {
	Equal      bool            `json:"equal"`
	MergePatch json.RawMessage `json:"mergePatch,omitempty"`
}

// NewDiffCommand creates the diff command.
func NewDiffCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <old.yaml> <new.yaml>",
		Short: "Compare the compiled IR of two schema documents",
		Long: `Compile both documents and compare their IR. Text output is a line diff;
json and yaml output carry an RFC 7386 merge patch from old to new. The
command exits with status 1 when the documents differ.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(rootOpts, args[0], args[1], cmd)
		},
	}
	return cmd
}

func runDiff(opts *RootOptions, oldPath, newPath string, cmd *cobra.Command) error {
	from, err := artifactJSON(opts, oldPath)
	if err != nil {
		return err
	}
	to, err := artifactJSON(opts, newPath)
	if err != nil {
		return err
	}
	patch, err := jsonpatch.CreateMergePatch(from, to)
	if err != nil {
		return WrapExitError(ExitCommandError, "computing merge patch", err)
	}
	res := DiffResult{Equal: string(patch) == "{}"}
	if !res.Equal {
		res.MergePatch = patch
	}

	w := cmd.OutOrStdout()
	if opts.Format == "text" {
		writeLineDiff(w, newPalette(opts.Color, w), string(from), string(to))
	} else if err := writeData(w, opts.Format, res); err != nil {
		return err
	}
	if !res.Equal {
		return NewExitError(ExitFailure, "schemas differ")
	}
	return nil
}

func artifactJSON(opts *RootOptions, path string) ([]byte, error) {
	c, err := compileFile(opts, path)
	if err != nil {
		return nil, err
	}
	b, err := c.MarshalJSON()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "encoding IR", err)
	}
	return b, nil
}

// writeLineDiff prints changed lines prefixed with - and +. Unchanged lines
// are skipped.
func writeLineDiff(w io.Writer, p *palette, from, to string) {
	dmp := diffpatch.New()
	a, b, lines := dmp.DiffLinesToChars(from, to)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)
	for _, d := range diffs {
		var prefix string
		var c = p.add
		switch d.Type {
		case diffpatch.DiffInsert:
			prefix = "+"
		case diffpatch.DiffDelete:
			prefix, c = "-", p.del
		default:
			continue
		}
		for _, line := range strings.SplitAfter(strings.TrimSuffix(d.Text, "\n"), "\n") {
			fmt.Fprint(w, c.Sprint(prefix+strings.TrimSuffix(line, "\n")), "\n")
		}
	}
}
