package model

import (
	"fmt"
	"sort"
	"strings"

	"github.com/reformlab/reformer/internal/flowsheet/report"
	"github.com/spf13/cobra"
)

type schemaOptions struct {
	paths    []string
	doc      bool
	summary  bool
	markdown bool
}

func newSchemaCommand() *cobra.Command {
	opts := &schemaOptions{}
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect the flowsheet definition schema and conformance",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !opts.doc && !opts.summary {
				opts.doc = true
			}

			out := cmd.OutOrStdout()

			if opts.doc {
				if opts.summary {
					fmt.Fprintln(out, "# Schema Overview")
				}
				fmt.Fprintln(out, report.Markdown())
			}

			if opts.summary {
				defs, err := collectDefinitions(opts.paths)
				if err != nil {
					return err
				}
				if len(defs) == 0 {
					fmt.Fprintln(out, "No flowsheet definitions found for summary.")
					return nil
				}

				summary := report.Analyze(defs)
				if opts.markdown {
					fmt.Fprintln(out, report.RenderSummaryMarkdown(summary))
					return nil
				}

				fmt.Fprintln(out, renderPlainSummary(summary))
			}

			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&opts.paths, "path", "p", nil, "Paths to flowsheet definition files or directories (default: current directory)")
	cmd.Flags().BoolVar(&opts.doc, "doc", false, "Print the schema reference (Markdown)")
	cmd.Flags().BoolVar(&opts.summary, "summary", false, "Analyze definitions and output a conformance report")
	cmd.Flags().BoolVar(&opts.markdown, "markdown", false, "Render summary output as Markdown")

	return cmd
}

func init() {
	Cmd.AddCommand(newSchemaCommand())
}

func renderPlainSummary(summary report.Summary) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Total definitions: %d\n", summary.Total))

	if len(summary.MissingNames) > 0 {
		names := append([]string(nil), summary.MissingNames...)
		sort.Strings(names)
		b.WriteString("Missing names:\n")
		for _, entry := range names {
			b.WriteString(fmt.Sprintf("  - %s\n", entry))
		}
	}

	if len(summary.Invalid) > 0 {
		names := make([]string, 0, len(summary.Invalid))
		for name := range summary.Invalid {
			names = append(names, name)
		}
		sort.Strings(names)
		b.WriteString("Validation failures:\n")
		for _, name := range names {
			b.WriteString(fmt.Sprintf("  - %s: %s\n", name, summary.Invalid[name]))
		}
	}

	b.WriteString(countLines("Engines", summary.Engines))
	b.WriteString(countLines("Sampled streams", summary.StreamCounts))

	return strings.TrimRight(b.String(), "\n")
}

func countLines(title string, counts map[string]int) string {
	if len(counts) == 0 {
		return ""
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(title + ":\n")
	for _, key := range keys {
		b.WriteString(fmt.Sprintf("  - %s: %d\n", key, counts[key]))
	}
	return b.String()
}
