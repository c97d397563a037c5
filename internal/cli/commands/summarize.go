package commands

import (
	"fmt"

	"github.com/leapstack-labs/odmval/internal/cli/output"
	"github.com/leapstack-labs/odmval/internal/loader"
	"github.com/leapstack-labs/odmval/pkg/core"
	"github.com/leapstack-labs/odmval/pkg/report"
	"github.com/leapstack-labs/odmval/pkg/summary"
	"github.com/spf13/cobra"
)

// SummarizeOptions holds options for the summarize command.
type SummarizeOptions struct {
	By     []string
	Format string
	Out    string
}

// NewSummarizeCommand creates the summarize command.
func NewSummarizeCommand() *cobra.Command {
	opts := &SummarizeOptions{}
	cmd := &cobra.Command{
		Use:   "summarize <report>...",
		Short: "Summarize saved validation reports",
		Long: `Count the diagnostics of one or more JSON or YAML validation reports per
table, column or row and per rule, with an "all" total for each group.
Several reports of the same dataset version are joined first.`,
		Example: `  # Summarize by table
  odmval summarize report.json

  # Summarize by table and column as YAML
  odmval summarize report.json --by table,column --format yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummarize(cmd, args, opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.By, "by", []string{string(summary.KeyTable)}, "Group by table, column and/or row")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Summary format: text, json, yaml")
	cmd.Flags().StringVar(&opts.Out, "out", "", "Write the summary to a file")

	return cmd
}

func runSummarize(cmd *cobra.Command, paths []string, opts *SummarizeOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	keys := make([]summary.Key, 0, len(opts.By))
	for _, s := range opts.By {
		k, err := summary.ParseKey(s)
		if err != nil {
			return err
		}
		keys = append(keys, k)
	}

	var rep *report.ValidationReport
	for _, path := range paths {
		next, err := loader.ReadReport(path)
		if err != nil {
			return err
		}
		if rep == nil {
			rep = next
			continue
		}
		if rep, err = report.Join(rep, next); err != nil {
			return fmt.Errorf("join %s: %w", path, err)
		}
	}

	sum, err := summary.Summarize(rep, keys...)
	if err != nil {
		return err
	}

	if opts.Out != "" {
		format, err := loader.FormatFor(opts.Out, opts.Format)
		if err != nil {
			return err
		}
		if err := loader.WriteSummary(opts.Out, sum, format); err != nil {
			return err
		}
		r.Success(fmt.Sprintf("Wrote summary of %d errors and %d warnings to %s",
			sum.Overview.Errors, sum.Overview.Warnings, opts.Out))
		return nil
	}

	format := r.Format()
	if opts.Format != "" {
		if format, err = core.ParseFormat(opts.Format); err != nil {
			return err
		}
	}
	if format == core.FormatText {
		return summary.Render(r.Writer(), sum, r.EffectiveMode() == output.ModeMarkdown)
	}
	return summary.Encode(r.Writer(), sum, format)
}
