package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/odmval/internal/cli/config"
	"github.com/leapstack-labs/odmval/internal/cli/output"
	"github.com/leapstack-labs/odmval/internal/loader"
	"github.com/leapstack-labs/odmval/pkg/core"
	"github.com/leapstack-labs/odmval/pkg/report"
	"github.com/leapstack-labs/odmval/pkg/schema"
	"github.com/leapstack-labs/odmval/pkg/summary"
	"github.com/leapstack-labs/odmval/pkg/validate"
	"github.com/leapstack-labs/odmval/pkg/version"
	"github.com/spf13/cobra"
)

// ErrInvalidData is returned when validation finds errors.
var ErrInvalidData = errors.New("dataset is invalid")

// ValidateOptions holds options for the validate command.
type ValidateOptions struct {
	Schema      string   // Compiled schema file; compiled from the dictionary when empty
	Format      string   // Report format: text, json, yaml
	Out         string   // Report file
	SummaryBy   []string // Summary keys: table, column, row
	DataVersion string   // Dictionary version the data claims
	Each        bool     // Validate every file as its own dataset and join the reports
	Watch       bool
	NoHistory   bool
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(pkgVersion string) *cobra.Command {
	opts := &ValidateOptions{}
	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Validate data files against the dictionary",
		Long: `Validate CSV, JSON or YAML data files against the schema compiled from
the dictionary (or a schema file given with --schema).

Each file's table is inferred from its name: "ottawa_samples.csv" is
validated as the samples table. JSON and YAML files may also map table ids
to lists of records.

Values are first coerced to their column types (reported as warnings), then
checked against every constraint (reported as errors). The command exits
non-zero when any error is found.`,
		Example: `  # Validate two tables against the latest release
  odmval validate --parts parts.csv --sets sets.csv samples.csv sites.csv

  # Write a JSON report and print a per-column summary
  odmval validate samples.csv --out report.json --summary-by column

  # Use a precompiled schema and re-run on every change
  odmval validate --schema schema.yaml --watch samples.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args, opts, pkgVersion)
		},
	}

	cmd.Flags().String("parts", "", "Dictionary parts file (csv, json, yaml)")
	cmd.Flags().String("sets", "", "Dictionary sets file (csv, json, yaml)")
	cmd.Flags().StringVar(&opts.Schema, "schema", "", "Compiled schema file (json, yaml)")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Report format: text, json, yaml (default: from --out, else output mode)")
	cmd.Flags().StringVar(&opts.Out, "out", "", "Write the report to a file")
	cmd.Flags().StringSliceVar(&opts.SummaryBy, "summary-by", nil, "Print a summary grouped by table, column and/or row")
	cmd.Flags().StringVar(&opts.DataVersion, "data-version", "", "Dictionary version the data claims (default: schema version)")
	cmd.Flags().BoolVar(&opts.Each, "each", false, "Validate every file separately and join the reports")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-validate when inputs, dictionary or config change")
	cmd.Flags().BoolVar(&opts.NoHistory, "no-history", false, "Do not record the run in the history database")

	_ = cmd.RegisterFlagCompletionFunc("summary-by", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		keys := make([]string, 0, len(summary.Keys()))
		for _, k := range summary.Keys() {
			keys = append(keys, string(k))
		}
		return keys, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runValidate(cmd *cobra.Command, files []string, opts *ValidateOptions, pkgVersion string) error {
	keys := make([]summary.Key, 0, len(opts.SummaryBy))
	for _, s := range opts.SummaryBy {
		k, err := summary.ParseKey(s)
		if err != nil {
			return err
		}
		keys = append(keys, k)
	}

	cmdCtx := NewCommandContext(cmd)
	rep, err := validateAndReport(cmd.Context(), cmdCtx, files, opts, keys, pkgVersion)
	if !opts.Watch {
		if err != nil {
			return err
		}
		if !rep.Valid() {
			return fmt.Errorf("%w: %d errors", ErrInvalidData, len(rep.Errors))
		}
		return nil
	}
	if err != nil {
		cmdCtx.Renderer.Error(err.Error())
	}

	watched := append([]string{}, files...)
	watched = append(watched, opts.Schema, cmdCtx.Cfg.Dictionary.Parts, cmdCtx.Cfg.Dictionary.Sets, config.GetConfigFileUsed())
	cmdCtx.Renderer.Println(cmdCtx.Renderer.Muted("Watching for changes. Press Ctrl+C to stop."))

	return watchFiles(cmd.Context(), cmdCtx.Logger, watched, func() {
		// Config edits apply to the next run.
		if path := config.GetConfigFileUsed(); path != "" {
			if _, err := config.LoadConfig(path, cmd.Flags()); err != nil {
				cmdCtx.Renderer.Error(err.Error())
				return
			}
			cmdCtx = NewCommandContext(cmd)
		}
		if _, err := validateAndReport(cmd.Context(), cmdCtx, files, opts, keys, pkgVersion); err != nil {
			cmdCtx.Renderer.Error(err.Error())
		}
	})
}

// validateAndReport runs one validation, writes its outputs and records it
// in the history.
func validateAndReport(ctx context.Context, cmdCtx *CommandContext, files []string, opts *ValidateOptions,
	keys []summary.Key, pkgVersion string,
) (*report.ValidationReport, error) {
	var record func(*report.ValidationReport, error)
	if !opts.NoHistory {
		store, err := cmdCtx.openStore()
		if err != nil {
			return nil, err
		}
		defer func() { _ = store.Close() }()
		run, err := store.CreateRun(files)
		if err != nil {
			return nil, err
		}
		record = func(rep *report.ValidationReport, runErr error) {
			var recErr error
			if runErr != nil {
				recErr = store.FailRun(run.ID, runErr)
			} else {
				recErr = store.CompleteRun(run.ID, rep)
			}
			if recErr != nil {
				cmdCtx.Logger.Warn("failed to record run", slog.String("id", run.ID), slog.Any("error", recErr))
			}
		}
	}

	rep, err := validateFiles(ctx, cmdCtx, files, opts, pkgVersion)
	if record != nil {
		record(rep, err)
	}
	if err != nil {
		return nil, err
	}
	return rep, writeOutputs(cmdCtx, rep, opts, keys)
}

func validateFiles(ctx context.Context, cmdCtx *CommandContext, files []string, opts *ValidateOptions, pkgVersion string) (*report.ValidationReport, error) {
	s, err := cmdCtx.loadSchema(opts.Schema)
	if err != nil {
		return nil, err
	}
	filter, err := cmdCtx.Cfg.Rules.Filter()
	if err != nil {
		return nil, err
	}
	dataVersion := s.Version
	if opts.DataVersion != "" {
		if dataVersion, err = cmdCtx.targetVersion(opts.DataVersion); err != nil {
			return nil, err
		}
	}

	runOpts := validate.Options{
		BatchSize: cmdCtx.Cfg.BatchSize,
		Workers:   cmdCtx.Cfg.Workers,
		Logger:    cmdCtx.Logger,
	}
	repOpts := report.Options{
		Verbosity:      report.Verbosity(cmdCtx.Cfg.Verbosity),
		Filter:         filter,
		PackageVersion: pkgVersion,
	}

	groups := [][]string{files}
	if opts.Each {
		groups = groups[:0]
		for _, f := range files {
			groups = append(groups, []string{f})
		}
	}

	var joined *report.ValidationReport
	for _, group := range groups {
		rep, err := validateDataset(ctx, cmdCtx, s, group, dataVersion, runOpts, repOpts)
		if err != nil {
			return nil, err
		}
		if joined == nil {
			joined = rep
			continue
		}
		if joined, err = report.Join(joined, rep); err != nil {
			return nil, err
		}
	}
	return joined, nil
}

func validateDataset(ctx context.Context, cmdCtx *CommandContext, s *schema.Schema, files []string,
	dataVersion version.Version, runOpts validate.Options, repOpts report.Options,
) (*report.ValidationReport, error) {
	ds, err := loader.ReadDataset(files, dataVersion)
	if err != nil {
		return nil, err
	}
	res, err := validate.Run(ctx, s, ds, runOpts)
	if err != nil {
		return nil, err
	}
	for _, id := range res.Unchecked {
		cmdCtx.Logger.Warn("table is not in the schema", slog.String("table", id))
	}
	return report.Generate(res, repOpts), nil
}

func writeOutputs(cmdCtx *CommandContext, rep *report.ValidationReport, opts *ValidateOptions, keys []summary.Key) error {
	r := cmdCtx.Renderer

	if opts.Out != "" {
		format, err := loader.FormatFor(opts.Out, opts.Format)
		if err != nil {
			return err
		}
		if err := loader.WriteReport(opts.Out, rep, format); err != nil {
			return err
		}
	}

	switch {
	case len(keys) > 0:
		sum, err := summary.Summarize(rep, keys...)
		if err != nil {
			return err
		}
		format := r.Format()
		if opts.Format != "" && opts.Out == "" {
			if format, err = core.ParseFormat(opts.Format); err != nil {
				return err
			}
		}
		if format == core.FormatText {
			return summary.Render(r.Writer(), sum, r.EffectiveMode() == output.ModeMarkdown)
		}
		return summary.Encode(r.Writer(), sum, format)
	case opts.Out != "":
		printStatus(r, rep, opts.Out)
		return nil
	default:
		format := r.Format()
		if opts.Format != "" {
			var err error
			if format, err = core.ParseFormat(opts.Format); err != nil {
				return err
			}
		}
		return report.Encode(r.Writer(), rep, format)
	}
}

func printStatus(r *output.Renderer, rep *report.ValidationReport, out string) {
	msg := fmt.Sprintf("Validated %d tables: %d errors, %d warnings (report: %s)",
		len(rep.Tables), len(rep.Errors), len(rep.Warnings), out)
	if rep.Valid() {
		r.Success(msg)
		return
	}
	r.Println(r.Styles().Error.Render(msg))
}
