package commands

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/odmval/internal/loader"
	"github.com/leapstack-labs/odmval/pkg/core"
	"github.com/leapstack-labs/odmval/pkg/schema"
	"github.com/spf13/cobra"
)

// SchemaOptions holds options for the schema command.
type SchemaOptions struct {
	Out    string
	Format string
	Merge  []string
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand() *cobra.Command {
	opts := &SchemaOptions{}
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Compile the dictionary into a validation schema",
		Long: `Build the dictionary model for the configured version, compile it with
the enabled rules and write the resulting schema as YAML or JSON.

Every constraint records the rules and dictionary parts it came from.
Schemas given with --merge are merged into the compiled one.`,
		Example: `  # Print the schema of the latest release
  odmval schema --parts parts.csv --sets sets.csv

  # Write a version 1.1.0 schema as JSON
  odmval schema --odm-version 1.1.0 --out schema.json

  # Compile without category checks
  odmval schema --blacklist invalid_category`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSchema(cmd, opts)
		},
	}

	cmd.Flags().String("parts", "", "Dictionary parts file (csv, json, yaml)")
	cmd.Flags().String("sets", "", "Dictionary sets file (csv, json, yaml)")
	cmd.Flags().StringVar(&opts.Out, "out", "", "Write the schema to a file instead of stdout")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Schema format: yaml, json (default: from --out, else yaml)")
	cmd.Flags().StringArrayVar(&opts.Merge, "merge", nil, "Merge another schema file into the result (repeatable)")

	return cmd
}

func runSchema(cmd *cobra.Command, opts *SchemaOptions) error {
	cmdCtx := NewCommandContext(cmd)

	s, m, err := cmdCtx.compileSchema()
	if err != nil {
		return err
	}
	cmdCtx.Logger.Debug("compiled schema",
		slog.String("version", s.Version.String()),
		slog.Int("tables", len(s.Tables)),
		slog.Int("skipped_parts", len(m.Skipped)))

	for _, path := range opts.Merge {
		other, err := loader.ReadSchema(path)
		if err != nil {
			return fmt.Errorf("read schema to merge: %w", err)
		}
		if s, err = schema.MergeSameVersion(s, other); err != nil {
			return fmt.Errorf("merge %s: %w", path, err)
		}
	}

	format := core.FormatYAML
	if opts.Format != "" || opts.Out != "" {
		if format, err = loader.FormatFor(opts.Out, opts.Format); err != nil {
			return err
		}
	}

	if opts.Out != "" {
		if err := loader.WriteSchema(opts.Out, s, format); err != nil {
			return err
		}
		cmdCtx.Renderer.Success(fmt.Sprintf("Wrote schema for version %s (%d tables) to %s", s.Version, len(s.Tables), opts.Out))
		return nil
	}
	if format == core.FormatText {
		format = core.FormatYAML
	}
	return schema.Encode(cmdCtx.Renderer.Writer(), s, format)
}
