package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/odmval/internal/loader"
	"github.com/leapstack-labs/odmval/pkg/version"
	"github.com/spf13/cobra"
)

// TableMatch pairs a data file with the table id inferred from its name.
type TableMatch struct {
	File    string `json:"file" yaml:"file"`
	TableID string `json:"table_id" yaml:"table_id"`
	Known   bool   `json:"known" yaml:"known"`
}

// NewTablesCommand creates the tables command.
func NewTablesCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "tables [file...]",
		Short: "List dictionary tables or infer tables from file names",
		Long: `Without arguments, list the table ids of the configured dictionary
version's major release. With file arguments, show the table id each file
would be validated as: the longest table id its name ends with.`,
		Example: `  # List the tables of the latest release
  odmval tables

  # List the version 1 tables
  odmval tables --odm-version 1.1.0

  # Check which tables files map to
  odmval tables data/ottawa_samples.csv data/sites.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext(cmd).WithFormat(cmd, format)
			r := cmdCtx.Renderer

			v, err := cmdCtx.Cfg.TargetVersion()
			if err != nil {
				return err
			}

			if len(args) == 0 {
				ids, err := version.TableIDs(v.Major)
				if err != nil {
					return err
				}
				if ok, err := r.Structure(ids); ok {
					return err
				}
				r.Header(1, fmt.Sprintf("Tables of version %d (%d)", v.Major, len(ids)))
				for _, id := range ids {
					r.Println("  " + r.Styles().Table.Render(id))
				}
				return nil
			}

			matches := make([]TableMatch, 0, len(args))
			for _, path := range args {
				stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
				_, known := version.InferTableID(stem, v)
				matches = append(matches, TableMatch{File: path, TableID: loader.TableID(path, v), Known: known})
			}
			if ok, err := r.Structure(matches); ok {
				return err
			}
			for _, m := range matches {
				id := r.Styles().Table.Render(m.TableID)
				if !m.Known {
					id += r.Muted(" (not a dictionary table)")
				}
				r.Printf("%s -> %s\n", m.File, id)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: text, markdown, json, yaml")
	return cmd
}
