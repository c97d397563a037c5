package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/odmval/internal/cli/output"
	"github.com/leapstack-labs/odmval/internal/state"
	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	var (
		limit  int
		format string
	)
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show past validation runs",
		Long: `List recorded validation runs, most recent first, or show the per-table
and per-rule counts of one run.`,
		Example: `  # Last 10 runs
  odmval history

  # Details of one run as JSON
  odmval history 0b6f8f2e-... --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext(cmd).WithFormat(cmd, format)
			store, err := cmdCtx.openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if len(args) == 1 {
				detail, err := store.GetRunDetail(args[0])
				if err != nil {
					return err
				}
				return renderRunDetail(cmdCtx.Renderer, detail)
			}

			runs, err := store.ListRuns(limit)
			if err != nil {
				return err
			}
			return renderRuns(cmdCtx.Renderer, runs)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to list (0 for all)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: text, markdown, json, yaml")
	return cmd
}

func renderRuns(r *output.Renderer, runs []*state.Run) error {
	if runs == nil {
		runs = []*state.Run{}
	}
	if ok, err := r.Structure(runs); ok {
		return err
	}
	if len(runs) == 0 {
		r.Println("No runs recorded.")
		return nil
	}

	r.Header(1, fmt.Sprintf("Validation Runs (%d)", len(runs)))
	tw := newTable(r)
	tw.AppendHeader(table.Row{"Run", "Started", "Status", "Version", "Errors", "Warnings", "Inputs"})
	for _, run := range runs {
		tw.AppendRow(table.Row{
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			statusText(r, run.Status),
			run.DatasetVersion,
			run.Errors,
			run.Warnings,
			strings.Join(run.Inputs, ", "),
		})
	}
	renderTable(r, tw)
	return nil
}

func renderRunDetail(r *output.Renderer, d *state.RunDetail) error {
	if ok, err := r.Structure(d); ok {
		return err
	}

	run := d.Run
	r.Header(1, "Run "+run.ID)
	r.Printf("Status:   %s\n", statusText(r, run.Status))
	r.Printf("Started:  %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
	r.Printf("Versions: data %s, schema %s\n", run.DatasetVersion, run.SchemaVersion)
	r.Printf("Inputs:   %s\n", strings.Join(run.Inputs, ", "))
	if run.Error != "" {
		r.Printf("Error:    %s\n", run.Error)
	}
	r.Println("")

	if len(d.Tables) > 0 {
		tw := newTable(r)
		tw.SetTitle("Tables")
		tw.AppendHeader(table.Row{"Table", "Rows", "Columns", "Errors", "Warnings"})
		for _, t := range d.Tables {
			tw.AppendRow(table.Row{t.TableID, t.Rows, t.Columns, t.Errors, t.Warnings})
		}
		renderTable(r, tw)
		r.Println("")
	}
	if len(d.Rules) > 0 {
		tw := newTable(r)
		tw.SetTitle("Rules")
		tw.AppendHeader(table.Row{"Rule", "Errors", "Warnings"})
		for _, rs := range d.Rules {
			tw.AppendRow(table.Row{rs.RuleID, rs.Errors, rs.Warnings})
		}
		renderTable(r, tw)
	}
	return nil
}

func statusText(r *output.Renderer, s state.RunStatus) string {
	styles := r.Styles()
	switch s {
	case state.RunStatusValid:
		return styles.Success.Render(string(s))
	case state.RunStatusInvalid, state.RunStatusFailed:
		return styles.Error.Render(string(s))
	default:
		return styles.Warning.Render(string(s))
	}
}
