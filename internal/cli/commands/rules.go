package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/odmval/internal/cli/output"
	"github.com/leapstack-labs/odmval/pkg/core"
	"github.com/leapstack-labs/odmval/pkg/rules"
	"github.com/spf13/cobra"
)

// RulesOptions holds options for the rules command.
type RulesOptions struct {
	Verbose bool   // Show templates and constraints
	Format  string // Output format
}

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	opts := &RulesOptions{}
	cmd := &cobra.Command{
		Use:   "rules [rule-id]",
		Short: "List validation rules",
		Long: `List the validation rules in the order they are applied.

Each rule compiles dictionary metadata into schema constraints and names the
diagnostics those constraints produce. Use the names with --whitelist and
--blacklist or the rules section of odmval.yaml.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON/YAML: Machine-readable format`,
		Example: `  # List all rules
  odmval rules

  # Show details for a specific rule
  odmval rules invalid_category

  # Show message templates and constraints
  odmval rules -V

  # Output as JSON
  odmval rules --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext(cmd).WithFormat(cmd, opts.Format)
			defs := rules.All()
			if len(args) > 0 {
				id, ok := core.ParseRuleID(args[0])
				if !ok {
					return fmt.Errorf("rule %q not found", args[0])
				}
				def, _ := rules.Get(id)
				defs = []rules.RuleDef{def}
				opts.Verbose = true
			}
			return renderRules(cmdCtx.Renderer, defs, opts.Verbose)
		},
	}

	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "V", false, "Show templates and constraints")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json, yaml")

	return cmd
}

func renderRules(r *output.Renderer, defs []rules.RuleDef, verbose bool) error {
	infos := make([]core.RuleInfo, 0, len(defs))
	for _, d := range defs {
		infos = append(infos, d.Info())
	}
	if ok, err := r.Structure(infos); ok {
		return err
	}

	styles := r.Styles()
	r.Header(1, fmt.Sprintf("Validation Rules (%d)", len(defs)))

	tw := newTable(r)
	header := table.Row{"#", "Rule", "Description", "Scope"}
	if verbose {
		header = append(header, "Constraints", "Template")
	}
	tw.AppendHeader(header)

	for i, d := range defs {
		scope := "cell"
		if d.ColumnScoped {
			scope = "column"
		}
		row := table.Row{i + 1, styles.Rule.Render(d.Name()), d.Description, scope}
		if verbose {
			info := d.Info()
			tmpl := d.Template
			if d.WarnTemplate != "" {
				tmpl += "\nwarning: " + d.WarnTemplate
			}
			row = append(row, strings.Join(info.Constraints, ", "), tmpl)
		}
		tw.AppendRow(row)
	}

	renderTable(r, tw)
	return nil
}
