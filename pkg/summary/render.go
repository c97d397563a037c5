package summary

import (
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Render writes the overview and each key summary as tables. Markdown
// selects GitHub-flavoured tables instead of box drawing.
func Render(w io.Writer, s *SummarizedReport, markdown bool) error {
	render := func(t table.Writer) string {
		if markdown {
			return t.RenderMarkdown()
		}
		return t.Render()
	}
	newTable := func(title string) table.Writer {
		t := table.NewWriter()
		t.SetStyle(table.StyleLight)
		t.SetTitle(title)
		return t
	}

	tables := newTable("Tables")
	tables.AppendHeader(table.Row{"Table", "Rows", "Columns"})
	ids := make([]string, 0, len(s.Overview.Tables))
	for id := range s.Overview.Tables {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		info := s.Overview.Tables[id]
		tables.AppendRow(table.Row{id, info.Rows, info.Columns})
	}
	tables.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})
	if _, err := fmt.Fprintln(w, render(tables)); err != nil {
		return err
	}

	rules := newTable("Rules")
	rules.AppendHeader(table.Row{"Rule", "Errors", "Warnings"})
	for _, r := range s.Overview.Rules {
		rules.AppendRow(table.Row{r.Rule, r.Errors, r.Warnings})
	}
	rules.AppendFooter(table.Row{"total", s.Overview.Errors, s.Overview.Warnings})
	if _, err := fmt.Fprintln(w, render(rules)); err != nil {
		return err
	}

	for _, k := range Keys() {
		ks, ok := s.Summaries[k]
		if !ok {
			continue
		}
		for _, part := range []struct {
			name   string
			counts []GroupCount
		}{{"errors", ks.Errors}, {"warnings", ks.Warnings}} {
			if len(part.counts) == 0 {
				continue
			}
			t := newTable(fmt.Sprintf("%s by %s", part.name, k))
			t.AppendHeader(groupHeader(k))
			for _, c := range part.counts {
				t.AppendRow(groupRow(k, c))
			}
			if _, err := fmt.Fprintln(w, render(t)); err != nil {
				return err
			}
		}
	}
	return nil
}

func groupHeader(k Key) table.Row {
	switch k {
	case KeyColumn:
		return table.Row{"Table", "Column", "Rule", "Count"}
	case KeyRow:
		return table.Row{"Table", "Row", "Rule", "Count"}
	default:
		return table.Row{"Table", "Rule", "Count"}
	}
}

func groupRow(k Key, c GroupCount) table.Row {
	switch k {
	case KeyColumn:
		return table.Row{c.Table, c.Column, c.Rule, c.Count}
	case KeyRow:
		return table.Row{c.Table, strconv.Itoa(c.Row), c.Rule, c.Count}
	default:
		return table.Row{c.Table, c.Rule, c.Count}
	}
}
