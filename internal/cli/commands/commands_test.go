package commands

import (
	"bytes"
	"testing"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		name  string
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{"validate", NewValidateCommand("test"), "validate <file>...",
			[]string{"parts", "sets", "schema", "format", "out", "summary-by", "data-version", "each", "watch", "no-history"}},
		{"schema", NewSchemaCommand(), "schema", []string{"parts", "sets", "out", "format", "merge"}},
		{"summarize", NewSummarizeCommand(), "summarize <report>...", []string{"by", "format", "out"}},
		{"rules", NewRulesCommand(), "rules [rule-id]", []string{"verbose", "format"}},
		{"tables", NewTablesCommand(), "tables [file...]", []string{"format"}},
		{"history", NewHistoryCommand(), "history [run-id]", []string{"limit", "format"}},
		{"init", NewInitCommand(), "init [directory]", []string{"force", "dict-parts", "dict-sets", "dict-version"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short)
			assert.NotEmpty(t, tt.cmd.Long)
			for _, f := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(f), "missing flag --%s", f)
			}
		})
	}
}

func TestValidateCommand_RequiresFiles(t *testing.T) {
	cmd := NewValidateCommand("test")
	cmd.SetArgs([]string{})
	assert.Error(t, cmd.Execute())
}

func TestTablesCommand_InferFromFiles(t *testing.T) {
	cmd := NewTablesCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"-f", "json", "data/ottawa_samples.csv", "notes.csv"})

	require.NoError(t, cmd.Execute())

	var matches []TableMatch
	require.NoError(t, json.Unmarshal(buf.Bytes(), &matches))
	assert.Equal(t, []TableMatch{
		{File: "data/ottawa_samples.csv", TableID: "samples", Known: true},
		{File: "notes.csv", TableID: "notes", Known: false},
	}, matches)
}

func TestTablesCommand_ListsLatestMajor(t *testing.T) {
	cmd := NewTablesCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"-f", "yaml"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "- samples")
	assert.Contains(t, buf.String(), "- sites")
}
