package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/odmval/internal/cli/commands"
	"github.com/leapstack-labs/odmval/internal/cli/config"
	"github.com/leapstack-labs/odmval/internal/cli/testutil"
	"github.com/leapstack-labs/odmval/internal/state"
	"github.com/leapstack-labs/odmval/pkg/schema"
)

const (
	validSamples = `siteID,quantity,collection,isPooled,collDT
s1,5,comp3h,TRUE,2024-01-01
s2,10,flowPr,false,2024-01-02T10:00:00
`
	invalidSamples = `siteID,quantity,collection,isPooled,collDT
s1,-3,comp3h,TRUE,2024-01-01
s2,10,unknownCat,false,2024-01-02
`
)

// run executes the root command with args and returns stdout and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	cmd := NewRootCmd()
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCmd()
	want := []string{"version", "validate", "schema", "summarize", "rules", "tables", "history", "init", "completion"}
	for _, name := range want {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}
}

func TestValidate_ValidData(t *testing.T) {
	p := testutil.SetupTestProject(t)
	data := p.WriteData(t, "samples.csv", validSamples)

	out, _, err := run(t, "validate", "--config", p.Config, "-o", "text", data)
	require.NoError(t, err)
	assert.Contains(t, out, "Errors: 0")
	testutil.AssertNoANSI(t, out)
}

func TestValidate_InvalidData(t *testing.T) {
	p := testutil.SetupTestProject(t)
	data := p.WriteData(t, "samples.csv", invalidSamples)

	out, _, err := run(t, "validate", "--config", p.Config, "-o", "text", data)
	require.ErrorIs(t, err, commands.ErrInvalidData)
	assert.Contains(t, out, "Errors: 2")
	assert.Contains(t, out, "less_than_min_value")
	assert.Contains(t, out, "invalid_category")
}

func TestValidate_Blacklist(t *testing.T) {
	p := testutil.SetupTestProject(t)
	data := p.WriteData(t, "samples.csv", invalidSamples)

	out, _, err := run(t, "validate", "--config", p.Config, "-o", "text",
		"--blacklist", "invalid_category", data)
	require.ErrorIs(t, err, commands.ErrInvalidData)
	assert.Contains(t, out, "Errors: 1")
	assert.NotContains(t, out, "invalid_category")
}

func TestValidate_ReportAndSummarize(t *testing.T) {
	p := testutil.SetupTestProject(t)
	data := p.WriteData(t, "samples.csv", invalidSamples)
	reportPath := filepath.Join(p.Dir, "out", "report.json")

	_, _, err := run(t, "validate", "--config", p.Config, "-o", "text", "--no-history", "--out", reportPath, data)
	require.ErrorIs(t, err, commands.ErrInvalidData)
	require.FileExists(t, reportPath)

	out, _, err := run(t, "summarize", "--config", p.Config, "--by", "column", "--format", "json", reportPath)
	require.NoError(t, err)

	var sum map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &sum))
	assert.Contains(t, out, `"quantity"`)
	assert.Contains(t, out, `"all"`)
}

func TestValidate_RecordsHistory(t *testing.T) {
	p := testutil.SetupTestProject(t)
	data := p.WriteData(t, "samples.csv", invalidSamples)

	_, _, err := run(t, "validate", "--config", p.Config, "-o", "text", data)
	require.ErrorIs(t, err, commands.ErrInvalidData)
	require.FileExists(t, p.History)

	out, _, err := run(t, "history", "--config", p.Config, "--format", "json")
	require.NoError(t, err)

	var runs []state.Run
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, state.RunStatusInvalid, runs[0].Status)
	assert.Equal(t, 2, runs[0].Errors)
	assert.Equal(t, "2.1.0", runs[0].SchemaVersion)
}

func TestValidate_NoHistory(t *testing.T) {
	p := testutil.SetupTestProject(t)
	data := p.WriteData(t, "samples.csv", validSamples)

	_, _, err := run(t, "validate", "--config", p.Config, "--no-history", data)
	require.NoError(t, err)
	assert.NoFileExists(t, p.History)
}

func TestSchema_WriteAndValidate(t *testing.T) {
	p := testutil.SetupTestProject(t)
	schemaPath := filepath.Join(p.Dir, "schema.yaml")

	_, _, err := run(t, "schema", "--config", p.Config, "--odm-version", "2.0.0", "--out", schemaPath)
	require.NoError(t, err)
	require.FileExists(t, schemaPath)

	// grab was retired in 2.0.0; comp8h is still listed.
	data := p.WriteData(t, "samples.csv", "siteID,collection\ns1,comp8h\ns2,grab\n")
	out, _, err := run(t, "validate", "--config", p.Config, "-o", "text", "--no-history", "--schema", schemaPath, data)
	require.ErrorIs(t, err, commands.ErrInvalidData)
	assert.Contains(t, out, "Errors: 1")
	assert.Contains(t, out, "grab")
}

func TestSchema_MergeRejectsOtherVersion(t *testing.T) {
	p := testutil.SetupTestProject(t)
	older := filepath.Join(p.Dir, "schema-2.0.0.yaml")

	_, _, err := run(t, "schema", "--config", p.Config, "--odm-version", "2.0.0", "--out", older)
	require.NoError(t, err)

	_, _, err = run(t, "schema", "--config", p.Config, "--merge", older)
	require.ErrorIs(t, err, schema.ErrVersionMismatch)
}

func TestValidate_BlacklistedTypeStillChecksBounds(t *testing.T) {
	p := testutil.SetupTestProject(t)
	data := p.WriteData(t, "samples.csv", "siteID,quantity,collection\ns1,5000,comp3h\n")

	out, _, err := run(t, "validate", "--config", p.Config, "-o", "text", "--no-history",
		"--blacklist", "invalid_type", data)
	require.ErrorIs(t, err, commands.ErrInvalidData)
	assert.Contains(t, out, "Errors: 1")
	assert.Contains(t, out, "greater_than_max_value")
	assert.Contains(t, out, "Warnings: 0")
}

func TestValidate_MissingDictionary(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "samples.csv")
	require.NoError(t, os.WriteFile(data, []byte(validSamples), 0o600))

	_, _, err := run(t, "validate", "--history", filepath.Join(dir, "h.db"), data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parts")
}

func TestInit_CreatesConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "project")

	_, _, err := run(t, "init", dir, "--dict-version", "2.0.0")
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(dir, "odmval.yaml"))
	require.FileExists(t, filepath.Join(dir, ".gitignore"))

	cfg, err := config.LoadConfig(filepath.Join(dir, "odmval.yaml"), nil)
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", cfg.Version)
	assert.Equal(t, filepath.Join(dir, "parts.csv"), cfg.Dictionary.Parts)

	_, _, err = run(t, "init", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}
