// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/odmval/internal/cli/output"
	"github.com/leapstack-labs/odmval/internal/testutil"
)

// Project is a temporary odmval project on disk.
type Project struct {
	Dir     string
	Config  string
	Parts   string
	Sets    string
	History string
}

// SetupTestProject creates a temporary project with the fixture dictionary,
// an odmval.yaml pointing at it, and a history path inside the project.
func SetupTestProject(t *testing.T) *Project {
	t.Helper()

	tmpDir := t.TempDir()
	parts, sets := testutil.WriteDictionary(t, tmpDir)

	p := &Project{
		Dir:     tmpDir,
		Config:  filepath.Join(tmpDir, "odmval.yaml"),
		Parts:   parts,
		Sets:    sets,
		History: filepath.Join(tmpDir, ".odmval", "history.db"),
	}

	cfg := `dictionary:
  parts: ` + filepath.Base(parts) + `
  sets: ` + filepath.Base(sets) + `
history_path: .odmval/history.db
`
	if err := os.WriteFile(p.Config, []byte(cfg), 0o600); err != nil {
		t.Fatalf("failed to create odmval.yaml: %v", err)
	}
	return p
}

// WriteData writes a data file into the project and returns its path.
func (p *Project) WriteData(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(p.Dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to create %s: %v", name, err)
	}
	return path
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
func NewTestRenderer(mode output.Mode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown checks for balanced code fences and non-empty headers.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	if n := strings.Count(md, "```"); n%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", n)
	}
	for i, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
