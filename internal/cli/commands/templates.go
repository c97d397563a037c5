package commands

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
)

//go:embed templates
var templateFS embed.FS

// projectTemplate holds the values written into a new odmval.yaml.
type projectTemplate struct {
	Version     string
	Parts       string
	Sets        string
	Verbosity   int
	BatchSize   int
	HistoryPath string
}

// renderConfigTemplate writes odmval.yaml to path.
func renderConfigTemplate(path string, data projectTemplate) error {
	tmpl, err := template.ParseFS(templateFS, "templates/odmval.yaml.tmpl")
	if err != nil {
		return fmt.Errorf("failed to parse config template: %w", err)
	}
	f, err := os.Create(path) //nolint:gosec // path is built from the init directory
	if err != nil {
		return err
	}
	if err := tmpl.Execute(f, data); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to render config template: %w", err)
	}
	return f.Close()
}

// copyStaticTemplate copies an embedded file to dir, renaming "gitignore"
// to ".gitignore".
func copyStaticTemplate(name, dir string, force bool) (string, error) {
	data, err := templateFS.ReadFile("templates/" + name)
	if err != nil {
		return "", err
	}
	target := filepath.Join(dir, renameSpecialFile(name))
	if _, err := os.Stat(target); err == nil && !force {
		return "", nil
	}
	if err := os.WriteFile(target, data, 0o600); err != nil {
		return "", err
	}
	return target, nil
}

func renameSpecialFile(name string) string {
	if name == "gitignore" {
		return ".gitignore"
	}
	return name
}
