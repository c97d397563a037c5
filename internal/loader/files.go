package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/odmval/pkg/core"
	"github.com/leapstack-labs/odmval/pkg/report"
	"github.com/leapstack-labs/odmval/pkg/schema"
	"github.com/leapstack-labs/odmval/pkg/summary"
)

// FormatFor picks the output format: the explicit name when given, else
// the file extension, else text.
func FormatFor(path, explicit string) (core.Format, error) {
	if explicit != "" {
		return core.ParseFormat(explicit)
	}
	if f, ok := core.FormatFromPath(path); ok {
		return f, nil
	}
	return core.FormatText, nil
}

// structuredFormat picks the format of a file read back in: its extension,
// defaulting to JSON.
func structuredFormat(path string) core.Format {
	if f, ok := core.FormatFromPath(path); ok && f != core.FormatText {
		return f
	}
	return core.FormatJSON
}

// WriteFile creates path, including missing parent directories, and
// streams the output of write into it.
func WriteFile(path string, write func(io.Writer) error) (err error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	f, err := os.Create(path) //nolint:gosec // path is supplied by the user
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(f)
	if err := write(w); err != nil {
		return err
	}
	return w.Flush()
}

// WriteReport writes a validation report.
func WriteReport(path string, r *report.ValidationReport, format core.Format) error {
	return WriteFile(path, func(w io.Writer) error {
		return report.Encode(w, r, format)
	})
}

// ReadReport reads a JSON or YAML validation report.
func ReadReport(path string) (*report.ValidationReport, error) {
	f, err := os.Open(path) //nolint:gosec // path is supplied by the user
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	r, err := report.Decode(f, structuredFormat(path))
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return r, nil
}

// WriteSummary writes a summarized report.
func WriteSummary(path string, s *summary.SummarizedReport, format core.Format) error {
	return WriteFile(path, func(w io.Writer) error {
		return summary.Encode(w, s, format)
	})
}

// WriteSchema writes a compiled schema. Text is not a schema format, so it
// falls back to YAML.
func WriteSchema(path string, s *schema.Schema, format core.Format) error {
	if format == core.FormatText {
		format = core.FormatYAML
	}
	return WriteFile(path, func(w io.Writer) error {
		return schema.Encode(w, s, format)
	})
}

// ReadSchema reads a JSON or YAML schema.
func ReadSchema(path string) (*schema.Schema, error) {
	f, err := os.Open(path) //nolint:gosec // path is supplied by the user
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	s, err := schema.Decode(f, structuredFormat(path))
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return s, nil
}
