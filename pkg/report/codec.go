package report

import (
	"bufio"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/odmval/pkg/core"
)

// Encode writes the report in the given format.
func Encode(w io.Writer, r *ValidationReport, format core.Format) error {
	switch format {
	case core.FormatText:
		return WriteText(w, r)
	case core.FormatJSON:
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		_, err = w.Write(append(data, '\n'))
		return err
	case core.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported report format %q", format)
	}
}

// Decode reads a report written by Encode in JSON or YAML.
func Decode(rd io.Reader, format core.Format) (*ValidationReport, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var r ValidationReport
	switch format {
	case core.FormatJSON:
		err = json.Unmarshal(data, &r)
	case core.FormatYAML:
		err = yaml.Unmarshal(data, &r)
	default:
		return nil, fmt.Errorf("cannot decode report from %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	if r.Tables == nil {
		r.Tables = make(map[string]TableInfo)
	}
	return &r, nil
}

// WriteText renders the report messages under "Errors: N" and
// "Warnings: N" headers.
func WriteText(w io.Writer, r *ValidationReport) error {
	bw := bufio.NewWriter(w)
	section := func(title string, ds []Diagnostic) {
		fmt.Fprintf(bw, "%s: %d\n", title, len(ds))
		for _, d := range ds {
			fmt.Fprintf(bw, "  %s\n", d.Message)
		}
	}
	section("Errors", r.Errors)
	fmt.Fprintln(bw)
	section("Warnings", r.Warnings)
	return bw.Flush()
}
