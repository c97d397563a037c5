package summary

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/odmval/pkg/core"
)

// Encode writes s as tables (text), JSON or YAML.
func Encode(w io.Writer, s *SummarizedReport, format core.Format) error {
	switch format {
	case core.FormatText:
		return Render(w, s, false)
	case core.FormatJSON:
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return fmt.Errorf("encode summary: %w", err)
		}
		_, err = w.Write(append(data, '\n'))
		return err
	case core.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("encode summary: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported summary format %q", format)
	}
}
