package schema

import (
	"bytes"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/odmval/pkg/core"
)

// Encode writes s in the given format. Map keys are written sorted, so the
// same schema always encodes to the same bytes.
func Encode(w io.Writer, s *Schema, format core.Format) error {
	switch format {
	case core.FormatJSON:
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return fmt.Errorf("encode schema: %w", err)
		}
		data = append(data, '\n')
		_, err = w.Write(data)
		return err
	case core.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("encode schema: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("schema cannot be encoded as %q", format)
	}
}

// Marshal returns the encoding of s.
func Marshal(s *Schema, format core.Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, s, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads and validates a schema.
func Decode(r io.Reader, format core.Format) (*Schema, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return Unmarshal(data, format)
}

// Unmarshal parses and validates a schema.
func Unmarshal(data []byte, format core.Format) (*Schema, error) {
	var s Schema
	switch format {
	case core.FormatJSON:
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("decode schema: %w", err)
		}
	case core.FormatYAML:
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("decode schema: %w", err)
		}
	default:
		return nil, fmt.Errorf("schema cannot be decoded from %q", format)
	}
	if s.Tables == nil {
		s.Tables = make(map[string]*TableSchema)
	}
	for id, t := range s.Tables {
		if t == nil {
			return nil, fmt.Errorf("%w: table %q is empty", ErrInvalid, id)
		}
		if t.Columns == nil {
			t.Columns = make(map[string]*ColumnSchema)
		}
		for cid, c := range t.Columns {
			if c == nil {
				t.Columns[cid] = &ColumnSchema{}
			}
		}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
