// Package loader reads dictionaries and datasets from disk and writes
// reports and schemas back.
package loader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/leapstack-labs/odmval/pkg/dictionary"
	"gopkg.in/yaml.v3"
)

// fileKind is the decoder a path is read with.
type fileKind int

const (
	kindCSV fileKind = iota
	kindJSON
	kindYAML
)

func kindOf(path string) (fileKind, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return kindCSV, nil
	case ".json":
		return kindJSON, nil
	case ".yaml", ".yml":
		return kindYAML, nil
	}
	return 0, &UnsupportedFileError{Path: path}
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadRows reads a dictionary table (parts or sets) as text rows.
func ReadRows(path string) ([]dictionary.RawRow, error) {
	kind, err := kindOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path) //nolint:gosec // path is supplied by the user
	if err != nil {
		return nil, err
	}

	switch kind {
	case kindCSV:
		header, records, err := readCSV(path, data)
		if err != nil {
			return nil, err
		}
		rows := make([]dictionary.RawRow, 0, len(records))
		for _, rec := range records {
			row := make(dictionary.RawRow, len(header))
			for i, h := range header {
				row[h] = rec[i]
			}
			rows = append(rows, row)
		}
		return rows, nil
	default:
		records, err := decodeRecords(path, data, kind)
		if err != nil {
			return nil, err
		}
		rows := make([]dictionary.RawRow, 0, len(records))
		for _, rec := range records {
			row := make(dictionary.RawRow, len(rec))
			for k, v := range rec {
				row[k] = text(v)
			}
			rows = append(rows, row)
		}
		return rows, nil
	}
}

// ReadDictionary reads the parts table and, when setsPath is not empty,
// the sets table.
func ReadDictionary(partsPath, setsPath string) (parts, sets []dictionary.RawRow, err error) {
	if parts, err = ReadRows(partsPath); err != nil {
		return nil, nil, fmt.Errorf("read parts: %w", err)
	}
	if setsPath == "" {
		return parts, nil, nil
	}
	if sets, err = ReadRows(setsPath); err != nil {
		return nil, nil, fmt.Errorf("read sets: %w", err)
	}
	return parts, sets, nil
}

// readCSV returns the header and the data records. Every record has the
// header's width.
func readCSV(path string, data []byte) ([]string, [][]string, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, csvError(path, err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, csvError(path, err)
	}
	return header, records, nil
}

func csvError(path string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &ParseError{Path: path, Line: pe.Line, Err: pe.Err}
	}
	return &ParseError{Path: path, Err: err}
}

// decodeRecords decodes a JSON or YAML list of objects.
func decodeRecords(path string, data []byte, kind fileKind) ([]map[string]any, error) {
	doc, err := decodeDocument(path, data, kind)
	if err != nil {
		return nil, err
	}
	list, ok := doc.([]any)
	if !ok {
		return nil, &ParseError{Path: path, Err: errors.New("expected a list of records")}
	}
	return recordsOf(path, list)
}

func decodeDocument(path string, data []byte, kind fileKind) (any, error) {
	var doc any
	switch kind {
	case kindJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, &ParseError{Path: path, Err: err}
		}
	case kindYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, &ParseError{Path: path, Err: err}
		}
	default:
		return nil, &UnsupportedFileError{Path: path}
	}
	return doc, nil
}

func recordsOf(path string, list []any) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(list))
	for i, item := range list {
		rec, ok := item.(map[string]any)
		if !ok {
			return nil, &ParseError{Path: path, Err: fmt.Errorf("record %d is not an object", i+1)}
		}
		for k, v := range rec {
			rec[k] = scalar(v)
		}
		out = append(out, rec)
	}
	return out, nil
}

// scalar normalizes decoded values: JSON numbers become int64 or float64,
// YAML ints become int64.
func scalar(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case int:
		return int64(x)
	default:
		return v
	}
}

// text renders a decoded value as dictionary text.
func text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}
