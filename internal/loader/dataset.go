package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/leapstack-labs/odmval/pkg/validate"
	"github.com/leapstack-labs/odmval/pkg/version"
)

// TableID returns the table id for a data file: the dictionary table the
// file stem ends with, else the stem itself.
func TableID(path string, v version.Version) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if id, ok := version.InferTableID(stem, v); ok {
		return id
	}
	return stem
}

// ReadTables reads the tables held by one data file. A CSV file holds one
// spreadsheet table. A JSON or YAML list holds one table of records; an
// object maps table ids to record lists.
func ReadTables(path string, v version.Version) ([]*validate.Table, error) {
	kind, err := kindOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path) //nolint:gosec // path is supplied by the user
	if err != nil {
		return nil, err
	}

	if kind == kindCSV {
		header, records, err := readCSV(path, data)
		if err != nil {
			return nil, err
		}
		t := &validate.Table{
			ID:      TableID(path, v),
			Origin:  validate.OriginSpreadsheet,
			Columns: header,
			Rows:    make([]validate.Row, 0, len(records)),
		}
		for _, rec := range records {
			row := make(validate.Row, len(header))
			for i, h := range header {
				row[h] = rec[i]
			}
			t.Rows = append(t.Rows, row)
		}
		return []*validate.Table{t}, nil
	}

	doc, err := decodeDocument(path, data, kind)
	if err != nil {
		return nil, err
	}
	switch x := doc.(type) {
	case []any:
		t, err := recordTable(path, TableID(path, v), x)
		if err != nil {
			return nil, err
		}
		return []*validate.Table{t}, nil
	case map[string]any:
		ids := make([]string, 0, len(x))
		for id := range x {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		tables := make([]*validate.Table, 0, len(ids))
		for _, id := range ids {
			list, ok := x[id].([]any)
			if !ok {
				return nil, &ParseError{Path: path, Err: fmt.Errorf("table %q is not a list of records", id)}
			}
			t, err := recordTable(path, id, list)
			if err != nil {
				return nil, err
			}
			tables = append(tables, t)
		}
		return tables, nil
	case nil:
		return nil, nil
	default:
		return nil, &ParseError{Path: path, Err: errors.New("expected a list of records or an object of tables")}
	}
}

func recordTable(path, id string, list []any) (*validate.Table, error) {
	recs, err := recordsOf(path, list)
	if err != nil {
		return nil, err
	}
	t := &validate.Table{ID: id, Origin: validate.OriginRecords, Rows: make([]validate.Row, 0, len(recs))}
	for _, rec := range recs {
		t.Rows = append(t.Rows, validate.Row(rec))
	}
	return t, nil
}

// ReadDataset reads data files into one dataset of version v.
func ReadDataset(paths []string, v version.Version) (*validate.Dataset, error) {
	ds := &validate.Dataset{Version: v}
	from := make(map[string]string)
	for _, path := range paths {
		tables, err := ReadTables(path, v)
		if err != nil {
			return nil, err
		}
		for _, t := range tables {
			if prev, ok := from[t.ID]; ok {
				return nil, fmt.Errorf("table %q is read from both %s and %s", t.ID, prev, path)
			}
			from[t.ID] = path
			ds.Tables = append(ds.Tables, t)
		}
	}
	return ds, nil
}
