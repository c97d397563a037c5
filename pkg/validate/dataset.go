package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/leapstack-labs/odmval/pkg/version"
)

// Origin is the kind of source a table was read from. Spreadsheet-like
// sources have a header row, which shifts reported row numbers by one.
type Origin int

// Origins.
const (
	OriginRecords Origin = iota
	OriginSpreadsheet
)

func (o Origin) String() string {
	switch o {
	case OriginRecords:
		return "records"
	case OriginSpreadsheet:
		return "spreadsheet"
	default:
		return fmt.Sprintf("origin(%d)", int(o))
	}
}

// ParseOrigin converts an origin name.
func ParseOrigin(s string) (Origin, error) {
	switch strings.ToLower(s) {
	case "records", "":
		return OriginRecords, nil
	case "spreadsheet", "csv":
		return OriginSpreadsheet, nil
	}
	return 0, fmt.Errorf("unknown origin %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (o Origin) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Origin) UnmarshalText(b []byte) error {
	v, err := ParseOrigin(string(b))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// Row maps a column id to a cell value. Values are strings for
// spreadsheet-like sources and any scalar for record sources.
type Row map[string]any

func (r Row) clone() Row {
	c := make(Row, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

// Table is one table of a dataset.
type Table struct {
	ID     string
	Origin Origin
	// Columns is the header of spreadsheet-like sources. Optional.
	Columns []string
	Rows    []Row
}

// ColumnIDs returns the declared header, or else the sorted union of row
// keys.
func (t *Table) ColumnIDs() []string {
	if len(t.Columns) > 0 {
		return t.Columns
	}
	seen := make(map[string]struct{})
	for _, r := range t.Rows {
		for k := range r {
			seen[k] = struct{}{}
		}
	}
	ids := make([]string, 0, len(seen))
	for k := range seen {
		ids = append(ids, k)
	}
	sort.Strings(ids)
	return ids
}

// Dataset is a set of tables of one dictionary version.
type Dataset struct {
	// Version is the dictionary version the data claims. Zero means the
	// version of the schema it is validated against.
	Version version.Version
	Tables  []*Table
}

// Table returns the table with the given id.
func (d *Dataset) Table(id string) (*Table, bool) {
	for _, t := range d.Tables {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}
