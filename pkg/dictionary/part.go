package dictionary

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/leapstack-labs/odmval/pkg/core"
	"github.com/leapstack-labs/odmval/pkg/version"
)

// RawRow is one dictionary row as read from disk: field name to text.
type RawRow map[string]string

// Field names shared by parts and sets.
const (
	FieldPartID        = "partID"
	FieldPartType      = "partType"
	FieldStatus        = "status"
	FieldFirstReleased = "firstReleased"
	FieldLastUpdated   = "lastUpdated"
	FieldSetID         = "setID"
	FieldDataType      = "dataType"
	FieldCatSetID      = "catSetID"
	FieldMinValue      = "minValue"
	FieldMaxValue      = "maxValue"
	FieldMinLength     = "minLength"
	FieldMaxLength     = "maxLength"
	FieldV1Location    = "version1Location"
	FieldV1Table       = "version1Table"
	FieldV1Variable    = "version1Variable"
	FieldV1Category    = "version1Category"

	// requiredSuffix is appended to a table id to form its required-ness field.
	requiredSuffix = "Required"
)

// PartType is the kind of dictionary part.
type PartType string

// Part types.
const (
	PartTable       PartType = "table"
	PartAttribute   PartType = "attribute"
	PartCategory    PartType = "category"
	PartMissingness PartType = "missingness"
)

func parsePartType(s string) (PartType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "table", "tables":
		return PartTable, true
	case "attribute", "attributes":
		return PartAttribute, true
	case "category", "categories":
		return PartCategory, true
	case "missingness":
		return PartMissingness, true
	}
	return "", false
}

// Part is one decoded dictionary part.
type Part struct {
	ID            string `mapstructure:"partID"`
	RawType       string `mapstructure:"partType"`
	Status        string `mapstructure:"status"`
	FirstReleased string `mapstructure:"firstReleased"`
	LastUpdated   string `mapstructure:"lastUpdated"`
	DataType      string `mapstructure:"dataType"`
	CatSetID      string `mapstructure:"catSetID"`
	MinValue      string `mapstructure:"minValue"`
	MaxValue      string `mapstructure:"maxValue"`
	MinLength     string `mapstructure:"minLength"`
	MaxLength     string `mapstructure:"maxLength"`
	V1Location    string `mapstructure:"version1Location"`
	V1Table       string `mapstructure:"version1Table"`
	V1Variable    string `mapstructure:"version1Variable"`
	V1Category    string `mapstructure:"version1Category"`

	// Type is the normalized RawType.
	Type PartType `mapstructure:"-"`

	// Fields keeps every non-absent field, including the per-table
	// membership and required-ness columns that have no fixed name.
	Fields RawRow `mapstructure:"-"`

	released version.Version
	end      version.Version
}

// Active reports whether the part has not been deprecated.
func (p *Part) Active() bool {
	switch strings.ToLower(p.Status) {
	case "", "active":
		return true
	default:
		return false
	}
}

// Field returns a raw field value; absent fields report false.
func (p *Part) Field(name string) (string, bool) {
	v, ok := p.Fields[name]
	return v, ok
}

// Released returns the parsed firstReleased version. Only valid on parts of
// a built Model.
func (p *Part) Released() version.Version {
	return p.released
}

// LegacyIDs returns the legacy identifiers this part maps to, by part type.
func (p *Part) LegacyIDs() []string {
	switch p.Type {
	case PartTable:
		return splitMulti(p.V1Table)
	case PartAttribute:
		return splitMulti(p.V1Variable)
	case PartCategory:
		return splitMulti(p.V1Category)
	default:
		return nil
	}
}

// SetMember is one decoded sets row.
type SetMember struct {
	SetID         string `mapstructure:"setID"`
	PartID        string `mapstructure:"partID"`
	Status        string `mapstructure:"status"`
	FirstReleased string `mapstructure:"firstReleased"`
	LastUpdated   string `mapstructure:"lastUpdated"`
}

func (s SetMember) key() string {
	return s.SetID + ":" + s.PartID
}

func decodeRow(row RawRow, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(map[string]string(row))
}

func decodePart(row RawRow) (*Part, error) {
	p := &Part{Fields: row}
	if err := decodeRow(row, p); err != nil {
		return nil, fmt.Errorf("decode part %q: %w", row[FieldPartID], err)
	}
	if p.ID == "" {
		return nil, &MalformedFieldError{Field: FieldPartID, Value: ""}
	}
	t, ok := parsePartType(p.RawType)
	if !ok {
		return nil, &MalformedFieldError{PartID: p.ID, Field: FieldPartType, Value: p.RawType}
	}
	p.Type = t
	return p, nil
}

func decodeSetMember(row RawRow) (SetMember, error) {
	var m SetMember
	if err := decodeRow(row, &m); err != nil {
		return m, fmt.Errorf("decode set row %q: %w", row[FieldSetID], err)
	}
	if m.SetID == "" || m.PartID == "" {
		return m, &MalformedFieldError{PartID: m.key(), Field: FieldSetID, Value: m.SetID}
	}
	return m, nil
}

// splitMulti splits a multi-valued legacy field on ';'.
func splitMulti(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(s, ";") {
		v = strings.TrimSpace(v)
		if v == "" || core.IsNullSentinel(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}
