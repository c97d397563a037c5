package dictionary

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/leapstack-labs/odmval/pkg/core"
	"github.com/leapstack-labs/odmval/pkg/version"
)

// defaultBooleanSet is used when the dictionary has no booleanSet rows.
var defaultBooleanSet = []string{"true", "false"}

// Build resolves raw part and set rows into a Model for the target version.
// The input rows are not modified.
func Build(parts, sets []RawRow, target version.Version, opts ...Option) (*Model, error) {
	o := newBuildOptions(opts)

	partRows := stripRows(parts, FieldPartID)
	setRows := stripRows(sets, FieldSetID, FieldPartID)

	m := &Model{
		Version:        target,
		Legacy:         target.IsLegacy(),
		Parts:          make(map[string]*Part),
		Sets:           make(map[string][]string),
		LegacyMappings: make(map[string][]string),
	}
	m.Patches = applyPatches(target, partRows, setRows)

	ordered, err := filterParts(partRows, target, o.latest)
	if err != nil {
		return nil, err
	}
	if err := m.filterSets(setRows, target, o.latest); err != nil {
		return nil, err
	}

	for _, p := range ordered {
		if ids := p.LegacyIDs(); len(ids) > 0 {
			m.LegacyMappings[p.ID] = ids
		}
	}
	if m.Legacy {
		kept := ordered[:0]
		for _, p := range ordered {
			if needsLegacyMapping(p) && len(m.LegacyMappings[p.ID]) == 0 {
				o.logger.Warn("skipping part without legacy mapping", "part_id", p.ID)
				m.Skipped = append(m.Skipped, p.ID)
				continue
			}
			kept = append(kept, p)
		}
		ordered = kept
	}
	for _, p := range ordered {
		m.Parts[p.ID] = p
	}

	attrs := make(map[string]*AttributeModel)
	for _, p := range ordered {
		if p.Type != PartAttribute {
			continue
		}
		a, err := newAttribute(p)
		if err != nil {
			return nil, err
		}
		attrs[p.ID] = a
	}

	if m.Legacy {
		m.resolveLegacy(ordered, attrs)
	} else {
		m.resolveCurrent(ordered, attrs)
	}

	m.BooleanSet = defaultBooleanSet
	if members := m.Sets[BooleanSetID]; len(members) > 0 {
		m.BooleanSet = append([]string(nil), members...)
	}
	for _, p := range ordered {
		if p.Type == PartMissingness {
			m.NullSet = append(m.NullSet, p.ID)
		}
	}

	o.logger.Debug("built dictionary model",
		"version", target.String(),
		"legacy", m.Legacy,
		"parts", len(m.Parts),
		"tables", len(m.Tables),
		"skipped", len(m.Skipped),
		"patches", m.Patches)
	return m, nil
}

// stripRows copies rows, dropping sentinel values except in the key fields.
func stripRows(rows []RawRow, keys ...string) []RawRow {
	out := make([]RawRow, len(rows))
	for i, row := range rows {
		c := make(RawRow, len(row))
	fields:
		for k, v := range row {
			for _, key := range keys {
				if k == key {
					c[k] = strings.TrimSpace(v)
					continue fields
				}
			}
			if core.IsNullSentinel(v) {
				continue
			}
			c[k] = v
		}
		out[i] = c
	}
	return out
}

// filterParts decodes parts and keeps those released at target, in input
// order.
func filterParts(rows []RawRow, target, latest version.Version) ([]*Part, error) {
	seen := make(map[string]bool, len(rows))
	var out []*Part
	for _, row := range rows {
		p, err := decodePart(row)
		if err != nil {
			return nil, err
		}
		if seen[p.ID] {
			return nil, &DuplicatePartError{PartID: p.ID}
		}
		seen[p.ID] = true

		s, err := resolveSpan(p.ID, p.FirstReleased, p.LastUpdated, p.Active(), latest)
		if err != nil {
			return nil, err
		}
		if !s.contains(target) {
			continue
		}
		p.released = s.first
		p.end = s.end
		out = append(out, p)
	}
	return out, nil
}

func (m *Model) filterSets(rows []RawRow, target, latest version.Version) error {
	for _, row := range rows {
		sm, err := decodeSetMember(row)
		if err != nil {
			return err
		}
		s, err := resolveSpan(sm.key(), sm.FirstReleased, sm.LastUpdated, isActive(sm.Status), latest)
		if err != nil {
			return err
		}
		if !s.contains(target) {
			continue
		}
		m.Sets[sm.SetID] = append(m.Sets[sm.SetID], sm.PartID)
	}
	return nil
}

// needsLegacyMapping reports whether a part existed before the current
// lineage and therefore must map to legacy identifiers.
func needsLegacyMapping(p *Part) bool {
	return p.released.Major < version.CurrentMajor && p.Type != PartMissingness
}

func newAttribute(p *Part) (*AttributeModel, error) {
	a := &AttributeModel{ID: p.ID, Part: p, DataType: strings.ToLower(p.DataType)}

	switch a.DataType {
	case "":
	case "varchar", "string", "text":
		a.Type = core.TypeString
	case "categorical":
		a.Type = core.TypeString
		a.Categorical = true
	case "integer", "int":
		a.Type = core.TypeInteger
	case "float", "double", "number":
		a.Type = core.TypeFloat
	case "boolean", "bool":
		a.Type = core.TypeBoolean
	case "datetime", "date", "time":
		a.Type = core.TypeDatetime
	default:
		return nil, &MalformedFieldError{PartID: p.ID, Field: FieldDataType, Value: p.DataType}
	}

	var err error
	if a.MinValue, err = parseFloatField(p, FieldMinValue, p.MinValue); err != nil {
		return nil, err
	}
	if a.MaxValue, err = parseFloatField(p, FieldMaxValue, p.MaxValue); err != nil {
		return nil, err
	}
	if a.MinLength, err = parseIntField(p, FieldMinLength, p.MinLength); err != nil {
		return nil, err
	}
	if a.MaxLength, err = parseIntField(p, FieldMaxLength, p.MaxLength); err != nil {
		return nil, err
	}
	return a, nil
}

func parseFloatField(p *Part, field, raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil, &MalformedFieldError{PartID: p.ID, Field: field, Value: raw, Err: err}
	}
	return &f, nil
}

func parseIntField(p *Part, field, raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil, &MalformedFieldError{PartID: p.ID, Field: field, Value: raw, Err: err}
	}
	if n < 0 {
		return nil, &MalformedFieldError{PartID: p.ID, Field: field, Value: raw,
			Err: fmt.Errorf("negative length %d", n)}
	}
	return &n, nil
}

// withID returns a copy of a for use under another column id.
func (a *AttributeModel) withID(id string, mandatory bool) *AttributeModel {
	c := *a
	c.ID = id
	c.Mandatory = mandatory
	return &c
}

// resolveCurrent joins attributes to tables by the table-id field on the
// attribute part, and categorical attributes to their set by catSetID.
func (m *Model) resolveCurrent(parts []*Part, attrs map[string]*AttributeModel) {
	for _, p := range parts {
		if p.Type != PartTable {
			continue
		}
		t := &TableModel{ID: p.ID, Part: p}
		for _, ap := range parts {
			a, ok := attrs[ap.ID]
			if !ok {
				continue
			}
			if _, member := ap.Field(p.ID); !member {
				continue
			}
			req, _ := ap.Field(p.ID + requiredSuffix)
			t.Attributes = append(t.Attributes, a.withID(a.ID, isMandatory(req)))
		}
		sortAttributes(t.Attributes)
		m.Tables = append(m.Tables, t)
	}

	for _, t := range m.Tables {
		for _, a := range t.Attributes {
			if !a.Categorical || a.Part.CatSetID == "" {
				continue
			}
			cs := &CategorySet{ID: a.Part.CatSetID}
			for _, id := range m.Sets[a.Part.CatSetID] {
				if cp, ok := m.Parts[id]; ok && cp.Type == PartCategory {
					cs.Values = append(cs.Values, id)
					cs.Parts = append(cs.Parts, id)
				}
			}
			a.Categories = cs
		}
	}
	sortTables(m.Tables)
}

func isMandatory(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "mandatory")
}

func sortTables(tables []*TableModel) {
	sort.Slice(tables, func(i, j int) bool { return tables[i].ID < tables[j].ID })
}

func sortAttributes(attrs []*AttributeModel) {
	sort.SliceStable(attrs, func(i, j int) bool { return attrs[i].ID < attrs[j].ID })
}
