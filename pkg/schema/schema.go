package schema

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/leapstack-labs/odmval/pkg/core"
	"github.com/leapstack-labs/odmval/pkg/version"
)

// ErrInvalid is wrapped by Validate errors.
var ErrInvalid = errors.New("invalid schema")

// ErrVersionMismatch is returned when merging schemas of different versions.
var ErrVersionMismatch = errors.New("schemas have different versions")

// Provenance ties a constraint to the rule and dictionary parts behind it.
type Provenance struct {
	Rule  core.RuleID `json:"rule" yaml:"rule"`
	Parts []string    `json:"parts,omitempty" yaml:"parts,omitempty"`
}

func (p Provenance) equal(o Provenance) bool {
	return p.Rule == o.Rule && slices.Equal(p.Parts, o.Parts)
}

// Constraint is one check on a column. Which parameter fields are used
// depends on Kind.
type Constraint struct {
	Kind Kind `json:"kind" yaml:"kind"`

	// Type is the target of KindCoerce and KindType.
	Type core.PrimitiveType `json:"type,omitempty" yaml:"type,omitempty"`
	// Value is the bound of KindMinValue and KindMaxValue.
	Value *float64 `json:"value,omitempty" yaml:"value,omitempty"`
	// Length is the bound of KindMinLength and KindMaxLength.
	Length *int `json:"length,omitempty" yaml:"length,omitempty"`
	// Allowed is the value set of KindAllowed. For a boolean KindCoerce it
	// lists the accepted boolean spellings.
	Allowed []string `json:"allowed,omitempty" yaml:"allowed,omitempty"`

	Provenance []Provenance `json:"provenance" yaml:"provenance"`
}

// Constructors for each kind. Provenance is attached by the caller.

func RequiredColumn() Constraint { return Constraint{Kind: KindRequiredColumn} }
func RequiredValue() Constraint  { return Constraint{Kind: KindRequiredValue} }

func Coerce(t core.PrimitiveType, booleans []string) Constraint {
	c := Constraint{Kind: KindCoerce, Type: t}
	if t == core.TypeBoolean {
		c.Allowed = slices.Clone(booleans)
	}
	return c
}

func Type(t core.PrimitiveType) Constraint { return Constraint{Kind: KindType, Type: t} }
func MinValue(v float64) Constraint        { return Constraint{Kind: KindMinValue, Value: &v} }
func MaxValue(v float64) Constraint        { return Constraint{Kind: KindMaxValue, Value: &v} }
func MinLength(n int) Constraint           { return Constraint{Kind: KindMinLength, Length: &n} }
func MaxLength(n int) Constraint           { return Constraint{Kind: KindMaxLength, Length: &n} }

func Allowed(values []string) Constraint {
	return Constraint{Kind: KindAllowed, Allowed: slices.Clone(values)}
}

// From returns c with a provenance entry for rule and parts appended.
func (c Constraint) From(rule core.RuleID, parts ...string) Constraint {
	c.Provenance = append(slices.Clone(c.Provenance), Provenance{Rule: rule, Parts: slices.Clone(parts)})
	return c
}

// Rules returns the distinct rules in the provenance, in order.
func (c Constraint) Rules() []core.RuleID {
	var out []core.RuleID
	for _, p := range c.Provenance {
		if !slices.Contains(out, p.Rule) {
			out = append(out, p.Rule)
		}
	}
	return out
}

// Parts returns the distinct dictionary parts in the provenance, in order.
func (c Constraint) Parts() []string {
	var out []string
	for _, p := range c.Provenance {
		for _, id := range p.Parts {
			if !slices.Contains(out, id) {
				out = append(out, id)
			}
		}
	}
	return out
}

func (c Constraint) sameParams(o Constraint) bool {
	return c.Kind == o.Kind &&
		c.Type == o.Type &&
		eqPtr(c.Value, o.Value) &&
		eqPtr(c.Length, o.Length) &&
		slices.Equal(c.Allowed, o.Allowed)
}

func eqPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (c Constraint) clone() Constraint {
	out := c
	if c.Value != nil {
		v := *c.Value
		out.Value = &v
	}
	if c.Length != nil {
		n := *c.Length
		out.Length = &n
	}
	out.Allowed = slices.Clone(c.Allowed)
	out.Provenance = make([]Provenance, len(c.Provenance))
	for i, p := range c.Provenance {
		out.Provenance[i] = Provenance{Rule: p.Rule, Parts: slices.Clone(p.Parts)}
	}
	return out
}

// validate checks that the parameters required by the kind are set.
func (c Constraint) validate() error {
	switch c.Kind {
	case KindRequiredColumn, KindRequiredValue:
		return nil
	case KindCoerce, KindType:
		if !c.Type.Valid() {
			return fmt.Errorf("%s: unknown type %q", c.Kind, c.Type)
		}
	case KindMinValue, KindMaxValue:
		if c.Value == nil {
			return fmt.Errorf("%s: missing value", c.Kind)
		}
	case KindMinLength, KindMaxLength:
		if c.Length == nil {
			return fmt.Errorf("%s: missing length", c.Kind)
		}
	case KindAllowed:
		if len(c.Allowed) == 0 {
			return fmt.Errorf("%s: empty value set", c.Kind)
		}
	default:
		return fmt.Errorf("unknown constraint kind %d", int(c.Kind))
	}
	return nil
}

// ColumnSchema holds the constraints of one column, in compile order.
type ColumnSchema struct {
	Constraints []Constraint `json:"constraints" yaml:"constraints"`
}

// Find returns the first constraint of the given kind.
func (c *ColumnSchema) Find(k Kind) (Constraint, bool) {
	for _, con := range c.Constraints {
		if con.Kind == k {
			return con, true
		}
	}
	return Constraint{}, false
}

// add merges con into the column: identical parameters accumulate
// provenance, anything else is appended.
func (c *ColumnSchema) add(con Constraint) {
	for i := range c.Constraints {
		existing := &c.Constraints[i]
		if !existing.sameParams(con) {
			continue
		}
		for _, p := range con.Provenance {
			if !slices.ContainsFunc(existing.Provenance, p.equal) {
				existing.Provenance = append(existing.Provenance, Provenance{Rule: p.Rule, Parts: slices.Clone(p.Parts)})
			}
		}
		return
	}
	c.Constraints = append(c.Constraints, con.clone())
}

// RowSpec describes the shape of each row of a table.
type RowSpec struct {
	// Shape is always "object": rows are column-keyed maps.
	Shape string `json:"shape" yaml:"shape"`
	// AdditionalColumns allows columns without constraints.
	AdditionalColumns bool `json:"additional_columns" yaml:"additional_columns"`
}

// DefaultRowSpec is the row shape of every compiled table.
func DefaultRowSpec() RowSpec {
	return RowSpec{Shape: "object", AdditionalColumns: true}
}

// TableSchema holds the row shape and column constraints of one table.
type TableSchema struct {
	Rows    RowSpec                  `json:"rows" yaml:"rows"`
	Columns map[string]*ColumnSchema `json:"columns" yaml:"columns"`
}

// ColumnIDs returns the constrained column ids, sorted.
func (t *TableSchema) ColumnIDs() []string {
	ids := make([]string, 0, len(t.Columns))
	for id := range t.Columns {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Schema is a compiled validation schema, or a fragment of one produced by
// a single rule.
type Schema struct {
	Version version.Version         `json:"version" yaml:"version"`
	Tables  map[string]*TableSchema `json:"tables" yaml:"tables"`
}

// New returns an empty schema for v.
func New(v version.Version) *Schema {
	return &Schema{Version: v, Tables: make(map[string]*TableSchema)}
}

// Table returns the schema of a table, creating it if needed.
func (s *Schema) Table(id string) *TableSchema {
	t, ok := s.Tables[id]
	if !ok {
		t = &TableSchema{Rows: DefaultRowSpec(), Columns: make(map[string]*ColumnSchema)}
		s.Tables[id] = t
	}
	return t
}

// Add merges a constraint into table.column.
func (s *Schema) Add(table, column string, c Constraint) {
	t := s.Table(table)
	col, ok := t.Columns[column]
	if !ok {
		col = &ColumnSchema{}
		t.Columns[column] = col
	}
	col.add(c)
}

// Column returns the schema of table.column.
func (s *Schema) Column(table, column string) (*ColumnSchema, bool) {
	t, ok := s.Tables[table]
	if !ok {
		return nil, false
	}
	c, ok := t.Columns[column]
	return c, ok
}

// TableIDs returns the table ids, sorted.
func (s *Schema) TableIDs() []string {
	ids := make([]string, 0, len(s.Tables))
	for id := range s.Tables {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Merge combines two schemas into a new one. Constraints of b are added
// after those of a; constraints with equal parameters accumulate provenance
// and are never overwritten. The version of a wins unless it is zero.
// Neither input is modified.
func Merge(a, b *Schema) *Schema {
	v := a.Version
	if v.IsZero() {
		v = b.Version
	}
	out := New(v)
	for _, src := range []*Schema{a, b} {
		for _, tid := range src.TableIDs() {
			t := src.Tables[tid]
			if _, ok := out.Tables[tid]; !ok {
				out.Table(tid).Rows = t.Rows
			}
			for _, cid := range t.ColumnIDs() {
				for _, c := range t.Columns[cid].Constraints {
					out.Add(tid, cid, c)
				}
			}
		}
	}
	return out
}

// MergeSameVersion merges b into a like Merge, but fails with
// ErrVersionMismatch when both schemas carry different versions.
func MergeSameVersion(a, b *Schema) (*Schema, error) {
	if !a.Version.IsZero() && !b.Version.IsZero() && a.Version != b.Version {
		return nil, fmt.Errorf("%w: %s and %s", ErrVersionMismatch, a.Version, b.Version)
	}
	return Merge(a, b), nil
}

// Select returns a copy of s holding only the constraints keep accepts.
// Every table of s is kept, even when none of its constraints are.
func (s *Schema) Select(keep func(Constraint) bool) *Schema {
	out := New(s.Version)
	for _, tid := range s.TableIDs() {
		t := s.Tables[tid]
		out.Table(tid).Rows = t.Rows
		for _, cid := range t.ColumnIDs() {
			for _, c := range t.Columns[cid].Constraints {
				if keep(c) {
					out.Add(tid, cid, c)
				}
			}
		}
	}
	return out
}

// Validate checks every constraint for well-formed parameters.
func (s *Schema) Validate() error {
	for _, tid := range s.TableIDs() {
		t := s.Tables[tid]
		for _, cid := range t.ColumnIDs() {
			for _, c := range t.Columns[cid].Constraints {
				if err := c.validate(); err != nil {
					return fmt.Errorf("%w: %s.%s: %w", ErrInvalid, tid, cid, err)
				}
				for _, p := range c.Provenance {
					if !p.Rule.Valid() {
						return fmt.Errorf("%w: %s.%s: unknown rule %d", ErrInvalid, tid, cid, int(p.Rule))
					}
				}
			}
		}
	}
	return nil
}
