package dictionary

import (
	"github.com/leapstack-labs/odmval/pkg/core"
	"github.com/leapstack-labs/odmval/pkg/version"
)

// BooleanSetID is the set id whose members are the boolean values.
const BooleanSetID = "booleanSet"

// Model is the resolved dictionary for one target version. It is built once
// and never mutated afterwards.
type Model struct {
	// Version is the compilation target.
	Version version.Version

	// Legacy is true when Version belongs to the legacy lineage. Table and
	// column ids are then legacy names.
	Legacy bool

	// Parts holds every part that survived version filtering, by partID.
	Parts map[string]*Part

	// Tables are the resolved table models, sorted by id.
	Tables []*TableModel

	// Sets maps a set id to its member part ids, in row order.
	Sets map[string][]string

	// LegacyMappings maps a partID to the legacy ids it corresponds to.
	LegacyMappings map[string][]string

	// BooleanSet lists the accepted boolean values.
	BooleanSet []string

	// NullSet lists the missingness part ids. It is descriptive model data:
	// absence in datasets is decided by the fixed sentinels of
	// core.IsNullSentinel, and no rule compiles NullSet into a constraint.
	NullSet []string

	// Skipped lists parts dropped from a legacy build for lack of a mapping.
	Skipped []string

	// Patches lists the names of the data patches applied during the build.
	Patches []string
}

// Table returns the table model with the given id.
func (m *Model) Table(id string) (*TableModel, bool) {
	for _, t := range m.Tables {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// TableModel is a table part with its resolved attributes.
type TableModel struct {
	// ID is the table id used in schemas and datasets.
	ID         string
	Part       *Part
	Attributes []*AttributeModel
}

// Attribute returns the attribute with the given column id.
func (t *TableModel) Attribute(id string) (*AttributeModel, bool) {
	for _, a := range t.Attributes {
		if a.ID == id {
			return a, true
		}
	}
	return nil, false
}

// AttributeModel is an attribute resolved against one table.
type AttributeModel struct {
	// ID is the column id used in schemas and datasets.
	ID   string
	Part *Part

	Mandatory   bool
	DataType    string
	Type        core.PrimitiveType
	Categorical bool

	MinValue  *float64
	MaxValue  *float64
	MinLength *int
	MaxLength *int

	// Categories is set for categorical attributes with a resolved set.
	Categories *CategorySet
}

// CategorySet is the ordered list of legal values of a categorical attribute.
type CategorySet struct {
	// ID is the set id (current lineage) or "table.variable" (legacy).
	ID     string
	Values []string
	// Parts are the category partIDs the values came from.
	Parts []string
}
