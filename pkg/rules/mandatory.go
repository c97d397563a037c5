package rules

import (
	"github.com/leapstack-labs/odmval/pkg/core"
	"github.com/leapstack-labs/odmval/pkg/dictionary"
	"github.com/leapstack-labs/odmval/pkg/schema"
)

// MissingMandatoryColumn requires mandatory columns to be present.
var MissingMandatoryColumn = RuleDef{
	ID:           core.RuleMissingMandatoryColumn,
	Description:  "A column marked mandatory for its table is missing.",
	ColumnScoped: true,
	Constraints:  []schema.Kind{schema.KindRequiredColumn},
	Template:     "Missing mandatory column {column}",
	Compile:      compileMissingMandatoryColumn,
}

func compileMissingMandatoryColumn(m *dictionary.Model) *schema.Schema {
	s := schema.New(m.Version)
	eachAttribute(m, func(t *dictionary.TableModel, a *dictionary.AttributeModel) {
		if a.Mandatory {
			s.Add(t.ID, a.ID, schema.RequiredColumn().From(core.RuleMissingMandatoryColumn, a.Part.ID, t.Part.ID))
		}
	})
	return s
}

// MissingValuesFound requires mandatory columns to hold a value.
var MissingValuesFound = RuleDef{
	ID:          core.RuleMissingValuesFound,
	Description: "A mandatory column holds a missing value.",
	Constraints: []schema.Kind{schema.KindRequiredValue},
	Template:    "Value in mandatory column {column} is missing",
	Compile:     compileMissingValuesFound,
}

func compileMissingValuesFound(m *dictionary.Model) *schema.Schema {
	s := schema.New(m.Version)
	eachAttribute(m, func(t *dictionary.TableModel, a *dictionary.AttributeModel) {
		if a.Mandatory {
			s.Add(t.ID, a.ID, schema.RequiredValue().From(core.RuleMissingValuesFound, a.Part.ID, t.Part.ID))
		}
	})
	return s
}
