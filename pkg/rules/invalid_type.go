package rules

import (
	"github.com/leapstack-labs/odmval/pkg/core"
	"github.com/leapstack-labs/odmval/pkg/dictionary"
	"github.com/leapstack-labs/odmval/pkg/schema"
)

// InvalidType coerces typed columns and checks the result. A value that
// converts is accepted with a warning; one that does not is an error.
var InvalidType = RuleDef{
	ID:            core.RuleInvalidType,
	Description:   "A value does not match the data type of its column.",
	EmitsWarnings: true,
	Constraints:   []schema.Kind{schema.KindCoerce, schema.KindType},
	Template:      "Value {value} in column {column} has type {value_type} but should be of type {target_type}",
	WarnTemplate:  "Value {value} in column {column} has type {value_type} and was coerced to type {target_type}",
	Compile:       compileInvalidType,
}

func compileInvalidType(m *dictionary.Model) *schema.Schema {
	s := schema.New(m.Version)
	eachAttribute(m, func(t *dictionary.TableModel, a *dictionary.AttributeModel) {
		if a.Type == "" {
			return
		}
		s.Add(t.ID, a.ID, schema.Coerce(a.Type, m.BooleanSet).From(core.RuleInvalidType, a.Part.ID))
		s.Add(t.ID, a.ID, schema.Type(a.Type).From(core.RuleInvalidType, a.Part.ID))
	})
	return s
}
