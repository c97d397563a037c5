package rules

import (
	"github.com/leapstack-labs/odmval/pkg/core"
	"github.com/leapstack-labs/odmval/pkg/dictionary"
	"github.com/leapstack-labs/odmval/pkg/schema"
)

// InvalidCategory restricts categorical columns to their category set.
var InvalidCategory = RuleDef{
	ID:          core.RuleInvalidCategory,
	Description: "A categorical value is not in the category set of its column.",
	Constraints: []schema.Kind{schema.KindAllowed},
	Template:    "Value {value} in column {column} is not one of the allowed categories: {allowed}",
	Compile:     compileInvalidCategory,
}

func compileInvalidCategory(m *dictionary.Model) *schema.Schema {
	s := schema.New(m.Version)
	eachAttribute(m, func(t *dictionary.TableModel, a *dictionary.AttributeModel) {
		if !a.Categorical || a.Categories == nil || len(a.Categories.Values) == 0 {
			return
		}
		parts := append([]string{a.Part.ID}, a.Categories.Parts...)
		s.Add(t.ID, a.ID, schema.Allowed(a.Categories.Values).From(core.RuleInvalidCategory, parts...))
	})
	return s
}
