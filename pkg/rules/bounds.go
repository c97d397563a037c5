package rules

import (
	"github.com/leapstack-labs/odmval/pkg/core"
	"github.com/leapstack-labs/odmval/pkg/dictionary"
	"github.com/leapstack-labs/odmval/pkg/schema"
)

// LessThanMinValue checks numeric lower bounds.
var LessThanMinValue = RuleDef{
	ID:          core.RuleLessThanMinValue,
	Description: "A numeric value is below the minimum of its column.",
	Constraints: []schema.Kind{schema.KindMinValue},
	Template:    "Value {value} in column {column} is less than the minimum value of {constraint}",
	Compile: boundRule(core.RuleLessThanMinValue, func(a *dictionary.AttributeModel) (schema.Constraint, bool) {
		if a.MinValue == nil {
			return schema.Constraint{}, false
		}
		return schema.MinValue(*a.MinValue), true
	}),
}

// GreaterThanMaxValue checks numeric upper bounds.
var GreaterThanMaxValue = RuleDef{
	ID:          core.RuleGreaterThanMaxValue,
	Description: "A numeric value is above the maximum of its column.",
	Constraints: []schema.Kind{schema.KindMaxValue},
	Template:    "Value {value} in column {column} is greater than the maximum value of {constraint}",
	Compile: boundRule(core.RuleGreaterThanMaxValue, func(a *dictionary.AttributeModel) (schema.Constraint, bool) {
		if a.MaxValue == nil {
			return schema.Constraint{}, false
		}
		return schema.MaxValue(*a.MaxValue), true
	}),
}

// LessThanMinLength checks the minimum length of text values.
var LessThanMinLength = RuleDef{
	ID:          core.RuleLessThanMinLength,
	Description: "A text value is shorter than the minimum length of its column.",
	Constraints: []schema.Kind{schema.KindMinLength},
	Template:    "Value {value} in column {column} is shorter than the minimum length of {constraint}",
	Compile: boundRule(core.RuleLessThanMinLength, func(a *dictionary.AttributeModel) (schema.Constraint, bool) {
		if a.MinLength == nil {
			return schema.Constraint{}, false
		}
		return schema.MinLength(*a.MinLength), true
	}),
}

// GreaterThanMaxLength checks the maximum length of text values.
var GreaterThanMaxLength = RuleDef{
	ID:          core.RuleGreaterThanMaxLength,
	Description: "A text value is longer than the maximum length of its column.",
	Constraints: []schema.Kind{schema.KindMaxLength},
	Template:    "Value {value} in column {column} is longer than the maximum length of {constraint}",
	Compile: boundRule(core.RuleGreaterThanMaxLength, func(a *dictionary.AttributeModel) (schema.Constraint, bool) {
		if a.MaxLength == nil {
			return schema.Constraint{}, false
		}
		return schema.MaxLength(*a.MaxLength), true
	}),
}

func boundRule(id core.RuleID, bound func(*dictionary.AttributeModel) (schema.Constraint, bool)) CompileFunc {
	return func(m *dictionary.Model) *schema.Schema {
		s := schema.New(m.Version)
		eachAttribute(m, func(t *dictionary.TableModel, a *dictionary.AttributeModel) {
			if c, ok := bound(a); ok {
				s.Add(t.ID, a.ID, c.From(id, a.Part.ID))
			}
		})
		return s
	}
}
