package rules

import (
	"github.com/leapstack-labs/odmval/pkg/core"
	"github.com/leapstack-labs/odmval/pkg/dictionary"
	"github.com/leapstack-labs/odmval/pkg/schema"
)

// ruleset is indexed by core.RuleID.
var ruleset = [...]RuleDef{
	MissingMandatoryColumn,
	MissingValuesFound,
	InvalidType,
	LessThanMinValue,
	GreaterThanMaxValue,
	LessThanMinLength,
	GreaterThanMaxLength,
	InvalidCategory,
}

func init() {
	if len(ruleset) != len(core.AllRuleIDs()) {
		panic("rules: ruleset does not cover every rule id")
	}
	for i, r := range ruleset {
		if r.ID != core.RuleID(i) {
			panic("rules: ruleset out of declaration order at " + r.Name())
		}
	}
}

// All returns the ruleset in declaration order.
func All() []RuleDef {
	out := make([]RuleDef, len(ruleset))
	copy(out, ruleset[:])
	return out
}

// Get returns the rule with the given id.
func Get(id core.RuleID) (RuleDef, bool) {
	if !id.Valid() {
		return RuleDef{}, false
	}
	return ruleset[id], true
}

// Compile builds the schema of a model from every rule the filter allows.
// Coerce constraints are kept for filtered rules too: later checks depend
// on converted values, and the report drops their diagnostics by the same
// filter. Every table of the model appears in the schema, even with no
// constraints.
func Compile(m *dictionary.Model, f Filter) *schema.Schema {
	out := schema.New(m.Version)
	for _, t := range m.Tables {
		out.Table(t.ID)
	}
	for _, r := range ruleset {
		frag := r.Compile(m)
		if !f.Allows(r.ID) {
			frag = frag.Select(isCoerce)
		}
		out = schema.Merge(out, frag)
	}
	return out
}

func isCoerce(c schema.Constraint) bool {
	return c.Kind == schema.KindCoerce
}

// eachAttribute calls fn for every (table, attribute) pair of the model.
func eachAttribute(m *dictionary.Model, fn func(t *dictionary.TableModel, a *dictionary.AttributeModel)) {
	for _, t := range m.Tables {
		for _, a := range t.Attributes {
			fn(t, a)
		}
	}
}
