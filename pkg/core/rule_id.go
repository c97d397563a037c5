package core

import "fmt"

// RuleID identifies one rule of the fixed ruleset. The numeric order is the
// ruleset declaration order; names only appear at serialization boundaries.
type RuleID int

// Rule identifiers, in declaration order.
const (
	RuleMissingMandatoryColumn RuleID = iota
	RuleMissingValuesFound
	RuleInvalidType
	RuleLessThanMinValue
	RuleGreaterThanMaxValue
	RuleLessThanMinLength
	RuleGreaterThanMaxLength
	RuleInvalidCategory

	ruleCount
)

var ruleNames = [ruleCount]string{
	RuleMissingMandatoryColumn: "missing_mandatory_column",
	RuleMissingValuesFound:     "missing_values_found",
	RuleInvalidType:            "invalid_type",
	RuleLessThanMinValue:       "less_than_min_value",
	RuleGreaterThanMaxValue:    "greater_than_max_value",
	RuleLessThanMinLength:      "less_than_min_length",
	RuleGreaterThanMaxLength:   "greater_than_max_length",
	RuleInvalidCategory:        "invalid_category",
}

// AllRuleIDs returns every rule identifier in declaration order.
func AllRuleIDs() []RuleID {
	ids := make([]RuleID, 0, ruleCount)
	for id := RuleID(0); id < ruleCount; id++ {
		ids = append(ids, id)
	}
	return ids
}

// Valid reports whether id names a declared rule.
func (id RuleID) Valid() bool {
	return id >= 0 && id < ruleCount
}

// String returns the serialized rule name, e.g. "invalid_category".
func (id RuleID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("rule(%d)", int(id))
	}
	return ruleNames[id]
}

// ParseRuleID converts a serialized rule name to its identifier.
func ParseRuleID(name string) (RuleID, bool) {
	for id, n := range ruleNames {
		if n == name {
			return RuleID(id), true
		}
	}
	return 0, false
}

// MarshalText implements encoding.TextMarshaler.
func (id RuleID) MarshalText() ([]byte, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("invalid rule id %d", int(id))
	}
	return []byte(ruleNames[id]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *RuleID) UnmarshalText(b []byte) error {
	v, ok := ParseRuleID(string(b))
	if !ok {
		return fmt.Errorf("unknown rule %q", string(b))
	}
	*id = v
	return nil
}
