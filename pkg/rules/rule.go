package rules

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/odmval/pkg/core"
	"github.com/leapstack-labs/odmval/pkg/dictionary"
	"github.com/leapstack-labs/odmval/pkg/schema"
)

// CompileFunc produces the schema fragment of one rule. It must not fail on
// a well-formed model; an empty fragment is valid.
type CompileFunc func(m *dictionary.Model) *schema.Schema

// RuleDef is a data-driven rule definition.
type RuleDef struct {
	ID          core.RuleID
	Description string

	// EmitsWarnings is set for rules whose constraints can pass with a
	// warning (a value accepted after coercion).
	EmitsWarnings bool

	// ColumnScoped rules describe the table structure rather than a cell,
	// so they fire identically on every row.
	ColumnScoped bool

	// Constraints lists the kinds of constraint the rule emits.
	Constraints []schema.Kind

	// Template is the error message; WarnTemplate the warning message.
	// Placeholders: {table} {column} {rule} {row} {value} {value_type}
	// {constraint} {allowed} {target_type}.
	Template     string
	WarnTemplate string

	Compile CompileFunc
}

// Name returns the serialized rule id.
func (r RuleDef) Name() string {
	return r.ID.String()
}

// Title returns the rule id as words, e.g. "Invalid Category".
func (r RuleDef) Title() string {
	return cases.Title(language.English).String(strings.ReplaceAll(r.Name(), "_", " "))
}

// Info returns the rule metadata for tooling.
func (r RuleDef) Info() core.RuleInfo {
	kinds := make([]string, 0, len(r.Constraints))
	for _, k := range r.Constraints {
		kinds = append(kinds, k.String())
	}
	return core.RuleInfo{
		ID:            r.Name(),
		Description:   r.Description,
		Severity:      core.SeverityError,
		ColumnScoped:  r.ColumnScoped,
		EmitsWarnings: r.EmitsWarnings,
		Constraints:   kinds,
		Template:      r.Template,
		WarnTemplate:  r.WarnTemplate,
	}
}

// Filter restricts the active rules. An empty whitelist allows every rule;
// the blacklist always wins.
type Filter struct {
	Whitelist []core.RuleID
	Blacklist []core.RuleID
}

// Allows reports whether the rule passes the filter.
func (f Filter) Allows(id core.RuleID) bool {
	if slices.Contains(f.Blacklist, id) {
		return false
	}
	return len(f.Whitelist) == 0 || slices.Contains(f.Whitelist, id)
}

// ParseFilter builds a filter from rule names.
func ParseFilter(whitelist, blacklist []string) (Filter, error) {
	var f Filter
	var err error
	if f.Whitelist, err = parseIDs(whitelist); err != nil {
		return Filter{}, fmt.Errorf("whitelist: %w", err)
	}
	if f.Blacklist, err = parseIDs(blacklist); err != nil {
		return Filter{}, fmt.Errorf("blacklist: %w", err)
	}
	return f, nil
}

func parseIDs(names []string) ([]core.RuleID, error) {
	var ids []core.RuleID
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		id, ok := core.ParseRuleID(n)
		if !ok {
			return nil, fmt.Errorf("unknown rule %q", n)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
