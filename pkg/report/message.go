package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/odmval/pkg/core"
	"github.com/leapstack-labs/odmval/pkg/rules"
	"github.com/leapstack-labs/odmval/pkg/schema"
	"github.com/leapstack-labs/odmval/pkg/validate"
)

// renderMessage fills the rule template and prefixes metadata for the
// verbosity level.
func renderMessage(v validate.Violation, rule rules.RuleDef, row int, verbosity Verbosity) string {
	tmpl := rule.Template
	if v.Severity() == core.SeverityWarning && rule.WarnTemplate != "" {
		tmpl = rule.WarnTemplate
	}
	msg := strings.NewReplacer(
		"{table}", v.Table,
		"{column}", v.Column,
		"{rule}", rule.Name(),
		"{row}", strconv.Itoa(row),
		"{value}", formatValue(v.Value),
		"{value_type}", core.TypeName(v.Value),
		"{constraint}", constraintText(v.Constraint),
		"{allowed}", strings.Join(v.Constraint.Allowed, ", "),
		"{target_type}", string(v.Constraint.Type),
	).Replace(tmpl)

	location := v.Table
	if v.Column != "" {
		location += "." + v.Column
	}
	switch verbosity {
	case VerbosityMessage:
		return msg
	case VerbosityShort:
		return fmt.Sprintf("[%s] %s row %d", rule.Name(), location, row)
	case VerbosityLong:
		return fmt.Sprintf("[%s] %s row %d (%s; constraint %s; parts %s): %s",
			rule.Name(), location, row, strings.TrimSuffix(rule.Description, "."),
			v.Constraint.Kind, strings.Join(v.Constraint.Parts(), ", "), msg)
	default:
		return fmt.Sprintf("[%s] %s row %d: %s", rule.Name(), location, row, msg)
	}
}

func formatValue(v any) string {
	if v == nil {
		return "null"
	}
	if s, ok := v.(string); ok {
		return strconv.Quote(s)
	}
	return fmt.Sprint(v)
}

// constraintText is the parameter of a constraint as shown in messages.
func constraintText(c schema.Constraint) string {
	switch c.Kind {
	case schema.KindMinValue, schema.KindMaxValue:
		if c.Value != nil {
			return strconv.FormatFloat(*c.Value, 'f', -1, 64)
		}
	case schema.KindMinLength, schema.KindMaxLength:
		if c.Length != nil {
			return strconv.Itoa(*c.Length)
		}
	case schema.KindCoerce, schema.KindType:
		return string(c.Type)
	case schema.KindAllowed:
		return strings.Join(c.Allowed, ", ")
	case schema.KindRequiredColumn, schema.KindRequiredValue:
	}
	return c.Kind.String()
}
