package validate

import (
	"fmt"
	"slices"
	"unicode/utf8"

	"github.com/leapstack-labs/odmval/pkg/core"
	"github.com/leapstack-labs/odmval/pkg/schema"
)

// column pairs a column id with its constraints, in a fixed order.
type column struct {
	id     string
	schema *schema.ColumnSchema
}

func columnsOf(t *schema.TableSchema) []column {
	ids := t.ColumnIDs()
	cols := make([]column, 0, len(ids))
	for _, id := range ids {
		cols = append(cols, column{id: id, schema: t.Columns[id]})
	}
	return cols
}

// coerceRow returns the working copy of row and the coercion violations.
// Each cell is converted at most once, by the first coerce constraint of its
// column.
func coerceRow(tc *tableCheck, idx int, row Row) (Row, []Violation) {
	work := row.clone()
	var out []Violation
	for _, col := range tc.columns {
		c, ok := col.schema.Find(schema.KindCoerce)
		if !ok {
			continue
		}
		v, present := row[col.id]
		if !present || core.IsAbsent(v) || matchesType(v, c.Type) {
			continue
		}
		converted, err := coerce(v, c)
		if err != nil {
			out = append(out, tc.violation(ViolationCoerceFailed, idx, row, col.id, v, c))
			continue
		}
		work[col.id] = converted
		vi := tc.violation(ViolationCoerced, idx, row, col.id, v, c)
		vi.Coerced = converted
		out = append(out, vi)
	}
	return work, out
}

// checkRow runs the constraint pass over one working-copy row. Columns
// without constraints are never looked at.
func checkRow(tc *tableCheck, idx int, original, work Row) []Violation {
	var out []Violation
	for _, col := range tc.columns {
		v, present := work[col.id]
		for _, c := range col.schema.Constraints {
			if !holds(c, v, present) {
				out = append(out, tc.violation(ViolationConstraint, idx, original, col.id, v, c))
			}
		}
	}
	return out
}

// holds evaluates one constraint against a cell. An absent value only fails
// presence constraints; every other kind passes on it.
func holds(c schema.Constraint, v any, present bool) bool {
	switch c.Kind {
	case schema.KindRequiredColumn:
		return present
	case schema.KindRequiredValue:
		return !present || !core.IsAbsent(v)
	case schema.KindCoerce:
		return true
	}

	if !present || core.IsAbsent(v) {
		return true
	}

	switch c.Kind {
	case schema.KindType:
		return matchesType(v, c.Type)
	case schema.KindMinValue:
		n, ok := number(v)
		return !ok || n >= *c.Value
	case schema.KindMaxValue:
		n, ok := number(v)
		return !ok || n <= *c.Value
	case schema.KindMinLength:
		s, ok := v.(string)
		return !ok || utf8.RuneCountInString(s) >= *c.Length
	case schema.KindMaxLength:
		s, ok := v.(string)
		return !ok || utf8.RuneCountInString(s) <= *c.Length
	case schema.KindAllowed:
		return slices.Contains(c.Allowed, cellText(v))
	case schema.KindRequiredColumn, schema.KindRequiredValue, schema.KindCoerce:
		return true
	default:
		panic(fmt.Sprintf("validate: unhandled constraint kind %s", c.Kind))
	}
}

// cellText is the text form of a cell for set membership.
func cellText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if s, err := toString(v); err == nil {
		return s.(string)
	}
	return fmt.Sprint(v)
}
