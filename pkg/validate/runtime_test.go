package validate_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/odmval/internal/testutil"
	"github.com/leapstack-labs/odmval/pkg/core"
	"github.com/leapstack-labs/odmval/pkg/rules"
	"github.com/leapstack-labs/odmval/pkg/schema"
	"github.com/leapstack-labs/odmval/pkg/validate"
	"github.com/leapstack-labs/odmval/pkg/version"
)

func compiled(t *testing.T) *schema.Schema {
	t.Helper()
	return rules.Compile(testutil.Model(t, "2.1.0"), rules.Filter{})
}

func run(t *testing.T, s *schema.Schema, tables ...*validate.Table) *validate.Result {
	t.Helper()
	res, err := validate.Run(context.Background(), s, &validate.Dataset{Tables: tables},
		validate.Options{Logger: testutil.NewTestLogger(t)})
	require.NoError(t, err)
	return res
}

func TestRun_MissingMandatoryColumn(t *testing.T) {
	res := run(t, compiled(t), &validate.Table{ID: "addresses", Rows: []validate.Row{{}}})

	vs := res.Violations()
	require.Len(t, vs, 1)
	assert.Equal(t, validate.ViolationConstraint, vs[0].Kind)
	assert.Equal(t, "addID", vs[0].Column)
	assert.Equal(t, 0, vs[0].Row)
	assert.Equal(t, schema.KindRequiredColumn, vs[0].Constraint.Kind)
	assert.Equal(t, []core.RuleID{core.RuleMissingMandatoryColumn}, vs[0].Rules())
}

func TestRun_CoercionWarning(t *testing.T) {
	rows := []validate.Row{{"collection": "comp3h", "quantity": "567"}}
	res := run(t, compiled(t), &validate.Table{ID: "samples", Origin: validate.OriginSpreadsheet, Rows: rows})

	vs := res.Violations()
	require.Len(t, vs, 1)
	assert.Equal(t, validate.ViolationCoerced, vs[0].Kind)
	assert.Equal(t, core.SeverityWarning, vs[0].Severity())
	assert.Equal(t, "567", vs[0].Value)
	assert.Equal(t, int64(567), vs[0].Coerced)

	tr, ok := res.Table("samples")
	require.True(t, ok)
	assert.Equal(t, int64(567), tr.Coerced[0]["quantity"])
	assert.Equal(t, "567", rows[0]["quantity"], "input rows are not modified")
}

func TestRun_InvalidCategory(t *testing.T) {
	res := run(t, compiled(t), &validate.Table{ID: "samples", Rows: []validate.Row{{"collection": "flow"}}})

	vs := res.Violations()
	require.Len(t, vs, 1)
	assert.Equal(t, schema.KindAllowed, vs[0].Constraint.Kind)
	assert.Equal(t, "flow", vs[0].Value)
	assert.Equal(t, []core.RuleID{core.RuleInvalidCategory}, vs[0].Rules())
}

func TestRun_SentinelAbsence(t *testing.T) {
	s := compiled(t)
	for _, sentinel := range core.NullSentinels() {
		t.Run(fmt.Sprintf("%q", sentinel), func(t *testing.T) {
			res := run(t, s, &validate.Table{ID: "samples", Rows: []validate.Row{{
				"collection": sentinel,
				"quantity":   sentinel,
				"isPooled":   sentinel,
			}}})

			vs := res.Violations()
			require.Len(t, vs, 1, "only the mandatory collection column reports")
			assert.Equal(t, schema.KindRequiredValue, vs[0].Constraint.Kind)
			assert.Equal(t, "collection", vs[0].Column)
		})
	}
}

func TestRun_CoercionFailureAndType(t *testing.T) {
	res := run(t, compiled(t), &validate.Table{ID: "samples", Rows: []validate.Row{{
		"collection": "comp3h",
		"quantity":   "lots",
	}}})

	vs := res.Violations()
	require.Len(t, vs, 2)
	assert.Equal(t, validate.ViolationCoerceFailed, vs[0].Kind)
	assert.Equal(t, validate.ViolationConstraint, vs[1].Kind)
	assert.Equal(t, schema.KindType, vs[1].Constraint.Kind)
	assert.Equal(t, "lots", vs[1].Value)
}

func TestRun_Bounds(t *testing.T) {
	res := run(t, compiled(t), &validate.Table{ID: "samples", Rows: []validate.Row{
		{"collection": "comp3h", "quantity": int64(-1)},
		{"collection": "comp3h", "quantity": int64(1001)},
		{"collection": "comp3h", "notes": "x"},
		{"collection": "comp3h", "notes": "this note is much too long"},
		{"collection": "comp3h", "quantity": int64(10), "notes": "fine"},
	}})

	got := map[int]schema.Kind{}
	for _, v := range res.Violations() {
		got[v.Row] = v.Constraint.Kind
	}
	assert.Equal(t, map[int]schema.Kind{
		0: schema.KindMinValue,
		1: schema.KindMaxValue,
		2: schema.KindMinLength,
		3: schema.KindMaxLength,
	}, got)
}

func TestRun_UnknownColumnsAndTables(t *testing.T) {
	res := run(t, compiled(t),
		&validate.Table{ID: "samples", Rows: []validate.Row{{"collection": "comp3h", "extra": 1}}},
		&validate.Table{ID: "unknownTable", Rows: []validate.Row{{"a": 1}}},
	)

	assert.Empty(t, res.Violations())
	assert.Equal(t, []string{"unknownTable"}, res.Unchecked)
	tr, _ := res.Table("samples")
	assert.Equal(t, 2, tr.Columns)
}

func TestRun_Determinism(t *testing.T) {
	s := compiled(t)
	rows := make([]validate.Row, 0, 250)
	for i := range 250 {
		rows = append(rows, validate.Row{
			"collection": []string{"comp3h", "flow", ""}[i%3],
			"quantity":   fmt.Sprint(i * 7),
			"isPooled":   []string{"TRUE", "no", "false"}[i%3],
		})
	}
	ds := &validate.Dataset{Tables: []*validate.Table{{ID: "samples", Rows: rows}}}

	first, err := validate.Run(context.Background(), s, ds, validate.Options{BatchSize: 16, Workers: 4})
	require.NoError(t, err)
	second, err := validate.Run(context.Background(), s, ds, validate.Options{BatchSize: 16, Workers: 4})
	require.NoError(t, err)
	serial, err := validate.Run(context.Background(), s, ds, validate.Options{BatchSize: 1000, Workers: 1})
	require.NoError(t, err)

	if diff := cmp.Diff(first.Violations(), second.Violations()); diff != "" {
		t.Fatalf("runs differ:\n%s", diff)
	}
	assert.ElementsMatch(t, first.Violations(), serial.Violations())
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := validate.Run(ctx, compiled(t), &validate.Dataset{Tables: []*validate.Table{
		{ID: "samples", Rows: []validate.Row{{}}},
	}}, validate.Options{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRun_InvalidSchema(t *testing.T) {
	s := schema.New(version.MustParse("2.1.0"))
	s.Add("t", "c", schema.Constraint{Kind: schema.KindMinValue})

	_, err := validate.Run(context.Background(), s, &validate.Dataset{}, validate.Options{})
	require.ErrorIs(t, err, schema.ErrInvalid)
}

func TestRun_DatasetVersionDefaultsToSchema(t *testing.T) {
	res := run(t, compiled(t))
	assert.Equal(t, version.MustParse("2.1.0"), res.DatasetVersion)
	assert.Equal(t, version.MustParse("2.1.0"), res.SchemaVersion)
}
