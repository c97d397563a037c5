package schema_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/odmval/pkg/core"
	"github.com/leapstack-labs/odmval/pkg/schema"
	"github.com/leapstack-labs/odmval/pkg/version"
)

func sample() *schema.Schema {
	s := schema.New(version.MustParse("2.1.0"))
	s.Add("samples", "collection", schema.RequiredColumn().From(core.RuleMissingMandatoryColumn, "collection", "samples"))
	s.Add("samples", "collection", schema.Allowed([]string{"comp3h", "comp8h", "flowPr"}).From(core.RuleInvalidCategory, "collection", "comp3h", "comp8h", "flowPr"))
	s.Add("samples", "quantity", schema.Coerce(core.TypeInteger, nil).From(core.RuleInvalidType, "quantity"))
	s.Add("samples", "quantity", schema.MinValue(0.5).From(core.RuleLessThanMinValue, "quantity"))
	s.Add("samples", "isPooled", schema.Coerce(core.TypeBoolean, []string{"true", "false"}).From(core.RuleInvalidType, "isPooled"))
	s.Add("samples", "notes", schema.MaxLength(20).From(core.RuleGreaterThanMaxLength, "notes"))
	s.Table("addresses")
	return s
}

func TestRoundTrip(t *testing.T) {
	for _, format := range []core.Format{core.FormatJSON, core.FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			want := sample()
			data, err := schema.Marshal(want, format)
			require.NoError(t, err)

			got, err := schema.Unmarshal(data, format)
			require.NoError(t, err)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}

			again, err := schema.Marshal(got, format)
			require.NoError(t, err)
			assert.Equal(t, string(data), string(again))
		})
	}
}

func TestEncodeUsesNames(t *testing.T) {
	data, err := schema.Marshal(sample(), core.FormatJSON)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `"kind": "allowed"`)
	assert.Contains(t, out, `"rule": "invalid_category"`)
	assert.Contains(t, out, `"version": "2.1.0"`)

	var buf bytes.Buffer
	require.NoError(t, schema.Encode(&buf, sample(), core.FormatYAML))
	assert.Contains(t, buf.String(), "kind: required_column")
}

func TestAdd_AccumulatesProvenance(t *testing.T) {
	s := schema.New(version.MustParse("2.1.0"))
	s.Add("t", "c", schema.RequiredValue().From(core.RuleMissingValuesFound, "a"))
	s.Add("t", "c", schema.RequiredValue().From(core.RuleMissingMandatoryColumn, "b"))
	s.Add("t", "c", schema.RequiredValue().From(core.RuleMissingValuesFound, "a"))

	col, ok := s.Column("t", "c")
	require.True(t, ok)
	require.Len(t, col.Constraints, 1)
	assert.Equal(t, []schema.Provenance{
		{Rule: core.RuleMissingValuesFound, Parts: []string{"a"}},
		{Rule: core.RuleMissingMandatoryColumn, Parts: []string{"b"}},
	}, col.Constraints[0].Provenance)
	assert.Equal(t, []string{"a", "b"}, col.Constraints[0].Parts())
}

func TestAdd_DistinctParamsAreKept(t *testing.T) {
	s := schema.New(version.MustParse("2.1.0"))
	s.Add("t", "c", schema.MinValue(1).From(core.RuleLessThanMinValue, "a"))
	s.Add("t", "c", schema.MinValue(2).From(core.RuleLessThanMinValue, "b"))

	col, _ := s.Column("t", "c")
	assert.Len(t, col.Constraints, 2)
}

func TestMerge(t *testing.T) {
	a := schema.New(version.MustParse("2.1.0"))
	a.Add("t", "c", schema.Type(core.TypeFloat).From(core.RuleInvalidType, "c"))
	b := schema.New(version.Version{})
	b.Add("t", "c", schema.Type(core.TypeFloat).From(core.RuleLessThanMinValue, "c"))
	b.Add("u", "d", schema.RequiredColumn().From(core.RuleMissingMandatoryColumn, "d"))

	merged := schema.Merge(a, b)

	assert.Equal(t, version.MustParse("2.1.0"), merged.Version)
	assert.Equal(t, []string{"t", "u"}, merged.TableIDs())
	col, _ := merged.Column("t", "c")
	require.Len(t, col.Constraints, 1)
	assert.Equal(t,
		[]core.RuleID{core.RuleInvalidType, core.RuleLessThanMinValue},
		col.Constraints[0].Rules())

	// Inputs are untouched.
	orig, _ := a.Column("t", "c")
	assert.Len(t, orig.Constraints[0].Provenance, 1)
	assert.NotContains(t, a.Tables, "u")
}

func TestMerge_Associative(t *testing.T) {
	x := schema.New(version.MustParse("2.1.0"))
	x.Add("t", "c", schema.RequiredColumn().From(core.RuleMissingMandatoryColumn, "c"))
	y := schema.New(version.MustParse("2.1.0"))
	y.Add("t", "c", schema.RequiredColumn().From(core.RuleMissingValuesFound, "c"))
	z := schema.New(version.MustParse("2.1.0"))
	z.Add("t", "e", schema.MaxLength(3).From(core.RuleGreaterThanMaxLength, "e"))

	left := schema.Merge(schema.Merge(x, y), z)
	right := schema.Merge(x, schema.Merge(y, z))
	assert.Empty(t, cmp.Diff(left, right))
}

func TestMergeSameVersion(t *testing.T) {
	a := schema.New(version.MustParse("2.1.0"))
	a.Add("t", "c", schema.RequiredColumn().From(core.RuleMissingMandatoryColumn, "c"))

	tests := []struct {
		name    string
		other   version.Version
		wantErr bool
	}{
		{name: "same version", other: version.MustParse("2.1.0")},
		{name: "unversioned fragment", other: version.Version{}},
		{name: "other version", other: version.MustParse("2.0.0"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := schema.New(tt.other)
			b.Add("u", "d", schema.MaxLength(3).From(core.RuleGreaterThanMaxLength, "d"))

			merged, err := schema.MergeSameVersion(a, b)
			if tt.wantErr {
				assert.ErrorIs(t, err, schema.ErrVersionMismatch)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, version.MustParse("2.1.0"), merged.Version)
			assert.Equal(t, []string{"t", "u"}, merged.TableIDs())
		})
	}
}

func TestSelect(t *testing.T) {
	s := schema.New(version.MustParse("2.1.0"))
	s.Add("t", "c", schema.Coerce(core.TypeInteger, nil).From(core.RuleInvalidType, "c"))
	s.Add("t", "c", schema.Type(core.TypeInteger).From(core.RuleInvalidType, "c"))
	s.Add("u", "d", schema.MaxLength(3).From(core.RuleGreaterThanMaxLength, "d"))

	got := s.Select(func(c schema.Constraint) bool { return c.Kind == schema.KindCoerce })

	assert.Equal(t, []string{"t", "u"}, got.TableIDs(), "tables are kept")
	col, ok := got.Column("t", "c")
	require.True(t, ok)
	require.Len(t, col.Constraints, 1)
	assert.Equal(t, schema.KindCoerce, col.Constraints[0].Kind)
	assert.Empty(t, got.Tables["u"].Columns)

	orig, _ := s.Column("t", "c")
	assert.Len(t, orig.Constraints, 2)
}

func TestUnmarshal_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "unknown kind",
			doc:  `{"version":"2.1.0","tables":{"t":{"columns":{"c":{"constraints":[{"kind":"regex","provenance":[]}]}}}}}`,
		},
		{
			name: "bound without value",
			doc:  `{"version":"2.1.0","tables":{"t":{"columns":{"c":{"constraints":[{"kind":"min_value","provenance":[]}]}}}}}`,
		},
		{
			name: "unknown rule",
			doc:  `{"version":"2.1.0","tables":{"t":{"columns":{"c":{"constraints":[{"kind":"required_column","provenance":[{"rule":"no_such_rule"}]}]}}}}}`,
		},
		{
			name: "bad version",
			doc:  `{"version":"2.1","tables":{}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := schema.Decode(strings.NewReader(tt.doc), core.FormatJSON)
			assert.Error(t, err)
		})
	}

	_, err := schema.Unmarshal([]byte(`{"version":"2.1.0","tables":{"t":{"columns":{"c":{"constraints":[{"kind":"allowed","provenance":[]}]}}}}}`), core.FormatJSON)
	require.ErrorIs(t, err, schema.ErrInvalid)
}

func TestKindText(t *testing.T) {
	for k := schema.KindRequiredColumn; k <= schema.KindAllowed; k++ {
		b, err := k.MarshalText()
		require.NoError(t, err)
		var got schema.Kind
		require.NoError(t, got.UnmarshalText(b))
		assert.Equal(t, k, got)
	}
	_, err := schema.Kind(99).MarshalText()
	assert.Error(t, err)
}
