package dictionary_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/odmval/internal/testutil"
	"github.com/leapstack-labs/odmval/pkg/core"
	"github.com/leapstack-labs/odmval/pkg/dictionary"
	"github.com/leapstack-labs/odmval/pkg/version"
)

func tableIDs(m *dictionary.Model) []string {
	ids := make([]string, 0, len(m.Tables))
	for _, t := range m.Tables {
		ids = append(ids, t.ID)
	}
	return ids
}

func attributeIDs(t *dictionary.TableModel) []string {
	ids := make([]string, 0, len(t.Attributes))
	for _, a := range t.Attributes {
		ids = append(ids, a.ID)
	}
	return ids
}

func TestBuild_CurrentLineage(t *testing.T) {
	m := testutil.Model(t, "2.1.0")

	assert.False(t, m.Legacy)
	assert.Equal(t, []string{"addresses", "samples", "sites"}, tableIDs(m))

	samples, ok := m.Table("samples")
	require.True(t, ok)
	assert.Equal(t,
		[]string{"collDT", "collection", "isPooled", "notes", "oldField", "quantity", "siteID"},
		attributeIDs(samples))

	collection, ok := samples.Attribute("collection")
	require.True(t, ok)
	assert.True(t, collection.Mandatory)
	assert.True(t, collection.Categorical)
	require.NotNil(t, collection.Categories)
	assert.Equal(t, "collectCat", collection.Categories.ID)
	assert.Equal(t, []string{"comp3h", "comp8h", "flowPr"}, collection.Categories.Values)

	quantity, _ := samples.Attribute("quantity")
	assert.Equal(t, core.TypeInteger, quantity.Type)
	require.NotNil(t, quantity.MinValue)
	require.NotNil(t, quantity.MaxValue)
	assert.InDelta(t, 0.0, *quantity.MinValue, 0)
	assert.InDelta(t, 1000.0, *quantity.MaxValue, 0)

	siteID, _ := samples.Attribute("siteID")
	assert.False(t, siteID.Mandatory)
	sites, _ := m.Table("sites")
	siteID, _ = sites.Attribute("siteID")
	assert.True(t, siteID.Mandatory)

	// "NA" is stripped, so isPooled carries no required-ness.
	pooled, _ := samples.Attribute("isPooled")
	assert.False(t, pooled.Mandatory)
	assert.Equal(t, core.TypeBoolean, pooled.Type)

	assert.Equal(t, []string{"true", "false"}, m.BooleanSet)
	assert.Equal(t, []string{"missing", "notCollected"}, m.NullSet)
	assert.Empty(t, m.Skipped)
	assert.Contains(t, m.Patches, "boolean-category-case")
}

func TestBuild_VersionFilter(t *testing.T) {
	m := testutil.Model(t, "2.0.0")

	samples, ok := m.Table("samples")
	require.True(t, ok)
	_, hasNotes := samples.Attribute("notes")
	assert.False(t, hasNotes, "notes is first released in 2.1.0")

	_, hasGrab := m.Parts["grab"]
	assert.False(t, hasGrab, "grab is deprecated as of 2.0.0")

	collection, _ := samples.Attribute("collection")
	require.NotNil(t, collection.Categories)
	assert.NotContains(t, collection.Categories.Values, "grab")
}

func TestBuild_LegacyLineage(t *testing.T) {
	m := testutil.Model(t, "1.0.0")

	assert.True(t, m.Legacy)
	assert.Equal(t, []string{"Sample", "Site"}, tableIDs(m))
	assert.Equal(t, []string{"oldField"}, m.Skipped)

	sample, _ := m.Table("Sample")
	assert.Equal(t,
		[]string{"Collection", "DateTime", "Pooled", "Quantity", "siteID"},
		attributeIDs(sample))

	coll, ok := sample.Attribute("Collection")
	require.True(t, ok)
	assert.True(t, coll.Mandatory)
	require.NotNil(t, coll.Categories)
	assert.Equal(t, "Sample.Collection", coll.Categories.ID)
	assert.Equal(t, []string{"Comp3h", "Comp8h", "FlowPr", "Grb"}, coll.Categories.Values)
	assert.Equal(t, []string{"comp3h", "comp8h", "flowPr", "grab"}, coll.Categories.Parts)

	siteInSample, _ := sample.Attribute("siteID")
	assert.False(t, siteInSample.Mandatory)
	site, _ := m.Table("Site")
	siteID, _ := site.Attribute("siteID")
	assert.True(t, siteID.Mandatory)

	assert.Equal(t, []string{"Collection"}, m.LegacyMappings["collection"])
}

func TestBuild_DoesNotMutateInput(t *testing.T) {
	parts, sets := testutil.DictionaryRows()
	_, err := dictionary.Build(parts, sets, version.MustParse("2.1.0"))
	require.NoError(t, err)

	assert.Equal(t, "TRUE", parts[15]["partID"])
	assert.Equal(t, "NA", parts[7]["samplesRequired"])
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name  string
		parts []dictionary.RawRow
		check func(t *testing.T, err error)
	}{
		{
			name: "malformed firstReleased",
			parts: []dictionary.RawRow{
				{"partID": "a", "partType": "tables", "firstReleased": "two"},
			},
			check: func(t *testing.T, err error) {
				var mv *dictionary.MalformedVersionError
				require.ErrorAs(t, err, &mv)
				assert.Equal(t, "a", mv.PartID)
				assert.Equal(t, dictionary.FieldFirstReleased, mv.Field)
				assert.ErrorIs(t, err, version.ErrMalformed)
			},
		},
		{
			name: "malformed lastUpdated on active part",
			parts: []dictionary.RawRow{
				{"partID": "b", "partType": "tables", "lastUpdated": "2.x"},
			},
			check: func(t *testing.T, err error) {
				var mv *dictionary.MalformedVersionError
				require.ErrorAs(t, err, &mv)
				assert.Equal(t, dictionary.FieldLastUpdated, mv.Field)
			},
		},
		{
			name: "released after deprecation",
			parts: []dictionary.RawRow{
				{"partID": "c", "partType": "tables", "status": "depreciated",
					"firstReleased": "2.0.0", "lastUpdated": "1.1.0"},
			},
			check: func(t *testing.T, err error) {
				var vr *dictionary.VersionRangeError
				require.ErrorAs(t, err, &vr)
				assert.Equal(t, "c", vr.PartID)
			},
		},
		{
			name: "duplicate part",
			parts: []dictionary.RawRow{
				{"partID": "d", "partType": "tables"},
				{"partID": "d", "partType": "tables"},
			},
			check: func(t *testing.T, err error) {
				var dup *dictionary.DuplicatePartError
				require.ErrorAs(t, err, &dup)
			},
		},
		{
			name: "unknown data type",
			parts: []dictionary.RawRow{
				{"partID": "e", "partType": "attributes", "dataType": "blob"},
			},
			check: func(t *testing.T, err error) {
				var mf *dictionary.MalformedFieldError
				require.ErrorAs(t, err, &mf)
				assert.Equal(t, dictionary.FieldDataType, mf.Field)
			},
		},
		{
			name: "non-numeric bound",
			parts: []dictionary.RawRow{
				{"partID": "f", "partType": "attributes", "dataType": "float", "minValue": "low"},
			},
			check: func(t *testing.T, err error) {
				var mf *dictionary.MalformedFieldError
				require.ErrorAs(t, err, &mf)
				assert.Equal(t, dictionary.FieldMinValue, mf.Field)
			},
		},
		{
			name: "unknown part type",
			parts: []dictionary.RawRow{
				{"partID": "g", "partType": "widgets"},
			},
			check: func(t *testing.T, err error) {
				var mf *dictionary.MalformedFieldError
				require.ErrorAs(t, err, &mf)
				assert.Equal(t, dictionary.FieldPartType, mf.Field)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := dictionary.Build(tt.parts, nil, version.MustParse("2.1.0"))
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestBuild_AbsentVersionsUseDefaults(t *testing.T) {
	tests := []struct {
		name   string
		part   dictionary.RawRow
		target string
	}{
		{
			name:   "current lineage",
			part:   dictionary.RawRow{"partID": "t", "partType": "tables", "firstReleased": "NA", "lastUpdated": ""},
			target: "2.0.0",
		},
		{
			name: "legacy lineage with mapping",
			part: dictionary.RawRow{"partID": "t", "partType": "tables", "firstReleased": "NA", "lastUpdated": "",
				"version1Location": "tables", "version1Table": "T"},
			target: "1.0.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := dictionary.Build([]dictionary.RawRow{tt.part}, nil, version.MustParse(tt.target))
			require.NoError(t, err)
			require.Contains(t, m.Parts, "t")
			assert.Equal(t, version.MustParse("1.0.0"), m.Parts["t"].Released())
		})
	}
}

func TestBuild_ShortVersionPatch(t *testing.T) {
	parts := []dictionary.RawRow{
		{"partID": "turbidity", "partType": "attributes", "firstReleased": "1.1",
			"version1Table": "Sample", "version1Variable": "Turbidity"},
	}

	m, err := dictionary.Build(parts, nil, version.MustParse("1.1.0"))
	require.NoError(t, err)
	assert.Contains(t, m.Parts, "turbidity")
	assert.Contains(t, m.Patches, "v1.1-short-versions")

	_, err = dictionary.Build(parts, nil, version.MustParse("2.0.0"))
	var mv *dictionary.MalformedVersionError
	require.ErrorAs(t, err, &mv)
	assert.Equal(t, "1.1", mv.Value)
}

func TestBuild_LatestOverride(t *testing.T) {
	parts := []dictionary.RawRow{
		{"partID": "t", "partType": "tables", "firstReleased": "2.0.0"},
	}

	m, err := dictionary.Build(parts, nil, version.MustParse("2.1.0"), dictionary.WithLatest(version.MustParse("2.0.0")))
	require.NoError(t, err)
	assert.NotContains(t, m.Parts, "t")

	m, err = dictionary.Build(parts, nil, version.MustParse("2.0.0"), dictionary.WithLatest(version.MustParse("2.0.0")))
	require.NoError(t, err)
	assert.Contains(t, m.Parts, "t")
}

func TestErrorMessages(t *testing.T) {
	err := error(&dictionary.MalformedVersionError{PartID: "p", Field: "firstReleased", Value: "x", Err: errors.New("bad")})
	assert.Equal(t, `part "p": malformed version in firstReleased: "x"`, err.Error())

	err = &dictionary.MalformedFieldError{Field: "partID"}
	assert.Equal(t, `malformed partID: ""`, err.Error())
}

func TestBuild_LogsSkippedLegacyParts(t *testing.T) {
	logger, logs := testutil.NewCapturingLogger(t)
	parts, sets := testutil.DictionaryRows()

	m, err := dictionary.Build(parts, sets, version.MustParse("1.1.0"), dictionary.WithLogger(logger))
	require.NoError(t, err)

	assert.Equal(t, []string{"oldField"}, m.Skipped)
	lines := logs.Lines("skipping part without legacy mapping")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "part_id=oldField")
}
