package version

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Version
		wantErr bool
	}{
		{in: "2.1.0", want: Version{2, 1, 0}},
		{in: "v1.0.0", want: Version{1, 0, 0}},
		{in: " 1.1.0 ", want: Version{1, 1, 0}},
		{in: "1.1", wantErr: true},
		{in: "2", wantErr: true},
		{in: "2.0.0-rc1", wantErr: true},
		{in: "two.zero.zero", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrMalformed))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompare(t *testing.T) {
	assert.True(t, MustParse("1.1.0").Less(MustParse("2.0.0")))
	assert.True(t, MustParse("2.0.0").Less(MustParse("2.0.10")))
	assert.Equal(t, 0, MustParse("2.1.0").Compare(MustParse("v2.1.0")))
	assert.Equal(t, 1, MustParse("10.0.0").Compare(MustParse("9.9.9")))
}

func TestLatestAndKnown(t *testing.T) {
	assert.Equal(t, "2.1.0", Latest().String())
	known := Known()
	require.NotEmpty(t, known)
	for i := 1; i < len(known); i++ {
		assert.True(t, known[i-1].Less(known[i]), "known versions must ascend")
	}
	assert.True(t, IsKnown(MustParse("1.1.0")))
	assert.False(t, IsKnown(MustParse("3.0.0")))
	assert.True(t, MustParse("1.1.0").IsLegacy())
	assert.False(t, Latest().IsLegacy())
}

func TestResolve(t *testing.T) {
	v, err := Resolve("2.0.0")
	require.NoError(t, err)
	assert.Equal(t, Version{2, 0, 0}, v)

	_, err = Resolve("9.0.0")
	var unknown *UnknownVersionError
	require.ErrorAs(t, err, &unknown)
	assert.Contains(t, unknown.Error(), "2.1.0")
}

func TestVersionText(t *testing.T) {
	var v Version
	require.NoError(t, v.UnmarshalText([]byte("1.0.0")))
	b, err := v.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", string(b))
	assert.Error(t, v.UnmarshalText([]byte("1.0")))
}

func TestMajors(t *testing.T) {
	assert.Equal(t, []int{1, 2}, Majors())

	v2, err := TableIDs(2)
	require.NoError(t, err)
	assert.Contains(t, v2, "addresses")

	_, err = TableIDs(7)
	assert.Error(t, err)
}

func TestInferTableID(t *testing.T) {
	tests := []struct {
		stem    string
		version string
		want    string
		ok      bool
	}{
		{"addresses", "2.1.0", "addresses", true},
		{"ottawa_samples", "2.1.0", "samples", true},
		{"ottawa_sampleRelationships", "2.1.0", "sampleRelationships", true},
		{"ottawa_measureSets", "2.1.0", "measureSets", true},
		{"city-SAMPLES", "2.0.0", "samples", true},
		{"ww_WWMeasure", "1.1.0", "WWMeasure", true},
		{"ww_SiteMeasure", "1.1.0", "SiteMeasure", true},
		{"readme", "2.1.0", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.stem, func(t *testing.T) {
			got, ok := InferTableID(tt.stem, MustParse(tt.version))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
