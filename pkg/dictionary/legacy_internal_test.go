package dictionary

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/odmval/pkg/version"
)

func TestZipBroadcast(t *testing.T) {
	tests := []struct {
		name  string
		lists [][]string
		want  [][]string
	}{
		{
			name:  "equal lengths",
			lists: [][]string{{"A", "B"}, {"x", "y"}},
			want:  [][]string{{"A", "x"}, {"B", "y"}},
		},
		{
			name:  "singleton broadcasts",
			lists: [][]string{{"Site", "Sample"}, {"siteID"}},
			want:  [][]string{{"Site", "siteID"}, {"Sample", "siteID"}},
		},
		{
			name:  "empty list yields nothing",
			lists: [][]string{{"A"}, nil},
			want:  nil,
		},
		{
			name:  "ragged lists drop unmatched positions",
			lists: [][]string{{"A", "B", "C"}, {"x", "y"}},
			want:  [][]string{{"A", "x"}, {"B", "y"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, zipBroadcast(tt.lists...))
		})
	}
}

func TestSplitMulti(t *testing.T) {
	assert.Equal(t, []string{"Site", "Sample"}, splitMulti("Site; Sample"))
	assert.Nil(t, splitMulti(""))
	assert.Equal(t, []string{"a"}, splitMulti("a;NA;"))
}

func TestSpanContains(t *testing.T) {
	active := span{first: defaultReleased, end: mustVersion("2.1.0"), active: true}
	assert.True(t, active.contains(mustVersion("2.1.0")))
	assert.True(t, active.contains(mustVersion("1.0.0")))

	inactive := span{first: defaultReleased, end: mustVersion("2.0.0")}
	assert.False(t, inactive.contains(mustVersion("2.0.0")))
	assert.True(t, inactive.contains(mustVersion("1.1.0")))
}

func mustVersion(s string) version.Version {
	return version.MustParse(s)
}
