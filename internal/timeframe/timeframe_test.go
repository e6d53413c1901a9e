package timeframe

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"15", "15m"},
		{"15m", "15m"},
		{"15min", "15m"},
		{"15 mins", "15m"},
		{"1", "1m"},
		{"5Min", "5m"},
		{"1M", "1M"},
		{"M", "M"},
		{"60", "1h"},
		{"1h", "1h"},
		{"1hr", "1h"},
		{"240", "4h"},
		{"4H", "4h"},
		{"1440", "1d"},
		{"D", "1d"},
		{"1D", "1d"},
		{"W", "1w"},
		{"1day", "1d"},
		{"weird", "weird"},
		{"", ""},
		{"0m", "0m"},
		{"m", "m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "input %q", tt.in)
	}
}

func TestMonthIsNotMinute(t *testing.T) {
	_, ok := Minutes("1M")
	assert.False(t, ok)
	m, ok := Minutes("1m")
	assert.True(t, ok)
	assert.Equal(t, 1, m)

	tbl := DefaultTable()
	assert.Equal(t, len(tbl.Labels()), tbl.SortOrder("1M"), "months sort with unknown labels")
	assert.NotEqual(t, tbl.SortOrder("1m"), tbl.SortOrder("1M"))
}

func TestEquivalentLabelsShareOrder(t *testing.T) {
	tbl := DefaultTable()
	assert.Equal(t, tbl.SortOrder("15m"), tbl.SortOrder("15"))
	assert.Equal(t, tbl.SortOrder("15m"), tbl.SortOrder("15min"))
	assert.Equal(t, tbl.SortOrder("1h"), tbl.SortOrder("60"))
	assert.Less(t, tbl.SortOrder("5m"), tbl.SortOrder("1h"))
	assert.Less(t, tbl.SortOrder("4h"), tbl.SortOrder("1d"))
}

func TestUnknownLabelsSortLastAndLexicographically(t *testing.T) {
	tbl := DefaultTable()
	assert.Equal(t, len(tbl.Labels()), tbl.SortOrder("zeta"))

	labels := []string{"zeta", "1d", "alpha", "5", "1h"}
	sort.SliceStable(labels, func(i, j int) bool { return tbl.Compare(labels[i], labels[j]) < 0 })
	assert.Equal(t, []string{"5", "1h", "1d", "alpha", "zeta"}, labels)
}

func TestNewTableDeduplicates(t *testing.T) {
	tbl := NewTable("15", "15m", "1h")
	assert.Equal(t, []string{"15m", "1h"}, tbl.Labels())
	assert.Equal(t, 1, tbl.SortOrder("60"))
}
