package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGrid(t *testing.T) {
	grid, err := ParseGrid([]string{"09:00", "11:00", "14:00", "16:00", "18:00"})
	require.NoError(t, err)

	assert.Equal(t, []string{"09:00", "11:00", "14:00", "16:00", "18:00"}, grid.Slots())
	assert.True(t, grid.Contains("14:00"))
	assert.False(t, grid.Contains("10:00"))
	assert.Equal(t, 5, grid.Len())
}

func TestParseGridRejectsMalformedEntries(t *testing.T) {
	cases := [][]string{
		{},
		{"9:00"},
		{"09:60"},
		{"24:00"},
		{"0900"},
		{"09:00", "09:00"},
		{"11:00", "09:00"},
	}
	for _, entries := range cases {
		_, err := ParseGrid(entries)
		assert.Error(t, err, "entries %v", entries)
	}
}

func TestParseClock(t *testing.T) {
	m, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, 570, m)

	_, err = ParseClock("nope")
	assert.Error(t, err)
}
