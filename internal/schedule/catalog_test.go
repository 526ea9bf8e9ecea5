package schedule

import (
	"testing"

	"eclat/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServices() []models.Service {
	return []models.Service{
		{ID: "soin-eclat", Label: "Soin éclat du teint 45min", DurationMinutes: 45, PriceCents: 5500},
		{ID: "massage-relaxant", Label: "Massage relaxant 60min", DurationMinutes: 60, PriceCents: 7000},
		{ID: "rituel-signature", Label: "Rituel signature 90min", DurationMinutes: 90, PriceCents: 9900},
	}
}

func TestNewCatalogRejectsDuplicates(t *testing.T) {
	_, err := NewCatalog([]models.Service{
		{ID: "soin", Label: "Soin", DurationMinutes: 45},
		{ID: "soin", Label: "Soin bis", DurationMinutes: 60},
	})
	require.Error(t, err)
}

func TestNewCatalogRejectsEmptyID(t *testing.T) {
	_, err := NewCatalog([]models.Service{{Label: "Sans id", DurationMinutes: 45}})
	require.Error(t, err)
}

func TestResolveDurationByID(t *testing.T) {
	catalog, err := NewCatalog(testServices())
	require.NoError(t, err)

	assert.Equal(t, 45, catalog.ResolveDuration("soin-eclat", ""))
	assert.Equal(t, 60, catalog.ResolveDuration("massage-relaxant", ""))
	assert.Equal(t, 90, catalog.ResolveDuration("rituel-signature", ""))
}

func TestResolveDurationFallsBackToLabel(t *testing.T) {
	catalog, err := NewCatalog(testServices())
	require.NoError(t, err)

	// Unknown ID, label carries a duration token.
	assert.Equal(t, 90, catalog.ResolveDuration("unknown", "Rituel signature 90min"))
	assert.Equal(t, 45, catalog.ResolveDuration("", "Soin éclat 45min"))
}

func TestResolveLabelDuration(t *testing.T) {
	cases := []struct {
		label string
		want  int
	}{
		{"Soin éclat du teint 45min", 45},
		{"Massage relaxant 60min", 60},
		{"Rituel signature 90min", 90},
		{"", models.DefaultDurationMinutes},
		{"Service renommé sans durée", models.DefaultDurationMinutes},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ResolveLabelDuration(tc.label), "label %q", tc.label)
	}
}
