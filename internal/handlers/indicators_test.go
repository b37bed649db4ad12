package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dextryayers/rujukan-jatim/internal/models"
)

func floatPtr(f float64) *float64 { return &f }

func storedIndicator() models.Indicator {
	met := models.IndicatorStatusMet
	return models.Indicator{
		ID:      "ind1",
		Name:    "Cakupan Imunisasi",
		Capaian: floatPtr(96),
		Target:  floatPtr(95),
		Status:  &met,
	}
}

func TestApplyIndicatorUpdateRederivesWhenBothNumbersGiven(t *testing.T) {
	got, err := applyIndicatorUpdate(storedIndicator(), indicatorUpdateRequest{
		Capaian: floatPtr(80),
		Target:  floatPtr(90),
	})
	require.NoError(t, err)
	require.NotNil(t, got.Status)
	assert.Equal(t, models.IndicatorStatusNotMet, *got.Status)
}

func TestApplyIndicatorUpdateKeepsStatusOnLoneNumber(t *testing.T) {
	// Only capaian in the payload: the stored status stays untouched even
	// though re-deriving from the merged values would flip it.
	got, err := applyIndicatorUpdate(storedIndicator(), indicatorUpdateRequest{
		Capaian: floatPtr(10),
	})
	require.NoError(t, err)
	require.NotNil(t, got.Status)
	assert.Equal(t, models.IndicatorStatusMet, *got.Status)
	assert.Equal(t, 10.0, *got.Capaian)
}

func TestApplyIndicatorUpdateExplicitStatusWins(t *testing.T) {
	custom := "Dalam Pembinaan"
	got, err := applyIndicatorUpdate(storedIndicator(), indicatorUpdateRequest{
		Capaian: floatPtr(10),
		Target:  floatPtr(90),
		Status:  &custom,
	})
	require.NoError(t, err)
	require.NotNil(t, got.Status)
	assert.Equal(t, custom, *got.Status)
}

func TestApplyIndicatorUpdateRejectsBadDate(t *testing.T) {
	_, err := applyIndicatorUpdate(storedIndicator(), indicatorUpdateRequest{
		Date: strPtr("31-12-2026"),
	})
	assert.Error(t, err)
}
