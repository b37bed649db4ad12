package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestResolveRecordedAtExplicit(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	got, err := resolveRecordedAt(accreditationRequest{RecordedAt: strPtr("2026-03-15")}, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), got)

	got, err = resolveRecordedAt(accreditationRequest{RecordedAt: strPtr("2026-03-15T08:30:00Z")}, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 15, 8, 30, 0, 0, time.UTC), got)
}

func TestResolveRecordedAtFromPeriod(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	got, err := resolveRecordedAt(accreditationRequest{Year: intPtr(2025), Month: intPtr(6)}, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), got)

	// Year without month lands on January 1st.
	got, err = resolveRecordedAt(accreditationRequest{Year: intPtr(2025)}, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestResolveRecordedAtDefaultsToNow(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	got, err := resolveRecordedAt(accreditationRequest{}, now)
	require.NoError(t, err)
	assert.Equal(t, now, got)
}

func TestResolveRecordedAtRejectsGarbage(t *testing.T) {
	_, err := resolveRecordedAt(accreditationRequest{RecordedAt: strPtr("kemarin")}, time.Now())
	assert.Error(t, err)
}
