package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/PetCare-BookingService/pkg/types"
)

func boardingEntry(capacity int) *ServiceCatalogEntry {
	return &ServiceCatalogEntry{
		ServiceID:      "boarding",
		Name:           "Передержка",
		CapacityPerDay: capacity,
		PricingMode:    PricingPerNight,
		RateMinor:      150000,
	}
}

func groomingEntry() *ServiceCatalogEntry {
	return &ServiceCatalogEntry{
		ServiceID:      "grooming",
		Name:           "Груминг",
		CapacityPerDay: 0,
		PricingMode:    PricingFlatRate,
		RateMinor:      120000,
	}
}

func TestValidateRange(t *testing.T) {
	start := types.NewDate(2025, time.March, 10)
	end := types.NewDate(2025, time.March, 13)

	t.Run("per-night range is returned as-is", func(t *testing.T) {
		got, err := ValidateRange(boardingEntry(5), start, end)
		require.NoError(t, err)
		assert.True(t, got.Equal(end))
	})

	t.Run("per-night requires end after start", func(t *testing.T) {
		_, err := ValidateRange(boardingEntry(5), start, start)
		assert.ErrorIs(t, err, ErrInvalidRange)

		_, err = ValidateRange(boardingEntry(5), end, start)
		assert.ErrorIs(t, err, ErrInvalidRange)
	})

	t.Run("per-night requires both dates", func(t *testing.T) {
		_, err := ValidateRange(boardingEntry(5), types.Date{}, end)
		assert.ErrorIs(t, err, ErrInvalidRange)

		_, err = ValidateRange(boardingEntry(5), start, types.Date{})
		assert.ErrorIs(t, err, ErrInvalidRange)
	})

	t.Run("flat-rate forces end to start", func(t *testing.T) {
		got, err := ValidateRange(groomingEntry(), start, end)
		require.NoError(t, err)
		assert.True(t, got.Equal(start))
	})
}

func TestOccupiedDates(t *testing.T) {
	start := types.NewDate(2025, time.March, 10)

	t.Run("half-open range excludes end date", func(t *testing.T) {
		dates := OccupiedDates(start, start.AddDays(3))
		require.Len(t, dates, 3)
		assert.True(t, dates[0].Equal(start))
		assert.True(t, dates[2].Equal(start.AddDays(2)))
	})

	t.Run("zero-length range occupies single day", func(t *testing.T) {
		dates := OccupiedDates(start, start)
		require.Len(t, dates, 1)
		assert.True(t, dates[0].Equal(start))
	})
}

func TestEvaluateAvailability(t *testing.T) {
	start := types.NewDate(2025, time.March, 10)
	end := start.AddDays(3)

	t.Run("available when every day has room", func(t *testing.T) {
		counts := DayCounts{
			start:            1,
			start.AddDays(1): 2,
		}

		eval, err := EvaluateAvailability(boardingEntry(3), start, end, counts)
		require.NoError(t, err)
		assert.True(t, eval.Available)
		assert.Equal(t, 1, eval.RemainingMin)
		assert.Empty(t, eval.ConflictDates)
	})

	t.Run("conflict dates collected for full days", func(t *testing.T) {
		counts := DayCounts{
			start:            3,
			start.AddDays(2): 4,
		}

		eval, err := EvaluateAvailability(boardingEntry(3), start, end, counts)
		require.NoError(t, err)
		assert.False(t, eval.Available)
		assert.Equal(t, 0, eval.RemainingMin)
		require.Len(t, eval.ConflictDates, 2)
		assert.True(t, eval.ConflictDates[0].Equal(start))
		assert.True(t, eval.ConflictDates[1].Equal(start.AddDays(2)))
	})

	t.Run("unlimited service is always available", func(t *testing.T) {
		eval, err := EvaluateAvailability(groomingEntry(), start, start, nil)
		require.NoError(t, err)
		assert.True(t, eval.Available)
		assert.True(t, eval.Unlimited)
	})

	t.Run("invalid range is rejected", func(t *testing.T) {
		_, err := EvaluateAvailability(boardingEntry(3), end, start, nil)
		assert.ErrorIs(t, err, ErrInvalidRange)
	})
}
