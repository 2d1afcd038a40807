package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/PetCare-BookingService/pkg/types"
)

func TestCalculatePrice(t *testing.T) {
	start := types.NewDate(2025, time.March, 10)

	t.Run("per-night multiplies rate by nights", func(t *testing.T) {
		price, err := CalculatePrice(boardingEntry(5), start, start.AddDays(4))
		require.NoError(t, err)
		assert.Equal(t, int64(600000), price)
	})

	t.Run("flat-rate ignores range length", func(t *testing.T) {
		price, err := CalculatePrice(groomingEntry(), start, start)
		require.NoError(t, err)
		assert.Equal(t, int64(120000), price)
	})

	t.Run("per-night rejects zero nights", func(t *testing.T) {
		_, err := CalculatePrice(boardingEntry(5), start, start)
		assert.ErrorIs(t, err, ErrInvalidServiceConfig)
	})

	t.Run("negative rate is rejected", func(t *testing.T) {
		entry := boardingEntry(5)
		entry.RateMinor = -1

		_, err := CalculatePrice(entry, start, start.AddDays(1))
		assert.ErrorIs(t, err, ErrInvalidServiceConfig)
	})
}
