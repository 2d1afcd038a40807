package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/PetCare-BookingService/pkg/types"
)

func TestBookingPredicates(t *testing.T) {
	cases := []struct {
		status        BookingStatus
		terminal      bool
		occupies      bool
		approvable    bool
		cancellable   bool
		completable   bool
		reschedulable bool
	}{
		{StatusPending, false, true, true, true, false, true},
		{StatusConfirmed, false, true, false, true, true, true},
		{StatusCompleted, true, false, false, false, false, false},
		{StatusCancelled, true, false, false, false, false, false},
	}

	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			b := &Booking{Status: tc.status}

			assert.Equal(t, tc.terminal, b.IsTerminal())
			assert.Equal(t, tc.occupies, b.OccupiesCapacity())
			assert.Equal(t, tc.approvable, b.CanBeApproved())
			assert.Equal(t, tc.approvable, b.CanBeRejected())
			assert.Equal(t, tc.cancellable, b.CanBeCancelled())
			assert.Equal(t, tc.completable, b.CanBeCompleted())
			assert.Equal(t, tc.reschedulable, b.CanBeRescheduled())
		})
	}
}

func TestNewCatalog(t *testing.T) {
	t.Run("valid entries are indexed by service id", func(t *testing.T) {
		catalog, err := NewCatalog([]*ServiceCatalogEntry{boardingEntry(5), groomingEntry()})
		require.NoError(t, err)

		entry, err := catalog.Get("boarding")
		require.NoError(t, err)
		assert.Equal(t, 5, entry.CapacityPerDay)
	})

	t.Run("unknown service", func(t *testing.T) {
		catalog, err := NewCatalog([]*ServiceCatalogEntry{groomingEntry()})
		require.NoError(t, err)

		_, err = catalog.Get("boarding")
		assert.ErrorIs(t, err, ErrUnknownService)
	})

	t.Run("duplicate service id is rejected", func(t *testing.T) {
		_, err := NewCatalog([]*ServiceCatalogEntry{boardingEntry(5), boardingEntry(3)})
		assert.ErrorIs(t, err, ErrInvalidServiceConfig)
	})

	t.Run("invalid entry is rejected", func(t *testing.T) {
		entry := boardingEntry(5)
		entry.PricingMode = "hourly"

		_, err := NewCatalog([]*ServiceCatalogEntry{entry})
		assert.ErrorIs(t, err, ErrInvalidServiceConfig)
	})
}

func TestTypedErrors(t *testing.T) {
	t.Run("capacity error unwraps to sentinel", func(t *testing.T) {
		err := &CapacityError{
			ServiceID:     "boarding",
			ConflictDates: []types.Date{types.NewDate(2025, time.March, 10)},
		}

		assert.ErrorIs(t, err, ErrCapacityExceeded)
		assert.Contains(t, err.Error(), "2025-03-10")

		var capErr *CapacityError
		require.True(t, errors.As(error(err), &capErr))
		assert.Equal(t, "boarding", capErr.ServiceID)
	})

	t.Run("invalid transition unwraps to sentinel", func(t *testing.T) {
		err := NewInvalidTransition(StatusCancelled, "approve")

		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Contains(t, err.Error(), "cancelled")
	})
}
