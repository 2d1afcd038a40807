package domain

import (
	"time"

	"github.com/m04kA/PetCare-BookingService/pkg/types"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

// Booking represents a capacity-holding reservation of a pet-care service
//
// Даты трактуются как полуинтервал [StartDate, EndDate): для передержки это
// ночи, для однодневных услуг EndDate == StartDate и занят один день.
type Booking struct {
	ID        int64
	OwnerID   int64
	PetID     int64
	ServiceID string
	StartDate types.Date
	EndDate   types.Date

	RequiresPickup bool
	PickupAddress  *string
	PickupTime     *types.TimeString
	DropoffAddress *string
	DropoffTime    *types.TimeString

	Status     BookingStatus
	PriceMinor int64 // цена в минорных единицах валюты

	// ConfirmationCode неизменяемый внешний идентификатор, присваивается один раз
	ConfirmationCode string

	// Denormalized data for history
	PetName *string

	CancellationReason *string
	CancelledAt        *time.Time

	// Version монотонный счетчик для optimistic concurrency guard
	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsTerminal returns true if the booking is in a terminal state
func (b *Booking) IsTerminal() bool {
	return b.Status == StatusCompleted || b.Status == StatusCancelled
}

// OccupiesCapacity returns true if the booking consumes capacity ledger slots
func (b *Booking) OccupiesCapacity() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// CanBeApproved returns true if the booking can be approved by an admin
func (b *Booking) CanBeApproved() bool {
	return b.Status == StatusPending
}

// CanBeRejected returns true if the booking can be rejected by an admin
func (b *Booking) CanBeRejected() bool {
	return b.Status == StatusPending
}

// CanBeCancelled returns true if the booking status permits cancellation
// (date preconditions are checked by the service layer)
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// CanBeCompleted returns true if the booking status permits completion
func (b *Booking) CanBeCompleted() bool {
	return b.Status == StatusConfirmed
}

// CanBeRescheduled returns true if the booking can be moved to new dates
func (b *Booking) CanBeRescheduled() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// OccupiedDates returns every calendar date the booking consumes
func (b *Booking) OccupiedDates() []types.Date {
	return OccupiedDates(b.StartDate, b.EndDate)
}

// OccupiedDates returns the calendar dates occupied by the range [start, end)
// A zero-length range (flat-rate services) occupies its single day
func OccupiedDates(start, end types.Date) []types.Date {
	if end.Equal(start) {
		return []types.Date{start}
	}
	return start.DatesUntil(end)
}

// BookingsFilter фильтр для выборки бронирований
type BookingsFilter struct {
	OwnerID   *int64         // Фильтр по владельцу (опционально)
	ServiceID *string        // Фильтр по услуге (опционально)
	Status    *BookingStatus // Фильтр по статусу (опционально)
	DateFrom  *types.Date    // Начало периода: выбираются бронирования, пересекающие период (опционально)
	DateTo    *types.Date    // Конец периода (опционально)
}
