package bookings

import (
	"context"
	"time"

	"github.com/m04kA/PetCare-BookingService/internal/domain"
	"github.com/m04kA/PetCare-BookingService/internal/service/reservations"
	"github.com/m04kA/PetCare-BookingService/pkg/types"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListWithFilter(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus, expectedVersion int64) error
	Cancel(ctx context.Context, id int64, reason string, expectedVersion int64) error
}

// EventRepository интерфейс репозитория событий бронирований
type EventRepository interface {
	Insert(ctx context.Context, event *domain.BookingEvent) (*domain.BookingEvent, error)
	ListByBooking(ctx context.Context, bookingID int64) ([]*domain.BookingEvent, error)
}

// ReservationManager интерфейс менеджера резерваций вместимости
// Все изменения журнала вместимости проходят только через него
type ReservationManager interface {
	ReserveInTx(ctx context.Context, entry *domain.ServiceCatalogEntry, start, end types.Date, bookingID int64, excludeBookingID *int64) (*reservations.Token, error)
	ReleaseInTx(ctx context.Context, bookingID int64) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
