package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/PetCare-BookingService/internal/domain"
	"github.com/m04kA/PetCare-BookingService/internal/integrations/petservice"
	"github.com/m04kA/PetCare-BookingService/internal/service/reservations"
	"github.com/m04kA/PetCare-BookingService/pkg/types"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
}

// EventRepository интерфейс репозитория событий бронирований
type EventRepository interface {
	Insert(ctx context.Context, event *domain.BookingEvent) (*domain.BookingEvent, error)
}

// ReservationManager интерфейс менеджера резерваций вместимости
type ReservationManager interface {
	EvaluateInTx(ctx context.Context, entry *domain.ServiceCatalogEntry, start, end types.Date, excludeBookingID *int64) (*domain.Evaluation, error)
	ReserveInTx(ctx context.Context, entry *domain.ServiceCatalogEntry, start, end types.Date, bookingID int64, excludeBookingID *int64) (*reservations.Token, error)
}

// PetServiceClient интерфейс клиента для сервиса профилей питомцев
type PetServiceClient interface {
	GetPetWithGracefulDegradation(ctx context.Context, petID int64) (*petservice.Pet, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
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
