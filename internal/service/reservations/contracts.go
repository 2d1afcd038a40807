package reservations

import (
	"context"

	"github.com/m04kA/PetCare-BookingService/internal/domain"
	"github.com/m04kA/PetCare-BookingService/pkg/types"
)

// LedgerRepository интерфейс репозитория журнала вместимости
type LedgerRepository interface {
	CountByDays(ctx context.Context, serviceID string, dates []types.Date, excludeBookingID *int64) (domain.DayCounts, error)
	InsertDates(ctx context.Context, serviceID string, bookingID int64, dates []types.Date) error
	DeleteByBooking(ctx context.Context, bookingID int64) (int64, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
