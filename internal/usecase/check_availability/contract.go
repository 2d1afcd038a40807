package check_availability

import (
	"context"

	"github.com/m04kA/PetCare-BookingService/internal/domain"
	"github.com/m04kA/PetCare-BookingService/pkg/types"
)

// LedgerRepository интерфейс репозитория журнала вместимости
type LedgerRepository interface {
	CountByDays(ctx context.Context, serviceID string, dates []types.Date, excludeBookingID *int64) (domain.DayCounts, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
