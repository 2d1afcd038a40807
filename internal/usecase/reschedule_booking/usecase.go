package reschedule_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/PetCare-BookingService/internal/domain"
	storage "github.com/m04kA/PetCare-BookingService/internal/infra/storage/booking"
	"github.com/m04kA/PetCare-BookingService/internal/service/reservations"
	"github.com/m04kA/PetCare-BookingService/pkg/txmanager"
	"github.com/m04kA/PetCare-BookingService/pkg/types"
)

// UseCase use case для переноса бронирования на новые даты
type UseCase struct {
	bookingRepo  BookingRepository
	eventRepo    EventRepository
	reservations ReservationManager
	txManager    TransactionManager
	catalog      domain.Catalog

	// pendingHoldsCapacity определяет, занимают ли pending бронирования слоты.
	// При false перенос не резервирует новые даты: их займет подтверждение.
	pendingHoldsCapacity bool

	reservationTimeout time.Duration

	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	eventRepo EventRepository,
	reservationManager ReservationManager,
	txManager TransactionManager,
	catalog domain.Catalog,
	pendingHoldsCapacity bool,
	reservationTimeout time.Duration,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:          bookingRepo,
		eventRepo:            eventRepo,
		reservations:         reservationManager,
		txManager:            txManager,
		catalog:              catalog,
		pendingHoldsCapacity: pendingHoldsCapacity,
		reservationTimeout:   reservationTimeout,
		timeProvider:         &RealTimeProvider{},
		logger:               logger,
	}
}

// Execute выполняет use case переноса бронирования
//
// Освобождение старых дат и резервирование новых выполняются в одной
// сериализуемой транзакции: при отказе по вместимости откат возвращает
// исходные слоты, бронирование не теряет резервацию.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RescheduleBooking: booking=%d, dates=[%s, %s)",
		req.BookingID, req.NewStartDate, req.NewEndDate)

	if req.BookingID <= 0 {
		return nil, fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}
	if req.NewStartDate.IsZero() {
		return nil, fmt.Errorf("%w: newStartDate is required", ErrInvalidInput)
	}
	if err := validatePickupDetails(req.NewPickupDetails); err != nil {
		uc.logger.Warn("RescheduleBooking: invalid pickup details: %v", err)
		return nil, err
	}

	var result *domain.Booking

	txCtx, cancel := context.WithTimeout(ctx, uc.reservationTimeout)
	defer cancel()

	err := uc.txManager.DoSerializable(txCtx, func(txCtx context.Context) error {
		booking, err := uc.bookingRepo.GetByID(txCtx, req.BookingID)
		if err != nil {
			return uc.mapStorageError(err)
		}

		if !booking.CanBeRescheduled() {
			return domain.NewInvalidTransition(booking.Status, "reschedule")
		}

		entry, err := uc.catalog.Get(booking.ServiceID)
		if err != nil {
			uc.logger.Error("RescheduleBooking: service %q missing from catalog", booking.ServiceID)
			return fmt.Errorf("%w: failed to resolve service: %v", ErrInternal, err)
		}

		newEnd, err := domain.ValidateRange(entry, req.NewStartDate, req.NewEndDate)
		if err != nil {
			uc.logger.Warn("RescheduleBooking: invalid date range: %v", err)
			return err
		}

		today := types.DateOf(uc.timeProvider.Now())
		if req.NewStartDate.Before(today) {
			uc.logger.Warn("RescheduleBooking: new start date %s is in the past", req.NewStartDate)
			return ErrInvalidDate
		}

		newPrice, err := domain.CalculatePrice(entry, req.NewStartDate, newEnd)
		if err != nil {
			return fmt.Errorf("%w: failed to calculate price: %v", ErrInternal, err)
		}

		// Старые слоты освобождаются до резервирования новых, чтобы
		// пересекающиеся диапазоны не конфликтовали сами с собой.
		// Откат транзакции восстанавливает исходную резервацию.
		if err := uc.reservations.ReleaseInTx(txCtx, booking.ID); err != nil {
			return fmt.Errorf("%w: failed to release capacity: %v", ErrInternal, err)
		}

		if uc.pendingHoldsCapacity {
			if _, err := uc.reservations.ReserveInTx(txCtx, entry, req.NewStartDate, newEnd, booking.ID, nil); err != nil {
				return err
			}
		} else {
			// Перенос возвращает бронирование в pending, слоты займет
			// подтверждение; здесь только ранний отказ заведомо
			// невыполнимых запросов
			eval, err := uc.reservations.EvaluateInTx(txCtx, entry, req.NewStartDate, newEnd, nil)
			if err != nil {
				return fmt.Errorf("%w: failed to evaluate availability: %v", ErrInternal, err)
			}
			if !eval.Available {
				return &domain.CapacityError{ServiceID: entry.ServiceID, ConflictDates: eval.ConflictDates}
			}
		}

		// Данные трансфера сохраняются, если перенос не задал новые
		pickup := PickupDetails{
			RequiresPickup: booking.RequiresPickup,
			PickupAddress:  booking.PickupAddress,
			PickupTime:     booking.PickupTime,
			DropoffAddress: booking.DropoffAddress,
			DropoffTime:    booking.DropoffTime,
		}
		if req.NewPickupDetails != nil {
			pickup = *req.NewPickupDetails
		}

		upd := storage.ScheduleUpdate{
			StartDate:      req.NewStartDate,
			EndDate:        newEnd,
			PriceMinor:     newPrice,
			RequiresPickup: pickup.RequiresPickup,
			PickupAddress:  pickup.PickupAddress,
			PickupTime:     pickup.PickupTime,
			DropoffAddress: pickup.DropoffAddress,
			DropoffTime:    pickup.DropoffTime,
		}
		// Reschedule сбрасывает статус в pending: подтвержденное бронирование
		// возвращается на повторное подтверждение
		if err := uc.bookingRepo.Reschedule(txCtx, booking.ID, upd, booking.Version); err != nil {
			return uc.mapStorageError(err)
		}
		demoted := booking.Status == domain.StatusConfirmed

		updated, err := uc.bookingRepo.GetByID(txCtx, booking.ID)
		if err != nil {
			return uc.mapStorageError(err)
		}

		event := domain.NewBookingEvent(booking.ID, domain.EventBookingRescheduled, uc.timeProvider.Now(), map[string]interface{}{
			"oldStartDate":  booking.StartDate.String(),
			"oldEndDate":    booking.EndDate.String(),
			"newStartDate":  updated.StartDate.String(),
			"newEndDate":    updated.EndDate.String(),
			"oldPriceMinor": booking.PriceMinor,
			"newPriceMinor": updated.PriceMinor,
			"demoted":       demoted,
		})
		if _, err := uc.eventRepo.Insert(txCtx, event); err != nil {
			return fmt.Errorf("%w: failed to insert event: %v", ErrInternal, err)
		}

		result = updated
		return nil
	})
	if err != nil {
		return nil, uc.mapTxError(err)
	}

	uc.logger.Info("RescheduleBooking: booking %d moved to [%s, %s), status=%s",
		result.ID, result.StartDate, result.EndDate, result.Status)

	return toResponse(result), nil
}

// mapStorageError конвертирует ошибки хранилища в ошибки usecase
func (uc *UseCase) mapStorageError(err error) error {
	switch {
	case errors.Is(err, storage.ErrBookingNotFound):
		return ErrBookingNotFound
	case errors.Is(err, storage.ErrVersionConflict):
		return ErrConcurrentModification
	default:
		return fmt.Errorf("%w: storage: %v", ErrInternal, err)
	}
}

// mapTxError пропускает доменные ошибки, конвертирует таймауты
// в ErrReservationTimeout
func (uc *UseCase) mapTxError(err error) error {
	switch {
	case errors.Is(err, ErrBookingNotFound),
		errors.Is(err, ErrConcurrentModification),
		errors.Is(err, ErrInvalidDate),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrInternal),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrInvalidRange),
		errors.Is(err, domain.ErrCapacityExceeded):
		return err
	case errors.Is(err, txmanager.ErrTxTimeout), errors.Is(err, context.DeadlineExceeded):
		uc.logger.Warn("RescheduleBooking: reservation timed out")
		return reservations.ErrReservationTimeout
	case errors.Is(err, txmanager.ErrSerializationFailure):
		uc.logger.Warn("RescheduleBooking: serializable retries exhausted")
		return reservations.ErrReservationTimeout
	default:
		return fmt.Errorf("%w: transaction failed: %v", ErrInternal, err)
	}
}
