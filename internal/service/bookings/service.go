package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/PetCare-BookingService/internal/domain"
	storage "github.com/m04kA/PetCare-BookingService/internal/infra/storage/booking"
	"github.com/m04kA/PetCare-BookingService/internal/service/bookings/models"
	"github.com/m04kA/PetCare-BookingService/internal/service/reservations"
	"github.com/m04kA/PetCare-BookingService/pkg/txmanager"
	"github.com/m04kA/PetCare-BookingService/pkg/types"
)

// Service сервис переходов жизненного цикла бронирований
//
// Каждый переход выполняется в одной serializable транзакции: проверка
// предусловий, изменение статуса с version guard, изменение журнала
// вместимости и запись события фиксируются атомарно.
type Service struct {
	bookingRepo  BookingRepository
	eventRepo    EventRepository
	reservations ReservationManager
	txManager    TransactionManager
	catalog      domain.Catalog

	// pendingHoldsCapacity определяет, занимают ли pending бронирования слоты.
	// При false слоты резервируются только при подтверждении.
	pendingHoldsCapacity bool

	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый сервис бронирований
func NewService(
	bookingRepo BookingRepository,
	eventRepo EventRepository,
	reservations ReservationManager,
	txManager TransactionManager,
	catalog domain.Catalog,
	pendingHoldsCapacity bool,
	timeProvider TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:          bookingRepo,
		eventRepo:            eventRepo,
		reservations:         reservations,
		txManager:            txManager,
		catalog:              catalog,
		pendingHoldsCapacity: pendingHoldsCapacity,
		timeProvider:         timeProvider,
		logger:               logger,
	}
}

// GetByID возвращает бронирование по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.BookingResponse, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapStorageError(err, "GetByID")
	}

	return models.FromDomainBooking(booking), nil
}

// List возвращает список бронирований по фильтру
func (s *Service) List(ctx context.Context, req *models.ListBookingsRequest) (*models.BookingListResponse, error) {
	filter, err := req.ToDomainFilter()
	if err != nil {
		return nil, fmt.Errorf("%w: List - invalid filter: %v", ErrInvalidInput, err)
	}

	bookings, err := s.bookingRepo.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: List - list bookings: %v", ErrInternal, err)
	}

	return models.FromDomainBookingList(bookings), nil
}

// Events возвращает историю событий бронирования в порядке возникновения
func (s *Service) Events(ctx context.Context, bookingID int64) (*models.BookingEventListResponse, error) {
	if _, err := s.bookingRepo.GetByID(ctx, bookingID); err != nil {
		return nil, s.mapStorageError(err, "Events")
	}

	events, err := s.eventRepo.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("%w: Events - list events: %v", ErrInternal, err)
	}

	return models.FromDomainEventList(events), nil
}

// Approve подтверждает pending бронирование (pending -> confirmed)
//
// Если pending бронирования не занимают вместимость, слоты резервируются
// здесь; отказ по вместимости оставляет бронирование в pending.
func (s *Service) Approve(ctx context.Context, id int64) (*models.BookingResponse, error) {
	var result *domain.Booking

	err := s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		booking, err := s.bookingRepo.GetByID(ctx, id)
		if err != nil {
			return s.mapStorageError(err, "Approve")
		}

		if !booking.CanBeApproved() {
			return domain.NewInvalidTransition(booking.Status, "approve")
		}

		if !s.pendingHoldsCapacity {
			entry, err := s.catalog.Get(booking.ServiceID)
			if err != nil {
				return fmt.Errorf("%w: Approve - resolve service: %v", ErrInternal, err)
			}
			if _, err := s.reservations.ReserveInTx(ctx, entry, booking.StartDate, booking.EndDate, booking.ID, nil); err != nil {
				return err
			}
		}

		if err := s.bookingRepo.UpdateStatus(ctx, id, domain.StatusConfirmed, booking.Version); err != nil {
			return s.mapStorageError(err, "Approve")
		}

		result, err = s.finishTransition(ctx, id, domain.EventBookingApproved, map[string]interface{}{
			"from": string(booking.Status),
			"to":   string(domain.StatusConfirmed),
		})
		return err
	})
	if err != nil {
		return nil, s.mapTxError(err, "Approve")
	}

	s.logger.Info("Approve: booking %d confirmed", id)
	return models.FromDomainBooking(result), nil
}

// Reject отклоняет pending бронирование (pending -> cancelled)
// Зарезервированные слоты освобождаются в той же транзакции
func (s *Service) Reject(ctx context.Context, id int64, req *models.RejectBookingRequest) (*models.BookingResponse, error) {
	if err := validateReason(req.Reason); err != nil {
		return nil, err
	}

	var result *domain.Booking

	err := s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		booking, err := s.bookingRepo.GetByID(ctx, id)
		if err != nil {
			return s.mapStorageError(err, "Reject")
		}

		if !booking.CanBeRejected() {
			return domain.NewInvalidTransition(booking.Status, "reject")
		}

		if err := s.reservations.ReleaseInTx(ctx, booking.ID); err != nil {
			return fmt.Errorf("%w: Reject - release capacity: %v", ErrInternal, err)
		}

		if err := s.bookingRepo.Cancel(ctx, id, req.Reason, booking.Version); err != nil {
			return s.mapStorageError(err, "Reject")
		}

		result, err = s.finishTransition(ctx, id, domain.EventBookingRejected, map[string]interface{}{
			"from":   string(booking.Status),
			"to":     string(domain.StatusCancelled),
			"reason": req.Reason,
		})
		return err
	})
	if err != nil {
		return nil, s.mapTxError(err, "Reject")
	}

	s.logger.Info("Reject: booking %d rejected", id)
	return models.FromDomainBooking(result), nil
}

// Cancel отменяет бронирование (pending|confirmed -> cancelled)
//
// Владелец не может отменить подтвержденное бронирование в день начала
// или позже; администратору отмена доступна на любую дату.
func (s *Service) Cancel(ctx context.Context, id int64, req *models.CancelBookingRequest) (*models.BookingResponse, error) {
	actorRole, err := models.ToDomainActorRole(req.ActorRole)
	if err != nil {
		return nil, fmt.Errorf("%w: Cancel - %v", ErrInvalidInput, err)
	}
	if err := validateReason(req.CancellationReason); err != nil {
		return nil, err
	}

	var result *domain.Booking

	err = s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		booking, err := s.bookingRepo.GetByID(ctx, id)
		if err != nil {
			return s.mapStorageError(err, "Cancel")
		}

		if !booking.CanBeCancelled() {
			return domain.NewInvalidTransition(booking.Status, "cancel")
		}

		if actorRole == domain.ActorOwner && booking.Status == domain.StatusConfirmed {
			today := types.DateOf(s.timeProvider.Now())
			if !today.Before(booking.StartDate) {
				return domain.NewInvalidTransition(booking.Status, "cancel on or after the start date")
			}
		}

		if err := s.reservations.ReleaseInTx(ctx, booking.ID); err != nil {
			return fmt.Errorf("%w: Cancel - release capacity: %v", ErrInternal, err)
		}

		if err := s.bookingRepo.Cancel(ctx, id, req.CancellationReason, booking.Version); err != nil {
			return s.mapStorageError(err, "Cancel")
		}

		result, err = s.finishTransition(ctx, id, domain.EventBookingCancelled, map[string]interface{}{
			"from":      string(booking.Status),
			"to":        string(domain.StatusCancelled),
			"actorRole": string(actorRole),
			"reason":    req.CancellationReason,
		})
		return err
	})
	if err != nil {
		return nil, s.mapTxError(err, "Cancel")
	}

	s.logger.Info("Cancel: booking %d cancelled by %s", id, actorRole)
	return models.FromDomainBooking(result), nil
}

// Complete завершает подтвержденное бронирование (confirmed -> completed)
// Переход допустим только после полного истечения окна услуги
func (s *Service) Complete(ctx context.Context, id int64) (*models.BookingResponse, error) {
	var result *domain.Booking

	err := s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		booking, err := s.bookingRepo.GetByID(ctx, id)
		if err != nil {
			return s.mapStorageError(err, "Complete")
		}

		if !booking.CanBeCompleted() {
			return domain.NewInvalidTransition(booking.Status, "complete")
		}

		// Окно услуги должно полностью истечь: endDate < today
		// (для однодневных услуг endDate равен startDate)
		today := types.DateOf(s.timeProvider.Now())
		if !booking.EndDate.Before(today) {
			return domain.NewInvalidTransition(booking.Status, "complete before the stay has ended")
		}

		if err := s.reservations.ReleaseInTx(ctx, booking.ID); err != nil {
			return fmt.Errorf("%w: Complete - release capacity: %v", ErrInternal, err)
		}

		if err := s.bookingRepo.UpdateStatus(ctx, id, domain.StatusCompleted, booking.Version); err != nil {
			return s.mapStorageError(err, "Complete")
		}

		result, err = s.finishTransition(ctx, id, domain.EventBookingCompleted, map[string]interface{}{
			"from": string(booking.Status),
			"to":   string(domain.StatusCompleted),
		})
		return err
	})
	if err != nil {
		return nil, s.mapTxError(err, "Complete")
	}

	s.logger.Info("Complete: booking %d completed", id)
	return models.FromDomainBooking(result), nil
}

// finishTransition записывает событие перехода и перечитывает бронирование
// Вызывается внутри транзакции после успешного изменения статуса
func (s *Service) finishTransition(ctx context.Context, id int64, eventType domain.EventType, payload map[string]interface{}) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapStorageError(err, "finishTransition")
	}

	event := domain.NewBookingEvent(id, eventType, s.timeProvider.Now(), payload)
	if _, err := s.eventRepo.Insert(ctx, event); err != nil {
		return nil, fmt.Errorf("%w: finishTransition - insert event: %v", ErrInternal, err)
	}

	return booking, nil
}

// mapStorageError конвертирует ошибки хранилища в ошибки сервиса
func (s *Service) mapStorageError(err error, method string) error {
	switch {
	case errors.Is(err, storage.ErrBookingNotFound):
		return fmt.Errorf("%w: %s", ErrBookingNotFound, method)
	case errors.Is(err, storage.ErrVersionConflict):
		return fmt.Errorf("%w: %s", ErrConcurrentModification, method)
	default:
		return fmt.Errorf("%w: %s - storage: %v", ErrInternal, method, err)
	}
}

// mapTxError пропускает доменные и сервисные ошибки, конвертирует
// исчерпание retry в ErrConcurrentModification, остальное - в ErrInternal
func (s *Service) mapTxError(err error, method string) error {
	switch {
	case errors.Is(err, ErrBookingNotFound),
		errors.Is(err, ErrConcurrentModification),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrInternal),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrCapacityExceeded),
		errors.Is(err, reservations.ErrReservationTimeout):
		return err
	case errors.Is(err, txmanager.ErrSerializationFailure):
		s.logger.Warn("%s: serializable retries exhausted for booking transition", method)
		return fmt.Errorf("%w: %s", ErrConcurrentModification, method)
	default:
		return fmt.Errorf("%w: %s - transaction: %v", ErrInternal, method, err)
	}
}

func validateReason(reason string) error {
	if len(reason) > domain.MaxCancellationReasonLength {
		return fmt.Errorf("%w: cancellation reason exceeds %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}
	return nil
}
