package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/PetCare-BookingService/internal/domain"
	"github.com/m04kA/PetCare-BookingService/internal/service/reservations"
	"github.com/m04kA/PetCare-BookingService/pkg/txmanager"
	"github.com/m04kA/PetCare-BookingService/pkg/types"
)

// UseCase use case для создания бронирования
type UseCase struct {
	bookingRepo  BookingRepository
	eventRepo    EventRepository
	reservations ReservationManager
	petClient    PetServiceClient
	txManager    TransactionManager
	catalog      domain.Catalog

	// pendingHoldsCapacity определяет, резервируются ли слоты при создании
	// или только при подтверждении
	pendingHoldsCapacity bool

	// reservationTimeout ограничивает время атомарного резервирования
	reservationTimeout time.Duration

	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	eventRepo EventRepository,
	reservationManager ReservationManager,
	petClient PetServiceClient,
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
		petClient:            petClient,
		txManager:            txManager,
		catalog:              catalog,
		pendingHoldsCapacity: pendingHoldsCapacity,
		reservationTimeout:   reservationTimeout,
		timeProvider:         &RealTimeProvider{},
		logger:               logger,
	}
}

// Execute выполняет use case создания бронирования
//
// Проверка вместимости и вставка слотов выполняются в одной сериализуемой
// транзакции вместе с записью бронирования: конкурентные запросы на последнее
// место не могут пройти оба.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: owner=%d, pet=%d, service=%s, dates=[%s, %s)",
		req.OwnerID, req.PetID, req.ServiceID, req.StartDate, req.EndDate)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Услуга из каталога
	entry, err := uc.catalog.Get(req.ServiceID)
	if err != nil {
		uc.logger.Warn("CreateBooking: service %q not found in catalog", req.ServiceID)
		return nil, fmt.Errorf("%w: %q", ErrUnknownService, req.ServiceID)
	}

	// 3. Нормализация и проверка диапазона дат
	// Для flat_rate услуг конец принудительно равен началу
	endDate, err := domain.ValidateRange(entry, req.StartDate, req.EndDate)
	if err != nil {
		uc.logger.Warn("CreateBooking: invalid date range: %v", err)
		return nil, err
	}

	today := types.DateOf(uc.timeProvider.Now())
	if err := validateDateNotInPast(req.StartDate, today); err != nil {
		uc.logger.Warn("CreateBooking: start date %s is in the past", req.StartDate)
		return nil, err
	}

	// 4. Цена фиксируется на момент создания
	price, err := domain.CalculatePrice(entry, req.StartDate, endDate)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to calculate price: %v", err)
		return nil, fmt.Errorf("%w: failed to calculate price: %v", ErrInternal, err)
	}

	// 5. Профиль питомца для денормализации
	// Недоступность сервиса профилей не блокирует бронирование
	var petName *string
	if pet, err := uc.petClient.GetPetWithGracefulDegradation(ctx, req.PetID); err != nil {
		uc.logger.Warn("CreateBooking: pet service degraded for pet=%d: %v", req.PetID, err)
	} else if pet != nil {
		petName = &pet.Name
	}

	confirmationCode := uuid.NewString()

	var result *domain.Booking

	// 6. Атомарное создание с резервированием вместимости
	txCtx, cancel := context.WithTimeout(ctx, uc.reservationTimeout)
	defer cancel()

	err = uc.txManager.DoSerializable(txCtx, func(txCtx context.Context) error {
		booking := &domain.Booking{
			OwnerID:          req.OwnerID,
			PetID:            req.PetID,
			ServiceID:        req.ServiceID,
			StartDate:        req.StartDate,
			EndDate:          endDate,
			RequiresPickup:   req.RequiresPickup,
			PickupAddress:    req.PickupAddress,
			PickupTime:       req.PickupTime,
			DropoffAddress:   req.DropoffAddress,
			DropoffTime:      req.DropoffTime,
			Status:           domain.StatusPending,
			PriceMinor:       price,
			ConfirmationCode: confirmationCode,
			PetName:          petName,
		}

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		if uc.pendingHoldsCapacity {
			if _, err := uc.reservations.ReserveInTx(txCtx, entry, created.StartDate, created.EndDate, created.ID, nil); err != nil {
				return err
			}
		} else {
			// Слоты займет подтверждение; здесь только ранний отказ заведомо
			// невыполнимых запросов
			eval, err := uc.reservations.EvaluateInTx(txCtx, entry, created.StartDate, created.EndDate, nil)
			if err != nil {
				return fmt.Errorf("%w: failed to evaluate availability: %v", ErrInternal, err)
			}
			if !eval.Available {
				return &domain.CapacityError{ServiceID: entry.ServiceID, ConflictDates: eval.ConflictDates}
			}
		}

		event := domain.NewBookingEvent(created.ID, domain.EventBookingCreated, uc.timeProvider.Now(), map[string]interface{}{
			"serviceId":        created.ServiceID,
			"startDate":        created.StartDate.String(),
			"endDate":          created.EndDate.String(),
			"priceMinor":       created.PriceMinor,
			"confirmationCode": created.ConfirmationCode,
		})
		if _, err := uc.eventRepo.Insert(txCtx, event); err != nil {
			uc.logger.Error("CreateBooking: failed to insert event: %v", err)
			return fmt.Errorf("%w: failed to insert event: %v", ErrInternal, err)
		}

		result = created
		return nil
	})
	if err != nil {
		return nil, uc.mapTxError(err)
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%d, code=%s", result.ID, result.ConfirmationCode)

	return toResponse(result), nil
}

// mapTxError пропускает доменные ошибки, конвертирует таймауты транзакции
// в ErrReservationTimeout: никаких частичных изменений при этом не остается
func (uc *UseCase) mapTxError(err error) error {
	switch {
	case errors.Is(err, domain.ErrCapacityExceeded),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrInternal):
		return err
	case errors.Is(err, txmanager.ErrTxTimeout), errors.Is(err, context.DeadlineExceeded):
		uc.logger.Warn("CreateBooking: reservation timed out")
		return reservations.ErrReservationTimeout
	case errors.Is(err, txmanager.ErrSerializationFailure):
		uc.logger.Warn("CreateBooking: serializable retries exhausted")
		return reservations.ErrReservationTimeout
	default:
		return fmt.Errorf("%w: transaction failed: %v", ErrInternal, err)
	}
}
