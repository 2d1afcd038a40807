// Package reservations реализует атомарное резервирование вместимости
//
// Инвариант: для любых конкурентных Reserve по одной паре (услуга, дата)
// сумма успешных резерваций никогда не превышает capacityPerDay. Достигается
// выполнением проверки и записи в одной сериализуемой транзакции
// (см. pkg/txmanager): конфликтующая пара транзакций не фиксируется вместе,
// проигравшая повторяется и видит уже занятые слоты.
package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/PetCare-BookingService/internal/domain"
	"github.com/m04kA/PetCare-BookingService/pkg/txmanager"
	"github.com/m04kA/PetCare-BookingService/pkg/types"
)

// Token ссылка на набор слотов журнала, занятых одной резервацией
// Release по токену освобождает ровно эти слоты
type Token struct {
	ServiceID string
	BookingID int64
	Dates     []types.Date
}

// Manager менеджер резерваций вместимости
type Manager struct {
	ledgerRepo LedgerRepository
	txManager  TransactionManager
	timeout    time.Duration
	logger     Logger
}

// NewManager создает новый менеджер резерваций
// timeout ограничивает длительность каждой операции Reserve/Release
func NewManager(ledgerRepo LedgerRepository, txManager TransactionManager, timeout time.Duration, logger Logger) *Manager {
	return &Manager{
		ledgerRepo: ledgerRepo,
		txManager:  txManager,
		timeout:    timeout,
		logger:     logger,
	}
}

// EvaluateInTx проверяет доступность диапазона внутри уже открытой транзакции
//
// Не мутирует журнал; безопасно вызывать повторно. excludeBookingID исключает
// собственные слоты бронирования при переносе.
func (m *Manager) EvaluateInTx(ctx context.Context, entry *domain.ServiceCatalogEntry, start, end types.Date, excludeBookingID *int64) (*domain.Evaluation, error) {
	normalizedEnd, err := domain.ValidateRange(entry, start, end)
	if err != nil {
		return nil, err
	}

	dates := domain.OccupiedDates(start, normalizedEnd)

	var counts domain.DayCounts
	if !entry.IsUnlimited() {
		counts, err = m.ledgerRepo.CountByDays(ctx, entry.ServiceID, dates, excludeBookingID)
		if err != nil {
			return nil, fmt.Errorf("%w: EvaluateInTx - count ledger days: %v", ErrInternal, err)
		}
	}

	return domain.EvaluateAvailability(entry, start, normalizedEnd, counts)
}

// ReserveInTx резервирует диапазон внутри уже открытой транзакции
//
// Проверка и запись слотов образуют одну атомарную единицу с остальными
// изменениями транзакции вызывающего (вставка бронирования, событие).
// При исчерпанной вместимости возвращает *domain.CapacityError до любой мутации.
func (m *Manager) ReserveInTx(ctx context.Context, entry *domain.ServiceCatalogEntry, start, end types.Date, bookingID int64, excludeBookingID *int64) (*Token, error) {
	eval, err := m.EvaluateInTx(ctx, entry, start, end, excludeBookingID)
	if err != nil {
		return nil, err
	}

	if !eval.Available {
		return nil, &domain.CapacityError{
			ServiceID:     entry.ServiceID,
			ConflictDates: eval.ConflictDates,
		}
	}

	normalizedEnd, err := domain.ValidateRange(entry, start, end)
	if err != nil {
		return nil, err
	}
	dates := domain.OccupiedDates(start, normalizedEnd)

	if err := m.ledgerRepo.InsertDates(ctx, entry.ServiceID, bookingID, dates); err != nil {
		return nil, fmt.Errorf("%w: ReserveInTx - insert ledger dates: %v", ErrInternal, err)
	}

	return &Token{
		ServiceID: entry.ServiceID,
		BookingID: bookingID,
		Dates:     dates,
	}, nil
}

// ReleaseInTx освобождает все слоты бронирования внутри открытой транзакции
// Идемпотентна: повторное освобождение — no-op, не ошибка (устойчивость к retry)
func (m *Manager) ReleaseInTx(ctx context.Context, bookingID int64) error {
	released, err := m.ledgerRepo.DeleteByBooking(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("%w: ReleaseInTx - delete ledger rows: %v", ErrInternal, err)
	}

	if released == 0 {
		m.logger.Info("ReleaseInTx: no ledger rows for booking id=%d (already released)", bookingID)
	}

	return nil
}

// Reserve резервирует диапазон в собственной сериализуемой транзакции
// Используется, когда резервирование не совмещено с другими изменениями
// (например, одобрение при политике pending_holds_capacity = false)
func (m *Manager) Reserve(ctx context.Context, entry *domain.ServiceCatalogEntry, start, end types.Date, bookingID int64) (*Token, error) {
	reserveCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	var token *Token
	err := m.txManager.DoSerializable(reserveCtx, func(txCtx context.Context) error {
		var err error
		token, err = m.ReserveInTx(txCtx, entry, start, end, bookingID, nil)
		return err
	})

	if err != nil {
		return nil, m.mapTxError(err)
	}

	return token, nil
}

// Release освобождает слоты по токену в собственной транзакции
func (m *Manager) Release(ctx context.Context, token *Token) error {
	releaseCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	err := m.txManager.DoSerializable(releaseCtx, func(txCtx context.Context) error {
		return m.ReleaseInTx(txCtx, token.BookingID)
	})

	if err != nil {
		return m.mapTxError(err)
	}

	return nil
}

// mapTxError конвертирует ошибки транзакционного слоя в ошибки резервирования
func (m *Manager) mapTxError(err error) error {
	if errors.Is(err, txmanager.ErrTxTimeout) || errors.Is(err, txmanager.ErrSerializationFailure) {
		m.logger.Warn("reservation did not complete in bounded time: %v", err)
		return fmt.Errorf("%w: %v", ErrReservationTimeout, err)
	}
	return err
}
