// Package events реализует хранение событий жизненного цикла бронирований
//
// Таблица booking_events — outbox для внешней доставки уведомлений:
// движок только записывает события, доставкой занимается коллаборатор.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/PetCare-BookingService/internal/domain"
	"github.com/m04kA/PetCare-BookingService/pkg/dbmetrics"
	"github.com/m04kA/PetCare-BookingService/pkg/psqlbuilder"
)

// Переиспользуем интерфейсы из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor

// Repository репозиторий событий бронирований
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория событий
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Insert записывает событие
// Вызывается в той же транзакции, что и переход состояния: событие
// фиксируется тогда и только тогда, когда переход зафиксирован
func (r *Repository) Insert(ctx context.Context, event *domain.BookingEvent) (*domain.BookingEvent, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: Insert - marshal payload: %v", ErrEncodePayload, err)
	}

	query, args, err := psqlbuilder.Insert("booking_events").
		Columns("booking_id", "event_type", "occurred_at", "payload").
		Values(event.BookingID, event.EventType, event.OccurredAt, payload).
		Suffix("RETURNING id").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Insert - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&event.ID); err != nil {
		return nil, fmt.Errorf("%w: Insert - execute insert: %v", ErrExecQuery, err)
	}

	return event, nil
}

// ListByBooking возвращает события бронирования в порядке возникновения
func (r *Repository) ListByBooking(ctx context.Context, bookingID int64) ([]*domain.BookingEvent, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "booking_id", "event_type", "occurred_at", "payload").
		From("booking_events").
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("occurred_at ASC, id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListByBooking - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByBooking - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	bookingEvents := make([]*domain.BookingEvent, 0)
	for rows.Next() {
		var event domain.BookingEvent
		var payload []byte

		if err := rows.Scan(&event.ID, &event.BookingID, &event.EventType, &event.OccurredAt, &payload); err != nil {
			return nil, fmt.Errorf("%w: ListByBooking - scan event: %v", ErrScanRow, err)
		}

		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &event.Payload); err != nil {
				return nil, fmt.Errorf("%w: ListByBooking - unmarshal payload: %v", ErrScanRow, err)
			}
		}

		bookingEvents = append(bookingEvents, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByBooking - rows error: %v", ErrScanRow, err)
	}

	return bookingEvents, nil
}
