package booking

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/PetCare-BookingService/internal/domain"
	"github.com/m04kA/PetCare-BookingService/pkg/dbmetrics"
	"github.com/m04kA/PetCare-BookingService/pkg/psqlbuilder"
	"github.com/m04kA/PetCare-BookingService/pkg/types"
)

// bookingColumns полный список колонок таблицы bookings в порядке сканирования
var bookingColumns = []string{
	"id",
	"owner_id",
	"pet_id",
	"service_id",
	"start_date",
	"end_date",
	"requires_pickup",
	"pickup_address",
	"pickup_time",
	"dropoff_address",
	"dropoff_time",
	"status",
	"price_minor",
	"confirmation_code",
	"pet_name",
	"cancellation_reason",
	"cancelled_at",
	"version",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование
// Если в контексте передана активная транзакция (через context.Value), использует её.
//
// Создание с проверкой вместимости всегда должно выполняться в сериализуемой
// транзакции вместе с записью в журнал вместимости — иначе два конкурентных
// запроса могут оба "пройти" проверку на последний свободный слот.
func (r *Repository) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"owner_id",
			"pet_id",
			"service_id",
			"start_date",
			"end_date",
			"requires_pickup",
			"pickup_address",
			"pickup_time",
			"dropoff_address",
			"dropoff_time",
			"status",
			"price_minor",
			"confirmation_code",
			"pet_name",
		).
		Values(
			b.OwnerID,
			b.PetID,
			b.ServiceID,
			b.StartDate,
			b.EndDate,
			b.RequiresPickup,
			b.PickupAddress,
			b.PickupTime,
			b.DropoffAddress,
			b.DropoffTime,
			b.Status,
			b.PriceMinor,
			b.ConfirmationCode,
			b.PetName,
		).
		Suffix("RETURNING id, version, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&b.ID,
		&b.Version,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return b, nil
}

// GetByID получает бронирование по ID
// Внутри транзакции строка блокируется (FOR UPDATE), чтобы переходы состояния
// одного бронирования применялись строго последовательно
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	b, err := r.scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	return b, nil
}

// ListWithFilter получает бронирования с гибкой фильтрацией
//
// Период (DateFrom, DateTo) отбирает бронирования, чьи даты пересекают период:
// start_date <= DateTo AND end_date >= DateFrom.
func (r *Repository) ListWithFilter(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings")

	if filter.OwnerID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"owner_id": *filter.OwnerID})
	}
	if filter.ServiceID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"service_id": *filter.ServiceID})
	}
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.DateFrom != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"end_date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"start_date": *filter.DateTo})
	}

	selectBuilder = selectBuilder.OrderBy("start_date DESC, id DESC")

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListWithFilter - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// UpdateStatus обновляет статус бронирования с проверкой версии
// Несовпадение версии означает конкурентное изменение -> ErrVersionConflict
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus, expectedVersion int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", status).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "version": expectedVersion}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	return r.execVersionGuarded(ctx, executor, id, query, args, "UpdateStatus")
}

// Cancel переводит бронирование в cancelled с указанием причины
// Проверка версии аналогична UpdateStatus
func (r *Repository) Cancel(ctx context.Context, id int64, reason string, expectedVersion int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCancelled).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "version": expectedVersion}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	return r.execVersionGuarded(ctx, executor, id, query, args, "Cancel")
}

// ScheduleUpdate параметры переноса бронирования
type ScheduleUpdate struct {
	StartDate  types.Date
	EndDate    types.Date
	PriceMinor int64

	RequiresPickup bool
	PickupAddress  *string
	PickupTime     *types.TimeString
	DropoffAddress *string
	DropoffTime    *types.TimeString
}

// Reschedule переносит бронирование на новые даты
// Статус сбрасывается в pending независимо от прежнего, цена перезаписывается
func (r *Repository) Reschedule(ctx context.Context, id int64, upd ScheduleUpdate, expectedVersion int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("start_date", upd.StartDate).
		Set("end_date", upd.EndDate).
		Set("price_minor", upd.PriceMinor).
		Set("requires_pickup", upd.RequiresPickup).
		Set("pickup_address", upd.PickupAddress).
		Set("pickup_time", upd.PickupTime).
		Set("dropoff_address", upd.DropoffAddress).
		Set("dropoff_time", upd.DropoffTime).
		Set("status", domain.StatusPending).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "version": expectedVersion}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Reschedule - build update query: %v", ErrBuildQuery, err)
	}

	return r.execVersionGuarded(ctx, executor, id, query, args, "Reschedule")
}

// execVersionGuarded выполняет update с разбором результата version guard
func (r *Repository) execVersionGuarded(ctx context.Context, executor DBExecutor, id int64, query string, args []interface{}, method string) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, method, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, method, err)
	}

	if rowsAffected > 0 {
		return nil
	}

	// Ноль строк: либо бронирования нет, либо версия устарела
	existsQuery, existsArgs, err := psqlbuilder.Select("1").
		From("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build exists query: %v", ErrBuildQuery, method, err)
	}

	var one int
	err = executor.QueryRowContext(ctx, existsQuery, existsArgs...).Scan(&one)
	if err == sql.ErrNoRows {
		return ErrBookingNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: %s - scan exists: %v", ErrScanRow, method, err)
	}

	return ErrVersionConflict
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanBooking сканирует одну строку в модель бронирования
func (r *Repository) scanBooking(row rowScanner) (*domain.Booking, error) {
	var b domain.Booking
	var cancelledAt, createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&b.ID,
		&b.OwnerID,
		&b.PetID,
		&b.ServiceID,
		&b.StartDate,
		&b.EndDate,
		&b.RequiresPickup,
		&b.PickupAddress,
		&b.PickupTime,
		&b.DropoffAddress,
		&b.DropoffTime,
		&b.Status,
		&b.PriceMinor,
		&b.ConfirmationCode,
		&b.PetName,
		&b.CancellationReason,
		&cancelledAt,
		&b.Version,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if cancelledAt.Valid {
		b.CancelledAt = &cancelledAt.Time
	}
	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return &b, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func (r *Repository) scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		b, err := r.scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}
