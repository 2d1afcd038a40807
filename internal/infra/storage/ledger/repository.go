// Package ledger реализует хранение журнала вместимости
//
// Одна строка журнала = один слот, занятый одним бронированием на одну дату.
// Журнал — производное представление над таблицей bookings: его можно в любой
// момент перестроить по бронированиям в нетерминальных статусах (RebuildFromBookings),
// но в рабочем режиме он поддерживается инкрементально.
package ledger

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/PetCare-BookingService/internal/domain"
	"github.com/m04kA/PetCare-BookingService/pkg/dbmetrics"
	"github.com/m04kA/PetCare-BookingService/pkg/psqlbuilder"
	"github.com/m04kA/PetCare-BookingService/pkg/types"
)

// Переиспользуем интерфейсы из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor

// Repository репозиторий журнала вместимости
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория журнала
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// CountByDays возвращает количество занятых слотов услуги по каждой дате
//
// excludeBookingID исключает слоты указанного бронирования (используется при
// переносе, чтобы бронирование не блокировалось собственной старой резервацией).
// Внутри пишущей транзакции найденные строки блокируются (FOR UPDATE);
// фантомные вставки конкурентных резерваций отлавливает сериализуемая изоляция.
// В read-only транзакции блокировка не запрашивается: PostgreSQL отклоняет
// FOR UPDATE в read-only транзакции (25006), а снимку она и не нужна.
func (r *Repository) CountByDays(ctx context.Context, serviceID string, dates []types.Date, excludeBookingID *int64) (domain.DayCounts, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	counts := make(domain.DayCounts, len(dates))
	if len(dates) == 0 {
		return counts, nil
	}

	query, args, err := buildCountByDaysQuery(ctx, serviceID, dates, excludeBookingID)
	if err != nil {
		return nil, fmt.Errorf("%w: CountByDays - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: CountByDays - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var day types.Date
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("%w: CountByDays - scan day: %v", ErrScanRow, err)
		}
		counts[day]++
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: CountByDays - rows error: %v", ErrScanRow, err)
	}

	return counts, nil
}

// buildCountByDaysQuery собирает SQL подсчета занятых слотов
// FOR UPDATE добавляется только внутри пишущей транзакции
func buildCountByDaysQuery(ctx context.Context, serviceID string, dates []types.Date, excludeBookingID *int64) (string, []interface{}, error) {
	selectBuilder := psqlbuilder.Select("day").
		From("capacity_ledger").
		Where(squirrel.Eq{"service_id": serviceID}).
		Where(squirrel.Eq{"day": dates})

	if excludeBookingID != nil {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"booking_id": *excludeBookingID})
	}

	if dbmetrics.IsInTransaction(ctx) && !dbmetrics.IsReadOnly(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	return selectBuilder.ToSql()
}

// InsertDates записывает слоты бронирования в журнал
func (r *Repository) InsertDates(ctx context.Context, serviceID string, bookingID int64, dates []types.Date) error {
	if len(dates) == 0 {
		return nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	insertBuilder := psqlbuilder.Insert("capacity_ledger").
		Columns("service_id", "day", "booking_id")

	for _, day := range dates {
		insertBuilder = insertBuilder.Values(serviceID, day, bookingID)
	}

	query, args, err := insertBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: InsertDates - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: InsertDates - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// DeleteByBooking освобождает все слоты бронирования
// Идемпотентна: повторный вызов не находит строк и не является ошибкой
func (r *Repository) DeleteByBooking(ctx context.Context, bookingID int64) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("capacity_ledger").
		Where(squirrel.Eq{"booking_id": bookingID}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: DeleteByBooking - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteByBooking - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteByBooking - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected, nil
}

// RebuildFromBookings полностью перестраивает журнал по бронированиям
// в указанных статусах
//
// generate_series раскрывает полуинтервал [start_date, end_date) в даты;
// для однодневных бронирований (end_date = start_date) занят один день.
func (r *Repository) RebuildFromBookings(ctx context.Context, statuses []domain.BookingStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	deleteQuery, deleteArgs, err := psqlbuilder.Delete("capacity_ledger").ToSql()
	if err != nil {
		return fmt.Errorf("%w: RebuildFromBookings - build delete query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return fmt.Errorf("%w: RebuildFromBookings - execute delete: %v", ErrExecQuery, err)
	}

	statusStrings := make([]string, len(statuses))
	for i, s := range statuses {
		statusStrings[i] = string(s)
	}

	insertQuery := `
		INSERT INTO capacity_ledger (service_id, day, booking_id)
		SELECT b.service_id, d.day::date, b.id
		FROM bookings b
		CROSS JOIN LATERAL generate_series(
			b.start_date,
			CASE WHEN b.end_date = b.start_date THEN b.start_date
			     ELSE b.end_date - INTERVAL '1 day' END,
			INTERVAL '1 day'
		) AS d(day)
		WHERE b.status = ANY($1)`

	if _, err := executor.ExecContext(ctx, insertQuery, pq.Array(statusStrings)); err != nil {
		return fmt.Errorf("%w: RebuildFromBookings - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}
