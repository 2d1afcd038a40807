// Package txmanager управляет транзакциями БД для репозиториев с метриками
//
// Транзакция передается в репозитории через context (см. pkg/dbmetrics),
// поэтому один и тот же код репозитория работает и в транзакции, и без неё.
package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/m04kA/PetCare-BookingService/pkg/dbmetrics"
)

var (
	// ErrSerializationFailure возвращается, когда сериализуемая транзакция
	// не смогла зафиксироваться за отведенное число попыток
	ErrSerializationFailure = errors.New("txmanager: serialization failure, retries exhausted")

	// ErrTxTimeout возвращается, когда транзакция не уложилась в дедлайн контекста
	ErrTxTimeout = errors.New("txmanager: transaction deadline exceeded")
)

const (
	// maxSerializableAttempts максимальное число попыток сериализуемой транзакции
	maxSerializableAttempts = 5

	// retryBaseDelay базовая задержка между попытками (растет экспоненциально)
	retryBaseDelay = 10 * time.Millisecond
)

// TxBeginner интерфейс для начала транзакций
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error)
}

// TransactionManager выполняет функции внутри транзакций БД
type TransactionManager struct {
	db TxBeginner
}

// NewTransactionManager создает новый transaction manager
func NewTransactionManager(db TxBeginner) *TransactionManager {
	return &TransactionManager{db: db}
}

// Do выполняет fn в транзакции с уровнем изоляции по умолчанию
func (m *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{}, fn)
}

// DoReadOnly выполняет fn в read-only транзакции
func (m *TransactionManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{ReadOnly: true}, fn)
}

// DoSerializable выполняет fn в сериализуемой транзакции
//
// При ошибке сериализации (SQLSTATE 40001) или deadlock (40P01) транзакция
// повторяется с экспоненциальной задержкой, не более maxSerializableAttempts раз.
// Гарантия: либо fn зафиксировалась целиком ровно один раз, либо ни одно
// её изменение не видно снаружи.
func (m *TransactionManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	opts := &sql.TxOptions{Isolation: sql.LevelSerializable}

	var lastErr error
	for attempt := 0; attempt < maxSerializableAttempts; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay << (attempt - 1)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", ErrTxTimeout, ctx.Err())
			}
		}

		err := m.run(ctx, opts, fn)
		if err == nil {
			return nil
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return fmt.Errorf("%w: %v", ErrTxTimeout, err)
		}
		if !isRetryable(err) {
			return err
		}
		lastErr = err
	}

	return fmt.Errorf("%w: last error: %v", ErrSerializationFailure, lastErr)
}

func (m *TransactionManager) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) error {
	tx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("txmanager: begin transaction: %w", err)
	}

	txCtx := dbmetrics.WithExecutor(ctx, tx)
	if opts.ReadOnly {
		txCtx = dbmetrics.WithReadOnly(txCtx)
	}

	if err := fn(txCtx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("txmanager: commit transaction: %w", err)
	}

	return nil
}

// isRetryable возвращает true для ошибок, при которых транзакцию имеет смысл повторить
func isRetryable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// 40001 - serialization_failure, 40P01 - deadlock_detected
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return false
}
