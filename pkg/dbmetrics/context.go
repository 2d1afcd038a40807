package dbmetrics

import "context"

type executorCtxKey struct{}

// WithExecutor кладет активную транзакцию в контекст
// Репозитории достают её через GetExecutor и выполняют запросы внутри транзакции
func WithExecutor(ctx context.Context, tx TxExecutor) context.Context {
	return context.WithValue(ctx, executorCtxKey{}, tx)
}

// GetExecutor возвращает транзакцию из контекста, если она есть,
// иначе fallback (обычно сам *DB или *sql.DB)
func GetExecutor(ctx context.Context, fallback DBExecutor) DBExecutor {
	if tx, ok := ctx.Value(executorCtxKey{}).(TxExecutor); ok {
		return tx
	}
	return fallback
}

// IsInTransaction возвращает true, если в контексте есть активная транзакция
func IsInTransaction(ctx context.Context) bool {
	_, ok := ctx.Value(executorCtxKey{}).(TxExecutor)
	return ok
}

type readOnlyCtxKey struct{}

// WithReadOnly помечает транзакцию в контексте как read-only
// Внутри таких транзакций репозитории не запрашивают блокировки строк:
// PostgreSQL отклоняет SELECT ... FOR UPDATE в read-only транзакции (25006)
func WithReadOnly(ctx context.Context) context.Context {
	return context.WithValue(ctx, readOnlyCtxKey{}, true)
}

// IsReadOnly возвращает true, если транзакция в контексте read-only
func IsReadOnly(ctx context.Context) bool {
	readOnly, ok := ctx.Value(readOnlyCtxKey{}).(bool)
	return ok && readOnly
}
