package events

import "errors"

var (
	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("events.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("events.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("events.repository: failed to scan row")

	// ErrEncodePayload возвращается при ошибке сериализации payload события
	ErrEncodePayload = errors.New("events.repository: failed to encode payload")
)
