package create_booking

import "errors"

var (
	// ErrUnknownService возвращается, когда serviceId отсутствует в каталоге
	ErrUnknownService = errors.New("create_booking: unknown service")

	// ErrInvalidDate возвращается, когда дата начала в прошлом
	ErrInvalidDate = errors.New("create_booking: booking date is in the past")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
