package check_availability

import "errors"

var (
	// ErrUnknownService возвращается, когда serviceId отсутствует в каталоге
	ErrUnknownService = errors.New("check_availability: unknown service")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("check_availability: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("check_availability: internal error")
)
