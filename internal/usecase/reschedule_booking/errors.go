package reschedule_booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("reschedule_booking: booking not found")

	// ErrInvalidDate возвращается, когда новая дата начала в прошлом
	ErrInvalidDate = errors.New("reschedule_booking: new booking date is in the past")

	// ErrConcurrentModification возвращается при конкурентном изменении бронирования
	ErrConcurrentModification = errors.New("reschedule_booking: booking was modified concurrently")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("reschedule_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reschedule_booking: internal error")
)
