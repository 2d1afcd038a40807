package reservations

import "errors"

var (
	// ErrReservationTimeout возвращается, когда резервирование не уложилось
	// в отведенное время; никаких частичных изменений при этом не остается
	ErrReservationTimeout = errors.New("reservations: reservation timed out")

	// ErrInternal возвращается при внутренних ошибках менеджера резерваций
	ErrInternal = errors.New("reservations: internal error")
)
