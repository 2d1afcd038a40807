package petservice

import "errors"

var (
	// ErrPetNotFound возвращается, когда профиль питомца не найден
	ErrPetNotFound = errors.New("pet not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("petservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("petservice client: invalid response")

	// ErrServiceDegraded возвращается при применении graceful degradation
	// Указывает, что PetService недоступен и бронирование создается
	// без денормализованных данных питомца
	ErrServiceDegraded = errors.New("petservice unavailable: graceful degradation applied")
)
