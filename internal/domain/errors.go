package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/PetCare-BookingService/pkg/types"
)

var (
	// ErrInvalidRange возвращается при некорректном диапазоне дат
	// (конец раньше начала, либо нулевая длина там, где требуется интервал)
	ErrInvalidRange = errors.New("domain: invalid date range")

	// ErrUnknownService возвращается, когда serviceId отсутствует в каталоге
	ErrUnknownService = errors.New("domain: unknown service")

	// ErrInvalidServiceConfig возвращается при некорректной конфигурации каталога
	ErrInvalidServiceConfig = errors.New("domain: invalid service config")

	// ErrCapacityExceeded возвращается, когда на одну или несколько дат
	// диапазона не осталось свободной вместимости
	ErrCapacityExceeded = errors.New("domain: capacity exceeded")

	// ErrInvalidTransition возвращается при недопустимом переходе статуса
	ErrInvalidTransition = errors.New("domain: invalid state transition")
)

// CapacityError описывает отказ по вместимости с перечнем конфликтных дат
// Разворачивается в ErrCapacityExceeded, поэтому errors.Is работает сквозь слои
type CapacityError struct {
	ServiceID     string
	ConflictDates []types.Date
}

// Error реализует интерфейс error
func (e *CapacityError) Error() string {
	dates := make([]string, len(e.ConflictDates))
	for i, d := range e.ConflictDates {
		dates[i] = d.String()
	}
	return fmt.Sprintf("domain: capacity exceeded for service %q on dates: %s",
		e.ServiceID, strings.Join(dates, ", "))
}

// Unwrap позволяет errors.Is(err, ErrCapacityExceeded)
func (e *CapacityError) Unwrap() error {
	return ErrCapacityExceeded
}

// InvalidTransitionError описывает отклоненный переход состояния
type InvalidTransitionError struct {
	From      BookingStatus
	Attempted string
}

// Error реализует интерфейс error
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("domain: cannot %s booking in status %q", e.Attempted, e.From)
}

// Unwrap позволяет errors.Is(err, ErrInvalidTransition)
func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// NewInvalidTransition создает ошибку недопустимого перехода
func NewInvalidTransition(from BookingStatus, attempted string) *InvalidTransitionError {
	return &InvalidTransitionError{From: from, Attempted: attempted}
}
