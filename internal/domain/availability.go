package domain

import (
	"fmt"

	"github.com/m04kA/PetCare-BookingService/pkg/types"
)

// DayCounts количество занятых слотов по датам
type DayCounts map[types.Date]int

// Evaluation результат проверки доступности диапазона дат
type Evaluation struct {
	Available bool
	Unlimited bool
	// RemainingMin минимальный остаток вместимости по всем датам диапазона
	// (для сообщений вида "осталось N мест"); 0 для безлимитных услуг
	RemainingMin int
	// ConflictDates даты, на которых вместимость исчерпана
	ConflictDates []types.Date
}

// ValidateRange проверяет диапазон дат для услуги
//
// Для per_night услуг требуется непустой интервал (end строго позже start),
// для flat_rate конец принудительно равен началу. Возвращает нормализованный
// конец диапазона.
func ValidateRange(entry *ServiceCatalogEntry, start, end types.Date) (types.Date, error) {
	if start.IsZero() {
		return types.Date{}, fmt.Errorf("%w: start date is required", ErrInvalidRange)
	}

	if entry.PricingMode == PricingFlatRate {
		// Для однодневных услуг конец диапазона всегда совпадает с началом
		return start, nil
	}

	if end.IsZero() {
		return types.Date{}, fmt.Errorf("%w: end date is required for service %q", ErrInvalidRange, entry.ServiceID)
	}
	if !end.After(start) {
		return types.Date{}, fmt.Errorf("%w: end date %s must be after start date %s",
			ErrInvalidRange, end, start)
	}

	return end, nil
}

// EvaluateAvailability проверяет, помещается ли диапазон [start, end)
// в оставшуюся вместимость услуги
//
// Чистая функция без побочных эффектов: counts — снимок журнала вместимости
// (уже без учета исключаемого бронирования при переносе). Безопасно вызывать
// и для предварительной проверки, и внутри атомарного резервирования.
func EvaluateAvailability(entry *ServiceCatalogEntry, start, end types.Date, counts DayCounts) (*Evaluation, error) {
	normalizedEnd, err := ValidateRange(entry, start, end)
	if err != nil {
		return nil, err
	}

	if entry.IsUnlimited() {
		return &Evaluation{
			Available: true,
			Unlimited: true,
		}, nil
	}

	eval := &Evaluation{
		Available:    true,
		RemainingMin: entry.CapacityPerDay,
	}

	for _, date := range OccupiedDates(start, normalizedEnd) {
		remaining := entry.CapacityPerDay - counts[date]
		if remaining <= 0 {
			eval.Available = false
			eval.ConflictDates = append(eval.ConflictDates, date)
			remaining = 0
		}
		if remaining < eval.RemainingMin {
			eval.RemainingMin = remaining
		}
	}

	return eval, nil
}
