package domain

import (
	"fmt"

	"github.com/m04kA/PetCare-BookingService/pkg/types"
)

// CalculatePrice вычисляет цену бронирования в минорных единицах валюты
//
// per_night: rate * nights, где nights = EndDate - StartDate в целых днях
// flat_rate: rate, независимо от дат
//
// Пересчитывается при создании и переносе; никогда при approve/reject/cancel/complete.
func CalculatePrice(entry *ServiceCatalogEntry, start, end types.Date) (int64, error) {
	if entry.RateMinor < 0 {
		return 0, fmt.Errorf("%w: service %q: negative rate", ErrInvalidServiceConfig, entry.ServiceID)
	}

	switch entry.PricingMode {
	case PricingFlatRate:
		return entry.RateMinor, nil

	case PricingPerNight:
		nights := start.DaysUntil(end)
		if nights <= 0 {
			return 0, fmt.Errorf("%w: service %q: non-positive nights (%d)",
				ErrInvalidServiceConfig, entry.ServiceID, nights)
		}
		return entry.RateMinor * int64(nights), nil

	default:
		return 0, fmt.Errorf("%w: service %q: unknown pricing mode %q",
			ErrInvalidServiceConfig, entry.ServiceID, entry.PricingMode)
	}
}
