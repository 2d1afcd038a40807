package reschedule_booking

import (
	"fmt"

	"github.com/m04kA/PetCare-BookingService/internal/domain"
)

// validatePickupDetails проверяет новые данные трансфера
// Адрес и время забора обязательны, когда трансфер запрошен
func validatePickupDetails(details *PickupDetails) error {
	if details == nil || !details.RequiresPickup {
		return nil
	}

	if details.PickupAddress == nil || *details.PickupAddress == "" {
		return fmt.Errorf("%w: pickupAddress is required when pickup is requested", ErrInvalidInput)
	}
	if len(*details.PickupAddress) > domain.MaxAddressLength {
		return fmt.Errorf("%w: pickupAddress exceeds %d characters", ErrInvalidInput, domain.MaxAddressLength)
	}

	if details.PickupTime == nil || details.PickupTime.IsZero() {
		return fmt.Errorf("%w: pickupTime is required when pickup is requested", ErrInvalidInput)
	}
	if err := details.PickupTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid pickupTime format: %v", ErrInvalidInput, err)
	}

	if details.DropoffAddress != nil && len(*details.DropoffAddress) > domain.MaxAddressLength {
		return fmt.Errorf("%w: dropoffAddress exceeds %d characters", ErrInvalidInput, domain.MaxAddressLength)
	}

	if details.DropoffTime != nil {
		if err := details.DropoffTime.Validate(); err != nil {
			return fmt.Errorf("%w: invalid dropoffTime format: %v", ErrInvalidInput, err)
		}
	}

	return nil
}
