package create_booking

import (
	"fmt"

	"github.com/m04kA/PetCare-BookingService/internal/domain"
	"github.com/m04kA/PetCare-BookingService/pkg/types"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.OwnerID <= 0 {
		return fmt.Errorf("%w: ownerID must be positive", ErrInvalidInput)
	}

	if req.PetID <= 0 {
		return fmt.Errorf("%w: petID must be positive", ErrInvalidInput)
	}

	if req.ServiceID == "" {
		return fmt.Errorf("%w: serviceID is required", ErrInvalidInput)
	}

	if req.StartDate.IsZero() {
		return fmt.Errorf("%w: startDate is required", ErrInvalidInput)
	}

	if err := validatePickupDetails(req); err != nil {
		return err
	}

	return nil
}

// validatePickupDetails проверяет данные трансфера
// Адрес и время забора обязательны, когда трансфер запрошен
func validatePickupDetails(req *Request) error {
	if !req.RequiresPickup {
		return nil
	}

	if req.PickupAddress == nil || *req.PickupAddress == "" {
		return fmt.Errorf("%w: pickupAddress is required when pickup is requested", ErrInvalidInput)
	}
	if len(*req.PickupAddress) > domain.MaxAddressLength {
		return fmt.Errorf("%w: pickupAddress exceeds %d characters", ErrInvalidInput, domain.MaxAddressLength)
	}

	if req.PickupTime == nil || req.PickupTime.IsZero() {
		return fmt.Errorf("%w: pickupTime is required when pickup is requested", ErrInvalidInput)
	}
	if err := req.PickupTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid pickupTime format: %v", ErrInvalidInput, err)
	}

	if req.DropoffAddress != nil && len(*req.DropoffAddress) > domain.MaxAddressLength {
		return fmt.Errorf("%w: dropoffAddress exceeds %d characters", ErrInvalidInput, domain.MaxAddressLength)
	}

	if req.DropoffTime != nil {
		if err := req.DropoffTime.Validate(); err != nil {
			return fmt.Errorf("%w: invalid dropoffTime format: %v", ErrInvalidInput, err)
		}
	}

	return nil
}

// validateDateNotInPast проверяет, что первый занимаемый день не в прошлом
// Бронирование на сегодня допустимо
func validateDateNotInPast(start types.Date, today types.Date) error {
	if start.Before(today) {
		return ErrInvalidDate
	}
	return nil
}
