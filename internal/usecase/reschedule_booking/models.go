package reschedule_booking

import (
	"time"

	"github.com/m04kA/PetCare-BookingService/internal/domain"
	"github.com/m04kA/PetCare-BookingService/pkg/types"
)

// Request модель запроса на перенос бронирования
type Request struct {
	BookingID    int64
	NewStartDate types.Date // Новый первый занимаемый день
	NewEndDate   types.Date // Новый конец полуинтервала; для однодневных услуг равен NewStartDate

	// NewPickupDetails новые данные трансфера; nil сохраняет текущие
	NewPickupDetails *PickupDetails
}

// PickupDetails данные трансфера питомца
type PickupDetails struct {
	RequiresPickup bool
	PickupAddress  *string
	PickupTime     *types.TimeString
	DropoffAddress *string
	DropoffTime    *types.TimeString
}

// Response модель ответа с перенесенным бронированием
type Response struct {
	ID        int64
	OwnerID   int64
	PetID     int64
	ServiceID string
	StartDate types.Date
	EndDate   types.Date

	// Status после переноса: подтвержденное бронирование возвращается
	// в pending и требует повторного подтверждения
	Status     string
	PriceMinor int64

	Version   int64
	UpdatedAt time.Time
}

func toResponse(b *domain.Booking) *Response {
	return &Response{
		ID:         b.ID,
		OwnerID:    b.OwnerID,
		PetID:      b.PetID,
		ServiceID:  b.ServiceID,
		StartDate:  b.StartDate,
		EndDate:    b.EndDate,
		Status:     string(b.Status),
		PriceMinor: b.PriceMinor,
		Version:    b.Version,
		UpdatedAt:  b.UpdatedAt,
	}
}
