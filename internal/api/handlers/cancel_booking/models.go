package cancel_booking

import (
	"github.com/m04kA/PetCare-BookingService/internal/domain"
	"github.com/m04kA/PetCare-BookingService/internal/service/bookings/models"
)

// CancelBookingRequest HTTP request model
type CancelBookingRequest struct {
	CancellationReason *string `json:"cancellationReason,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
// Роль инициатора берется из контекста запроса, а не из тела
func (r *CancelBookingRequest) ToServiceRequest(actorRole domain.ActorRole) *models.CancelBookingRequest {
	reason := ""
	if r.CancellationReason != nil {
		reason = *r.CancellationReason
	}

	return &models.CancelBookingRequest{
		ActorRole:          string(actorRole),
		CancellationReason: reason,
	}
}
