package reject_booking

import (
	"github.com/m04kA/PetCare-BookingService/internal/service/bookings/models"
)

// RejectBookingRequest HTTP request model
type RejectBookingRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *RejectBookingRequest) ToServiceRequest() *models.RejectBookingRequest {
	reason := ""
	if r.Reason != nil {
		reason = *r.Reason
	}

	return &models.RejectBookingRequest{
		Reason: reason,
	}
}
