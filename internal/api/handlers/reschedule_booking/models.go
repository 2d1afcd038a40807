package reschedule_booking

import (
	"fmt"
	"time"

	usecase "github.com/m04kA/PetCare-BookingService/internal/usecase/reschedule_booking"
	"github.com/m04kA/PetCare-BookingService/pkg/types"
)

// RescheduleBookingRequest HTTP request model
type RescheduleBookingRequest struct {
	NewStartDate string `json:"newStartDate"`         // "2025-01-10"
	NewEndDate   string `json:"newEndDate,omitempty"` // опционально для однодневных услуг

	// NewPickupDetails новые данные трансфера; отсутствие поля сохраняет текущие
	NewPickupDetails *PickupDetailsRequest `json:"newPickupDetails,omitempty"`
}

// PickupDetailsRequest данные трансфера в HTTP-запросе
type PickupDetailsRequest struct {
	RequiresPickup bool    `json:"requiresPickup"`
	PickupAddress  *string `json:"pickupAddress,omitempty"`
	PickupTime     *string `json:"pickupTime,omitempty"` // "10:00"
	DropoffAddress *string `json:"dropoffAddress,omitempty"`
	DropoffTime    *string `json:"dropoffTime,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP request в модель use case
func (r *RescheduleBookingRequest) ToUseCaseRequest(bookingID int64) (*usecase.Request, error) {
	startDate, err := types.ParseDate(r.NewStartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid newStartDate: %w", err)
	}

	endDate := startDate
	if r.NewEndDate != "" {
		endDate, err = types.ParseDate(r.NewEndDate)
		if err != nil {
			return nil, fmt.Errorf("invalid newEndDate: %w", err)
		}
	}

	req := &usecase.Request{
		BookingID:    bookingID,
		NewStartDate: startDate,
		NewEndDate:   endDate,
	}

	if r.NewPickupDetails != nil {
		pickup := usecase.PickupDetails{
			RequiresPickup: r.NewPickupDetails.RequiresPickup,
			PickupAddress:  r.NewPickupDetails.PickupAddress,
			DropoffAddress: r.NewPickupDetails.DropoffAddress,
		}
		if r.NewPickupDetails.PickupTime != nil {
			ts, err := types.NewTimeStringFromString(*r.NewPickupDetails.PickupTime)
			if err != nil {
				return nil, fmt.Errorf("invalid pickupTime: %w", err)
			}
			pickup.PickupTime = &ts
		}
		if r.NewPickupDetails.DropoffTime != nil {
			ts, err := types.NewTimeStringFromString(*r.NewPickupDetails.DropoffTime)
			if err != nil {
				return nil, fmt.Errorf("invalid dropoffTime: %w", err)
			}
			pickup.DropoffTime = &ts
		}
		req.NewPickupDetails = &pickup
	}

	return req, nil
}

// RescheduleBookingResponse HTTP response model
type RescheduleBookingResponse struct {
	ID         int64     `json:"id"`
	OwnerID    int64     `json:"ownerId"`
	PetID      int64     `json:"petId"`
	ServiceID  string    `json:"serviceId"`
	StartDate  string    `json:"startDate"`
	EndDate    string    `json:"endDate"`
	Status     string    `json:"status"`
	PriceMinor int64     `json:"priceMinor"`
	Version    int64     `json:"version"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *usecase.Response) *RescheduleBookingResponse {
	return &RescheduleBookingResponse{
		ID:         resp.ID,
		OwnerID:    resp.OwnerID,
		PetID:      resp.PetID,
		ServiceID:  resp.ServiceID,
		StartDate:  resp.StartDate.String(),
		EndDate:    resp.EndDate.String(),
		Status:     resp.Status,
		PriceMinor: resp.PriceMinor,
		Version:    resp.Version,
		UpdatedAt:  resp.UpdatedAt,
	}
}
