package create_booking

import (
	"fmt"
	"time"

	usecase "github.com/m04kA/PetCare-BookingService/internal/usecase/create_booking"
	"github.com/m04kA/PetCare-BookingService/pkg/types"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	PetID     int64  `json:"petId"`
	ServiceID string `json:"serviceId"`
	StartDate string `json:"startDate"`         // "2025-01-10"
	EndDate   string `json:"endDate,omitempty"` // опционально для однодневных услуг

	RequiresPickup bool    `json:"requiresPickup,omitempty"`
	PickupAddress  *string `json:"pickupAddress,omitempty"`
	PickupTime     *string `json:"pickupTime,omitempty"` // "10:00"
	DropoffAddress *string `json:"dropoffAddress,omitempty"`
	DropoffTime    *string `json:"dropoffTime,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP request в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(ownerID int64) (*usecase.Request, error) {
	startDate, err := types.ParseDate(r.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid startDate: %w", err)
	}

	endDate := startDate
	if r.EndDate != "" {
		endDate, err = types.ParseDate(r.EndDate)
		if err != nil {
			return nil, fmt.Errorf("invalid endDate: %w", err)
		}
	}

	req := &usecase.Request{
		OwnerID:        ownerID,
		PetID:          r.PetID,
		ServiceID:      r.ServiceID,
		StartDate:      startDate,
		EndDate:        endDate,
		RequiresPickup: r.RequiresPickup,
		PickupAddress:  r.PickupAddress,
		DropoffAddress: r.DropoffAddress,
	}

	if r.PickupTime != nil {
		ts, err := types.NewTimeStringFromString(*r.PickupTime)
		if err != nil {
			return nil, fmt.Errorf("invalid pickupTime: %w", err)
		}
		req.PickupTime = &ts
	}
	if r.DropoffTime != nil {
		ts, err := types.NewTimeStringFromString(*r.DropoffTime)
		if err != nil {
			return nil, fmt.Errorf("invalid dropoffTime: %w", err)
		}
		req.DropoffTime = &ts
	}

	return req, nil
}

// CreateBookingResponse HTTP response model
type CreateBookingResponse struct {
	ID        int64  `json:"id"`
	OwnerID   int64  `json:"ownerId"`
	PetID     int64  `json:"petId"`
	ServiceID string `json:"serviceId"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`

	RequiresPickup bool    `json:"requiresPickup"`
	PickupAddress  *string `json:"pickupAddress,omitempty"`
	PickupTime     *string `json:"pickupTime,omitempty"`
	DropoffAddress *string `json:"dropoffAddress,omitempty"`
	DropoffTime    *string `json:"dropoffTime,omitempty"`

	Status           string  `json:"status"`
	PriceMinor       int64   `json:"priceMinor"`
	ConfirmationCode string  `json:"confirmationCode"`
	PetName          *string `json:"petName,omitempty"`

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *usecase.Response) *CreateBookingResponse {
	out := &CreateBookingResponse{
		ID:               resp.ID,
		OwnerID:          resp.OwnerID,
		PetID:            resp.PetID,
		ServiceID:        resp.ServiceID,
		StartDate:        resp.StartDate.String(),
		EndDate:          resp.EndDate.String(),
		RequiresPickup:   resp.RequiresPickup,
		PickupAddress:    resp.PickupAddress,
		DropoffAddress:   resp.DropoffAddress,
		Status:           resp.Status,
		PriceMinor:       resp.PriceMinor,
		ConfirmationCode: resp.ConfirmationCode,
		PetName:          resp.PetName,
		Version:          resp.Version,
		CreatedAt:        resp.CreatedAt,
		UpdatedAt:        resp.UpdatedAt,
	}

	if resp.PickupTime != nil {
		s := resp.PickupTime.String()
		out.PickupTime = &s
	}
	if resp.DropoffTime != nil {
		s := resp.DropoffTime.String()
		out.DropoffTime = &s
	}

	return out
}
