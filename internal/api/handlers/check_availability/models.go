package check_availability

import (
	"fmt"
	"net/url"

	usecase "github.com/m04kA/PetCare-BookingService/internal/usecase/check_availability"
	"github.com/m04kA/PetCare-BookingService/pkg/types"
)

// parseQuery разбирает query-параметры запроса доступности
func parseQuery(serviceID string, query url.Values) (*usecase.Request, error) {
	startStr := query.Get("startDate")
	if startStr == "" {
		return nil, fmt.Errorf("startDate is required")
	}

	startDate, err := types.ParseDate(startStr)
	if err != nil {
		return nil, fmt.Errorf("invalid startDate: %w", err)
	}

	endDate := startDate
	if endStr := query.Get("endDate"); endStr != "" {
		endDate, err = types.ParseDate(endStr)
		if err != nil {
			return nil, fmt.Errorf("invalid endDate: %w", err)
		}
	}

	return &usecase.Request{
		ServiceID: serviceID,
		StartDate: startDate,
		EndDate:   endDate,
	}, nil
}

// AvailabilityResponse HTTP response model
type AvailabilityResponse struct {
	ServiceID string `json:"serviceId"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`

	Available    bool `json:"available"`
	Unlimited    bool `json:"unlimited"`
	RemainingMin *int `json:"remainingMin,omitempty"`

	Days []DayAvailability `json:"days"`
}

// DayAvailability доступность на один календарный день
type DayAvailability struct {
	Date      string `json:"date"`
	Occupied  int    `json:"occupied"`
	Remaining *int   `json:"remaining,omitempty"`
	Available bool   `json:"available"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *usecase.Response) *AvailabilityResponse {
	out := &AvailabilityResponse{
		ServiceID:    resp.ServiceID,
		StartDate:    resp.StartDate.String(),
		EndDate:      resp.EndDate.String(),
		Available:    resp.Available,
		Unlimited:    resp.Unlimited,
		RemainingMin: resp.RemainingMin,
		Days:         make([]DayAvailability, 0, len(resp.Days)),
	}

	for _, day := range resp.Days {
		out.Days = append(out.Days, DayAvailability{
			Date:      day.Date.String(),
			Occupied:  day.Occupied,
			Remaining: day.Remaining,
			Available: day.Available,
		})
	}

	return out
}
