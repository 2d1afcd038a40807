package list_bookings

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/m04kA/PetCare-BookingService/internal/service/bookings/models"
	"github.com/m04kA/PetCare-BookingService/pkg/types"
)

// parseQuery разбирает query-параметры фильтра списка бронирований
func parseQuery(query url.Values) (*models.ListBookingsRequest, error) {
	req := &models.ListBookingsRequest{}

	if v := query.Get("ownerId"); v != "" {
		ownerID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ownerId: %w", err)
		}
		req.OwnerID = &ownerID
	}

	if v := query.Get("serviceId"); v != "" {
		req.ServiceID = &v
	}

	if v := query.Get("status"); v != "" {
		req.Status = &v
	}

	if v := query.Get("dateFrom"); v != "" {
		date, err := types.ParseDate(v)
		if err != nil {
			return nil, fmt.Errorf("invalid dateFrom: %w", err)
		}
		req.DateFrom = &date
	}

	if v := query.Get("dateTo"); v != "" {
		date, err := types.ParseDate(v)
		if err != nil {
			return nil, fmt.Errorf("invalid dateTo: %w", err)
		}
		req.DateTo = &date
	}

	return req, nil
}
