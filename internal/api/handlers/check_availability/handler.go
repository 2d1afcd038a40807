package check_availability

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/PetCare-BookingService/internal/api/handlers"
	"github.com/m04kA/PetCare-BookingService/internal/domain"
	usecase "github.com/m04kA/PetCare-BookingService/internal/usecase/check_availability"
)

const (
	msgInvalidQuery     = "некорректные параметры запроса"
	msgUnknownService   = "услуга не найдена в каталоге"
	msgInvalidDateRange = "некорректный диапазон дат"
)

type Handler struct {
	useCase CheckAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase CheckAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/services/{serviceId}/availability
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	serviceID := vars["serviceId"]

	req, err := parseQuery(serviceID, r.URL.Query())
	if err != nil {
		h.logger.Warn("GET /services/{id}/availability - Invalid query: %v", err)
		handlers.RespondBadRequest(w, msgInvalidQuery)
		return
	}

	resp, err := h.useCase.Execute(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUnknownService):
			h.logger.Warn("GET /services/{id}/availability - Unknown service: %s", serviceID)
			handlers.RespondNotFound(w, msgUnknownService)

		case errors.Is(err, domain.ErrInvalidRange), errors.Is(err, usecase.ErrInvalidInput):
			h.logger.Warn("GET /services/{id}/availability - Invalid range: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDateRange)

		default:
			h.logger.Error("GET /services/{id}/availability - Failed to check availability: service=%s, error=%v",
				serviceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /services/{id}/availability - Availability checked: service=%s, available=%t",
		serviceID, resp.Available)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(resp))
}
