package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/PetCare-BookingService/internal/api/handlers"
	"github.com/m04kA/PetCare-BookingService/internal/api/middleware"
	"github.com/m04kA/PetCare-BookingService/internal/domain"
	"github.com/m04kA/PetCare-BookingService/internal/service/reservations"
	usecase "github.com/m04kA/PetCare-BookingService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgUnknownService     = "услуга не найдена в каталоге"
	msgInvalidDateRange   = "некорректный диапазон дат"
	msgDateInPast         = "дата бронирования в прошлом"
	msgCapacityExceeded   = "нет свободных мест на выбранные даты"
	msgReservationTimeout = "не удалось зарезервировать место, попробуйте позже"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	ucReq, err := req.ToUseCaseRequest(ownerID)
	if err != nil {
		h.logger.Warn("POST /bookings - Invalid request fields: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	resp, err := h.useCase.Execute(r.Context(), ucReq)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUnknownService):
			h.logger.Warn("POST /bookings - Unknown service: %s", req.ServiceID)
			handlers.RespondNotFound(w, msgUnknownService)

		case errors.Is(err, usecase.ErrInvalidDate):
			h.logger.Warn("POST /bookings - Date in past: owner_id=%d", ownerID)
			handlers.RespondBadRequest(w, msgDateInPast)

		case errors.Is(err, domain.ErrInvalidRange), errors.Is(err, usecase.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDateRange)

		case errors.Is(err, domain.ErrCapacityExceeded):
			h.logger.Info("POST /bookings - Capacity exceeded: service=%s, owner_id=%d", req.ServiceID, ownerID)
			handlers.RespondConflict(w, msgCapacityExceeded)

		case errors.Is(err, reservations.ErrReservationTimeout):
			h.logger.Warn("POST /bookings - Reservation timeout: service=%s, owner_id=%d", req.ServiceID, ownerID)
			handlers.RespondServiceUnavailable(w, msgReservationTimeout)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: owner_id=%d, error=%v", ownerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, owner_id=%d", resp.ID, ownerID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(resp))
}
