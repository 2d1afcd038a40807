package approve_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/PetCare-BookingService/internal/api/handlers"
	"github.com/m04kA/PetCare-BookingService/internal/api/middleware"
	"github.com/m04kA/PetCare-BookingService/internal/domain"
	"github.com/m04kA/PetCare-BookingService/internal/service/bookings"
	"github.com/m04kA/PetCare-BookingService/internal/service/reservations"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgForbidden          = "подтверждение доступно только администратору"
	msgNotFound           = "бронирование не найдено"
	msgCannotApprove      = "бронирование не может быть подтверждено"
	msgCapacityExceeded   = "нет свободных мест на даты бронирования"
	msgConcurrentUpdate   = "бронирование изменено конкурентно, повторите запрос"
	msgReservationTimeout = "не удалось зарезервировать место, попробуйте позже"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/bookings/{bookingId}/approve
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	if !middleware.IsAdmin(r.Context()) {
		h.logger.Warn("PATCH /bookings/{id}/approve - Non-admin actor")
		handlers.RespondForbidden(w, msgForbidden)
		return
	}

	vars := mux.Vars(r)
	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /bookings/{id}/approve - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	booking, err := h.service.Approve(r.Context(), bookingID)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("PATCH /bookings/{id}/approve - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, domain.ErrInvalidTransition):
			h.logger.Warn("PATCH /bookings/{id}/approve - Invalid transition: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondConflict(w, msgCannotApprove)

		case errors.Is(err, domain.ErrCapacityExceeded):
			h.logger.Info("PATCH /bookings/{id}/approve - Capacity exceeded: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgCapacityExceeded)

		case errors.Is(err, bookings.ErrConcurrentModification):
			h.logger.Warn("PATCH /bookings/{id}/approve - Concurrent modification: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgConcurrentUpdate)

		case errors.Is(err, reservations.ErrReservationTimeout):
			h.logger.Warn("PATCH /bookings/{id}/approve - Reservation timeout: booking_id=%d", bookingID)
			handlers.RespondServiceUnavailable(w, msgReservationTimeout)

		default:
			h.logger.Error("PATCH /bookings/{id}/approve - Failed to approve: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /bookings/{id}/approve - Booking approved: booking_id=%d", bookingID)
	handlers.RespondJSON(w, http.StatusOK, booking)
}
