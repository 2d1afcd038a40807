package reschedule_booking

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
	usecase "github.com/m04kA/PetCare-BookingService/internal/usecase/reschedule_booking"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgNotFound           = "бронирование не найдено"
	msgForbidden          = "доступ запрещен"
	msgCannotReschedule   = "бронирование не может быть перенесено"
	msgInvalidDateRange   = "некорректный диапазон дат"
	msgDateInPast         = "новая дата бронирования в прошлом"
	msgCapacityExceeded   = "нет свободных мест на новые даты"
	msgConcurrentUpdate   = "бронирование изменено конкурентно, повторите запрос"
	msgReservationTimeout = "не удалось зарезервировать место, попробуйте позже"
)

type Handler struct {
	useCase RescheduleBookingUseCase
	service BookingService
	logger  Logger
}

func NewHandler(useCase RescheduleBookingUseCase, service BookingService, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/bookings/{bookingId}/reschedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /bookings/{id}/reschedule - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PATCH /bookings/{id}/reschedule - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req RescheduleBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /bookings/{id}/reschedule - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	ucReq, err := req.ToUseCaseRequest(bookingID)
	if err != nil {
		h.logger.Warn("PATCH /bookings/{id}/reschedule - Invalid request fields: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Владелец переносит только свои бронирования
	if !middleware.IsAdmin(r.Context()) {
		booking, err := h.service.GetByID(r.Context(), bookingID)
		if err != nil {
			if errors.Is(err, bookings.ErrBookingNotFound) {
				h.logger.Warn("PATCH /bookings/{id}/reschedule - Booking not found: booking_id=%d", bookingID)
				handlers.RespondNotFound(w, msgNotFound)
				return
			}
			h.logger.Error("PATCH /bookings/{id}/reschedule - Failed to get booking: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
			return
		}
		if booking.OwnerID != userID {
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Access denied: booking_id=%d, user_id=%d", bookingID, userID)
			handlers.RespondForbidden(w, msgForbidden)
			return
		}
	}

	resp, err := h.useCase.Execute(r.Context(), ucReq)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrBookingNotFound):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, usecase.ErrInvalidDate):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Date in past: booking_id=%d", bookingID)
			handlers.RespondBadRequest(w, msgDateInPast)

		case errors.Is(err, domain.ErrInvalidRange), errors.Is(err, usecase.ErrInvalidInput):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Invalid input: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondBadRequest(w, msgInvalidDateRange)

		case errors.Is(err, domain.ErrInvalidTransition):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Invalid transition: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondConflict(w, msgCannotReschedule)

		case errors.Is(err, domain.ErrCapacityExceeded):
			h.logger.Info("PATCH /bookings/{id}/reschedule - Capacity exceeded: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgCapacityExceeded)

		case errors.Is(err, usecase.ErrConcurrentModification):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Concurrent modification: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgConcurrentUpdate)

		case errors.Is(err, reservations.ErrReservationTimeout):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Reservation timeout: booking_id=%d", bookingID)
			handlers.RespondServiceUnavailable(w, msgReservationTimeout)

		default:
			h.logger.Error("PATCH /bookings/{id}/reschedule - Failed to reschedule: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /bookings/{id}/reschedule - Booking rescheduled: booking_id=%d, user_id=%d", bookingID, userID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(resp))
}
