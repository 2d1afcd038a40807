package models

import (
	"errors"
	"time"

	"github.com/m04kA/PetCare-BookingService/internal/domain"
	"github.com/m04kA/PetCare-BookingService/pkg/types"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")

	// ErrInvalidActorRole возвращается при некорректной роли инициатора
	ErrInvalidActorRole = errors.New("invalid actor role")
)

// Request модели

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	ActorRole          string `json:"actorRole"` // owner | admin
	CancellationReason string `json:"cancellationReason"`
}

// RejectBookingRequest запрос на отклонение бронирования администратором
type RejectBookingRequest struct {
	Reason string `json:"reason"`
}

// ListBookingsRequest запрос на получение списка бронирований
type ListBookingsRequest struct {
	OwnerID   *int64      `json:"ownerId,omitempty"`
	ServiceID *string     `json:"serviceId,omitempty"`
	Status    *string     `json:"status,omitempty"`
	DateFrom  *types.Date `json:"dateFrom,omitempty"`
	DateTo    *types.Date `json:"dateTo,omitempty"`
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListBookingsRequest) ToDomainFilter() (domain.BookingsFilter, error) {
	filter := domain.BookingsFilter{
		OwnerID:   r.OwnerID,
		ServiceID: r.ServiceID,
		DateFrom:  r.DateFrom,
		DateTo:    r.DateTo,
	}

	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID        int64  `json:"id"`
	OwnerID   int64  `json:"ownerId"`
	PetID     int64  `json:"petId"`
	ServiceID string `json:"serviceId"`
	StartDate string `json:"startDate"` // "2025-01-10"
	EndDate   string `json:"endDate"`

	RequiresPickup bool    `json:"requiresPickup"`
	PickupAddress  *string `json:"pickupAddress,omitempty"`
	PickupTime     *string `json:"pickupTime,omitempty"` // "10:00"
	DropoffAddress *string `json:"dropoffAddress,omitempty"`
	DropoffTime    *string `json:"dropoffTime,omitempty"`

	Status           string `json:"status"`
	PriceMinor       int64  `json:"priceMinor"`
	ConfirmationCode string `json:"confirmationCode"`

	// Денормализованные данные
	PetName *string `json:"petName,omitempty"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// BookingEventResponse ответ с событием бронирования
type BookingEventResponse struct {
	ID         int64                  `json:"id"`
	BookingID  int64                  `json:"bookingId"`
	EventType  string                 `json:"eventType"`
	OccurredAt time.Time              `json:"occurredAt"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
}

// BookingEventListResponse ответ со списком событий
type BookingEventListResponse struct {
	Events []BookingEventResponse `json:"events"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:                 b.ID,
		OwnerID:            b.OwnerID,
		PetID:              b.PetID,
		ServiceID:          b.ServiceID,
		StartDate:          b.StartDate.String(),
		EndDate:            b.EndDate.String(),
		RequiresPickup:     b.RequiresPickup,
		PickupAddress:      b.PickupAddress,
		DropoffAddress:     b.DropoffAddress,
		Status:             string(b.Status),
		PriceMinor:         b.PriceMinor,
		ConfirmationCode:   b.ConfirmationCode,
		PetName:            b.PetName,
		CancellationReason: b.CancellationReason,
		Version:            b.Version,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}

	if b.PickupTime != nil {
		s := b.PickupTime.String()
		resp.PickupTime = &s
	}
	if b.DropoffTime != nil {
		s := b.DropoffTime.String()
		resp.DropoffTime = &s
	}
	if b.CancelledAt != nil {
		cancelledStr := b.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, b := range bookings {
		if bookingResp := FromDomainBooking(b); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}

// FromDomainEventList конвертирует список событий в DTO
func FromDomainEventList(events []*domain.BookingEvent) *BookingEventListResponse {
	resp := &BookingEventListResponse{
		Events: make([]BookingEventResponse, 0, len(events)),
	}

	for _, e := range events {
		resp.Events = append(resp.Events, BookingEventResponse{
			ID:         e.ID,
			BookingID:  e.BookingID,
			EventType:  string(e.EventType),
			OccurredAt: e.OccurredAt,
			Payload:    e.Payload,
		})
	}

	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(status)

	validStatuses := []domain.BookingStatus{
		domain.StatusPending,
		domain.StatusConfirmed,
		domain.StatusCompleted,
		domain.StatusCancelled,
	}

	for _, valid := range validStatuses {
		if s == valid {
			return s, nil
		}
	}

	return "", ErrInvalidStatus
}

// ToDomainActorRole конвертирует строку в domain.ActorRole с валидацией
func ToDomainActorRole(role string) (domain.ActorRole, error) {
	r := domain.ActorRole(role)

	if r == domain.ActorOwner || r == domain.ActorAdmin {
		return r, nil
	}

	return "", ErrInvalidActorRole
}
