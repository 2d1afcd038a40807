package domain

import "time"

// EventType тип события жизненного цикла бронирования
type EventType string

const (
	EventBookingCreated     EventType = "booking_created"
	EventBookingApproved    EventType = "booking_approved"
	EventBookingRejected    EventType = "booking_rejected"
	EventBookingCancelled   EventType = "booking_cancelled"
	EventBookingCompleted   EventType = "booking_completed"
	EventBookingRescheduled EventType = "booking_rescheduled"
)

// BookingEvent запись о совершенном переходе состояния
//
// Доставка (email/SMS/in-app) — внешний коллаборатор; контракт движка:
// ровно одно событие на каждый успешный переход, ни одного на отклоненный.
type BookingEvent struct {
	ID         int64
	BookingID  int64
	EventType  EventType
	OccurredAt time.Time
	Payload    map[string]interface{}
}

// NewBookingEvent создает событие для успешного перехода
func NewBookingEvent(bookingID int64, eventType EventType, occurredAt time.Time, payload map[string]interface{}) *BookingEvent {
	if payload == nil {
		payload = map[string]interface{}{}
	}
	return &BookingEvent{
		BookingID:  bookingID,
		EventType:  eventType,
		OccurredAt: occurredAt,
		Payload:    payload,
	}
}
