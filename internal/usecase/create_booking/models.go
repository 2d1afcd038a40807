package create_booking

import (
	"time"

	"github.com/m04kA/PetCare-BookingService/internal/domain"
	"github.com/m04kA/PetCare-BookingService/pkg/types"
)

// Request модель запроса на создание бронирования
type Request struct {
	OwnerID   int64      // ID владельца питомца
	PetID     int64      // ID питомца
	ServiceID string     // Идентификатор услуги из каталога
	StartDate types.Date // Первый занимаемый день
	EndDate   types.Date // Конец полуинтервала; для однодневных услуг равен StartDate

	RequiresPickup bool              // Требуется ли трансфер питомца
	PickupAddress  *string           // Адрес забора (обязателен при RequiresPickup)
	PickupTime     *types.TimeString // Время забора (обязательно при RequiresPickup)
	DropoffAddress *string           // Адрес возврата (опционально)
	DropoffTime    *types.TimeString // Время возврата (опционально)
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID        int64
	OwnerID   int64
	PetID     int64
	ServiceID string
	StartDate types.Date
	EndDate   types.Date

	RequiresPickup bool
	PickupAddress  *string
	PickupTime     *types.TimeString
	DropoffAddress *string
	DropoffTime    *types.TimeString

	Status           string
	PriceMinor       int64
	ConfirmationCode string

	// Денормализованные данные питомца
	PetName *string

	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

func toResponse(b *domain.Booking) *Response {
	return &Response{
		ID:               b.ID,
		OwnerID:          b.OwnerID,
		PetID:            b.PetID,
		ServiceID:        b.ServiceID,
		StartDate:        b.StartDate,
		EndDate:          b.EndDate,
		RequiresPickup:   b.RequiresPickup,
		PickupAddress:    b.PickupAddress,
		PickupTime:       b.PickupTime,
		DropoffAddress:   b.DropoffAddress,
		DropoffTime:      b.DropoffTime,
		Status:           string(b.Status),
		PriceMinor:       b.PriceMinor,
		ConfirmationCode: b.ConfirmationCode,
		PetName:          b.PetName,
		Version:          b.Version,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}
