package check_availability

import (
	"github.com/m04kA/PetCare-BookingService/pkg/types"
)

// Request модель запроса на проверку доступности
type Request struct {
	ServiceID string     // Идентификатор услуги из каталога
	StartDate types.Date // Первый запрашиваемый день
	EndDate   types.Date // Конец полуинтервала; для однодневных услуг равен StartDate
}

// Response модель ответа с доступностью по датам
type Response struct {
	ServiceID string     // Идентификатор услуги
	StartDate types.Date // Начало диапазона
	EndDate   types.Date // Нормализованный конец диапазона

	Available bool // Доступен ли весь диапазон целиком
	Unlimited bool // Услуга без ограничения вместимости

	// RemainingMin минимальный остаток по всем датам диапазона;
	// nil для безлимитных услуг
	RemainingMin *int

	Days []DayAvailability // Разбивка по датам
}

// DayAvailability доступность на один календарный день
type DayAvailability struct {
	Date      types.Date
	Occupied  int  // Занято слотов
	Remaining *int // Остаток; nil для безлимитных услуг
	Available bool
}
