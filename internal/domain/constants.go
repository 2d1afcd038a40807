package domain

// ActorRole роль инициатора действия над бронированием
// Авторизация выполняется хост-слоем; движок проверяет только предусловия состояния
type ActorRole string

const (
	ActorOwner ActorRole = "owner"
	ActorAdmin ActorRole = "admin"
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// Business validation constants
const (
	MaxCancellationReasonLength = 500
	MaxAddressLength            = 500
)

// TerminalStatuses список терминальных статусов
// Бронирования в этих статусах не занимают вместимость
var TerminalStatuses = []BookingStatus{
	StatusCompleted,
	StatusCancelled,
}

// NonTerminalStatuses список статусов, занимающих вместимость
// Используется при пересчете журнала вместимости
var NonTerminalStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
}
