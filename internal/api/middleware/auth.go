package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/m04kA/PetCare-BookingService/internal/api/handlers"
	"github.com/m04kA/PetCare-BookingService/internal/domain"
)

type contextKey string

const (
	userIDKey   contextKey = "userID"
	userRoleKey contextKey = "userRole"

	headerUserID   = "X-User-ID"
	headerUserRole = "X-User-Role"

	msgMissingUserID = "отсутствует заголовок X-User-ID"
	msgInvalidUserID = "некорректный заголовок X-User-ID"
	msgInvalidRole   = "некорректный заголовок X-User-Role"
)

// Auth извлекает идентификатор и роль пользователя из заголовков запроса
//
// Аутентификация выполняется на API gateway; сервис доверяет заголовкам
// и использует их для проверки предусловий операций.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userIDStr := r.Header.Get(headerUserID)
		if userIDStr == "" {
			handlers.RespondUnauthorized(w, msgMissingUserID)
			return
		}

		userID, err := strconv.ParseInt(userIDStr, 10, 64)
		if err != nil || userID <= 0 {
			handlers.RespondUnauthorized(w, msgInvalidUserID)
			return
		}

		role := domain.ActorOwner
		if roleStr := r.Header.Get(headerUserRole); roleStr != "" {
			switch domain.ActorRole(roleStr) {
			case domain.ActorOwner, domain.ActorAdmin:
				role = domain.ActorRole(roleStr)
			default:
				handlers.RespondUnauthorized(w, msgInvalidRole)
				return
			}
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		ctx = context.WithValue(ctx, userRoleKey, role)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID возвращает ID пользователя из контекста запроса
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok
}

// GetUserRole возвращает роль пользователя из контекста запроса
func GetUserRole(ctx context.Context) (domain.ActorRole, bool) {
	role, ok := ctx.Value(userRoleKey).(domain.ActorRole)
	return role, ok
}

// IsAdmin сообщает, действует ли инициатор запроса как администратор
func IsAdmin(ctx context.Context) bool {
	role, ok := GetUserRole(ctx)
	return ok && role == domain.ActorAdmin
}
