package get_booking

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/PetCare-BookingService/internal/api/middleware"
	"github.com/m04kA/PetCare-BookingService/internal/service/bookings"
	"github.com/m04kA/PetCare-BookingService/internal/service/bookings/models"
)

type fakeService struct {
	booking *models.BookingResponse
	err     error
}

func (f *fakeService) GetByID(_ context.Context, _ int64) (*models.BookingResponse, error) {
	return f.booking, f.err
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newRouter(service *fakeService) http.Handler {
	handler := NewHandler(service, nopLogger{})
	router := mux.NewRouter()
	router.HandleFunc("/api/v1/bookings/{bookingId}", handler.Handle).Methods(http.MethodGet)
	router.Use(middleware.Auth)
	return router
}

func doRequest(t *testing.T, service *fakeService, path, userID, role string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	if role != "" {
		req.Header.Set("X-User-Role", role)
	}
	rec := httptest.NewRecorder()
	newRouter(service).ServeHTTP(rec, req)
	return rec
}

func TestHandleReturnsOwnBooking(t *testing.T) {
	service := &fakeService{booking: &models.BookingResponse{ID: 1, OwnerID: 42, Status: "pending"}}

	rec := doRequest(t, service, "/api/v1/bookings/1", "42", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.BookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, "pending", resp.Status)
}

func TestHandleForbidsForeignBooking(t *testing.T) {
	service := &fakeService{booking: &models.BookingResponse{ID: 1, OwnerID: 42}}

	rec := doRequest(t, service, "/api/v1/bookings/1", "99", "")

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandleAdminSeesAnyBooking(t *testing.T) {
	service := &fakeService{booking: &models.BookingResponse{ID: 1, OwnerID: 42}}

	rec := doRequest(t, service, "/api/v1/bookings/1", "99", "admin")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleNotFound(t *testing.T) {
	service := &fakeService{err: bookings.ErrBookingNotFound}

	rec := doRequest(t, service, "/api/v1/bookings/7", "42", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleInvalidBookingID(t *testing.T) {
	rec := doRequest(t, &fakeService{}, "/api/v1/bookings/abc", "42", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleInternalError(t *testing.T) {
	service := &fakeService{err: errors.New("connection refused")}

	rec := doRequest(t, service, "/api/v1/bookings/1", "42", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
