package create_booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/PetCare-BookingService/internal/domain"
	"github.com/m04kA/PetCare-BookingService/internal/integrations/petservice"
	"github.com/m04kA/PetCare-BookingService/internal/service/reservations"
	"github.com/m04kA/PetCare-BookingService/pkg/types"
)

type fakeBookingRepo struct {
	nextID  int64
	created []*domain.Booking
}

func (f *fakeBookingRepo) Create(_ context.Context, booking *domain.Booking) (*domain.Booking, error) {
	f.nextID++
	stored := *booking
	stored.ID = f.nextID
	stored.Version = 1
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	f.created = append(f.created, &stored)
	return &stored, nil
}

type fakeEventRepo struct {
	events []*domain.BookingEvent
}

func (f *fakeEventRepo) Insert(_ context.Context, event *domain.BookingEvent) (*domain.BookingEvent, error) {
	stored := *event
	stored.ID = int64(len(f.events) + 1)
	f.events = append(f.events, &stored)
	return &stored, nil
}

// fakeReservations контролирует исход проверки и резервирования вместимости
type fakeReservations struct {
	reserveCalls  []int64
	evaluateCalls int
	capacityErr   *domain.CapacityError
}

func (f *fakeReservations) EvaluateInTx(_ context.Context, entry *domain.ServiceCatalogEntry, start, end types.Date, _ *int64) (*domain.Evaluation, error) {
	f.evaluateCalls++
	if f.capacityErr != nil {
		return &domain.Evaluation{Available: false, ConflictDates: f.capacityErr.ConflictDates}, nil
	}
	return &domain.Evaluation{Available: true}, nil
}

func (f *fakeReservations) ReserveInTx(_ context.Context, entry *domain.ServiceCatalogEntry, start, end types.Date, bookingID int64, _ *int64) (*reservations.Token, error) {
	if f.capacityErr != nil {
		return nil, f.capacityErr
	}
	f.reserveCalls = append(f.reserveCalls, bookingID)
	return &reservations.Token{ServiceID: entry.ServiceID, BookingID: bookingID}, nil
}

type fakePetClient struct {
	pet *petservice.Pet
	err error
}

func (f *fakePetClient) GetPetWithGracefulDegradation(_ context.Context, _ int64) (*petservice.Pet, error) {
	return f.pet, f.err
}

type passTxManager struct {
	err error
}

func (p *passTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	if p.err != nil {
		return p.err
	}
	return fn(ctx)
}

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type usecaseFixture struct {
	usecase      *UseCase
	bookingRepo  *fakeBookingRepo
	eventRepo    *fakeEventRepo
	reservations *fakeReservations
	petClient    *fakePetClient
	txManager    *passTxManager
	clock        *fixedClock
}

func newFixture(pendingHoldsCapacity bool) *usecaseFixture {
	catalog, err := domain.NewCatalog([]*domain.ServiceCatalogEntry{
		{ServiceID: "boarding", Name: "Передержка", CapacityPerDay: 10, PricingMode: domain.PricingPerNight, RateMinor: 150000},
		{ServiceID: "grooming", Name: "Груминг", CapacityPerDay: 0, PricingMode: domain.PricingFlatRate, RateMinor: 120000},
	})
	if err != nil {
		panic(err)
	}

	fixture := &usecaseFixture{
		bookingRepo:  &fakeBookingRepo{},
		eventRepo:    &fakeEventRepo{},
		reservations: &fakeReservations{},
		petClient:    &fakePetClient{pet: &petservice.Pet{ID: 200, OwnerID: 100, Name: "Барсик"}},
		txManager:    &passTxManager{},
		clock:        &fixedClock{now: time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)},
	}
	fixture.usecase = NewUseCase(
		fixture.bookingRepo,
		fixture.eventRepo,
		fixture.reservations,
		fixture.petClient,
		fixture.txManager,
		catalog,
		pendingHoldsCapacity,
		3*time.Second,
		nopLogger{},
	)
	fixture.usecase.timeProvider = fixture.clock
	return fixture
}

func validRequest() *Request {
	return &Request{
		OwnerID:   100,
		PetID:     200,
		ServiceID: "boarding",
		StartDate: types.NewDate(2025, time.March, 15),
		EndDate:   types.NewDate(2025, time.March, 18),
	}
}

func TestExecuteCreatesPendingBooking(t *testing.T) {
	fixture := newFixture(true)

	resp, err := fixture.usecase.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, int64(450000), resp.PriceMinor, "3 ночи по ставке per_night")
	assert.NotEmpty(t, resp.ConfirmationCode)
	require.NotNil(t, resp.PetName)
	assert.Equal(t, "Барсик", *resp.PetName)

	// Pending занимает слоты сразу
	assert.Equal(t, []int64{1}, fixture.reservations.reserveCalls)

	require.Len(t, fixture.eventRepo.events, 1)
	event := fixture.eventRepo.events[0]
	assert.Equal(t, domain.EventBookingCreated, event.EventType)
	assert.Equal(t, resp.ConfirmationCode, event.Payload["confirmationCode"])
	assert.Equal(t, fixture.clock.now, event.OccurredAt)
}

func TestExecuteFlatRateNormalizesEndDate(t *testing.T) {
	fixture := newFixture(true)

	req := validRequest()
	req.ServiceID = "grooming"
	req.EndDate = types.Date{}

	resp, err := fixture.usecase.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, resp.EndDate.Equal(req.StartDate))
	assert.Equal(t, int64(120000), resp.PriceMinor)
}

func TestExecuteValidation(t *testing.T) {
	fixture := newFixture(true)

	address := "ул. Ленина, 1"
	pickupTime := types.TimeString("10:30")
	badTime := types.TimeString("25:99")

	tests := []struct {
		name    string
		mutate  func(req *Request)
		wantErr error
	}{
		{
			name:    "owner id required",
			mutate:  func(req *Request) { req.OwnerID = 0 },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "pet id required",
			mutate:  func(req *Request) { req.PetID = -1 },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "service id required",
			mutate:  func(req *Request) { req.ServiceID = "" },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "start date required",
			mutate:  func(req *Request) { req.StartDate = types.Date{} },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "unknown service",
			mutate:  func(req *Request) { req.ServiceID = "walking" },
			wantErr: ErrUnknownService,
		},
		{
			name:    "start date in the past",
			mutate:  func(req *Request) { req.StartDate = types.NewDate(2025, time.March, 9); req.EndDate = types.NewDate(2025, time.March, 11) },
			wantErr: ErrInvalidDate,
		},
		{
			name:    "end date not after start",
			mutate:  func(req *Request) { req.EndDate = req.StartDate },
			wantErr: domain.ErrInvalidRange,
		},
		{
			name:    "pickup requested without address",
			mutate:  func(req *Request) { req.RequiresPickup = true; req.PickupTime = &pickupTime },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "pickup requested without time",
			mutate:  func(req *Request) { req.RequiresPickup = true; req.PickupAddress = &address },
			wantErr: ErrInvalidInput,
		},
		{
			name: "invalid pickup time format",
			mutate: func(req *Request) {
				req.RequiresPickup = true
				req.PickupAddress = &address
				req.PickupTime = &badTime
			},
			wantErr: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			_, err := fixture.usecase.Execute(context.Background(), req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Empty(t, fixture.bookingRepo.created, "невалидные запросы не доходят до хранилища")
}

func TestExecuteBookingForToday(t *testing.T) {
	fixture := newFixture(true)

	req := validRequest()
	req.StartDate = types.DateOf(fixture.clock.now)
	req.EndDate = req.StartDate.AddDays(1)

	_, err := fixture.usecase.Execute(context.Background(), req)
	assert.NoError(t, err)
}

func TestExecuteCapacityConflict(t *testing.T) {
	fixture := newFixture(true)
	fixture.reservations.capacityErr = &domain.CapacityError{
		ServiceID:     "boarding",
		ConflictDates: []types.Date{types.NewDate(2025, time.March, 16)},
	}

	_, err := fixture.usecase.Execute(context.Background(), validRequest())
	require.ErrorIs(t, err, domain.ErrCapacityExceeded)

	var capErr *domain.CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Len(t, capErr.ConflictDates, 1)
	assert.Empty(t, fixture.eventRepo.events)
}

func TestExecuteEvaluatesOnlyWhenApprovalReserves(t *testing.T) {
	fixture := newFixture(false)

	_, err := fixture.usecase.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	// Слоты займет подтверждение, создание лишь проверяет доступность
	assert.Empty(t, fixture.reservations.reserveCalls)
	assert.Equal(t, 1, fixture.reservations.evaluateCalls)
}

func TestExecuteRejectsDoomedRequestEarly(t *testing.T) {
	fixture := newFixture(false)
	fixture.reservations.capacityErr = &domain.CapacityError{
		ServiceID:     "boarding",
		ConflictDates: []types.Date{types.NewDate(2025, time.March, 15)},
	}

	_, err := fixture.usecase.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
}

func TestExecutePetServiceDegradation(t *testing.T) {
	fixture := newFixture(true)
	fixture.petClient.pet = nil
	fixture.petClient.err = errors.New("connection refused")

	resp, err := fixture.usecase.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Nil(t, resp.PetName, "недоступность сервиса профилей не блокирует бронирование")
}

func TestExecuteReservationTimeout(t *testing.T) {
	fixture := newFixture(true)
	fixture.txManager.err = context.DeadlineExceeded

	_, err := fixture.usecase.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, reservations.ErrReservationTimeout)
}

func TestExecuteUniqueConfirmationCodes(t *testing.T) {
	fixture := newFixture(true)

	first, err := fixture.usecase.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	second, err := fixture.usecase.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.NotEqual(t, first.ConfirmationCode, second.ConfirmationCode)
}
