package reschedule_booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/PetCare-BookingService/internal/domain"
	storage "github.com/m04kA/PetCare-BookingService/internal/infra/storage/booking"
	"github.com/m04kA/PetCare-BookingService/internal/service/bookings"
	"github.com/m04kA/PetCare-BookingService/internal/service/reservations"
	"github.com/m04kA/PetCare-BookingService/pkg/types"
)

type fakeBookingRepo struct {
	bookings map[int64]*domain.Booking
}

func newFakeBookingRepo(bookings ...*domain.Booking) *fakeBookingRepo {
	repo := &fakeBookingRepo{bookings: make(map[int64]*domain.Booking)}
	for _, b := range bookings {
		copied := *b
		repo.bookings[b.ID] = &copied
	}
	return repo
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	booking, ok := f.bookings[id]
	if !ok {
		return nil, storage.ErrBookingNotFound
	}
	copied := *booking
	return &copied, nil
}

func (f *fakeBookingRepo) ListWithFilter(_ context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	var result []*domain.Booking
	for _, b := range f.bookings {
		if filter.OwnerID != nil && b.OwnerID != *filter.OwnerID {
			continue
		}
		copied := *b
		result = append(result, &copied)
	}
	return result, nil
}

func (f *fakeBookingRepo) UpdateStatus(_ context.Context, id int64, status domain.BookingStatus, expectedVersion int64) error {
	booking, ok := f.bookings[id]
	if !ok {
		return storage.ErrBookingNotFound
	}
	if booking.Version != expectedVersion {
		return storage.ErrVersionConflict
	}
	booking.Status = status
	booking.Version++
	return nil
}

func (f *fakeBookingRepo) Cancel(_ context.Context, id int64, reason string, expectedVersion int64) error {
	booking, ok := f.bookings[id]
	if !ok {
		return storage.ErrBookingNotFound
	}
	if booking.Version != expectedVersion {
		return storage.ErrVersionConflict
	}
	booking.Status = domain.StatusCancelled
	booking.CancellationReason = &reason
	booking.Version++
	return nil
}

func (f *fakeBookingRepo) Reschedule(_ context.Context, id int64, upd storage.ScheduleUpdate, expectedVersion int64) error {
	booking, ok := f.bookings[id]
	if !ok {
		return storage.ErrBookingNotFound
	}
	if booking.Version != expectedVersion {
		return storage.ErrVersionConflict
	}
	booking.StartDate = upd.StartDate
	booking.EndDate = upd.EndDate
	booking.PriceMinor = upd.PriceMinor
	booking.RequiresPickup = upd.RequiresPickup
	booking.PickupAddress = upd.PickupAddress
	booking.PickupTime = upd.PickupTime
	booking.DropoffAddress = upd.DropoffAddress
	booking.DropoffTime = upd.DropoffTime
	// Как и в хранилище, перенос возвращает бронирование в pending
	booking.Status = domain.StatusPending
	booking.Version++
	return nil
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

func (f *fakeEventRepo) ListByBooking(_ context.Context, bookingID int64) ([]*domain.BookingEvent, error) {
	var result []*domain.BookingEvent
	for _, e := range f.events {
		if e.BookingID == bookingID {
			result = append(result, e)
		}
	}
	return result, nil
}

// fakeReservations фиксирует порядок освобождения и резервирования
type fakeReservations struct {
	calls       []string
	capacityErr *domain.CapacityError
}

func (f *fakeReservations) EvaluateInTx(_ context.Context, _ *domain.ServiceCatalogEntry, _, _ types.Date, _ *int64) (*domain.Evaluation, error) {
	f.calls = append(f.calls, "evaluate")
	if f.capacityErr != nil {
		return &domain.Evaluation{Available: false, ConflictDates: f.capacityErr.ConflictDates}, nil
	}
	return &domain.Evaluation{Available: true, RemainingMin: 1}, nil
}

func (f *fakeReservations) ReserveInTx(_ context.Context, entry *domain.ServiceCatalogEntry, start, end types.Date, bookingID int64, _ *int64) (*reservations.Token, error) {
	if f.capacityErr != nil {
		return nil, f.capacityErr
	}
	f.calls = append(f.calls, "reserve")
	return &reservations.Token{ServiceID: entry.ServiceID, BookingID: bookingID}, nil
}

func (f *fakeReservations) ReleaseInTx(_ context.Context, bookingID int64) error {
	f.calls = append(f.calls, "release")
	return nil
}

type passTxManager struct {
	err error
}

func (p *passTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return p.DoSerializable(ctx, fn)
}

func (p *passTxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return p.DoSerializable(ctx, fn)
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
	txManager    *passTxManager
	clock        *fixedClock
}

func newFixture(pendingHoldsCapacity bool, bookings ...*domain.Booking) *usecaseFixture {
	catalog, err := domain.NewCatalog([]*domain.ServiceCatalogEntry{
		{ServiceID: "boarding", Name: "Передержка", CapacityPerDay: 10, PricingMode: domain.PricingPerNight, RateMinor: 150000},
	})
	if err != nil {
		panic(err)
	}

	fixture := &usecaseFixture{
		bookingRepo:  newFakeBookingRepo(bookings...),
		eventRepo:    &fakeEventRepo{},
		reservations: &fakeReservations{},
		txManager:    &passTxManager{},
		clock:        &fixedClock{now: time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)},
	}
	fixture.usecase = NewUseCase(
		fixture.bookingRepo,
		fixture.eventRepo,
		fixture.reservations,
		fixture.txManager,
		catalog,
		pendingHoldsCapacity,
		3*time.Second,
		nopLogger{},
	)
	fixture.usecase.timeProvider = fixture.clock
	return fixture
}

func pendingBooking(id int64) *domain.Booking {
	return &domain.Booking{
		ID:         id,
		OwnerID:    100,
		PetID:      200,
		ServiceID:  "boarding",
		StartDate:  types.NewDate(2025, time.March, 15),
		EndDate:    types.NewDate(2025, time.March, 18),
		Status:     domain.StatusPending,
		PriceMinor: 450000,
		Version:    1,
	}
}

func TestExecuteMovesPendingBooking(t *testing.T) {
	fixture := newFixture(true, pendingBooking(1))

	resp, err := fixture.usecase.Execute(context.Background(), &Request{
		BookingID:    1,
		NewStartDate: types.NewDate(2025, time.March, 20),
		NewEndDate:   types.NewDate(2025, time.March, 22),
	})
	require.NoError(t, err)

	assert.Equal(t, "pending", resp.Status)
	assert.True(t, resp.StartDate.Equal(types.NewDate(2025, time.March, 20)))
	assert.True(t, resp.EndDate.Equal(types.NewDate(2025, time.March, 22)))
	assert.Equal(t, int64(300000), resp.PriceMinor, "цена пересчитана по новому диапазону")

	// Старые слоты освобождаются до резервирования новых, чтобы
	// пересекающиеся диапазоны не конфликтовали сами с собой
	assert.Equal(t, []string{"release", "reserve"}, fixture.reservations.calls)

	require.Len(t, fixture.eventRepo.events, 1)
	event := fixture.eventRepo.events[0]
	assert.Equal(t, domain.EventBookingRescheduled, event.EventType)
	assert.Equal(t, "2025-03-15", event.Payload["oldStartDate"])
	assert.Equal(t, "2025-03-20", event.Payload["newStartDate"])
	assert.Equal(t, false, event.Payload["demoted"])
}

func TestExecuteDemotesConfirmedBooking(t *testing.T) {
	booking := pendingBooking(1)
	booking.Status = domain.StatusConfirmed
	booking.Version = 2
	fixture := newFixture(true, booking)

	resp, err := fixture.usecase.Execute(context.Background(), &Request{
		BookingID:    1,
		NewStartDate: types.NewDate(2025, time.March, 20),
		NewEndDate:   types.NewDate(2025, time.March, 21),
	})
	require.NoError(t, err)

	assert.Equal(t, "pending", resp.Status, "подтвержденное бронирование требует повторного подтверждения")

	require.Len(t, fixture.eventRepo.events, 1)
	assert.Equal(t, true, fixture.eventRepo.events[0].Payload["demoted"])
}

func TestExecuteTerminalBooking(t *testing.T) {
	for _, status := range []domain.BookingStatus{domain.StatusCompleted, domain.StatusCancelled} {
		t.Run(string(status), func(t *testing.T) {
			booking := pendingBooking(1)
			booking.Status = status
			fixture := newFixture(true, booking)

			_, err := fixture.usecase.Execute(context.Background(), &Request{
				BookingID:    1,
				NewStartDate: types.NewDate(2025, time.March, 20),
				NewEndDate:   types.NewDate(2025, time.March, 21),
			})
			assert.ErrorIs(t, err, domain.ErrInvalidTransition)
			assert.Empty(t, fixture.reservations.calls)
		})
	}
}

func TestExecuteMissingBooking(t *testing.T) {
	fixture := newFixture(true)

	_, err := fixture.usecase.Execute(context.Background(), &Request{
		BookingID:    42,
		NewStartDate: types.NewDate(2025, time.March, 20),
		NewEndDate:   types.NewDate(2025, time.March, 21),
	})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestExecuteNewDateInPast(t *testing.T) {
	fixture := newFixture(true, pendingBooking(1))

	_, err := fixture.usecase.Execute(context.Background(), &Request{
		BookingID:    1,
		NewStartDate: types.NewDate(2025, time.March, 9),
		NewEndDate:   types.NewDate(2025, time.March, 11),
	})
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestExecuteInvalidRange(t *testing.T) {
	fixture := newFixture(true, pendingBooking(1))

	_, err := fixture.usecase.Execute(context.Background(), &Request{
		BookingID:    1,
		NewStartDate: types.NewDate(2025, time.March, 20),
		NewEndDate:   types.NewDate(2025, time.March, 20),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRange)
}

func TestExecuteCapacityConflictKeepsSchedule(t *testing.T) {
	fixture := newFixture(true, pendingBooking(1))
	fixture.reservations.capacityErr = &domain.CapacityError{
		ServiceID:     "boarding",
		ConflictDates: []types.Date{types.NewDate(2025, time.March, 21)},
	}

	_, err := fixture.usecase.Execute(context.Background(), &Request{
		BookingID:    1,
		NewStartDate: types.NewDate(2025, time.March, 20),
		NewEndDate:   types.NewDate(2025, time.March, 22),
	})
	require.ErrorIs(t, err, domain.ErrCapacityExceeded)

	// Расписание не изменилось, события не записаны
	booking, getErr := fixture.bookingRepo.GetByID(context.Background(), 1)
	require.NoError(t, getErr)
	assert.True(t, booking.StartDate.Equal(types.NewDate(2025, time.March, 15)))
	assert.Empty(t, fixture.eventRepo.events)
}

func TestExecuteReservationTimeout(t *testing.T) {
	fixture := newFixture(true, pendingBooking(1))
	fixture.txManager.err = context.DeadlineExceeded

	_, err := fixture.usecase.Execute(context.Background(), &Request{
		BookingID:    1,
		NewStartDate: types.NewDate(2025, time.March, 20),
		NewEndDate:   types.NewDate(2025, time.March, 21),
	})
	assert.ErrorIs(t, err, reservations.ErrReservationTimeout)
}

func TestExecuteKeepsPickupDetailsByDefault(t *testing.T) {
	address := "ул. Ленина, 1"
	pickupTime := types.TimeString("09:00")

	booking := pendingBooking(1)
	booking.RequiresPickup = true
	booking.PickupAddress = &address
	booking.PickupTime = &pickupTime
	fixture := newFixture(true, booking)

	_, err := fixture.usecase.Execute(context.Background(), &Request{
		BookingID:    1,
		NewStartDate: types.NewDate(2025, time.March, 20),
		NewEndDate:   types.NewDate(2025, time.March, 21),
	})
	require.NoError(t, err)

	updated, err := fixture.bookingRepo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, updated.RequiresPickup)
	require.NotNil(t, updated.PickupAddress)
	assert.Equal(t, address, *updated.PickupAddress)
}

func TestExecuteAppliesNewPickupDetails(t *testing.T) {
	booking := pendingBooking(1)
	fixture := newFixture(true, booking)

	address := "пр. Мира, 15"
	pickupTime := types.TimeString("08:30")

	_, err := fixture.usecase.Execute(context.Background(), &Request{
		BookingID:    1,
		NewStartDate: types.NewDate(2025, time.March, 20),
		NewEndDate:   types.NewDate(2025, time.March, 21),
		NewPickupDetails: &PickupDetails{
			RequiresPickup: true,
			PickupAddress:  &address,
			PickupTime:     &pickupTime,
		},
	})
	require.NoError(t, err)

	updated, err := fixture.bookingRepo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, updated.RequiresPickup)
	require.NotNil(t, updated.PickupAddress)
	assert.Equal(t, address, *updated.PickupAddress)
	require.NotNil(t, updated.PickupTime)
	assert.Equal(t, pickupTime, *updated.PickupTime)
}

func TestExecuteRejectsIncompletePickupDetails(t *testing.T) {
	fixture := newFixture(true, pendingBooking(1))

	_, err := fixture.usecase.Execute(context.Background(), &Request{
		BookingID:        1,
		NewStartDate:     types.NewDate(2025, time.March, 20),
		NewEndDate:       types.NewDate(2025, time.March, 21),
		NewPickupDetails: &PickupDetails{RequiresPickup: true},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecuteEvaluatesOnlyWhenPendingDoesNotHoldCapacity(t *testing.T) {
	fixture := newFixture(false, pendingBooking(1))

	resp, err := fixture.usecase.Execute(context.Background(), &Request{
		BookingID:    1,
		NewStartDate: types.NewDate(2025, time.March, 20),
		NewEndDate:   types.NewDate(2025, time.March, 22),
	})
	require.NoError(t, err)

	assert.Equal(t, "pending", resp.Status)
	// Слоты на новые даты займет подтверждение, перенос только проверяет
	assert.Equal(t, []string{"release", "evaluate"}, fixture.reservations.calls)
}

func TestExecuteConflictWhenPendingDoesNotHoldCapacity(t *testing.T) {
	fixture := newFixture(false, pendingBooking(1))
	fixture.reservations.capacityErr = &domain.CapacityError{
		ServiceID:     "boarding",
		ConflictDates: []types.Date{types.NewDate(2025, time.March, 21)},
	}

	_, err := fixture.usecase.Execute(context.Background(), &Request{
		BookingID:    1,
		NewStartDate: types.NewDate(2025, time.March, 20),
		NewEndDate:   types.NewDate(2025, time.March, 22),
	})
	require.ErrorIs(t, err, domain.ErrCapacityExceeded)

	booking, getErr := fixture.bookingRepo.GetByID(context.Background(), 1)
	require.NoError(t, getErr)
	assert.True(t, booking.StartDate.Equal(types.NewDate(2025, time.March, 15)))
}

// memoryLedger журнал вместимости в памяти для сквозных сценариев
type memoryLedger struct {
	rows []ledgerRow
}

type ledgerRow struct {
	serviceID string
	bookingID int64
	day       types.Date
}

func (m *memoryLedger) CountByDays(_ context.Context, serviceID string, dates []types.Date, excludeBookingID *int64) (domain.DayCounts, error) {
	counts := make(domain.DayCounts)
	for _, row := range m.rows {
		if row.serviceID != serviceID {
			continue
		}
		if excludeBookingID != nil && row.bookingID == *excludeBookingID {
			continue
		}
		for _, d := range dates {
			if row.day.Equal(d) {
				counts[d]++
			}
		}
	}
	return counts, nil
}

func (m *memoryLedger) InsertDates(_ context.Context, serviceID string, bookingID int64, dates []types.Date) error {
	for _, d := range dates {
		m.rows = append(m.rows, ledgerRow{serviceID: serviceID, bookingID: bookingID, day: d})
	}
	return nil
}

func (m *memoryLedger) DeleteByBooking(_ context.Context, bookingID int64) (int64, error) {
	kept := m.rows[:0]
	var released int64
	for _, row := range m.rows {
		if row.bookingID == bookingID {
			released++
			continue
		}
		kept = append(kept, row)
	}
	m.rows = kept
	return released, nil
}

// Сквозной сценарий: при pending_holds_capacity = false перенос не должен
// занимать слоты на новые даты, иначе последующее подтверждение упрется в
// собственную запись журнала и вернет отказ по вместимости
func TestExecuteThenApproveWhenPendingDoesNotHoldCapacity(t *testing.T) {
	catalog, err := domain.NewCatalog([]*domain.ServiceCatalogEntry{
		{ServiceID: "daycare", Name: "Дневное пребывание", CapacityPerDay: 1, PricingMode: domain.PricingFlatRate, RateMinor: 80000},
	})
	require.NoError(t, err)

	booking := pendingBooking(1)
	booking.ServiceID = "daycare"
	booking.StartDate = types.NewDate(2025, time.March, 15)
	booking.EndDate = types.NewDate(2025, time.March, 15)
	booking.PriceMinor = 80000

	bookingRepo := newFakeBookingRepo(booking)
	eventRepo := &fakeEventRepo{}
	ledger := &memoryLedger{}
	txManager := &passTxManager{}
	clock := &fixedClock{now: time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)}

	manager := reservations.NewManager(ledger, txManager, 3*time.Second, nopLogger{})

	usecase := NewUseCase(bookingRepo, eventRepo, manager, txManager, catalog, false, 3*time.Second, nopLogger{})
	usecase.timeProvider = clock

	newDay := types.NewDate(2025, time.March, 20)
	resp, err := usecase.Execute(context.Background(), &Request{
		BookingID:    1,
		NewStartDate: newDay,
		NewEndDate:   newDay,
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", resp.Status)
	assert.Empty(t, ledger.rows, "pending бронирование не занимает слоты")

	service := bookings.NewService(bookingRepo, eventRepo, manager, txManager, catalog, false, clock, nopLogger{})

	approved, err := service.Approve(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", approved.Status)

	require.Len(t, ledger.rows, 1)
	assert.True(t, ledger.rows[0].day.Equal(newDay))
	assert.Equal(t, int64(1), ledger.rows[0].bookingID)
}

func TestExecuteValidation(t *testing.T) {
	fixture := newFixture(true, pendingBooking(1))

	t.Run("booking id required", func(t *testing.T) {
		_, err := fixture.usecase.Execute(context.Background(), &Request{
			NewStartDate: types.NewDate(2025, time.March, 20),
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("new start date required", func(t *testing.T) {
		_, err := fixture.usecase.Execute(context.Background(), &Request{BookingID: 1})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}
