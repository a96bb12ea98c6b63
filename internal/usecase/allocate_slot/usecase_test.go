package allocate_slot

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ParkingService/internal/accesscode"
	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-ParkingService/internal/integrations/notificationservice"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type countingMetrics struct {
	conflicts   atomic.Int64
	transitions atomic.Int64
}

func (m *countingMetrics) IncBookingTransition(string, string) { m.transitions.Add(1) }
func (m *countingMetrics) IncAllocationConflict()              { m.conflicts.Add(1) }

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notificationservice.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, notification notificationservice.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type fixture struct {
	store      *memory.Store
	facilities *memory.FacilityRepository
	bookings   *memory.BookingRepository
	metrics    *countingMetrics
	notifier   *recordingNotifier
	uc         *UseCase
}

func newFixture() *fixture {
	store := memory.NewStore()
	f := &fixture{
		store:      store,
		facilities: memory.NewFacilityRepository(store),
		bookings:   memory.NewBookingRepository(store),
		metrics:    &countingMetrics{},
		notifier:   &recordingNotifier{},
	}
	f.uc = NewUseCase(f.facilities, f.bookings, store, f.notifier, f.metrics, nopLogger{}).
		WithTimeProvider(fixedTime{now: testNow})
	return f
}

func (f *fixture) addFacility(t *testing.T, kind domain.InventoryKind, autoAccept bool, slotTypes ...domain.SlotType) *domain.Facility {
	t.Helper()

	daily := 300.0
	facility := &domain.Facility{
		ID:                 uuid.New(),
		OwnerID:            7,
		Kind:               kind,
		Name:               "Test",
		FacilityType:       domain.FacilityMall,
		Pricing:            domain.Pricing{HourlyRate: 50, DailyRate: &daily},
		AutoAcceptBookings: autoAccept,
		CreatedAt:          testNow,
		UpdatedAt:          testNow,
	}
	if kind == domain.KindPrivate {
		facility.FacilityType = domain.FacilityPrivateDriveway
	}
	for i, st := range slotTypes {
		facility.Slots = append(facility.Slots, domain.Slot{
			ID:         uuid.New(),
			FacilityID: facility.ID,
			Floor:      1,
			Number:     i + 1,
			Type:       st,
		})
	}
	require.NoError(t, f.facilities.Create(context.Background(), facility))
	return facility
}

func (f *fixture) slot(t *testing.T, id uuid.UUID) *domain.Slot {
	t.Helper()
	s, err := f.facilities.GetSlot(context.Background(), id)
	require.NoError(t, err)
	return s
}

func request(facility *domain.Facility, slot domain.Slot, hours int) *Request {
	return &Request{
		FacilityID:   facility.ID,
		SlotID:       slot.ID,
		RequesterID:  42,
		Start:        testNow.Add(time.Hour),
		End:          testNow.Add(time.Duration(hours+1) * time.Hour),
		DurationType: domain.DurationHourly,
	}
}

func TestExecute_Commercial(t *testing.T) {
	f := newFixture()
	facility := f.addFacility(t, domain.KindCommercial, true, domain.SlotRegular)

	resp, err := f.uc.Execute(context.Background(), request(facility, facility.Slots[0], 2))
	require.NoError(t, err)

	b := resp.Booking
	assert.Equal(t, domain.StatusPending, b.Status)
	assert.Nil(t, b.Private)
	assert.Equal(t, "F1-1", resp.SlotLabel)
	assert.Equal(t, 50.0, b.AgreedRate)
	assert.InDelta(t, 118.0, b.EstimatedCost, 0.001)

	slot := f.slot(t, facility.Slots[0].ID)
	assert.True(t, slot.IsBoundTo(b.ID))
	require.NotNil(t, slot.BookingEndTime)
	assert.Equal(t, b.ScheduledEnd, *slot.BookingEndTime)

	assert.Eventually(t, func() bool { return f.notifier.count() == 1 }, time.Second, 10*time.Millisecond)
}

func TestExecute_PrivateAutoAccept(t *testing.T) {
	f := newFixture()
	facility := f.addFacility(t, domain.KindPrivate, true, domain.SlotRegular)

	resp, err := f.uc.Execute(context.Background(), request(facility, facility.Slots[0], 1))
	require.NoError(t, err)

	b := resp.Booking
	assert.Equal(t, domain.StatusApproved, b.Status)
	require.NotNil(t, b.Private)
	require.NotNil(t, b.Private.ApprovalTime)
	assert.Equal(t, testNow, *b.Private.ApprovalTime)

	pin, ok := b.AccessPIN()
	require.True(t, ok)
	assert.NoError(t, accesscode.ValidatePIN(pin))

	assert.True(t, f.slot(t, facility.Slots[0].ID).IsBoundTo(b.ID))
}

func TestExecute_PrivateAutoAcceptSkipsPINInUse(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	facility := f.addFacility(t, domain.KindPrivate, true, domain.SlotRegular, domain.SlotRegular)

	pins := []string{"111111", "111111", "222222"}
	f.uc.generatePIN = func() (string, error) {
		pin := pins[0]
		pins = pins[1:]
		return pin, nil
	}

	holder, err := f.uc.Execute(ctx, request(facility, facility.Slots[0], 1))
	require.NoError(t, err)
	pin, _ := holder.Booking.AccessPIN()
	assert.Equal(t, "111111", pin)

	resp, err := f.uc.Execute(ctx, request(facility, facility.Slots[1], 1))
	require.NoError(t, err)
	pin, ok := resp.Booking.AccessPIN()
	require.True(t, ok)
	assert.Equal(t, "222222", pin)
}

func TestExecute_PrivateRequiresApproval(t *testing.T) {
	f := newFixture()
	facility := f.addFacility(t, domain.KindPrivate, false, domain.SlotRegular)

	resp, err := f.uc.Execute(context.Background(), request(facility, facility.Slots[0], 1))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPendingApproval, resp.Booking.Status)
	_, hasPIN := resp.Booking.AccessPIN()
	assert.False(t, hasPIN)
	assert.True(t, f.slot(t, facility.Slots[0].ID).IsAvailable())

	// запрос водителю и хосту
	assert.Eventually(t, func() bool { return f.notifier.count() == 2 }, time.Second, 10*time.Millisecond)
}

func TestExecute_SlotMultiplier(t *testing.T) {
	f := newFixture()
	facility := f.addFacility(t, domain.KindCommercial, true, domain.SlotVIP)

	resp, err := f.uc.Execute(context.Background(), request(facility, facility.Slots[0], 1))
	require.NoError(t, err)
	assert.Equal(t, 75.0, resp.Booking.AgreedRate)
	assert.InDelta(t, 88.5, resp.Booking.EstimatedCost, 0.001)
}

func TestExecute_Errors(t *testing.T) {
	f := newFixture()
	commercial := f.addFacility(t, domain.KindCommercial, true, domain.SlotRegular, domain.SlotRegular)
	other := f.addFacility(t, domain.KindCommercial, true, domain.SlotRegular)

	disabled, err := f.slot(t, commercial.Slots[1].ID).SetDisabled(true)
	require.NoError(t, err)
	require.NoError(t, f.facilities.UpdateSlot(context.Background(), disabled))

	deleted := f.addFacility(t, domain.KindCommercial, true, domain.SlotRegular)
	deleted.IsDeleted = true
	require.NoError(t, f.facilities.Update(context.Background(), deleted))

	tests := []struct {
		name   string
		mutate func(r *Request)
		want   error
	}{
		{"empty interval", func(r *Request) { r.End = r.Start }, ErrInvalidInput},
		{"reversed interval", func(r *Request) { r.End = r.Start.Add(-time.Hour) }, ErrInvalidInput},
		{"interval in the past", func(r *Request) {
			r.Start = testNow.Add(-3 * time.Hour)
			r.End = testNow.Add(-time.Hour)
		}, ErrInvalidInput},
		{"commercial daily", func(r *Request) { r.DurationType = domain.DurationDaily }, ErrInvalidInput},
		{"unknown duration", func(r *Request) { r.DurationType = "weekly" }, ErrInvalidInput},
		{"own facility", func(r *Request) { r.RequesterID = commercial.OwnerID }, ErrInvalidInput},
		{"unknown facility", func(r *Request) { r.FacilityID = uuid.New() }, ErrFacilityNotFound},
		{"deleted facility", func(r *Request) {
			r.FacilityID = deleted.ID
			r.SlotID = deleted.Slots[0].ID
		}, ErrFacilityNotFound},
		{"unknown slot", func(r *Request) { r.SlotID = uuid.New() }, ErrSlotNotFound},
		{"slot of another facility", func(r *Request) { r.SlotID = other.Slots[0].ID }, ErrSlotNotFound},
		{"disabled slot", func(r *Request) { r.SlotID = commercial.Slots[1].ID }, ErrSlotUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := request(commercial, commercial.Slots[0], 1)
			tt.mutate(req)
			_, err := f.uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	// ни одна ошибка не оставила следов
	assert.True(t, f.slot(t, commercial.Slots[0].ID).IsAvailable())
}

func TestExecute_OccupiedSlot(t *testing.T) {
	f := newFixture()
	facility := f.addFacility(t, domain.KindCommercial, true, domain.SlotRegular)

	_, err := f.uc.Execute(context.Background(), request(facility, facility.Slots[0], 1))
	require.NoError(t, err)

	_, err = f.uc.Execute(context.Background(), request(facility, facility.Slots[0], 1))
	assert.ErrorIs(t, err, ErrSlotUnavailable)
	assert.Equal(t, int64(1), f.metrics.conflicts.Load())
}

func TestExecute_ConcurrentRequestsSingleWinner(t *testing.T) {
	f := newFixture()
	facility := f.addFacility(t, domain.KindCommercial, true, domain.SlotRegular)

	const workers = 20
	var (
		wg          sync.WaitGroup
		successes   atomic.Int64
		unavailable atomic.Int64
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(requester int64) {
			defer wg.Done()
			req := request(facility, facility.Slots[0], 1)
			req.RequesterID = requester
			_, err := f.uc.Execute(context.Background(), req)
			switch {
			case err == nil:
				successes.Add(1)
			case assert.ErrorIs(t, err, ErrSlotUnavailable):
				unavailable.Add(1)
			}
		}(int64(100 + i))
	}
	wg.Wait()

	assert.Equal(t, int64(1), successes.Load())
	assert.Equal(t, int64(workers-1), unavailable.Load())

	live, err := f.bookings.GetByHostWithFilter(context.Background(), domain.HostBookingsFilter{HostID: facility.OwnerID})
	require.NoError(t, err)
	assert.Len(t, live, 1)
}
