package bookings

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-ParkingService/internal/integrations/notificationservice"
	"github.com/m04kA/SMC-ParkingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-ParkingService/internal/usecase/allocate_slot"
	"github.com/m04kA/SMC-ParkingService/pkg/ptr"
)

const (
	hostID   int64 = 7
	driverID int64 = 42
	otherID  int64 = 99
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type nopMetrics struct{}

func (nopMetrics) IncBookingTransition(string, string) {}
func (nopMetrics) AddOverstayFee(float64)              {}
func (nopMetrics) IncAllocationConflict()              {}

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

func (n *recordingNotifier) delayed() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, s := range n.sent {
		if s.Delay > 0 {
			count++
		}
	}
	return count
}

type fixture struct {
	store      *memory.Store
	facilities *memory.FacilityRepository
	bookings   *memory.BookingRepository
	clock      *clock
	notifier   *recordingNotifier
	svc        *Service
}

func newFixture() *fixture {
	store := memory.NewStore()
	f := &fixture{
		store:      store,
		facilities: memory.NewFacilityRepository(store),
		bookings:   memory.NewBookingRepository(store),
		clock:      &clock{now: testNow},
		notifier:   &recordingNotifier{},
	}
	f.svc = NewService(f.bookings, f.facilities, store, f.notifier, nopMetrics{}, nopLogger{}).
		WithTimeProvider(f.clock)
	return f
}

func (f *fixture) addFacility(t *testing.T, kind domain.InventoryKind, ftype domain.FacilityType) *domain.Facility {
	t.Helper()
	facility := &domain.Facility{
		ID:           uuid.New(),
		OwnerID:      hostID,
		Kind:         kind,
		Name:         "Test",
		FacilityType: ftype,
		Pricing:      domain.Pricing{HourlyRate: 50},
		CreatedAt:    testNow,
	}
	facility.Slots = []domain.Slot{{ID: uuid.New(), FacilityID: facility.ID, Floor: 1, Number: 1, Type: domain.SlotRegular}}
	require.NoError(t, f.facilities.Create(context.Background(), facility))
	return facility
}

// addBooking сохраняет бронирование на 3 часа с 10:00 и привязывает место для живых статусов
func (f *fixture) addBooking(t *testing.T, facility *domain.Facility, status domain.BookingStatus) *domain.Booking {
	t.Helper()
	ctx := context.Background()

	b := &domain.Booking{
		ID:             uuid.New(),
		Kind:           facility.Kind,
		FacilityID:     facility.ID,
		SlotID:         facility.Slots[0].ID,
		RequesterID:    driverID,
		HostID:         facility.OwnerID,
		RequestedAt:    testNow,
		ScheduledStart: testNow.Add(time.Hour),
		ScheduledEnd:   testNow.Add(4 * time.Hour),
		DurationType:   domain.DurationHourly,
		AgreedRate:     50,
		EstimatedCost:  177,
		Status:         status,
		CreatedAt:      testNow,
		UpdatedAt:      testNow,
	}
	if facility.Kind == domain.KindPrivate {
		b.Private = &domain.PrivateTerms{}
	}
	if status == domain.StatusActive {
		b.ActualStart = ptr.Ptr(b.ScheduledStart)
	}
	require.NoError(t, f.bookings.Create(ctx, b))

	if b.IsLive() {
		slot := f.slot(t, b.SlotID)
		bound, err := slot.Bind(b.ID, b.ScheduledEnd)
		require.NoError(t, err)
		require.NoError(t, f.facilities.UpdateSlot(ctx, bound))
	}
	return b
}

func (f *fixture) slot(t *testing.T, id uuid.UUID) domain.Slot {
	t.Helper()
	s, err := f.facilities.GetSlot(context.Background(), id)
	require.NoError(t, err)
	return *s
}

func (f *fixture) booking(t *testing.T, id uuid.UUID) *domain.Booking {
	t.Helper()
	b, err := f.bookings.GetByID(context.Background(), id)
	require.NoError(t, err)
	return b
}

func TestApprove(t *testing.T) {
	f := newFixture()
	facility := f.addFacility(t, domain.KindPrivate, domain.FacilityPrivateDriveway)
	b := f.addBooking(t, facility, domain.StatusPendingApproval)

	_, err := f.svc.Approve(context.Background(), b.ID, otherID)
	assert.ErrorIs(t, err, ErrAccessDenied)

	resp, err := f.svc.Approve(context.Background(), b.ID, hostID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusApproved), resp.Status)
	require.NotNil(t, resp.AccessPIN)
	assert.Len(t, *resp.AccessPIN, 6)
	require.NotNil(t, resp.ApprovalTime)
	assert.Equal(t, testNow, *resp.ApprovalTime)

	assert.True(t, f.slot(t, b.SlotID).IsBoundTo(b.ID))

	_, err = f.svc.Approve(context.Background(), b.ID, hostID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestApprove_SlotTakenMeanwhile(t *testing.T) {
	f := newFixture()
	facility := f.addFacility(t, domain.KindPrivate, domain.FacilityPrivateDriveway)
	waiting := f.addBooking(t, facility, domain.StatusPendingApproval)
	f.addBooking(t, facility, domain.StatusApproved)

	_, err := f.svc.Approve(context.Background(), waiting.ID, hostID)
	assert.ErrorIs(t, err, ErrSlotUnavailable)
	assert.Equal(t, domain.StatusPendingApproval, f.booking(t, waiting.ID).Status)
}

func TestApprove_DeletedFacility(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	facility := f.addFacility(t, domain.KindPrivate, domain.FacilityPrivateDriveway)
	b := f.addBooking(t, facility, domain.StatusPendingApproval)

	facility.IsDeleted = true
	require.NoError(t, f.facilities.Update(ctx, facility))

	_, err := f.svc.Approve(ctx, b.ID, hostID)
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	stored := f.booking(t, b.ID)
	assert.Equal(t, domain.StatusPendingApproval, stored.Status)
	_, hasPIN := stored.AccessPIN()
	assert.False(t, hasPIN)
	assert.True(t, f.slot(t, b.SlotID).IsAvailable())
}

func TestApprove_SkipsPINInUse(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	facility := f.addFacility(t, domain.KindPrivate, domain.FacilityPrivateDriveway)
	second := domain.Slot{ID: uuid.New(), FacilityID: facility.ID, Floor: 1, Number: 2, Type: domain.SlotRegular}
	require.NoError(t, f.facilities.AddSlots(ctx, []domain.Slot{second}))

	holder := f.addBooking(t, facility, domain.StatusApproved)
	holder.Private.AccessPIN = ptr.Ptr("111111")
	require.NoError(t, f.bookings.Update(ctx, holder))

	facility.Slots = []domain.Slot{second}
	waiting := f.addBooking(t, facility, domain.StatusPendingApproval)

	pins := []string{"111111", "222222"}
	f.svc.generatePIN = func() (string, error) {
		pin := pins[0]
		pins = pins[1:]
		return pin, nil
	}

	resp, err := f.svc.Approve(ctx, waiting.ID, hostID)
	require.NoError(t, err)
	require.NotNil(t, resp.AccessPIN)
	assert.Equal(t, "222222", *resp.AccessPIN)
}

func TestReject(t *testing.T) {
	f := newFixture()
	facility := f.addFacility(t, domain.KindPrivate, domain.FacilityPrivateDriveway)
	b := f.addBooking(t, facility, domain.StatusPendingApproval)

	resp, err := f.svc.Reject(context.Background(), b.ID, hostID, "ремонт ворот")
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusRejected), resp.Status)
	require.NotNil(t, resp.RejectionReason)
	assert.Equal(t, "ремонт ворот", *resp.RejectionReason)
	assert.True(t, f.slot(t, b.SlotID).IsAvailable())

	_, err = f.svc.Reject(context.Background(), b.ID, hostID, "again")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestStartSession(t *testing.T) {
	f := newFixture()
	facility := f.addFacility(t, domain.KindCommercial, domain.FacilityMall)
	b := f.addBooking(t, facility, domain.StatusPending)

	resp, err := f.svc.StartSession(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusActive), resp.Status)
	require.NotNil(t, resp.ActualStart)

	// окончание через 4 часа: оба предупреждения в будущем
	assert.Eventually(t, func() bool { return f.notifier.delayed() == 2 }, time.Second, 10*time.Millisecond)

	_, err = f.svc.StartSession(context.Background(), b.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestStartSession_FromPendingApproval(t *testing.T) {
	f := newFixture()
	facility := f.addFacility(t, domain.KindPrivate, domain.FacilityPrivateDriveway)
	b := f.addBooking(t, facility, domain.StatusPendingApproval)

	_, err := f.svc.StartSession(context.Background(), b.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestEndSession_OverstayScenario(t *testing.T) {
	f := newFixture()
	facility := f.addFacility(t, domain.KindPrivate, domain.FacilityPrivateDriveway)
	b := f.addBooking(t, facility, domain.StatusActive)

	f.clock.set(b.ScheduledEnd.Add(20 * time.Minute))
	resp, err := f.svc.EndSession(context.Background(), b.ID, driverID)
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusCompleted), resp.Status)
	require.NotNil(t, resp.ActualCost)
	assert.InDelta(t, 217.0, *resp.ActualCost, 0.001)
	require.NotNil(t, resp.OverstayFee)
	assert.Equal(t, 40.0, *resp.OverstayFee)
	require.NotNil(t, resp.HostEarnings)
	assert.InDelta(t, 184.45, *resp.HostEarnings, 0.001)

	assert.True(t, f.slot(t, b.SlotID).IsAvailable())
}

func TestEndSession_Idempotent(t *testing.T) {
	f := newFixture()
	facility := f.addFacility(t, domain.KindCommercial, domain.FacilityMall)
	b := f.addBooking(t, facility, domain.StatusActive)

	f.clock.set(b.ScheduledEnd.Add(-30 * time.Minute))
	first, err := f.svc.EndSession(context.Background(), b.ID, driverID)
	require.NoError(t, err)
	assert.InDelta(t, 177.0, *first.ActualCost, 0.001)
	assert.InDelta(t, 155.76, *first.HostEarnings, 0.001)

	f.clock.set(b.ScheduledEnd.Add(2 * time.Hour))
	second, err := f.svc.EndSession(context.Background(), b.ID, hostID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEndSession_Errors(t *testing.T) {
	f := newFixture()
	facility := f.addFacility(t, domain.KindCommercial, domain.FacilityMall)
	b := f.addBooking(t, facility, domain.StatusPending)

	_, err := f.svc.EndSession(context.Background(), b.ID, otherID)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = f.svc.EndSession(context.Background(), b.ID, driverID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.svc.EndSession(context.Background(), uuid.New(), driverID)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestExtend(t *testing.T) {
	f := newFixture()
	facility := f.addFacility(t, domain.KindCommercial, domain.FacilityMall)
	b := f.addBooking(t, facility, domain.StatusActive)

	resp, err := f.svc.Extend(context.Background(), b.ID, driverID, 1, "key-1")
	require.NoError(t, err)
	newEnd := b.ScheduledEnd.Add(time.Hour)
	assert.Equal(t, newEnd, resp.ScheduledEnd)
	assert.InDelta(t, 236.0, resp.EstimatedCost, 0.001)

	slot := f.slot(t, b.SlotID)
	require.NotNil(t, slot.BookingEndTime)
	assert.Equal(t, newEnd, *slot.BookingEndTime)

	// повтор с тем же ключом ничего не меняет
	again, err := f.svc.Extend(context.Background(), b.ID, driverID, 1, "key-1")
	require.NoError(t, err)
	assert.Equal(t, newEnd, again.ScheduledEnd)
	assert.Equal(t, newEnd, f.booking(t, b.ID).ScheduledEnd)

	next, err := f.svc.Extend(context.Background(), b.ID, driverID, 2, "key-2")
	require.NoError(t, err)
	assert.Equal(t, newEnd.Add(2*time.Hour), next.ScheduledEnd)

	// первый ключ помнится и после второго продления
	replay, err := f.svc.Extend(context.Background(), b.ID, driverID, 1, "key-1")
	require.NoError(t, err)
	assert.Equal(t, newEnd.Add(2*time.Hour), replay.ScheduledEnd)
	assert.Equal(t, newEnd.Add(2*time.Hour), f.booking(t, b.ID).ScheduledEnd)
}

func TestLifecycle_PrivateBookingEndToEnd(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	facility := f.addFacility(t, domain.KindPrivate, domain.FacilityPrivateDriveway)
	allocate := allocate_slot.NewUseCase(f.facilities, f.bookings, f.store, f.notifier, nopMetrics{}, nopLogger{}).
		WithTimeProvider(f.clock)

	created, err := allocate.Execute(ctx, &allocate_slot.Request{
		FacilityID:   facility.ID,
		SlotID:       facility.Slots[0].ID,
		RequesterID:  driverID,
		Start:        testNow.Add(time.Hour),
		End:          testNow.Add(4 * time.Hour),
		DurationType: domain.DurationHourly,
	})
	require.NoError(t, err)
	b := created.Booking
	assert.Equal(t, domain.StatusPendingApproval, b.Status)
	assert.InDelta(t, 177.0, b.EstimatedCost, 0.001)
	assert.True(t, f.slot(t, b.SlotID).IsAvailable())

	approved, err := f.svc.Approve(ctx, b.ID, hostID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusApproved), approved.Status)
	require.NotNil(t, approved.AccessPIN)
	assert.Len(t, *approved.AccessPIN, 6)
	assert.True(t, f.slot(t, b.SlotID).IsBoundTo(b.ID))

	started, err := f.svc.StartSession(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusActive), started.Status)

	f.clock.set(b.ScheduledEnd.Add(20 * time.Minute))
	ended, err := f.svc.EndSession(ctx, b.ID, driverID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCompleted), ended.Status)
	require.NotNil(t, ended.ActualCost)
	assert.InDelta(t, 217.0, *ended.ActualCost, 0.001)
	assert.True(t, f.slot(t, b.SlotID).IsAvailable())

	again, err := f.svc.EndSession(ctx, b.ID, driverID)
	require.NoError(t, err)
	require.NotNil(t, again.ActualCost)
	assert.InDelta(t, 217.0, *again.ActualCost, 0.001)
}

func TestExtend_Errors(t *testing.T) {
	f := newFixture()
	facility := f.addFacility(t, domain.KindCommercial, domain.FacilityMall)
	pending := f.addBooking(t, facility, domain.StatusPending)

	_, err := f.svc.Extend(context.Background(), pending.ID, driverID, 0, "k")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.Extend(context.Background(), pending.ID, driverID, domain.MaxExtensionHours+1, "k")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.Extend(context.Background(), pending.ID, hostID, 1, "k")
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = f.svc.Extend(context.Background(), pending.ID, driverID, 1, "k")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancel(t *testing.T) {
	f := newFixture()
	facility := f.addFacility(t, domain.KindPrivate, domain.FacilityPrivateDriveway)
	b := f.addBooking(t, facility, domain.StatusApproved)

	_, err := f.svc.Cancel(context.Background(), b.ID, otherID)
	assert.ErrorIs(t, err, ErrAccessDenied)

	resp, err := f.svc.Cancel(context.Background(), b.ID, driverID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCancelled), resp.Status)
	require.NotNil(t, resp.CancelledAt)
	assert.True(t, f.slot(t, b.SlotID).IsAvailable())

	_, err = f.svc.Cancel(context.Background(), b.ID, driverID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancel_ActiveIsRejected(t *testing.T) {
	f := newFixture()
	facility := f.addFacility(t, domain.KindCommercial, domain.FacilityMall)
	b := f.addBooking(t, facility, domain.StatusActive)

	_, err := f.svc.Cancel(context.Background(), b.ID, driverID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.True(t, f.slot(t, b.SlotID).IsBoundTo(b.ID))
}

func TestExpireStale(t *testing.T) {
	f := newFixture()
	facility := f.addFacility(t, domain.KindPrivate, domain.FacilityPrivateDriveway)
	stale := f.addBooking(t, facility, domain.StatusPendingApproval)
	fresh := f.addBooking(t, facility, domain.StatusPendingApproval)

	// fresh начинается позже
	fresh.ScheduledStart = testNow.Add(5 * time.Hour)
	fresh.ScheduledEnd = testNow.Add(6 * time.Hour)
	require.NoError(t, f.bookings.Update(context.Background(), fresh))

	count, err := f.svc.ExpireStale(context.Background(), stale.ScheduledStart)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	assert.Equal(t, domain.StatusExpired, f.booking(t, stale.ID).Status)
	assert.Equal(t, domain.StatusPendingApproval, f.booking(t, fresh.ID).Status)

	count, err = f.svc.ExpireStale(context.Background(), stale.ScheduledStart)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestGetByID_Access(t *testing.T) {
	f := newFixture()
	facility := f.addFacility(t, domain.KindCommercial, domain.FacilityMall)
	b := f.addBooking(t, facility, domain.StatusPending)

	for _, user := range []int64{driverID, hostID} {
		resp, err := f.svc.GetByID(context.Background(), b.ID, user)
		require.NoError(t, err)
		assert.Equal(t, b.ID.String(), resp.ID)
	}

	_, err := f.svc.GetByID(context.Background(), b.ID, otherID)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestGetHostBookings(t *testing.T) {
	f := newFixture()
	facility := f.addFacility(t, domain.KindCommercial, domain.FacilityMall)
	b := f.addBooking(t, facility, domain.StatusPending)

	_, err := f.svc.GetHostBookings(context.Background(), &models.GetHostBookingsRequest{UserID: otherID, HostID: hostID})
	assert.ErrorIs(t, err, ErrAccessDenied)

	resp, err := f.svc.GetHostBookings(context.Background(), &models.GetHostBookingsRequest{
		UserID:     hostID,
		HostID:     hostID,
		FacilityID: ptr.Ptr(facility.ID.String()),
	})
	require.NoError(t, err)
	require.Len(t, resp.Bookings, 1)
	assert.Equal(t, b.ID.String(), resp.Bookings[0].ID)

	_, err = f.svc.GetHostBookings(context.Background(), &models.GetHostBookingsRequest{
		UserID: hostID,
		HostID: hostID,
		Status: ptr.Ptr("unknown"),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetUserBookings(t *testing.T) {
	f := newFixture()
	facility := f.addFacility(t, domain.KindCommercial, domain.FacilityMall)
	f.addBooking(t, facility, domain.StatusPending)

	resp, err := f.svc.GetUserBookings(context.Background(), &models.GetUserBookingsRequest{UserID: driverID})
	require.NoError(t, err)
	assert.Len(t, resp.Bookings, 1)

	resp, err = f.svc.GetUserBookings(context.Background(), &models.GetUserBookingsRequest{
		UserID: driverID,
		Status: ptr.Ptr(string(domain.StatusCompleted)),
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Bookings)
}

func TestHostEarnings(t *testing.T) {
	f := newFixture()
	mall := f.addFacility(t, domain.KindCommercial, domain.FacilityMall)
	office := f.addFacility(t, domain.KindCommercial, domain.FacilityOffice)

	for _, facility := range []*domain.Facility{mall, office} {
		b := f.addBooking(t, facility, domain.StatusActive)
		f.clock.set(b.ScheduledEnd)
		_, err := f.svc.EndSession(context.Background(), b.ID, driverID)
		require.NoError(t, err)
	}

	_, err := f.svc.HostEarnings(context.Background(), hostID, otherID)
	assert.ErrorIs(t, err, ErrAccessDenied)

	resp, err := f.svc.HostEarnings(context.Background(), hostID, hostID)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.TotalBookings)
	assert.InDelta(t, 354.0, resp.TotalGross, 0.001)
	assert.InDelta(t, 155.76+150.45, resp.TotalEarnings, 0.001)

	require.Len(t, resp.ByFacilityType, 2)
	assert.Equal(t, "mall", resp.ByFacilityType[0].FacilityType)
	assert.Equal(t, 0.12, resp.ByFacilityType[0].CommissionRate)
	assert.Equal(t, "office", resp.ByFacilityType[1].FacilityType)
	assert.Equal(t, 0.15, resp.ByFacilityType[1].CommissionRate)
}
