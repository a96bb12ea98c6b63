package disputes

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-ParkingService/internal/integrations/notificationservice"
	"github.com/m04kA/SMC-ParkingService/internal/service/disputes/models"
)

const (
	hostID   int64 = 7
	driverID int64 = 42
	otherID  int64 = 99
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

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

func (n *recordingNotifier) recipients() []int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	ids := make([]int64, 0, len(n.sent))
	for _, s := range n.sent {
		ids = append(ids, s.UserID)
	}
	return ids
}

func newTestService(t *testing.T) (*Service, *recordingNotifier, uuid.UUID) {
	t.Helper()
	store := memory.NewStore()
	bookings := memory.NewBookingRepository(store)

	actualEnd := testNow.Add(-time.Hour)
	booking := &domain.Booking{
		ID:             uuid.New(),
		Kind:           domain.KindCommercial,
		FacilityID:     uuid.New(),
		SlotID:         uuid.New(),
		RequesterID:    driverID,
		HostID:         hostID,
		ScheduledStart: testNow.Add(-3 * time.Hour),
		ScheduledEnd:   testNow.Add(-time.Hour),
		ActualEnd:      &actualEnd,
		DurationType:   domain.DurationHourly,
		AgreedRate:     50,
		Status:         domain.StatusCompleted,
		CreatedAt:      testNow.Add(-4 * time.Hour),
	}
	require.NoError(t, bookings.Create(context.Background(), booking))

	notifier := &recordingNotifier{}
	svc := NewService(memory.NewDisputeRepository(store), bookings, store, notifier, nopLogger{}).
		WithTimeProvider(fixedClock{now: testNow})
	return svc, notifier, booking.ID
}

func openRequest(userID int64) *models.OpenDisputeRequest {
	return &models.OpenDisputeRequest{
		UserID:      userID,
		Reason:      "Slot was blocked",
		Description: "Another car stood on my slot for the first hour",
		PhotoURLs:   []string{"https://cdn.example.com/p/1.jpg"},
	}
}

func TestService_OpenAndResolve(t *testing.T) {
	svc, notifier, bookingID := newTestService(t)
	ctx := context.Background()

	opened, err := svc.Open(ctx, bookingID, openRequest(driverID))
	require.NoError(t, err)
	assert.Equal(t, string(domain.DisputePending), opened.Status)
	assert.Equal(t, driverID, opened.ReporterID)
	assert.Len(t, opened.PhotoURLs, 1)

	id := uuid.MustParse(opened.ID)

	reviewed, err := svc.Resolve(ctx, id, &models.ResolveDisputeRequest{UserID: hostID, Status: string(domain.DisputeUnderReview)})
	require.NoError(t, err)
	assert.Equal(t, string(domain.DisputeUnderReview), reviewed.Status)
	assert.Nil(t, reviewed.ResolvedAt)

	resolved, err := svc.Resolve(ctx, id, &models.ResolveDisputeRequest{UserID: hostID, Resolution: "Refund issued"})
	require.NoError(t, err)
	assert.Equal(t, string(domain.DisputeResolved), resolved.Status)
	require.NotNil(t, resolved.Resolution)
	assert.Equal(t, "Refund issued", *resolved.Resolution)
	require.NotNil(t, resolved.ResolvedAt)
	assert.True(t, resolved.ResolvedAt.Equal(testNow))

	_, err = svc.Resolve(ctx, id, &models.ResolveDisputeRequest{UserID: hostID, Status: "rejected", Resolution: "again"})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	assert.Eventually(t, func() bool {
		return len(notifier.recipients()) == 2
	}, time.Second, 10*time.Millisecond)
	assert.ElementsMatch(t, []int64{hostID, driverID}, notifier.recipients())
}

func TestService_OpenByHostNotifiesDriver(t *testing.T) {
	svc, notifier, bookingID := newTestService(t)

	_, err := svc.Open(context.Background(), bookingID, openRequest(hostID))
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		ids := notifier.recipients()
		return len(ids) == 1 && ids[0] == driverID
	}, time.Second, 10*time.Millisecond)
}

func TestService_OpenErrors(t *testing.T) {
	svc, _, bookingID := newTestService(t)
	ctx := context.Background()

	_, err := svc.Open(ctx, bookingID, openRequest(otherID))
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.Open(ctx, uuid.New(), openRequest(driverID))
	assert.ErrorIs(t, err, ErrBookingNotFound)

	tests := []struct {
		name   string
		mutate func(r *models.OpenDisputeRequest)
	}{
		{"empty reason", func(r *models.OpenDisputeRequest) { r.Reason = " " }},
		{"long reason", func(r *models.OpenDisputeRequest) { r.Reason = strings.Repeat("a", maxReasonLength+1) }},
		{"empty description", func(r *models.OpenDisputeRequest) { r.Description = "" }},
		{"long description", func(r *models.OpenDisputeRequest) {
			r.Description = strings.Repeat("a", domain.MaxDisputeTextLength+1)
		}},
		{"too many photos", func(r *models.OpenDisputeRequest) {
			r.PhotoURLs = make([]string, domain.MaxDisputePhotos+1)
			for i := range r.PhotoURLs {
				r.PhotoURLs[i] = "https://cdn.example.com/p.jpg"
			}
		}},
		{"bad photo url", func(r *models.OpenDisputeRequest) { r.PhotoURLs = []string{"ftp://files/p.jpg"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := openRequest(driverID)
			tt.mutate(req)
			_, err := svc.Open(ctx, bookingID, req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestService_ResolveErrors(t *testing.T) {
	svc, _, bookingID := newTestService(t)
	ctx := context.Background()

	opened, err := svc.Open(ctx, bookingID, openRequest(driverID))
	require.NoError(t, err)
	id := uuid.MustParse(opened.ID)

	_, err = svc.Resolve(ctx, id, &models.ResolveDisputeRequest{UserID: driverID, Resolution: "self"})
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.Resolve(ctx, id, &models.ResolveDisputeRequest{UserID: hostID})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Resolve(ctx, id, &models.ResolveDisputeRequest{UserID: hostID, Status: "closed", Resolution: "x"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Resolve(ctx, uuid.New(), &models.ResolveDisputeRequest{UserID: hostID, Resolution: "x"})
	assert.ErrorIs(t, err, ErrDisputeNotFound)
}

func TestService_ListByBooking(t *testing.T) {
	svc, _, bookingID := newTestService(t)
	ctx := context.Background()

	_, err := svc.Open(ctx, bookingID, openRequest(driverID))
	require.NoError(t, err)
	_, err = svc.Open(ctx, bookingID, openRequest(hostID))
	require.NoError(t, err)

	list, err := svc.ListByBooking(ctx, bookingID, hostID)
	require.NoError(t, err)
	assert.Len(t, list.Disputes, 2)

	_, err = svc.ListByBooking(ctx, bookingID, otherID)
	assert.ErrorIs(t, err, ErrAccessDenied)
}
