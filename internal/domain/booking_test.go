package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func newPrivateBooking(status BookingStatus) Booking {
	return Booking{
		ID:             uuid.New(),
		Kind:           KindPrivate,
		FacilityID:     uuid.New(),
		SlotID:         uuid.New(),
		RequesterID:    1,
		HostID:         2,
		ScheduledStart: testNow,
		ScheduledEnd:   testNow.Add(3 * time.Hour),
		DurationType:   DurationHourly,
		AgreedRate:     50,
		EstimatedCost:  177,
		Status:         status,
		Private:        &PrivateTerms{},
	}
}

func TestBooking_Approve(t *testing.T) {
	b := newPrivateBooking(StatusPendingApproval)

	approved, err := b.Approve(testNow, "123456")
	require.NoError(t, err)

	assert.Equal(t, StatusApproved, approved.Status)
	pin, ok := approved.AccessPIN()
	assert.True(t, ok)
	assert.Equal(t, "123456", pin)
	require.NotNil(t, approved.Private.ApprovalTime)

	// исходное значение не изменилось
	assert.Equal(t, StatusPendingApproval, b.Status)
	assert.Nil(t, b.Private.AccessPIN)
}

func TestBooking_TransitionTable(t *testing.T) {
	type transition func(Booking) (Booking, error)

	transitions := map[string]transition{
		"approve": func(b Booking) (Booking, error) { return b.Approve(testNow, "111111") },
		"reject":  func(b Booking) (Booking, error) { return b.Reject(testNow, "busy") },
		"start":   func(b Booking) (Booking, error) { return b.Start(testNow) },
		"extend":  func(b Booking) (Booking, error) { return b.Extend(testNow, 1, 200, "k") },
		"complete": func(b Booking) (Booking, error) {
			return b.Complete(testNow, 177, 0, 150.45)
		},
		"cancel": func(b Booking) (Booking, error) { return b.Cancel(testNow) },
		"expire": func(b Booking) (Booking, error) { return b.Expire(testNow) },
	}

	allowed := map[string][]BookingStatus{
		"approve":  {StatusPendingApproval},
		"reject":   {StatusPendingApproval},
		"start":    {StatusPending, StatusApproved},
		"extend":   {StatusActive},
		"complete": {StatusActive},
		"cancel":   {StatusPendingApproval, StatusPending, StatusApproved},
		"expire":   {StatusPendingApproval},
	}

	for name, fn := range transitions {
		for _, status := range AllStatuses {
			ok := false
			for _, s := range allowed[name] {
				if s == status {
					ok = true
				}
			}

			b := newPrivateBooking(status)
			next, err := fn(b)
			if ok {
				assert.NoError(t, err, "%s from %s", name, status)
				assert.NotEqual(t, b, next, "%s from %s", name, status)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition, "%s from %s", name, status)
				assert.Equal(t, b, next, "%s from %s must not change booking", name, status)
			}
		}
	}
}

func TestBooking_ApproveCommercialIsInvalid(t *testing.T) {
	b := newPrivateBooking(StatusPendingApproval)
	b.Kind = KindCommercial
	b.Private = nil

	_, err := b.Approve(testNow, "123456")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestBooking_Extend(t *testing.T) {
	b := newPrivateBooking(StatusActive)

	next, err := b.Extend(testNow, 2, 295, "ext-1")
	require.NoError(t, err)

	assert.Equal(t, b.ScheduledEnd.Add(2*time.Hour), next.ScheduledEnd)
	assert.Equal(t, 295.0, next.EstimatedCost)
	assert.True(t, next.IsDuplicateExtension("ext-1"))
	assert.False(t, next.IsDuplicateExtension("ext-2"))
	assert.False(t, next.IsDuplicateExtension(""))

	_, err = b.Extend(testNow, 0, 295, "")
	assert.ErrorIs(t, err, ErrInvalidExtension)
}

func TestBooking_ExtendRemembersEveryKey(t *testing.T) {
	b := newPrivateBooking(StatusActive)

	first, err := b.Extend(testNow, 1, 200, "ext-a")
	require.NoError(t, err)
	second, err := first.Extend(testNow, 1, 250, "ext-b")
	require.NoError(t, err)

	assert.True(t, second.IsDuplicateExtension("ext-a"))
	assert.True(t, second.IsDuplicateExtension("ext-b"))
	assert.Len(t, first.ExtensionKeys, 1)
}

func TestBooking_ExpireWaitsForScheduledStart(t *testing.T) {
	b := newPrivateBooking(StatusPendingApproval)
	b.ScheduledStart = testNow.Add(time.Minute)

	_, err := b.Expire(testNow)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	expired, err := b.Expire(testNow.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, expired.Status)
}

func TestBooking_CloneSharesNoPointers(t *testing.T) {
	b := newPrivateBooking(StatusActive)
	pin := "654321"
	b.Private.AccessPIN = &pin

	c := b.Clone()
	*c.Private.AccessPIN = "000000"

	assert.Equal(t, "654321", *b.Private.AccessPIN)
}

func TestBookingStatus_Classes(t *testing.T) {
	for _, s := range LiveStatuses {
		assert.True(t, s.IsLive())
		assert.False(t, s.IsTerminal())
	}
	for _, s := range TerminalStatuses {
		assert.False(t, s.IsLive())
		assert.True(t, s.IsTerminal())
	}
	assert.False(t, StatusPendingApproval.IsLive())
	assert.False(t, StatusPendingApproval.IsTerminal())
	assert.False(t, BookingStatus("unknown").IsValid())
}
