package get_available_slots

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-ParkingService/pkg/ptr"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func seed(t *testing.T) (*UseCase, *domain.Facility) {
	t.Helper()

	repo := memory.NewFacilityRepository(memory.NewStore())
	facility := &domain.Facility{
		ID:           uuid.New(),
		OwnerID:      7,
		Kind:         domain.KindCommercial,
		Name:         "Central",
		FacilityType: domain.FacilityMall,
		Pricing:      domain.Pricing{HourlyRate: 50},
		CreatedAt:    testNow,
	}

	end := testNow.Add(90 * time.Minute)
	bookingID := uuid.New()
	facility.Slots = []domain.Slot{
		{ID: uuid.New(), FacilityID: facility.ID, Floor: 1, Number: 1, Type: domain.SlotRegular},
		{ID: uuid.New(), FacilityID: facility.ID, Floor: 1, Number: 2, Type: domain.SlotEV,
			Occupied: true, CurrentBookingID: &bookingID, BookingEndTime: &end},
		{ID: uuid.New(), FacilityID: facility.ID, Floor: 2, Number: 1, Type: domain.SlotCompact, Disabled: true},
	}
	require.NoError(t, repo.Create(context.Background(), facility))

	uc := NewUseCase(repo, nopLogger{}).WithTimeProvider(fixedTime{now: testNow})
	return uc, facility
}

func TestExecute_AllSlots(t *testing.T) {
	uc, facility := seed(t)

	resp, err := uc.Execute(context.Background(), &Request{FacilityID: facility.ID})
	require.NoError(t, err)

	assert.Equal(t, 3, resp.TotalSlots)
	assert.Equal(t, 1, resp.AvailableSlots)
	require.Len(t, resp.Slots, 3)

	occupied := resp.Slots[1]
	assert.Equal(t, "F1-2", occupied.Label)
	assert.False(t, occupied.Available)
	assert.Equal(t, 90*time.Minute, occupied.TimeRemaining)
	assert.Equal(t, 60.0, occupied.HourlyRate)

	assert.Equal(t, time.Duration(0), resp.Slots[0].TimeRemaining)
	assert.Equal(t, 40.0, resp.Slots[2].HourlyRate)
}

func TestExecute_TimeRemainingIsComputedOnRead(t *testing.T) {
	uc, facility := seed(t)

	uc.WithTimeProvider(fixedTime{now: testNow.Add(time.Hour)})
	resp, err := uc.Execute(context.Background(), &Request{FacilityID: facility.ID, Floor: ptr.Ptr(1)})
	require.NoError(t, err)
	require.Len(t, resp.Slots, 2)
	assert.Equal(t, 30*time.Minute, resp.Slots[1].TimeRemaining)

	uc.WithTimeProvider(fixedTime{now: testNow.Add(2 * time.Hour)})
	resp, err = uc.Execute(context.Background(), &Request{FacilityID: facility.ID, Floor: ptr.Ptr(1)})
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), resp.Slots[1].TimeRemaining)
}

func TestExecute_Filters(t *testing.T) {
	uc, facility := seed(t)

	resp, err := uc.Execute(context.Background(), &Request{FacilityID: facility.ID, AvailableOnly: true})
	require.NoError(t, err)
	require.Len(t, resp.Slots, 1)
	assert.Equal(t, "F1-1", resp.Slots[0].Label)

	ev := domain.SlotEV
	resp, err = uc.Execute(context.Background(), &Request{FacilityID: facility.ID, SlotType: &ev})
	require.NoError(t, err)
	require.Len(t, resp.Slots, 1)
	assert.Equal(t, domain.SlotEV, resp.Slots[0].Type)
}

func TestExecute_Errors(t *testing.T) {
	uc, _ := seed(t)

	_, err := uc.Execute(context.Background(), &Request{FacilityID: uuid.New()})
	assert.ErrorIs(t, err, ErrFacilityNotFound)

	_, err = uc.Execute(context.Background(), &Request{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	bad := domain.SlotType("truck")
	_, err = uc.Execute(context.Background(), &Request{FacilityID: uuid.New(), SlotType: &bad})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
