package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/booking"
	facilityRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/facility"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newFacility(slots int) *domain.Facility {
	f := &domain.Facility{
		ID:           uuid.New(),
		OwnerID:      7,
		Kind:         domain.KindCommercial,
		Name:         "Central",
		FacilityType: domain.FacilityMall,
		Pricing:      domain.Pricing{HourlyRate: 50},
		CreatedAt:    testNow,
		UpdatedAt:    testNow,
	}
	for i := 1; i <= slots; i++ {
		f.Slots = append(f.Slots, domain.Slot{
			ID:         uuid.New(),
			FacilityID: f.ID,
			Floor:      1,
			Number:     i,
			Type:       domain.SlotRegular,
		})
	}
	return f
}

func newBooking(f *domain.Facility, slot domain.Slot) *domain.Booking {
	return &domain.Booking{
		ID:             uuid.New(),
		Kind:           f.Kind,
		FacilityID:     f.ID,
		SlotID:         slot.ID,
		RequesterID:    42,
		HostID:         f.OwnerID,
		ScheduledStart: testNow,
		ScheduledEnd:   testNow.Add(2 * time.Hour),
		DurationType:   domain.DurationHourly,
		AgreedRate:     50,
		Status:         domain.StatusPending,
		CreatedAt:      testNow,
		UpdatedAt:      testNow,
	}
}

func TestFacilityRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := NewFacilityRepository(store)

	f := newFacility(3)
	require.NoError(t, repo.Create(ctx, f))

	got, err := repo.GetByID(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, "Central", got.Name)
	require.Len(t, got.Slots, 3)
	assert.Equal(t, 1, got.Slots[0].Number)
	assert.Equal(t, 3, got.Slots[2].Number)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, facilityRepo.ErrFacilityNotFound)
}

func TestFacilityRepository_DuplicateSlot(t *testing.T) {
	ctx := context.Background()
	repo := NewFacilityRepository(NewStore())

	f := newFacility(1)
	require.NoError(t, repo.Create(ctx, f))

	dup := f.Slots[0]
	dup.ID = uuid.New()
	err := repo.AddSlots(ctx, []domain.Slot{dup})
	assert.ErrorIs(t, err, facilityRepo.ErrDuplicateSlot)
}

func TestFacilityRepository_ListFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewFacilityRepository(NewStore())

	older := newFacility(0)
	newer := newFacility(0)
	newer.CreatedAt = testNow.Add(time.Hour)
	deleted := newFacility(0)
	deleted.IsDeleted = true
	for _, f := range []*domain.Facility{older, newer, deleted} {
		require.NoError(t, repo.Create(ctx, f))
	}

	list, err := repo.List(ctx, domain.FacilityFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)

	list, err = repo.List(ctx, domain.FacilityFilter{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestBookingRepository_OneLiveBookingPerSlot(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	facilities := NewFacilityRepository(store)
	bookings := NewBookingRepository(store)

	f := newFacility(1)
	require.NoError(t, facilities.Create(ctx, f))

	first := newBooking(f, f.Slots[0])
	require.NoError(t, bookings.Create(ctx, first))

	second := newBooking(f, f.Slots[0])
	assert.ErrorIs(t, bookings.Create(ctx, second), bookingRepo.ErrSlotNotAvailable)

	first.Status = domain.StatusCancelled
	require.NoError(t, bookings.Update(ctx, first))
	assert.NoError(t, bookings.Create(ctx, second))
}

func TestBookingRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	bookings := NewBookingRepository(store)

	f := newFacility(1)
	b := newBooking(f, f.Slots[0])
	require.NoError(t, bookings.Create(ctx, b))

	got, err := bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	got.Status = domain.StatusActive

	again, err := bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, again.Status)
}

func TestBookingRepository_HostFilter(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	bookings := NewBookingRepository(store)

	f := newFacility(2)
	live := newBooking(f, f.Slots[0])
	done := newBooking(f, f.Slots[1])
	done.Status = domain.StatusCompleted
	require.NoError(t, bookings.Create(ctx, live))
	require.NoError(t, bookings.Create(ctx, done))

	list, err := bookings.GetByHostWithFilter(ctx, domain.HostBookingsFilter{HostID: f.OwnerID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, live.ID, list[0].ID)

	list, err = bookings.GetByHostWithFilter(ctx, domain.HostBookingsFilter{HostID: f.OwnerID, IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestStore_RollbackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	facilities := NewFacilityRepository(store)

	f := newFacility(1)
	require.NoError(t, facilities.Create(ctx, f))

	errBoom := errors.New("boom")
	err := store.DoSerializable(ctx, func(txCtx context.Context) error {
		slot, err := facilities.GetSlot(txCtx, f.Slots[0].ID)
		require.NoError(t, err)
		bound, err := slot.Bind(uuid.New(), testNow.Add(time.Hour))
		require.NoError(t, err)
		require.NoError(t, facilities.UpdateSlot(txCtx, bound))

		inside, err := facilities.GetSlot(txCtx, f.Slots[0].ID)
		require.NoError(t, err)
		assert.True(t, inside.Occupied)
		return errBoom
	})
	assert.ErrorIs(t, err, errBoom)

	slot, err := facilities.GetSlot(ctx, f.Slots[0].ID)
	require.NoError(t, err)
	assert.False(t, slot.Occupied)
}

func TestStore_NestedTransactionReusesOuter(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	facilities := NewFacilityRepository(store)
	f := newFacility(0)

	err := store.Do(ctx, func(outer context.Context) error {
		return store.DoSerializable(outer, func(inner context.Context) error {
			return facilities.Create(inner, f)
		})
	})
	require.NoError(t, err)

	_, err = facilities.GetByID(ctx, f.ID)
	assert.NoError(t, err)
}
