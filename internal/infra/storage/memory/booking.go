package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/booking"
)

// BookingRepository бронирования в памяти, ошибки как у PostgreSQL репозитория
type BookingRepository struct {
	store *Store
}

// NewBookingRepository создает репозиторий бронирований поверх хранилища
func NewBookingRepository(store *Store) *BookingRepository {
	return &BookingRepository{store: store}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	return r.store.run(ctx, func(t *tx) error {
		if err := checkSlotExclusive(t, b); err != nil {
			return err
		}
		t.bookings.put(b.ID, b.Clone())
		return nil
	})
}

func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	var result *domain.Booking
	err := r.store.run(ctx, func(t *tx) error {
		b, ok := t.bookings.get(id)
		if !ok {
			return bookingRepo.ErrBookingNotFound
		}
		c := b.Clone()
		result = &c
		return nil
	})
	return result, err
}

func (r *BookingRepository) FindByAccessPIN(ctx context.Context, facilityID uuid.UUID, pin string) (*domain.Booking, error) {
	found := r.filter(ctx, func(b domain.Booking) bool {
		p, ok := b.AccessPIN()
		return ok && p == pin && b.FacilityID == facilityID && b.IsLive()
	})
	if len(found) == 0 {
		return nil, bookingRepo.ErrBookingNotFound
	}

	sort.Slice(found, func(i, j int) bool {
		return found[i].CreatedAt.After(found[j].CreatedAt)
	})
	return found[0], nil
}

func (r *BookingRepository) GetByRequester(ctx context.Context, userID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	result := r.filter(ctx, func(b domain.Booking) bool {
		return b.RequesterID == userID && (status == nil || b.Status == *status)
	})
	sortByStartDesc(result)
	return result, nil
}

func (r *BookingRepository) GetByHostWithFilter(ctx context.Context, filter domain.HostBookingsFilter) ([]*domain.Booking, error) {
	result := r.filter(ctx, func(b domain.Booking) bool {
		if b.HostID != filter.HostID {
			return false
		}
		if filter.FacilityID != nil && b.FacilityID != *filter.FacilityID {
			return false
		}
		if filter.Status != nil {
			return b.Status == *filter.Status
		}
		return filter.IncludeInactive || !b.Status.IsTerminal()
	})
	sortByStartDesc(result)
	return result, nil
}

func (r *BookingRepository) GetPendingApprovalStartedBefore(ctx context.Context, now time.Time) ([]*domain.Booking, error) {
	result := r.filter(ctx, func(b domain.Booking) bool {
		return b.Status == domain.StatusPendingApproval && !b.ScheduledStart.After(now)
	})
	sort.Slice(result, func(i, j int) bool {
		return result[i].ScheduledStart.Before(result[j].ScheduledStart)
	})
	return result, nil
}

func (r *BookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	return r.store.run(ctx, func(t *tx) error {
		if _, ok := t.bookings.get(b.ID); !ok {
			return bookingRepo.ErrBookingNotFound
		}
		if err := checkSlotExclusive(t, b); err != nil {
			return err
		}
		t.bookings.put(b.ID, b.Clone())
		return nil
	})
}

func (r *BookingRepository) filter(ctx context.Context, keep func(b domain.Booking) bool) []*domain.Booking {
	result := make([]*domain.Booking, 0)
	_ = r.store.run(ctx, func(t *tx) error {
		for _, b := range t.bookings.all() {
			if keep(b) {
				c := b.Clone()
				result = append(result, &c)
			}
		}
		return nil
	})
	return result
}

// checkSlotExclusive аналог частичного уникального индекса: одно живое бронирование на место
func checkSlotExclusive(t *tx, b *domain.Booking) error {
	if !b.IsLive() {
		return nil
	}
	for _, other := range t.bookings.all() {
		if other.ID != b.ID && other.SlotID == b.SlotID && other.IsLive() {
			return bookingRepo.ErrSlotNotAvailable
		}
	}
	return nil
}

func sortByStartDesc(bookings []*domain.Booking) {
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].ScheduledStart.After(bookings[j].ScheduledStart)
	})
}
