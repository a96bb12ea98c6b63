package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	facilityRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/facility"
)

// FacilityRepository площадки и места в памяти, ошибки как у PostgreSQL репозитория
type FacilityRepository struct {
	store *Store
}

// NewFacilityRepository создает репозиторий площадок поверх хранилища
func NewFacilityRepository(store *Store) *FacilityRepository {
	return &FacilityRepository{store: store}
}

func (r *FacilityRepository) Create(ctx context.Context, f *domain.Facility) error {
	return r.store.run(ctx, func(t *tx) error {
		stored := *f
		stored.Slots = nil
		t.facilities.put(f.ID, stored)
		return putSlots(t, f.Slots)
	})
}

func (r *FacilityRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Facility, error) {
	var result *domain.Facility
	err := r.store.run(ctx, func(t *tx) error {
		f, ok := t.facilities.get(id)
		if !ok {
			return facilityRepo.ErrFacilityNotFound
		}
		result = withSlots(t, f)
		return nil
	})
	return result, err
}

func (r *FacilityRepository) List(ctx context.Context, filter domain.FacilityFilter) ([]*domain.Facility, error) {
	result := make([]*domain.Facility, 0)
	err := r.store.run(ctx, func(t *tx) error {
		for _, f := range t.facilities.all() {
			if filter.Kind != nil && f.Kind != *filter.Kind {
				continue
			}
			if filter.OwnerID != nil && f.OwnerID != *filter.OwnerID {
				continue
			}
			if f.IsDeleted && !filter.IncludeDeleted {
				continue
			}
			result = append(result, withSlots(t, f))
		}
		return nil
	})

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, err
}

func (r *FacilityRepository) Update(ctx context.Context, f *domain.Facility) error {
	return r.store.run(ctx, func(t *tx) error {
		if _, ok := t.facilities.get(f.ID); !ok {
			return facilityRepo.ErrFacilityNotFound
		}
		stored := *f
		stored.Slots = nil
		t.facilities.put(f.ID, stored)
		return nil
	})
}

func (r *FacilityRepository) AddSlots(ctx context.Context, slots []domain.Slot) error {
	return r.store.run(ctx, func(t *tx) error {
		return putSlots(t, slots)
	})
}

func (r *FacilityRepository) GetSlot(ctx context.Context, id uuid.UUID) (*domain.Slot, error) {
	var result *domain.Slot
	err := r.store.run(ctx, func(t *tx) error {
		s, ok := t.slots.get(id)
		if !ok {
			return facilityRepo.ErrSlotNotFound
		}
		result = &s
		return nil
	})
	return result, err
}

func (r *FacilityRepository) UpdateSlot(ctx context.Context, s domain.Slot) error {
	return r.store.run(ctx, func(t *tx) error {
		if _, ok := t.slots.get(s.ID); !ok {
			return facilityRepo.ErrSlotNotFound
		}
		t.slots.put(s.ID, s)
		return nil
	})
}

func putSlots(t *tx, slots []domain.Slot) error {
	type position struct {
		facility      uuid.UUID
		floor, number int
	}

	taken := make(map[position]bool)
	for _, s := range t.slots.all() {
		taken[position{s.FacilityID, s.Floor, s.Number}] = true
	}

	for _, s := range slots {
		p := position{s.FacilityID, s.Floor, s.Number}
		if taken[p] {
			return facilityRepo.ErrDuplicateSlot
		}
		taken[p] = true
		t.slots.put(s.ID, s)
	}
	return nil
}

func withSlots(t *tx, f domain.Facility) *domain.Facility {
	f.Slots = make([]domain.Slot, 0)
	for _, s := range t.slots.all() {
		if s.FacilityID == f.ID {
			f.Slots = append(f.Slots, s)
		}
	}
	domain.SortSlots(f.Slots)
	return &f
}
