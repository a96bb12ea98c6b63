package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	disputeRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/dispute"
)

// DisputeRepository жалобы в памяти
type DisputeRepository struct {
	store *Store
}

// NewDisputeRepository создает репозиторий жалоб поверх хранилища
func NewDisputeRepository(store *Store) *DisputeRepository {
	return &DisputeRepository{store: store}
}

func (r *DisputeRepository) Create(ctx context.Context, d *domain.DisputeReport) error {
	return r.store.run(ctx, func(t *tx) error {
		t.disputes.put(d.ID, cloneDispute(*d))
		return nil
	})
}

func (r *DisputeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.DisputeReport, error) {
	var result *domain.DisputeReport
	err := r.store.run(ctx, func(t *tx) error {
		d, ok := t.disputes.get(id)
		if !ok {
			return disputeRepo.ErrDisputeNotFound
		}
		c := cloneDispute(d)
		result = &c
		return nil
	})
	return result, err
}

func (r *DisputeRepository) GetByBooking(ctx context.Context, bookingID uuid.UUID) ([]*domain.DisputeReport, error) {
	result := make([]*domain.DisputeReport, 0)
	err := r.store.run(ctx, func(t *tx) error {
		for _, d := range t.disputes.all() {
			if d.BookingID == bookingID {
				c := cloneDispute(d)
				result = append(result, &c)
			}
		}
		return nil
	})

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, err
}

func (r *DisputeRepository) Update(ctx context.Context, d *domain.DisputeReport) error {
	return r.store.run(ctx, func(t *tx) error {
		if _, ok := t.disputes.get(d.ID); !ok {
			return disputeRepo.ErrDisputeNotFound
		}
		t.disputes.put(d.ID, cloneDispute(*d))
		return nil
	})
}

func cloneDispute(d domain.DisputeReport) domain.DisputeReport {
	d.PhotoURLs = append([]string(nil), d.PhotoURLs...)
	return d
}
