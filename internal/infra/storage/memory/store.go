// Package memory is the in-process storage driver.
// One mutex is held for the whole transaction; writes are staged and applied on commit.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// Store хранилище всех сущностей в памяти процесса
type Store struct {
	mu sync.Mutex

	facilities map[uuid.UUID]domain.Facility // без мест
	slots      map[uuid.UUID]domain.Slot
	bookings   map[uuid.UUID]domain.Booking
	disputes   map[uuid.UUID]domain.DisputeReport
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{
		facilities: make(map[uuid.UUID]domain.Facility),
		slots:      make(map[uuid.UUID]domain.Slot),
		bookings:   make(map[uuid.UUID]domain.Booking),
		disputes:   make(map[uuid.UUID]domain.DisputeReport),
	}
}

// table строки хранилища с изменениями текущей транзакции поверх
type table[T any] struct {
	base    map[uuid.UUID]T
	changes map[uuid.UUID]T
}

func (t table[T]) get(id uuid.UUID) (T, bool) {
	if v, ok := t.changes[id]; ok {
		return v, true
	}
	v, ok := t.base[id]
	return v, ok
}

func (t table[T]) put(id uuid.UUID, v T) {
	t.changes[id] = v
}

func (t table[T]) all() []T {
	result := make([]T, 0, len(t.base)+len(t.changes))
	for id, v := range t.base {
		if _, changed := t.changes[id]; !changed {
			result = append(result, v)
		}
	}
	for _, v := range t.changes {
		result = append(result, v)
	}
	return result
}

func (t table[T]) commit() {
	for id, v := range t.changes {
		t.base[id] = v
	}
}

// tx набор изменений одной транзакции
type tx struct {
	facilities table[domain.Facility]
	slots      table[domain.Slot]
	bookings   table[domain.Booking]
	disputes   table[domain.DisputeReport]
}

func (s *Store) newTx() *tx {
	return &tx{
		facilities: table[domain.Facility]{base: s.facilities, changes: make(map[uuid.UUID]domain.Facility)},
		slots:      table[domain.Slot]{base: s.slots, changes: make(map[uuid.UUID]domain.Slot)},
		bookings:   table[domain.Booking]{base: s.bookings, changes: make(map[uuid.UUID]domain.Booking)},
		disputes:   table[domain.DisputeReport]{base: s.disputes, changes: make(map[uuid.UUID]domain.DisputeReport)},
	}
}

func (t *tx) commit() {
	t.facilities.commit()
	t.slots.commit()
	t.bookings.commit()
	t.disputes.commit()
}

type txKey struct{}

func txFromContext(ctx context.Context) (*tx, bool) {
	t, ok := ctx.Value(txKey{}).(*tx)
	return t, ok && t != nil
}

// run выполняет fn над согласованным состоянием
// Внутри транзакции мьютекс уже захвачен, вне её каждый вызов является отдельной транзакцией
func (s *Store) run(ctx context.Context, fn func(t *tx) error) error {
	if t, ok := txFromContext(ctx); ok {
		return fn(t)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.newTx()
	if err := fn(t); err != nil {
		return err
	}
	t.commit()
	return nil
}

// Do выполняет fn в транзакции хранилища
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.newTx()
	if err := fn(context.WithValue(ctx, txKey{}, t)); err != nil {
		return err
	}
	t.commit()
	return nil
}

// DoSerializable в памяти все транзакции и так последовательны
func (s *Store) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.Do(ctx, fn)
}

// DoReadOnly выполняет fn под тем же мьютексом
func (s *Store) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.Do(ctx, fn)
}
