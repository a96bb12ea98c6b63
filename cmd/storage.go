package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ParkingService/internal/config"
	"github.com/m04kA/SMC-ParkingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/booking"
	disputeRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/dispute"
	facilityRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/facility"
	"github.com/m04kA/SMC-ParkingService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-ParkingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ParkingService/pkg/logger"
	"github.com/m04kA/SMC-ParkingService/pkg/metrics"
	"github.com/m04kA/SMC-ParkingService/pkg/txmanager"
)

type facilityRepository interface {
	Create(ctx context.Context, f *domain.Facility) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Facility, error)
	List(ctx context.Context, filter domain.FacilityFilter) ([]*domain.Facility, error)
	Update(ctx context.Context, f *domain.Facility) error
	AddSlots(ctx context.Context, slots []domain.Slot) error
	GetSlot(ctx context.Context, id uuid.UUID) (*domain.Slot, error)
	UpdateSlot(ctx context.Context, s domain.Slot) error
}

type bookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	FindByAccessPIN(ctx context.Context, facilityID uuid.UUID, pin string) (*domain.Booking, error)
	GetByRequester(ctx context.Context, userID int64, status *domain.BookingStatus) ([]*domain.Booking, error)
	GetByHostWithFilter(ctx context.Context, filter domain.HostBookingsFilter) ([]*domain.Booking, error)
	GetPendingApprovalStartedBefore(ctx context.Context, now time.Time) ([]*domain.Booking, error)
	Update(ctx context.Context, b *domain.Booking) error
}

type disputeRepository interface {
	Create(ctx context.Context, d *domain.DisputeReport) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.DisputeReport, error)
	GetByBooking(ctx context.Context, bookingID uuid.UUID) ([]*domain.DisputeReport, error)
	Update(ctx context.Context, d *domain.DisputeReport) error
}

type txManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// storage репозитории и менеджер транзакций выбранного хранилища
type storage struct {
	facilities facilityRepository
	bookings   bookingRepository
	disputes   disputeRepository
	tx         txManager

	close func()
}

func openStorage(cfg *config.Config, m *metrics.Metrics, stop <-chan struct{}, log *logger.Logger) (*storage, error) {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		log.Warn("Using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return &storage{
			facilities: memory.NewFacilityRepository(store),
			bookings:   memory.NewBookingRepository(store),
			disputes:   memory.NewDisputeRepository(store),
			tx:         store,
			close:      func() {},
		}, nil
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Без метрик обёртка просто проксирует вызовы
	wrapped := dbmetrics.WrapWithDefault(db, m, stop)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := wrapped.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	return &storage{
		facilities: facilityRepo.NewRepository(wrapped),
		bookings:   bookingRepo.NewRepository(wrapped),
		disputes:   disputeRepo.NewRepository(wrapped),
		tx:         txmanager.NewTransactionManager(wrapped),
		close:      func() { db.Close() },
	}, nil
}
