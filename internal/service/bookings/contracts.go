package bookings

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/integrations/notificationservice"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	FindByAccessPIN(ctx context.Context, facilityID uuid.UUID, pin string) (*domain.Booking, error)
	GetByRequester(ctx context.Context, userID int64, status *domain.BookingStatus) ([]*domain.Booking, error)
	GetByHostWithFilter(ctx context.Context, filter domain.HostBookingsFilter) ([]*domain.Booking, error)
	GetPendingApprovalStartedBefore(ctx context.Context, now time.Time) ([]*domain.Booking, error)
	Update(ctx context.Context, b *domain.Booking) error
}

// FacilityRepository интерфейс репозитория площадок и мест
type FacilityRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Facility, error)
	GetSlot(ctx context.Context, id uuid.UUID) (*domain.Slot, error)
	UpdateSlot(ctx context.Context, s domain.Slot) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier интерфейс отправки уведомлений
type Notifier interface {
	Notify(ctx context.Context, n notificationservice.Notification) error
}

// Metrics доменные счетчики
type Metrics interface {
	IncBookingTransition(kind, status string)
	AddOverstayFee(amount float64)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
