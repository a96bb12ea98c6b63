package list_booking_disputes

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ParkingService/internal/service/disputes/models"
)

type DisputeService interface {
	ListByBooking(ctx context.Context, bookingID uuid.UUID, userID int64) (*models.DisputeListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
