package open_dispute

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ParkingService/internal/service/disputes/models"
)

type DisputeService interface {
	Open(ctx context.Context, bookingID uuid.UUID, req *models.OpenDisputeRequest) (*models.DisputeResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
