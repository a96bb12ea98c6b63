package verify_entry

import (
	"context"

	"github.com/m04kA/SMC-ParkingService/internal/usecase/verify_access"
)

type AccessUseCase interface {
	VerifyEntry(ctx context.Context, req *verify_access.Request, hostID int64) (*verify_access.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
