package verify_exit

import (
	"context"

	"github.com/m04kA/SMC-ParkingService/internal/usecase/verify_access"
)

type AccessUseCase interface {
	VerifyExit(ctx context.Context, req *verify_access.Request, userID int64) (*verify_access.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
