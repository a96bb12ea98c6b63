package expiry

import (
	"context"
	"time"
)

// Expirer переводит заявки без ответа хоста в expired
type Expirer interface {
	ExpireStale(ctx context.Context, now time.Time) (int, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
