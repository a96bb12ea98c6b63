package expiry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule проверка раз в минуту
const DefaultSchedule = "@every 1m"

const runTimeout = 30 * time.Second

// ErrInvalidSchedule возвращается при некорректном cron выражении
var ErrInvalidSchedule = errors.New("expiry: invalid schedule")

// Job периодически истекает заявки, чьё время начала прошло без решения хоста
type Job struct {
	expirer Expirer
	cron    *cron.Cron
	now     func() time.Time
	logger  Logger
}

// NewJob создает задачу по расписанию в формате cron (поддерживаются @every и дескрипторы)
func NewJob(expirer Expirer, schedule string, logger Logger) (*Job, error) {
	if schedule == "" {
		schedule = DefaultSchedule
	}

	j := &Job{
		expirer: expirer,
		now:     time.Now,
		logger:  logger,
	}
	j.cron = cron.New(cron.WithChain(
		cron.Recover(cron.DefaultLogger),
		cron.SkipIfStillRunning(cron.DefaultLogger),
	))

	if _, err := j.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		j.Run(ctx)
	}); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidSchedule, schedule, err)
	}

	return j, nil
}

// Start запускает планировщик в фоне
func (j *Job) Start() {
	j.logger.Info("expiry job started")
	j.cron.Start()
}

// Stop останавливает планировщик и ждёт завершения текущего запуска или отмены ctx
func (j *Job) Stop(ctx context.Context) {
	done := j.cron.Stop()
	select {
	case <-done.Done():
		j.logger.Info("expiry job stopped")
	case <-ctx.Done():
		j.logger.Warn("expiry job stop: %v", ctx.Err())
	}
}

// Run выполняет один проход
func (j *Job) Run(ctx context.Context) int {
	expired, err := j.expirer.ExpireStale(ctx, j.now())
	if err != nil {
		j.logger.Error("expiry job: %v", err)
		return expired
	}
	if expired > 0 {
		j.logger.Info("expiry job: expired %d bookings", expired)
	}
	return expired
}
