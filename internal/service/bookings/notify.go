package bookings

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/integrations/notificationservice"
)

const (
	notifyTimeout = 5 * time.Second

	firstEndWarning  = 15 * time.Minute
	secondEndWarning = 5 * time.Minute
)

// notify отправляет уведомление в фоне, после коммита транзакции
// Ошибка доставки только логируется
func (s *Service) notify(userID int64, title, body string, delay time.Duration) {
	if s.notifier == nil {
		return
	}

	n := notificationservice.Notification{
		UserID: userID,
		Title:  title,
		Body:   body,
		Delay:  delay,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if err := s.notifier.Notify(ctx, n); err != nil {
			s.logger.Warn("notify: failed to send %q to user=%d: %v", title, userID, err)
		}
	}()
}

// scheduleEndWarnings предупреждения за 15 и 5 минут до окончания
// Уже прошедшие моменты пропускаются
func (s *Service) scheduleEndWarnings(b domain.Booking) {
	now := s.timeProvider.Now()
	for _, before := range []time.Duration{firstEndWarning, secondEndWarning} {
		delay := b.ScheduledEnd.Add(-before).Sub(now)
		if delay <= 0 {
			continue
		}
		s.notify(b.RequesterID, "Парковка скоро закончится",
			fmt.Sprintf("До окончания бронирования осталось %d минут", int(before.Minutes())), delay)
	}
}
