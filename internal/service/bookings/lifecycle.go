package bookings

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/pricing"
	"github.com/m04kA/SMC-ParkingService/internal/service/bookings/models"
)

// Approve хост одобряет запрос на частное место
// Место перепроверяется: за время ожидания его могли занять
func (s *Service) Approve(ctx context.Context, id uuid.UUID, hostID int64) (*models.BookingResponse, error) {
	s.logger.Info("Approve: booking id=%s by host=%d", id, hostID)

	var result domain.Booking
	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		booking, err := s.getBooking(txCtx, "Approve", id)
		if err != nil {
			return err
		}
		if booking.HostID != hostID {
			s.logger.Warn("Approve: user=%d is not host of booking id=%s", hostID, id)
			return ErrAccessDenied
		}
		if booking.Status != domain.StatusPendingApproval {
			s.logger.Warn("Approve: booking id=%s has status=%s", id, booking.Status)
			return ErrInvalidTransition
		}

		// Площадку могли удалить, пока запрос ждал ответа
		facility, err := s.facilityRepo.GetByID(txCtx, booking.FacilityID)
		if err != nil {
			s.logger.Error("Approve: failed to get facility id=%s: %v", booking.FacilityID, err)
			return fmt.Errorf("%w: Approve - facility lookup: %v", ErrInternal, err)
		}
		if facility.IsDeleted {
			s.logger.Warn("Approve: facility id=%s of booking id=%s is deleted", facility.ID, id)
			return ErrSlotUnavailable
		}

		slot, err := s.getSlot(txCtx, "Approve", booking.SlotID)
		if err != nil {
			return err
		}
		bound, err := slot.Bind(booking.ID, booking.ScheduledEnd)
		if err != nil {
			s.logger.Warn("Approve: slot %s is no longer available for booking id=%s", slot.Label(), id)
			return ErrSlotUnavailable
		}

		pin, err := s.mintPIN(txCtx, "Approve", booking.FacilityID)
		if err != nil {
			return err
		}

		next, err := booking.Approve(s.timeProvider.Now(), pin)
		if err != nil {
			return mapTransitionError(err)
		}

		if err := s.saveSlot(txCtx, "Approve", bound); err != nil {
			return err
		}
		if err := s.saveBooking(txCtx, "Approve", &next); err != nil {
			return err
		}

		result = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.transitioned(result)
	s.notify(result.RequesterID, "Бронирование одобрено",
		fmt.Sprintf("Хост одобрил ваш запрос. Код доступа: %s", pinOf(result)), 0)

	s.logger.Info("Approve: booking id=%s approved", id)
	return models.FromDomainBooking(&result), nil
}

// Reject хост отклоняет запрос, место не затрагивается
func (s *Service) Reject(ctx context.Context, id uuid.UUID, hostID int64, reason string) (*models.BookingResponse, error) {
	s.logger.Info("Reject: booking id=%s by host=%d", id, hostID)

	if len(reason) > domain.MaxRejectionReasonLength {
		return nil, fmt.Errorf("%w: rejection reason is too long", ErrInvalidInput)
	}

	var result domain.Booking
	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		booking, err := s.getBooking(txCtx, "Reject", id)
		if err != nil {
			return err
		}
		if booking.HostID != hostID {
			s.logger.Warn("Reject: user=%d is not host of booking id=%s", hostID, id)
			return ErrAccessDenied
		}

		next, err := booking.Reject(s.timeProvider.Now(), reason)
		if err != nil {
			s.logger.Warn("Reject: booking id=%s has status=%s", id, booking.Status)
			return mapTransitionError(err)
		}

		if err := s.saveBooking(txCtx, "Reject", &next); err != nil {
			return err
		}
		result = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.transitioned(result)
	s.notify(result.RequesterID, "Запрос отклонен", reason, 0)

	s.logger.Info("Reject: booking id=%s rejected", id)
	return models.FromDomainBooking(&result), nil
}

// StartSession водитель заехал: pending/approved -> active
// Планирует предупреждения за 15 и 5 минут до окончания
func (s *Service) StartSession(ctx context.Context, id uuid.UUID) (*models.BookingResponse, error) {
	s.logger.Info("StartSession: booking id=%s", id)

	var result domain.Booking
	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		booking, err := s.getBooking(txCtx, "StartSession", id)
		if err != nil {
			return err
		}

		next, err := booking.Start(s.timeProvider.Now())
		if err != nil {
			s.logger.Warn("StartSession: booking id=%s has status=%s", id, booking.Status)
			return mapTransitionError(err)
		}

		if err := s.saveBooking(txCtx, "StartSession", &next); err != nil {
			return err
		}
		result = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.transitioned(result)
	s.scheduleEndWarnings(result)

	s.logger.Info("StartSession: booking id=%s is active", id)
	return models.FromDomainBooking(&result), nil
}

// Extend продлевает активную сессию на hours часов
// Повтор с тем же ключом идемпотентности возвращает сохраненное бронирование
func (s *Service) Extend(ctx context.Context, id uuid.UUID, requesterID int64, hours int, idempotencyKey string) (*models.BookingResponse, error) {
	s.logger.Info("Extend: booking id=%s by user=%d, hours=%d, key=%q", id, requesterID, hours, idempotencyKey)

	if hours <= 0 || hours > domain.MaxExtensionHours {
		return nil, fmt.Errorf("%w: hours must be in 1..%d", ErrInvalidInput, domain.MaxExtensionHours)
	}

	var (
		result    domain.Booking
		duplicate bool
	)
	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		booking, err := s.getBooking(txCtx, "Extend", id)
		if err != nil {
			return err
		}
		if booking.RequesterID != requesterID {
			s.logger.Warn("Extend: user=%d is not requester of booking id=%s", requesterID, id)
			return ErrAccessDenied
		}
		if booking.IsDuplicateExtension(idempotencyKey) {
			duplicate = true
			result = *booking
			return nil
		}

		newEnd := booking.ScheduledEnd.Add(time.Duration(hours) * time.Hour)
		newEstimate := pricing.Quote(booking.AgreedRate, booking.DurationType, booking.ScheduledStart, newEnd)

		next, err := booking.Extend(s.timeProvider.Now(), hours, newEstimate, idempotencyKey)
		if err != nil {
			s.logger.Warn("Extend: booking id=%s has status=%s", id, booking.Status)
			return mapTransitionError(err)
		}

		slot, err := s.getSlot(txCtx, "Extend", booking.SlotID)
		if err != nil {
			return err
		}
		extended, err := slot.ExtendBinding(booking.ID, next.ScheduledEnd)
		if err != nil {
			s.logger.Error("Extend: slot %s is not bound to booking id=%s", slot.Label(), id)
			return fmt.Errorf("%w: Extend - %v", ErrInternal, err)
		}

		if err := s.saveSlot(txCtx, "Extend", extended); err != nil {
			return err
		}
		if err := s.saveBooking(txCtx, "Extend", &next); err != nil {
			return err
		}
		result = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	if duplicate {
		s.logger.Info("Extend: key=%q already applied to booking id=%s", idempotencyKey, id)
		return models.FromDomainBooking(&result), nil
	}

	s.scheduleEndWarnings(result)
	s.logger.Info("Extend: booking id=%s extended until %s, estimate=%.2f",
		id, result.ScheduledEnd.Format(time.RFC3339), result.EstimatedCost)
	return models.FromDomainBooking(&result), nil
}

// EndSession завершает активную сессию, считает итоговую стоимость и освобождает место
// Повторный вызов для завершенного бронирования возвращает сохраненный результат
func (s *Service) EndSession(ctx context.Context, id uuid.UUID, userID int64) (*models.BookingResponse, error) {
	s.logger.Info("EndSession: booking id=%s by user=%d", id, userID)

	var (
		result         domain.Booking
		alreadyStopped bool
	)
	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		booking, err := s.getBooking(txCtx, "EndSession", id)
		if err != nil {
			return err
		}
		if !isParticipant(booking, userID) {
			s.logger.Warn("EndSession: access denied for user=%d to booking id=%s", userID, id)
			return ErrAccessDenied
		}
		if booking.Status == domain.StatusCompleted {
			alreadyStopped = true
			result = *booking
			return nil
		}

		facility, err := s.facilityRepo.GetByID(txCtx, booking.FacilityID)
		if err != nil {
			s.logger.Error("EndSession: failed to get facility id=%s: %v", booking.FacilityID, err)
			return fmt.Errorf("%w: EndSession - facility lookup: %v", ErrInternal, err)
		}

		now := s.timeProvider.Now()
		actualCost, overstayFee := pricing.FinalizeCost(*booking, now)
		earnings := pricing.HostEarnings(actualCost, booking.Kind, facility.FacilityType)

		next, err := booking.Complete(now, actualCost, overstayFee, earnings)
		if err != nil {
			s.logger.Warn("EndSession: booking id=%s has status=%s", id, booking.Status)
			return mapTransitionError(err)
		}

		slot, err := s.getSlot(txCtx, "EndSession", booking.SlotID)
		if err != nil {
			return err
		}
		if slot.IsBoundTo(booking.ID) {
			if err := s.saveSlot(txCtx, "EndSession", slot.Release()); err != nil {
				return err
			}
		}

		if err := s.saveBooking(txCtx, "EndSession", &next); err != nil {
			return err
		}
		result = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	if alreadyStopped {
		s.logger.Info("EndSession: booking id=%s already completed", id)
		return models.FromDomainBooking(&result), nil
	}

	s.transitioned(result)
	fee := valueOrZero(result.OverstayFee)
	if fee > 0 {
		s.metrics.AddOverstayFee(fee)
	}
	s.notify(result.RequesterID, "Парковка завершена",
		fmt.Sprintf("Итого к оплате: %.2f (штраф за превышение: %.2f)", valueOrZero(result.ActualCost), fee), 0)

	s.logger.Info("EndSession: booking id=%s completed, cost=%.2f, overstay=%.2f",
		id, valueOrZero(result.ActualCost), fee)
	return models.FromDomainBooking(&result), nil
}

// Cancel отменяет бронирование до начала сессии
// Отменить может водитель или хост, привязанное место освобождается
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, userID int64) (*models.BookingResponse, error) {
	s.logger.Info("Cancel: booking id=%s by user=%d", id, userID)

	var result domain.Booking
	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		booking, err := s.getBooking(txCtx, "Cancel", id)
		if err != nil {
			return err
		}
		if !isParticipant(booking, userID) {
			s.logger.Warn("Cancel: access denied for user=%d to booking id=%s", userID, id)
			return ErrAccessDenied
		}

		next, err := booking.Cancel(s.timeProvider.Now())
		if err != nil {
			s.logger.Warn("Cancel: booking id=%s cannot be cancelled, status=%s", id, booking.Status)
			return mapTransitionError(err)
		}

		if booking.IsLive() {
			slot, err := s.getSlot(txCtx, "Cancel", booking.SlotID)
			if err != nil {
				return err
			}
			if slot.IsBoundTo(booking.ID) {
				if err := s.saveSlot(txCtx, "Cancel", slot.Release()); err != nil {
					return err
				}
			}
		}

		if err := s.saveBooking(txCtx, "Cancel", &next); err != nil {
			return err
		}
		result = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.transitioned(result)
	other := result.HostID
	if userID == result.HostID {
		other = result.RequesterID
	}
	s.notify(other, "Бронирование отменено",
		fmt.Sprintf("Бронирование на %s отменено", result.ScheduledStart.Format("02.01 15:04")), 0)

	s.logger.Info("Cancel: booking id=%s cancelled", id)
	return models.FromDomainBooking(&result), nil
}

// ExpireStale переводит в expired запросы, по которым хост не ответил до начала
// Каждое бронирование обрабатывается в своей транзакции
func (s *Service) ExpireStale(ctx context.Context, now time.Time) (int, error) {
	stale, err := s.bookingRepo.GetPendingApprovalStartedBefore(ctx, now)
	if err != nil {
		s.logger.Error("ExpireStale: repository error: %v", err)
		return 0, fmt.Errorf("%w: ExpireStale - repository error: %v", ErrInternal, err)
	}

	expired := 0
	for _, candidate := range stale {
		var result domain.Booking
		err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
			booking, err := s.getBooking(txCtx, "ExpireStale", candidate.ID)
			if err != nil {
				return err
			}
			next, err := booking.Expire(now)
			if err != nil {
				return mapTransitionError(err)
			}
			if err := s.saveBooking(txCtx, "ExpireStale", &next); err != nil {
				return err
			}
			result = next
			return nil
		})
		if err != nil {
			// Хост мог ответить между выборкой и транзакцией
			s.logger.Warn("ExpireStale: booking id=%s skipped: %v", candidate.ID, err)
			continue
		}

		expired++
		s.transitioned(result)
		s.notify(result.RequesterID, "Запрос истек", "Хост не ответил на запрос до начала бронирования", 0)
	}

	if expired > 0 {
		s.logger.Info("ExpireStale: %d bookings expired", expired)
	}
	return expired, nil
}

func (s *Service) transitioned(b domain.Booking) {
	s.metrics.IncBookingTransition(string(b.Kind), string(b.Status))
}

func pinOf(b domain.Booking) string {
	pin, _ := b.AccessPIN()
	return pin
}
