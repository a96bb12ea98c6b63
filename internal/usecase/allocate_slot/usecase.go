package allocate_slot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ParkingService/internal/accesscode"
	"github.com/m04kA/SMC-ParkingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/booking"
	facilityRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/facility"
	"github.com/m04kA/SMC-ParkingService/internal/integrations/notificationservice"
	"github.com/m04kA/SMC-ParkingService/internal/pricing"
	"github.com/m04kA/SMC-ParkingService/pkg/txmanager"
)

const notifyTimeout = 5 * time.Second

// UseCase use case для бронирования места
type UseCase struct {
	facilityRepo FacilityRepository
	bookingRepo  BookingRepository
	txManager    TransactionManager
	notifier     Notifier
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
	generatePIN  func() (string, error)
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	facilityRepo FacilityRepository,
	bookingRepo BookingRepository,
	txManager TransactionManager,
	notifier Notifier,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		facilityRepo: facilityRepo,
		bookingRepo:  bookingRepo,
		txManager:    txManager,
		notifier:     notifier,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
		generatePIN:  accesscode.GeneratePIN,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case бронирования места
// Использует сериализуемую транзакцию: из двух одновременных запросов на одно место выигрывает один
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("AllocateSlot: user=%d, facility=%s, slot=%s, %s..%s, duration=%s",
		req.RequesterID, req.FacilityID, req.SlotID,
		req.Start.Format(time.RFC3339), req.End.Format(time.RFC3339), req.DurationType)

	// 1. Валидация входных данных
	now := uc.timeProvider.Now()
	if err := validateRequest(req, now); err != nil {
		uc.logger.Warn("AllocateSlot: validation failed: %v", err)
		return nil, err
	}

	var (
		result    domain.Booking
		slotLabel string
	)

	// 2. Выполняем операции с хранилищем в сериализуемой транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 2.1. Получаем площадку
		facility, err := uc.facilityRepo.GetByID(txCtx, req.FacilityID)
		if err != nil {
			if errors.Is(err, facilityRepo.ErrFacilityNotFound) {
				uc.logger.Warn("AllocateSlot: facility id=%s not found", req.FacilityID)
				return ErrFacilityNotFound
			}
			uc.logger.Error("AllocateSlot: failed to get facility id=%s: %v", req.FacilityID, err)
			return fmt.Errorf("%w: failed to get facility: %v", ErrInternal, err)
		}
		if facility.IsDeleted {
			uc.logger.Warn("AllocateSlot: facility id=%s is deleted", req.FacilityID)
			return ErrFacilityNotFound
		}

		if facility.OwnerID == req.RequesterID {
			return fmt.Errorf("%w: host cannot book own facility", ErrInvalidInput)
		}

		if !facility.AllowsDuration(req.DurationType) {
			uc.logger.Warn("AllocateSlot: duration=%s is not offered by facility id=%s", req.DurationType, facility.ID)
			return fmt.Errorf("%w: durationType %s is not offered", ErrInvalidInput, req.DurationType)
		}

		// 2.2. Получаем место с блокировкой строки (FOR UPDATE)
		slot, err := uc.facilityRepo.GetSlot(txCtx, req.SlotID)
		if err != nil {
			if errors.Is(err, facilityRepo.ErrSlotNotFound) {
				uc.logger.Warn("AllocateSlot: slot id=%s not found", req.SlotID)
				return ErrSlotNotFound
			}
			uc.logger.Error("AllocateSlot: failed to get slot id=%s: %v", req.SlotID, err)
			return fmt.Errorf("%w: failed to get slot: %v", ErrInternal, err)
		}
		if slot.FacilityID != facility.ID {
			uc.logger.Warn("AllocateSlot: slot id=%s does not belong to facility id=%s", slot.ID, facility.ID)
			return ErrSlotNotFound
		}

		// 2.3. Проверяем доступность места
		if !slot.IsAvailable() {
			uc.logger.Warn("AllocateSlot: slot %s is not available (occupied=%t, disabled=%t)",
				slot.Label(), slot.Occupied, slot.Disabled)
			uc.metrics.IncAllocationConflict()
			return ErrSlotUnavailable
		}

		// 2.4. Считаем стоимость
		rate, ok := pricing.AgreedRate(facility, *slot, req.DurationType)
		if !ok {
			return fmt.Errorf("%w: no %s rate", ErrInvalidInput, req.DurationType)
		}

		booking := domain.Booking{
			ID:             uuid.New(),
			Kind:           facility.Kind,
			FacilityID:     facility.ID,
			SlotID:         slot.ID,
			RequesterID:    req.RequesterID,
			HostID:         facility.OwnerID,
			RequestedAt:    now,
			ScheduledStart: req.Start,
			ScheduledEnd:   req.End,
			DurationType:   req.DurationType,
			AgreedRate:     rate,
			EstimatedCost:  pricing.Quote(rate, req.DurationType, req.Start, req.End),
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		// 2.5. Начальный статус зависит от типа площадки
		bindSlot := true
		switch {
		case facility.Kind == domain.KindCommercial:
			booking.Status = domain.StatusPending
		case facility.RequiresApproval():
			booking.Status = domain.StatusPendingApproval
			booking.Private = &domain.PrivateTerms{}
			bindSlot = false
		default:
			pin, err := uc.mintPIN(txCtx, facility.ID)
			if err != nil {
				return err
			}
			booking.Status = domain.StatusApproved
			booking.Private = &domain.PrivateTerms{
				ApprovalTime: &now,
				AccessPIN:    &pin,
			}
		}

		// 2.6. Привязываем место
		if bindSlot {
			bound, err := slot.Bind(booking.ID, booking.ScheduledEnd)
			if err != nil {
				uc.metrics.IncAllocationConflict()
				return ErrSlotUnavailable
			}
			if err := uc.facilityRepo.UpdateSlot(txCtx, bound); err != nil {
				uc.logger.Error("AllocateSlot: failed to bind slot id=%s: %v", slot.ID, err)
				return fmt.Errorf("%w: failed to bind slot: %v", ErrInternal, err)
			}
		}

		// 2.7. Сохраняем бронирование
		if err := uc.bookingRepo.Create(txCtx, &booking); err != nil {
			if errors.Is(err, bookingRepo.ErrSlotNotAvailable) {
				uc.logger.Warn("AllocateSlot: slot %s taken concurrently", slot.Label())
				uc.metrics.IncAllocationConflict()
				return ErrSlotUnavailable
			}
			uc.logger.Error("AllocateSlot: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		result = booking
		slotLabel = slot.Label()
		return nil
	})

	if err != nil {
		if errors.Is(err, txmanager.ErrSerializationFailure) {
			uc.logger.Warn("AllocateSlot: serialization conflict on slot id=%s", req.SlotID)
			uc.metrics.IncAllocationConflict()
			return nil, ErrSlotUnavailable
		}
		return nil, err
	}

	uc.metrics.IncBookingTransition(string(result.Kind), string(result.Status))
	uc.notifyCreated(result, slotLabel)

	uc.logger.Info("AllocateSlot: booking id=%s created with status=%s, slot=%s, estimate=%.2f",
		result.ID, result.Status, slotLabel, result.EstimatedCost)

	return &Response{
		Booking:   result,
		SlotLabel: slotLabel,
	}, nil
}

// mintPIN генерирует PIN, не совпадающий с PIN живых бронирований площадки
func (uc *UseCase) mintPIN(ctx context.Context, facilityID uuid.UUID) (string, error) {
	pin, err := accesscode.UniquePIN(uc.generatePIN, func(pin string) (bool, error) {
		_, err := uc.bookingRepo.FindByAccessPIN(ctx, facilityID, pin)
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return false, nil
		}
		return err == nil, err
	})
	if err != nil {
		uc.logger.Error("AllocateSlot: failed to generate PIN for facility=%s: %v", facilityID, err)
		return "", fmt.Errorf("%w: failed to generate PIN: %v", ErrInternal, err)
	}
	return pin, nil
}

// notifyCreated уведомления после коммита, не блокируют ответ
func (uc *UseCase) notifyCreated(b domain.Booking, slotLabel string) {
	if uc.notifier == nil {
		return
	}

	var notifications []notificationservice.Notification
	if b.Status == domain.StatusPendingApproval {
		notifications = append(notifications,
			notificationservice.Notification{
				UserID: b.RequesterID,
				Title:  "Запрос отправлен",
				Body:   fmt.Sprintf("Ожидаем ответа хоста по месту %s", slotLabel),
			},
			notificationservice.Notification{
				UserID: b.HostID,
				Title:  "Новый запрос на бронирование",
				Body:   fmt.Sprintf("Место %s с %s", slotLabel, b.ScheduledStart.Format("02.01 15:04")),
			},
		)
	} else {
		notifications = append(notifications, notificationservice.Notification{
			UserID: b.RequesterID,
			Title:  "Бронирование подтверждено",
			Body:   fmt.Sprintf("Место %s, стоимость %.2f", slotLabel, b.EstimatedCost),
		})
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		for _, n := range notifications {
			if err := uc.notifier.Notify(ctx, n); err != nil {
				uc.logger.Warn("AllocateSlot: failed to notify user=%d: %v", n.UserID, err)
			}
		}
	}()
}
