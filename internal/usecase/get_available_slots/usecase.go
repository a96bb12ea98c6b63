package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	facilityRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/facility"
	"github.com/m04kA/SMC-ParkingService/internal/pricing"
)

// UseCase use case для получения мест площадки с оставшимся временем занятости
type UseCase struct {
	facilityRepo FacilityRepository
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(facilityRepo FacilityRepository, logger Logger) *UseCase {
	return &UseCase{
		facilityRepo: facilityRepo,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case получения мест
// Оставшееся время считается на чтении, в хранилище не обновляется
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: facility=%s, availableOnly=%t", req.FacilityID, req.AvailableOnly)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем площадку вместе с местами
	facility, err := uc.facilityRepo.GetByID(ctx, req.FacilityID)
	if err != nil {
		if errors.Is(err, facilityRepo.ErrFacilityNotFound) {
			uc.logger.Warn("GetAvailableSlots: facility id=%s not found", req.FacilityID)
			return nil, ErrFacilityNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get facility id=%s: %v", req.FacilityID, err)
		return nil, fmt.Errorf("%w: failed to get facility: %v", ErrInternal, err)
	}
	if facility.IsDeleted {
		uc.logger.Warn("GetAvailableSlots: facility id=%s is deleted", req.FacilityID)
		return nil, ErrFacilityNotFound
	}

	// 3. Собираем места с учетом фильтров
	now := uc.timeProvider.Now()
	slots := make([]Slot, 0, len(facility.Slots))
	for _, s := range facility.Slots {
		if !matches(req, s) {
			continue
		}

		rate, _ := pricing.AgreedRate(facility, s, domain.DurationHourly)
		slots = append(slots, Slot{
			ID:             s.ID,
			Label:          s.Label(),
			Floor:          s.Floor,
			Number:         s.Number,
			Type:           s.Type,
			HourlyRate:     rate,
			Available:      s.IsAvailable(),
			Occupied:       s.Occupied,
			Disabled:       s.Disabled,
			BookingEndTime: s.BookingEndTime,
			TimeRemaining:  s.TimeRemaining(now),
		})
	}

	uc.logger.Info("GetAvailableSlots: facility=%s, %d/%d available, %d returned",
		facility.ID, facility.AvailableSlots(), facility.TotalSlots(), len(slots))

	return &Response{
		FacilityID:     facility.ID,
		FacilityName:   facility.Name,
		Kind:           facility.Kind,
		TotalSlots:     facility.TotalSlots(),
		AvailableSlots: facility.AvailableSlots(),
		Slots:          slots,
	}, nil
}

func matches(req *Request, s domain.Slot) bool {
	if req.AvailableOnly && !s.IsAvailable() {
		return false
	}
	if req.Floor != nil && s.Floor != *req.Floor {
		return false
	}
	if req.SlotType != nil && s.Type != *req.SlotType {
		return false
	}
	return true
}
