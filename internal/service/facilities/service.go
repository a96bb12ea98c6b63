package facilities

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	facilityRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/facility"
	"github.com/m04kA/SMC-ParkingService/internal/pricing"
	"github.com/m04kA/SMC-ParkingService/internal/service/facilities/models"
)

// DefaultSearchRadiusMeters радиус поиска, если он не передан
const DefaultSearchRadiusMeters = 5000.0

var knownAmenities = map[string]struct{}{
	"cctv":          {},
	"covered":       {},
	"evCharging":    {},
	"accessible":    {},
	"open24Hours":   {},
	"valet":         {},
	"carWash":       {},
	"securityGuard": {},
	"waterAccess":   {},
}

// Service сервис управления площадками и местами
type Service struct {
	facilityRepo FacilityRepository
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса площадок
func NewService(
	facilityRepo FacilityRepository,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		facilityRepo: facilityRepo,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider устанавливает кастомный TimeProvider (для тестирования)
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// Create создает площадку вместе с начальными местами
// Коммерческие площадки всегда принимают бронирования автоматически
func (s *Service) Create(ctx context.Context, req *models.CreateFacilityRequest) (*models.FacilityResponse, error) {
	s.logger.Info("Create: creating %s facility %q by user=%d", req.Kind, req.Name, req.UserID)

	// 1. Валидируем входные данные
	if req.UserID <= 0 {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if !domain.InventoryKind(req.Kind).IsValid() {
		s.logger.Warn("Create: invalid kind %q", req.Kind)
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidInput, req.Kind)
	}

	now := s.timeProvider.Now()
	facility := req.ToDomainFacility(uuid.New(), now)
	if facility.Kind == domain.KindCommercial {
		facility.AutoAcceptBookings = true
	}
	if err := validateFacility(facility); err != nil {
		s.logger.Warn("Create: validation failed: %v", err)
		return nil, err
	}

	// 2. Нарезаем начальные места
	for _, spec := range req.Slots {
		if err := appendSlots(facility, spec.Floor, spec.Count, spec.Type); err != nil {
			s.logger.Warn("Create: invalid slot spec: %v", err)
			return nil, err
		}
	}

	// 3. Сохраняем площадку
	err := s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		return s.facilityRepo.Create(ctx, facility)
	})
	if err != nil {
		if errors.Is(err, facilityRepo.ErrDuplicateSlot) {
			return nil, ErrSlotConflict
		}
		s.logger.Error("Create: repository error: %v", err)
		return nil, fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Create: successfully created facility id=%s with %d slots", facility.ID, facility.TotalSlots())
	return models.FromDomainFacility(facility), nil
}

// Get получает площадку по ID
// Публичный метод - доступен всем
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.FacilityResponse, error) {
	facility, err := s.getFacility(ctx, id)
	if err != nil {
		return nil, err
	}
	return models.FromDomainFacility(facility), nil
}

// Update частично обновляет площадку
// Доступно только владельцу, пока ни одно место не занято
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *models.UpdateFacilityRequest) (*models.FacilityResponse, error) {
	s.logger.Info("Update: updating facility id=%s by user=%d", id, req.UserID)

	var updated *domain.Facility
	err := s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		facility, err := s.getOwnedFacility(ctx, id, req.UserID)
		if err != nil {
			return err
		}
		if facility.HasActiveBooking() {
			return ErrHasActiveBooking
		}

		req.ApplyTo(facility)
		if facility.Kind == domain.KindCommercial {
			facility.AutoAcceptBookings = true
		}
		if err := validateFacility(facility); err != nil {
			return err
		}
		facility.UpdatedAt = s.timeProvider.Now()

		if err := s.facilityRepo.Update(ctx, facility); err != nil {
			return fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
		}
		updated = facility
		return nil
	})
	if err != nil {
		s.logUpdateError("Update", id, err)
		return nil, err
	}

	s.logger.Info("Update: successfully updated facility id=%s", id)
	return models.FromDomainFacility(updated), nil
}

// Delete мягко удаляет площадку
// Доступно только владельцу, пока ни одно место не занято
func (s *Service) Delete(ctx context.Context, id uuid.UUID, userID int64) error {
	s.logger.Info("Delete: deleting facility id=%s by user=%d", id, userID)

	err := s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		facility, err := s.getOwnedFacility(ctx, id, userID)
		if err != nil {
			return err
		}
		if facility.HasActiveBooking() {
			return ErrHasActiveBooking
		}

		facility.IsDeleted = true
		facility.UpdatedAt = s.timeProvider.Now()
		if err := s.facilityRepo.Update(ctx, facility); err != nil {
			return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		s.logUpdateError("Delete", id, err)
		return err
	}

	s.logger.Info("Delete: successfully deleted facility id=%s", id)
	return nil
}

// Search ищет площадки по фильтрам
// При переданных координатах результат отсортирован по расстоянию
func (s *Service) Search(ctx context.Context, req *models.SearchRequest) (*models.FacilityListResponse, error) {
	// 1. Валидируем фильтры
	filter := domain.FacilityFilter{}
	if req.Kind != nil {
		kind := domain.InventoryKind(*req.Kind)
		if !kind.IsValid() {
			return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidInput, *req.Kind)
		}
		filter.Kind = &kind
	}
	if (req.Lat == nil) != (req.Lon == nil) {
		return nil, fmt.Errorf("%w: lat and lon must be passed together", ErrInvalidInput)
	}
	radius := DefaultSearchRadiusMeters
	if req.RadiusMeters != nil {
		if *req.RadiusMeters <= 0 {
			return nil, fmt.Errorf("%w: radius must be positive", ErrInvalidInput)
		}
		radius = *req.RadiusMeters
	}
	for _, a := range req.Amenities {
		if _, ok := knownAmenities[a]; !ok {
			return nil, fmt.Errorf("%w: unknown amenity %q", ErrInvalidInput, a)
		}
	}

	// 2. Загружаем кандидатов
	all, err := s.facilityRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("Search: repository error: %v", err)
		return nil, fmt.Errorf("%w: Search - repository error: %v", ErrInternal, err)
	}

	// 3. Фильтруем в памяти
	type hit struct {
		facility *domain.Facility
		distance *float64
	}
	hits := make([]hit, 0, len(all))
	for _, f := range all {
		if req.MaxPrice != nil && f.Pricing.HourlyRate > *req.MaxPrice {
			continue
		}
		if req.AvailableOnly && f.AvailableSlots() == 0 {
			continue
		}
		if !hasAmenities(f.Amenities, req.Amenities) {
			continue
		}

		h := hit{facility: f}
		if req.Lat != nil {
			if f.Location.IsZero() {
				continue
			}
			d := pricing.Distance(domain.Location{Lat: *req.Lat, Lon: *req.Lon}, f.Location)
			if d > radius {
				continue
			}
			h.distance = &d
		}
		hits = append(hits, h)
	}

	if req.Lat != nil {
		sort.SliceStable(hits, func(i, j int) bool {
			return *hits[i].distance < *hits[j].distance
		})
	}

	result := &models.FacilityListResponse{Facilities: make([]models.FacilityResponse, 0, len(hits))}
	for _, h := range hits {
		resp := models.FromDomainFacility(h.facility)
		resp.DistanceMeters = h.distance
		result.Facilities = append(result.Facilities, *resp)
	}
	return result, nil
}

// Pricing рекомендует тариф по соседним площадкам
func (s *Service) Pricing(ctx context.Context, id uuid.UUID) (*models.PricingResponse, error) {
	facility, err := s.getFacility(ctx, id)
	if err != nil {
		return nil, err
	}

	all, err := s.facilityRepo.List(ctx, domain.FacilityFilter{})
	if err != nil {
		s.logger.Error("Pricing: repository error: %v", err)
		return nil, fmt.Errorf("%w: Pricing - repository error: %v", ErrInternal, err)
	}

	intel := pricing.PricingIntelligence(facility, all, pricing.DefaultSuggestRadiusMeters)
	return models.FromPricingIntelligence(facility.ID, intel), nil
}

// AddSlots добавляет места на этаж с продолжением нумерации "F{floor}-{n}"
// Доступно только владельцу
func (s *Service) AddSlots(ctx context.Context, facilityID uuid.UUID, req *models.AddSlotsRequest) (*models.FacilityResponse, error) {
	s.logger.Info("AddSlots: adding %d %s slots on floor %d to facility id=%s by user=%d",
		req.Count, req.Type, req.Floor, facilityID, req.UserID)

	var updated *domain.Facility
	err := s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		facility, err := s.getOwnedFacility(ctx, facilityID, req.UserID)
		if err != nil {
			return err
		}

		before := len(facility.Slots)
		if err := appendSlots(facility, req.Floor, req.Count, req.Type); err != nil {
			return err
		}

		if err := s.facilityRepo.AddSlots(ctx, facility.Slots[before:]); err != nil {
			if errors.Is(err, facilityRepo.ErrDuplicateSlot) {
				return ErrSlotConflict
			}
			return fmt.Errorf("%w: AddSlots - repository error: %v", ErrInternal, err)
		}
		updated = facility
		return nil
	})
	if err != nil {
		s.logUpdateError("AddSlots", facilityID, err)
		return nil, err
	}

	s.logger.Info("AddSlots: facility id=%s now has %d slots", facilityID, updated.TotalSlots())
	return models.FromDomainFacility(updated), nil
}

// SetSlotDisabled переводит место в обслуживание или возвращает в работу
// Занятое место отключить нельзя
func (s *Service) SetSlotDisabled(ctx context.Context, facilityID, slotID uuid.UUID, req *models.SetSlotStateRequest) (*models.FacilityResponse, error) {
	s.logger.Info("SetSlotDisabled: slot id=%s disabled=%t by user=%d", slotID, req.Disabled, req.UserID)

	var updated *domain.Facility
	err := s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		facility, err := s.getOwnedFacility(ctx, facilityID, req.UserID)
		if err != nil {
			return err
		}

		slot, ok := facility.FindSlot(slotID)
		if !ok {
			return ErrSlotNotFound
		}
		slot, err = slot.SetDisabled(req.Disabled)
		if err != nil {
			if errors.Is(err, domain.ErrSlotOccupied) {
				return ErrSlotOccupied
			}
			return fmt.Errorf("%w: SetSlotDisabled - %v", ErrInternal, err)
		}

		if err := s.facilityRepo.UpdateSlot(ctx, slot); err != nil {
			if errors.Is(err, facilityRepo.ErrSlotNotFound) {
				return ErrSlotNotFound
			}
			return fmt.Errorf("%w: SetSlotDisabled - repository error: %v", ErrInternal, err)
		}

		for i := range facility.Slots {
			if facility.Slots[i].ID == slot.ID {
				facility.Slots[i] = slot
			}
		}
		updated = facility
		return nil
	})
	if err != nil {
		s.logUpdateError("SetSlotDisabled", facilityID, err)
		return nil, err
	}

	return models.FromDomainFacility(updated), nil
}

func (s *Service) getFacility(ctx context.Context, id uuid.UUID) (*domain.Facility, error) {
	facility, err := s.facilityRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, facilityRepo.ErrFacilityNotFound) {
			s.logger.Warn("getFacility: facility id=%s not found", id)
			return nil, ErrFacilityNotFound
		}
		s.logger.Error("getFacility: failed to get facility id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: failed to get facility: %v", ErrInternal, err)
	}
	if facility.IsDeleted {
		return nil, ErrFacilityNotFound
	}
	return facility, nil
}

func (s *Service) getOwnedFacility(ctx context.Context, id uuid.UUID, userID int64) (*domain.Facility, error) {
	facility, err := s.getFacility(ctx, id)
	if err != nil {
		return nil, err
	}
	if facility.OwnerID != userID {
		return nil, ErrAccessDenied
	}
	return facility, nil
}

func (s *Service) logUpdateError(op string, id uuid.UUID, err error) {
	if errors.Is(err, ErrInternal) {
		s.logger.Error("%s: facility id=%s: %v", op, id, err)
		return
	}
	s.logger.Warn("%s: facility id=%s: %v", op, id, err)
}

func validateFacility(f *domain.Facility) error {
	name := strings.TrimSpace(f.Name)
	if name == "" || len(name) > domain.MaxNameLength {
		return fmt.Errorf("%w: name must be 1..%d characters", ErrInvalidInput, domain.MaxNameLength)
	}
	address := strings.TrimSpace(f.Address)
	if address == "" || len(address) > domain.MaxAddressLength {
		return fmt.Errorf("%w: address must be 1..%d characters", ErrInvalidInput, domain.MaxAddressLength)
	}
	if !f.FacilityType.IsValid() {
		return fmt.Errorf("%w: unknown facility type %q", ErrInvalidInput, f.FacilityType)
	}
	if f.Location.Lat < -90 || f.Location.Lat > 90 || f.Location.Lon < -180 || f.Location.Lon > 180 {
		return fmt.Errorf("%w: location out of range", ErrInvalidInput)
	}
	if f.Pricing.HourlyRate <= 0 {
		return fmt.Errorf("%w: hourly rate must be positive", ErrInvalidInput)
	}
	for _, rate := range []*float64{f.Pricing.DailyRate, f.Pricing.MonthlyRate, f.Pricing.FlatDayRate} {
		if rate != nil && *rate <= 0 {
			return fmt.Errorf("%w: rates must be positive", ErrInvalidInput)
		}
	}
	return nil
}

// appendSlots добавляет count мест на этаж, нумерация продолжает существующую
func appendSlots(f *domain.Facility, floor, count int, rawType string) error {
	if count < 1 || count > domain.MaxSlotsPerRequest {
		return fmt.Errorf("%w: count must be 1..%d", ErrInvalidInput, domain.MaxSlotsPerRequest)
	}
	if floor < domain.MinFloor || floor > domain.MaxFloor {
		return fmt.Errorf("%w: floor must be %d..%d", ErrInvalidInput, domain.MinFloor, domain.MaxFloor)
	}
	slotType := domain.SlotRegular
	if rawType != "" {
		slotType = domain.SlotType(rawType)
	}
	if !slotType.IsValid() {
		return fmt.Errorf("%w: unknown slot type %q", ErrInvalidInput, rawType)
	}

	next := f.NextSlotNumber(floor)
	for i := 0; i < count; i++ {
		f.Slots = append(f.Slots, domain.Slot{
			ID:         uuid.New(),
			FacilityID: f.ID,
			Floor:      floor,
			Number:     next + i,
			Type:       slotType,
		})
	}
	return nil
}

func hasAmenities(a domain.Amenities, names []string) bool {
	for _, name := range names {
		if !a.Has(name) {
			return false
		}
	}
	return true
}
