package bookings

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ParkingService/internal/accesscode"
	"github.com/m04kA/SMC-ParkingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/booking"
	facilityRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/facility"
	"github.com/m04kA/SMC-ParkingService/internal/pricing"
	"github.com/m04kA/SMC-ParkingService/internal/service/bookings/models"
)

// Service сервис жизненного цикла бронирований
type Service struct {
	bookingRepo  BookingRepository
	facilityRepo FacilityRepository
	txManager    TransactionManager
	notifier     Notifier
	metrics      Metrics
	timeProvider TimeProvider
	generatePIN  func() (string, error)
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	facilityRepo FacilityRepository,
	txManager TransactionManager,
	notifier Notifier,
	metrics Metrics,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		facilityRepo: facilityRepo,
		txManager:    txManager,
		notifier:     notifier,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		generatePIN:  accesscode.GeneratePIN,
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// GetByID получает бронирование по ID
// Видеть бронирование могут только водитель и хост
func (s *Service) GetByID(ctx context.Context, id uuid.UUID, userID int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%s for user=%d", id, userID)

	booking, err := s.getBooking(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if !isParticipant(booking, userID) {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%s", userID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainBooking(booking), nil
}

// GetUserBookings получает бронирования водителя
// Опционально фильтрует по статусу
func (s *Service) GetUserBookings(ctx context.Context, req *models.GetUserBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetUserBookings: fetching bookings for user=%d, status=%v", req.UserID, req.Status)

	var domainStatus *domain.BookingStatus
	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetUserBookings: invalid status=%s for user=%d", *req.Status, req.UserID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	bookings, err := s.bookingRepo.GetByRequester(ctx, req.UserID, domainStatus)
	if err != nil {
		s.logger.Error("GetUserBookings: repository error for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetUserBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetUserBookings: successfully fetched %d bookings for user=%d", len(bookings), req.UserID)
	return models.FromDomainBookingList(bookings), nil
}

// GetHostBookings получает бронирования на площадках хоста
// Поддерживает фильтр по площадке, статусу и включение неактивных бронирований
func (s *Service) GetHostBookings(ctx context.Context, req *models.GetHostBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetHostBookings: fetching bookings for host=%d, user=%d", req.HostID, req.UserID)

	if req.UserID != req.HostID {
		s.logger.Warn("GetHostBookings: user=%d is not host=%d", req.UserID, req.HostID)
		return nil, ErrAccessDenied
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetHostBookings: invalid filter for host=%d: %v", req.HostID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	bookings, err := s.bookingRepo.GetByHostWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetHostBookings: repository error for host=%d: %v", req.HostID, err)
		return nil, fmt.Errorf("%w: GetHostBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetHostBookings: successfully fetched %d bookings for host=%d", len(bookings), req.HostID)
	return models.FromDomainBookingList(bookings), nil
}

// HostEarnings сводка заработка хоста по завершённым бронированиям с разбивкой по типу площадки
func (s *Service) HostEarnings(ctx context.Context, hostID, userID int64) (*models.HostEarningsResponse, error) {
	s.logger.Info("HostEarnings: host=%d, user=%d", hostID, userID)

	if hostID != userID {
		s.logger.Warn("HostEarnings: user=%d is not host=%d", userID, hostID)
		return nil, ErrAccessDenied
	}

	completed := domain.StatusCompleted
	bookings, err := s.bookingRepo.GetByHostWithFilter(ctx, domain.HostBookingsFilter{
		HostID: hostID,
		Status: &completed,
	})
	if err != nil {
		s.logger.Error("HostEarnings: repository error for host=%d: %v", hostID, err)
		return nil, fmt.Errorf("%w: HostEarnings - repository error: %v", ErrInternal, err)
	}

	facilityTypes := make(map[uuid.UUID]domain.FacilityType)
	groups := make(map[domain.FacilityType]*models.FacilityTypeEarnings)
	resp := &models.HostEarningsResponse{HostID: hostID}

	for _, b := range bookings {
		ftype, ok := facilityTypes[b.FacilityID]
		if !ok {
			f, err := s.facilityRepo.GetByID(ctx, b.FacilityID)
			if err != nil {
				s.logger.Error("HostEarnings: failed to get facility id=%s: %v", b.FacilityID, err)
				return nil, fmt.Errorf("%w: HostEarnings - facility lookup: %v", ErrInternal, err)
			}
			ftype = f.FacilityType
			facilityTypes[b.FacilityID] = ftype
		}

		gross := valueOrZero(b.ActualCost)
		earnings := valueOrZero(b.HostEarnings)

		g, ok := groups[ftype]
		if !ok {
			g = &models.FacilityTypeEarnings{
				FacilityType:   string(ftype),
				CommissionRate: pricing.CommissionRate(b.Kind, ftype),
			}
			groups[ftype] = g
		}
		g.Bookings++
		g.Gross = pricing.RoundMoney(g.Gross + gross)
		g.Earnings = pricing.RoundMoney(g.Earnings + earnings)

		resp.TotalBookings++
		resp.TotalGross = pricing.RoundMoney(resp.TotalGross + gross)
		resp.TotalEarnings = pricing.RoundMoney(resp.TotalEarnings + earnings)
	}

	resp.ByFacilityType = make([]models.FacilityTypeEarnings, 0, len(groups))
	for _, g := range groups {
		resp.ByFacilityType = append(resp.ByFacilityType, *g)
	}
	sort.Slice(resp.ByFacilityType, func(i, j int) bool {
		return resp.ByFacilityType[i].FacilityType < resp.ByFacilityType[j].FacilityType
	})

	return resp, nil
}

func (s *Service) getBooking(ctx context.Context, op string, id uuid.UUID) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%s not found", op, id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%s: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return booking, nil
}

func (s *Service) getSlot(ctx context.Context, op string, id uuid.UUID) (domain.Slot, error) {
	slot, err := s.facilityRepo.GetSlot(ctx, id)
	if err != nil {
		if errors.Is(err, facilityRepo.ErrSlotNotFound) {
			s.logger.Error("%s: slot id=%s of booking not found", op, id)
		}
		return domain.Slot{}, fmt.Errorf("%w: %s - slot lookup: %v", ErrInternal, op, err)
	}
	return *slot, nil
}

// mintPIN выдает PIN, не совпадающий с PIN живых бронирований площадки
func (s *Service) mintPIN(ctx context.Context, op string, facilityID uuid.UUID) (string, error) {
	pin, err := accesscode.UniquePIN(s.generatePIN, func(pin string) (bool, error) {
		_, err := s.bookingRepo.FindByAccessPIN(ctx, facilityID, pin)
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return false, nil
		}
		return err == nil, err
	})
	if err != nil {
		s.logger.Error("%s: failed to mint PIN for facility id=%s: %v", op, facilityID, err)
		return "", fmt.Errorf("%w: %s - mint PIN: %v", ErrInternal, op, err)
	}
	return pin, nil
}

func (s *Service) saveBooking(ctx context.Context, op string, b *domain.Booking) error {
	if err := s.bookingRepo.Update(ctx, b); err != nil {
		if errors.Is(err, bookingRepo.ErrSlotNotAvailable) {
			s.logger.Warn("%s: slot id=%s already held by another booking", op, b.SlotID)
			return ErrSlotUnavailable
		}
		s.logger.Error("%s: failed to update booking id=%s: %v", op, b.ID, err)
		return fmt.Errorf("%w: %s - update booking: %v", ErrInternal, op, err)
	}
	return nil
}

func (s *Service) saveSlot(ctx context.Context, op string, slot domain.Slot) error {
	if err := s.facilityRepo.UpdateSlot(ctx, slot); err != nil {
		s.logger.Error("%s: failed to update slot id=%s: %v", op, slot.ID, err)
		return fmt.Errorf("%w: %s - update slot: %v", ErrInternal, op, err)
	}
	return nil
}

// mapTransitionError переводит ошибки доменных переходов в ошибки сервиса
func mapTransitionError(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidTransition):
		return ErrInvalidTransition
	case errors.Is(err, domain.ErrInvalidExtension):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	case errors.Is(err, domain.ErrSlotUnavailable):
		return ErrSlotUnavailable
	default:
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
}

func isParticipant(b *domain.Booking, userID int64) bool {
	return b.RequesterID == userID || b.HostID == userID
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
