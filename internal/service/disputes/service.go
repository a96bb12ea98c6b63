package disputes

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/booking"
	disputeRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/dispute"
	"github.com/m04kA/SMC-ParkingService/internal/integrations/notificationservice"
	"github.com/m04kA/SMC-ParkingService/internal/service/disputes/models"
)

const (
	maxReasonLength = 255
	notifyTimeout   = 5 * time.Second
)

// Service сервис жалоб по бронированиям
type Service struct {
	disputeRepo  DisputeRepository
	bookingRepo  BookingRepository
	txManager    TransactionManager
	notifier     Notifier
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса жалоб
func NewService(
	disputeRepo DisputeRepository,
	bookingRepo BookingRepository,
	txManager TransactionManager,
	notifier Notifier,
	logger Logger,
) *Service {
	return &Service{
		disputeRepo:  disputeRepo,
		bookingRepo:  bookingRepo,
		txManager:    txManager,
		notifier:     notifier,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider устанавливает кастомный TimeProvider (для тестирования)
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// Open открывает жалобу по бронированию
// Доступно водителю и владельцу площадки
func (s *Service) Open(ctx context.Context, bookingID uuid.UUID, req *models.OpenDisputeRequest) (*models.DisputeResponse, error) {
	s.logger.Info("Open: opening dispute for booking id=%s by user=%d", bookingID, req.UserID)

	// 1. Валидируем входные данные
	if err := validateOpen(req); err != nil {
		s.logger.Warn("Open: validation failed: %v", err)
		return nil, err
	}

	// 2. Проверяем бронирование и участие пользователя
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if req.UserID != booking.RequesterID && req.UserID != booking.HostID {
		s.logger.Warn("Open: user=%d is not a participant of booking id=%s", req.UserID, bookingID)
		return nil, ErrAccessDenied
	}

	// 3. Сохраняем жалобу
	dispute := &domain.DisputeReport{
		ID:          uuid.New(),
		BookingID:   booking.ID,
		ReporterID:  req.UserID,
		Reason:      strings.TrimSpace(req.Reason),
		Description: req.Description,
		PhotoURLs:   append([]string{}, req.PhotoURLs...),
		Status:      domain.DisputePending,
		CreatedAt:   s.timeProvider.Now(),
	}
	if err := s.disputeRepo.Create(ctx, dispute); err != nil {
		s.logger.Error("Open: repository error: %v", err)
		return nil, fmt.Errorf("%w: Open - repository error: %v", ErrInternal, err)
	}

	other := booking.HostID
	if req.UserID == booking.HostID {
		other = booking.RequesterID
	}
	s.notify(other, "Открыта жалоба", fmt.Sprintf("По бронированию %s открыта жалоба: %s", booking.ID, dispute.Reason))

	s.logger.Info("Open: successfully opened dispute id=%s", dispute.ID)
	return models.FromDomainDispute(dispute), nil
}

// Resolve переводит жалобу на рассмотрение или закрывает её
// Доступно только владельцу площадки
func (s *Service) Resolve(ctx context.Context, disputeID uuid.UUID, req *models.ResolveDisputeRequest) (*models.DisputeResponse, error) {
	s.logger.Info("Resolve: dispute id=%s status=%q by user=%d", disputeID, req.Status, req.UserID)

	status := domain.DisputeResolved
	if req.Status != "" {
		status = domain.DisputeStatus(req.Status)
	}
	switch status {
	case domain.DisputeUnderReview:
	case domain.DisputeResolved, domain.DisputeRejected:
		if strings.TrimSpace(req.Resolution) == "" {
			return nil, fmt.Errorf("%w: resolution text required", ErrInvalidInput)
		}
		if len(req.Resolution) > domain.MaxDisputeTextLength {
			return nil, fmt.Errorf("%w: resolution is too long", ErrInvalidInput)
		}
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, req.Status)
	}

	var result domain.DisputeReport
	err := s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		dispute, err := s.disputeRepo.GetByID(ctx, disputeID)
		if err != nil {
			if errors.Is(err, disputeRepo.ErrDisputeNotFound) {
				return ErrDisputeNotFound
			}
			return fmt.Errorf("%w: Resolve - failed to get dispute: %v", ErrInternal, err)
		}

		booking, err := s.getBooking(ctx, dispute.BookingID)
		if err != nil {
			return err
		}
		if booking.HostID != req.UserID {
			return ErrAccessDenied
		}

		var next domain.DisputeReport
		if status == domain.DisputeUnderReview {
			next, err = dispute.Review()
		} else {
			next, err = dispute.Close(s.timeProvider.Now(), status, req.Resolution)
		}
		if err != nil {
			return ErrInvalidTransition
		}

		if err := s.disputeRepo.Update(ctx, &next); err != nil {
			if errors.Is(err, disputeRepo.ErrDisputeNotFound) {
				return ErrDisputeNotFound
			}
			return fmt.Errorf("%w: Resolve - repository error: %v", ErrInternal, err)
		}
		result = next
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInternal) {
			s.logger.Error("Resolve: dispute id=%s: %v", disputeID, err)
		} else {
			s.logger.Warn("Resolve: dispute id=%s: %v", disputeID, err)
		}
		return nil, err
	}

	if !result.IsOpen() {
		s.notify(result.ReporterID, "Жалоба рассмотрена", *result.Resolution)
	}

	s.logger.Info("Resolve: dispute id=%s is now %s", disputeID, result.Status)
	return models.FromDomainDispute(&result), nil
}

// ListByBooking возвращает жалобы по бронированию
// Доступно водителю и владельцу площадки
func (s *Service) ListByBooking(ctx context.Context, bookingID uuid.UUID, userID int64) (*models.DisputeListResponse, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if userID != booking.RequesterID && userID != booking.HostID {
		return nil, ErrAccessDenied
	}

	list, err := s.disputeRepo.GetByBooking(ctx, bookingID)
	if err != nil {
		s.logger.Error("ListByBooking: repository error: %v", err)
		return nil, fmt.Errorf("%w: ListByBooking - repository error: %v", ErrInternal, err)
	}
	return models.FromDomainDisputeList(list), nil
}

func (s *Service) getBooking(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("getBooking: booking id=%s not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("getBooking: failed to get booking id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}
	return booking, nil
}

// notify отправляет уведомление в фоне, ошибка доставки только логируется
func (s *Service) notify(userID int64, title, body string) {
	if s.notifier == nil {
		return
	}

	n := notificationservice.Notification{UserID: userID, Title: title, Body: body}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if err := s.notifier.Notify(ctx, n); err != nil {
			s.logger.Warn("notify: failed to send %q to user=%d: %v", title, userID, err)
		}
	}()
}

func validateOpen(req *models.OpenDisputeRequest) error {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" || len(reason) > maxReasonLength {
		return fmt.Errorf("%w: reason must be 1..%d characters", ErrInvalidInput, maxReasonLength)
	}
	if strings.TrimSpace(req.Description) == "" || len(req.Description) > domain.MaxDisputeTextLength {
		return fmt.Errorf("%w: description must be 1..%d characters", ErrInvalidInput, domain.MaxDisputeTextLength)
	}
	if len(req.PhotoURLs) > domain.MaxDisputePhotos {
		return fmt.Errorf("%w: at most %d photos", ErrInvalidInput, domain.MaxDisputePhotos)
	}
	for _, raw := range req.PhotoURLs {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: invalid photo url %q", ErrInvalidInput, raw)
		}
	}
	return nil
}
