package verify_access

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ParkingService/internal/accesscode"
	"github.com/m04kA/SMC-ParkingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-ParkingService/internal/service/bookings"
)

// UseCase проверка кода доступа на въезде и выезде
type UseCase struct {
	bookingRepo  BookingRepository
	facilityRepo FacilityRepository
	sessions     SessionService
	namespace    string
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	facilityRepo FacilityRepository,
	sessions SessionService,
	namespace string,
	logger Logger,
) *UseCase {
	if namespace == "" {
		namespace = accesscode.DefaultNamespace
	}
	return &UseCase{
		bookingRepo:  bookingRepo,
		facilityRepo: facilityRepo,
		sessions:     sessions,
		namespace:    namespace,
		logger:       logger,
	}
}

// VerifyEntry хост сканирует код на въезде
// Бронирование должно ожидать заезда, площадка должна принадлежать хосту
func (uc *UseCase) VerifyEntry(ctx context.Context, req *Request, hostID int64) (*Response, error) {
	uc.logger.Info("VerifyEntry: host=%d", hostID)

	booking, err := uc.resolve(ctx, "VerifyEntry", req)
	if err != nil {
		return nil, err
	}

	if booking.Status != domain.StatusPending && booking.Status != domain.StatusApproved {
		uc.logger.Warn("VerifyEntry: booking id=%s has status=%s", booking.ID, booking.Status)
		return nil, ErrNotFound
	}

	owner, err := uc.facilityOwner(ctx, booking.FacilityID)
	if err != nil {
		return nil, err
	}
	if owner != hostID {
		uc.logger.Warn("VerifyEntry: booking id=%s belongs to host=%d, scanned by host=%d", booking.ID, owner, hostID)
		return nil, ErrWrongHost
	}

	resp, err := uc.sessions.StartSession(ctx, booking.ID)
	if err != nil {
		return nil, uc.mapSessionError("VerifyEntry", err)
	}

	uc.logger.Info("VerifyEntry: booking id=%s session started", booking.ID)
	return &Response{Booking: resp}, nil
}

// VerifyExit код на выезде, предъявляет водитель или хост
// Возвращает бронирование с итоговой стоимостью
func (uc *UseCase) VerifyExit(ctx context.Context, req *Request, userID int64) (*Response, error) {
	uc.logger.Info("VerifyExit: user=%d", userID)

	booking, err := uc.resolve(ctx, "VerifyExit", req)
	if err != nil {
		return nil, err
	}

	if booking.Status != domain.StatusActive {
		uc.logger.Warn("VerifyExit: booking id=%s has status=%s", booking.ID, booking.Status)
		return nil, ErrNotFound
	}

	if booking.RequesterID != userID {
		owner, err := uc.facilityOwner(ctx, booking.FacilityID)
		if err != nil {
			return nil, err
		}
		if owner != userID {
			uc.logger.Warn("VerifyExit: user=%d is neither driver nor host of booking id=%s", userID, booking.ID)
			return nil, ErrWrongHost
		}
	}

	resp, err := uc.sessions.EndSession(ctx, booking.ID, userID)
	if err != nil {
		return nil, uc.mapSessionError("VerifyExit", err)
	}

	uc.logger.Info("VerifyExit: booking id=%s completed", booking.ID)
	return &Response{Booking: resp}, nil
}

// resolve находит бронирование по QR или по PIN площадки
func (uc *UseCase) resolve(ctx context.Context, op string, req *Request) (*domain.Booking, error) {
	if req.QRPayload != "" {
		payload, err := accesscode.ParseQRPayload(uc.namespace, req.QRPayload)
		if err != nil {
			uc.logger.Warn("%s: %v", op, err)
			return nil, ErrParse
		}

		booking, err := uc.bookingRepo.GetByID(ctx, payload.BookingID)
		if err != nil {
			return nil, uc.mapLookupError(op, err)
		}

		// QR выпущен для другого места
		if booking.SlotID != payload.SlotID {
			uc.logger.Warn("%s: QR slot=%s does not match booking slot=%s", op, payload.SlotID, booking.SlotID)
			return nil, ErrNotFound
		}
		return booking, nil
	}

	if req.FacilityID == uuid.Nil || req.PIN == "" {
		return nil, fmt.Errorf("%w: either qrPayload or facilityId with pin is required", ErrInvalidInput)
	}
	if err := accesscode.ValidatePIN(req.PIN); err != nil {
		uc.logger.Warn("%s: %v", op, err)
		return nil, ErrParse
	}

	booking, err := uc.bookingRepo.FindByAccessPIN(ctx, req.FacilityID, req.PIN)
	if err != nil {
		return nil, uc.mapLookupError(op, err)
	}
	return booking, nil
}

func (uc *UseCase) facilityOwner(ctx context.Context, facilityID uuid.UUID) (int64, error) {
	facility, err := uc.facilityRepo.GetByID(ctx, facilityID)
	if err != nil {
		uc.logger.Error("facility lookup id=%s failed: %v", facilityID, err)
		return 0, fmt.Errorf("%w: facility lookup: %v", ErrInternal, err)
	}
	return facility.OwnerID, nil
}

func (uc *UseCase) mapLookupError(op string, err error) error {
	if errors.Is(err, bookingRepo.ErrBookingNotFound) {
		uc.logger.Warn("%s: booking not found", op)
		return ErrNotFound
	}
	uc.logger.Error("%s: repository error: %v", op, err)
	return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
}

// mapSessionError статус мог измениться между проверкой и переходом
func (uc *UseCase) mapSessionError(op string, err error) error {
	switch {
	case errors.Is(err, bookings.ErrInvalidTransition), errors.Is(err, bookings.ErrBookingNotFound):
		uc.logger.Warn("%s: booking is no longer in a verifiable state: %v", op, err)
		return ErrNotFound
	case errors.Is(err, bookings.ErrAccessDenied):
		return ErrWrongHost
	default:
		uc.logger.Error("%s: session error: %v", op, err)
		return fmt.Errorf("%w: %s - session error: %v", ErrInternal, op, err)
	}
}
