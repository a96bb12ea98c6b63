package get_booking_qr

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ParkingService/internal/accesscode"
	"github.com/m04kA/SMC-ParkingService/internal/api/handlers"
	"github.com/m04kA/SMC-ParkingService/internal/api/middleware"
	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/service/bookings"
)

const (
	msgInvalidBookingID = "некорректный ID бронирования"
	msgMissingUserID    = "отсутствует ID пользователя"
	msgNotFound         = "бронирование не найдено"
	msgForbidden        = "доступ запрещен"
	msgNoAccessCode     = "для бронирования нет действующего кода доступа"
)

type Handler struct {
	service   BookingService
	namespace string
	size      int
	logger    Logger
}

func NewHandler(service BookingService, namespace string, size int, logger Logger) *Handler {
	if namespace == "" {
		namespace = accesscode.DefaultNamespace
	}
	return &Handler{
		service:   service,
		namespace: namespace,
		size:      size,
		logger:    logger,
	}
}

// Handle GET /api/v1/bookings/{bookingId}/qr
// Отдает PNG с кодом въезда; доступно только водителю, пока бронирование живое
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := uuid.Parse(mux.Vars(r)["bookingId"])
	if err != nil {
		h.logger.Warn("GET /bookings/{id}/qr - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /bookings/{id}/qr - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	booking, err := h.service.GetByID(r.Context(), bookingID, userID)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			handlers.RespondNotFound(w, msgNotFound)
		case errors.Is(err, bookings.ErrAccessDenied):
			handlers.RespondForbidden(w, msgForbidden)
		default:
			h.logger.Error("GET /bookings/{id}/qr - Failed to get booking: booking_id=%s, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	if booking.RequesterID != userID {
		h.logger.Warn("GET /bookings/{id}/qr - Access denied: booking_id=%s, user_id=%d", bookingID, userID)
		handlers.RespondForbidden(w, msgForbidden)
		return
	}
	if !domain.BookingStatus(booking.Status).IsLive() {
		h.logger.Warn("GET /bookings/{id}/qr - Booking is not live: booking_id=%s, status=%s", bookingID, booking.Status)
		handlers.RespondConflict(w, msgNoAccessCode)
		return
	}

	slotID, err := uuid.Parse(booking.SlotID)
	if err != nil {
		h.logger.Error("GET /bookings/{id}/qr - Invalid slot ID in booking: booking_id=%s, error=%v", bookingID, err)
		handlers.RespondInternalError(w)
		return
	}

	png, err := accesscode.RenderQR(accesscode.BuildQRPayload(h.namespace, bookingID, slotID), h.size)
	if err != nil {
		h.logger.Error("GET /bookings/{id}/qr - Failed to render QR: booking_id=%s, error=%v", bookingID, err)
		handlers.RespondInternalError(w)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
