package verify_entry

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ParkingService/internal/api/handlers"
	"github.com/m04kA/SMC-ParkingService/internal/api/middleware"
	"github.com/m04kA/SMC-ParkingService/internal/usecase/verify_access"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidCode        = "некорректный код доступа"
	msgNotFound           = "нет бронирования, ожидающего заезда"
	msgForbidden          = "код относится к другой площадке"
)

type Handler struct {
	useCase AccessUseCase
	logger  Logger
}

func NewHandler(useCase AccessUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/access/entry
// Хост сканирует код водителя, сессия начинается
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /access/entry - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req VerifyRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /access/entry - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.VerifyEntry(r.Context(), req.ToUseCaseRequest(), userID)
	if err != nil {
		switch {
		case errors.Is(err, verify_access.ErrParse), errors.Is(err, verify_access.ErrInvalidInput):
			h.logger.Warn("POST /access/entry - Invalid code: user_id=%d, error=%v", userID, err)
			handlers.RespondBadRequest(w, msgInvalidCode)

		case errors.Is(err, verify_access.ErrNotFound):
			h.logger.Warn("POST /access/entry - No matching booking: user_id=%d", userID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, verify_access.ErrWrongHost):
			h.logger.Warn("POST /access/entry - Wrong host: user_id=%d", userID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("POST /access/entry - Failed to verify code: user_id=%d, error=%v", userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /access/entry - Code accepted: booking_id=%s, status=%s",
		result.Booking.ID, result.Booking.Status)
	handlers.RespondJSON(w, http.StatusOK, result.Booking)
}
