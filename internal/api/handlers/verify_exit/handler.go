package verify_exit

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
	msgNotFound           = "нет активной сессии по этому коду"
	msgForbidden          = "доступ запрещен"
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

// Handle POST /api/v1/access/exit
// Код на выезде предъявляет водитель или хост, сессия завершается
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /access/exit - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req VerifyRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /access/exit - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.VerifyExit(r.Context(), req.ToUseCaseRequest(), userID)
	if err != nil {
		switch {
		case errors.Is(err, verify_access.ErrParse), errors.Is(err, verify_access.ErrInvalidInput):
			h.logger.Warn("POST /access/exit - Invalid code: user_id=%d, error=%v", userID, err)
			handlers.RespondBadRequest(w, msgInvalidCode)

		case errors.Is(err, verify_access.ErrNotFound):
			h.logger.Warn("POST /access/exit - No matching booking: user_id=%d", userID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, verify_access.ErrWrongHost):
			h.logger.Warn("POST /access/exit - Wrong host: user_id=%d", userID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("POST /access/exit - Failed to verify code: user_id=%d, error=%v", userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /access/exit - Code accepted: booking_id=%s, status=%s",
		result.Booking.ID, result.Booking.Status)
	handlers.RespondJSON(w, http.StatusOK, result.Booking)
}
