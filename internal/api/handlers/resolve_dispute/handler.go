package resolve_dispute

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ParkingService/internal/api/handlers"
	"github.com/m04kA/SMC-ParkingService/internal/api/middleware"
	"github.com/m04kA/SMC-ParkingService/internal/service/disputes"
	"github.com/m04kA/SMC-ParkingService/internal/service/disputes/models"
)

const (
	msgInvalidDisputeID   = "некорректный ID жалобы"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgNotFound           = "жалоба не найдена"
	msgForbidden          = "доступ запрещен"
	msgInvalidData        = "некорректные данные решения"
	msgAlreadyClosed      = "жалоба уже закрыта"
)

type Handler struct {
	service DisputeService
	logger  Logger
}

func NewHandler(service DisputeService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/disputes/{disputeId}/resolve
// Доступно владельцу площадки
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	disputeID, err := uuid.Parse(mux.Vars(r)["disputeId"])
	if err != nil {
		h.logger.Warn("POST /disputes/{id}/resolve - Invalid dispute ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDisputeID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /disputes/{id}/resolve - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.ResolveDisputeRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /disputes/{id}/resolve - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.UserID = userID

	result, err := h.service.Resolve(r.Context(), disputeID, &req)
	if err != nil {
		switch {
		case errors.Is(err, disputes.ErrDisputeNotFound), errors.Is(err, disputes.ErrBookingNotFound):
			h.logger.Warn("POST /disputes/{id}/resolve - Dispute not found: dispute_id=%s", disputeID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, disputes.ErrAccessDenied):
			h.logger.Warn("POST /disputes/{id}/resolve - Access denied: dispute_id=%s, user_id=%d", disputeID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, disputes.ErrInvalidInput):
			h.logger.Warn("POST /disputes/{id}/resolve - Invalid data: error=%v", err)
			handlers.RespondBadRequest(w, msgInvalidData)

		case errors.Is(err, disputes.ErrInvalidTransition):
			h.logger.Warn("POST /disputes/{id}/resolve - Dispute already closed: dispute_id=%s", disputeID)
			handlers.RespondConflict(w, msgAlreadyClosed)

		default:
			h.logger.Error("POST /disputes/{id}/resolve - Failed to resolve dispute: dispute_id=%s, error=%v",
				disputeID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /disputes/{id}/resolve - Dispute updated: dispute_id=%s, status=%s", disputeID, result.Status)
	handlers.RespondJSON(w, http.StatusOK, result)
}
