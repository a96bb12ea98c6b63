package update_slot

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ParkingService/internal/api/handlers"
	"github.com/m04kA/SMC-ParkingService/internal/api/middleware"
	"github.com/m04kA/SMC-ParkingService/internal/service/facilities"
	"github.com/m04kA/SMC-ParkingService/internal/service/facilities/models"
)

const (
	msgInvalidIDs         = "некорректный ID площадки или места"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgFacilityNotFound   = "площадка не найдена"
	msgSlotNotFound       = "место не найдено"
	msgForbidden          = "доступ запрещен"
	msgSlotOccupied       = "занятое место нельзя отключить"
)

type Handler struct {
	service FacilityService
	logger  Logger
}

func NewHandler(service FacilityService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/facilities/{facilityId}/slots/{slotId}
// Body: disabled - перевод места в обслуживание и обратно
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	facilityID, err := uuid.Parse(vars["facilityId"])
	if err != nil {
		h.logger.Warn("PATCH /facilities/{id}/slots/{id} - Invalid facility ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidIDs)
		return
	}
	slotID, err := uuid.Parse(vars["slotId"])
	if err != nil {
		h.logger.Warn("PATCH /facilities/{id}/slots/{id} - Invalid slot ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidIDs)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PATCH /facilities/{id}/slots/{id} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.SetSlotStateRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /facilities/{id}/slots/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.UserID = userID

	result, err := h.service.SetSlotDisabled(r.Context(), facilityID, slotID, &req)
	if err != nil {
		switch {
		case errors.Is(err, facilities.ErrFacilityNotFound):
			handlers.RespondNotFound(w, msgFacilityNotFound)

		case errors.Is(err, facilities.ErrSlotNotFound):
			h.logger.Warn("PATCH /facilities/{id}/slots/{id} - Slot not found: slot_id=%s", slotID)
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, facilities.ErrAccessDenied):
			h.logger.Warn("PATCH /facilities/{id}/slots/{id} - Access denied: facility_id=%s, user_id=%d", facilityID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, facilities.ErrSlotOccupied):
			h.logger.Warn("PATCH /facilities/{id}/slots/{id} - Slot occupied: slot_id=%s", slotID)
			handlers.RespondConflict(w, msgSlotOccupied)

		default:
			h.logger.Error("PATCH /facilities/{id}/slots/{id} - Failed to update slot: slot_id=%s, error=%v",
				slotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /facilities/{id}/slots/{id} - Slot updated: slot_id=%s, disabled=%t", slotID, req.Disabled)
	handlers.RespondJSON(w, http.StatusOK, result)
}
