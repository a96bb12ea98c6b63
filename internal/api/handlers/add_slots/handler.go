package add_slots

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
	msgInvalidFacilityID  = "некорректный ID площадки"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgNotFound           = "площадка не найдена"
	msgForbidden          = "доступ запрещен"
	msgInvalidData        = "некорректные параметры мест"
	msgSlotConflict       = "место с таким номером уже существует"
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

// Handle POST /api/v1/facilities/{facilityId}/slots
// Body: floor, count, type; номера продолжают существующие на этаже
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	facilityID, err := uuid.Parse(mux.Vars(r)["facilityId"])
	if err != nil {
		h.logger.Warn("POST /facilities/{id}/slots - Invalid facility ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidFacilityID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /facilities/{id}/slots - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.AddSlotsRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /facilities/{id}/slots - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.UserID = userID

	result, err := h.service.AddSlots(r.Context(), facilityID, &req)
	if err != nil {
		switch {
		case errors.Is(err, facilities.ErrFacilityNotFound):
			h.logger.Warn("POST /facilities/{id}/slots - Facility not found: facility_id=%s", facilityID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, facilities.ErrAccessDenied):
			h.logger.Warn("POST /facilities/{id}/slots - Access denied: facility_id=%s, user_id=%d", facilityID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, facilities.ErrInvalidInput):
			h.logger.Warn("POST /facilities/{id}/slots - Invalid data: facility_id=%s, error=%v", facilityID, err)
			handlers.RespondBadRequest(w, msgInvalidData)

		case errors.Is(err, facilities.ErrSlotConflict):
			h.logger.Warn("POST /facilities/{id}/slots - Slot conflict: facility_id=%s", facilityID)
			handlers.RespondConflict(w, msgSlotConflict)

		default:
			h.logger.Error("POST /facilities/{id}/slots - Failed to add slots: facility_id=%s, error=%v",
				facilityID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /facilities/{id}/slots - Slots added: facility_id=%s, count=%d, total=%d",
		facilityID, req.Count, result.TotalSlots)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
