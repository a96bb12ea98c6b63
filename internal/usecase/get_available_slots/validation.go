package get_available_slots

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.FacilityID == uuid.Nil {
		return fmt.Errorf("%w: facilityID is required", ErrInvalidInput)
	}

	if req.SlotType != nil && !req.SlotType.IsValid() {
		return fmt.Errorf("%w: unknown slot type %q", ErrInvalidInput, *req.SlotType)
	}

	if req.Floor != nil && (*req.Floor < domain.MinFloor || *req.Floor > domain.MaxFloor) {
		return fmt.Errorf("%w: floor must be in %d..%d", ErrInvalidInput, domain.MinFloor, domain.MaxFloor)
	}

	return nil
}
