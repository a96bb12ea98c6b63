package allocate_slot

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request, now time.Time) error {
	if req.FacilityID == uuid.Nil {
		return fmt.Errorf("%w: facilityID is required", ErrInvalidInput)
	}

	if req.SlotID == uuid.Nil {
		return fmt.Errorf("%w: slotID is required", ErrInvalidInput)
	}

	if req.RequesterID <= 0 {
		return fmt.Errorf("%w: requesterID must be positive", ErrInvalidInput)
	}

	if req.Start.IsZero() || req.End.IsZero() {
		return fmt.Errorf("%w: start and end are required", ErrInvalidInput)
	}

	// Пустой или перевернутый интервал
	if !req.End.After(req.Start) {
		return fmt.Errorf("%w: end must be after start", ErrInvalidInput)
	}

	// Интервал целиком в прошлом
	if !req.End.After(now) {
		return fmt.Errorf("%w: interval is in the past", ErrInvalidInput)
	}

	if !req.DurationType.IsValid() {
		return fmt.Errorf("%w: unknown durationType %q", ErrInvalidInput, req.DurationType)
	}

	return nil
}
