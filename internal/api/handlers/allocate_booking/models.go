package allocate_booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/service/bookings/models"
	allocateSlot "github.com/m04kA/SMC-ParkingService/internal/usecase/allocate_slot"
)

// AllocateBookingRequest HTTP request model
type AllocateBookingRequest struct {
	FacilityID   string    `json:"facilityId"`
	SlotID       string    `json:"slotId"`
	Start        time.Time `json:"start"` // RFC3339
	End          time.Time `json:"end"`
	DurationType string    `json:"durationType,omitempty"` // hourly по умолчанию
}

// AllocateBookingResponse HTTP response model
type AllocateBookingResponse struct {
	Booking   *models.BookingResponse `json:"booking"`
	SlotLabel string                  `json:"slotLabel"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *AllocateBookingRequest) ToUseCaseRequest(requesterID int64) (*allocateSlot.Request, error) {
	facilityID, err := uuid.Parse(r.FacilityID)
	if err != nil {
		return nil, err
	}

	slotID, err := uuid.Parse(r.SlotID)
	if err != nil {
		return nil, err
	}

	durationType := domain.DurationHourly
	if r.DurationType != "" {
		durationType = domain.DurationType(r.DurationType)
	}

	return &allocateSlot.Request{
		FacilityID:   facilityID,
		SlotID:       slotID,
		RequesterID:  requesterID,
		Start:        r.Start,
		End:          r.End,
		DurationType: durationType,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *allocateSlot.Response) *AllocateBookingResponse {
	return &AllocateBookingResponse{
		Booking:   models.FromDomainBooking(&resp.Booking),
		SlotLabel: resp.SlotLabel,
	}
}
