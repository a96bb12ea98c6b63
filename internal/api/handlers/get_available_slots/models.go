package get_available_slots

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-ParkingService/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	FacilityID     string          `json:"facilityId"`
	FacilityName   string          `json:"facilityName"`
	Kind           string          `json:"kind"`
	TotalSlots     int             `json:"totalSlots"`
	AvailableSlots int             `json:"availableSlots"`
	Slots          []AvailableSlot `json:"slots"`
}

// AvailableSlot модель места с оставшимся временем занятости
type AvailableSlot struct {
	ID                   string     `json:"id"`
	Label                string     `json:"label"`
	Floor                int        `json:"floor"`
	Number               int        `json:"number"`
	Type                 string     `json:"type"`
	HourlyRate           float64    `json:"hourlyRate"`
	Available            bool       `json:"available"`
	Occupied             bool       `json:"occupied"`
	Disabled             bool       `json:"disabled"`
	BookingEndTime       *time.Time `json:"bookingEndTime,omitempty"`
	TimeRemainingSeconds int64      `json:"timeRemainingSeconds"`
}

// ToUseCaseRequest формирует запрос к use case из пути и query параметров
func ToUseCaseRequest(facilityIDStr, floorStr, typeStr, availableOnlyStr string) (*getAvailableSlots.Request, error) {
	facilityID, err := uuid.Parse(facilityIDStr)
	if err != nil {
		return nil, fmt.Errorf("invalid facility id: %w", err)
	}

	req := &getAvailableSlots.Request{FacilityID: facilityID}

	if floorStr != "" {
		floor, err := strconv.Atoi(floorStr)
		if err != nil {
			return nil, fmt.Errorf("invalid floor: %w", err)
		}
		req.Floor = &floor
	}

	if typeStr != "" {
		slotType := domain.SlotType(typeStr)
		req.SlotType = &slotType
	}

	if availableOnlyStr != "" {
		availableOnly, err := strconv.ParseBool(availableOnlyStr)
		if err != nil {
			return nil, fmt.Errorf("invalid availableOnly value: %w", err)
		}
		req.AvailableOnly = availableOnly
	}

	return req, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]AvailableSlot, 0, len(resp.Slots))
	for _, s := range resp.Slots {
		slots = append(slots, AvailableSlot{
			ID:                   s.ID.String(),
			Label:                s.Label,
			Floor:                s.Floor,
			Number:               s.Number,
			Type:                 string(s.Type),
			HourlyRate:           s.HourlyRate,
			Available:            s.Available,
			Occupied:             s.Occupied,
			Disabled:             s.Disabled,
			BookingEndTime:       s.BookingEndTime,
			TimeRemainingSeconds: int64(s.TimeRemaining / time.Second),
		})
	}

	return &AvailableSlotsResponse{
		FacilityID:     resp.FacilityID.String(),
		FacilityName:   resp.FacilityName,
		Kind:           string(resp.Kind),
		TotalSlots:     resp.TotalSlots,
		AvailableSlots: resp.AvailableSlots,
		Slots:          slots,
	}
}
