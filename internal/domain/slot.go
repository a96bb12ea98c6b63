package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SlotType size category of a slot
type SlotType string

const (
	SlotRegular  SlotType = "regular"
	SlotCompact  SlotType = "compact"
	SlotEV       SlotType = "ev"
	SlotHandicap SlotType = "handicap"
	SlotVIP      SlotType = "vip"
)

var slotMultipliers = map[SlotType]float64{
	SlotRegular:  1.0,
	SlotCompact:  0.8,
	SlotEV:       1.2,
	SlotHandicap: 1.0,
	SlotVIP:      1.5,
}

// IsValid reports whether the slot type is known
func (t SlotType) IsValid() bool {
	_, ok := slotMultipliers[t]
	return ok
}

// Multiplier returns the price multiplier of the slot type
func (t SlotType) Multiplier() float64 {
	if m, ok := slotMultipliers[t]; ok {
		return m
	}
	return 1.0
}

// Slot one parking space
// Occupied is true exactly when CurrentBookingID is set; BookingEndTime is nil when not occupied
type Slot struct {
	ID               uuid.UUID
	FacilityID       uuid.UUID
	Floor            int
	Number           int
	Type             SlotType
	Occupied         bool
	Disabled         bool
	CurrentBookingID *uuid.UUID
	BookingEndTime   *time.Time
}

// Label returns the position descriptor, e.g. "F1-3"
func (s Slot) Label() string {
	return fmt.Sprintf("F%d-%d", s.Floor, s.Number)
}

// IsAvailable returns true if the slot can be bound
func (s Slot) IsAvailable() bool {
	return !s.Occupied && !s.Disabled
}

// IsBoundTo returns true if the slot is held by the booking
func (s Slot) IsBoundTo(bookingID uuid.UUID) bool {
	return s.Occupied && s.CurrentBookingID != nil && *s.CurrentBookingID == bookingID
}

// TimeRemaining returns the time left until the bound booking ends, zero when free or overdue
func (s Slot) TimeRemaining(now time.Time) time.Duration {
	if !s.Occupied || s.BookingEndTime == nil {
		return 0
	}
	if d := s.BookingEndTime.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Bind binds the slot to a booking until end
func (s Slot) Bind(bookingID uuid.UUID, end time.Time) (Slot, error) {
	if !s.IsAvailable() {
		return s, ErrSlotUnavailable
	}
	s.Occupied = true
	s.CurrentBookingID = &bookingID
	s.BookingEndTime = &end
	return s, nil
}

// Release clears the binding
func (s Slot) Release() Slot {
	s.Occupied = false
	s.CurrentBookingID = nil
	s.BookingEndTime = nil
	return s
}

// ExtendBinding moves the end of the binding held by the booking
func (s Slot) ExtendBinding(bookingID uuid.UUID, end time.Time) (Slot, error) {
	if !s.IsBoundTo(bookingID) {
		return s, ErrSlotNotBound
	}
	s.BookingEndTime = &end
	return s, nil
}

// SetDisabled switches maintenance mode; an occupied slot cannot be disabled
func (s Slot) SetDisabled(disabled bool) (Slot, error) {
	if disabled && s.Occupied {
		return s, ErrSlotOccupied
	}
	s.Disabled = disabled
	return s, nil
}
