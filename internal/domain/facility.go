package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// FacilityType категория площадки, влияет на комиссию
type FacilityType string

const (
	FacilityMall            FacilityType = "mall"
	FacilityOffice          FacilityType = "office"
	FacilityApartment       FacilityType = "apartment"
	FacilityHospital        FacilityType = "hospital"
	FacilityAirport         FacilityType = "airport"
	FacilityStadium         FacilityType = "stadium"
	FacilityPrivateDriveway FacilityType = "private_driveway"
)

// IsValid reports whether the facility type is known
func (t FacilityType) IsValid() bool {
	switch t {
	case FacilityMall, FacilityOffice, FacilityApartment, FacilityHospital,
		FacilityAirport, FacilityStadium, FacilityPrivateDriveway:
		return true
	}
	return false
}

// Location coordinates in degrees
type Location struct {
	Lat float64
	Lon float64
}

// IsZero reports whether coordinates were never set
func (l Location) IsZero() bool {
	return l.Lat == 0 && l.Lon == 0
}

// Pricing default rate structure of a facility
type Pricing struct {
	HourlyRate  float64
	DailyRate   *float64
	MonthlyRate *float64
	FlatDayRate *float64
}

// RateFor returns the base rate for the duration type
func (p Pricing) RateFor(d DurationType) (float64, bool) {
	switch d {
	case DurationHourly:
		return p.HourlyRate, true
	case DurationDaily:
		if p.DailyRate != nil {
			return *p.DailyRate, true
		}
		if p.FlatDayRate != nil {
			return *p.FlatDayRate, true
		}
	case DurationMonthly:
		if p.MonthlyRate != nil {
			return *p.MonthlyRate, true
		}
	}
	return 0, false
}

// Amenities facility amenity flags
type Amenities struct {
	CCTV          bool
	Covered       bool
	EVCharging    bool
	Accessible    bool
	Open24Hours   bool
	Valet         bool
	CarWash       bool
	SecurityGuard bool
	WaterAccess   bool
}

// Has checks an amenity by its document name (e.g. "evCharging")
func (a Amenities) Has(name string) bool {
	switch name {
	case "cctv":
		return a.CCTV
	case "covered":
		return a.Covered
	case "evCharging":
		return a.EVCharging
	case "accessible":
		return a.Accessible
	case "open24Hours":
		return a.Open24Hours
	case "valet":
		return a.Valet
	case "carWash":
		return a.CarWash
	case "securityGuard":
		return a.SecurityGuard
	case "waterAccess":
		return a.WaterAccess
	}
	return false
}

// Facility commercial facility or private listing with its slots
type Facility struct {
	ID                 uuid.UUID
	OwnerID            int64
	Kind               InventoryKind
	Name               string
	Address            string
	Location           Location
	FacilityType       FacilityType
	Pricing            Pricing
	Amenities          Amenities
	AutoAcceptBookings bool // для коммерческих всегда true
	Rating             float64
	ReviewCount        int
	IsDeleted          bool
	Slots              []Slot

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TotalSlots returns the number of slots
func (f *Facility) TotalSlots() int {
	return len(f.Slots)
}

// AvailableSlots returns the number of slots that are neither occupied nor disabled
func (f *Facility) AvailableSlots() int {
	n := 0
	for _, s := range f.Slots {
		if s.IsAvailable() {
			n++
		}
	}
	return n
}

// HasActiveBooking returns true if any slot is occupied
func (f *Facility) HasActiveBooking() bool {
	for _, s := range f.Slots {
		if s.Occupied {
			return true
		}
	}
	return false
}

// RequiresApproval returns true if bookings wait for a host decision
func (f *Facility) RequiresApproval() bool {
	return f.Kind == KindPrivate && !f.AutoAcceptBookings
}

// AllowsDuration reports whether the facility accepts bookings of the duration type
// Commercial facilities are hourly only
func (f *Facility) AllowsDuration(d DurationType) bool {
	if f.Kind == KindCommercial {
		return d == DurationHourly
	}
	_, ok := f.Pricing.RateFor(d)
	return ok
}

// FindSlot returns the slot with the given id
func (f *Facility) FindSlot(id uuid.UUID) (Slot, bool) {
	for _, s := range f.Slots {
		if s.ID == id {
			return s, true
		}
	}
	return Slot{}, false
}

// NextSlotNumber returns the next free number on the floor
func (f *Facility) NextSlotNumber(floor int) int {
	max := 0
	for _, s := range f.Slots {
		if s.Floor == floor && s.Number > max {
			max = s.Number
		}
	}
	return max + 1
}

// SortSlots orders slots by floor and number
func SortSlots(slots []Slot) {
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Floor != slots[j].Floor {
			return slots[i].Floor < slots[j].Floor
		}
		return slots[i].Number < slots[j].Number
	})
}

// FacilityFilter фильтр выборки площадок в хранилище
type FacilityFilter struct {
	Kind           *InventoryKind
	OwnerID        *int64
	IncludeDeleted bool
}
