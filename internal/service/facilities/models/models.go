package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/pricing"
)

// Request модели

// LocationDTO координаты площадки
type LocationDTO struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// PricingDTO тарифы площадки
type PricingDTO struct {
	HourlyRate  float64  `json:"hourlyRate"`
	DailyRate   *float64 `json:"dailyRate,omitempty"`
	MonthlyRate *float64 `json:"monthlyRate,omitempty"`
	FlatDayRate *float64 `json:"flatDayRate,omitempty"`
}

// AmenitiesDTO удобства площадки
type AmenitiesDTO struct {
	CCTV          bool `json:"cctv"`
	Covered       bool `json:"covered"`
	EVCharging    bool `json:"evCharging"`
	Accessible    bool `json:"accessible"`
	Open24Hours   bool `json:"open24Hours"`
	Valet         bool `json:"valet"`
	CarWash       bool `json:"carWash"`
	SecurityGuard bool `json:"securityGuard"`
	WaterAccess   bool `json:"waterAccess"`
}

// SlotSpec описание группы мест на этаже
type SlotSpec struct {
	Floor int    `json:"floor"`
	Count int    `json:"count"`
	Type  string `json:"type"`
}

// CreateFacilityRequest запрос на создание площадки
type CreateFacilityRequest struct {
	UserID             int64        `json:"-"`
	Kind               string       `json:"kind"`
	Name               string       `json:"name"`
	Address            string       `json:"address"`
	Location           LocationDTO  `json:"location"`
	FacilityType       string       `json:"facilityType"`
	Pricing            PricingDTO   `json:"pricing"`
	Amenities          AmenitiesDTO `json:"amenities"`
	AutoAcceptBookings bool         `json:"autoAcceptBookings"`
	Slots              []SlotSpec   `json:"slots,omitempty"`
}

// UpdateFacilityRequest запрос на обновление площадки
// Все поля опциональны - обновляются только переданные значения
type UpdateFacilityRequest struct {
	UserID             int64         `json:"-"`
	Name               *string       `json:"name,omitempty"`
	Address            *string       `json:"address,omitempty"`
	Location           *LocationDTO  `json:"location,omitempty"`
	FacilityType       *string       `json:"facilityType,omitempty"`
	Pricing            *PricingDTO   `json:"pricing,omitempty"`
	Amenities          *AmenitiesDTO `json:"amenities,omitempty"`
	AutoAcceptBookings *bool         `json:"autoAcceptBookings,omitempty"`
}

// AddSlotsRequest запрос на массовое создание мест
type AddSlotsRequest struct {
	UserID int64  `json:"-"`
	Floor  int    `json:"floor"`
	Count  int    `json:"count"`
	Type   string `json:"type"`
}

// SetSlotStateRequest запрос на отключение/включение места
type SetSlotStateRequest struct {
	UserID   int64 `json:"-"`
	Disabled bool  `json:"disabled"`
}

// SearchRequest параметры поиска площадок
type SearchRequest struct {
	Kind          *string
	Lat           *float64
	Lon           *float64
	RadiusMeters  *float64
	MaxPrice      *float64
	AvailableOnly bool
	Amenities     []string
}

// Response модели

// SlotResponse место в составе площадки
type SlotResponse struct {
	ID             string     `json:"id"`
	Label          string     `json:"label"`
	Floor          int        `json:"floor"`
	Number         int        `json:"number"`
	Type           string     `json:"type"`
	Occupied       bool       `json:"occupied"`
	Disabled       bool       `json:"disabled"`
	BookingEndTime *time.Time `json:"bookingEndTime,omitempty"`
}

// FacilityResponse документ площадки
type FacilityResponse struct {
	ID                 string         `json:"id"`
	OwnerID            int64          `json:"ownerId"`
	Kind               string         `json:"kind"`
	Name               string         `json:"name"`
	Address            string         `json:"address"`
	Location           LocationDTO    `json:"location"`
	FacilityType       string         `json:"facilityType"`
	Pricing            PricingDTO     `json:"pricing"`
	Amenities          AmenitiesDTO   `json:"amenities"`
	AutoAcceptBookings bool           `json:"autoAcceptBookings"`
	Rating             float64        `json:"rating"`
	ReviewCount        int            `json:"reviewCount"`
	IsDeleted          bool           `json:"isDeleted"`
	HasActiveBooking   bool           `json:"hasActiveBooking"`
	TotalSlots         int            `json:"totalSlots"`
	AvailableSlots     int            `json:"availableSlots"`
	DistanceMeters     *float64       `json:"distanceMeters,omitempty"`
	Slots              []SlotResponse `json:"slots"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
}

// FacilityListResponse ответ со списком площадок
type FacilityListResponse struct {
	Facilities []FacilityResponse `json:"facilities"`
}

// PricingResponse рекомендация по тарифу
type PricingResponse struct {
	FacilityID      string   `json:"facilityId"`
	CurrentRate     float64  `json:"currentRate"`
	SuggestedRate   *float64 `json:"suggestedRate"`
	Competitiveness string   `json:"competitiveness"`
	NearbyCount     int      `json:"nearbyCount"`
	AvgNearbyRate   *float64 `json:"avgNearbyRate,omitempty"`
	MinNearbyRate   *float64 `json:"minNearbyRate,omitempty"`
	MaxNearbyRate   *float64 `json:"maxNearbyRate,omitempty"`
}

// Методы конвертации

// ToDomain конвертирует DTO координат в domain модель
func (l LocationDTO) ToDomain() domain.Location {
	return domain.Location{Lat: l.Lat, Lon: l.Lon}
}

// ToDomain конвертирует DTO тарифов в domain модель
func (p PricingDTO) ToDomain() domain.Pricing {
	return domain.Pricing{
		HourlyRate:  p.HourlyRate,
		DailyRate:   p.DailyRate,
		MonthlyRate: p.MonthlyRate,
		FlatDayRate: p.FlatDayRate,
	}
}

// ToDomain конвертирует DTO удобств в domain модель
func (a AmenitiesDTO) ToDomain() domain.Amenities {
	return domain.Amenities{
		CCTV:          a.CCTV,
		Covered:       a.Covered,
		EVCharging:    a.EVCharging,
		Accessible:    a.Accessible,
		Open24Hours:   a.Open24Hours,
		Valet:         a.Valet,
		CarWash:       a.CarWash,
		SecurityGuard: a.SecurityGuard,
		WaterAccess:   a.WaterAccess,
	}
}

// ToDomainFacility собирает новую площадку без мест
func (r *CreateFacilityRequest) ToDomainFacility(id uuid.UUID, now time.Time) *domain.Facility {
	return &domain.Facility{
		ID:                 id,
		OwnerID:            r.UserID,
		Kind:               domain.InventoryKind(r.Kind),
		Name:               r.Name,
		Address:            r.Address,
		Location:           r.Location.ToDomain(),
		FacilityType:       domain.FacilityType(r.FacilityType),
		Pricing:            r.Pricing.ToDomain(),
		Amenities:          r.Amenities.ToDomain(),
		AutoAcceptBookings: r.AutoAcceptBookings,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// ApplyTo переносит переданные поля в площадку
func (r *UpdateFacilityRequest) ApplyTo(f *domain.Facility) {
	if r.Name != nil {
		f.Name = *r.Name
	}
	if r.Address != nil {
		f.Address = *r.Address
	}
	if r.Location != nil {
		f.Location = r.Location.ToDomain()
	}
	if r.FacilityType != nil {
		f.FacilityType = domain.FacilityType(*r.FacilityType)
	}
	if r.Pricing != nil {
		f.Pricing = r.Pricing.ToDomain()
	}
	if r.Amenities != nil {
		f.Amenities = r.Amenities.ToDomain()
	}
	if r.AutoAcceptBookings != nil {
		f.AutoAcceptBookings = *r.AutoAcceptBookings
	}
}

// FromDomainFacility конвертирует domain модель в DTO
func FromDomainFacility(f *domain.Facility) *FacilityResponse {
	if f == nil {
		return nil
	}

	slots := make([]SlotResponse, 0, len(f.Slots))
	for _, s := range f.Slots {
		slots = append(slots, SlotResponse{
			ID:             s.ID.String(),
			Label:          s.Label(),
			Floor:          s.Floor,
			Number:         s.Number,
			Type:           string(s.Type),
			Occupied:       s.Occupied,
			Disabled:       s.Disabled,
			BookingEndTime: s.BookingEndTime,
		})
	}

	a := f.Amenities
	return &FacilityResponse{
		ID:           f.ID.String(),
		OwnerID:      f.OwnerID,
		Kind:         string(f.Kind),
		Name:         f.Name,
		Address:      f.Address,
		Location:     LocationDTO{Lat: f.Location.Lat, Lon: f.Location.Lon},
		FacilityType: string(f.FacilityType),
		Pricing: PricingDTO{
			HourlyRate:  f.Pricing.HourlyRate,
			DailyRate:   f.Pricing.DailyRate,
			MonthlyRate: f.Pricing.MonthlyRate,
			FlatDayRate: f.Pricing.FlatDayRate,
		},
		Amenities: AmenitiesDTO{
			CCTV:          a.CCTV,
			Covered:       a.Covered,
			EVCharging:    a.EVCharging,
			Accessible:    a.Accessible,
			Open24Hours:   a.Open24Hours,
			Valet:         a.Valet,
			CarWash:       a.CarWash,
			SecurityGuard: a.SecurityGuard,
			WaterAccess:   a.WaterAccess,
		},
		AutoAcceptBookings: f.AutoAcceptBookings,
		Rating:             f.Rating,
		ReviewCount:        f.ReviewCount,
		IsDeleted:          f.IsDeleted,
		HasActiveBooking:   f.HasActiveBooking(),
		TotalSlots:         f.TotalSlots(),
		AvailableSlots:     f.AvailableSlots(),
		Slots:              slots,
		CreatedAt:          f.CreatedAt,
		UpdatedAt:          f.UpdatedAt,
	}
}

// FromPricingIntelligence конвертирует сводку по тарифам в DTO
func FromPricingIntelligence(facilityID uuid.UUID, intel pricing.Intelligence) *PricingResponse {
	return &PricingResponse{
		FacilityID:      facilityID.String(),
		CurrentRate:     intel.CurrentRate,
		SuggestedRate:   intel.SuggestedRate,
		Competitiveness: string(intel.Competitiveness),
		NearbyCount:     intel.NearbyCount,
		AvgNearbyRate:   intel.AvgNearbyRate,
		MinNearbyRate:   intel.MinNearbyRate,
		MaxNearbyRate:   intel.MaxNearbyRate,
	}
}
