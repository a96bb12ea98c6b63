package pricing

import (
	"math"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

const (
	// DefaultSuggestRadiusMeters radius for comparable listings
	DefaultSuggestRadiusMeters = 2000.0

	// DefaultSuggestedRate fallback when there are no comparables
	DefaultSuggestedRate = 40.0

	earthRadiusMeters = 6371000.0
)

// Competitiveness banded comparison of own rate against the suggested one
type Competitiveness string

const (
	Competitive  Competitiveness = "competitive"
	Fair         Competitiveness = "fair"
	High         Competitiveness = "high"
	TooExpensive Competitiveness = "tooExpensive"
	Unknown      Competitiveness = "unknown"
)

// Distance great-circle distance in meters
func Distance(a, b domain.Location) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Nearby other non-deleted facilities within radius of the listing
func Nearby(listing *domain.Facility, all []*domain.Facility, radiusMeters float64) []*domain.Facility {
	result := make([]*domain.Facility, 0)
	for _, f := range all {
		if f.ID == listing.ID || f.IsDeleted || f.Location.IsZero() {
			continue
		}
		if Distance(listing.Location, f.Location) <= radiusMeters {
			result = append(result, f)
		}
	}
	return result
}

// SuggestRate average hourly rate of nearby listings rounded to one decimal
// Falls back to DefaultSuggestedRate without neighbours; nil when the listing has no coordinates
func SuggestRate(listing *domain.Facility, all []*domain.Facility, radiusMeters float64) *float64 {
	if listing.Location.IsZero() {
		return nil
	}

	nearby := Nearby(listing, all, radiusMeters)
	if len(nearby) == 0 {
		rate := DefaultSuggestedRate
		return &rate
	}

	sum := 0.0
	for _, f := range nearby {
		sum += f.Pricing.HourlyRate
	}
	rate := math.Round(sum/float64(len(nearby))*10) / 10
	return &rate
}

// RateCompetitiveness bands: <=0.9 competitive, <=1.1 fair, <=1.3 high, above tooExpensive
func RateCompetitiveness(own float64, suggested *float64) Competitiveness {
	if suggested == nil || *suggested <= 0 {
		return Unknown
	}

	ratio := own / *suggested
	switch {
	case ratio <= 0.9:
		return Competitive
	case ratio <= 1.1:
		return Fair
	case ratio <= 1.3:
		return High
	default:
		return TooExpensive
	}
}

// Intelligence pricing summary for a listing
type Intelligence struct {
	SuggestedRate   *float64
	CurrentRate     float64
	Competitiveness Competitiveness
	NearbyCount     int
	AvgNearbyRate   *float64
	MinNearbyRate   *float64
	MaxNearbyRate   *float64
}

// PricingIntelligence suggested rate, band and nearby rate statistics
func PricingIntelligence(listing *domain.Facility, all []*domain.Facility, radiusMeters float64) Intelligence {
	suggested := SuggestRate(listing, all, radiusMeters)
	intel := Intelligence{
		SuggestedRate:   suggested,
		CurrentRate:     listing.Pricing.HourlyRate,
		Competitiveness: RateCompetitiveness(listing.Pricing.HourlyRate, suggested),
	}
	if listing.Location.IsZero() {
		return intel
	}

	nearby := Nearby(listing, all, radiusMeters)
	intel.NearbyCount = len(nearby)
	if len(nearby) == 0 {
		return intel
	}

	lo, hi, sum := math.Inf(1), math.Inf(-1), 0.0
	for _, f := range nearby {
		r := f.Pricing.HourlyRate
		sum += r
		lo = math.Min(lo, r)
		hi = math.Max(hi, r)
	}
	avg := RoundMoney(sum / float64(len(nearby)))
	intel.AvgNearbyRate = &avg
	intel.MinNearbyRate = &lo
	intel.MaxNearbyRate = &hi
	return intel
}
