package pricing

import "github.com/m04kA/SMC-ParkingService/internal/domain"

const (
	// PrivateCommission platform share for private listings
	PrivateCommission = 0.15
	// MallCommission platform share for commercial malls
	MallCommission = 0.12
	// CommercialCommission platform share for other commercial facilities
	CommercialCommission = 0.15
)

// CommissionRate platform commission by inventory kind and facility type
func CommissionRate(kind domain.InventoryKind, facilityType domain.FacilityType) float64 {
	if kind == domain.KindCommercial && facilityType == domain.FacilityMall {
		return MallCommission
	}
	if kind == domain.KindCommercial {
		return CommercialCommission
	}
	return PrivateCommission
}

// HostEarnings host share of the actual cost
func HostEarnings(actualCost float64, kind domain.InventoryKind, facilityType domain.FacilityType) float64 {
	return RoundMoney(actualCost * (1 - CommissionRate(kind, facilityType)))
}
