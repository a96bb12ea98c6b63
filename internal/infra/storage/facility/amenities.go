package facility

import (
	"encoding/json"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// amenitiesDoc хранится в колонке amenities (jsonb) с именами полей документа
type amenitiesDoc struct {
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

func marshalAmenities(a domain.Amenities) ([]byte, error) {
	return json.Marshal(amenitiesDoc(a))
}

func unmarshalAmenities(raw []byte) (domain.Amenities, error) {
	if len(raw) == 0 {
		return domain.Amenities{}, nil
	}
	var doc amenitiesDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.Amenities{}, err
	}
	return domain.Amenities(doc), nil
}
