package verify_entry

import (
	"github.com/google/uuid"

	"github.com/m04kA/SMC-ParkingService/internal/usecase/verify_access"
)

// VerifyRequest QR строка или пара facilityId + pin
type VerifyRequest struct {
	QRPayload  string    `json:"qrPayload,omitempty"`
	FacilityID uuid.UUID `json:"facilityId,omitempty"`
	PIN        string    `json:"pin,omitempty"`
}

func (r VerifyRequest) ToUseCaseRequest() *verify_access.Request {
	return &verify_access.Request{
		QRPayload:  r.QRPayload,
		FacilityID: r.FacilityID,
		PIN:        r.PIN,
	}
}
