package verify_access

import (
	"github.com/google/uuid"

	"github.com/m04kA/SMC-ParkingService/internal/service/bookings/models"
)

// Request предъявленный код: строка QR или пара площадка + PIN
type Request struct {
	QRPayload  string
	FacilityID uuid.UUID
	PIN        string
}

// Response результат проверки
type Response struct {
	Booking *models.BookingResponse
}
