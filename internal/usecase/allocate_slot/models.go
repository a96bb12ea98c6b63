package allocate_slot

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// Request модель запроса на бронирование места
type Request struct {
	FacilityID   uuid.UUID           // ID площадки
	SlotID       uuid.UUID           // ID места
	RequesterID  int64               // ID водителя
	Start        time.Time           // Начало интервала
	End          time.Time           // Конец интервала
	DurationType domain.DurationType // Тариф: hourly, daily, monthly
}

// Response модель ответа с созданным бронированием
type Response struct {
	Booking   domain.Booking // Созданное бронирование
	SlotLabel string         // Номер места вида F1-3
}
