package get_available_slots

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// Request модель запроса на получение мест площадки
type Request struct {
	FacilityID    uuid.UUID        // ID площадки
	Floor         *int             // Фильтр по этажу (опционально)
	SlotType      *domain.SlotType // Фильтр по типу места (опционально)
	AvailableOnly bool             // Только свободные места
}

// Response модель ответа со списком мест
type Response struct {
	FacilityID     uuid.UUID
	FacilityName   string
	Kind           domain.InventoryKind
	TotalSlots     int    // Всего мест на площадке
	AvailableSlots int    // Свободных мест на площадке
	Slots          []Slot // Места после фильтрации
}

// Slot состояние места на момент запроса
type Slot struct {
	ID             uuid.UUID
	Label          string // Номер места вида F1-3
	Floor          int
	Number         int
	Type           domain.SlotType
	HourlyRate     float64 // Ставка площадки с учетом множителя типа места
	Available      bool
	Occupied       bool
	Disabled       bool
	BookingEndTime *time.Time
	TimeRemaining  time.Duration // До освобождения занятого места
}
