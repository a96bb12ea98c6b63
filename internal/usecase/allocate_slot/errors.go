package allocate_slot

import "errors"

var (
	// ErrFacilityNotFound возвращается, когда площадка не найдена или удалена
	ErrFacilityNotFound = errors.New("allocate_slot: facility not found")

	// ErrSlotNotFound возвращается, когда место не найдено на площадке
	ErrSlotNotFound = errors.New("allocate_slot: slot not found")

	// ErrSlotUnavailable возвращается, когда место занято или выключено
	ErrSlotUnavailable = errors.New("allocate_slot: slot is not available")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("allocate_slot: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("allocate_slot: internal error")
)
