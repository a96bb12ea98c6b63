package facilities

import "errors"

var (
	// ErrFacilityNotFound возвращается, когда площадка не найдена или удалена
	ErrFacilityNotFound = errors.New("facilities: facility not found")

	// ErrSlotNotFound возвращается, когда место не найдено в площадке
	ErrSlotNotFound = errors.New("facilities: slot not found")

	// ErrAccessDenied возвращается, когда пользователь не владелец площадки
	ErrAccessDenied = errors.New("facilities: access denied")

	// ErrHasActiveBooking возвращается при изменении площадки с занятыми местами
	ErrHasActiveBooking = errors.New("facilities: facility has an active booking")

	// ErrSlotOccupied возвращается при отключении занятого места
	ErrSlotOccupied = errors.New("facilities: slot is occupied")

	// ErrSlotConflict возвращается при повторной нумерации места на этаже
	ErrSlotConflict = errors.New("facilities: slot position already taken")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("facilities: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("facilities: internal error")
)
