package disputes

import "errors"

var (
	// ErrDisputeNotFound возвращается, когда жалоба не найдена
	ErrDisputeNotFound = errors.New("disputes: dispute not found")

	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("disputes: booking not found")

	// ErrAccessDenied возвращается, когда пользователь не участник бронирования
	ErrAccessDenied = errors.New("disputes: access denied")

	// ErrInvalidTransition возвращается при изменении закрытой жалобы
	ErrInvalidTransition = errors.New("disputes: invalid status transition")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("disputes: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("disputes: internal error")
)
