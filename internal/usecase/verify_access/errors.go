package verify_access

import "errors"

var (
	// ErrNotFound возвращается, когда подходящее бронирование не найдено
	ErrNotFound = errors.New("verify_access: booking not found")

	// ErrWrongHost возвращается, когда код предъявлен не на своей площадке
	ErrWrongHost = errors.New("verify_access: booking belongs to another host")

	// ErrParse возвращается при нечитаемом QR коде
	ErrParse = errors.New("verify_access: malformed QR payload")

	// ErrInvalidInput возвращается, когда не передан ни QR, ни PIN
	ErrInvalidInput = errors.New("verify_access: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("verify_access: internal error")
)
