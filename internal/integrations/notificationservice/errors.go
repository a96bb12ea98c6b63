package notificationservice

import "errors"

var (
	// ErrInvalidNotification возвращается, когда у уведомления нет получателя или заголовка
	ErrInvalidNotification = errors.New("notificationservice client: invalid notification")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("notificationservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("notificationservice client: invalid response")
)
