package notificationservice

import "time"

// Notification уведомление пользователю
// Delay > 0 означает отложенную доставку (предупреждения об окончании сессии)
type Notification struct {
	UserID int64
	Title  string
	Body   string
	Delay  time.Duration
}

// notificationRequest тело запроса в NotificationService
type notificationRequest struct {
	UserID       int64  `json:"userId"`
	Title        string `json:"title"`
	Body         string `json:"body"`
	DelaySeconds int64  `json:"delaySeconds,omitempty"`
}

// ErrorResponse модель ошибки от NotificationService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (n Notification) validate() error {
	if n.UserID <= 0 || n.Title == "" {
		return ErrInvalidNotification
	}
	return nil
}
