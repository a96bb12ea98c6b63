package domain

import "errors"

var (
	// ErrInvalidTransition возвращается, когда переход недопустим из текущего статуса
	ErrInvalidTransition = errors.New("domain: invalid status transition")

	// ErrSlotUnavailable возвращается, когда место занято или выключено
	ErrSlotUnavailable = errors.New("domain: slot is occupied or disabled")

	// ErrSlotNotBound возвращается, когда место не привязано к бронированию
	ErrSlotNotBound = errors.New("domain: slot is not bound to booking")

	// ErrSlotOccupied возвращается при попытке выключить занятое место
	ErrSlotOccupied = errors.New("domain: slot is occupied")

	// ErrInvalidExtension возвращается при неположительном продлении
	ErrInvalidExtension = errors.New("domain: extension must be positive")
)
