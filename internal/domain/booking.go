package domain

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPendingApproval BookingStatus = "pendingApproval"
	StatusPending         BookingStatus = "pending"
	StatusApproved        BookingStatus = "approved"
	StatusActive          BookingStatus = "active"
	StatusCompleted       BookingStatus = "completed"
	StatusRejected        BookingStatus = "rejected"
	StatusCancelled       BookingStatus = "cancelled"
	StatusExpired         BookingStatus = "expired"
)

// IsValid reports whether the status is known
func (s BookingStatus) IsValid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// IsLive returns true if a booking in this status holds its slot
func (s BookingStatus) IsLive() bool {
	return s == StatusPending || s == StatusApproved || s == StatusActive
}

// IsTerminal returns true if no transition leaves this status
func (s BookingStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRejected || s == StatusCancelled || s == StatusExpired
}

// PrivateTerms fields that only private bookings carry
type PrivateTerms struct {
	ApprovalTime    *time.Time
	RejectionReason *string
	AccessPIN       *string
}

// Booking reservation of a slot for a time interval
// Transitions return a new value and never modify the receiver
type Booking struct {
	ID          uuid.UUID
	Kind        InventoryKind
	FacilityID  uuid.UUID
	SlotID      uuid.UUID
	RequesterID int64
	HostID      int64

	RequestedAt    time.Time
	ScheduledStart time.Time
	ScheduledEnd   time.Time
	ActualStart    *time.Time
	ActualEnd      *time.Time

	DurationType  DurationType
	AgreedRate    float64
	EstimatedCost float64
	ActualCost    *float64
	OverstayFee   *float64
	HostEarnings  *float64

	Status      BookingStatus
	CancelledAt *time.Time
	// Ключи уже примененных продлений
	ExtensionKeys []string

	// nil для коммерческих бронирований
	Private *PrivateTerms

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a copy that shares no pointers with b
func (b Booking) Clone() Booking {
	b.ActualStart = cloneTime(b.ActualStart)
	b.ActualEnd = cloneTime(b.ActualEnd)
	b.ActualCost = cloneFloat(b.ActualCost)
	b.OverstayFee = cloneFloat(b.OverstayFee)
	b.HostEarnings = cloneFloat(b.HostEarnings)
	b.CancelledAt = cloneTime(b.CancelledAt)
	b.ExtensionKeys = append([]string(nil), b.ExtensionKeys...)
	if b.Private != nil {
		b.Private = &PrivateTerms{
			ApprovalTime:    cloneTime(b.Private.ApprovalTime),
			RejectionReason: cloneString(b.Private.RejectionReason),
			AccessPIN:       cloneString(b.Private.AccessPIN),
		}
	}
	return b
}

// IsLive returns true if the booking holds its slot
func (b *Booking) IsLive() bool {
	return b.Status.IsLive()
}

// AccessPIN returns the PIN of a private booking if one was minted
func (b *Booking) AccessPIN() (string, bool) {
	if b.Private == nil || b.Private.AccessPIN == nil {
		return "", false
	}
	return *b.Private.AccessPIN, true
}

// IsDuplicateExtension returns true if the extension key was already applied
func (b *Booking) IsDuplicateExtension(key string) bool {
	if key == "" {
		return false
	}
	for _, k := range b.ExtensionKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Approve pendingApproval -> approved, stamps approval time and stores the PIN
func (b Booking) Approve(now time.Time, pin string) (Booking, error) {
	if b.Status != StatusPendingApproval || b.Kind != KindPrivate {
		return b, ErrInvalidTransition
	}
	next := b.Clone()
	if next.Private == nil {
		next.Private = &PrivateTerms{}
	}
	next.Private.ApprovalTime = &now
	next.Private.AccessPIN = &pin
	next.Status = StatusApproved
	next.UpdatedAt = now
	return next, nil
}

// Reject pendingApproval -> rejected with reason
func (b Booking) Reject(now time.Time, reason string) (Booking, error) {
	if b.Status != StatusPendingApproval {
		return b, ErrInvalidTransition
	}
	next := b.Clone()
	if next.Private == nil {
		next.Private = &PrivateTerms{}
	}
	next.Private.RejectionReason = &reason
	next.Status = StatusRejected
	next.UpdatedAt = now
	return next, nil
}

// Start pending/approved -> active
func (b Booking) Start(now time.Time) (Booking, error) {
	if b.Status != StatusPending && b.Status != StatusApproved {
		return b, ErrInvalidTransition
	}
	next := b.Clone()
	next.ActualStart = &now
	next.Status = StatusActive
	next.UpdatedAt = now
	return next, nil
}

// Extend moves the scheduled end of an active booking and sets the recomputed estimate
func (b Booking) Extend(now time.Time, hours int, newEstimate float64, key string) (Booking, error) {
	if b.Status != StatusActive {
		return b, ErrInvalidTransition
	}
	if hours <= 0 {
		return b, ErrInvalidExtension
	}
	next := b.Clone()
	next.ScheduledEnd = b.ScheduledEnd.Add(time.Duration(hours) * time.Hour)
	next.EstimatedCost = newEstimate
	if key != "" {
		next.ExtensionKeys = append(next.ExtensionKeys, key)
	}
	next.UpdatedAt = now
	return next, nil
}

// Complete active -> completed with finalized charges
func (b Booking) Complete(now time.Time, actualCost, overstayFee, earnings float64) (Booking, error) {
	if b.Status != StatusActive {
		return b, ErrInvalidTransition
	}
	next := b.Clone()
	next.ActualEnd = &now
	next.ActualCost = &actualCost
	next.OverstayFee = &overstayFee
	next.HostEarnings = &earnings
	next.Status = StatusCompleted
	next.UpdatedAt = now
	return next, nil
}

// Cancel any pre-active status -> cancelled
func (b Booking) Cancel(now time.Time) (Booking, error) {
	switch b.Status {
	case StatusPendingApproval, StatusPending, StatusApproved:
	default:
		return b, ErrInvalidTransition
	}
	next := b.Clone()
	next.CancelledAt = &now
	next.Status = StatusCancelled
	next.UpdatedAt = now
	return next, nil
}

// Expire pendingApproval -> expired once the scheduled start has passed without a host decision
func (b Booking) Expire(now time.Time) (Booking, error) {
	if b.Status != StatusPendingApproval || now.Before(b.ScheduledStart) {
		return b, ErrInvalidTransition
	}
	next := b.Clone()
	next.Status = StatusExpired
	next.UpdatedAt = now
	return next, nil
}

// HostBookingsFilter фильтр для получения бронирований хоста
type HostBookingsFilter struct {
	HostID          int64          // Обязательный параметр
	FacilityID      *uuid.UUID     // Фильтр по площадке (опционально)
	Status          *BookingStatus // Фильтр по статусу (опционально)
	IncludeInactive bool           // Включать ли завершённые и отменённые
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
