package domain

import (
	"time"

	"github.com/google/uuid"
)

// DisputeStatus status of a dispute report
type DisputeStatus string

const (
	DisputePending     DisputeStatus = "pending"
	DisputeUnderReview DisputeStatus = "under_review"
	DisputeResolved    DisputeStatus = "resolved"
	DisputeRejected    DisputeStatus = "rejected"
)

// DisputeReport complaint about a booking
type DisputeReport struct {
	ID          uuid.UUID
	BookingID   uuid.UUID
	ReporterID  int64
	Reason      string
	Description string
	PhotoURLs   []string
	Status      DisputeStatus
	Resolution  *string
	ResolvedAt  *time.Time
	CreatedAt   time.Time
}

// IsOpen returns true until the dispute is resolved or rejected
func (d *DisputeReport) IsOpen() bool {
	return d.Status == DisputePending || d.Status == DisputeUnderReview
}

// Review pending -> under_review
func (d DisputeReport) Review() (DisputeReport, error) {
	if d.Status != DisputePending {
		return d, ErrInvalidTransition
	}
	d.PhotoURLs = append([]string(nil), d.PhotoURLs...)
	d.Status = DisputeUnderReview
	return d, nil
}

// Close finishes an open dispute as resolved or rejected
func (d DisputeReport) Close(now time.Time, status DisputeStatus, resolution string) (DisputeReport, error) {
	if !d.IsOpen() || (status != DisputeResolved && status != DisputeRejected) {
		return d, ErrInvalidTransition
	}
	d.PhotoURLs = append([]string(nil), d.PhotoURLs...)
	d.Status = status
	d.Resolution = &resolution
	d.ResolvedAt = &now
	return d, nil
}
