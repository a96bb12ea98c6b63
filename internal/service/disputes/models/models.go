package models

import (
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// OpenDisputeRequest запрос на открытие жалобы по бронированию
type OpenDisputeRequest struct {
	UserID      int64    `json:"-"`
	Reason      string   `json:"reason"`
	Description string   `json:"description"`
	PhotoURLs   []string `json:"photoUrls,omitempty"`
}

// ResolveDisputeRequest запрос на рассмотрение жалобы
// Status: under_review, resolved или rejected (по умолчанию resolved)
type ResolveDisputeRequest struct {
	UserID     int64  `json:"-"`
	Status     string `json:"status,omitempty"`
	Resolution string `json:"resolution"`
}

// DisputeResponse ответ с данными жалобы
type DisputeResponse struct {
	ID          string     `json:"id"`
	BookingID   string     `json:"bookingId"`
	ReporterID  int64      `json:"reporterId"`
	Reason      string     `json:"reason"`
	Description string     `json:"description"`
	PhotoURLs   []string   `json:"photoUrls"`
	Status      string     `json:"status"`
	Resolution  *string    `json:"resolution,omitempty"`
	ResolvedAt  *time.Time `json:"resolvedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// DisputeListResponse ответ со списком жалоб
type DisputeListResponse struct {
	Disputes []DisputeResponse `json:"disputes"`
}

// FromDomainDispute конвертирует domain модель в DTO
func FromDomainDispute(d *domain.DisputeReport) *DisputeResponse {
	if d == nil {
		return nil
	}

	photos := d.PhotoURLs
	if photos == nil {
		photos = []string{}
	}

	return &DisputeResponse{
		ID:          d.ID.String(),
		BookingID:   d.BookingID.String(),
		ReporterID:  d.ReporterID,
		Reason:      d.Reason,
		Description: d.Description,
		PhotoURLs:   photos,
		Status:      string(d.Status),
		Resolution:  d.Resolution,
		ResolvedAt:  d.ResolvedAt,
		CreatedAt:   d.CreatedAt,
	}
}

// FromDomainDisputeList конвертирует список domain моделей в DTO
func FromDomainDisputeList(list []*domain.DisputeReport) *DisputeListResponse {
	result := &DisputeListResponse{Disputes: make([]DisputeResponse, 0, len(list))}
	for _, d := range list {
		result.Disputes = append(result.Disputes, *FromDomainDispute(d))
	}
	return result
}
