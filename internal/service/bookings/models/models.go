package models

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")

	// ErrInvalidFacilityID возвращается при некорректном ID площадки в фильтре
	ErrInvalidFacilityID = errors.New("invalid facility id")
)

// Request модели

// GetUserBookingsRequest запрос на получение бронирований водителя
type GetUserBookingsRequest struct {
	UserID int64   `json:"userId"`
	Status *string `json:"status,omitempty"`
}

// GetHostBookingsRequest запрос на получение бронирований хоста
type GetHostBookingsRequest struct {
	UserID          int64   `json:"userId"`
	HostID          int64   `json:"hostId"`
	FacilityID      *string `json:"facilityId,omitempty"`      // Фильтр по площадке (опционально)
	Status          *string `json:"status,omitempty"`          // Фильтр по статусу (опционально)
	IncludeInactive bool    `json:"includeInactive,omitempty"` // Включить завершённые и отменённые
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetHostBookingsRequest) ToDomainFilter() (domain.HostBookingsFilter, error) {
	filter := domain.HostBookingsFilter{
		HostID:          r.HostID,
		IncludeInactive: r.IncludeInactive,
	}

	if r.FacilityID != nil {
		id, err := uuid.Parse(*r.FacilityID)
		if err != nil {
			return filter, ErrInvalidFacilityID
		}
		filter.FacilityID = &id
	}

	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	FacilityID  string `json:"facilityId"`
	SlotID      string `json:"slotId"`
	RequesterID int64  `json:"requesterId"`
	HostID      int64  `json:"hostId"`

	RequestedAt    time.Time  `json:"requestedAt"`
	ScheduledStart time.Time  `json:"scheduledStart"`
	ScheduledEnd   time.Time  `json:"scheduledEnd"`
	ActualStart    *time.Time `json:"actualStart,omitempty"`
	ActualEnd      *time.Time `json:"actualEnd,omitempty"`

	DurationType  string   `json:"durationType"`
	AgreedRate    float64  `json:"agreedRate"`
	EstimatedCost float64  `json:"estimatedCost"`
	ActualCost    *float64 `json:"actualCost,omitempty"`
	OverstayFee   *float64 `json:"overstayFee,omitempty"`
	HostEarnings  *float64 `json:"hostEarnings,omitempty"`

	Status      string     `json:"status"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty"`

	// Только для частных бронирований
	ApprovalTime    *time.Time `json:"approvalTime,omitempty"`
	RejectionReason *string    `json:"rejectionReason,omitempty"`
	AccessPIN       *string    `json:"accessPin,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// FacilityTypeEarnings заработок хоста по типу площадки
type FacilityTypeEarnings struct {
	FacilityType   string  `json:"facilityType"`
	CommissionRate float64 `json:"commissionRate"`
	Bookings       int     `json:"bookings"`
	Gross          float64 `json:"gross"`
	Earnings       float64 `json:"earnings"`
}

// HostEarningsResponse сводка заработка хоста по завершённым бронированиям
type HostEarningsResponse struct {
	HostID         int64                  `json:"hostId"`
	TotalBookings  int                    `json:"totalBookings"`
	TotalGross     float64                `json:"totalGross"`
	TotalEarnings  float64                `json:"totalEarnings"`
	ByFacilityType []FacilityTypeEarnings `json:"byFacilityType"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:             b.ID.String(),
		Kind:           string(b.Kind),
		FacilityID:     b.FacilityID.String(),
		SlotID:         b.SlotID.String(),
		RequesterID:    b.RequesterID,
		HostID:         b.HostID,
		RequestedAt:    b.RequestedAt,
		ScheduledStart: b.ScheduledStart,
		ScheduledEnd:   b.ScheduledEnd,
		ActualStart:    b.ActualStart,
		ActualEnd:      b.ActualEnd,
		DurationType:   string(b.DurationType),
		AgreedRate:     b.AgreedRate,
		EstimatedCost:  b.EstimatedCost,
		ActualCost:     b.ActualCost,
		OverstayFee:    b.OverstayFee,
		HostEarnings:   b.HostEarnings,
		Status:         string(b.Status),
		CancelledAt:    b.CancelledAt,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}

	if b.Private != nil {
		resp.ApprovalTime = b.Private.ApprovalTime
		resp.RejectionReason = b.Private.RejectionReason
		resp.AccessPIN = b.Private.AccessPIN
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	result := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}
	for _, b := range bookings {
		result.Bookings = append(result.Bookings, *FromDomainBooking(b))
	}
	return result
}

// ToDomainBookingStatus конвертирует строку в domain статус
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(status)
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}
