// Package pricing computes booking cost, overstay fees, host earnings and suggested rates.
package pricing

import (
	"math"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

const (
	// TaxRate applied on top of every quoted total
	TaxRate = 0.18

	// OverstayBlockMinutes size of one billed overstay block
	OverstayBlockMinutes = 15

	// OverstayBlockFee fee per started overstay block
	OverstayBlockFee = 20.0
)

// RoundMoney rounds to 2 decimals
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// EstimateCost base cost before tax
// hourly and daily multiply the rate by quantity, monthly is a flat rate
func EstimateCost(rate float64, durationType domain.DurationType, quantity int) float64 {
	switch durationType {
	case domain.DurationHourly, domain.DurationDaily:
		return RoundMoney(rate * float64(quantity))
	case domain.DurationMonthly:
		return RoundMoney(rate)
	}
	return 0
}

// WithTax applies the fixed tax multiplier
func WithTax(base float64) float64 {
	return RoundMoney(base * (1 + TaxRate))
}

// Quote total with tax for a booking window
func Quote(rate float64, durationType domain.DurationType, start, end time.Time) float64 {
	return WithTax(EstimateCost(rate, durationType, BilledUnits(durationType, start, end)))
}

// BilledUnits number of billed units for the window
// hourly: started hours; daily: calendar-day difference; monthly: 1. Never less than 1
func BilledUnits(durationType domain.DurationType, start, end time.Time) int {
	var units int
	switch durationType {
	case domain.DurationHourly:
		units = int(math.Ceil(end.Sub(start).Hours()))
	case domain.DurationDaily:
		units = calendarDays(start, end)
	case domain.DurationMonthly:
		units = 1
	}
	if units < 1 {
		return 1
	}
	return units
}

func calendarDays(start, end time.Time) int {
	end = end.In(start.Location())
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours() / 24)
}

// AgreedRate facility rate for the duration type times the slot multiplier
func AgreedRate(f *domain.Facility, slot domain.Slot, durationType domain.DurationType) (float64, bool) {
	rate, ok := f.Pricing.RateFor(durationType)
	if !ok {
		return 0, false
	}
	return RoundMoney(rate * slot.Type.Multiplier()), true
}

// OverstayFee fee for ending after the scheduled end
// minutes are rounded up, every started 15-minute block costs 20
func OverstayFee(scheduledEnd, actualEnd time.Time) float64 {
	if !actualEnd.After(scheduledEnd) {
		return 0
	}
	minutes := math.Ceil(actualEnd.Sub(scheduledEnd).Seconds() / 60)
	blocks := math.Ceil(minutes / OverstayBlockMinutes)
	return blocks * OverstayBlockFee
}

// FinalizeCost actual cost and overstay fee at session end
// Early exit is not refunded: the booked window is always billed
func FinalizeCost(b domain.Booking, actualEnd time.Time) (actualCost, overstayFee float64) {
	if !actualEnd.After(b.ScheduledEnd) {
		return b.EstimatedCost, 0
	}
	fee := OverstayFee(b.ScheduledEnd, actualEnd)
	return RoundMoney(b.EstimatedCost + fee), fee
}
