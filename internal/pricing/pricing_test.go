package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

var start = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func TestEstimateCost(t *testing.T) {
	assert.Equal(t, 80.0, EstimateCost(40, domain.DurationHourly, 2))
	assert.Equal(t, 94.4, WithTax(EstimateCost(40, domain.DurationHourly, 2)))
	assert.Equal(t, 900.0, EstimateCost(300, domain.DurationDaily, 3))
	assert.Equal(t, 5000.0, EstimateCost(5000, domain.DurationMonthly, 17))
}

func TestBilledUnits(t *testing.T) {
	tests := []struct {
		name     string
		duration domain.DurationType
		end      time.Time
		want     int
	}{
		{"exact hours", domain.DurationHourly, start.Add(3 * time.Hour), 3},
		{"started hour counts", domain.DurationHourly, start.Add(2*time.Hour + time.Minute), 3},
		{"at least one hour", domain.DurationHourly, start.Add(10 * time.Minute), 1},
		{"same day is one day", domain.DurationDaily, start.Add(5 * time.Hour), 1},
		{"calendar days", domain.DurationDaily, start.AddDate(0, 0, 2).Add(-9 * time.Hour), 2},
		{"monthly is flat", domain.DurationMonthly, start.AddDate(0, 1, 3), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BilledUnits(tt.duration, start, tt.end))
		})
	}
}

func TestQuote(t *testing.T) {
	assert.Equal(t, 177.0, Quote(50, domain.DurationHourly, start, start.Add(3*time.Hour)))
}

func TestOverstayFee_Boundaries(t *testing.T) {
	end := start.Add(3 * time.Hour)

	assert.Equal(t, 0.0, OverstayFee(end, end.Add(-time.Minute)))
	assert.Equal(t, 0.0, OverstayFee(end, end))
	assert.Equal(t, 20.0, OverstayFee(end, end.Add(time.Second)))
	assert.Equal(t, 20.0, OverstayFee(end, end.Add(15*time.Minute)))
	assert.Equal(t, 40.0, OverstayFee(end, end.Add(16*time.Minute)))
	assert.Equal(t, 40.0, OverstayFee(end, end.Add(20*time.Minute)))
}

func TestFinalizeCost(t *testing.T) {
	b := domain.Booking{
		ScheduledStart: start,
		ScheduledEnd:   start.Add(3 * time.Hour),
		DurationType:   domain.DurationHourly,
		AgreedRate:     50,
		EstimatedCost:  177,
	}

	cost, fee := FinalizeCost(b, b.ScheduledEnd.Add(-30*time.Minute))
	assert.Equal(t, 177.0, cost)
	assert.Equal(t, 0.0, fee)

	cost, fee = FinalizeCost(b, b.ScheduledEnd.Add(20*time.Minute))
	assert.InDelta(t, 217.0, cost, 0.001)
	assert.Equal(t, 40.0, fee)
	assert.GreaterOrEqual(t, cost, b.EstimatedCost)
}

func TestAgreedRate(t *testing.T) {
	daily := 300.0
	f := &domain.Facility{Kind: domain.KindPrivate, Pricing: domain.Pricing{HourlyRate: 50, DailyRate: &daily}}

	rate, ok := AgreedRate(f, domain.Slot{Type: domain.SlotVIP}, domain.DurationHourly)
	assert.True(t, ok)
	assert.Equal(t, 75.0, rate)

	rate, ok = AgreedRate(f, domain.Slot{Type: domain.SlotCompact}, domain.DurationDaily)
	assert.True(t, ok)
	assert.Equal(t, 240.0, rate)

	_, ok = AgreedRate(f, domain.Slot{Type: domain.SlotRegular}, domain.DurationMonthly)
	assert.False(t, ok)
}

func TestCommission(t *testing.T) {
	assert.Equal(t, 0.12, CommissionRate(domain.KindCommercial, domain.FacilityMall))
	assert.Equal(t, 0.15, CommissionRate(domain.KindCommercial, domain.FacilityAirport))
	assert.Equal(t, 0.15, CommissionRate(domain.KindPrivate, domain.FacilityMall))

	assert.Equal(t, 88.0, HostEarnings(100, domain.KindCommercial, domain.FacilityMall))
	assert.Equal(t, 184.45, HostEarnings(217, domain.KindPrivate, domain.FacilityPrivateDriveway))
}
