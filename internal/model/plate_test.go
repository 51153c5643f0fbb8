package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPlate_InWindow(t *testing.T) {
	start := time.Date(2025, 3, 1, 17, 0, 0, 0, time.UTC)
	p := &Plate{WindowStart: start, WindowEnd: start.Add(2 * time.Hour)}

	assert.False(t, p.InWindow(start.Add(-time.Second)))
	assert.True(t, p.InWindow(start))
	assert.True(t, p.InWindow(start.Add(time.Hour)))
	assert.False(t, p.InWindow(start.Add(2*time.Hour)), "window end is exclusive")
}

func TestPlate_IsAvailable(t *testing.T) {
	start := time.Date(2025, 3, 1, 17, 0, 0, 0, time.UTC)
	now := start.Add(time.Minute)
	base := Plate{IsActive: true, QuantityAvailable: 1, WindowStart: start, WindowEnd: start.Add(time.Hour)}

	p := base
	assert.True(t, p.IsAvailable(now))

	p = base
	p.IsActive = false
	assert.False(t, p.IsAvailable(now))

	p = base
	p.QuantityAvailable = 0
	assert.False(t, p.IsAvailable(now))

	p = base
	assert.False(t, p.IsAvailable(start.Add(2*time.Hour)))
}

func TestPlate_Amount(t *testing.T) {
	p := &Plate{Price: decimal.RequireFromString("0.10")}
	// 0.1 * 3 drifts in float64; fixed point must not
	assert.True(t, p.Amount(3).Equal(decimal.RequireFromString("0.30")))

	p.Price = decimal.RequireFromString("12.99")
	assert.Equal(t, "64.95", p.Amount(5).StringFixed(2))
}

func TestPlate_SoldAndAvailability(t *testing.T) {
	start := time.Date(2025, 3, 1, 17, 0, 0, 0, time.UTC)
	p := &Plate{
		ID: 7, Title: "Bento", Price: decimal.RequireFromString("4.50"),
		QuantityOriginal: 10, QuantityAvailable: 6,
		WindowStart: start, WindowEnd: start.Add(2 * time.Hour),
	}

	assert.Equal(t, 4, p.Sold())

	a := p.Availability()
	assert.Equal(t, 7, a.PlateID)
	assert.Equal(t, 6, a.QuantityAvailable)
	assert.True(t, a.WindowStart.Equal(start))
	assert.True(t, a.Price.Equal(p.Price))
}
