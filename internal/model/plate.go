package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Plate 餐廳上架的剩食批次
type Plate struct {
	ID                int             `json:"id" db:"id"`
	RestaurantID      int             `json:"restaurant_id" db:"restaurant_id"`
	Title             string          `json:"title" db:"title"`
	Description       string          `json:"description" db:"description"`
	Price             decimal.Decimal `json:"price" db:"price"`
	QuantityAvailable int             `json:"quantity_available" db:"quantity_available"`
	QuantityOriginal  int             `json:"quantity_original" db:"quantity_original"`
	WindowStart       time.Time       `json:"window_start" db:"window_start"`
	WindowEnd         time.Time       `json:"window_end" db:"window_end"`
	IsActive          bool            `json:"is_active" db:"is_active"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

// InWindow reports whether now falls inside [WindowStart, WindowEnd).
func (p *Plate) InWindow(now time.Time) bool {
	return !now.Before(p.WindowStart) && now.Before(p.WindowEnd)
}

// IsAvailable 是否可被預訂
func (p *Plate) IsAvailable(now time.Time) bool {
	return p.IsActive && p.QuantityAvailable > 0 && p.InWindow(now)
}

// Amount is price × qty in fixed-point.
func (p *Plate) Amount(qty int) decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(qty)))
}

// CreatePlateRequest 建立餐點請求
type CreatePlateRequest struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity" binding:"required,min=1"`
	WindowStart time.Time       `json:"window_start"`
	WindowEnd   time.Time       `json:"window_end"`
}

// PlateAvailability is the cached marketplace view of a plate.
type PlateAvailability struct {
	PlateID           int             `json:"plate_id"`
	Title             string          `json:"title"`
	Price             decimal.Decimal `json:"price"`
	QuantityAvailable int             `json:"quantity_available"`
	WindowStart       time.Time       `json:"window_start"`
	WindowEnd         time.Time       `json:"window_end"`
}

// Sold is the number of units already taken off the counter. It only grows.
func (p *Plate) Sold() int {
	return p.QuantityOriginal - p.QuantityAvailable
}

func (p *Plate) Availability() PlateAvailability {
	return PlateAvailability{
		PlateID:           p.ID,
		Title:             p.Title,
		Price:             p.Price,
		QuantityAvailable: p.QuantityAvailable,
		WindowStart:       p.WindowStart,
		WindowEnd:         p.WindowEnd,
	}
}
