// Package models defines the core data structures used throughout newspulse.
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Holding represents one portfolio position. Holdings are immutable once
// created; quantity and price cannot be edited in place.
type Holding struct {
	ID       uuid.UUID       `json:"id"`
	Symbol   string          `json:"symbol"`   // uppercased, e.g. "RELIANCE"
	Quantity int64           `json:"quantity"` // number of shares, > 0
	Price    decimal.Decimal `json:"price"`    // purchase price per share in INR
	AddedAt  time.Time       `json:"added_at"`
}

// Value returns the invested amount (quantity × purchase price).
func (h Holding) Value() decimal.Decimal {
	return h.Price.Mul(decimal.NewFromInt(h.Quantity))
}

// Symbols returns the symbols of the given holdings in order.
func Symbols(holdings []Holding) []string {
	out := make([]string, 0, len(holdings))
	for _, h := range holdings {
		out = append(out, h.Symbol)
	}
	return out
}

// TotalValue sums the invested value of all holdings.
func TotalValue(holdings []Holding) decimal.Decimal {
	total := decimal.Zero
	for _, h := range holdings {
		total = total.Add(h.Value())
	}
	return total
}
