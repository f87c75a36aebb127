package models

import "time"

type BagItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Bag is ephemeral per-session state. There is no backend sync; a bag
// lives in memory until its session expires.
type Bag struct {
	SessionID string    `json:"session_id"`
	Items     []BagItem `json:"items"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TotalQuantity sums item quantities for the header badge.
func (b *Bag) TotalQuantity() int {
	total := 0
	for _, item := range b.Items {
		total += item.Quantity
	}
	return total
}
