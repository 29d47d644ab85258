package model

import "time"

// CartItem is one line in a shopper's cart. Name and price are snapshots
// taken when the item was added; the menu may change underneath.
type CartItem struct {
	MenuID   string `json:"menuId"`
	MenuName string `json:"menuName"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

// Cart maps menu ID to the single cart line for that item.
type Cart map[string]CartItem

// Subtotal sums line totals across the cart.
func (c Cart) Subtotal() int64 {
	var total int64
	for _, item := range c {
		total += item.Price * int64(item.Quantity)
	}
	return total
}

// DeliveryLocation is a QR-scanned campus table. Absence means take away.
type DeliveryLocation struct {
	Name        string    `json:"name"`
	TableNumber string    `json:"tableNumber"`
	ScannedAt   time.Time `json:"scannedAt"`
}
