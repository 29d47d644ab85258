package model

// Menu is a single item on a vendor's menu. Menus live in the vendor's own
// spreadsheet; the storefront only ever reads them.
//
// Quantity is nil when the vendor does not track stock for the item
// (unlimited). A value of 0 means sold out and is distinct from nil.
type Menu struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Available   bool   `json:"available"`
	Quantity    *int   `json:"quantity,omitempty"`
	Image       string `json:"image"`
}
