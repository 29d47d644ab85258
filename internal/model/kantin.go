package model

import "time"

// OperatingHours is one open/close window for a day of the week.
type OperatingHours struct {
	Day   string `json:"day"`
	Open  string `json:"open"`
	Close string `json:"close"`
}

// Kantin is a vendor account. Credentials are stored as given by the
// super-admin; the remote sheet is the authoritative copy and holds them as
// plain columns.
type Kantin struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	Description       string           `json:"description"`
	OwnerID           string           `json:"ownerId"`
	Email             string           `json:"email"`
	Password          string           `json:"password"`
	SpreadsheetAPIURL string           `json:"spreadsheetApiUrl"`
	SpreadsheetURL    string           `json:"spreadsheetUrl"`
	WhatsApp          string           `json:"whatsapp"`
	CoverImage        string           `json:"coverImage"`
	QRISImage         string           `json:"qrisImage"`
	IsOpen            bool             `json:"isOpen"`
	OperatingHours    []OperatingHours `json:"operatingHours"`
	PendingSync       bool             `json:"pendingSync,omitempty"`
	CreatedAt         time.Time        `json:"createdAt"`
}

func (k Kantin) Key() string { return k.ID }

func (k Kantin) CreationTime() time.Time { return k.CreatedAt }

// Public strips credentials and endpoint URLs for shopper-facing responses.
func (k Kantin) Public() Kantin {
	k.Email = ""
	k.Password = ""
	k.SpreadsheetAPIURL = ""
	return k
}
