package kantin

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/rahmatdika/ekantin/internal/model"
	"github.com/rahmatdika/ekantin/internal/sheet"
)

// FromRow rebuilds a vendor account from its sheet row. Operating hours
// travel as JSON text in one cell; a corrupt cell decodes to no hours.
func FromRow(row sheet.Row) model.Kantin {
	return model.Kantin{
		ID:                row.String("id"),
		Name:              row.String("name"),
		Description:       row.String("description"),
		OwnerID:           row.String("ownerId"),
		Email:             row.String("email"),
		Password:          row.String("password"),
		SpreadsheetAPIURL: row.String("spreadsheetApiUrl"),
		SpreadsheetURL:    row.String("spreadsheetUrl"),
		WhatsApp:          row.String("whatsapp"),
		CoverImage:        row.String("coverImage"),
		QRISImage:         row.String("qrisImage"),
		IsOpen:            row.Bool("isOpen"),
		OperatingHours:    decodeHoursCell(row.String("operatingHours")),
		CreatedAt:         row.Time("createdAt"),
	}
}

// ToRow flattens a vendor account for the sheet. pending_sync stays local.
func ToRow(k model.Kantin) sheet.Row {
	return sheet.Row{
		"id":                k.ID,
		"name":              k.Name,
		"description":       k.Description,
		"ownerId":           k.OwnerID,
		"email":             k.Email,
		"password":          k.Password,
		"spreadsheetApiUrl": k.SpreadsheetAPIURL,
		"spreadsheetUrl":    k.SpreadsheetURL,
		"whatsapp":          k.WhatsApp,
		"coverImage":        k.CoverImage,
		"qrisImage":         k.QRISImage,
		"isOpen":            k.IsOpen,
		"operatingHours":    encodeHoursCell(k.OperatingHours),
		"createdAt":         k.CreatedAt.Format(time.RFC3339),
	}
}

func decodeHoursCell(s string) []model.OperatingHours {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") {
		return nil
	}
	var hours []model.OperatingHours
	if err := json.Unmarshal([]byte(s), &hours); err != nil {
		return nil
	}
	return hours
}

func encodeHoursCell(hours []model.OperatingHours) string {
	if hours == nil {
		hours = []model.OperatingHours{}
	}
	data, err := json.Marshal(hours)
	if err != nil {
		return "[]"
	}
	return string(data)
}
