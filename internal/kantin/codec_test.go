package kantin

import (
	"testing"
	"time"

	"github.com/rahmatdika/ekantin/internal/model"
	"github.com/rahmatdika/ekantin/internal/sheet"
)

func TestFromRow(t *testing.T) {
	row := sheet.Row{
		"id":                "k1",
		"name":              "Kantin Bu Sri",
		"email":             "busri@kampus.test",
		"password":          "rahasia",
		"spreadsheetApiUrl": "https://script.example/k1",
		"isOpen":            "TRUE",
		"operatingHours":    `[{"day":"Senin","open":"07:00","close":"16:00"}]`,
		"createdAt":         "2025-03-01T08:00:00Z",
	}

	k := FromRow(row)
	if k.ID != "k1" || k.Name != "Kantin Bu Sri" {
		t.Errorf("got %+v", k)
	}
	if !k.IsOpen {
		t.Error("isOpen TRUE not decoded")
	}
	if len(k.OperatingHours) != 1 || k.OperatingHours[0].Close != "16:00" {
		t.Errorf("hours = %+v", k.OperatingHours)
	}
	if !k.CreatedAt.Equal(time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)) {
		t.Errorf("createdAt = %v", k.CreatedAt)
	}
}

func TestFromRowCorruptHoursCell(t *testing.T) {
	tests := []struct {
		name string
		cell any
	}{
		{"garbage text", "senin sampai jumat"},
		{"json object", `{"day":"Senin"}`},
		{"empty", ""},
		{"truncated array", `[{"day":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := FromRow(sheet.Row{"id": "k1", "name": "K", "operatingHours": tt.cell})
			if k.OperatingHours != nil {
				t.Errorf("hours = %+v, want nil", k.OperatingHours)
			}
			if k.ID != "k1" {
				t.Error("corrupt cell took the record down")
			}
		})
	}
}

func TestRowRoundTrip(t *testing.T) {
	k := model.Kantin{
		ID:                "k1",
		Name:              "Kantin Bu Sri",
		Email:             "busri@kampus.test",
		Password:          "rahasia",
		SpreadsheetAPIURL: "https://script.example/k1",
		WhatsApp:          "+62811111111",
		IsOpen:            true,
		OperatingHours:    []model.OperatingHours{{Day: "Senin", Open: "07:00", Close: "16:00"}},
		PendingSync:       true,
		CreatedAt:         time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC),
	}

	row := ToRow(k)
	if _, ok := row["pendingSync"]; ok {
		t.Error("pending_sync leaked into the sheet row")
	}

	got := FromRow(row)
	got.PendingSync = k.PendingSync
	if got.ID != k.ID || got.Email != k.Email || got.IsOpen != k.IsOpen {
		t.Errorf("round trip changed fields: %+v", got)
	}
	if len(got.OperatingHours) != 1 || got.OperatingHours[0].Day != "Senin" {
		t.Errorf("hours = %+v", got.OperatingHours)
	}
	if !got.CreatedAt.Equal(k.CreatedAt) {
		t.Errorf("createdAt = %v", got.CreatedAt)
	}
}
