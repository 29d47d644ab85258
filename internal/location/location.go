// Package location turns the meja QR code parameter into a structured
// delivery location.
package location

import (
	"regexp"
	"strings"
	"time"

	"github.com/rahmatdika/ekantin/internal/model"
)

// QR codes on tables encode "Gedung A - Meja 1" style labels. Labels
// without the dash separator still split when a table number follows the
// building part; anything else keeps the whole string as the table under
// a generic name.
var bareMejaPattern = regexp.MustCompile(`(?i)(.+?)\s+(Meja\s*\d+)`)

const fallbackName = "Lokasi"

// Parse builds a delivery location from the raw meja query parameter.
// An empty parameter means take away and parses to nil.
func Parse(meja string, now time.Time) *model.DeliveryLocation {
	meja = strings.TrimSpace(meja)
	if meja == "" {
		return nil
	}

	name := fallbackName
	table := meja

	if before, after, ok := strings.Cut(meja, " - "); ok && strings.TrimSpace(after) != "" && strings.TrimSpace(before) != "" {
		name = strings.TrimSpace(before)
		table = strings.TrimSpace(after)
	} else if m := bareMejaPattern.FindStringSubmatch(meja); m != nil {
		name = strings.TrimSpace(m[1])
		table = m[2]
	}

	return &model.DeliveryLocation{
		Name:        name,
		TableNumber: normalizeTable(table),
		ScannedAt:   now,
	}
}

func normalizeTable(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
