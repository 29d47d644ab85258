package order

import (
	"encoding/json"
	"time"

	"github.com/rahmatdika/ekantin/internal/model"
	"github.com/rahmatdika/ekantin/internal/sheet"
)

// The remote sheet only holds flat cells, so the item list and delivery
// location travel as JSON text inside a single cell each. Decoding degrades
// field by field: one corrupt cell must never hide the rest of the record.

// EncodeRow flattens a transaction for the sheet. The pending_sync flag is
// local bookkeeping and never leaves the cache.
func EncodeRow(t model.Transaction) sheet.Row {
	row := sheet.Row{
		"id":           t.ID,
		"code":         t.Code,
		"kantinId":     t.KantinID,
		"kantinName":   t.KantinName,
		"customerName": t.CustomerName,
		"items":        encodeItems(t.Items),
		"total":        t.Total,
		"paymentProof": t.PaymentProof,
		"status":       t.Status,
		"createdAt":    t.CreatedAt.Format(time.RFC3339),
	}
	if t.DeliveryLocation != nil {
		if data, err := json.Marshal(t.DeliveryLocation); err == nil {
			row["deliveryLocation"] = string(data)
		}
	}
	return row
}

func encodeItems(items []model.CartItem) string {
	if items == nil {
		items = []model.CartItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// DecodeRow rebuilds a transaction from a sheet row.
func DecodeRow(row sheet.Row) model.Transaction {
	return model.Transaction{
		ID:               row.String("id"),
		Code:             row.String("code"),
		KantinID:         row.String("kantinId"),
		KantinName:       row.String("kantinName"),
		CustomerName:     row.String("customerName"),
		Items:            DecodeItems(row.String("items")),
		Total:            row.Int64("total"),
		PaymentProof:     row.String("paymentProof"),
		DeliveryLocation: DecodeLocation(row.String("deliveryLocation")),
		Status:           row.String("status"),
		CreatedAt:        row.Time("createdAt"),
	}
}

// DecodeItems parses the encoded item list. Anything that is not a JSON
// array decodes to an empty list.
func DecodeItems(s string) []model.CartItem { return model.DecodeItems(s) }

// DecodeLocation parses the encoded delivery location. Anything that is not
// a JSON object decodes to absent, which means take away.
func DecodeLocation(s string) *model.DeliveryLocation { return model.DecodeLocation(s) }
