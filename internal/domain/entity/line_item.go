package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one purchasable entry on a requisition or an order. It is
// owned by exactly one parent document; conversion copies items, never
// moves them.
type LineItem struct {
	ID           string          `json:"id"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	Quantity     int64           `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	DeliveryDate *time.Time      `json:"delivery_date,omitempty"`
	Notes        string          `json:"notes,omitempty"`
}

// Recalculate restores the TotalPrice = Quantity x UnitPrice invariant.
// Must be called after any mutation of Quantity or UnitPrice.
func (li *LineItem) Recalculate() {
	li.TotalPrice = li.UnitPrice.Mul(decimal.NewFromInt(li.Quantity))
}

// Clone returns an independent copy of the line item.
func (li *LineItem) Clone() LineItem {
	out := *li
	if li.DeliveryDate != nil {
		d := *li.DeliveryDate
		out.DeliveryDate = &d
	}
	return out
}

// SumLineItems returns the total amount across the given line items.
func SumLineItems(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for i := range items {
		total = total.Add(items[i].TotalPrice)
	}
	return total
}

// CloneLineItems returns independent copies of all line items, preserving order.
func CloneLineItems(items []LineItem) []LineItem {
	if items == nil {
		return nil
	}
	out := make([]LineItem, len(items))
	for i := range items {
		out[i] = items[i].Clone()
	}
	return out
}
