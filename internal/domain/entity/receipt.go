package entity

import "time"

// ReceiptLine records fulfillment of a single ordered line item within one
// goods receipt. QuantityReceived is the quantity delivered in this
// receipt alone; status reflects the cumulative position of the line
// across all receipts at the time of recording.
type ReceiptLine struct {
	ID               string `json:"id"`
	LineItemID       string `json:"line_item_id"`
	Description      string `json:"description"`
	QuantityOrdered  int64  `json:"quantity_ordered"`
	QuantityReceived int64  `json:"quantity_received"`
	Status           string `json:"status"`
	Notes            string `json:"notes,omitempty"`
}

// GoodsReceipt records one physical delivery against a purchase order.
type GoodsReceipt struct {
	ID            string        `json:"id"`
	POID          string        `json:"po_id"`
	PONumber      string        `json:"po_number"`
	ReceiptNumber string        `json:"receipt_number"`
	ReceivedBy    Actor         `json:"received_by"`
	DateReceived  time.Time     `json:"date_received"`
	Lines         []ReceiptLine `json:"lines"`
	DeliveryNote  string        `json:"delivery_note,omitempty"`
	Carrier       string        `json:"carrier,omitempty"`
	Status        string        `json:"status"`
}

// Clone returns a deep copy of the receipt.
func (gr *GoodsReceipt) Clone() *GoodsReceipt {
	out := *gr
	if gr.Lines != nil {
		out.Lines = make([]ReceiptLine, len(gr.Lines))
		copy(out.Lines, gr.Lines)
	}
	return &out
}
