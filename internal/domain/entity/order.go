package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrder is a binding order sent to a vendor. It is created either
// directly or by converting an approved requisition, in which case PRID
// carries the source requisition id and the line items are independent
// copies of the requisition's.
type PurchaseOrder struct {
	ID              string          `json:"id"`
	PRID            string          `json:"pr_id,omitempty"`
	PONumber        string          `json:"po_number"`
	Vendor          Vendor          `json:"vendor"`
	Status          string          `json:"status"`
	DateCreated     time.Time       `json:"date_created"`
	RequiredDate    time.Time       `json:"required_date"`
	LineItems       []LineItem      `json:"line_items"`
	Approvers       []ApprovalEntry `json:"approvers"`
	ShippingAddress string          `json:"shipping_address"`
	BillingAddress  string          `json:"billing_address"`
	Currency        string          `json:"currency"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Version         int64           `json:"version"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Recalculate restores the per-line and document total invariants.
func (po *PurchaseOrder) Recalculate() {
	for i := range po.LineItems {
		po.LineItems[i].Recalculate()
	}
	po.TotalAmount = SumLineItems(po.LineItems)
}

// Clone returns a deep copy of the order.
func (po *PurchaseOrder) Clone() *PurchaseOrder {
	out := *po
	out.Vendor = *po.Vendor.Clone()
	out.LineItems = CloneLineItems(po.LineItems)
	out.Approvers = CloneApprovalEntries(po.Approvers)
	return &out
}
