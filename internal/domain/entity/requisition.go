package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseRequisition is a request to buy, subject to approval before it
// can become a binding purchase order. Status follows the PR state
// machine; Version increases by exactly one on every persisted mutation.
type PurchaseRequisition struct {
	ID            string          `json:"id"`
	Requester     Actor           `json:"requester"`
	Department    string          `json:"department"`
	CostCenter    string          `json:"cost_center"`
	BudgetCode    string          `json:"budget_code"`
	Justification string          `json:"justification"`
	Status        string          `json:"status"`
	DateCreated   time.Time       `json:"date_created"`
	DateNeeded    time.Time       `json:"date_needed"`
	LineItems     []LineItem      `json:"line_items"`
	Approvers     []ApprovalEntry `json:"approvers"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Version       int64           `json:"version"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Recalculate restores the per-line and document total invariants.
func (pr *PurchaseRequisition) Recalculate() {
	for i := range pr.LineItems {
		pr.LineItems[i].Recalculate()
	}
	pr.TotalAmount = SumLineItems(pr.LineItems)
}

// Clone returns a deep copy of the requisition.
func (pr *PurchaseRequisition) Clone() *PurchaseRequisition {
	out := *pr
	out.LineItems = CloneLineItems(pr.LineItems)
	out.Approvers = CloneApprovalEntries(pr.Approvers)
	return &out
}
