package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CostCenterApprover binds a user to a cost center with a dollar approval
// limit. The approval resolver selects bound approvers when a requisition
// for that cost center is submitted; whether the limit gates decisions or
// is merely advisory is a configuration choice.
type CostCenterApprover struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	UserName      string          `json:"user_name"`
	UserEmail     string          `json:"user_email"`
	CostCenter    string          `json:"cost_center"`
	ApprovalLimit decimal.Decimal `json:"approval_limit"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Covers reports whether the binding's limit covers the given amount.
func (b *CostCenterApprover) Covers(amount decimal.Decimal) bool {
	return b.ApprovalLimit.GreaterThanOrEqual(amount)
}

// Actor returns the bound user as a document actor.
func (b *CostCenterApprover) Actor() Actor {
	return Actor{ID: b.UserID, Name: b.UserName, Email: b.UserEmail}
}
