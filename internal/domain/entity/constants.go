package entity

// Status constants for PurchaseRequisition
const (
	PRStatusDraft           = "DRAFT"
	PRStatusPendingApproval = "PENDING_APPROVAL"
	PRStatusApproved        = "APPROVED"
	PRStatusRejected        = "REJECTED"
	PRStatusConvertedToPO   = "CONVERTED_TO_PO"
)

// Status constants for PurchaseOrder
const (
	POStatusDraft              = "DRAFT"
	POStatusPendingApproval    = "PENDING_APPROVAL"
	POStatusApproved           = "APPROVED"
	POStatusRejected           = "REJECTED"
	POStatusSentToVendor       = "SENT_TO_VENDOR"
	POStatusPartiallyFulfilled = "PARTIALLY_FULFILLED"
	POStatusCompleted          = "COMPLETED"
)

// Decision status constants for ApprovalEntry
const (
	ApprovalPending  = "PENDING"
	ApprovalApproved = "APPROVED"
	ApprovalRejected = "REJECTED"
)

// Fulfillment status constants for a single ReceiptLine
const (
	ReceiptLineComplete = "COMPLETE"
	ReceiptLinePartial  = "PARTIAL"
	ReceiptLineExcess   = "EXCESS"
	ReceiptLineDamaged  = "DAMAGED"
)

// Overall status constants for GoodsReceipt
const (
	ReceiptStatusCompleted = "COMPLETED"
	ReceiptStatusPartial   = "PARTIAL"
)

// Vendor status constants
const (
	VendorStatusActive   = "ACTIVE"
	VendorStatusInactive = "INACTIVE"
)
