package port

import "context"

// Notification kinds dispatched by the workflow engine.
const (
	NotifyApprovalRequested    = "APPROVAL_REQUESTED"
	NotifyRequisitionApproved  = "REQUISITION_APPROVED"
	NotifyRequisitionRejected  = "REQUISITION_REJECTED"
	NotifyOrderApproved        = "ORDER_APPROVED"
	NotifyOrderRejected        = "ORDER_REJECTED"
	NotifyOrderSentToVendor    = "ORDER_SENT_TO_VENDOR"
	NotifyOrderReceiptRecorded = "ORDER_RECEIPT_RECORDED"
)

// Notification is one human-readable event dispatched to a recipient.
type Notification struct {
	Kind           string
	RecipientName  string
	RecipientEmail string
	Subject        string
	Body           string
	Attachments    []string
}

// NotificationSink dispatches notifications fire-and-forget. The workflow
// engine never lets a sink failure roll back or block a state transition;
// errors are logged and swallowed at the call site.
type NotificationSink interface {
	Notify(ctx context.Context, n Notification) error
}
