// Package workflow configures the requisition and order state machines on
// top of the generic machine in internal/domain/workflow.
package workflow

import (
	"context"

	domainwf "github.com/Intelygenai/paycyclexplorer/internal/domain/workflow"
)

type contextKey string

const (
	approvalCompleteKey    contextKey = "approval_complete"
	fulfillmentCompleteKey contextKey = "fulfillment_complete"
)

// WithApprovalComplete marks the context with whether every approval
// entry on the document now carries an APPROVED decision. Read by the
// APPROVE guards.
func WithApprovalComplete(ctx context.Context, complete bool) context.Context {
	return context.WithValue(ctx, approvalCompleteKey, complete)
}

// WithFulfillmentComplete marks the context with whether every ordered
// line has been fully received across all goods receipts. Read by the
// RECORD_RECEIPT guards.
func WithFulfillmentComplete(ctx context.Context, complete bool) context.Context {
	return context.WithValue(ctx, fulfillmentCompleteKey, complete)
}

func approvalComplete(ctx context.Context) bool {
	v, _ := ctx.Value(approvalCompleteKey).(bool)
	return v
}

func fulfillmentComplete(ctx context.Context) bool {
	v, _ := ctx.Value(fulfillmentCompleteKey).(bool)
	return v
}

// BuildRequisitionMachine returns the purchase requisition state machine:
// DRAFT -> PENDING_APPROVAL -> {APPROVED | REJECTED}; APPROVED -> CONVERTED_TO_PO.
// An APPROVE that does not complete the approval set keeps the document
// in PENDING_APPROVAL.
func BuildRequisitionMachine(initialState domainwf.State) domainwf.StateMachine {
	builder := domainwf.NewBuilder()

	builder.Configure(domainwf.StateDraft).
		Permit(domainwf.TriggerSubmit, domainwf.StatePendingApproval)

	builder.Configure(domainwf.StatePendingApproval).
		Permit(domainwf.TriggerReject, domainwf.StateRejected).
		PermitIf(domainwf.TriggerApprove, domainwf.StateApproved, approvalComplete).
		Permit(domainwf.TriggerApprove, domainwf.StatePendingApproval)

	builder.Configure(domainwf.StateApproved).
		Permit(domainwf.TriggerConvert, domainwf.StateConvertedToPO)

	// REJECTED and CONVERTED_TO_PO are terminal.

	return builder.Build(initialState)
}

// BuildOrderMachine returns the purchase order state machine:
// DRAFT -> PENDING_APPROVAL -> {APPROVED | REJECTED};
// APPROVED -> SENT_TO_VENDOR -> {PARTIALLY_FULFILLED | COMPLETED},
// with PARTIALLY_FULFILLED accepting further receipts until COMPLETED.
func BuildOrderMachine(initialState domainwf.State) domainwf.StateMachine {
	builder := domainwf.NewBuilder()

	builder.Configure(domainwf.StateDraft).
		Permit(domainwf.TriggerSubmit, domainwf.StatePendingApproval)

	builder.Configure(domainwf.StatePendingApproval).
		Permit(domainwf.TriggerReject, domainwf.StateRejected).
		PermitIf(domainwf.TriggerApprove, domainwf.StateApproved, approvalComplete).
		Permit(domainwf.TriggerApprove, domainwf.StatePendingApproval)

	builder.Configure(domainwf.StateApproved).
		Permit(domainwf.TriggerSendToVendor, domainwf.StateSentToVendor)

	builder.Configure(domainwf.StateSentToVendor).
		PermitIf(domainwf.TriggerRecordReceipt, domainwf.StateCompleted, fulfillmentComplete).
		Permit(domainwf.TriggerRecordReceipt, domainwf.StatePartiallyFulfilled)

	builder.Configure(domainwf.StatePartiallyFulfilled).
		PermitIf(domainwf.TriggerRecordReceipt, domainwf.StateCompleted, fulfillmentComplete).
		Permit(domainwf.TriggerRecordReceipt, domainwf.StatePartiallyFulfilled)

	// REJECTED and COMPLETED are terminal.

	return builder.Build(initialState)
}
