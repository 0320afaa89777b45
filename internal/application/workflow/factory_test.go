package workflow

import (
	"context"
	"errors"
	"testing"

	domainwf "github.com/Intelygenai/paycyclexplorer/internal/domain/workflow"
)

func TestRequisitionMachine_Adjacency(t *testing.T) {
	tests := []struct {
		name      string
		from      domainwf.State
		trigger   domainwf.Trigger
		ctx       context.Context
		wantState domainwf.State
		wantErr   error
	}{
		{
			name:      "submit from draft",
			from:      domainwf.StateDraft,
			trigger:   domainwf.TriggerSubmit,
			wantState: domainwf.StatePendingApproval,
		},
		{
			name:      "reject while pending",
			from:      domainwf.StatePendingApproval,
			trigger:   domainwf.TriggerReject,
			wantState: domainwf.StateRejected,
		},
		{
			name:      "approve with remaining approvers stays pending",
			from:      domainwf.StatePendingApproval,
			trigger:   domainwf.TriggerApprove,
			ctx:       WithApprovalComplete(context.Background(), false),
			wantState: domainwf.StatePendingApproval,
		},
		{
			name:      "final approval moves to approved",
			from:      domainwf.StatePendingApproval,
			trigger:   domainwf.TriggerApprove,
			ctx:       WithApprovalComplete(context.Background(), true),
			wantState: domainwf.StateApproved,
		},
		{
			name:      "convert approved requisition",
			from:      domainwf.StateApproved,
			trigger:   domainwf.TriggerConvert,
			wantState: domainwf.StateConvertedToPO,
		},
		{
			name:    "convert from draft is illegal",
			from:    domainwf.StateDraft,
			trigger: domainwf.TriggerConvert,
			wantErr: domainwf.ErrInvalidTransition,
		},
		{
			name:    "submit from pending is illegal",
			from:    domainwf.StatePendingApproval,
			trigger: domainwf.TriggerSubmit,
			wantErr: domainwf.ErrInvalidTransition,
		},
		{
			name:    "rejected is terminal",
			from:    domainwf.StateRejected,
			trigger: domainwf.TriggerApprove,
			wantErr: domainwf.ErrInvalidTransition,
		},
		{
			name:    "converted is terminal",
			from:    domainwf.StateConvertedToPO,
			trigger: domainwf.TriggerConvert,
			wantErr: domainwf.ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			machine := BuildRequisitionMachine(tt.from)
			ctx := tt.ctx
			if ctx == nil {
				ctx = context.Background()
			}

			err := machine.Fire(ctx, tt.trigger)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Fire() error = %v, want %v", err, tt.wantErr)
				}
				if machine.State() != tt.from {
					t.Errorf("state changed on failed Fire(): %v", machine.State())
				}
				return
			}

			if err != nil {
				t.Fatalf("Fire() failed: %v", err)
			}
			if machine.State() != tt.wantState {
				t.Errorf("state = %v, want %v", machine.State(), tt.wantState)
			}
		})
	}
}

func TestOrderMachine_Adjacency(t *testing.T) {
	tests := []struct {
		name      string
		from      domainwf.State
		trigger   domainwf.Trigger
		ctx       context.Context
		wantState domainwf.State
		wantErr   error
	}{
		{
			name:      "submit from draft",
			from:      domainwf.StateDraft,
			trigger:   domainwf.TriggerSubmit,
			wantState: domainwf.StatePendingApproval,
		},
		{
			name:      "final approval",
			from:      domainwf.StatePendingApproval,
			trigger:   domainwf.TriggerApprove,
			ctx:       WithApprovalComplete(context.Background(), true),
			wantState: domainwf.StateApproved,
		},
		{
			name:      "send approved order to vendor",
			from:      domainwf.StateApproved,
			trigger:   domainwf.TriggerSendToVendor,
			wantState: domainwf.StateSentToVendor,
		},
		{
			name:    "send draft order to vendor is illegal",
			from:    domainwf.StateDraft,
			trigger: domainwf.TriggerSendToVendor,
			wantErr: domainwf.ErrInvalidTransition,
		},
		{
			name:      "partial receipt",
			from:      domainwf.StateSentToVendor,
			trigger:   domainwf.TriggerRecordReceipt,
			ctx:       WithFulfillmentComplete(context.Background(), false),
			wantState: domainwf.StatePartiallyFulfilled,
		},
		{
			name:      "full receipt in one delivery",
			from:      domainwf.StateSentToVendor,
			trigger:   domainwf.TriggerRecordReceipt,
			ctx:       WithFulfillmentComplete(context.Background(), true),
			wantState: domainwf.StateCompleted,
		},
		{
			name:      "remaining receipt completes order",
			from:      domainwf.StatePartiallyFulfilled,
			trigger:   domainwf.TriggerRecordReceipt,
			ctx:       WithFulfillmentComplete(context.Background(), true),
			wantState: domainwf.StateCompleted,
		},
		{
			name:      "another partial receipt stays partial",
			from:      domainwf.StatePartiallyFulfilled,
			trigger:   domainwf.TriggerRecordReceipt,
			ctx:       WithFulfillmentComplete(context.Background(), false),
			wantState: domainwf.StatePartiallyFulfilled,
		},
		{
			name:    "receipt against draft order is illegal",
			from:    domainwf.StateDraft,
			trigger: domainwf.TriggerRecordReceipt,
			wantErr: domainwf.ErrInvalidTransition,
		},
		{
			name:    "completed is terminal",
			from:    domainwf.StateCompleted,
			trigger: domainwf.TriggerRecordReceipt,
			wantErr: domainwf.ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			machine := BuildOrderMachine(tt.from)
			ctx := tt.ctx
			if ctx == nil {
				ctx = context.Background()
			}

			err := machine.Fire(ctx, tt.trigger)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Fire() error = %v, want %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("Fire() failed: %v", err)
			}
			if machine.State() != tt.wantState {
				t.Errorf("state = %v, want %v", machine.State(), tt.wantState)
			}
		})
	}
}
