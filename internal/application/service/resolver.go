package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Intelygenai/paycyclexplorer/internal/application/port"
	"github.com/Intelygenai/paycyclexplorer/internal/domain/entity"
	"github.com/Intelygenai/paycyclexplorer/internal/domain/errs"
)

// ResolverConfig configures approval resolution.
type ResolverConfig struct {
	// DefaultApprover is assigned when a cost center has no bound
	// approvers. Comes from configuration, never hardcoded.
	DefaultApprover entity.Actor

	// EnforceLimits gates resolution and decisions on approval limits.
	// When false (the historical behavior) limits are advisory only.
	EnforceLimits bool
}

// ApprovalResolver determines the set of required approvers for a
// requisition from its cost center and total amount. Pure lookup; no side
// effects.
type ApprovalResolver struct {
	approvers port.ApproverRepository
	cfg       ResolverConfig
	logger    *zap.Logger
}

// NewApprovalResolver creates a new ApprovalResolver.
func NewApprovalResolver(approvers port.ApproverRepository, cfg ResolverConfig, logger *zap.Logger) *ApprovalResolver {
	return &ApprovalResolver{approvers: approvers, cfg: cfg, logger: logger}
}

// Resolve returns pending approval entries for every approver bound to
// the cost center, or a single entry for the configured default approver
// when the cost center has none. With EnforceLimits set, resolution fails
// unless at least one bound approver's limit covers the amount.
func (r *ApprovalResolver) Resolve(ctx context.Context, costCenter string, totalAmount decimal.Decimal) ([]entity.ApprovalEntry, error) {
	bindings, err := r.approvers.ListByCostCenter(ctx, costCenter)
	if err != nil {
		return nil, err
	}

	if len(bindings) == 0 {
		r.logger.Info("No approvers bound to cost center, using default approver",
			zap.String("cost_center", costCenter))
		return []entity.ApprovalEntry{pendingEntry(r.cfg.DefaultApprover)}, nil
	}

	if r.cfg.EnforceLimits {
		covered := false
		for _, b := range bindings {
			if b.Covers(totalAmount) {
				covered = true
				break
			}
		}
		if !covered {
			return nil, errs.NewValidation("total_amount",
				"no approver on cost center %s may authorize %s", costCenter, totalAmount.StringFixed(2))
		}
	}

	entries := make([]entity.ApprovalEntry, len(bindings))
	for i, b := range bindings {
		entries[i] = pendingEntry(b.Actor())
	}
	return entries, nil
}

func pendingEntry(actor entity.Actor) entity.ApprovalEntry {
	return entity.ApprovalEntry{
		ID:            uuid.NewString(),
		ApproverID:    actor.ID,
		ApproverName:  actor.Name,
		ApproverEmail: actor.Email,
		Status:        entity.ApprovalPending,
	}
}

// decisionTime returns the timestamp recorded on approval entries.
func decisionTime() *time.Time {
	t := time.Now()
	return &t
}
