package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Intelygenai/paycyclexplorer/internal/domain/entity"
	"github.com/Intelygenai/paycyclexplorer/internal/domain/errs"
	"github.com/Intelygenai/paycyclexplorer/internal/repository/memory"
)

func newTestResolver(t *testing.T, enforceLimits bool) (*ApprovalResolver, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	resolver := NewApprovalResolver(store.Approvers(), ResolverConfig{
		DefaultApprover: entity.Actor{ID: "u-default", Name: "Default Approver", Email: "default@example.com"},
		EnforceLimits:   enforceLimits,
	}, zap.NewNop())
	return resolver, store
}

func bindApprover(t *testing.T, store *memory.Store, userID, costCenter string, limit int64) {
	t.Helper()
	now := time.Now()
	require.NoError(t, store.CreateBinding(context.Background(), &entity.CostCenterApprover{
		ID:            "b-" + userID + "-" + costCenter,
		UserID:        userID,
		UserName:      userID,
		UserEmail:     userID + "@example.com",
		CostCenter:    costCenter,
		ApprovalLimit: decimal.NewFromInt(limit),
		CreatedAt:     now,
		UpdatedAt:     now,
	}))
}

func TestResolveBoundApprovers(t *testing.T) {
	resolver, store := newTestResolver(t, false)
	bindApprover(t, store, "u-one", "CC-1", 500)
	bindApprover(t, store, "u-two", "CC-1", 2000)
	bindApprover(t, store, "u-other", "CC-2", 9000)

	entries, err := resolver.Resolve(context.Background(), "CC-1", decimal.NewFromInt(300))
	require.NoError(t, err)

	require.Len(t, entries, 2)
	ids := []string{entries[0].ApproverID, entries[1].ApproverID}
	assert.ElementsMatch(t, []string{"u-one", "u-two"}, ids)
	for _, e := range entries {
		assert.Equal(t, entity.ApprovalPending, e.Status)
		assert.NotEmpty(t, e.ID)
		assert.Nil(t, e.DecidedAt)
	}
}

func TestResolveDefaultApprover(t *testing.T) {
	resolver, store := newTestResolver(t, false)
	bindApprover(t, store, "u-other", "CC-2", 9000)

	entries, err := resolver.Resolve(context.Background(), "CC-1", decimal.NewFromInt(300))
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.Equal(t, "u-default", entries[0].ApproverID)
	assert.Equal(t, "default@example.com", entries[0].ApproverEmail)
}

func TestResolveAdvisoryLimits(t *testing.T) {
	// Limits are advisory unless enforcement is switched on.
	resolver, store := newTestResolver(t, false)
	bindApprover(t, store, "u-one", "CC-1", 100)

	entries, err := resolver.Resolve(context.Background(), "CC-1", decimal.NewFromInt(5000))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestResolveEnforcedLimits(t *testing.T) {
	resolver, store := newTestResolver(t, true)
	bindApprover(t, store, "u-one", "CC-1", 100)
	bindApprover(t, store, "u-two", "CC-1", 400)

	// One binding covers 300, so resolution succeeds and both are assigned.
	entries, err := resolver.Resolve(context.Background(), "CC-1", decimal.NewFromInt(300))
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	// Nobody covers 5000.
	_, err = resolver.Resolve(context.Background(), "CC-1", decimal.NewFromInt(5000))
	assert.True(t, errs.IsValidation(err), "expected validation error, got %v", err)
}

func TestResolveEnforcedLimitsDefaultApprover(t *testing.T) {
	// The default approver fallback carries no limit to enforce.
	resolver, _ := newTestResolver(t, true)

	entries, err := resolver.Resolve(context.Background(), "CC-1", decimal.NewFromInt(1000000))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "u-default", entries[0].ApproverID)
}
