package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Intelygenai/paycyclexplorer/internal/domain/entity"
	"github.com/Intelygenai/paycyclexplorer/internal/domain/errs"
)

func sampleRequisition(id string) *entity.PurchaseRequisition {
	now := time.Now()
	pr := &entity.PurchaseRequisition{
		ID:            id,
		Requester:     entity.Actor{ID: "u-1", Name: "Rita", Email: "rita@example.com"},
		Department:    "Engineering",
		CostCenter:    "CC-100",
		BudgetCode:    "BUD-2026",
		Justification: "Workstation refresh",
		Status:        entity.PRStatusDraft,
		DateCreated:   now,
		DateNeeded:    now.Add(14 * 24 * time.Hour),
		LineItems: []entity.LineItem{
			{ID: "li-1", Description: "Laptop stand", Quantity: 3, UnitPrice: decimal.NewFromInt(25)},
		},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	pr.Recalculate()
	return pr
}

func TestRequisitionRoundTrip(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	repo := store.Requisitions()

	require.NoError(t, repo.Create(ctx, sampleRequisition("PR-1")))

	got, err := repo.GetByID(ctx, "PR-1")
	require.NoError(t, err)
	assert.Equal(t, "CC-100", got.CostCenter)
	assert.True(t, got.TotalAmount.Equal(decimal.NewFromInt(75)))

	_, err = repo.GetByID(ctx, "PR-missing")
	assert.True(t, errs.IsNotFound(err), "expected not found error, got %v", err)
}

func TestReadsAreDeepCopies(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	repo := store.Requisitions()

	original := sampleRequisition("PR-1")
	require.NoError(t, repo.Create(ctx, original))

	// Mutating the caller's copy must not leak into the store.
	original.CostCenter = "CC-HACKED"
	original.LineItems[0].Description = "tampered"

	got, err := repo.GetByID(ctx, "PR-1")
	require.NoError(t, err)
	assert.Equal(t, "CC-100", got.CostCenter)
	assert.Equal(t, "Laptop stand", got.LineItems[0].Description)

	// And neither must mutating a fetched copy.
	got.LineItems[0].Quantity = 999
	again, err := repo.GetByID(ctx, "PR-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), again.LineItems[0].Quantity)
}

func TestUpdateVersionConflict(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	repo := store.Requisitions()

	pr := sampleRequisition("PR-1")
	require.NoError(t, repo.Create(ctx, pr))

	pr.Status = entity.PRStatusPendingApproval
	pr.Version = 2
	require.NoError(t, repo.Update(ctx, pr, 1))

	// A writer still holding version 1 must lose.
	stale := sampleRequisition("PR-1")
	stale.Version = 2
	err := repo.Update(ctx, stale, 1)
	assert.True(t, errs.IsConflict(err), "expected conflict error, got %v", err)

	err = repo.Update(ctx, sampleRequisition("PR-missing"), 1)
	assert.True(t, errs.IsNotFound(err), "expected not found error, got %v", err)
}

func TestReceiptsListedInInsertionOrder(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	repo := store.Receipts()

	for _, id := range []string{"GR-1", "GR-2", "GR-3"} {
		require.NoError(t, repo.Create(ctx, &entity.GoodsReceipt{
			ID:   id,
			POID: "PO-1",
			Lines: []entity.ReceiptLine{
				{ID: "rl-" + id, LineItemID: "li-1", QuantityOrdered: 10, QuantityReceived: 2, Status: entity.ReceiptLinePartial},
			},
			Status: entity.ReceiptStatusPartial,
		}))
	}
	require.NoError(t, repo.Create(ctx, &entity.GoodsReceipt{ID: "GR-other", POID: "PO-2", Status: entity.ReceiptStatusPartial}))

	got, err := repo.ListByOrderID(ctx, "PO-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "GR-1", got[0].ID)
	assert.Equal(t, "GR-3", got[2].ID)
}

func TestVendorListsSortedAndFiltered(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	repo := store.Vendors()

	require.NoError(t, repo.Create(ctx, &entity.Vendor{ID: "v-2", Name: "Zenith", Status: entity.VendorStatusInactive}))
	require.NoError(t, repo.Create(ctx, &entity.Vendor{ID: "v-1", Name: "Acme", Status: entity.VendorStatusActive}))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Acme", all[0].Name)

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "v-1", active[0].ID)

	err = repo.Update(ctx, &entity.Vendor{ID: "v-missing", Name: "Ghost"})
	assert.True(t, errs.IsNotFound(err), "expected not found error, got %v", err)
}

func TestFindBinding(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	repo := store.Approvers()

	require.NoError(t, repo.Create(ctx, &entity.CostCenterApprover{
		ID: "b-1", UserID: "u-1", CostCenter: "CC-100", ApprovalLimit: decimal.NewFromInt(500),
	}))

	found, err := repo.FindBinding(ctx, "u-1", "CC-100")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "b-1", found.ID)

	// Absence is not an error.
	missing, err := repo.FindBinding(ctx, "u-1", "CC-999")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.Delete(ctx, "b-1"))
	err = repo.Delete(ctx, "b-1")
	assert.True(t, errs.IsNotFound(err), "expected not found error, got %v", err)
}
