package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Intelygenai/paycyclexplorer/internal/domain/entity"
	"github.com/Intelygenai/paycyclexplorer/internal/domain/errs"
	"github.com/Intelygenai/paycyclexplorer/pkg/database"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	logger := zap.NewNop()
	db, err := database.Open(database.Config{
		Path:         filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.NewMigrator(db, logger).RunMigrations("../../../migrations"))
	return db
}

func testRequisition(id string) *entity.PurchaseRequisition {
	now := time.Now().UTC().Truncate(time.Second)
	decided := now.Add(-time.Hour)
	pr := &entity.PurchaseRequisition{
		ID:            id,
		Requester:     entity.Actor{ID: "u-1", Name: "Rita", Email: "rita@example.com"},
		Department:    "Engineering",
		CostCenter:    "CC-100",
		BudgetCode:    "BUD-2026",
		Justification: "Workstation refresh",
		Status:        entity.PRStatusPendingApproval,
		DateCreated:   now,
		DateNeeded:    now.Add(14 * 24 * time.Hour),
		LineItems: []entity.LineItem{
			{ID: "li-1", Description: "Laptop stand", Category: "IT", Quantity: 3, UnitPrice: decimal.RequireFromString("25.50")},
			{ID: "li-2", Description: "USB hub", Category: "IT", Quantity: 5, UnitPrice: decimal.NewFromInt(15), Notes: "black"},
		},
		Approvers: []entity.ApprovalEntry{
			{ID: "ae-1", ApproverID: "u-2", ApproverName: "Ann", ApproverEmail: "ann@example.com",
				Status: entity.ApprovalApproved, Comment: "ok", DecidedAt: &decided},
			{ID: "ae-2", ApproverID: "u-3", ApproverName: "Abe", ApproverEmail: "abe@example.com",
				Status: entity.ApprovalPending},
		},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	pr.Recalculate()
	return pr
}

func TestRequisitionRoundTrip(t *testing.T) {
	db := newTestDB(t)
	logger := zap.NewNop()
	repo := NewRequisitionRepository(db, logger)
	ctx := context.Background()

	pr := testRequisition("PR-1")
	require.NoError(t, repo.Create(ctx, pr))

	got, err := repo.GetByID(ctx, "PR-1")
	require.NoError(t, err)

	assert.Equal(t, pr.CostCenter, got.CostCenter)
	assert.Equal(t, pr.Status, got.Status)
	assert.True(t, got.TotalAmount.Equal(pr.TotalAmount), "want %s, got %s", pr.TotalAmount, got.TotalAmount)

	// Children come back in insertion order with decimals intact.
	require.Len(t, got.LineItems, 2)
	assert.Equal(t, "li-1", got.LineItems[0].ID)
	assert.True(t, got.LineItems[0].UnitPrice.Equal(decimal.RequireFromString("25.50")))
	assert.Equal(t, "black", got.LineItems[1].Notes)

	require.Len(t, got.Approvers, 2)
	assert.Equal(t, entity.ApprovalApproved, got.Approvers[0].Status)
	require.NotNil(t, got.Approvers[0].DecidedAt)
	assert.Nil(t, got.Approvers[1].DecidedAt)

	_, err = repo.GetByID(ctx, "PR-missing")
	assert.True(t, errs.IsNotFound(err), "expected not found error, got %v", err)
}

func TestRequisitionUpdateReplacesChildren(t *testing.T) {
	db := newTestDB(t)
	repo := NewRequisitionRepository(db, zap.NewNop())
	ctx := context.Background()

	pr := testRequisition("PR-1")
	require.NoError(t, repo.Create(ctx, pr))

	pr.Status = entity.PRStatusApproved
	pr.LineItems = pr.LineItems[:1]
	pr.Approvers[1].Status = entity.ApprovalApproved
	pr.Recalculate()
	pr.Version = 2
	require.NoError(t, repo.Update(ctx, pr, 1))

	got, err := repo.GetByID(ctx, "PR-1")
	require.NoError(t, err)
	assert.Equal(t, entity.PRStatusApproved, got.Status)
	assert.Len(t, got.LineItems, 1)
	assert.Equal(t, entity.ApprovalApproved, got.Approvers[1].Status)
	assert.Equal(t, int64(2), got.Version)

	// A stale writer loses.
	err = repo.Update(ctx, pr, 1)
	assert.True(t, errs.IsConflict(err), "expected conflict error, got %v", err)
}

func TestOrderRoundTripJoinsVendor(t *testing.T) {
	db := newTestDB(t)
	logger := zap.NewNop()
	vendorRepo := NewVendorRepository(db, logger)
	orderRepo := NewOrderRepository(db, logger)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	vendor := &entity.Vendor{
		ID:         "v-1",
		Name:       "Acme Supplies",
		Email:      "sales@acme.example.com",
		Categories: []string{"IT", "Furniture"},
		Status:     entity.VendorStatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, vendorRepo.Create(ctx, vendor))

	po := &entity.PurchaseOrder{
		ID:           "PO-1",
		PRID:         "PR-1",
		PONumber:     "PO-00000001",
		Vendor:       *vendor,
		Status:       entity.POStatusDraft,
		DateCreated:  now,
		RequiredDate: now.Add(21 * 24 * time.Hour),
		LineItems: []entity.LineItem{
			{ID: "li-1", Description: "Office chair", Category: "Furniture", Quantity: 10, UnitPrice: decimal.NewFromInt(120)},
		},
		ShippingAddress: "1 Warehouse Way",
		BillingAddress:  "100 Main St",
		Currency:        "USD",
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	po.Recalculate()
	require.NoError(t, orderRepo.Create(ctx, po))

	got, err := orderRepo.GetByID(ctx, "PO-1")
	require.NoError(t, err)

	assert.Equal(t, "PR-1", got.PRID)
	assert.Equal(t, "Acme Supplies", got.Vendor.Name)
	assert.Equal(t, []string{"IT", "Furniture"}, got.Vendor.Categories)
	assert.True(t, got.TotalAmount.Equal(decimal.NewFromInt(1200)))
	require.Len(t, got.LineItems, 1)
}

func TestReceiptRoundTrip(t *testing.T) {
	db := newTestDB(t)
	logger := zap.NewNop()
	repo := NewReceiptRepository(db, logger)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	gr := &entity.GoodsReceipt{
		ID:            "GR-1",
		POID:          "PO-1",
		PONumber:      "PO-00000001",
		ReceiptNumber: "GR-00000001",
		ReceivedBy:    entity.Actor{ID: "u-4", Name: "Rosa", Email: "rosa@example.com"},
		DateReceived:  now,
		Lines: []entity.ReceiptLine{
			{ID: "rl-1", LineItemID: "li-1", Description: "Office chair",
				QuantityOrdered: 10, QuantityReceived: 6, Status: entity.ReceiptLinePartial},
		},
		Carrier: "DHL",
		Status:  entity.ReceiptStatusPartial,
	}
	require.NoError(t, repo.Create(ctx, gr))

	got, err := repo.GetByID(ctx, "GR-1")
	require.NoError(t, err)
	assert.Equal(t, "PO-1", got.POID)
	assert.Equal(t, "Rosa", got.ReceivedBy.Name)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, int64(6), got.Lines[0].QuantityReceived)
	assert.Equal(t, entity.ReceiptLinePartial, got.Lines[0].Status)

	listed, err := repo.ListByOrderID(ctx, "PO-1")
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	none, err := repo.ListByOrderID(ctx, "PO-other")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestApproverBindings(t *testing.T) {
	db := newTestDB(t)
	repo := NewApproverRepository(db, zap.NewNop())
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	b := &entity.CostCenterApprover{
		ID:            "b-1",
		UserID:        "u-2",
		UserName:      "Ann",
		UserEmail:     "ann@example.com",
		CostCenter:    "CC-100",
		ApprovalLimit: decimal.RequireFromString("5000.00"),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, repo.Create(ctx, b))

	found, err := repo.FindBinding(ctx, "u-2", "CC-100")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, found.ApprovalLimit.Equal(decimal.NewFromInt(5000)))

	missing, err := repo.FindBinding(ctx, "u-2", "CC-999")
	require.NoError(t, err)
	assert.Nil(t, missing)

	byCC, err := repo.ListByCostCenter(ctx, "CC-100")
	require.NoError(t, err)
	assert.Len(t, byCC, 1)

	require.NoError(t, repo.Delete(ctx, "b-1"))
	err = repo.Delete(ctx, "b-1")
	assert.True(t, errs.IsNotFound(err), "expected not found error, got %v", err)
}

func TestWithTransactionRollsBack(t *testing.T) {
	db := newTestDB(t)
	logger := zap.NewNop()
	txManager := NewDB(db, logger)
	repo := NewRequisitionRepository(db, logger)
	ctx := context.Background()

	boom := errors.New("boom")
	err := txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := repo.Create(txCtx, testRequisition("PR-1")); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = repo.GetByID(ctx, "PR-1")
	assert.True(t, errs.IsNotFound(err), "rolled back requisition must not exist, got %v", err)
}

func TestWithTransactionCommits(t *testing.T) {
	db := newTestDB(t)
	logger := zap.NewNop()
	txManager := NewDB(db, logger)
	repo := NewRequisitionRepository(db, logger)
	ctx := context.Background()

	err := txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return repo.Create(txCtx, testRequisition("PR-1"))
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, "PR-1")
	require.NoError(t, err)
	assert.Equal(t, "PR-1", got.ID)
}
