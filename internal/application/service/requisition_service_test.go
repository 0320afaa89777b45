package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Intelygenai/paycyclexplorer/internal/application/port"
	"github.com/Intelygenai/paycyclexplorer/internal/domain/entity"
	"github.com/Intelygenai/paycyclexplorer/internal/domain/errs"
	"github.com/Intelygenai/paycyclexplorer/internal/identity"
	"github.com/Intelygenai/paycyclexplorer/internal/repository/memory"
)

// recordingSink captures dispatched notifications for assertions.
type recordingSink struct {
	mu    sync.Mutex
	notes []port.Notification
}

func (s *recordingSink) Notify(ctx context.Context, n port.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = append(s.notes, n)
	return nil
}

func (s *recordingSink) byKind(kind string) []port.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []port.Notification
	for _, n := range s.notes {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

// stubDocBuilder stands in for the excel builder.
type stubDocBuilder struct{}

func (stubDocBuilder) BuildOrderDocument(ctx context.Context, po *entity.PurchaseOrder) (string, error) {
	return "generated_orders/" + po.PONumber + ".xlsx", nil
}

var testUsers = []entity.User{
	{ID: "u-requester", Name: "Rita Requester", Email: "rita@example.com",
		Role: entity.RoleRequester, Permissions: []string{entity.PermissionCreatePR}},
	{ID: "u-approver-1", Name: "Ann Approver", Email: "ann@example.com",
		Role: entity.RoleApprover, Permissions: []string{entity.PermissionApprovePR, entity.PermissionApprovePO}},
	{ID: "u-approver-2", Name: "Abe Approver", Email: "abe@example.com",
		Role: entity.RoleApprover, Permissions: []string{entity.PermissionApprovePR, entity.PermissionApprovePO}},
	{ID: "u-officer", Name: "Omar Officer", Email: "omar@example.com",
		Role:        entity.RoleProcurementOfficer,
		Permissions: []string{entity.PermissionCreatePO, entity.PermissionApprovePO, entity.PermissionManageVendors, entity.PermissionManageUsers}},
	{ID: "u-receiver", Name: "Rosa Receiver", Email: "rosa@example.com",
		Role: entity.RoleWarehouseOperator, Permissions: []string{entity.PermissionReceiveGoods}},
	{ID: "u-default", Name: "Default Approver", Email: "default@example.com",
		Role: entity.RoleFinance, Permissions: []string{entity.PermissionApprovePR, entity.PermissionApprovePO}},
}

type testEnv struct {
	store        *memory.Store
	sink         *recordingSink
	requisitions RequisitionService
	orders       OrderService
	vendors      VendorService
}

func newTestEnv(t *testing.T, enforceLimits bool) *testEnv {
	t.Helper()

	logger := zap.NewNop()
	store := memory.NewStore()
	sink := &recordingSink{}
	provider := identity.NewStaticProvider(testUsers)

	resolver := NewApprovalResolver(store.Approvers(), ResolverConfig{
		DefaultApprover: entity.Actor{ID: "u-default", Name: "Default Approver", Email: "default@example.com"},
		EnforceLimits:   enforceLimits,
	}, logger)

	requisitions := NewRequisitionService(
		store.Requisitions(), store.Orders(), store.Approvers(), store,
		resolver, provider, NewFirstActiveVendorSelector(store.Vendors()), sink,
		ConversionConfig{
			ShippingAddress: "1 Warehouse Way",
			BillingAddress:  "100 Main St",
			Currency:        "USD",
		},
		enforceLimits, logger,
	)

	orders := NewOrderService(
		store.Orders(), store.Receipts(), store.Vendors(), store,
		resolver, provider, stubDocBuilder{}, sink, logger,
	)

	vendors := NewVendorService(store.Vendors(), store.Approvers(), provider, logger)

	return &testEnv{
		store:        store,
		sink:         sink,
		requisitions: requisitions,
		orders:       orders,
		vendors:      vendors,
	}
}

func asUser(id string) context.Context {
	return identity.WithUserID(context.Background(), id)
}

func (e *testEnv) seedVendor(t *testing.T, id, name string) *entity.Vendor {
	t.Helper()
	now := time.Now()
	v := &entity.Vendor{
		ID:            id,
		Name:          name,
		ContactPerson: "Vera Vendor",
		Email:         "sales@" + id + ".example.com",
		Status:        entity.VendorStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, e.store.CreateVendor(context.Background(), v))
	return v
}

func (e *testEnv) seedBinding(t *testing.T, userID, userName, costCenter string, limit int64) {
	t.Helper()
	now := time.Now()
	require.NoError(t, e.store.CreateBinding(context.Background(), &entity.CostCenterApprover{
		ID:            "b-" + userID + "-" + costCenter,
		UserID:        userID,
		UserName:      userName,
		UserEmail:     userID + "@example.com",
		CostCenter:    costCenter,
		ApprovalLimit: decimal.NewFromInt(limit),
		CreatedAt:     now,
		UpdatedAt:     now,
	}))
}

func sampleLineItems() []LineItemInput {
	return []LineItemInput{
		{Description: "Laptop stand", Category: "IT", Quantity: 3, UnitPrice: decimal.NewFromInt(25)},
		{Description: "USB hub", Category: "IT", Quantity: 5, UnitPrice: decimal.NewFromInt(15)},
	}
}

func sampleRequisitionInput() CreateRequisitionInput {
	return CreateRequisitionInput{
		Department:    "Engineering",
		CostCenter:    "CC-100",
		BudgetCode:    "BUD-2026",
		Justification: "Workstation refresh",
		DateNeeded:    time.Now().Add(14 * 24 * time.Hour),
		LineItems:     sampleLineItems(),
	}
}

func (e *testEnv) createRequisition(t *testing.T) *entity.PurchaseRequisition {
	t.Helper()
	pr, err := e.requisitions.Create(asUser("u-requester"), sampleRequisitionInput())
	require.NoError(t, err)
	return pr
}

func (e *testEnv) submittedRequisition(t *testing.T) *entity.PurchaseRequisition {
	t.Helper()
	pr := e.createRequisition(t)
	pr, err := e.requisitions.Submit(asUser("u-requester"), pr.ID)
	require.NoError(t, err)
	return pr
}

func (e *testEnv) approvedRequisition(t *testing.T) *entity.PurchaseRequisition {
	t.Helper()
	pr := e.submittedRequisition(t)
	for _, entry := range pr.Approvers {
		var err error
		pr, err = e.requisitions.Decide(asUser(entry.ApproverID), pr.ID, DecisionInput{Decision: entity.ApprovalApproved})
		require.NoError(t, err)
	}
	require.Equal(t, entity.PRStatusApproved, pr.Status)
	return pr
}

func TestCreateRequisition(t *testing.T) {
	env := newTestEnv(t, false)

	pr := env.createRequisition(t)

	assert.Equal(t, entity.PRStatusDraft, pr.Status)
	assert.Equal(t, int64(1), pr.Version)
	assert.Equal(t, "u-requester", pr.Requester.ID)
	assert.Len(t, pr.LineItems, 2)
	// 3*25 + 5*15
	assert.True(t, pr.TotalAmount.Equal(decimal.NewFromInt(150)),
		"total should be 150, got %s", pr.TotalAmount)
	for _, li := range pr.LineItems {
		assert.NotEmpty(t, li.ID)
		assert.True(t, li.TotalPrice.Equal(li.UnitPrice.Mul(decimal.NewFromInt(li.Quantity))))
	}
}

func TestCreateRequisitionValidation(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := asUser("u-requester")

	tests := []struct {
		name   string
		mutate func(*CreateRequisitionInput)
	}{
		{"missing department", func(in *CreateRequisitionInput) { in.Department = "" }},
		{"missing cost center", func(in *CreateRequisitionInput) { in.CostCenter = "" }},
		{"missing justification", func(in *CreateRequisitionInput) { in.Justification = "" }},
		{"missing date needed", func(in *CreateRequisitionInput) { in.DateNeeded = time.Time{} }},
		{"no line items", func(in *CreateRequisitionInput) { in.LineItems = nil }},
		{"zero quantity", func(in *CreateRequisitionInput) { in.LineItems[0].Quantity = 0 }},
		{"negative quantity", func(in *CreateRequisitionInput) { in.LineItems[0].Quantity = -2 }},
		{"zero unit price", func(in *CreateRequisitionInput) { in.LineItems[1].UnitPrice = decimal.Zero }},
		{"negative unit price", func(in *CreateRequisitionInput) { in.LineItems[1].UnitPrice = decimal.NewFromInt(-5) }},
		{"missing description", func(in *CreateRequisitionInput) { in.LineItems[0].Description = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := sampleRequisitionInput()
			input.LineItems = sampleLineItems()
			tt.mutate(&input)

			_, err := env.requisitions.Create(ctx, input)
			assert.True(t, errs.IsValidation(err), "expected validation error, got %v", err)
		})
	}
}

func TestCreateRequisitionRequiresPermission(t *testing.T) {
	env := newTestEnv(t, false)

	_, err := env.requisitions.Create(asUser("u-receiver"), sampleRequisitionInput())
	assert.True(t, errs.IsPermission(err), "expected permission error, got %v", err)

	_, err = env.requisitions.Create(context.Background(), sampleRequisitionInput())
	assert.ErrorIs(t, err, identity.ErrUnauthenticated)
}

func TestUpdateRequisition(t *testing.T) {
	env := newTestEnv(t, false)
	pr := env.createRequisition(t)

	input := UpdateRequisitionInput{
		Department:    "Engineering",
		CostCenter:    "CC-200",
		BudgetCode:    "BUD-2026",
		Justification: "Revised scope",
		LineItems: []LineItemInput{
			{Description: "Monitor", Category: "IT", Quantity: 2, UnitPrice: decimal.NewFromInt(200)},
		},
	}
	updated, err := env.requisitions.Update(asUser("u-requester"), pr.ID, input)
	require.NoError(t, err)

	assert.Equal(t, "CC-200", updated.CostCenter)
	assert.Equal(t, int64(2), updated.Version)
	assert.True(t, updated.TotalAmount.Equal(decimal.NewFromInt(400)))
	assert.Len(t, updated.LineItems, 1)
}

func TestUpdateRequisitionOnlyRequesterAndDraft(t *testing.T) {
	env := newTestEnv(t, false)

	input := UpdateRequisitionInput{
		Department:    "Engineering",
		CostCenter:    "CC-100",
		BudgetCode:    "BUD-2026",
		Justification: "Edit",
		LineItems:     sampleLineItems(),
	}

	pr := env.createRequisition(t)
	_, err := env.requisitions.Update(asUser("u-officer"), pr.ID, input)
	assert.True(t, errs.IsPermission(err), "expected permission error, got %v", err)

	submitted := env.submittedRequisition(t)
	_, err = env.requisitions.Update(asUser("u-requester"), submitted.ID, input)
	assert.True(t, errs.IsInvalidState(err), "expected invalid state error, got %v", err)
}

func TestSubmitAssignsBoundApprovers(t *testing.T) {
	env := newTestEnv(t, false)
	env.seedBinding(t, "u-approver-1", "Ann Approver", "CC-100", 1000)
	env.seedBinding(t, "u-approver-2", "Abe Approver", "CC-100", 500)

	pr := env.submittedRequisition(t)

	assert.Equal(t, entity.PRStatusPendingApproval, pr.Status)
	assert.Equal(t, int64(2), pr.Version)
	require.Len(t, pr.Approvers, 2)
	for _, entry := range pr.Approvers {
		assert.Equal(t, entity.ApprovalPending, entry.Status)
		assert.Nil(t, entry.DecidedAt)
	}
	assert.Len(t, env.sink.byKind(port.NotifyApprovalRequested), 2)
}

func TestSubmitFallsBackToDefaultApprover(t *testing.T) {
	env := newTestEnv(t, false)

	pr := env.submittedRequisition(t)

	require.Len(t, pr.Approvers, 1)
	assert.Equal(t, "u-default", pr.Approvers[0].ApproverID)
}

func TestSubmitNonDraft(t *testing.T) {
	env := newTestEnv(t, false)
	pr := env.submittedRequisition(t)

	_, err := env.requisitions.Submit(asUser("u-requester"), pr.ID)
	assert.True(t, errs.IsInvalidState(err), "expected invalid state error, got %v", err)
}

func TestAllApproversMustApprove(t *testing.T) {
	env := newTestEnv(t, false)
	env.seedBinding(t, "u-approver-1", "Ann Approver", "CC-100", 1000)
	env.seedBinding(t, "u-approver-2", "Abe Approver", "CC-100", 1000)
	pr := env.submittedRequisition(t)

	pr, err := env.requisitions.Decide(asUser("u-approver-1"), pr.ID, DecisionInput{Decision: entity.ApprovalApproved})
	require.NoError(t, err)
	assert.Equal(t, entity.PRStatusPendingApproval, pr.Status, "one approval of two must not approve the document")

	pr, err = env.requisitions.Decide(asUser("u-approver-2"), pr.ID, DecisionInput{Decision: entity.ApprovalApproved})
	require.NoError(t, err)
	assert.Equal(t, entity.PRStatusApproved, pr.Status)
	assert.Len(t, env.sink.byKind(port.NotifyRequisitionApproved), 1)
}

func TestSingleVetoRejects(t *testing.T) {
	env := newTestEnv(t, false)
	env.seedBinding(t, "u-approver-1", "Ann Approver", "CC-100", 1000)
	env.seedBinding(t, "u-approver-2", "Abe Approver", "CC-100", 1000)
	pr := env.submittedRequisition(t)

	pr, err := env.requisitions.Decide(asUser("u-approver-2"), pr.ID,
		DecisionInput{Decision: entity.ApprovalRejected, Comment: "over budget"})
	require.NoError(t, err)

	assert.Equal(t, entity.PRStatusRejected, pr.Status)

	// The other entry stays untouched.
	other := entity.FindApprovalEntry(pr.Approvers, "u-approver-1")
	require.NotNil(t, other)
	assert.Equal(t, entity.ApprovalPending, other.Status)

	vetoer := entity.FindApprovalEntry(pr.Approvers, "u-approver-2")
	require.NotNil(t, vetoer)
	assert.Equal(t, entity.ApprovalRejected, vetoer.Status)
	assert.Equal(t, "over budget", vetoer.Comment)
	assert.NotNil(t, vetoer.DecidedAt)

	assert.Len(t, env.sink.byKind(port.NotifyRequisitionRejected), 1)
}

func TestDecideTwice(t *testing.T) {
	env := newTestEnv(t, false)
	env.seedBinding(t, "u-approver-1", "Ann Approver", "CC-100", 1000)
	env.seedBinding(t, "u-approver-2", "Abe Approver", "CC-100", 1000)
	pr := env.submittedRequisition(t)

	_, err := env.requisitions.Decide(asUser("u-approver-1"), pr.ID, DecisionInput{Decision: entity.ApprovalApproved})
	require.NoError(t, err)

	_, err = env.requisitions.Decide(asUser("u-approver-1"), pr.ID, DecisionInput{Decision: entity.ApprovalRejected})
	assert.True(t, errs.IsInvalidState(err), "expected invalid state error, got %v", err)
}

func TestDecideByNonAssignedApprover(t *testing.T) {
	env := newTestEnv(t, false)
	env.seedBinding(t, "u-approver-1", "Ann Approver", "CC-100", 1000)
	pr := env.submittedRequisition(t)

	_, err := env.requisitions.Decide(asUser("u-approver-2"), pr.ID, DecisionInput{Decision: entity.ApprovalApproved})
	assert.True(t, errs.IsApproverNotFound(err), "expected approver not found, got %v", err)
}

func TestDecideInvalidDecision(t *testing.T) {
	env := newTestEnv(t, false)
	pr := env.submittedRequisition(t)

	_, err := env.requisitions.Decide(asUser("u-default"), pr.ID, DecisionInput{Decision: "MAYBE"})
	assert.True(t, errs.IsValidation(err), "expected validation error, got %v", err)
}

func TestEnforceLimitsOnSubmit(t *testing.T) {
	env := newTestEnv(t, true)
	// The only binding cannot cover the 150 total.
	env.seedBinding(t, "u-approver-1", "Ann Approver", "CC-100", 100)
	pr := env.createRequisition(t)

	_, err := env.requisitions.Submit(asUser("u-requester"), pr.ID)
	assert.True(t, errs.IsValidation(err), "expected validation error, got %v", err)
}

func TestEnforceLimitsOnDecide(t *testing.T) {
	env := newTestEnv(t, true)
	env.seedBinding(t, "u-approver-1", "Ann Approver", "CC-100", 100)
	env.seedBinding(t, "u-approver-2", "Abe Approver", "CC-100", 1000)
	pr := env.submittedRequisition(t)

	_, err := env.requisitions.Decide(asUser("u-approver-1"), pr.ID, DecisionInput{Decision: entity.ApprovalApproved})
	assert.True(t, errs.IsValidation(err), "under-limit approver must not approve 150, got %v", err)

	// Rejection is always allowed.
	pr, err = env.requisitions.Decide(asUser("u-approver-1"), pr.ID, DecisionInput{Decision: entity.ApprovalRejected})
	require.NoError(t, err)
	assert.Equal(t, entity.PRStatusRejected, pr.Status)
}

func TestConvertToPO(t *testing.T) {
	env := newTestEnv(t, false)
	env.seedVendor(t, "v-acme", "Acme Supplies")
	pr := env.approvedRequisition(t)

	result, err := env.requisitions.ConvertToPO(asUser("u-officer"), pr.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.PRStatusConvertedToPO, result.Requisition.Status)
	assert.Equal(t, pr.Version+1, result.Requisition.Version)

	po := result.Order
	assert.Equal(t, entity.POStatusDraft, po.Status)
	assert.Equal(t, pr.ID, po.PRID)
	assert.Equal(t, "v-acme", po.Vendor.ID)
	assert.Equal(t, int64(1), po.Version)
	assert.True(t, po.TotalAmount.Equal(pr.TotalAmount))
	assert.Equal(t, pr.DateNeeded, po.RequiredDate)
	assert.Equal(t, "USD", po.Currency)

	// Copied items carry fresh identities.
	require.Len(t, po.LineItems, len(pr.LineItems))
	for i, item := range po.LineItems {
		assert.NotEqual(t, pr.LineItems[i].ID, item.ID)
		assert.Equal(t, pr.LineItems[i].Description, item.Description)
		assert.True(t, item.TotalPrice.Equal(pr.LineItems[i].TotalPrice))
	}

	// The order is persisted.
	stored, err := env.orders.Get(asUser("u-officer"), po.ID)
	require.NoError(t, err)
	assert.Equal(t, po.ID, stored.ID)
}

func TestConvertToPOIllegalStates(t *testing.T) {
	env := newTestEnv(t, false)
	env.seedVendor(t, "v-acme", "Acme Supplies")

	pending := env.submittedRequisition(t)
	_, err := env.requisitions.ConvertToPO(asUser("u-officer"), pending.ID)
	assert.True(t, errs.IsInvalidState(err), "expected invalid state error, got %v", err)

	approved := env.approvedRequisition(t)
	_, err = env.requisitions.ConvertToPO(asUser("u-officer"), approved.ID)
	require.NoError(t, err)

	// Double conversion must fail; exactly one order exists for the PR.
	_, err = env.requisitions.ConvertToPO(asUser("u-officer"), approved.ID)
	assert.True(t, errs.IsInvalidState(err), "expected invalid state error, got %v", err)

	orders, err := env.orders.List(asUser("u-officer"))
	require.NoError(t, err)
	count := 0
	for _, po := range orders {
		if po.PRID == approved.ID {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestConvertToPOWithoutVendor(t *testing.T) {
	env := newTestEnv(t, false)
	pr := env.approvedRequisition(t)

	_, err := env.requisitions.ConvertToPO(asUser("u-officer"), pr.ID)
	assert.True(t, errs.IsValidation(err), "expected validation error without active vendor, got %v", err)

	// The requisition must not have moved.
	stored, getErr := env.requisitions.Get(asUser("u-officer"), pr.ID)
	require.NoError(t, getErr)
	assert.Equal(t, entity.PRStatusApproved, stored.Status)
}

func TestGetRequisitionNotFound(t *testing.T) {
	env := newTestEnv(t, false)

	_, err := env.requisitions.Get(asUser("u-requester"), "PR-missing")
	assert.True(t, errs.IsNotFound(err), "expected not found error, got %v", err)
}

func TestVersionIncrementsByOne(t *testing.T) {
	env := newTestEnv(t, false)
	pr := env.createRequisition(t)
	assert.Equal(t, int64(1), pr.Version)

	pr, err := env.requisitions.Submit(asUser("u-requester"), pr.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pr.Version)

	pr, err = env.requisitions.Decide(asUser("u-default"), pr.ID, DecisionInput{Decision: entity.ApprovalApproved})
	require.NoError(t, err)
	assert.Equal(t, int64(3), pr.Version)
}
