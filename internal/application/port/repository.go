// Package port defines the interfaces between the workflow engine and its
// external collaborators: storage, notifications, identity and vendor
// selection. Implementations live under internal/repository,
// internal/notification and internal/identity.
package port

import (
	"context"

	"github.com/Intelygenai/paycyclexplorer/internal/domain/entity"
)

// RequisitionRepository defines persistence operations for PurchaseRequisition.
// Update replaces the full document (including line items and approval
// entries) and must fail with a ConflictError when expectedVersion no
// longer matches the stored row.
type RequisitionRepository interface {
	Create(ctx context.Context, pr *entity.PurchaseRequisition) error
	GetByID(ctx context.Context, id string) (*entity.PurchaseRequisition, error)
	List(ctx context.Context) ([]*entity.PurchaseRequisition, error)
	Update(ctx context.Context, pr *entity.PurchaseRequisition, expectedVersion int64) error
}

// OrderRepository defines persistence operations for PurchaseOrder.
type OrderRepository interface {
	Create(ctx context.Context, po *entity.PurchaseOrder) error
	GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	List(ctx context.Context) ([]*entity.PurchaseOrder, error)
	Update(ctx context.Context, po *entity.PurchaseOrder, expectedVersion int64) error
}

// ReceiptRepository defines persistence operations for GoodsReceipt.
type ReceiptRepository interface {
	Create(ctx context.Context, gr *entity.GoodsReceipt) error
	GetByID(ctx context.Context, id string) (*entity.GoodsReceipt, error)
	ListByOrderID(ctx context.Context, poID string) ([]*entity.GoodsReceipt, error)
}

// VendorRepository defines persistence operations for Vendor.
type VendorRepository interface {
	Create(ctx context.Context, v *entity.Vendor) error
	GetByID(ctx context.Context, id string) (*entity.Vendor, error)
	List(ctx context.Context) ([]*entity.Vendor, error)
	ListActive(ctx context.Context) ([]*entity.Vendor, error)
	Update(ctx context.Context, v *entity.Vendor) error
}

// ApproverRepository defines persistence operations for CostCenterApprover
// bindings.
type ApproverRepository interface {
	Create(ctx context.Context, b *entity.CostCenterApprover) error
	GetByID(ctx context.Context, id string) (*entity.CostCenterApprover, error)
	List(ctx context.Context) ([]*entity.CostCenterApprover, error)
	ListByCostCenter(ctx context.Context, costCenter string) ([]*entity.CostCenterApprover, error)
	// FindBinding returns the binding for a user on a cost center, or nil
	// when the user is not bound to it.
	FindBinding(ctx context.Context, userID, costCenter string) (*entity.CostCenterApprover, error)
	Update(ctx context.Context, b *entity.CostCenterApprover) error
	Delete(ctx context.Context, id string) error
}

// TransactionManager executes fn atomically: either every repository call
// made with the derived context is persisted, or none is.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
