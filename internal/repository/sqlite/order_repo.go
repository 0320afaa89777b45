package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Intelygenai/paycyclexplorer/internal/application/port"
	"github.com/Intelygenai/paycyclexplorer/internal/domain/entity"
	"github.com/Intelygenai/paycyclexplorer/internal/domain/errs"
)

// OrderRepository implements port.OrderRepository
type OrderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrderRepository creates a new purchase order repository
func NewOrderRepository(db *sql.DB, logger *zap.Logger) port.OrderRepository {
	return &OrderRepository{
		db:     db,
		logger: logger,
	}
}

const orderSelect = `
	SELECT o.id, o.pr_id, o.po_number, o.status, o.date_created, o.required_date,
		o.shipping_address, o.billing_address, o.currency, o.total_amount,
		o.version, o.created_at, o.updated_at,
		v.id, v.name, v.contact_person, v.email, v.phone, v.address,
		v.tax_id, v.payment_terms, v.categories, v.status, v.created_at, v.updated_at
	FROM purchase_orders o
	JOIN vendors v ON v.id = o.vendor_id
`

// Create persists a new order with its line items. The vendor must
// already exist; orders reference vendors, they never own them.
func (r *OrderRepository) Create(ctx context.Context, po *entity.PurchaseOrder) error {
	ex := chooseExecutor(ctx, r.db)

	query := `
		INSERT INTO purchase_orders (
			id, pr_id, po_number, vendor_id, status, date_created, required_date,
			shipping_address, billing_address, currency, total_amount, version,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := ex.ExecContext(ctx, query,
		po.ID,
		po.PRID,
		po.PONumber,
		po.Vendor.ID,
		po.Status,
		po.DateCreated,
		po.RequiredDate,
		po.ShippingAddress,
		po.BillingAddress,
		po.Currency,
		po.TotalAmount.String(),
		po.Version,
		po.CreatedAt,
		po.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create order", zap.String("id", po.ID), zap.Error(err))
		return errs.NewStorage("order create", err)
	}

	if err := insertLineItems(ctx, ex, parentOrder, po.ID, po.LineItems); err != nil {
		return errs.NewStorage("order create", err)
	}
	return nil
}

// GetByID retrieves an order with its vendor, line items and approval
// entries.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	ex := chooseExecutor(ctx, r.db)

	po, err := scanOrder(ex.QueryRowContext(ctx, orderSelect+` WHERE o.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, errs.NewNotFound("purchase order", id)
	}
	if err != nil {
		r.logger.Error("Failed to get order", zap.String("id", id), zap.Error(err))
		return nil, errs.NewStorage("order get", err)
	}

	if err := r.attachChildren(ctx, ex, po); err != nil {
		return nil, errs.NewStorage("order get", err)
	}
	return po, nil
}

// List retrieves all orders, newest first.
func (r *OrderRepository) List(ctx context.Context) ([]*entity.PurchaseOrder, error) {
	ex := chooseExecutor(ctx, r.db)

	rows, err := ex.QueryContext(ctx, orderSelect+` ORDER BY o.created_at DESC`)
	if err != nil {
		r.logger.Error("Failed to list orders", zap.Error(err))
		return nil, errs.NewStorage("order list", err)
	}
	defer rows.Close()

	var out []*entity.PurchaseOrder
	for rows.Next() {
		po, err := scanOrder(rows)
		if err != nil {
			return nil, errs.NewStorage("order list", err)
		}
		out = append(out, po)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.NewStorage("order list", err)
	}

	for _, po := range out {
		if err := r.attachChildren(ctx, ex, po); err != nil {
			return nil, errs.NewStorage("order list", err)
		}
	}
	return out, nil
}

// Update replaces the full document under a version guard.
func (r *OrderRepository) Update(ctx context.Context, po *entity.PurchaseOrder, expectedVersion int64) error {
	ex := chooseExecutor(ctx, r.db)

	query := `
		UPDATE purchase_orders
		SET status = ?, required_date = ?, shipping_address = ?, billing_address = ?,
			currency = ?, total_amount = ?, version = ?, updated_at = ?
		WHERE id = ? AND version = ?
	`
	result, err := ex.ExecContext(ctx, query,
		po.Status,
		po.RequiredDate,
		po.ShippingAddress,
		po.BillingAddress,
		po.Currency,
		po.TotalAmount.String(),
		po.Version,
		po.UpdatedAt,
		po.ID,
		expectedVersion,
	)
	if err != nil {
		r.logger.Error("Failed to update order", zap.String("id", po.ID), zap.Error(err))
		return errs.NewStorage("order update", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errs.NewStorage("order update", err)
	}
	if affected == 0 {
		return errs.NewConflict("purchase order", po.ID, expectedVersion)
	}

	if err := deleteLineItems(ctx, ex, parentOrder, po.ID); err != nil {
		return errs.NewStorage("order update", err)
	}
	if err := insertLineItems(ctx, ex, parentOrder, po.ID, po.LineItems); err != nil {
		return errs.NewStorage("order update", err)
	}
	if err := deleteApprovalEntries(ctx, ex, parentOrder, po.ID); err != nil {
		return errs.NewStorage("order update", err)
	}
	if err := insertApprovalEntries(ctx, ex, parentOrder, po.ID, po.Approvers); err != nil {
		return errs.NewStorage("order update", err)
	}
	return nil
}

func (r *OrderRepository) attachChildren(ctx context.Context, ex executor, po *entity.PurchaseOrder) error {
	items, err := loadLineItems(ctx, ex, parentOrder, po.ID)
	if err != nil {
		return err
	}
	entries, err := loadApprovalEntries(ctx, ex, parentOrder, po.ID)
	if err != nil {
		return err
	}
	po.LineItems = items
	po.Approvers = entries
	return nil
}

func scanOrder(row rowScanner) (*entity.PurchaseOrder, error) {
	var (
		po          entity.PurchaseOrder
		prID        sql.NullString
		totalAmount string
		categories  string
	)
	err := row.Scan(
		&po.ID,
		&prID,
		&po.PONumber,
		&po.Status,
		&po.DateCreated,
		&po.RequiredDate,
		&po.ShippingAddress,
		&po.BillingAddress,
		&po.Currency,
		&totalAmount,
		&po.Version,
		&po.CreatedAt,
		&po.UpdatedAt,
		&po.Vendor.ID,
		&po.Vendor.Name,
		&po.Vendor.ContactPerson,
		&po.Vendor.Email,
		&po.Vendor.Phone,
		&po.Vendor.Address,
		&po.Vendor.TaxID,
		&po.Vendor.PaymentTerms,
		&categories,
		&po.Vendor.Status,
		&po.Vendor.CreatedAt,
		&po.Vendor.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	po.PRID = prID.String
	if po.TotalAmount, err = decimal.NewFromString(totalAmount); err != nil {
		return nil, fmt.Errorf("failed to parse total amount: %w", err)
	}
	if po.Vendor.Categories, err = decodeCategories(categories); err != nil {
		return nil, err
	}
	return &po, nil
}

// Verify interface compliance
var _ port.OrderRepository = (*OrderRepository)(nil)
