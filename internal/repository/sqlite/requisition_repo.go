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

// RequisitionRepository implements port.RequisitionRepository
type RequisitionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRequisitionRepository creates a new purchase requisition repository
func NewRequisitionRepository(db *sql.DB, logger *zap.Logger) port.RequisitionRepository {
	return &RequisitionRepository{
		db:     db,
		logger: logger,
	}
}

// Create persists a new requisition with its line items.
func (r *RequisitionRepository) Create(ctx context.Context, pr *entity.PurchaseRequisition) error {
	ex := chooseExecutor(ctx, r.db)

	query := `
		INSERT INTO purchase_requisitions (
			id, requester_id, requester_name, requester_email, department,
			cost_center, budget_code, justification, status, date_created,
			date_needed, total_amount, version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := ex.ExecContext(ctx, query,
		pr.ID,
		pr.Requester.ID,
		pr.Requester.Name,
		pr.Requester.Email,
		pr.Department,
		pr.CostCenter,
		pr.BudgetCode,
		pr.Justification,
		pr.Status,
		pr.DateCreated,
		pr.DateNeeded,
		pr.TotalAmount.String(),
		pr.Version,
		pr.CreatedAt,
		pr.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create requisition", zap.String("id", pr.ID), zap.Error(err))
		return errs.NewStorage("requisition create", err)
	}

	if err := insertLineItems(ctx, ex, parentRequisition, pr.ID, pr.LineItems); err != nil {
		return errs.NewStorage("requisition create", err)
	}
	return nil
}

// GetByID retrieves a requisition with its line items and approval entries.
func (r *RequisitionRepository) GetByID(ctx context.Context, id string) (*entity.PurchaseRequisition, error) {
	ex := chooseExecutor(ctx, r.db)

	query := `
		SELECT id, requester_id, requester_name, requester_email, department,
			cost_center, budget_code, justification, status, date_created,
			date_needed, total_amount, version, created_at, updated_at
		FROM purchase_requisitions
		WHERE id = ?
	`
	pr, err := scanRequisition(ex.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errs.NewNotFound("purchase requisition", id)
	}
	if err != nil {
		r.logger.Error("Failed to get requisition", zap.String("id", id), zap.Error(err))
		return nil, errs.NewStorage("requisition get", err)
	}

	if err := r.attachChildren(ctx, ex, pr); err != nil {
		return nil, errs.NewStorage("requisition get", err)
	}
	return pr, nil
}

// List retrieves all requisitions, newest first.
func (r *RequisitionRepository) List(ctx context.Context) ([]*entity.PurchaseRequisition, error) {
	ex := chooseExecutor(ctx, r.db)

	query := `
		SELECT id, requester_id, requester_name, requester_email, department,
			cost_center, budget_code, justification, status, date_created,
			date_needed, total_amount, version, created_at, updated_at
		FROM purchase_requisitions
		ORDER BY created_at DESC
	`
	rows, err := ex.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list requisitions", zap.Error(err))
		return nil, errs.NewStorage("requisition list", err)
	}
	defer rows.Close()

	var out []*entity.PurchaseRequisition
	for rows.Next() {
		pr, err := scanRequisition(rows)
		if err != nil {
			return nil, errs.NewStorage("requisition list", err)
		}
		out = append(out, pr)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.NewStorage("requisition list", err)
	}

	for _, pr := range out {
		if err := r.attachChildren(ctx, ex, pr); err != nil {
			return nil, errs.NewStorage("requisition list", err)
		}
	}
	return out, nil
}

// Update replaces the full document. The version guard makes concurrent
// stale writes fail with a ConflictError instead of silently clobbering.
func (r *RequisitionRepository) Update(ctx context.Context, pr *entity.PurchaseRequisition, expectedVersion int64) error {
	ex := chooseExecutor(ctx, r.db)

	query := `
		UPDATE purchase_requisitions
		SET department = ?, cost_center = ?, budget_code = ?, justification = ?,
			status = ?, date_needed = ?, total_amount = ?, version = ?, updated_at = ?
		WHERE id = ? AND version = ?
	`
	result, err := ex.ExecContext(ctx, query,
		pr.Department,
		pr.CostCenter,
		pr.BudgetCode,
		pr.Justification,
		pr.Status,
		pr.DateNeeded,
		pr.TotalAmount.String(),
		pr.Version,
		pr.UpdatedAt,
		pr.ID,
		expectedVersion,
	)
	if err != nil {
		r.logger.Error("Failed to update requisition", zap.String("id", pr.ID), zap.Error(err))
		return errs.NewStorage("requisition update", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errs.NewStorage("requisition update", err)
	}
	if affected == 0 {
		return errs.NewConflict("purchase requisition", pr.ID, expectedVersion)
	}

	if err := deleteLineItems(ctx, ex, parentRequisition, pr.ID); err != nil {
		return errs.NewStorage("requisition update", err)
	}
	if err := insertLineItems(ctx, ex, parentRequisition, pr.ID, pr.LineItems); err != nil {
		return errs.NewStorage("requisition update", err)
	}
	if err := deleteApprovalEntries(ctx, ex, parentRequisition, pr.ID); err != nil {
		return errs.NewStorage("requisition update", err)
	}
	if err := insertApprovalEntries(ctx, ex, parentRequisition, pr.ID, pr.Approvers); err != nil {
		return errs.NewStorage("requisition update", err)
	}
	return nil
}

func (r *RequisitionRepository) attachChildren(ctx context.Context, ex executor, pr *entity.PurchaseRequisition) error {
	items, err := loadLineItems(ctx, ex, parentRequisition, pr.ID)
	if err != nil {
		return err
	}
	entries, err := loadApprovalEntries(ctx, ex, parentRequisition, pr.ID)
	if err != nil {
		return err
	}
	pr.LineItems = items
	pr.Approvers = entries
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRequisition(row rowScanner) (*entity.PurchaseRequisition, error) {
	var (
		pr          entity.PurchaseRequisition
		totalAmount string
	)
	err := row.Scan(
		&pr.ID,
		&pr.Requester.ID,
		&pr.Requester.Name,
		&pr.Requester.Email,
		&pr.Department,
		&pr.CostCenter,
		&pr.BudgetCode,
		&pr.Justification,
		&pr.Status,
		&pr.DateCreated,
		&pr.DateNeeded,
		&totalAmount,
		&pr.Version,
		&pr.CreatedAt,
		&pr.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if pr.TotalAmount, err = decimal.NewFromString(totalAmount); err != nil {
		return nil, fmt.Errorf("failed to parse total amount: %w", err)
	}
	return &pr, nil
}

// Verify interface compliance
var _ port.RequisitionRepository = (*RequisitionRepository)(nil)
