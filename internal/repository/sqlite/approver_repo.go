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

// ApproverRepository implements port.ApproverRepository
type ApproverRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewApproverRepository creates a new cost center approver repository
func NewApproverRepository(db *sql.DB, logger *zap.Logger) port.ApproverRepository {
	return &ApproverRepository{
		db:     db,
		logger: logger,
	}
}

const bindingColumns = `id, user_id, user_name, user_email, cost_center, approval_limit, created_at, updated_at`

// Create persists a new binding. The schema enforces one binding per
// user and cost center.
func (r *ApproverRepository) Create(ctx context.Context, b *entity.CostCenterApprover) error {
	ex := chooseExecutor(ctx, r.db)

	query := `
		INSERT INTO cost_center_approvers (` + bindingColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := ex.ExecContext(ctx, query,
		b.ID,
		b.UserID,
		b.UserName,
		b.UserEmail,
		b.CostCenter,
		b.ApprovalLimit.String(),
		b.CreatedAt,
		b.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create approver binding", zap.String("id", b.ID), zap.Error(err))
		return errs.NewStorage("approver binding create", err)
	}
	return nil
}

// GetByID retrieves a binding by id.
func (r *ApproverRepository) GetByID(ctx context.Context, id string) (*entity.CostCenterApprover, error) {
	ex := chooseExecutor(ctx, r.db)

	b, err := scanBinding(ex.QueryRowContext(ctx,
		`SELECT `+bindingColumns+` FROM cost_center_approvers WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, errs.NewNotFound("approver binding", id)
	}
	if err != nil {
		r.logger.Error("Failed to get approver binding", zap.String("id", id), zap.Error(err))
		return nil, errs.NewStorage("approver binding get", err)
	}
	return b, nil
}

// List retrieves all bindings grouped by cost center.
func (r *ApproverRepository) List(ctx context.Context) ([]*entity.CostCenterApprover, error) {
	return r.list(ctx,
		`SELECT `+bindingColumns+` FROM cost_center_approvers ORDER BY cost_center ASC, user_id ASC`)
}

// ListByCostCenter retrieves the bindings for one cost center.
func (r *ApproverRepository) ListByCostCenter(ctx context.Context, costCenter string) ([]*entity.CostCenterApprover, error) {
	return r.list(ctx,
		`SELECT `+bindingColumns+` FROM cost_center_approvers WHERE cost_center = ? ORDER BY user_id ASC`,
		costCenter)
}

// FindBinding returns the binding for a user on a cost center, or nil
// when the user is not bound to it.
func (r *ApproverRepository) FindBinding(ctx context.Context, userID, costCenter string) (*entity.CostCenterApprover, error) {
	ex := chooseExecutor(ctx, r.db)

	b, err := scanBinding(ex.QueryRowContext(ctx,
		`SELECT `+bindingColumns+` FROM cost_center_approvers WHERE user_id = ? AND cost_center = ?`,
		userID, costCenter))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to find approver binding",
			zap.String("user_id", userID), zap.String("cost_center", costCenter), zap.Error(err))
		return nil, errs.NewStorage("approver binding find", err)
	}
	return b, nil
}

// Update replaces a binding.
func (r *ApproverRepository) Update(ctx context.Context, b *entity.CostCenterApprover) error {
	ex := chooseExecutor(ctx, r.db)

	query := `
		UPDATE cost_center_approvers
		SET user_id = ?, user_name = ?, user_email = ?, cost_center = ?,
			approval_limit = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := ex.ExecContext(ctx, query,
		b.UserID,
		b.UserName,
		b.UserEmail,
		b.CostCenter,
		b.ApprovalLimit.String(),
		b.UpdatedAt,
		b.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update approver binding", zap.String("id", b.ID), zap.Error(err))
		return errs.NewStorage("approver binding update", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errs.NewStorage("approver binding update", err)
	}
	if affected == 0 {
		return errs.NewNotFound("approver binding", b.ID)
	}
	return nil
}

// Delete removes a binding.
func (r *ApproverRepository) Delete(ctx context.Context, id string) error {
	ex := chooseExecutor(ctx, r.db)

	result, err := ex.ExecContext(ctx, `DELETE FROM cost_center_approvers WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete approver binding", zap.String("id", id), zap.Error(err))
		return errs.NewStorage("approver binding delete", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errs.NewStorage("approver binding delete", err)
	}
	if affected == 0 {
		return errs.NewNotFound("approver binding", id)
	}
	return nil
}

func (r *ApproverRepository) list(ctx context.Context, query string, args ...interface{}) ([]*entity.CostCenterApprover, error) {
	ex := chooseExecutor(ctx, r.db)

	rows, err := ex.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list approver bindings", zap.Error(err))
		return nil, errs.NewStorage("approver binding list", err)
	}
	defer rows.Close()

	var out []*entity.CostCenterApprover
	for rows.Next() {
		b, err := scanBinding(rows)
		if err != nil {
			return nil, errs.NewStorage("approver binding list", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.NewStorage("approver binding list", err)
	}
	return out, nil
}

func scanBinding(row rowScanner) (*entity.CostCenterApprover, error) {
	var (
		b     entity.CostCenterApprover
		limit string
	)
	err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.UserName,
		&b.UserEmail,
		&b.CostCenter,
		&limit,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if b.ApprovalLimit, err = decimal.NewFromString(limit); err != nil {
		return nil, fmt.Errorf("failed to parse approval limit: %w", err)
	}
	return &b, nil
}

// Verify interface compliance
var _ port.ApproverRepository = (*ApproverRepository)(nil)
