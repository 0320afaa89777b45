package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Intelygenai/paycyclexplorer/internal/domain/entity"
)

// Owned child rows (line items, approval entries) carry a parent_type
// discriminator so requisitions and orders share the same tables.
const (
	parentRequisition = "PR"
	parentOrder       = "PO"
)

func insertLineItems(ctx context.Context, ex executor, parentType, parentID string, items []entity.LineItem) error {
	query := `
		INSERT INTO line_items (
			id, parent_type, parent_id, position, description, category,
			quantity, unit_price, total_price, delivery_date, notes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for i, item := range items {
		_, err := ex.ExecContext(ctx, query,
			item.ID,
			parentType,
			parentID,
			i,
			item.Description,
			item.Category,
			item.Quantity,
			item.UnitPrice.String(),
			item.TotalPrice.String(),
			item.DeliveryDate,
			item.Notes,
		)
		if err != nil {
			return fmt.Errorf("failed to insert line item: %w", err)
		}
	}
	return nil
}

func loadLineItems(ctx context.Context, ex executor, parentType, parentID string) ([]entity.LineItem, error) {
	query := `
		SELECT id, description, category, quantity, unit_price, total_price, delivery_date, notes
		FROM line_items
		WHERE parent_type = ? AND parent_id = ?
		ORDER BY position ASC
	`
	rows, err := ex.QueryContext(ctx, query, parentType, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load line items: %w", err)
	}
	defer rows.Close()

	var items []entity.LineItem
	for rows.Next() {
		var (
			item         entity.LineItem
			unitPrice    string
			totalPrice   string
			deliveryDate sql.NullTime
		)
		err := rows.Scan(
			&item.ID,
			&item.Description,
			&item.Category,
			&item.Quantity,
			&unitPrice,
			&totalPrice,
			&deliveryDate,
			&item.Notes,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		if item.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
			return nil, fmt.Errorf("failed to parse unit price: %w", err)
		}
		if item.TotalPrice, err = decimal.NewFromString(totalPrice); err != nil {
			return nil, fmt.Errorf("failed to parse total price: %w", err)
		}
		if deliveryDate.Valid {
			t := deliveryDate.Time
			item.DeliveryDate = &t
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func deleteLineItems(ctx context.Context, ex executor, parentType, parentID string) error {
	_, err := ex.ExecContext(ctx,
		`DELETE FROM line_items WHERE parent_type = ? AND parent_id = ?`,
		parentType, parentID)
	if err != nil {
		return fmt.Errorf("failed to delete line items: %w", err)
	}
	return nil
}

func insertApprovalEntries(ctx context.Context, ex executor, parentType, parentID string, entries []entity.ApprovalEntry) error {
	query := `
		INSERT INTO approval_entries (
			id, parent_type, parent_id, position, approver_id, approver_name,
			approver_email, status, comment, decided_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for i, e := range entries {
		_, err := ex.ExecContext(ctx, query,
			e.ID,
			parentType,
			parentID,
			i,
			e.ApproverID,
			e.ApproverName,
			e.ApproverEmail,
			e.Status,
			e.Comment,
			e.DecidedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert approval entry: %w", err)
		}
	}
	return nil
}

func loadApprovalEntries(ctx context.Context, ex executor, parentType, parentID string) ([]entity.ApprovalEntry, error) {
	query := `
		SELECT id, approver_id, approver_name, approver_email, status, comment, decided_at
		FROM approval_entries
		WHERE parent_type = ? AND parent_id = ?
		ORDER BY position ASC
	`
	rows, err := ex.QueryContext(ctx, query, parentType, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load approval entries: %w", err)
	}
	defer rows.Close()

	var entries []entity.ApprovalEntry
	for rows.Next() {
		var (
			e         entity.ApprovalEntry
			decidedAt sql.NullTime
		)
		err := rows.Scan(
			&e.ID,
			&e.ApproverID,
			&e.ApproverName,
			&e.ApproverEmail,
			&e.Status,
			&e.Comment,
			&decidedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan approval entry: %w", err)
		}
		if decidedAt.Valid {
			t := decidedAt.Time
			e.DecidedAt = &t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func deleteApprovalEntries(ctx context.Context, ex executor, parentType, parentID string) error {
	_, err := ex.ExecContext(ctx,
		`DELETE FROM approval_entries WHERE parent_type = ? AND parent_id = ?`,
		parentType, parentID)
	if err != nil {
		return fmt.Errorf("failed to delete approval entries: %w", err)
	}
	return nil
}
