package sqlite

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/Intelygenai/paycyclexplorer/internal/application/port"
	"github.com/Intelygenai/paycyclexplorer/internal/domain/entity"
	"github.com/Intelygenai/paycyclexplorer/internal/domain/errs"
)

// ReceiptRepository implements port.ReceiptRepository. Receipts are
// append-only; there is no update path.
type ReceiptRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewReceiptRepository creates a new goods receipt repository
func NewReceiptRepository(db *sql.DB, logger *zap.Logger) port.ReceiptRepository {
	return &ReceiptRepository{
		db:     db,
		logger: logger,
	}
}

// Create persists a receipt with its lines.
func (r *ReceiptRepository) Create(ctx context.Context, gr *entity.GoodsReceipt) error {
	ex := chooseExecutor(ctx, r.db)

	query := `
		INSERT INTO goods_receipts (
			id, po_id, po_number, receipt_number, received_by_id, received_by_name,
			received_by_email, date_received, delivery_note, carrier, status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := ex.ExecContext(ctx, query,
		gr.ID,
		gr.POID,
		gr.PONumber,
		gr.ReceiptNumber,
		gr.ReceivedBy.ID,
		gr.ReceivedBy.Name,
		gr.ReceivedBy.Email,
		gr.DateReceived,
		gr.DeliveryNote,
		gr.Carrier,
		gr.Status,
	)
	if err != nil {
		r.logger.Error("Failed to create receipt", zap.String("id", gr.ID), zap.Error(err))
		return errs.NewStorage("receipt create", err)
	}

	lineQuery := `
		INSERT INTO receipt_lines (
			id, receipt_id, position, line_item_id, description,
			quantity_ordered, quantity_received, status, notes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for i, line := range gr.Lines {
		_, err := ex.ExecContext(ctx, lineQuery,
			line.ID,
			gr.ID,
			i,
			line.LineItemID,
			line.Description,
			line.QuantityOrdered,
			line.QuantityReceived,
			line.Status,
			line.Notes,
		)
		if err != nil {
			r.logger.Error("Failed to create receipt line", zap.String("receipt_id", gr.ID), zap.Error(err))
			return errs.NewStorage("receipt create", err)
		}
	}
	return nil
}

// GetByID retrieves a receipt with its lines.
func (r *ReceiptRepository) GetByID(ctx context.Context, id string) (*entity.GoodsReceipt, error) {
	ex := chooseExecutor(ctx, r.db)

	query := `
		SELECT id, po_id, po_number, receipt_number, received_by_id, received_by_name,
			received_by_email, date_received, delivery_note, carrier, status
		FROM goods_receipts
		WHERE id = ?
	`
	gr, err := scanReceipt(ex.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errs.NewNotFound("goods receipt", id)
	}
	if err != nil {
		r.logger.Error("Failed to get receipt", zap.String("id", id), zap.Error(err))
		return nil, errs.NewStorage("receipt get", err)
	}

	if gr.Lines, err = r.loadLines(ctx, ex, gr.ID); err != nil {
		return nil, errs.NewStorage("receipt get", err)
	}
	return gr, nil
}

// ListByOrderID retrieves all receipts for an order in recording order.
func (r *ReceiptRepository) ListByOrderID(ctx context.Context, poID string) ([]*entity.GoodsReceipt, error) {
	ex := chooseExecutor(ctx, r.db)

	query := `
		SELECT id, po_id, po_number, receipt_number, received_by_id, received_by_name,
			received_by_email, date_received, delivery_note, carrier, status
		FROM goods_receipts
		WHERE po_id = ?
		ORDER BY date_received ASC
	`
	rows, err := ex.QueryContext(ctx, query, poID)
	if err != nil {
		r.logger.Error("Failed to list receipts", zap.String("po_id", poID), zap.Error(err))
		return nil, errs.NewStorage("receipt list", err)
	}
	defer rows.Close()

	var out []*entity.GoodsReceipt
	for rows.Next() {
		gr, err := scanReceipt(rows)
		if err != nil {
			return nil, errs.NewStorage("receipt list", err)
		}
		out = append(out, gr)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.NewStorage("receipt list", err)
	}

	for _, gr := range out {
		if gr.Lines, err = r.loadLines(ctx, ex, gr.ID); err != nil {
			return nil, errs.NewStorage("receipt list", err)
		}
	}
	return out, nil
}

func (r *ReceiptRepository) loadLines(ctx context.Context, ex executor, receiptID string) ([]entity.ReceiptLine, error) {
	query := `
		SELECT id, line_item_id, description, quantity_ordered, quantity_received, status, notes
		FROM receipt_lines
		WHERE receipt_id = ?
		ORDER BY position ASC
	`
	rows, err := ex.QueryContext(ctx, query, receiptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []entity.ReceiptLine
	for rows.Next() {
		var line entity.ReceiptLine
		err := rows.Scan(
			&line.ID,
			&line.LineItemID,
			&line.Description,
			&line.QuantityOrdered,
			&line.QuantityReceived,
			&line.Status,
			&line.Notes,
		)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func scanReceipt(row rowScanner) (*entity.GoodsReceipt, error) {
	var gr entity.GoodsReceipt
	err := row.Scan(
		&gr.ID,
		&gr.POID,
		&gr.PONumber,
		&gr.ReceiptNumber,
		&gr.ReceivedBy.ID,
		&gr.ReceivedBy.Name,
		&gr.ReceivedBy.Email,
		&gr.DateReceived,
		&gr.DeliveryNote,
		&gr.Carrier,
		&gr.Status,
	)
	if err != nil {
		return nil, err
	}
	return &gr, nil
}

// Verify interface compliance
var _ port.ReceiptRepository = (*ReceiptRepository)(nil)
