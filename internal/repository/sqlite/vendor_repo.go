package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/Intelygenai/paycyclexplorer/internal/application/port"
	"github.com/Intelygenai/paycyclexplorer/internal/domain/entity"
	"github.com/Intelygenai/paycyclexplorer/internal/domain/errs"
)

// VendorRepository implements port.VendorRepository
type VendorRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewVendorRepository creates a new vendor repository
func NewVendorRepository(db *sql.DB, logger *zap.Logger) port.VendorRepository {
	return &VendorRepository{
		db:     db,
		logger: logger,
	}
}

const vendorColumns = `id, name, contact_person, email, phone, address, tax_id, payment_terms, categories, status, created_at, updated_at`

// Create persists a new vendor.
func (r *VendorRepository) Create(ctx context.Context, v *entity.Vendor) error {
	ex := chooseExecutor(ctx, r.db)

	categories, err := encodeCategories(v.Categories)
	if err != nil {
		return errs.NewStorage("vendor create", err)
	}

	query := `
		INSERT INTO vendors (` + vendorColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = ex.ExecContext(ctx, query,
		v.ID,
		v.Name,
		v.ContactPerson,
		v.Email,
		v.Phone,
		v.Address,
		v.TaxID,
		v.PaymentTerms,
		categories,
		v.Status,
		v.CreatedAt,
		v.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create vendor", zap.String("id", v.ID), zap.Error(err))
		return errs.NewStorage("vendor create", err)
	}
	return nil
}

// GetByID retrieves a vendor by id.
func (r *VendorRepository) GetByID(ctx context.Context, id string) (*entity.Vendor, error) {
	ex := chooseExecutor(ctx, r.db)

	v, err := scanVendor(ex.QueryRowContext(ctx,
		`SELECT `+vendorColumns+` FROM vendors WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, errs.NewNotFound("vendor", id)
	}
	if err != nil {
		r.logger.Error("Failed to get vendor", zap.String("id", id), zap.Error(err))
		return nil, errs.NewStorage("vendor get", err)
	}
	return v, nil
}

// List retrieves all vendors ordered by name.
func (r *VendorRepository) List(ctx context.Context) ([]*entity.Vendor, error) {
	return r.list(ctx, `SELECT `+vendorColumns+` FROM vendors ORDER BY name ASC`)
}

// ListActive retrieves vendors that can be assigned to new orders.
func (r *VendorRepository) ListActive(ctx context.Context) ([]*entity.Vendor, error) {
	return r.list(ctx,
		`SELECT `+vendorColumns+` FROM vendors WHERE status = ? ORDER BY name ASC`,
		entity.VendorStatusActive)
}

func (r *VendorRepository) list(ctx context.Context, query string, args ...interface{}) ([]*entity.Vendor, error) {
	ex := chooseExecutor(ctx, r.db)

	rows, err := ex.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list vendors", zap.Error(err))
		return nil, errs.NewStorage("vendor list", err)
	}
	defer rows.Close()

	var out []*entity.Vendor
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, errs.NewStorage("vendor list", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.NewStorage("vendor list", err)
	}
	return out, nil
}

// Update replaces a vendor record.
func (r *VendorRepository) Update(ctx context.Context, v *entity.Vendor) error {
	ex := chooseExecutor(ctx, r.db)

	categories, err := encodeCategories(v.Categories)
	if err != nil {
		return errs.NewStorage("vendor update", err)
	}

	query := `
		UPDATE vendors
		SET name = ?, contact_person = ?, email = ?, phone = ?, address = ?,
			tax_id = ?, payment_terms = ?, categories = ?, status = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := ex.ExecContext(ctx, query,
		v.Name,
		v.ContactPerson,
		v.Email,
		v.Phone,
		v.Address,
		v.TaxID,
		v.PaymentTerms,
		categories,
		v.Status,
		v.UpdatedAt,
		v.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update vendor", zap.String("id", v.ID), zap.Error(err))
		return errs.NewStorage("vendor update", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errs.NewStorage("vendor update", err)
	}
	if affected == 0 {
		return errs.NewNotFound("vendor", v.ID)
	}
	return nil
}

func scanVendor(row rowScanner) (*entity.Vendor, error) {
	var (
		v          entity.Vendor
		categories string
	)
	err := row.Scan(
		&v.ID,
		&v.Name,
		&v.ContactPerson,
		&v.Email,
		&v.Phone,
		&v.Address,
		&v.TaxID,
		&v.PaymentTerms,
		&categories,
		&v.Status,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if v.Categories, err = decodeCategories(categories); err != nil {
		return nil, err
	}
	return &v, nil
}

// Categories are stored as a JSON array in a single column; the list is
// small and never queried by element.
func encodeCategories(categories []string) (string, error) {
	if len(categories) == 0 {
		return "[]", nil
	}
	raw, err := json.Marshal(categories)
	if err != nil {
		return "", fmt.Errorf("failed to encode categories: %w", err)
	}
	return string(raw), nil
}

func decodeCategories(raw string) ([]string, error) {
	if raw == "" || raw == "[]" {
		return nil, nil
	}
	var categories []string
	if err := json.Unmarshal([]byte(raw), &categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	return categories, nil
}

// Verify interface compliance
var _ port.VendorRepository = (*VendorRepository)(nil)
