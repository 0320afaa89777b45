package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Intelygenai/paycyclexplorer/internal/application/port"
	"github.com/Intelygenai/paycyclexplorer/internal/domain/entity"
	"github.com/Intelygenai/paycyclexplorer/internal/domain/errs"
)

// VendorInput carries the fields of a vendor record.
type VendorInput struct {
	Name          string   `json:"name" validate:"required"`
	ContactPerson string   `json:"contact_person"`
	Email         string   `json:"email" validate:"required,email"`
	Phone         string   `json:"phone"`
	Address       string   `json:"address"`
	TaxID         string   `json:"tax_id"`
	PaymentTerms  string   `json:"payment_terms"`
	Categories    []string `json:"categories"`
	Status        string   `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
}

// ApproverBindingInput binds a user to a cost center with an approval
// limit.
type ApproverBindingInput struct {
	UserID        string          `json:"user_id" validate:"required"`
	UserName      string          `json:"user_name" validate:"required"`
	UserEmail     string          `json:"user_email" validate:"required,email"`
	CostCenter    string          `json:"cost_center" validate:"required"`
	ApprovalLimit decimal.Decimal `json:"approval_limit"`
}

// VendorService manages vendor records and cost center approver bindings.
type VendorService interface {
	CreateVendor(ctx context.Context, input VendorInput) (*entity.Vendor, error)
	GetVendor(ctx context.Context, id string) (*entity.Vendor, error)
	ListVendors(ctx context.Context) ([]*entity.Vendor, error)
	UpdateVendor(ctx context.Context, id string, input VendorInput) (*entity.Vendor, error)

	CreateBinding(ctx context.Context, input ApproverBindingInput) (*entity.CostCenterApprover, error)
	ListBindings(ctx context.Context) ([]*entity.CostCenterApprover, error)
	ListBindingsByCostCenter(ctx context.Context, costCenter string) ([]*entity.CostCenterApprover, error)
	UpdateBinding(ctx context.Context, id string, input ApproverBindingInput) (*entity.CostCenterApprover, error)
	DeleteBinding(ctx context.Context, id string) error
}

type vendorServiceImpl struct {
	vendors   port.VendorRepository
	approvers port.ApproverRepository
	identity  port.IdentityProvider
	logger    *zap.Logger
}

// NewVendorService creates a new VendorService.
func NewVendorService(
	vendors port.VendorRepository,
	approvers port.ApproverRepository,
	identity port.IdentityProvider,
	logger *zap.Logger,
) VendorService {
	return &vendorServiceImpl{
		vendors:   vendors,
		approvers: approvers,
		identity:  identity,
		logger:    logger,
	}
}

func (s *vendorServiceImpl) requireUser(ctx context.Context, permission string) (*entity.User, error) {
	user, err := s.identity.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if !s.identity.HasPermission(user, permission) {
		return nil, errs.NewPermission(user.ID, permission)
	}
	return user, nil
}

func (s *vendorServiceImpl) CreateVendor(ctx context.Context, input VendorInput) (*entity.Vendor, error) {
	if _, err := s.requireUser(ctx, entity.PermissionManageVendors); err != nil {
		return nil, err
	}
	if err := checkStruct(input); err != nil {
		return nil, err
	}

	now := time.Now()
	status := input.Status
	if status == "" {
		status = entity.VendorStatusActive
	}
	v := &entity.Vendor{
		ID:            newVendorID(),
		Name:          input.Name,
		ContactPerson: input.ContactPerson,
		Email:         input.Email,
		Phone:         input.Phone,
		Address:       input.Address,
		TaxID:         input.TaxID,
		PaymentTerms:  input.PaymentTerms,
		Categories:    input.Categories,
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.vendors.Create(ctx, v); err != nil {
		return nil, err
	}

	s.logger.Info("Vendor created", zap.String("id", v.ID), zap.String("name", v.Name))
	return v, nil
}

func (s *vendorServiceImpl) GetVendor(ctx context.Context, id string) (*entity.Vendor, error) {
	if _, err := s.identity.CurrentUser(ctx); err != nil {
		return nil, err
	}
	return s.vendors.GetByID(ctx, id)
}

func (s *vendorServiceImpl) ListVendors(ctx context.Context) ([]*entity.Vendor, error) {
	if _, err := s.identity.CurrentUser(ctx); err != nil {
		return nil, err
	}
	return s.vendors.List(ctx)
}

func (s *vendorServiceImpl) UpdateVendor(ctx context.Context, id string, input VendorInput) (*entity.Vendor, error) {
	if _, err := s.requireUser(ctx, entity.PermissionManageVendors); err != nil {
		return nil, err
	}
	if err := checkStruct(input); err != nil {
		return nil, err
	}

	v, err := s.vendors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	v.Name = input.Name
	v.ContactPerson = input.ContactPerson
	v.Email = input.Email
	v.Phone = input.Phone
	v.Address = input.Address
	v.TaxID = input.TaxID
	v.PaymentTerms = input.PaymentTerms
	v.Categories = input.Categories
	if input.Status != "" {
		v.Status = input.Status
	}
	v.UpdatedAt = time.Now()

	if err := s.vendors.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// CreateBinding adds a cost center approver binding. A user may hold at
// most one binding per cost center.
func (s *vendorServiceImpl) CreateBinding(ctx context.Context, input ApproverBindingInput) (*entity.CostCenterApprover, error) {
	if _, err := s.requireUser(ctx, entity.PermissionManageUsers); err != nil {
		return nil, err
	}
	if err := checkStruct(input); err != nil {
		return nil, err
	}
	if input.ApprovalLimit.IsNegative() {
		return nil, errs.NewValidation("approval_limit", "must not be negative")
	}

	existing, err := s.approvers.FindBinding(ctx, input.UserID, input.CostCenter)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errs.NewValidation("cost_center",
			"user %s is already bound to cost center %s", input.UserID, input.CostCenter)
	}

	now := time.Now()
	b := &entity.CostCenterApprover{
		ID:            newBindingID(),
		UserID:        input.UserID,
		UserName:      input.UserName,
		UserEmail:     input.UserEmail,
		CostCenter:    input.CostCenter,
		ApprovalLimit: input.ApprovalLimit,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.approvers.Create(ctx, b); err != nil {
		return nil, err
	}

	s.logger.Info("Approver binding created",
		zap.String("id", b.ID),
		zap.String("user", b.UserID),
		zap.String("cost_center", b.CostCenter))
	return b, nil
}

func (s *vendorServiceImpl) ListBindings(ctx context.Context) ([]*entity.CostCenterApprover, error) {
	if _, err := s.identity.CurrentUser(ctx); err != nil {
		return nil, err
	}
	return s.approvers.List(ctx)
}

func (s *vendorServiceImpl) ListBindingsByCostCenter(ctx context.Context, costCenter string) ([]*entity.CostCenterApprover, error) {
	if _, err := s.identity.CurrentUser(ctx); err != nil {
		return nil, err
	}
	return s.approvers.ListByCostCenter(ctx, costCenter)
}

func (s *vendorServiceImpl) UpdateBinding(ctx context.Context, id string, input ApproverBindingInput) (*entity.CostCenterApprover, error) {
	if _, err := s.requireUser(ctx, entity.PermissionManageUsers); err != nil {
		return nil, err
	}
	if err := checkStruct(input); err != nil {
		return nil, err
	}
	if input.ApprovalLimit.IsNegative() {
		return nil, errs.NewValidation("approval_limit", "must not be negative")
	}

	b, err := s.approvers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.UserID != b.UserID || input.CostCenter != b.CostCenter {
		existing, err := s.approvers.FindBinding(ctx, input.UserID, input.CostCenter)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != id {
			return nil, errs.NewValidation("cost_center",
				"user %s is already bound to cost center %s", input.UserID, input.CostCenter)
		}
	}

	b.UserID = input.UserID
	b.UserName = input.UserName
	b.UserEmail = input.UserEmail
	b.CostCenter = input.CostCenter
	b.ApprovalLimit = input.ApprovalLimit
	b.UpdatedAt = time.Now()

	if err := s.approvers.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *vendorServiceImpl) DeleteBinding(ctx context.Context, id string) error {
	if _, err := s.requireUser(ctx, entity.PermissionManageUsers); err != nil {
		return err
	}
	return s.approvers.Delete(ctx, id)
}
