package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Intelygenai/paycyclexplorer/internal/application/port"
	appwf "github.com/Intelygenai/paycyclexplorer/internal/application/workflow"
	"github.com/Intelygenai/paycyclexplorer/internal/domain/entity"
	"github.com/Intelygenai/paycyclexplorer/internal/domain/errs"
	"github.com/Intelygenai/paycyclexplorer/internal/domain/workflow"
)

const requisitionEntity = "purchase requisition"

// CreateRequisitionInput carries the fields of a new draft requisition.
type CreateRequisitionInput struct {
	Department    string          `json:"department" validate:"required"`
	CostCenter    string          `json:"cost_center" validate:"required"`
	BudgetCode    string          `json:"budget_code" validate:"required"`
	Justification string          `json:"justification" validate:"required"`
	DateNeeded    time.Time       `json:"date_needed"`
	LineItems     []LineItemInput `json:"line_items" validate:"min=1,dive"`
}

// UpdateRequisitionInput replaces the editable fields of a draft
// requisition. Line items are replaced wholesale.
type UpdateRequisitionInput struct {
	Department    string          `json:"department" validate:"required"`
	CostCenter    string          `json:"cost_center" validate:"required"`
	BudgetCode    string          `json:"budget_code" validate:"required"`
	Justification string          `json:"justification" validate:"required"`
	DateNeeded    time.Time       `json:"date_needed"`
	LineItems     []LineItemInput `json:"line_items" validate:"min=1,dive"`
}

// DecisionInput carries one approver's decision.
type DecisionInput struct {
	Decision string `json:"decision" validate:"required,oneof=APPROVED REJECTED"`
	Comment  string `json:"comment,omitempty"`
}

// ConversionResult is the outcome of a requisition-to-order conversion.
type ConversionResult struct {
	Requisition *entity.PurchaseRequisition `json:"requisition"`
	Order       *entity.PurchaseOrder       `json:"order"`
}

// ConversionConfig supplies the order fields that do not come from the
// source requisition.
type ConversionConfig struct {
	ShippingAddress string
	BillingAddress  string
	Currency        string
}

// RequisitionService owns the purchase requisition lifecycle.
type RequisitionService interface {
	Create(ctx context.Context, input CreateRequisitionInput) (*entity.PurchaseRequisition, error)
	Update(ctx context.Context, id string, input UpdateRequisitionInput) (*entity.PurchaseRequisition, error)
	Get(ctx context.Context, id string) (*entity.PurchaseRequisition, error)
	List(ctx context.Context) ([]*entity.PurchaseRequisition, error)
	Submit(ctx context.Context, id string) (*entity.PurchaseRequisition, error)
	Decide(ctx context.Context, id string, input DecisionInput) (*entity.PurchaseRequisition, error)
	ConvertToPO(ctx context.Context, id string) (*ConversionResult, error)
}

type requisitionServiceImpl struct {
	requisitions port.RequisitionRepository
	orders       port.OrderRepository
	approvers    port.ApproverRepository
	txManager    port.TransactionManager
	resolver     *ApprovalResolver
	identity     port.IdentityProvider
	selector     port.VendorSelector
	sink         port.NotificationSink
	locker       *entityLocker
	conversion   ConversionConfig
	enforceLimit bool
	logger       *zap.Logger
}

// NewRequisitionService creates a new RequisitionService.
func NewRequisitionService(
	requisitions port.RequisitionRepository,
	orders port.OrderRepository,
	approvers port.ApproverRepository,
	txManager port.TransactionManager,
	resolver *ApprovalResolver,
	identity port.IdentityProvider,
	selector port.VendorSelector,
	sink port.NotificationSink,
	conversion ConversionConfig,
	enforceLimit bool,
	logger *zap.Logger,
) RequisitionService {
	return &requisitionServiceImpl{
		requisitions: requisitions,
		orders:       orders,
		approvers:    approvers,
		txManager:    txManager,
		resolver:     resolver,
		identity:     identity,
		selector:     selector,
		sink:         sink,
		locker:       newEntityLocker(),
		conversion:   conversion,
		enforceLimit: enforceLimit,
		logger:       logger,
	}
}

func (s *requisitionServiceImpl) requireUser(ctx context.Context, permission string) (*entity.User, error) {
	user, err := s.identity.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if !s.identity.HasPermission(user, permission) {
		return nil, errs.NewPermission(user.ID, permission)
	}
	return user, nil
}

// Create validates draft data and persists a new DRAFT requisition. The
// whole document is rejected when any line item or required field is
// invalid; there is no partial creation.
func (s *requisitionServiceImpl) Create(ctx context.Context, input CreateRequisitionInput) (*entity.PurchaseRequisition, error) {
	user, err := s.requireUser(ctx, entity.PermissionCreatePR)
	if err != nil {
		return nil, err
	}

	if err := checkStruct(input); err != nil {
		return nil, err
	}
	if err := checkLineItems(input.LineItems); err != nil {
		return nil, err
	}
	if input.DateNeeded.IsZero() {
		return nil, errs.NewValidation("date_needed", "is required")
	}

	now := time.Now()
	pr := &entity.PurchaseRequisition{
		ID:            newRequisitionID(),
		Requester:     user.Actor(),
		Department:    input.Department,
		CostCenter:    input.CostCenter,
		BudgetCode:    input.BudgetCode,
		Justification: input.Justification,
		Status:        entity.PRStatusDraft,
		DateCreated:   now,
		DateNeeded:    input.DateNeeded,
		LineItems:     buildLineItems(input.LineItems),
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	pr.Recalculate()

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.requisitions.Create(txCtx, pr)
	})
	if err != nil {
		s.logger.Error("Failed to create requisition", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Requisition created",
		zap.String("id", pr.ID),
		zap.String("requester", user.ID),
		zap.String("total", pr.TotalAmount.StringFixed(2)))
	return pr, nil
}

// Update replaces a draft requisition's editable fields. Only the
// requester may edit, and only while the document is DRAFT.
func (s *requisitionServiceImpl) Update(ctx context.Context, id string, input UpdateRequisitionInput) (*entity.PurchaseRequisition, error) {
	user, err := s.requireUser(ctx, entity.PermissionCreatePR)
	if err != nil {
		return nil, err
	}

	if err := checkStruct(input); err != nil {
		return nil, err
	}
	if err := checkLineItems(input.LineItems); err != nil {
		return nil, err
	}

	unlock := s.locker.Lock(id)
	defer unlock()

	pr, err := s.requisitions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pr.Requester.ID != user.ID {
		return nil, errs.NewPermission(user.ID, entity.PermissionCreatePR)
	}
	if pr.Status != entity.PRStatusDraft {
		return nil, errs.NewInvalidState(requisitionEntity, id, pr.Status, "update")
	}

	previousVersion := pr.Version
	pr.Department = input.Department
	pr.CostCenter = input.CostCenter
	pr.BudgetCode = input.BudgetCode
	pr.Justification = input.Justification
	if !input.DateNeeded.IsZero() {
		pr.DateNeeded = input.DateNeeded
	}
	pr.LineItems = buildLineItems(input.LineItems)
	pr.Recalculate()
	pr.Version = previousVersion + 1
	pr.UpdatedAt = time.Now()

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.requisitions.Update(txCtx, pr, previousVersion)
	})
	if err != nil {
		return nil, err
	}
	return pr, nil
}

func (s *requisitionServiceImpl) Get(ctx context.Context, id string) (*entity.PurchaseRequisition, error) {
	if _, err := s.identity.CurrentUser(ctx); err != nil {
		return nil, err
	}
	return s.requisitions.GetByID(ctx, id)
}

func (s *requisitionServiceImpl) List(ctx context.Context) ([]*entity.PurchaseRequisition, error) {
	if _, err := s.identity.CurrentUser(ctx); err != nil {
		return nil, err
	}
	return s.requisitions.List(ctx)
}

// Submit moves a draft requisition into PENDING_APPROVAL, resolving and
// attaching the required approvers. Approver notifications are dispatched
// after the state change commits and never affect its outcome.
func (s *requisitionServiceImpl) Submit(ctx context.Context, id string) (*entity.PurchaseRequisition, error) {
	if _, err := s.requireUser(ctx, entity.PermissionCreatePR); err != nil {
		return nil, err
	}

	unlock := s.locker.Lock(id)
	defer unlock()

	pr, err := s.requisitions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	machine := appwf.BuildRequisitionMachine(workflow.State(pr.Status))
	if err := machine.Fire(ctx, workflow.TriggerSubmit); err != nil {
		return nil, errs.NewInvalidState(requisitionEntity, id, pr.Status, "submit")
	}

	entries, err := s.resolver.Resolve(ctx, pr.CostCenter, pr.TotalAmount)
	if err != nil {
		return nil, err
	}

	previousVersion := pr.Version
	pr.Status = machine.State().String()
	pr.Approvers = entries
	pr.Version = previousVersion + 1
	pr.UpdatedAt = time.Now()

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.requisitions.Update(txCtx, pr, previousVersion)
	})
	if err != nil {
		return nil, err
	}

	for _, entry := range pr.Approvers {
		s.notify(ctx, port.Notification{
			Kind:           port.NotifyApprovalRequested,
			RecipientName:  entry.ApproverName,
			RecipientEmail: entry.ApproverEmail,
			Subject:        fmt.Sprintf("Purchase requisition %s requires your approval", pr.ID),
			Body: fmt.Sprintf("%s submitted requisition %s for %s %s (cost center %s).",
				pr.Requester.Name, pr.ID, pr.TotalAmount.StringFixed(2), s.conversion.Currency, pr.CostCenter),
		})
	}

	s.logger.Info("Requisition submitted",
		zap.String("id", pr.ID),
		zap.Int("approvers", len(pr.Approvers)))
	return pr, nil
}

// Decide applies the calling approver's decision. A single rejection is
// final for the whole document; approval is reached only when every
// entry is approved. Deciding twice on the same entry is rejected.
func (s *requisitionServiceImpl) Decide(ctx context.Context, id string, input DecisionInput) (*entity.PurchaseRequisition, error) {
	user, err := s.requireUser(ctx, entity.PermissionApprovePR)
	if err != nil {
		return nil, err
	}

	if err := checkStruct(input); err != nil {
		return nil, err
	}

	unlock := s.locker.Lock(id)
	defer unlock()

	pr, err := s.requisitions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	entry := entity.FindApprovalEntry(pr.Approvers, user.ID)
	if entry == nil {
		return nil, errs.NewApproverNotFound(requisitionEntity, id, user.ID)
	}
	if entry.Decided() {
		return nil, errs.NewInvalidState(requisitionEntity, id, entry.Status, "decide again")
	}

	trigger := workflow.TriggerReject
	if input.Decision == entity.ApprovalApproved {
		trigger = workflow.TriggerApprove
		if s.enforceLimit {
			binding, err := s.approvers.FindBinding(ctx, user.ID, pr.CostCenter)
			if err != nil {
				return nil, err
			}
			if binding != nil && !binding.Covers(pr.TotalAmount) {
				return nil, errs.NewValidation("total_amount",
					"amount %s exceeds approval limit %s of approver %s",
					pr.TotalAmount.StringFixed(2), binding.ApprovalLimit.StringFixed(2), user.ID)
			}
		}
	}

	entry.Status = input.Decision
	entry.Comment = input.Comment
	entry.DecidedAt = decisionTime()

	machine := appwf.BuildRequisitionMachine(workflow.State(pr.Status))
	fireCtx := appwf.WithApprovalComplete(ctx, entity.AllApproved(pr.Approvers))
	if err := machine.Fire(fireCtx, trigger); err != nil {
		return nil, errs.NewInvalidState(requisitionEntity, id, pr.Status, "decide")
	}

	previousVersion := pr.Version
	pr.Status = machine.State().String()
	pr.Version = previousVersion + 1
	pr.UpdatedAt = time.Now()

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.requisitions.Update(txCtx, pr, previousVersion)
	})
	if err != nil {
		return nil, err
	}

	switch pr.Status {
	case entity.PRStatusApproved:
		s.notify(ctx, port.Notification{
			Kind:           port.NotifyRequisitionApproved,
			RecipientName:  pr.Requester.Name,
			RecipientEmail: pr.Requester.Email,
			Subject:        fmt.Sprintf("Purchase requisition %s fully approved", pr.ID),
			Body:           fmt.Sprintf("Requisition %s has been approved by all required approvers.", pr.ID),
		})
	case entity.PRStatusRejected:
		s.notify(ctx, port.Notification{
			Kind:           port.NotifyRequisitionRejected,
			RecipientName:  pr.Requester.Name,
			RecipientEmail: pr.Requester.Email,
			Subject:        fmt.Sprintf("Purchase requisition %s rejected", pr.ID),
			Body:           fmt.Sprintf("Requisition %s was rejected by %s: %s", pr.ID, user.Name, input.Comment),
		})
	}

	s.logger.Info("Requisition decision recorded",
		zap.String("id", pr.ID),
		zap.String("approver", user.ID),
		zap.String("decision", input.Decision),
		zap.String("status", pr.Status))
	return pr, nil
}

// ConvertToPO converts an APPROVED requisition into a new draft purchase
// order. The order creation and the requisition status flip share one
// transaction; readers never observe one without the other.
func (s *requisitionServiceImpl) ConvertToPO(ctx context.Context, id string) (*ConversionResult, error) {
	if _, err := s.requireUser(ctx, entity.PermissionCreatePO); err != nil {
		return nil, err
	}

	unlock := s.locker.Lock(id)
	defer unlock()

	pr, err := s.requisitions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	machine := appwf.BuildRequisitionMachine(workflow.State(pr.Status))
	if err := machine.Fire(ctx, workflow.TriggerConvert); err != nil {
		return nil, errs.NewInvalidState(requisitionEntity, id, pr.Status, "convert to purchase order")
	}

	vendor, err := s.selector.SelectVendor(ctx, pr)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	po := &entity.PurchaseOrder{
		ID:              newOrderID(),
		PRID:            pr.ID,
		Vendor:          *vendor.Clone(),
		Status:          entity.POStatusDraft,
		DateCreated:     now,
		RequiredDate:    pr.DateNeeded,
		LineItems:       copyLineItems(pr.LineItems),
		ShippingAddress: s.conversion.ShippingAddress,
		BillingAddress:  s.conversion.BillingAddress,
		Currency:        s.conversion.Currency,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	po.PONumber = shortNumber(po.ID)
	po.Recalculate()

	previousVersion := pr.Version
	pr.Status = machine.State().String()
	pr.Version = previousVersion + 1
	pr.UpdatedAt = now

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.orders.Create(txCtx, po); err != nil {
			return err
		}
		return s.requisitions.Update(txCtx, pr, previousVersion)
	})
	if err != nil {
		s.logger.Error("Conversion failed", zap.String("pr_id", pr.ID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Requisition converted",
		zap.String("pr_id", pr.ID),
		zap.String("po_id", po.ID),
		zap.String("vendor", po.Vendor.ID))
	return &ConversionResult{Requisition: pr, Order: po}, nil
}

func (s *requisitionServiceImpl) notify(ctx context.Context, n port.Notification) {
	if err := s.sink.Notify(ctx, n); err != nil {
		s.logger.Error("Notification dispatch failed",
			zap.String("kind", n.Kind),
			zap.String("recipient", n.RecipientEmail),
			zap.Error(err))
	}
}

// copyLineItems produces line items with fresh identities so that
// post-conversion edits to either document cannot affect the other.
func copyLineItems(items []entity.LineItem) []entity.LineItem {
	out := entity.CloneLineItems(items)
	for i := range out {
		out[i].ID = newLineItemID()
	}
	return out
}
