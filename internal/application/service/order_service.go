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

const orderEntity = "purchase order"

// CreateOrderInput carries the fields of a new draft order created
// directly, without a source requisition.
type CreateOrderInput struct {
	VendorID        string          `json:"vendor_id" validate:"required"`
	RequiredDate    time.Time       `json:"required_date"`
	ShippingAddress string          `json:"shipping_address" validate:"required"`
	BillingAddress  string          `json:"billing_address" validate:"required"`
	Currency        string          `json:"currency" validate:"required,len=3"`
	LineItems       []LineItemInput `json:"line_items" validate:"min=1,dive"`
}

// ReceiptLineInput is one delivered line within a goods receipt.
type ReceiptLineInput struct {
	LineItemID       string `json:"line_item_id" validate:"required"`
	QuantityReceived int64  `json:"quantity_received" validate:"required,gt=0"`
	Damaged          bool   `json:"damaged"`
	Notes            string `json:"notes,omitempty"`
}

// RecordReceiptInput carries one physical delivery against an order.
type RecordReceiptInput struct {
	Lines        []ReceiptLineInput `json:"lines" validate:"min=1,dive"`
	DeliveryNote string             `json:"delivery_note,omitempty"`
	Carrier      string             `json:"carrier,omitempty"`
}

// OrderService owns the purchase order lifecycle from draft through
// vendor dispatch and goods receipt.
type OrderService interface {
	Create(ctx context.Context, input CreateOrderInput) (*entity.PurchaseOrder, error)
	Get(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	List(ctx context.Context) ([]*entity.PurchaseOrder, error)
	Submit(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	Decide(ctx context.Context, id string, input DecisionInput) (*entity.PurchaseOrder, error)
	SendToVendor(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	RecordReceipt(ctx context.Context, id string, input RecordReceiptInput) (*entity.GoodsReceipt, error)
	Receipts(ctx context.Context, id string) ([]*entity.GoodsReceipt, error)
	GetReceipt(ctx context.Context, receiptID string) (*entity.GoodsReceipt, error)
}

type orderServiceImpl struct {
	orders       port.OrderRepository
	receipts     port.ReceiptRepository
	vendors      port.VendorRepository
	txManager    port.TransactionManager
	resolver     *ApprovalResolver
	identity     port.IdentityProvider
	docBuilder   port.OrderDocumentBuilder
	sink         port.NotificationSink
	locker       *entityLocker
	logger       *zap.Logger
}

// NewOrderService creates a new OrderService.
func NewOrderService(
	orders port.OrderRepository,
	receipts port.ReceiptRepository,
	vendors port.VendorRepository,
	txManager port.TransactionManager,
	resolver *ApprovalResolver,
	identity port.IdentityProvider,
	docBuilder port.OrderDocumentBuilder,
	sink port.NotificationSink,
	logger *zap.Logger,
) OrderService {
	return &orderServiceImpl{
		orders:       orders,
		receipts:     receipts,
		vendors:      vendors,
		txManager:    txManager,
		resolver:     resolver,
		identity:     identity,
		docBuilder:   docBuilder,
		sink:         sink,
		locker:       newEntityLocker(),
		logger:       logger,
	}
}

func (s *orderServiceImpl) requireUser(ctx context.Context, permission string) (*entity.User, error) {
	user, err := s.identity.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if !s.identity.HasPermission(user, permission) {
		return nil, errs.NewPermission(user.ID, permission)
	}
	return user, nil
}

// Create validates order data and persists a new DRAFT order against an
// active vendor.
func (s *orderServiceImpl) Create(ctx context.Context, input CreateOrderInput) (*entity.PurchaseOrder, error) {
	if _, err := s.requireUser(ctx, entity.PermissionCreatePO); err != nil {
		return nil, err
	}

	if err := checkStruct(input); err != nil {
		return nil, err
	}
	if err := checkLineItems(input.LineItems); err != nil {
		return nil, err
	}

	vendor, err := s.vendors.GetByID(ctx, input.VendorID)
	if err != nil {
		return nil, err
	}
	if !vendor.Active() {
		return nil, errs.NewValidation("vendor_id", "vendor %s is not active", vendor.ID)
	}

	now := time.Now()
	po := &entity.PurchaseOrder{
		ID:              newOrderID(),
		Vendor:          *vendor.Clone(),
		Status:          entity.POStatusDraft,
		DateCreated:     now,
		RequiredDate:    input.RequiredDate,
		LineItems:       buildLineItems(input.LineItems),
		ShippingAddress: input.ShippingAddress,
		BillingAddress:  input.BillingAddress,
		Currency:        input.Currency,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	po.PONumber = shortNumber(po.ID)
	po.Recalculate()

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.orders.Create(txCtx, po)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order created",
		zap.String("id", po.ID),
		zap.String("vendor", po.Vendor.ID),
		zap.String("total", po.TotalAmount.StringFixed(2)))
	return po, nil
}

func (s *orderServiceImpl) Get(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	if _, err := s.identity.CurrentUser(ctx); err != nil {
		return nil, err
	}
	return s.orders.GetByID(ctx, id)
}

func (s *orderServiceImpl) List(ctx context.Context) ([]*entity.PurchaseOrder, error) {
	if _, err := s.identity.CurrentUser(ctx); err != nil {
		return nil, err
	}
	return s.orders.List(ctx)
}

// Submit moves a draft order into PENDING_APPROVAL. Orders carry no cost
// center, so resolution falls through to the configured default approver
// unless bindings exist for the empty cost center.
func (s *orderServiceImpl) Submit(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	if _, err := s.requireUser(ctx, entity.PermissionCreatePO); err != nil {
		return nil, err
	}

	unlock := s.locker.Lock(id)
	defer unlock()

	po, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	machine := appwf.BuildOrderMachine(workflow.State(po.Status))
	if err := machine.Fire(ctx, workflow.TriggerSubmit); err != nil {
		return nil, errs.NewInvalidState(orderEntity, id, po.Status, "submit")
	}

	entries, err := s.resolver.Resolve(ctx, "", po.TotalAmount)
	if err != nil {
		return nil, err
	}

	previousVersion := po.Version
	po.Status = machine.State().String()
	po.Approvers = entries
	po.Version = previousVersion + 1
	po.UpdatedAt = time.Now()

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.orders.Update(txCtx, po, previousVersion)
	})
	if err != nil {
		return nil, err
	}

	for _, entry := range po.Approvers {
		s.notify(ctx, port.Notification{
			Kind:           port.NotifyApprovalRequested,
			RecipientName:  entry.ApproverName,
			RecipientEmail: entry.ApproverEmail,
			Subject:        fmt.Sprintf("Purchase order %s requires your approval", po.PONumber),
			Body: fmt.Sprintf("Order %s to %s for %s %s awaits your decision.",
				po.PONumber, po.Vendor.Name, po.TotalAmount.StringFixed(2), po.Currency),
		})
	}
	return po, nil
}

// Decide applies the calling approver's decision on the order, mirroring
// the requisition rules: one rejection is final, approval requires every
// entry approved, and an entry may be decided only once.
func (s *orderServiceImpl) Decide(ctx context.Context, id string, input DecisionInput) (*entity.PurchaseOrder, error) {
	user, err := s.requireUser(ctx, entity.PermissionApprovePO)
	if err != nil {
		return nil, err
	}

	if err := checkStruct(input); err != nil {
		return nil, err
	}

	unlock := s.locker.Lock(id)
	defer unlock()

	po, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	entry := entity.FindApprovalEntry(po.Approvers, user.ID)
	if entry == nil {
		return nil, errs.NewApproverNotFound(orderEntity, id, user.ID)
	}
	if entry.Decided() {
		return nil, errs.NewInvalidState(orderEntity, id, entry.Status, "decide again")
	}

	trigger := workflow.TriggerReject
	if input.Decision == entity.ApprovalApproved {
		trigger = workflow.TriggerApprove
	}

	entry.Status = input.Decision
	entry.Comment = input.Comment
	entry.DecidedAt = decisionTime()

	machine := appwf.BuildOrderMachine(workflow.State(po.Status))
	fireCtx := appwf.WithApprovalComplete(ctx, entity.AllApproved(po.Approvers))
	if err := machine.Fire(fireCtx, trigger); err != nil {
		return nil, errs.NewInvalidState(orderEntity, id, po.Status, "decide")
	}

	previousVersion := po.Version
	po.Status = machine.State().String()
	po.Version = previousVersion + 1
	po.UpdatedAt = time.Now()

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.orders.Update(txCtx, po, previousVersion)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order decision recorded",
		zap.String("id", po.ID),
		zap.String("approver", user.ID),
		zap.String("decision", input.Decision),
		zap.String("status", po.Status))
	return po, nil
}

// SendToVendor dispatches an approved order to its vendor. The rendered
// order document and the vendor notification are best-effort; the state
// transition stands even when either fails.
func (s *orderServiceImpl) SendToVendor(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	if _, err := s.requireUser(ctx, entity.PermissionApprovePO); err != nil {
		return nil, err
	}

	unlock := s.locker.Lock(id)
	defer unlock()

	po, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	machine := appwf.BuildOrderMachine(workflow.State(po.Status))
	if err := machine.Fire(ctx, workflow.TriggerSendToVendor); err != nil {
		return nil, errs.NewInvalidState(orderEntity, id, po.Status, "send to vendor")
	}

	previousVersion := po.Version
	po.Status = machine.State().String()
	po.Version = previousVersion + 1
	po.UpdatedAt = time.Now()

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.orders.Update(txCtx, po, previousVersion)
	})
	if err != nil {
		return nil, err
	}

	var attachments []string
	if s.docBuilder != nil {
		path, err := s.docBuilder.BuildOrderDocument(ctx, po)
		if err != nil {
			s.logger.Error("Order document rendering failed",
				zap.String("id", po.ID), zap.Error(err))
		} else {
			attachments = append(attachments, path)
		}
	}

	s.notify(ctx, port.Notification{
		Kind:           port.NotifyOrderSentToVendor,
		RecipientName:  po.Vendor.ContactPerson,
		RecipientEmail: po.Vendor.Email,
		Subject:        fmt.Sprintf("Purchase order %s", po.PONumber),
		Body: fmt.Sprintf("Please fulfill order %s (%s %s) by %s.",
			po.PONumber, po.TotalAmount.StringFixed(2), po.Currency,
			po.RequiredDate.Format("2006-01-02")),
		Attachments: attachments,
	})

	s.logger.Info("Order sent to vendor",
		zap.String("id", po.ID),
		zap.String("vendor", po.Vendor.ID))
	return po, nil
}

// RecordReceipt records one delivery against a dispatched order, tags each
// line with its cumulative fulfillment status and advances the order to
// PARTIALLY_FULFILLED or COMPLETED. The receipt and the order update share
// one transaction.
func (s *orderServiceImpl) RecordReceipt(ctx context.Context, id string, input RecordReceiptInput) (*entity.GoodsReceipt, error) {
	user, err := s.requireUser(ctx, entity.PermissionReceiveGoods)
	if err != nil {
		return nil, err
	}

	if err := checkStruct(input); err != nil {
		return nil, err
	}

	unlock := s.locker.Lock(id)
	defer unlock()

	po, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ordered := make(map[string]*entity.LineItem, len(po.LineItems))
	for i := range po.LineItems {
		ordered[po.LineItems[i].ID] = &po.LineItems[i]
	}
	for _, line := range input.Lines {
		if _, ok := ordered[line.LineItemID]; !ok {
			return nil, errs.NewNotFound("line item", line.LineItemID)
		}
	}

	received, err := s.receivedSoFar(ctx, po.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	gr := &entity.GoodsReceipt{
		ID:           newReceiptID(),
		POID:         po.ID,
		PONumber:     po.PONumber,
		ReceivedBy:   user.Actor(),
		DateReceived: now,
		DeliveryNote: input.DeliveryNote,
		Carrier:      input.Carrier,
	}
	gr.ReceiptNumber = shortNumber(gr.ID)

	for _, line := range input.Lines {
		item := ordered[line.LineItemID]
		received[line.LineItemID] += line.QuantityReceived
		gr.Lines = append(gr.Lines, entity.ReceiptLine{
			ID:               newLineItemID(),
			LineItemID:       item.ID,
			Description:      item.Description,
			QuantityOrdered:  item.Quantity,
			QuantityReceived: line.QuantityReceived,
			Status:           receiptLineStatus(line.Damaged, received[line.LineItemID], item.Quantity),
			Notes:            line.Notes,
		})
	}

	complete := true
	for itemID, item := range ordered {
		if received[itemID] < item.Quantity {
			complete = false
			break
		}
	}
	gr.Status = entity.ReceiptStatusPartial
	if complete {
		gr.Status = entity.ReceiptStatusCompleted
	}

	machine := appwf.BuildOrderMachine(workflow.State(po.Status))
	fireCtx := appwf.WithFulfillmentComplete(ctx, complete)
	if err := machine.Fire(fireCtx, workflow.TriggerRecordReceipt); err != nil {
		return nil, errs.NewInvalidState(orderEntity, id, po.Status, "record receipt")
	}

	previousVersion := po.Version
	po.Status = machine.State().String()
	po.Version = previousVersion + 1
	po.UpdatedAt = now

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.receipts.Create(txCtx, gr); err != nil {
			return err
		}
		return s.orders.Update(txCtx, po, previousVersion)
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, port.Notification{
		Kind:           port.NotifyOrderReceiptRecorded,
		RecipientName:  po.Vendor.ContactPerson,
		RecipientEmail: po.Vendor.Email,
		Subject:        fmt.Sprintf("Goods receipt %s recorded against order %s", gr.ReceiptNumber, po.PONumber),
		Body:           fmt.Sprintf("Receipt %s recorded; order is now %s.", gr.ReceiptNumber, po.Status),
	})

	s.logger.Info("Receipt recorded",
		zap.String("po_id", po.ID),
		zap.String("receipt_id", gr.ID),
		zap.String("order_status", po.Status))
	return gr, nil
}

func (s *orderServiceImpl) Receipts(ctx context.Context, id string) ([]*entity.GoodsReceipt, error) {
	if _, err := s.identity.CurrentUser(ctx); err != nil {
		return nil, err
	}
	if _, err := s.orders.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.receipts.ListByOrderID(ctx, id)
}

func (s *orderServiceImpl) GetReceipt(ctx context.Context, receiptID string) (*entity.GoodsReceipt, error) {
	if _, err := s.identity.CurrentUser(ctx); err != nil {
		return nil, err
	}
	return s.receipts.GetByID(ctx, receiptID)
}

// receivedSoFar sums prior deliveries per ordered line item.
func (s *orderServiceImpl) receivedSoFar(ctx context.Context, poID string) (map[string]int64, error) {
	prior, err := s.receipts.ListByOrderID(ctx, poID)
	if err != nil {
		return nil, err
	}
	totals := make(map[string]int64)
	for _, gr := range prior {
		for _, line := range gr.Lines {
			totals[line.LineItemID] += line.QuantityReceived
		}
	}
	return totals, nil
}

// receiptLineStatus tags one delivered line from its cumulative position.
// Damaged deliveries are tagged regardless of quantity; over-delivery is
// recorded as EXCESS, never rejected.
func receiptLineStatus(damaged bool, cumulative, orderedQty int64) string {
	switch {
	case damaged:
		return entity.ReceiptLineDamaged
	case cumulative > orderedQty:
		return entity.ReceiptLineExcess
	case cumulative >= orderedQty:
		return entity.ReceiptLineComplete
	default:
		return entity.ReceiptLinePartial
	}
}

func (s *orderServiceImpl) notify(ctx context.Context, n port.Notification) {
	if err := s.sink.Notify(ctx, n); err != nil {
		s.logger.Error("Notification dispatch failed",
			zap.String("kind", n.Kind),
			zap.String("recipient", n.RecipientEmail),
			zap.Error(err))
	}
}
