// Package memory implements the persistence ports on in-process maps.
// It backs tests and single-node deployments that do not need a durable
// database; behavior (not-found, version conflicts, deep copies) matches
// the SQLite implementation.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Intelygenai/paycyclexplorer/internal/application/port"
	"github.com/Intelygenai/paycyclexplorer/internal/domain/entity"
	"github.com/Intelygenai/paycyclexplorer/internal/domain/errs"
)

// Store holds all entities in memory. Every read returns a deep copy so
// callers can never mutate stored state without going through a write.
type Store struct {
	mu           sync.RWMutex
	requisitions map[string]*entity.PurchaseRequisition
	orders       map[string]*entity.PurchaseOrder
	receipts     map[string]*entity.GoodsReceipt
	receiptOrder []string
	vendors      map[string]*entity.Vendor
	bindings     map[string]*entity.CostCenterApprover
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		requisitions: make(map[string]*entity.PurchaseRequisition),
		orders:       make(map[string]*entity.PurchaseOrder),
		receipts:     make(map[string]*entity.GoodsReceipt),
		vendors:      make(map[string]*entity.Vendor),
		bindings:     make(map[string]*entity.CostCenterApprover),
	}
}

// WithTransaction implements port.TransactionManager. The store mutates
// under a single process-wide lock, so fn runs directly; atomicity across
// multiple writes is the caller's per-entity serialization.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// --- RequisitionRepository ---

func (s *Store) CreateRequisition(ctx context.Context, pr *entity.PurchaseRequisition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requisitions[pr.ID] = pr.Clone()
	return nil
}

func (s *Store) GetRequisition(ctx context.Context, id string) (*entity.PurchaseRequisition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pr, ok := s.requisitions[id]
	if !ok {
		return nil, errs.NewNotFound("purchase requisition", id)
	}
	return pr.Clone(), nil
}

func (s *Store) ListRequisitions(ctx context.Context) ([]*entity.PurchaseRequisition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.PurchaseRequisition, 0, len(s.requisitions))
	for _, pr := range s.requisitions {
		out = append(out, pr.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) UpdateRequisition(ctx context.Context, pr *entity.PurchaseRequisition, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.requisitions[pr.ID]
	if !ok {
		return errs.NewNotFound("purchase requisition", pr.ID)
	}
	if stored.Version != expectedVersion {
		return errs.NewConflict("purchase requisition", pr.ID, expectedVersion)
	}
	s.requisitions[pr.ID] = pr.Clone()
	return nil
}

// Requisitions returns the store as a port.RequisitionRepository.
func (s *Store) Requisitions() port.RequisitionRepository {
	return requisitionView{s}
}

type requisitionView struct{ s *Store }

func (v requisitionView) Create(ctx context.Context, pr *entity.PurchaseRequisition) error {
	return v.s.CreateRequisition(ctx, pr)
}
func (v requisitionView) GetByID(ctx context.Context, id string) (*entity.PurchaseRequisition, error) {
	return v.s.GetRequisition(ctx, id)
}
func (v requisitionView) List(ctx context.Context) ([]*entity.PurchaseRequisition, error) {
	return v.s.ListRequisitions(ctx)
}
func (v requisitionView) Update(ctx context.Context, pr *entity.PurchaseRequisition, expectedVersion int64) error {
	return v.s.UpdateRequisition(ctx, pr, expectedVersion)
}

// --- OrderRepository ---

func (s *Store) CreateOrder(ctx context.Context, po *entity.PurchaseOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[po.ID] = po.Clone()
	return nil
}

func (s *Store) GetOrder(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	po, ok := s.orders[id]
	if !ok {
		return nil, errs.NewNotFound("purchase order", id)
	}
	return po.Clone(), nil
}

func (s *Store) ListOrders(ctx context.Context) ([]*entity.PurchaseOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.PurchaseOrder, 0, len(s.orders))
	for _, po := range s.orders {
		out = append(out, po.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) UpdateOrder(ctx context.Context, po *entity.PurchaseOrder, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.orders[po.ID]
	if !ok {
		return errs.NewNotFound("purchase order", po.ID)
	}
	if stored.Version != expectedVersion {
		return errs.NewConflict("purchase order", po.ID, expectedVersion)
	}
	s.orders[po.ID] = po.Clone()
	return nil
}

// Orders returns the store as a port.OrderRepository.
func (s *Store) Orders() port.OrderRepository {
	return orderView{s}
}

type orderView struct{ s *Store }

func (v orderView) Create(ctx context.Context, po *entity.PurchaseOrder) error {
	return v.s.CreateOrder(ctx, po)
}
func (v orderView) GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return v.s.GetOrder(ctx, id)
}
func (v orderView) List(ctx context.Context) ([]*entity.PurchaseOrder, error) {
	return v.s.ListOrders(ctx)
}
func (v orderView) Update(ctx context.Context, po *entity.PurchaseOrder, expectedVersion int64) error {
	return v.s.UpdateOrder(ctx, po, expectedVersion)
}

// --- ReceiptRepository ---

func (s *Store) CreateReceipt(ctx context.Context, gr *entity.GoodsReceipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.receipts[gr.ID] = gr.Clone()
	s.receiptOrder = append(s.receiptOrder, gr.ID)
	return nil
}

func (s *Store) GetReceipt(ctx context.Context, id string) (*entity.GoodsReceipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	gr, ok := s.receipts[id]
	if !ok {
		return nil, errs.NewNotFound("goods receipt", id)
	}
	return gr.Clone(), nil
}

func (s *Store) ListReceiptsByOrder(ctx context.Context, poID string) ([]*entity.GoodsReceipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entity.GoodsReceipt
	for _, id := range s.receiptOrder {
		if gr := s.receipts[id]; gr != nil && gr.POID == poID {
			out = append(out, gr.Clone())
		}
	}
	return out, nil
}

// Receipts returns the store as a port.ReceiptRepository.
func (s *Store) Receipts() port.ReceiptRepository {
	return receiptView{s}
}

type receiptView struct{ s *Store }

func (v receiptView) Create(ctx context.Context, gr *entity.GoodsReceipt) error {
	return v.s.CreateReceipt(ctx, gr)
}
func (v receiptView) GetByID(ctx context.Context, id string) (*entity.GoodsReceipt, error) {
	return v.s.GetReceipt(ctx, id)
}
func (v receiptView) ListByOrderID(ctx context.Context, poID string) ([]*entity.GoodsReceipt, error) {
	return v.s.ListReceiptsByOrder(ctx, poID)
}

// --- VendorRepository ---

func (s *Store) CreateVendor(ctx context.Context, vendor *entity.Vendor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vendors[vendor.ID] = vendor.Clone()
	return nil
}

func (s *Store) GetVendor(ctx context.Context, id string) (*entity.Vendor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vendor, ok := s.vendors[id]
	if !ok {
		return nil, errs.NewNotFound("vendor", id)
	}
	return vendor.Clone(), nil
}

func (s *Store) ListVendors(ctx context.Context) ([]*entity.Vendor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.Vendor, 0, len(s.vendors))
	for _, vendor := range s.vendors {
		out = append(out, vendor.Clone())
	}
	sortVendors(out)
	return out, nil
}

func (s *Store) ListActiveVendors(ctx context.Context) ([]*entity.Vendor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entity.Vendor
	for _, vendor := range s.vendors {
		if vendor.Active() {
			out = append(out, vendor.Clone())
		}
	}
	sortVendors(out)
	return out, nil
}

func (s *Store) UpdateVendor(ctx context.Context, vendor *entity.Vendor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vendors[vendor.ID]; !ok {
		return errs.NewNotFound("vendor", vendor.ID)
	}
	s.vendors[vendor.ID] = vendor.Clone()
	return nil
}

func sortVendors(vendors []*entity.Vendor) {
	sort.Slice(vendors, func(i, j int) bool { return vendors[i].Name < vendors[j].Name })
}

// Vendors returns the store as a port.VendorRepository.
func (s *Store) Vendors() port.VendorRepository {
	return vendorView{s}
}

type vendorView struct{ s *Store }

func (v vendorView) Create(ctx context.Context, vendor *entity.Vendor) error {
	return v.s.CreateVendor(ctx, vendor)
}
func (v vendorView) GetByID(ctx context.Context, id string) (*entity.Vendor, error) {
	return v.s.GetVendor(ctx, id)
}
func (v vendorView) List(ctx context.Context) ([]*entity.Vendor, error) {
	return v.s.ListVendors(ctx)
}
func (v vendorView) ListActive(ctx context.Context) ([]*entity.Vendor, error) {
	return v.s.ListActiveVendors(ctx)
}
func (v vendorView) Update(ctx context.Context, vendor *entity.Vendor) error {
	return v.s.UpdateVendor(ctx, vendor)
}

// --- ApproverRepository ---

func (s *Store) CreateBinding(ctx context.Context, b *entity.CostCenterApprover) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bindings[b.ID] = cloneBinding(b)
	return nil
}

func (s *Store) GetBinding(ctx context.Context, id string) (*entity.CostCenterApprover, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bindings[id]
	if !ok {
		return nil, errs.NewNotFound("approver binding", id)
	}
	return cloneBinding(b), nil
}

func (s *Store) ListBindings(ctx context.Context) ([]*entity.CostCenterApprover, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.CostCenterApprover, 0, len(s.bindings))
	for _, b := range s.bindings {
		out = append(out, cloneBinding(b))
	}
	sortBindings(out)
	return out, nil
}

func (s *Store) ListBindingsByCostCenter(ctx context.Context, costCenter string) ([]*entity.CostCenterApprover, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entity.CostCenterApprover
	for _, b := range s.bindings {
		if b.CostCenter == costCenter {
			out = append(out, cloneBinding(b))
		}
	}
	sortBindings(out)
	return out, nil
}

func (s *Store) FindBinding(ctx context.Context, userID, costCenter string) (*entity.CostCenterApprover, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.bindings {
		if b.UserID == userID && b.CostCenter == costCenter {
			return cloneBinding(b), nil
		}
	}
	return nil, nil
}

func (s *Store) UpdateBinding(ctx context.Context, b *entity.CostCenterApprover) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bindings[b.ID]; !ok {
		return errs.NewNotFound("approver binding", b.ID)
	}
	s.bindings[b.ID] = cloneBinding(b)
	return nil
}

func (s *Store) DeleteBinding(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bindings[id]; !ok {
		return errs.NewNotFound("approver binding", id)
	}
	delete(s.bindings, id)
	return nil
}

func cloneBinding(b *entity.CostCenterApprover) *entity.CostCenterApprover {
	out := *b
	return &out
}

func sortBindings(bindings []*entity.CostCenterApprover) {
	sort.Slice(bindings, func(i, j int) bool {
		if bindings[i].CostCenter != bindings[j].CostCenter {
			return bindings[i].CostCenter < bindings[j].CostCenter
		}
		return bindings[i].UserID < bindings[j].UserID
	})
}

// Approvers returns the store as a port.ApproverRepository.
func (s *Store) Approvers() port.ApproverRepository {
	return approverView{s}
}

type approverView struct{ s *Store }

func (v approverView) Create(ctx context.Context, b *entity.CostCenterApprover) error {
	return v.s.CreateBinding(ctx, b)
}
func (v approverView) GetByID(ctx context.Context, id string) (*entity.CostCenterApprover, error) {
	return v.s.GetBinding(ctx, id)
}
func (v approverView) List(ctx context.Context) ([]*entity.CostCenterApprover, error) {
	return v.s.ListBindings(ctx)
}
func (v approverView) ListByCostCenter(ctx context.Context, costCenter string) ([]*entity.CostCenterApprover, error) {
	return v.s.ListBindingsByCostCenter(ctx, costCenter)
}
func (v approverView) FindBinding(ctx context.Context, userID, costCenter string) (*entity.CostCenterApprover, error) {
	return v.s.FindBinding(ctx, userID, costCenter)
}
func (v approverView) Update(ctx context.Context, b *entity.CostCenterApprover) error {
	return v.s.UpdateBinding(ctx, b)
}
func (v approverView) Delete(ctx context.Context, id string) error {
	return v.s.DeleteBinding(ctx, id)
}

// Verify interface compliance
var _ port.TransactionManager = (*Store)(nil)
