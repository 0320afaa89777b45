package port

import (
	"context"

	"github.com/Intelygenai/paycyclexplorer/internal/domain/entity"
)

// VendorSelector chooses the vendor for a purchase order produced by
// requisition conversion. Real selection logic (category match, bidding)
// is an injected strategy; the default picks the first active vendor.
type VendorSelector interface {
	SelectVendor(ctx context.Context, pr *entity.PurchaseRequisition) (*entity.Vendor, error)
}

// OrderDocumentBuilder renders a purchase order into a document suitable
// for sending to the vendor and returns the file path.
type OrderDocumentBuilder interface {
	BuildOrderDocument(ctx context.Context, po *entity.PurchaseOrder) (string, error)
}
