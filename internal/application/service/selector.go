package service

import (
	"context"

	"github.com/Intelygenai/paycyclexplorer/internal/application/port"
	"github.com/Intelygenai/paycyclexplorer/internal/domain/entity"
	"github.com/Intelygenai/paycyclexplorer/internal/domain/errs"
)

// firstActiveVendorSelector is the placeholder selection strategy: it
// assigns the first active vendor to every converted order. Real
// selection (category match, bidding) plugs in through the
// port.VendorSelector interface.
type firstActiveVendorSelector struct {
	vendors port.VendorRepository
}

// NewFirstActiveVendorSelector creates the default vendor selector.
func NewFirstActiveVendorSelector(vendors port.VendorRepository) port.VendorSelector {
	return &firstActiveVendorSelector{vendors: vendors}
}

func (s *firstActiveVendorSelector) SelectVendor(ctx context.Context, pr *entity.PurchaseRequisition) (*entity.Vendor, error) {
	active, err := s.vendors.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, errs.NewValidation("vendor", "no active vendor available for conversion")
	}
	return active[0], nil
}
