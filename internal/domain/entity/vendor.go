package entity

import "time"

// Vendor is an independently managed supplier record. Orders reference
// vendors; they never own them.
type Vendor struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	ContactPerson string    `json:"contact_person"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Address       string    `json:"address"`
	TaxID         string    `json:"tax_id"`
	PaymentTerms  string    `json:"payment_terms"`
	Categories    []string  `json:"categories"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Active reports whether the vendor can be assigned to new orders.
func (v *Vendor) Active() bool {
	return v.Status == VendorStatusActive
}

// Clone returns an independent copy of the vendor.
func (v *Vendor) Clone() *Vendor {
	out := *v
	if v.Categories != nil {
		out.Categories = make([]string, len(v.Categories))
		copy(out.Categories, v.Categories)
	}
	return &out
}
