package service

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Intelygenai/paycyclexplorer/internal/domain/entity"
	"github.com/Intelygenai/paycyclexplorer/internal/domain/errs"
)

var validate = validator.New()

// LineItemInput is one line item supplied to a create or update operation.
type LineItemInput struct {
	Description  string          `json:"description" validate:"required"`
	Category     string          `json:"category" validate:"required"`
	Quantity     int64           `json:"quantity" validate:"required,gt=0"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	DeliveryDate *time.Time      `json:"delivery_date,omitempty"`
	Notes        string          `json:"notes,omitempty"`
}

// checkStruct runs the tag-based validator and translates the first
// failure into a domain ValidationError.
func checkStruct(input interface{}) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return errs.NewValidation(strings.ToLower(fe.Field()), "violates %q constraint", fe.Tag())
	}
	return errs.NewValidation("", "%v", err)
}

// checkLineItems applies the validation rules the tag validator cannot
// express: decimal prices must be strictly positive.
func checkLineItems(items []LineItemInput) error {
	if len(items) == 0 {
		return errs.NewValidation("line_items", "at least one line item is required")
	}
	for i := range items {
		if !items[i].UnitPrice.IsPositive() {
			return errs.NewValidation("unit_price", "must be greater than zero for line %d", i+1)
		}
	}
	return nil
}

// buildLineItems materializes input lines as owned line items with fresh
// identities and consistent totals.
func buildLineItems(items []LineItemInput) []entity.LineItem {
	out := make([]entity.LineItem, len(items))
	for i, in := range items {
		li := entity.LineItem{
			ID:           uuid.NewString(),
			Description:  in.Description,
			Category:     in.Category,
			Quantity:     in.Quantity,
			UnitPrice:    in.UnitPrice,
			DeliveryDate: in.DeliveryDate,
			Notes:        in.Notes,
		}
		li.Recalculate()
		out[i] = li
	}
	return out
}
