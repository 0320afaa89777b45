package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Document ids are human-readable, time-ordered numbers like the ones
// procurement staff quote in email: PR-..., PO-..., GR-....
func newRequisitionID() string {
	return fmt.Sprintf("PR-%d", time.Now().UnixNano())
}

func newOrderID() string {
	return fmt.Sprintf("PO-%d", time.Now().UnixNano())
}

func newReceiptID() string {
	return fmt.Sprintf("GR-%d", time.Now().UnixNano())
}

func newLineItemID() string {
	return uuid.NewString()
}

func newVendorID() string {
	return fmt.Sprintf("VND-%d", time.Now().UnixNano())
}

func newBindingID() string {
	return uuid.NewString()
}

// shortNumber derives the quoted document number from a document id by
// keeping the prefix and the trailing digits.
func shortNumber(id string) string {
	if len(id) <= 11 {
		return id
	}
	return id[:3] + id[len(id)-8:]
}
