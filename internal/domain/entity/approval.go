package entity

import "time"

// Actor identifies a person referenced by a document (requester, approver,
// receiver).
type Actor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// ApprovalEntry records one approver's decision on a requisition or order.
// The decision fields (status, comment, decided-at) are set together by a
// single decision action and never unset.
type ApprovalEntry struct {
	ID            string     `json:"id"`
	ApproverID    string     `json:"approver_id"`
	ApproverName  string     `json:"approver_name"`
	ApproverEmail string     `json:"approver_email"`
	Status        string     `json:"status"`
	Comment       string     `json:"comment,omitempty"`
	DecidedAt     *time.Time `json:"decided_at,omitempty"`
}

// Decided reports whether this entry already carries a decision.
func (a *ApprovalEntry) Decided() bool {
	return a.Status != ApprovalPending
}

// Clone returns an independent copy of the approval entry.
func (a *ApprovalEntry) Clone() ApprovalEntry {
	out := *a
	if a.DecidedAt != nil {
		t := *a.DecidedAt
		out.DecidedAt = &t
	}
	return out
}

// CloneApprovalEntries returns independent copies of all entries.
func CloneApprovalEntries(entries []ApprovalEntry) []ApprovalEntry {
	if entries == nil {
		return nil
	}
	out := make([]ApprovalEntry, len(entries))
	for i := range entries {
		out[i] = entries[i].Clone()
	}
	return out
}

// AllApproved reports whether every entry carries an APPROVED decision.
// An empty entry list is not considered approved.
func AllApproved(entries []ApprovalEntry) bool {
	if len(entries) == 0 {
		return false
	}
	for i := range entries {
		if entries[i].Status != ApprovalApproved {
			return false
		}
	}
	return true
}

// FindApprovalEntry returns the entry belonging to the given approver, or
// nil if the approver has no entry on the document.
func FindApprovalEntry(entries []ApprovalEntry, approverID string) *ApprovalEntry {
	for i := range entries {
		if entries[i].ApproverID == approverID {
			return &entries[i]
		}
	}
	return nil
}
