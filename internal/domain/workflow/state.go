package workflow

// State represents a document state in the procure-to-pay lifecycle.
// Requisitions and orders share one state vocabulary; each machine only
// configures the subset it can reach.
type State string

const (
	StateDraft              State = "DRAFT"
	StatePendingApproval    State = "PENDING_APPROVAL"
	StateApproved           State = "APPROVED"
	StateRejected           State = "REJECTED"
	StateConvertedToPO      State = "CONVERTED_TO_PO"
	StateSentToVendor       State = "SENT_TO_VENDOR"
	StatePartiallyFulfilled State = "PARTIALLY_FULFILLED"
	StateCompleted          State = "COMPLETED"
)

var validStates = map[State]bool{
	StateDraft:              true,
	StatePendingApproval:    true,
	StateApproved:           true,
	StateRejected:           true,
	StateConvertedToPO:      true,
	StateSentToVendor:       true,
	StatePartiallyFulfilled: true,
	StateCompleted:          true,
}

var terminalStates = map[State]bool{
	StateRejected:      true,
	StateConvertedToPO: true,
	StateCompleted:     true,
}

// IsTerminal returns true if the state permits no further transitions.
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is part of the lifecycle vocabulary.
func (s State) IsValid() bool {
	return validStates[s]
}
