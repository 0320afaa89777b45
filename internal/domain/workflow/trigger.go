package workflow

// Trigger represents an action that can cause a state transition.
type Trigger string

const (
	TriggerSubmit        Trigger = "SUBMIT"
	TriggerApprove       Trigger = "APPROVE"
	TriggerReject        Trigger = "REJECT"
	TriggerConvert       Trigger = "CONVERT"
	TriggerSendToVendor  Trigger = "SEND_TO_VENDOR"
	TriggerRecordReceipt Trigger = "RECORD_RECEIPT"
)

// String returns the string representation of the trigger.
func (t Trigger) String() string {
	return string(t)
}
