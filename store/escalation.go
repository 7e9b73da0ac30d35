package store

// NotifyStatus is the delivery state of the operator notification attached
// to an escalation record.
type NotifyStatus string

const (
	NotifyPending NotifyStatus = "PENDING"
	NotifySent    NotifyStatus = "SENT"
	NotifyFailed  NotifyStatus = "FAILED"
)

// EscalationRecord is the audit row written for every completed handoff.
// The record is persisted before the operator is notified, so a lost
// notification still leaves a trace.
type EscalationRecord struct {
	// ID is a short unique identifier shown to the operator.
	ID           string
	UserID       string
	Contact      string
	Message      string
	Reason       string
	NotifyStatus NotifyStatus
	CreatedTs    int64
}
