package issuance

// Status is the lifecycle position of an issuance attempt.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusPending   Status = "pending"
	StatusFulfilled Status = "fulfilled"
	StatusFailed    Status = "failed"
)

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return s == StatusFulfilled
}

// Snapshot is a point-in-time read of a Machine.
type Snapshot struct {
	Status Status
	// Code is set only when Status is StatusFulfilled.
	Code string
	// Reason is the user-facing failure text, set only when Status is
	// StatusFailed. It may be empty when the issuer gave no reason.
	Reason string
	// Err is the failure as reported by the issuer, set only when Status
	// is StatusFailed. It always carries a platform error code.
	Err error
	// Attempt counts the Issuer calls started so far.
	Attempt int
}

// Transition describes one state change.
type Transition struct {
	From     Status
	To       Status
	Snapshot Snapshot
}
