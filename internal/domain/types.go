package domain

// Status represents a lightweight state value.
type Status string

// Outcomes of a single post-booking side effect.
const (
	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)
