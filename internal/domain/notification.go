package domain

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// Notification is a transient message shown to the user.
type Notification struct {
	ID       string   `json:"id"`
	Message  string   `json:"message"`
	Severity Severity `json:"type"`
}
