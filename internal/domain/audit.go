package domain

import "time"

const (
	AuditProviderDown      = "provider.down"
	AuditProviderReset     = "provider.reset"
	AuditProviderRecovered = "provider.recovered"
	AuditOwnershipResolved = "ownership.resolved"
)

// AuditEvent is a structured event handed to the audit sink.
type AuditEvent struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Subject   string         `json:"subject"`
	Fields    map[string]any `json:"fields,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}
