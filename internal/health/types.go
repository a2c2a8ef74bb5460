package health

import (
	"encoding/json"
	"time"
)

// HealthStatus represents the health state of an item.
type HealthStatus string

const (
	StatusOK      HealthStatus = "ok"
	StatusWarning HealthStatus = "warning"
	StatusError   HealthStatus = "error"
)

// Well-known item IDs.
const (
	ItemLanguageModel = "languageModel"
	ItemCatalog       = "catalog"
)

// HealthItem represents a single upstream dependency.
type HealthItem struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Status    HealthStatus `json:"status"`
	Message   string       `json:"message,omitempty"`
	Timestamp *time.Time   `json:"timestamp,omitempty"`
}

// MarshalJSON customizes JSON output to omit timestamp for OK status.
func (h HealthItem) MarshalJSON() ([]byte, error) {
	type Alias HealthItem
	alias := Alias(h)

	if h.Status == StatusOK {
		alias.Timestamp = nil
		alias.Message = ""
	}

	return json.Marshal(alias)
}

// HealthSummary provides an overview of system health.
type HealthSummary struct {
	OK        int  `json:"ok"`
	Warning   int  `json:"warning"`
	Error     int  `json:"error"`
	HasIssues bool `json:"hasIssues"`
}

// TestResult is the outcome of an on-demand check.
type TestResult struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}
