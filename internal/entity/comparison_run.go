package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ComparisonRun represents a persisted comparison for data transfer between layers.
type ComparisonRun struct {
	ID            uuid.UUID       `json:"id"`
	RequestID     string          `json:"request_id"`
	POSource      string          `json:"po_source"`
	InvoiceSource string          `json:"invoice_source"`
	POType        string          `json:"po_type"`
	InvoiceType   string          `json:"invoice_type"`
	Status        string          `json:"status"`
	ErrorCode     *string         `json:"error_code,omitempty"`
	ErrorMessage  *string         `json:"error_message,omitempty"`
	OverallFlag   *bool           `json:"overall_flag,omitempty"`
	Reasoner      string          `json:"reasoner"`
	Report        json.RawMessage `json:"report,omitempty"`
	StartedAt     time.Time       `json:"started_at"`
	FinishedAt    time.Time       `json:"finished_at"`
}
