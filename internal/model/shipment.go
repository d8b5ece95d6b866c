package model

import (
	"slices"
	"time"
)

// Sentinels for fields that could not be resolved. Every ShipmentRecord
// field is always populated with either a canonical value or one of these.
const (
	UnknownPort = "UNKNOWN_PORT"
	Unknown     = "UNKNOWN"
)

// Review flags. Once added during a run a flag is never removed; each
// marks a condition that needs human attention downstream.
const (
	FlagAmbiguousDG      = "AMBIGUOUS_DG"
	FlagUnmatchedPort    = "UNMATCHED_PORT"
	FlagInsufficientData = "INSUFFICIENT_DATA"
)

// ShipmentRecord is the authoritative structured result for one email.
// Immutable once assembled by the rule engine; ports are canonical
// UN/LOCODEs or UnknownPort, incoterm and product line are canonical
// values or Unknown.
type ShipmentRecord struct {
	EmailID             string   `json:"id"`
	ProductLine         string   `json:"product_line"`
	OriginPort          string   `json:"origin_port_code"`
	OriginPortName      string   `json:"origin_port_name,omitempty"`
	DestinationPort     string   `json:"destination_port_code"`
	DestinationPortName string   `json:"destination_port_name,omitempty"`
	Incoterm            string   `json:"incoterm"`
	CargoWeightKG       *float64 `json:"cargo_weight_kg"`
	CargoCBM            *float64 `json:"cargo_cbm"`
	IsDangerous         bool     `json:"is_dangerous"`
	ReviewFlags         []string `json:"review_flags"`
}

// NeedsReview reports whether any review flag is set.
func (r ShipmentRecord) NeedsReview() bool {
	return len(r.ReviewFlags) > 0
}

// HasFlag reports whether the given review flag is present.
func (r ShipmentRecord) HasFlag(flag string) bool {
	return slices.Contains(r.ReviewFlags, flag)
}

// RunStatus represents the current state of an extraction run.
type RunStatus string

const (
	RunStatusQueued     RunStatus = "queued"
	RunStatusExtracting RunStatus = "extracting"
	RunStatusComplete   RunStatus = "complete"
	RunStatusFailed     RunStatus = "failed"
)

// Run represents one batch extraction run over a set of emails.
type Run struct {
	ID        string    `json:"id"`
	Status    RunStatus `json:"status"`
	Extractor string    `json:"extractor"`
	Emails    int       `json:"emails"`
	Flagged   int       `json:"flagged"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
