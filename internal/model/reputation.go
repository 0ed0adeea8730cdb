package model

import "time"

// ReportProvenance tells where a reputation report came from
type ReportProvenance string

const (
	// ProvenanceInternal reports are fabricated locally from registry data
	ProvenanceInternal ReportProvenance = "internal"
	// ProvenanceExternal reports come from the external text generator
	ProvenanceExternal ReportProvenance = "external"
)

// Source is one citation attached to a generated report
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Certificate is a fiscal or labour clearance status
type Certificate struct {
	Label  string `json:"label"`
	Status string `json:"status"`
}

// ExternalRating is a score published by a third-party review site
type ExternalRating struct {
	Name   string `json:"name"`
	Score  string `json:"score"`
	Status string `json:"status"`
}

// ReputationIndicators are the structured figures shown for internal suppliers
type ReputationIndicators struct {
	IEC             int              `json:"iec"`
	OnTimeRate      float64          `json:"on_time_rate"`
	ComplaintRate   float64          `json:"complaint_rate"`
	AvgSLADays      float64          `json:"avg_sla_days"`
	Status          string           `json:"status"`
	Certificates    []Certificate    `json:"certificates"`
	ExternalRatings []ExternalRating `json:"external_ratings"`
	CriticalAlerts  int              `json:"critical_alerts"`
}

// Subject identifies the company a report is about, when known
type Subject struct {
	SupplierID string `json:"supplier_id,omitempty"`
	Name       string `json:"name"`
	TaxID      string `json:"tax_id"`
}

// ReputationReport is opaque prose plus its provenance trail. The text is
// never parsed for business decisions.
type ReputationReport struct {
	Query       string                `json:"query"`
	Subject     *Subject              `json:"subject,omitempty"`
	Provenance  ReportProvenance      `json:"provenance"`
	Verdict     string                `json:"verdict,omitempty"`
	Text        string                `json:"text"`
	Sources     []Source              `json:"sources"`
	Indicators  *ReputationIndicators `json:"indicators,omitempty"`
	GeneratedAt time.Time             `json:"generated_at"`
}

// LookupStatus is the settled state of a session's reputation lookup
type LookupStatus string

const (
	LookupIdle    LookupStatus = "idle"
	LookupLoading LookupStatus = "loading"
	LookupSuccess LookupStatus = "success"
	LookupError   LookupStatus = "error"
)

// LookupState is what a session currently displays
type LookupState struct {
	Query     string            `json:"query,omitempty"`
	Status    LookupStatus      `json:"status"`
	Report    *ReputationReport `json:"report,omitempty"`
	Error     string            `json:"error,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// RiskAnalysis is the stored compliance opinion for a supplier
type RiskAnalysis struct {
	SupplierID  string    `json:"supplier_id"`
	Text        string    `json:"text"`
	Failed      bool      `json:"failed"`
	GeneratedAt time.Time `json:"generated_at"`
}
