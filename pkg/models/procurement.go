package models

import "time"

// ProcurementStatus is the lifecycle of a tender record.
type ProcurementStatus string

const (
	ProcurementDraft     ProcurementStatus = "draft"
	ProcurementPublished ProcurementStatus = "published"
	ProcurementAwarded   ProcurementStatus = "awarded"
	ProcurementCancelled ProcurementStatus = "cancelled"
	ProcurementCompleted ProcurementStatus = "completed"
)

// ProcurementCategories lists the valid tender categories used by the search
// filters and the creation form.
var ProcurementCategories = []string{
	"infrastructure", "supplies", "services", "consultancy",
	"works", "goods", "equipment", "other",
}

// Procurement is the primary listable entity of the ProcureChain side.
type Procurement struct {
	ID              string              `json:"_id"`
	TenderNumber    string              `json:"tender_number"`
	Title           string              `json:"title"`
	Description     string              `json:"description,omitempty"`
	Category        string              `json:"category"`
	EstimatedValue  float64             `json:"estimated_value"`
	Currency        string              `json:"currency,omitempty"`
	Status          ProcurementStatus   `json:"status"`
	PublishedDate   *time.Time          `json:"published_date,omitempty"`
	Deadline        *time.Time          `json:"deadline,omitempty"`
	AwardedVendorID string              `json:"awarded_vendor_id,omitempty"`
	AwardedAmount   *float64            `json:"awarded_amount,omitempty"`
	AwardedDate     *time.Time          `json:"awarded_date,omitempty"`
	Metadata        ProcurementMetadata `json:"metadata"`
	CreatedBy       string              `json:"created_by,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// ProcurementMetadata carries the server-computed analysis flags.
type ProcurementMetadata struct {
	AIAnalyzed     bool       `json:"ai_analyzed"`
	AIAnalysisDate *time.Time `json:"ai_analysis_date,omitempty"`
	HasAnomalies   bool       `json:"has_anomalies"`
	RiskScore      float64    `json:"risk_score"`
}

// DaysUntilDeadline returns whole days until the submission deadline,
// negative when past. Tenders without a deadline return 0 and false.
func (p Procurement) DaysUntilDeadline(now time.Time) (int, bool) {
	if p.Deadline == nil {
		return 0, false
	}
	return int(p.Deadline.Sub(now).Hours() / 24), true
}

// BidStatus is the lifecycle of a vendor bid on a tender.
type BidStatus string

const (
	BidSubmitted BidStatus = "submitted"
	BidEvaluated BidStatus = "evaluated"
	BidAwarded   BidStatus = "awarded"
	BidRejected  BidStatus = "rejected"
)

// Bid is a vendor's offer on a procurement, child of the tender by id.
type Bid struct {
	ID              string    `json:"_id"`
	ProcurementID   string    `json:"procurement_id"`
	VendorID        string    `json:"vendor_id"`
	VendorName      string    `json:"vendor_name,omitempty"`
	Amount          float64   `json:"amount"`
	Currency        string    `json:"currency,omitempty"`
	TechnicalScore  *float64  `json:"technical_score,omitempty"`
	FinancialScore  *float64  `json:"financial_score,omitempty"`
	Status          BidStatus `json:"status"`
	SubmittedAt     time.Time `json:"submitted_at"`
	EvaluationNotes string    `json:"evaluation_notes,omitempty"`
}

// Vendor is a registered supplier.
type Vendor struct {
	ID                string    `json:"_id"`
	Name              string    `json:"name"`
	RegistrationNo    string    `json:"registration_number,omitempty"`
	Categories        []string  `json:"categories,omitempty"`
	ContactEmail      string    `json:"contact_email,omitempty"`
	ContactPhone      string    `json:"contact_phone,omitempty"`
	Address           string    `json:"address,omitempty"`
	Verified          bool      `json:"verified"`
	AwardedContracts  int       `json:"awarded_contracts"`
	TotalAwardedValue float64   `json:"total_awarded_value"`
	CreatedAt         time.Time `json:"created_at"`
}

// ReportStatus is the investigation lifecycle of a citizen report.
type ReportStatus string

const (
	ReportPending       ReportStatus = "pending"
	ReportInvestigating ReportStatus = "investigating"
	ReportResolved      ReportStatus = "resolved"
	ReportDismissed     ReportStatus = "dismissed"
)

// Report is a transparency complaint filed against a procurement.
type Report struct {
	ID            string       `json:"_id"`
	ProcurementID string       `json:"procurement_id"`
	ReporterID    string       `json:"reporter_id,omitempty"`
	Category      string       `json:"category,omitempty"`
	Description   string       `json:"description"`
	Status        ReportStatus `json:"status"`
	Resolution    string       `json:"resolution,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// AnomalySeverity buckets detected anomalies for the audit views.
type AnomalySeverity string

const (
	SeverityLow      AnomalySeverity = "low"
	SeverityMedium   AnomalySeverity = "medium"
	SeverityHigh     AnomalySeverity = "high"
	SeverityCritical AnomalySeverity = "critical"
)

// Anomaly is a server-detected irregularity on a procurement. The client
// only lists, groups, and resolves them.
type Anomaly struct {
	ID            string          `json:"_id"`
	ProcurementID string          `json:"procurement_id"`
	Type          string          `json:"type"`
	Severity      AnomalySeverity `json:"severity"`
	RiskScore     float64         `json:"risk_score"`
	Description   string          `json:"description,omitempty"`
	Resolved      bool            `json:"resolved"`
	ResolvedBy    string          `json:"resolved_by,omitempty"`
	ResolvedNote  string          `json:"resolution_note,omitempty"`
	DetectedAt    time.Time       `json:"detected_at"`
}

// AnomalyStats is the aggregate shape returned by the anomaly statistics
// endpoint.
type AnomalyStats struct {
	Total      int                     `json:"total"`
	Unresolved int                     `json:"unresolved"`
	BySeverity map[AnomalySeverity]int `json:"by_severity"`
}

// ProcurementStats is the aggregate returned by the statistics endpoint.
type ProcurementStats struct {
	Total        int                       `json:"total"`
	TotalValue   float64                   `json:"total_value"`
	ByStatus     map[ProcurementStatus]int `json:"by_status"`
	ByCategory   map[string]int            `json:"by_category"`
	AwardedValue float64                   `json:"awarded_value"`
}
