package domain

import "time"

type AnalysisStatus string

const (
	AnalysisPending         AnalysisStatus = "pending"
	AnalysisAnalyzing       AnalysisStatus = "analyzing"
	AnalysisApproved        AnalysisStatus = "approved"
	AnalysisNeedsCorrection AnalysisStatus = "needs_correction"
	AnalysisRejected        AnalysisStatus = "rejected"
)

type DocumentCategory string

const (
	CategoryApplicationForm      DocumentCategory = "permit_application_form"
	CategoryArchitecturalDrawing DocumentCategory = "architectural_drawing"
	CategorySitePlan             DocumentCategory = "site_plan"
	CategoryStructuralPlans      DocumentCategory = "structural_plans"
	CategoryElectricalPlans      DocumentCategory = "electrical_plans"
	CategoryPlumbingPlans        DocumentCategory = "plumbing_plans"
	CategoryMechanicalPlans      DocumentCategory = "mechanical_plans"
	CategoryPropertySurvey       DocumentCategory = "property_survey"
	CategoryPlotPlan             DocumentCategory = "plot_plan"
	CategoryConstructionDetails  DocumentCategory = "construction_details"
	CategoryEnergyCalculations   DocumentCategory = "energy_calculations"
	CategoryPropertyDeed         DocumentCategory = "property_deed"
	CategoryContractorLicense    DocumentCategory = "contractor_license"
	CategoryHomeownerID          DocumentCategory = "homeowner_id"
	CategoryOther                DocumentCategory = "other"
)

type IssueSeverity string

const (
	SeverityCritical IssueSeverity = "critical"
	SeverityMajor    IssueSeverity = "major"
	SeverityMinor    IssueSeverity = "minor"
	SeverityInfo     IssueSeverity = "info"
)

// Issue is a single finding from document analysis.
type Issue struct {
	Severity       IssueSeverity `json:"severity"`
	Description    string        `json:"description"`
	Location       string        `json:"location,omitempty"`
	Recommendation string        `json:"recommendation,omitempty"`
}

// Document tracks one submitted file's metadata and review state. The binary
// itself lives in external object storage; the core only ever sees metadata.
type Document struct {
	ID             string           `json:"id"`
	Category       DocumentCategory `json:"category"`
	FileName       string           `json:"fileName"`
	MimeType       string           `json:"mimeType"`
	SizeBytes      int64            `json:"sizeBytes"`
	AnalysisStatus AnalysisStatus   `json:"analysisStatus"`
	Issues         []Issue          `json:"issues"`
	Confidence     float64          `json:"confidence"`
	UploadedAt     time.Time        `json:"uploadedAt"`
	LastAnalyzedAt time.Time        `json:"lastAnalyzedAt,omitzero"`
}

// AnalysisResult is what an analysis provider returns for one document.
// The terminal analysis status is not part of the result: it is always
// derived from the issue severities via StatusFromIssues.
type AnalysisResult struct {
	Issues     []Issue `json:"issues"`
	Confidence float64 `json:"confidence"`
}

// StatusFromIssues maps analysis findings to a terminal document status.
// Critical and major findings require correction; a document carrying only
// minor or informational findings (or none) is acceptable.
func StatusFromIssues(issues []Issue) AnalysisStatus {
	for _, issue := range issues {
		if issue.Severity == SeverityCritical || issue.Severity == SeverityMajor {
			return AnalysisNeedsCorrection
		}
	}
	return AnalysisApproved
}

// Settled reports whether the document has a terminal analysis status.
func (d Document) Settled() bool {
	switch d.AnalysisStatus {
	case AnalysisApproved, AnalysisNeedsCorrection, AnalysisRejected:
		return true
	default:
		return false
	}
}
