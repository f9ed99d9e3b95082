package domain

import "time"

type ApplicationStatus string

const (
	StatusDraft             ApplicationStatus = "draft"
	StatusDocumentsPending  ApplicationStatus = "documents_pending"
	StatusDocumentsUploaded ApplicationStatus = "documents_uploaded"
	StatusUnderReview       ApplicationStatus = "under_review"
	StatusNeedsCorrection   ApplicationStatus = "needs_correction"
	StatusReadyForApproval  ApplicationStatus = "ready_for_approval"
	StatusApproved          ApplicationStatus = "approved"
	StatusDenied            ApplicationStatus = "denied"
)

type ProjectType string

const (
	ProjectResidential ProjectType = "residential"
	ProjectCommercial  ProjectType = "commercial"
	ProjectIndustrial  ProjectType = "industrial"
	ProjectMixedUse    ProjectType = "mixed_use"
)

type PermitType string

const (
	PermitBuilding   PermitType = "building"
	PermitElectrical PermitType = "electrical"
	PermitPlumbing   PermitType = "plumbing"
	PermitMechanical PermitType = "mechanical"
	PermitDemolition PermitType = "demolition"
	PermitZoning     PermitType = "zoning"
	PermitSign       PermitType = "sign"
	PermitGrading    PermitType = "grading"
)

type CommentKind string

const (
	CommentApplicationCreated  CommentKind = "application_created"
	CommentDocumentSubmitted   CommentKind = "document_submitted"
	CommentDocumentResubmitted CommentKind = "document_resubmitted"
	CommentDocumentAnalyzed    CommentKind = "document_analyzed"
	CommentDocumentRejected    CommentKind = "document_rejected"
	CommentCorrectionsNeeded   CommentKind = "corrections_needed"
	CommentDocumentsMissing    CommentKind = "documents_missing"
	CommentReviewReady         CommentKind = "review_ready"
	CommentDecision            CommentKind = "decision"
	CommentNote                CommentKind = "note"
)

// Comment is one entry in the append-only system log of an application.
// Entries carry structured payloads; human-readable text is rendered at the
// API edge, never stored.
type Comment struct {
	Timestamp time.Time         `json:"timestamp"`
	Kind      CommentKind       `json:"kind"`
	Payload   map[string]string `json:"payload,omitempty"`
}

// Application is the aggregate root for one permit request. Status,
// MissingItems, ReadyForHumanReview and Complete are derived; callers never
// set them directly except for the terminal approve/deny decision.
type Application struct {
	ID                  string             `json:"id"`
	ApplicantName       string             `json:"applicantName"`
	ApplicantEmail      string             `json:"applicantEmail"`
	ApplicantPhone      string             `json:"applicantPhone"`
	PropertyAddress     string             `json:"propertyAddress"`
	ProjectDescription  string             `json:"projectDescription"`
	ProjectType         ProjectType        `json:"projectType"`
	PermitType          PermitType         `json:"permitType"`
	EstimatedCost       string             `json:"estimatedCost"`
	Status              ApplicationStatus  `json:"status"`
	RequiredDocuments   []DocumentCategory `json:"requiredDocuments"`
	Documents           []Document         `json:"documents"`
	MissingItems        []DocumentCategory `json:"missingItems"`
	Comments            []Comment          `json:"comments"`
	ReadyForHumanReview bool               `json:"readyForHumanReview"`
	Complete            bool               `json:"complete"`

	// CRM metadata, outside the state machine's concern.
	AssignedTo     string  `json:"assignedTo,omitempty"`
	EstimatedValue float64 `json:"estimatedValue,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Closed reports whether the application has received a terminal human
// decision. Closed applications are immutable to document changes.
func (a *Application) Closed() bool {
	return a.Status == StatusApproved || a.Status == StatusDenied
}

// DocumentByID returns a pointer into the ledger, or nil.
func (a *Application) DocumentByID(id string) *Document {
	for i := range a.Documents {
		if a.Documents[i].ID == id {
			return &a.Documents[i]
		}
	}
	return nil
}

// Requires reports whether category is one of the application's required
// document categories.
func (a *Application) Requires(category DocumentCategory) bool {
	for _, c := range a.RequiredDocuments {
		if c == category {
			return true
		}
	}
	return false
}

// AppendComment adds one entry to the system log. The log is append-only;
// nothing ever edits, reorders or deduplicates it.
func (a *Application) AppendComment(now time.Time, kind CommentKind, payload map[string]string) {
	a.Comments = append(a.Comments, Comment{Timestamp: now, Kind: kind, Payload: payload})
}
