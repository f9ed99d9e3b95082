package ports

import (
	"context"

	"github.com/rmendes/permitflow/internal/core/domain"
)

// CreateApplicationInput carries the applicant-supplied fields for a new
// permit application.
type CreateApplicationInput struct {
	ApplicantName      string `validate:"required"`
	ApplicantEmail     string `validate:"required,email"`
	ApplicantPhone     string `validate:"required,min=7"`
	PropertyAddress    string `validate:"required"`
	ProjectDescription string
	ProjectType        string `validate:"required"`
	PermitType         string `validate:"required"`
	EstimatedCost      string
}

// ApplicationUpdate is the closed set of permitted administrative updates.
// Status accepts only the terminal human decisions.
type ApplicationUpdate struct {
	Status         domain.ApplicationStatus
	Note           string
	AssignedTo     string
	EstimatedValue float64
}

// ApplicationRegistry is the inbound contract for application lifecycle.
type ApplicationRegistry interface {
	Create(ctx context.Context, input CreateApplicationInput) (*domain.Application, error)
	Get(ctx context.Context, id string) (*domain.Application, error)
	List(ctx context.Context) ([]*domain.Application, error)
	Update(ctx context.Context, id string, update ApplicationUpdate) (*domain.Application, error)
}

// FileMeta describes one uploaded file; the bytes themselves go to object
// storage out of band.
type FileMeta struct {
	FileName  string
	MimeType  string
	SizeBytes int64
}

// SubmitReceipt is what a (re)submission returns to the caller: the ledger
// entry plus a presigned location for the file bytes when uploads are
// externally stored.
type SubmitReceipt struct {
	Document        domain.Document
	UploadURL       string
	UploadExpiresIn int
}

// DocumentLedger is the inbound contract for document submission.
type DocumentLedger interface {
	Submit(ctx context.Context, applicationID string, category domain.DocumentCategory, meta FileMeta) (SubmitReceipt, error)
	Resubmit(ctx context.Context, applicationID, documentID string, meta FileMeta) (SubmitReceipt, error)
	Reject(ctx context.Context, applicationID, documentID, reason string) (*domain.Application, error)
}

// DocumentAnalyzer is the inbound contract for asynchronous document analysis.
type DocumentAnalyzer interface {
	AnalyzeByID(ctx context.Context, applicationID, documentID string) error
}

// LeadInput carries the applicant-supplied fields of a funnel inquiry.
type LeadInput struct {
	Name               string `validate:"required"`
	Email              string `validate:"required,email"`
	Phone              string `validate:"required,min=7"`
	ServiceType        string `validate:"required"`
	ProjectLocation    string
	ProjectTimeline    string
	ProjectDescription string
	InjuryType         string
	InjuryDate         string
	InjuryDescription  string
	HowHeard           string
}

// QuoteInput carries the short-form quote request fields.
type QuoteInput struct {
	PermitType string `validate:"required"`
	Timeline   string `validate:"required"`
	Email      string `validate:"required,email"`
	Phone      string `validate:"required,min=7"`
}

// LeadUpdate is the closed set of permitted CRM updates. A non-empty Note is
// appended, never replacing existing notes.
type LeadUpdate struct {
	Status         domain.LeadStatus
	Note           string
	AssignedTo     string
	EstimatedValue float64
	Contacted      bool
}

// LeadBook is the inbound contract for the CRM.
type LeadBook interface {
	CreateLead(ctx context.Context, input LeadInput) (*domain.Lead, error)
	GetLead(ctx context.Context, id string) (*domain.Lead, error)
	ListLeads(ctx context.Context, status domain.LeadStatus) ([]*domain.Lead, error)
	UpdateLead(ctx context.Context, id string, update LeadUpdate) (*domain.Lead, error)
	DeleteLead(ctx context.Context, id string) error

	CreateQuote(ctx context.Context, input QuoteInput) (*domain.QuickQuote, error)
	GetQuote(ctx context.Context, id string) (*domain.QuickQuote, error)
	ListQuotes(ctx context.Context, status domain.LeadStatus) ([]*domain.QuickQuote, error)
	UpdateQuote(ctx context.Context, id string, update LeadUpdate) (*domain.QuickQuote, error)
	DeleteQuote(ctx context.Context, id string) error
}

// CheckoutResult pairs the payment record with its hosted session.
type CheckoutResult struct {
	Payment *domain.Payment
	Session CheckoutSession
}

// PaymentDesk is the inbound contract for permit fee checkout.
type PaymentDesk interface {
	Checkout(ctx context.Context, applicationID string, expedited bool) (CheckoutResult, error)
	Complete(ctx context.Context, paymentID string) (*domain.Payment, error)
	Fail(ctx context.Context, paymentID string) (*domain.Payment, error)
	Refund(ctx context.Context, paymentID string) (*domain.Payment, error)
	Get(ctx context.Context, paymentID string) (*domain.Payment, error)
	GetByApplication(ctx context.Context, applicationID string) (*domain.Payment, error)
	Analytics(ctx context.Context) (domain.PaymentAnalytics, error)
}
