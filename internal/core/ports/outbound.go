package ports

import (
	"context"
	"time"

	"github.com/rmendes/permitflow/internal/core/domain"
)

// ApplicationRepository owns permit application aggregates. Mutate is the
// per-application serialization point: implementations must load the
// aggregate, run fn, and persist the result atomically with respect to
// concurrent mutations of the same application. Distinct applications are
// independent.
type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.Application) error
	Get(ctx context.Context, id string) (*domain.Application, error)
	List(ctx context.Context) ([]*domain.Application, error)
	Mutate(ctx context.Context, id string, fn func(*domain.Application) error) (*domain.Application, error)
}

type LeadRepository interface {
	CreateLead(ctx context.Context, lead *domain.Lead) error
	GetLead(ctx context.Context, id string) (*domain.Lead, error)
	ListLeads(ctx context.Context, status domain.LeadStatus) ([]*domain.Lead, error)
	MutateLead(ctx context.Context, id string, fn func(*domain.Lead) error) (*domain.Lead, error)
	DeleteLead(ctx context.Context, id string) error

	CreateQuote(ctx context.Context, quote *domain.QuickQuote) error
	GetQuote(ctx context.Context, id string) (*domain.QuickQuote, error)
	ListQuotes(ctx context.Context, status domain.LeadStatus) ([]*domain.QuickQuote, error)
	MutateQuote(ctx context.Context, id string, fn func(*domain.QuickQuote) error) (*domain.QuickQuote, error)
	DeleteQuote(ctx context.Context, id string) error
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	Get(ctx context.Context, id string) (*domain.Payment, error)
	GetByApplication(ctx context.Context, applicationID string) (*domain.Payment, error)
	List(ctx context.Context) ([]*domain.Payment, error)
	Mutate(ctx context.Context, id string, fn func(*domain.Payment) error) (*domain.Payment, error)
}

// AnalysisJob is the unit of work handed to the analysis worker.
type AnalysisJob struct {
	ApplicationID string    `json:"application_id"`
	DocumentID    string    `json:"document_id"`
	EnqueuedAt    time.Time `json:"enqueued_at"`
}

type AnalysisQueue interface {
	PublishAnalysisRequested(ctx context.Context, job AnalysisJob) error
	SubscribeAnalysisRequested(ctx context.Context, handler func(context.Context, AnalysisJob) error) error
}

// AnalysisProvider inspects one document and reports findings. The contract
// the state machine depends on: it eventually returns exactly one result (or
// an error, which the caller converts into a needs-correction state), never
// mutates the document, and scores its own confidence.
type AnalysisProvider interface {
	Analyze(ctx context.Context, doc domain.Document) (domain.AnalysisResult, error)
}

// UploadPresigner hands out short-lived URLs so clients ship document bytes
// straight to object storage; the core never touches file content.
type UploadPresigner interface {
	PresignUpload(ctx context.Context, key, contentType string, sizeBytes int64) (url string, ttl time.Duration, err error)
}

// Notifier is the external collaborator told about applications reaching
// human review. Failures are logged, never surfaced to applicants.
type Notifier interface {
	ReviewReady(ctx context.Context, app *domain.Application) error
}

// CheckoutSession is the externally hosted payment page for one payment.
type CheckoutSession struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

type CheckoutProvider interface {
	CreateSession(ctx context.Context, payment *domain.Payment, successURL, cancelURL string) (CheckoutSession, error)
}
