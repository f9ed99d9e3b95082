package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rmendes/permitflow/internal/core/domain"
)

type providerFake struct {
	result domain.AnalysisResult
	err    error
	calls  int
	docs   []domain.Document
}

func (f *providerFake) Analyze(_ context.Context, doc domain.Document) (domain.AnalysisResult, error) {
	f.calls++
	f.docs = append(f.docs, doc)
	if f.err != nil {
		return domain.AnalysisResult{}, f.err
	}
	return f.result, nil
}

type notifierFake struct {
	apps []string
	err  error
}

func (f *notifierFake) ReviewReady(_ context.Context, app *domain.Application) error {
	f.apps = append(f.apps, app.ID)
	return f.err
}

func pendingDocApp(id string, categories ...domain.DocumentCategory) *domain.Application {
	app := &domain.Application{
		ID:                id,
		ProjectType:       domain.ProjectResidential,
		PermitType:        domain.PermitElectrical,
		RequiredDocuments: categories,
	}
	for i, c := range categories {
		app.Documents = append(app.Documents, domain.Document{
			ID:             "DOC-" + string(rune('1'+i)),
			Category:       c,
			FileName:       string(c) + ".pdf",
			AnalysisStatus: domain.AnalysisPending,
		})
	}
	domain.Derive(app)
	return app
}

func TestAnalyzeByIDSettlesDocument(t *testing.T) {
	app := pendingDocApp("PERMIT-1", domain.CategoryApplicationForm, domain.CategoryElectricalPlans)
	provider := &providerFake{result: domain.AnalysisResult{
		Issues:     []domain.Issue{{Severity: domain.SeverityMinor, Description: "low scan resolution"}},
		Confidence: 0.88,
	}}
	repo := newAppRepoFake(app)
	uc := NewAnalyzeDocumentUseCase(repo, provider, nil, 0)

	if err := uc.AnalyzeByID(context.Background(), "PERMIT-1", "DOC-1"); err != nil {
		t.Fatalf("AnalyzeByID() error = %v", err)
	}
	stored := repo.apps["PERMIT-1"]
	doc := stored.DocumentByID("DOC-1")
	if doc.AnalysisStatus != domain.AnalysisApproved {
		t.Fatalf("minor findings should approve, got %s", doc.AnalysisStatus)
	}
	if doc.Confidence != 0.88 || len(doc.Issues) != 1 {
		t.Fatalf("result not folded in: %+v", doc)
	}
	if doc.LastAnalyzedAt.IsZero() {
		t.Fatalf("analysis time not recorded")
	}
	if provider.calls != 1 {
		t.Fatalf("expected one provider call, got %d", provider.calls)
	}
	last := stored.Comments[len(stored.Comments)-1]
	if last.Kind != domain.CommentDocumentAnalyzed || last.Payload["outcome"] != string(domain.AnalysisApproved) {
		t.Fatalf("analysis outcome not logged, got %+v", last)
	}
}

func TestAnalyzeByIDSkipsSettledJob(t *testing.T) {
	app := pendingDocApp("PERMIT-1", domain.CategoryElectricalPlans)
	app.Documents[0].AnalysisStatus = domain.AnalysisApproved
	domain.Derive(app)
	provider := &providerFake{}
	uc := NewAnalyzeDocumentUseCase(newAppRepoFake(app), provider, nil, 0)

	if err := uc.AnalyzeByID(context.Background(), "PERMIT-1", "DOC-1"); err != nil {
		t.Fatalf("AnalyzeByID() error = %v", err)
	}
	if provider.calls != 0 {
		t.Fatalf("stale job still ran the provider")
	}
}

func TestAnalyzeByIDUnknownDocument(t *testing.T) {
	app := pendingDocApp("PERMIT-1", domain.CategoryElectricalPlans)
	uc := NewAnalyzeDocumentUseCase(newAppRepoFake(app), &providerFake{}, nil, 0)

	err := uc.AnalyzeByID(context.Background(), "PERMIT-1", "DOC-MISSING")
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAnalyzeByIDSettlesProviderFailure(t *testing.T) {
	app := pendingDocApp("PERMIT-1", domain.CategoryElectricalPlans)
	provider := &providerFake{err: errors.New("model unavailable")}
	repo := newAppRepoFake(app)
	uc := NewAnalyzeDocumentUseCase(repo, provider, nil, 0)

	if err := uc.AnalyzeByID(context.Background(), "PERMIT-1", "DOC-1"); err != nil {
		t.Fatalf("AnalyzeByID() error = %v", err)
	}
	stored := repo.apps["PERMIT-1"]
	doc := stored.DocumentByID("DOC-1")
	if doc.AnalysisStatus != domain.AnalysisNeedsCorrection {
		t.Fatalf("provider failure should settle as needs_correction, got %s", doc.AnalysisStatus)
	}
	if len(doc.Issues) != 1 || doc.Issues[0].Severity != domain.SeverityCritical {
		t.Fatalf("expected one synthetic critical issue, got %+v", doc.Issues)
	}
	if !strings.Contains(doc.Issues[0].Description, "Automated analysis failed") {
		t.Fatalf("unexpected failure description %q", doc.Issues[0].Description)
	}
	if stored.Status != domain.StatusNeedsCorrection {
		t.Fatalf("expected needs_correction application, got %s", stored.Status)
	}
}

func TestAnalyzeByIDReportsTimeout(t *testing.T) {
	app := pendingDocApp("PERMIT-1", domain.CategoryElectricalPlans)
	provider := &providerFake{err: context.DeadlineExceeded}
	repo := newAppRepoFake(app)
	uc := NewAnalyzeDocumentUseCase(repo, provider, nil, 0)

	if err := uc.AnalyzeByID(context.Background(), "PERMIT-1", "DOC-1"); err != nil {
		t.Fatalf("AnalyzeByID() error = %v", err)
	}
	doc := repo.apps["PERMIT-1"].DocumentByID("DOC-1")
	if !strings.Contains(doc.Issues[0].Description, "timed out") {
		t.Fatalf("timeout not reported, got %q", doc.Issues[0].Description)
	}
}

func TestAnalyzeByIDNotifiesWhenReviewReady(t *testing.T) {
	app := pendingDocApp("PERMIT-1", domain.CategoryElectricalPlans)
	notifier := &notifierFake{}
	provider := &providerFake{result: domain.AnalysisResult{Confidence: 0.95}}
	repo := newAppRepoFake(app)
	uc := NewAnalyzeDocumentUseCase(repo, provider, notifier, 0)

	if err := uc.AnalyzeByID(context.Background(), "PERMIT-1", "DOC-1"); err != nil {
		t.Fatalf("AnalyzeByID() error = %v", err)
	}
	if got := repo.apps["PERMIT-1"].Status; got != domain.StatusReadyForApproval {
		t.Fatalf("expected ready_for_approval, got %s", got)
	}
	if len(notifier.apps) != 1 || notifier.apps[0] != "PERMIT-1" {
		t.Fatalf("review team not notified, got %v", notifier.apps)
	}
}

func TestAnalyzeByIDDoesNotRenotify(t *testing.T) {
	app := pendingDocApp("PERMIT-1", domain.CategoryElectricalPlans)
	app.Documents[0].AnalysisStatus = domain.AnalysisApproved
	app.Documents = append(app.Documents, domain.Document{
		ID:             "DOC-extra",
		Category:       domain.CategoryOther,
		FileName:       "appendix.pdf",
		AnalysisStatus: domain.AnalysisPending,
	})
	domain.Derive(app)
	if !app.ReadyForHumanReview {
		t.Fatalf("fixture expected an already-ready application")
	}
	notifier := &notifierFake{}
	provider := &providerFake{result: domain.AnalysisResult{Confidence: 0.9}}
	uc := NewAnalyzeDocumentUseCase(newAppRepoFake(app), provider, notifier, 0)

	if err := uc.AnalyzeByID(context.Background(), "PERMIT-1", "DOC-extra"); err != nil {
		t.Fatalf("AnalyzeByID() error = %v", err)
	}
	if len(notifier.apps) != 0 {
		t.Fatalf("already-announced application re-notified: %v", notifier.apps)
	}
}

func TestAnalyzeByIDToleratesNotifierFailure(t *testing.T) {
	app := pendingDocApp("PERMIT-1", domain.CategoryElectricalPlans)
	notifier := &notifierFake{err: errors.New("smtp refused")}
	provider := &providerFake{result: domain.AnalysisResult{Confidence: 0.95}}
	uc := NewAnalyzeDocumentUseCase(newAppRepoFake(app), provider, notifier, 0)

	if err := uc.AnalyzeByID(context.Background(), "PERMIT-1", "DOC-1"); err != nil {
		t.Fatalf("notifier failure must not fail the analysis, got %v", err)
	}
}
