package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rmendes/permitflow/internal/core/domain"
	"github.com/rmendes/permitflow/internal/core/ports"
)

type queueFake struct {
	jobs []ports.AnalysisJob
	err  error
}

func (f *queueFake) PublishAnalysisRequested(_ context.Context, job ports.AnalysisJob) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

func (f *queueFake) SubscribeAnalysisRequested(context.Context, func(context.Context, ports.AnalysisJob) error) error {
	return nil
}

type presignerFake struct {
	url  string
	ttl  time.Duration
	err  error
	keys []string
}

func (f *presignerFake) PresignUpload(_ context.Context, key, _ string, _ int64) (string, time.Duration, error) {
	f.keys = append(f.keys, key)
	if f.err != nil {
		return "", 0, f.err
	}
	return f.url, f.ttl, nil
}

func pdfMeta(name string) ports.FileMeta {
	return ports.FileMeta{FileName: name, MimeType: "application/pdf", SizeBytes: 2048}
}

func electricalApp(id string) *domain.Application {
	app := &domain.Application{
		ID:          id,
		ProjectType: domain.ProjectResidential,
		PermitType:  domain.PermitElectrical,
		Status:      domain.StatusDraft,
		RequiredDocuments: []domain.DocumentCategory{
			domain.CategoryApplicationForm,
			domain.CategoryElectricalPlans,
		},
	}
	domain.Derive(app)
	return app
}

func TestSubmitAppendsDocumentAndEnqueues(t *testing.T) {
	app := electricalApp("PERMIT-1")
	repo := newAppRepoFake(app)
	queue := &queueFake{}
	uc := NewDocumentLedgerUseCase(repo, queue, nil)

	receipt, err := uc.Submit(context.Background(), "PERMIT-1", domain.CategoryElectricalPlans, pdfMeta("plans.pdf"))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if receipt.Document.AnalysisStatus != domain.AnalysisPending {
		t.Fatalf("expected pending document, got %s", receipt.Document.AnalysisStatus)
	}
	stored := repo.apps["PERMIT-1"]
	if len(stored.Documents) != 1 {
		t.Fatalf("ledger entry missing, got %d documents", len(stored.Documents))
	}
	if len(queue.jobs) != 1 {
		t.Fatalf("expected one analysis job, got %d", len(queue.jobs))
	}
	job := queue.jobs[0]
	if job.ApplicationID != "PERMIT-1" || job.DocumentID != receipt.Document.ID {
		t.Fatalf("job does not match submission: %+v", job)
	}
	if job.EnqueuedAt.IsZero() {
		t.Fatalf("job enqueue time not set")
	}
	if stored.Status != domain.StatusDocumentsPending {
		t.Fatalf("expected documents_pending after partial submission, got %s", stored.Status)
	}
}

func TestSubmitRejectsUnrequiredCategory(t *testing.T) {
	app := electricalApp("PERMIT-1")
	queue := &queueFake{}
	uc := NewDocumentLedgerUseCase(newAppRepoFake(app), queue, nil)

	_, err := uc.Submit(context.Background(), "PERMIT-1", domain.CategoryPlumbingPlans, pdfMeta("pipes.pdf"))
	if !domain.IsKind(err, domain.ErrInvalidCategory) {
		t.Fatalf("expected invalid category, got %v", err)
	}
	if len(app.Documents) != 0 || len(queue.jobs) != 0 {
		t.Fatalf("rejected submission left side effects behind")
	}
}

func TestSubmitAcceptsOtherCategory(t *testing.T) {
	app := electricalApp("PERMIT-1")
	uc := NewDocumentLedgerUseCase(newAppRepoFake(app), &queueFake{}, nil)

	if _, err := uc.Submit(context.Background(), "PERMIT-1", domain.CategoryOther, pdfMeta("extra.pdf")); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
}

func TestSubmitRejectsClosedApplication(t *testing.T) {
	app := electricalApp("PERMIT-1")
	app.Status = domain.StatusApproved
	uc := NewDocumentLedgerUseCase(newAppRepoFake(app), &queueFake{}, nil)

	_, err := uc.Submit(context.Background(), "PERMIT-1", domain.CategoryElectricalPlans, pdfMeta("late.pdf"))
	if !domain.IsKind(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestSubmitValidatesFileMeta(t *testing.T) {
	uc := NewDocumentLedgerUseCase(newAppRepoFake(electricalApp("PERMIT-1")), &queueFake{}, nil)

	_, err := uc.Submit(context.Background(), "PERMIT-1", domain.CategoryElectricalPlans,
		ports.FileMeta{FileName: "   ", MimeType: "application/pdf"})
	if !domain.IsKind(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for blank name, got %v", err)
	}

	_, err = uc.Submit(context.Background(), "PERMIT-1", domain.CategoryElectricalPlans,
		ports.FileMeta{FileName: "plans.pdf", SizeBytes: -1})
	if !domain.IsKind(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for negative size, got %v", err)
	}
}

func TestSubmitIncludesPresignedUpload(t *testing.T) {
	presigner := &presignerFake{url: "https://uploads.example.com/signed", ttl: 15 * time.Minute}
	uc := NewDocumentLedgerUseCase(newAppRepoFake(electricalApp("PERMIT-1")), &queueFake{}, presigner)

	receipt, err := uc.Submit(context.Background(), "PERMIT-1", domain.CategoryElectricalPlans, pdfMeta("plans.pdf"))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if receipt.UploadURL != "https://uploads.example.com/signed" {
		t.Fatalf("unexpected upload url %q", receipt.UploadURL)
	}
	if receipt.UploadExpiresIn != 900 {
		t.Fatalf("expected 900s expiry, got %d", receipt.UploadExpiresIn)
	}
	if len(presigner.keys) != 1 || !strings.HasPrefix(presigner.keys[0], "applications/PERMIT-1/") {
		t.Fatalf("unexpected object key %v", presigner.keys)
	}
}

func TestSubmitToleratesPresignFailure(t *testing.T) {
	presigner := &presignerFake{err: errors.New("s3 unavailable")}
	queue := &queueFake{}
	uc := NewDocumentLedgerUseCase(newAppRepoFake(electricalApp("PERMIT-1")), queue, presigner)

	receipt, err := uc.Submit(context.Background(), "PERMIT-1", domain.CategoryElectricalPlans, pdfMeta("plans.pdf"))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if receipt.UploadURL != "" {
		t.Fatalf("expected no upload url on presign failure")
	}
	if len(queue.jobs) != 1 {
		t.Fatalf("analysis job not published despite committed ledger entry")
	}
}

func TestResubmitResetsAnalysisState(t *testing.T) {
	app := electricalApp("PERMIT-1")
	app.Documents = []domain.Document{{
		ID:             "DOC-1",
		Category:       domain.CategoryElectricalPlans,
		FileName:       "plans-v1.pdf",
		AnalysisStatus: domain.AnalysisNeedsCorrection,
		Issues:         []domain.Issue{{Severity: domain.SeverityMajor, Description: "missing load calc"}},
		Confidence:     0.6,
	}}
	domain.Derive(app)
	queue := &queueFake{}
	uc := NewDocumentLedgerUseCase(newAppRepoFake(app), queue, nil)

	receipt, err := uc.Resubmit(context.Background(), "PERMIT-1", "DOC-1", pdfMeta("plans-v2.pdf"))
	if err != nil {
		t.Fatalf("Resubmit() error = %v", err)
	}
	doc := receipt.Document
	if doc.ID != "DOC-1" {
		t.Fatalf("resubmission minted a new document id %s", doc.ID)
	}
	if doc.AnalysisStatus != domain.AnalysisPending {
		t.Fatalf("expected pending after resubmission, got %s", doc.AnalysisStatus)
	}
	if len(doc.Issues) != 0 || doc.Confidence != 0 {
		t.Fatalf("prior findings survived resubmission: %+v", doc)
	}
	if doc.FileName != "plans-v2.pdf" {
		t.Fatalf("file metadata not replaced, got %s", doc.FileName)
	}
	if len(queue.jobs) != 1 || queue.jobs[0].DocumentID != "DOC-1" {
		t.Fatalf("expected a fresh analysis job for DOC-1, got %+v", queue.jobs)
	}
}

func TestResubmitUnknownDocument(t *testing.T) {
	uc := NewDocumentLedgerUseCase(newAppRepoFake(electricalApp("PERMIT-1")), &queueFake{}, nil)

	_, err := uc.Resubmit(context.Background(), "PERMIT-1", "DOC-MISSING", pdfMeta("plans.pdf"))
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRejectReopensMissingItems(t *testing.T) {
	app := electricalApp("PERMIT-1")
	app.Documents = []domain.Document{
		{ID: "DOC-1", Category: domain.CategoryApplicationForm, AnalysisStatus: domain.AnalysisApproved},
		{ID: "DOC-2", Category: domain.CategoryElectricalPlans, AnalysisStatus: domain.AnalysisApproved},
	}
	domain.Derive(app)
	if app.Status != domain.StatusReadyForApproval {
		t.Fatalf("fixture expected ready_for_approval, got %s", app.Status)
	}
	uc := NewDocumentLedgerUseCase(newAppRepoFake(app), &queueFake{}, nil)

	got, err := uc.Reject(context.Background(), "PERMIT-1", "DOC-2", "illegible scan")
	if err != nil {
		t.Fatalf("Reject() error = %v", err)
	}
	if got.Documents[1].AnalysisStatus != domain.AnalysisRejected {
		t.Fatalf("document not rejected: %s", got.Documents[1].AnalysisStatus)
	}
	if got.Status != domain.StatusDocumentsPending {
		t.Fatalf("expected documents_pending after rejection, got %s", got.Status)
	}
	reopened := false
	for _, c := range got.MissingItems {
		if c == domain.CategoryElectricalPlans {
			reopened = true
		}
	}
	if !reopened {
		t.Fatalf("rejected category not reopened: %v", got.MissingItems)
	}
	last := got.Comments[len(got.Comments)-1]
	if last.Kind != domain.CommentDocumentRejected || last.Payload["reason"] != "illegible scan" {
		t.Fatalf("rejection not logged, got %+v", last)
	}
}

func TestSubmitPropagatesPublishFailure(t *testing.T) {
	queue := &queueFake{err: domain.WrapError(domain.ErrTemporary, "publish", errors.New("nats down"))}
	repo := newAppRepoFake(electricalApp("PERMIT-1"))
	uc := NewDocumentLedgerUseCase(repo, queue, nil)

	_, err := uc.Submit(context.Background(), "PERMIT-1", domain.CategoryElectricalPlans, pdfMeta("plans.pdf"))
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary failure to surface, got %v", err)
	}

	// The whole submission rolls back: no committed document may be left
	// waiting for an analysis job that was never published.
	stored := repo.apps["PERMIT-1"]
	if len(stored.Documents) != 0 {
		t.Fatalf("ledger kept %d document(s) after a failed submit", len(stored.Documents))
	}
	if len(stored.Comments) != 0 {
		t.Fatalf("comments kept after a failed submit: %+v", stored.Comments)
	}
	if stored.Status != domain.StatusDocumentsPending {
		t.Fatalf("status changed by a failed submit: %s", stored.Status)
	}
	if len(queue.jobs) != 0 {
		t.Fatalf("unexpected jobs recorded: %+v", queue.jobs)
	}
}

func TestResubmitRollsBackOnPublishFailure(t *testing.T) {
	app := electricalApp("PERMIT-1")
	app.Documents = []domain.Document{{
		ID:             "DOC-1",
		Category:       domain.CategoryElectricalPlans,
		FileName:       "plans-v1.pdf",
		AnalysisStatus: domain.AnalysisNeedsCorrection,
		Issues:         []domain.Issue{{Severity: domain.SeverityMajor, Description: "missing load calc"}},
		Confidence:     0.6,
	}}
	domain.Derive(app)
	repo := newAppRepoFake(app)
	queue := &queueFake{err: domain.WrapError(domain.ErrTemporary, "publish", errors.New("nats down"))}
	uc := NewDocumentLedgerUseCase(repo, queue, nil)

	_, err := uc.Resubmit(context.Background(), "PERMIT-1", "DOC-1", pdfMeta("plans-v2.pdf"))
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary failure to surface, got %v", err)
	}

	doc := repo.apps["PERMIT-1"].Documents[0]
	if doc.AnalysisStatus != domain.AnalysisNeedsCorrection {
		t.Fatalf("analysis state reset despite failed resubmit: %s", doc.AnalysisStatus)
	}
	if doc.FileName != "plans-v1.pdf" {
		t.Fatalf("file metadata replaced despite failed resubmit: %s", doc.FileName)
	}
	if len(doc.Issues) != 1 {
		t.Fatalf("prior findings lost despite failed resubmit: %+v", doc.Issues)
	}
}
