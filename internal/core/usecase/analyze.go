package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rmendes/permitflow/internal/core/domain"
	"github.com/rmendes/permitflow/internal/core/ports"
)

// AnalyzeDocumentUseCase runs on the worker: it marks a document analyzing,
// calls the analysis provider, and folds the outcome back into the owning
// application under its serialization point. A provider failure never leaves
// a document stuck in analyzing; it settles as needs_correction with a
// synthetic critical issue.
type AnalyzeDocumentUseCase struct {
	repo     ports.ApplicationRepository
	provider ports.AnalysisProvider
	notifier ports.Notifier
	timeout  time.Duration
}

func NewAnalyzeDocumentUseCase(
	repo ports.ApplicationRepository,
	provider ports.AnalysisProvider,
	notifier ports.Notifier,
	timeout time.Duration,
) *AnalyzeDocumentUseCase {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &AnalyzeDocumentUseCase{
		repo:     repo,
		provider: provider,
		notifier: notifier,
		timeout:  timeout,
	}
}

func (uc *AnalyzeDocumentUseCase) AnalyzeByID(ctx context.Context, applicationID, documentID string) error {
	snapshot, err := uc.markAnalyzing(ctx, applicationID, documentID)
	if err != nil {
		return err
	}
	if snapshot == nil {
		// The document settled between enqueue and pickup (stale job after a
		// resubmission already handled by a newer job).
		return nil
	}

	result, analysisErr := uc.runProvider(ctx, *snapshot)
	if analysisErr != nil {
		result = failureResult(analysisErr)
	}

	app, err := uc.applyResult(ctx, applicationID, documentID, result)
	if err != nil {
		return err
	}

	if app != nil && app.ReadyForHumanReview {
		uc.notifyReviewReady(ctx, app)
	}
	return nil
}

// markAnalyzing flips the document to analyzing and returns a snapshot for
// the provider. Returns (nil, nil) when the job is stale.
func (uc *AnalyzeDocumentUseCase) markAnalyzing(ctx context.Context, applicationID, documentID string) (*domain.Document, error) {
	var snapshot *domain.Document
	_, err := uc.repo.Mutate(ctx, applicationID, func(app *domain.Application) error {
		doc := app.DocumentByID(documentID)
		if doc == nil {
			return domain.WrapError(domain.ErrNotFound, "start analysis",
				fmt.Errorf("document %s", documentID))
		}
		if doc.AnalysisStatus != domain.AnalysisPending {
			return nil
		}
		doc.AnalysisStatus = domain.AnalysisAnalyzing
		app.UpdatedAt = time.Now().UTC()

		copied := *doc
		snapshot = &copied
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("set document analyzing: %w", err)
	}
	return snapshot, nil
}

func (uc *AnalyzeDocumentUseCase) runProvider(ctx context.Context, doc domain.Document) (domain.AnalysisResult, error) {
	analysisCtx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	result, err := uc.provider.Analyze(analysisCtx, doc)
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("analyze document: %w", err)
	}
	return result, nil
}

// applyResult is the completion handler: it settles the document, recomputes
// the application status and logs the outcome, all in one mutation.
func (uc *AnalyzeDocumentUseCase) applyResult(
	ctx context.Context,
	applicationID, documentID string,
	result domain.AnalysisResult,
) (*domain.Application, error) {
	wasReady := false
	app, err := uc.repo.Mutate(ctx, applicationID, func(app *domain.Application) error {
		doc := app.DocumentByID(documentID)
		if doc == nil {
			return domain.WrapError(domain.ErrNotFound, "apply analysis result",
				fmt.Errorf("document %s", documentID))
		}
		if doc.AnalysisStatus != domain.AnalysisAnalyzing {
			// Superseded by a resubmission while the provider ran.
			return nil
		}
		wasReady = app.ReadyForHumanReview

		now := time.Now().UTC()
		doc.Issues = result.Issues
		if doc.Issues == nil {
			doc.Issues = []domain.Issue{}
		}
		doc.Confidence = result.Confidence
		doc.AnalysisStatus = domain.StatusFromIssues(result.Issues)
		doc.LastAnalyzedAt = now

		app.AppendComment(now, domain.CommentDocumentAnalyzed, map[string]string{
			"document_id": doc.ID,
			"file_name":   doc.FileName,
			"outcome":     string(doc.AnalysisStatus),
		})

		domain.Derive(app)
		switch app.Status {
		case domain.StatusNeedsCorrection:
			app.AppendComment(now, domain.CommentCorrectionsNeeded, nil)
		case domain.StatusReadyForApproval:
			app.AppendComment(now, domain.CommentReviewReady, nil)
		case domain.StatusDocumentsPending:
			app.AppendComment(now, domain.CommentDocumentsMissing, map[string]string{
				"missing": joinCategories(app.MissingItems),
			})
		}
		app.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	if wasReady {
		// Already announced; don't re-notify.
		return nil, nil
	}
	return app, nil
}

func (uc *AnalyzeDocumentUseCase) notifyReviewReady(ctx context.Context, app *domain.Application) {
	if uc.notifier == nil {
		return
	}
	if err := uc.notifier.ReviewReady(ctx, app); err != nil {
		slog.Warn("review_ready_notification_failed", "application_id", app.ID, "error", err)
	}
}

func failureResult(err error) domain.AnalysisResult {
	description := "Automated analysis failed"
	if errors.Is(err, context.DeadlineExceeded) {
		description = "Automated analysis timed out"
	}
	return domain.AnalysisResult{
		Issues: []domain.Issue{{
			Severity:       domain.SeverityCritical,
			Description:    fmt.Sprintf("%s: %v", description, err),
			Recommendation: "Please resubmit the document to retry analysis.",
		}},
		Confidence: 0,
	}
}
