package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/rmendes/permitflow/internal/core/domain"
	"github.com/rmendes/permitflow/internal/core/ports"
)

// DocumentLedgerUseCase handles document submission and resubmission. Every
// accepted (re)submission recomputes the application status atomically and
// publishes an analysis job; the analysis outcome arrives later through
// AnalyzeDocumentUseCase.
type DocumentLedgerUseCase struct {
	repo      ports.ApplicationRepository
	queue     ports.AnalysisQueue
	presigner ports.UploadPresigner
}

func NewDocumentLedgerUseCase(
	repo ports.ApplicationRepository,
	queue ports.AnalysisQueue,
	presigner ports.UploadPresigner,
) *DocumentLedgerUseCase {
	return &DocumentLedgerUseCase{
		repo:      repo,
		queue:     queue,
		presigner: presigner,
	}
}

func (uc *DocumentLedgerUseCase) Submit(
	ctx context.Context,
	applicationID string,
	category domain.DocumentCategory,
	meta ports.FileMeta,
) (ports.SubmitReceipt, error) {
	if err := validateFileMeta(meta); err != nil {
		return ports.SubmitReceipt{}, err
	}

	documentID := newID("DOC")
	var submitted domain.Document

	_, err := uc.repo.Mutate(ctx, applicationID, func(app *domain.Application) error {
		if app.Closed() {
			return domain.WrapError(domain.ErrInvalidTransition, "submit document",
				errors.New("application is closed to document changes"))
		}
		if category != domain.CategoryOther && !app.Requires(category) {
			return domain.WrapError(domain.ErrInvalidCategory, "submit document",
				fmt.Errorf("category %q is not required for this application", category))
		}

		now := time.Now().UTC()
		doc := domain.Document{
			ID:             documentID,
			Category:       category,
			FileName:       meta.FileName,
			MimeType:       meta.MimeType,
			SizeBytes:      meta.SizeBytes,
			AnalysisStatus: domain.AnalysisPending,
			Issues:         []domain.Issue{},
			UploadedAt:     now,
		}
		app.Documents = append(app.Documents, doc)
		app.AppendComment(now, domain.CommentDocumentSubmitted, map[string]string{
			"document_id": doc.ID,
			"category":    string(doc.Category),
			"file_name":   doc.FileName,
		})
		domain.Derive(app)
		app.UpdatedAt = now

		submitted = doc
		return uc.enqueueAnalysis(ctx, applicationID, doc.ID)
	})
	if err != nil {
		return ports.SubmitReceipt{}, err
	}

	return uc.buildReceipt(ctx, applicationID, submitted), nil
}

func (uc *DocumentLedgerUseCase) Resubmit(
	ctx context.Context,
	applicationID, documentID string,
	meta ports.FileMeta,
) (ports.SubmitReceipt, error) {
	if err := validateFileMeta(meta); err != nil {
		return ports.SubmitReceipt{}, err
	}

	var submitted domain.Document

	_, err := uc.repo.Mutate(ctx, applicationID, func(app *domain.Application) error {
		if app.Closed() {
			return domain.WrapError(domain.ErrInvalidTransition, "resubmit document",
				errors.New("application is closed to document changes"))
		}
		doc := app.DocumentByID(documentID)
		if doc == nil {
			return domain.WrapError(domain.ErrNotFound, "resubmit document",
				fmt.Errorf("document %s", documentID))
		}

		now := time.Now().UTC()
		doc.FileName = meta.FileName
		doc.MimeType = meta.MimeType
		doc.SizeBytes = meta.SizeBytes
		doc.AnalysisStatus = domain.AnalysisPending
		doc.Issues = []domain.Issue{}
		doc.Confidence = 0
		doc.UploadedAt = now

		app.AppendComment(now, domain.CommentDocumentResubmitted, map[string]string{
			"document_id": doc.ID,
			"category":    string(doc.Category),
			"file_name":   doc.FileName,
		})
		domain.Derive(app)
		app.UpdatedAt = now

		submitted = *doc
		return uc.enqueueAnalysis(ctx, applicationID, doc.ID)
	})
	if err != nil {
		return ports.SubmitReceipt{}, err
	}

	return uc.buildReceipt(ctx, applicationID, submitted), nil
}

// Reject is the administrative override that marks a document rejected. It is
// never produced by analysis. Rejection can reopen a missing-items gap, which
// the deriver picks up.
func (uc *DocumentLedgerUseCase) Reject(ctx context.Context, applicationID, documentID, reason string) (*domain.Application, error) {
	return uc.repo.Mutate(ctx, applicationID, func(app *domain.Application) error {
		if app.Closed() {
			return domain.WrapError(domain.ErrInvalidTransition, "reject document",
				errors.New("application is closed to document changes"))
		}
		doc := app.DocumentByID(documentID)
		if doc == nil {
			return domain.WrapError(domain.ErrNotFound, "reject document",
				fmt.Errorf("document %s", documentID))
		}

		now := time.Now().UTC()
		doc.AnalysisStatus = domain.AnalysisRejected
		app.AppendComment(now, domain.CommentDocumentRejected, map[string]string{
			"document_id": doc.ID,
			"file_name":   doc.FileName,
			"reason":      reason,
		})
		domain.Derive(app)
		app.UpdatedAt = now
		return nil
	})
}

// enqueueAnalysis publishes the analysis job from inside the ledger mutation,
// so a failed publish rolls back the whole submission instead of leaving a
// committed document stuck pending with no job behind it.
func (uc *DocumentLedgerUseCase) enqueueAnalysis(ctx context.Context, applicationID, documentID string) error {
	if err := uc.queue.PublishAnalysisRequested(ctx, ports.AnalysisJob{
		ApplicationID: applicationID,
		DocumentID:    documentID,
		EnqueuedAt:    time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("publish analysis job: %w", err)
	}
	return nil
}

// buildReceipt presigns the upload location for an already committed document.
func (uc *DocumentLedgerUseCase) buildReceipt(
	ctx context.Context,
	applicationID string,
	doc domain.Document,
) ports.SubmitReceipt {
	receipt := ports.SubmitReceipt{Document: doc}

	if uc.presigner != nil {
		key := uploadKey(applicationID, doc.ID, doc.FileName)
		url, ttl, err := uc.presigner.PresignUpload(ctx, key, doc.MimeType, doc.SizeBytes)
		if err != nil {
			// The ledger entry is already committed; the client can retry
			// the upload through resubmission.
			slog.Warn("presign_upload_failed", "application_id", applicationID, "document_id", doc.ID, "error", err)
		} else {
			receipt.UploadURL = url
			receipt.UploadExpiresIn = int(ttl.Seconds())
		}
	}

	return receipt
}

func validateFileMeta(meta ports.FileMeta) error {
	if strings.TrimSpace(meta.FileName) == "" {
		return domain.WrapError(domain.ErrValidation, "validate file meta", errors.New("file name is required"))
	}
	if meta.SizeBytes < 0 {
		return domain.WrapError(domain.ErrValidation, "validate file meta", errors.New("negative file size"))
	}
	return nil
}

func uploadKey(applicationID, documentID, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	return "applications/" + applicationID + "/" + documentID + ext
}
