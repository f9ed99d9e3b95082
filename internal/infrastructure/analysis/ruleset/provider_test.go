package ruleset

import (
	"context"
	"testing"

	"github.com/rmendes/permitflow/internal/core/domain"
)

func newProvider(t *testing.T) *Provider {
	t.Helper()
	provider, err := New("")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return provider
}

func TestAnalyzeFlagsEmptyFileAsCritical(t *testing.T) {
	provider := newProvider(t)

	result, err := provider.Analyze(context.Background(), domain.Document{
		Category:  domain.CategorySitePlan,
		FileName:  "site.pdf",
		MimeType:  "application/pdf",
		SizeBytes: 0,
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(result.Issues) != 1 {
		t.Fatalf("issues = %d, want 1", len(result.Issues))
	}
	if result.Issues[0].Severity != domain.SeverityCritical {
		t.Fatalf("severity = %s, want critical", result.Issues[0].Severity)
	}
	if domain.StatusFromIssues(result.Issues) != domain.AnalysisNeedsCorrection {
		t.Fatalf("expected needs_correction for a critical finding")
	}
}

func TestAnalyzeFlagsUnsupportedMimeAsMajor(t *testing.T) {
	provider := newProvider(t)

	result, err := provider.Analyze(context.Background(), domain.Document{
		Category:  domain.CategoryPropertyDeed,
		FileName:  "deed.docx",
		MimeType:  "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		SizeBytes: 4096,
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(result.Issues) != 1 || result.Issues[0].Severity != domain.SeverityMajor {
		t.Fatalf("issues = %+v, want one major finding", result.Issues)
	}
}

func TestAnalyzeApprovesCleanDocument(t *testing.T) {
	provider := newProvider(t)

	result, err := provider.Analyze(context.Background(), domain.Document{
		Category:  domain.CategoryPropertyDeed,
		FileName:  "deed.pdf",
		MimeType:  "application/pdf",
		SizeBytes: 4096,
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(result.Issues) != 0 {
		t.Fatalf("issues = %+v, want none", result.Issues)
	}
	if result.Confidence != 0.95 {
		t.Fatalf("confidence = %v, want 0.95", result.Confidence)
	}
	if domain.StatusFromIssues(result.Issues) != domain.AnalysisApproved {
		t.Fatalf("expected approved for a clean document")
	}
}

func TestAnalyzeMinorAndInfoFindingsStillApprove(t *testing.T) {
	provider := newProvider(t)

	result, err := provider.Analyze(context.Background(), domain.Document{
		Category:  domain.CategorySitePlan,
		FileName:  "site-plan.png.bak",
		MimeType:  "image/png",
		SizeBytes: 4096,
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(result.Issues) != 2 {
		t.Fatalf("issues = %+v, want extension mismatch plus raster advisory", result.Issues)
	}
	if domain.StatusFromIssues(result.Issues) != domain.AnalysisApproved {
		t.Fatalf("minor and info findings must not block approval")
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	provider := newProvider(t)
	doc := domain.Document{
		Category:  domain.CategoryElectricalPlans,
		FileName:  "wiring.jpeg",
		MimeType:  "image/jpeg",
		SizeBytes: 1 << 20,
	}

	first, err := provider.Analyze(context.Background(), doc)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	second, err := provider.Analyze(context.Background(), doc)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if first.Confidence != second.Confidence || len(first.Issues) != len(second.Issues) {
		t.Fatalf("same metadata produced different results: %+v vs %+v", first, second)
	}
}
