// Package ruleset is the built-in analysis provider. It reviews document
// metadata against an intake policy and reports findings without ever reading
// file content, which keeps worker runs deterministic and fast. A smarter
// provider can replace it behind the same port.
package ruleset

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rmendes/permitflow/internal/core/domain"
	"github.com/rmendes/permitflow/internal/core/ports"
)

//go:embed policy.yaml
var defaultPolicy []byte

var _ ports.AnalysisProvider = (*Provider)(nil)

// Policy is the intake ruleset applied to every submitted document.
type Policy struct {
	MaxSizeBytes     int64               `yaml:"max_size_bytes"`
	AllowedMimeTypes []string            `yaml:"allowed_mime_types"`
	PlanCategories   []string            `yaml:"plan_categories"`
	Extensions       map[string][]string `yaml:"extensions"`
}

type Provider struct {
	policy Policy
}

// New loads the policy from path, or the embedded default when path is empty.
func New(path string) (*Provider, error) {
	raw := defaultPolicy
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read analysis policy: %w", err)
		}
		raw = data
	}

	var policy Policy
	if err := yaml.Unmarshal(raw, &policy); err != nil {
		return nil, fmt.Errorf("parse analysis policy: %w", err)
	}
	if policy.MaxSizeBytes <= 0 || len(policy.AllowedMimeTypes) == 0 {
		return nil, fmt.Errorf("analysis policy missing size limit or mime types")
	}
	return &Provider{policy: policy}, nil
}

func (p *Provider) Analyze(_ context.Context, doc domain.Document) (domain.AnalysisResult, error) {
	var issues []domain.Issue

	if doc.SizeBytes <= 0 {
		issues = append(issues, domain.Issue{
			Severity:       domain.SeverityCritical,
			Description:    "uploaded file is empty",
			Location:       doc.FileName,
			Recommendation: "re-export the document and upload it again",
		})
	} else if doc.SizeBytes > p.policy.MaxSizeBytes {
		issues = append(issues, domain.Issue{
			Severity:       domain.SeverityMajor,
			Description:    fmt.Sprintf("file exceeds the %d byte intake limit", p.policy.MaxSizeBytes),
			Location:       doc.FileName,
			Recommendation: "split the document or reduce its resolution",
		})
	}

	mime := strings.ToLower(strings.TrimSpace(doc.MimeType))
	if !p.mimeAllowed(mime) {
		issues = append(issues, domain.Issue{
			Severity:       domain.SeverityMajor,
			Description:    fmt.Sprintf("unsupported file type %q", doc.MimeType),
			Location:       doc.FileName,
			Recommendation: "submit a PDF or a PNG, JPEG, or TIFF image",
		})
	} else {
		if !p.extensionMatches(mime, doc.FileName) {
			issues = append(issues, domain.Issue{
				Severity:    domain.SeverityMinor,
				Description: fmt.Sprintf("file extension does not match declared type %q", doc.MimeType),
				Location:    doc.FileName,
			})
		}
		if strings.HasPrefix(mime, "image/") && p.planCategory(doc.Category) {
			issues = append(issues, domain.Issue{
				Severity:       domain.SeverityInfo,
				Description:    "plan sheets submitted as a raster image",
				Location:       doc.FileName,
				Recommendation: "vector PDFs scale better for plan review",
			})
		}
	}

	return domain.AnalysisResult{
		Issues:     issues,
		Confidence: confidence(issues),
	}, nil
}

func (p *Provider) mimeAllowed(mime string) bool {
	for _, allowed := range p.policy.AllowedMimeTypes {
		if mime == allowed {
			return true
		}
	}
	return false
}

func (p *Provider) extensionMatches(mime, fileName string) bool {
	wanted, ok := p.policy.Extensions[mime]
	if !ok {
		return true
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	for _, candidate := range wanted {
		if ext == candidate {
			return true
		}
	}
	return false
}

func (p *Provider) planCategory(category domain.DocumentCategory) bool {
	for _, plan := range p.policy.PlanCategories {
		if string(category) == plan {
			return true
		}
	}
	return false
}

// confidence is a fixed score per finding severity, so the same metadata
// always produces the same result.
func confidence(issues []domain.Issue) float64 {
	score := 0.95
	for _, issue := range issues {
		switch issue.Severity {
		case domain.SeverityCritical:
			score -= 0.20
		case domain.SeverityMajor:
			score -= 0.15
		case domain.SeverityMinor:
			score -= 0.05
		case domain.SeverityInfo:
			score -= 0.02
		}
	}
	if score < 0.20 {
		score = 0.20
	}
	return score
}
