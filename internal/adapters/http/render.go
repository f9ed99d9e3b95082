package httpadapter

import (
	"fmt"
	"strings"

	"github.com/rmendes/permitflow/internal/core/domain"
)

// applicationView is the wire shape for one application: the aggregate plus
// text rendered from its structured state. Presentation lives here, never in
// the core.
type applicationView struct {
	Application *domain.Application `json:"application"`
	NextSteps   []string            `json:"nextSteps"`
	Activity    []activityEntry     `json:"activity"`
}

type activityEntry struct {
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
}

func viewOf(app *domain.Application) applicationView {
	activity := make([]activityEntry, 0, len(app.Comments))
	for _, comment := range app.Comments {
		activity = append(activity, activityEntry{
			Timestamp: comment.Timestamp.UTC().Format("2006-01-02T15:04:05Z07:00"),
			Message:   renderComment(comment),
		})
	}
	return applicationView{
		Application: app,
		NextSteps:   domain.NextSteps(app),
		Activity:    activity,
	}
}

func renderComment(c domain.Comment) string {
	p := c.Payload
	switch c.Kind {
	case domain.CommentApplicationCreated:
		return fmt.Sprintf("Application received. Required documents: %s.", prettyList(p["required_documents"]))
	case domain.CommentDocumentSubmitted:
		return fmt.Sprintf("Document submitted for %s: %s.", prettyCategory(p["category"]), p["file_name"])
	case domain.CommentDocumentResubmitted:
		return fmt.Sprintf("Document resubmitted for %s: %s.", prettyCategory(p["category"]), p["file_name"])
	case domain.CommentDocumentAnalyzed:
		return fmt.Sprintf("Analysis of %s complete: %s.", p["file_name"], prettyCategory(p["outcome"]))
	case domain.CommentDocumentRejected:
		if p["reason"] != "" {
			return fmt.Sprintf("Document %s was rejected: %s.", p["file_name"], p["reason"])
		}
		return fmt.Sprintf("Document %s was rejected.", p["file_name"])
	case domain.CommentCorrectionsNeeded:
		return "One or more documents need corrections before review can continue."
	case domain.CommentDocumentsMissing:
		return fmt.Sprintf("Still waiting on required documents: %s.", prettyList(p["missing"]))
	case domain.CommentReviewReady:
		return "All required documents approved. The application is ready for review."
	case domain.CommentDecision:
		return fmt.Sprintf("Final decision recorded: application %s.", p["decision"])
	case domain.CommentNote:
		return p["note"]
	default:
		return string(c.Kind)
	}
}

func prettyCategory(v string) string {
	return strings.ReplaceAll(v, "_", " ")
}

func prettyList(joined string) string {
	parts := strings.Split(joined, ",")
	for i, part := range parts {
		parts[i] = prettyCategory(strings.TrimSpace(part))
	}
	return strings.Join(parts, ", ")
}
