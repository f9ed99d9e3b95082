package domain

import (
	"fmt"
	"strings"
)

// Derive recomputes MissingItems, Status, ReadyForHumanReview and Complete
// from scratch off the current document ledger. It is idempotent and must be
// called after every document mutation, under the owning application's
// serialization point.
//
// Approved and denied are sticky terminal overrides: once a human decision is
// recorded, document state no longer moves the application.
func Derive(a *Application) {
	if a.Closed() {
		return
	}

	a.MissingItems = missingItems(a)

	switch {
	case len(a.Documents) == 0:
		a.Status = StatusDraft
	case len(a.MissingItems) > 0:
		a.Status = StatusDocumentsPending
	default:
		a.Status = gateStatus(a)
	}

	ready := a.Status == StatusReadyForApproval
	a.ReadyForHumanReview = ready
	a.Complete = ready
}

// missingItems is the required set minus categories satisfied by at least one
// non-rejected document. Order follows RequiredDocuments.
func missingItems(a *Application) []DocumentCategory {
	satisfied := make(map[DocumentCategory]bool, len(a.Documents))
	for _, doc := range a.Documents {
		if doc.AnalysisStatus != AnalysisRejected {
			satisfied[doc.Category] = true
		}
	}

	missing := make([]DocumentCategory, 0, len(a.RequiredDocuments))
	for _, category := range a.RequiredDocuments {
		if !satisfied[category] {
			missing = append(missing, category)
		}
	}
	return missing
}

// gateStatus evaluates only the latest non-rejected document per required
// category: resubmissions and correction-cycle duplicates supersede earlier
// copies, which stay in the ledger for audit but no longer gate. Documents in
// the catch-all "other" category never gate.
func gateStatus(a *Application) ApplicationStatus {
	latest := make(map[DocumentCategory]*Document, len(a.RequiredDocuments))
	for i := range a.Documents {
		doc := &a.Documents[i]
		if doc.AnalysisStatus == AnalysisRejected || !a.Requires(doc.Category) {
			continue
		}
		latest[doc.Category] = doc
	}

	inFlight := false
	for _, doc := range latest {
		switch doc.AnalysisStatus {
		case AnalysisNeedsCorrection:
			return StatusNeedsCorrection
		case AnalysisPending, AnalysisAnalyzing:
			inFlight = true
		}
	}
	if inFlight {
		return StatusUnderReview
	}
	return StatusReadyForApproval
}

// NextSteps renders the applicant-facing guidance for the current state. It
// is derived on every read and never persisted.
func NextSteps(a *Application) []string {
	var steps []string

	switch a.Status {
	case StatusDraft:
		steps = append(steps,
			"Complete the application form with all required information.",
			fmt.Sprintf("Upload the following required documents: %s.", categoryList(a.RequiredDocuments)),
		)
	case StatusDocumentsPending:
		if len(a.MissingItems) > 0 {
			steps = append(steps,
				fmt.Sprintf("Upload the remaining required documents: %s.", categoryList(a.MissingItems)))
		}
	case StatusNeedsCorrection:
		var names []string
		for _, doc := range a.Documents {
			if doc.AnalysisStatus == AnalysisNeedsCorrection {
				names = append(names, doc.FileName)
			}
		}
		steps = append(steps,
			fmt.Sprintf("Correct and reupload the following documents: %s.", strings.Join(names, ", ")))
		for _, doc := range a.Documents {
			if doc.AnalysisStatus != AnalysisNeedsCorrection {
				continue
			}
			for _, issue := range doc.Issues {
				if issue.Severity != SeverityCritical && issue.Severity != SeverityMajor {
					continue
				}
				step := fmt.Sprintf("For %s: %s", doc.FileName, issue.Description)
				if issue.Recommendation != "" {
					step += " - " + issue.Recommendation
				}
				steps = append(steps, step)
			}
		}
	case StatusReadyForApproval:
		steps = append(steps,
			"Your application is complete and ready for final review by our team.",
			"You will be notified when the review is complete.",
		)
	case StatusApproved:
		steps = append(steps,
			"Your permit application has been approved!",
			"You can download your permit from the dashboard.",
		)
	case StatusDenied:
		steps = append(steps,
			"Your permit application has been denied.",
			"Please review the comments from our team for more information.",
		)
	default:
		steps = append(steps, "Continue with the application process.")
	}

	return steps
}

func categoryList(categories []DocumentCategory) string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = strings.ReplaceAll(string(c), "_", " ")
	}
	return strings.Join(names, ", ")
}
