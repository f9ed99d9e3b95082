package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rmendes/permitflow/internal/core/domain"
	"github.com/rmendes/permitflow/internal/core/ports"
)

type createApplicationRequest struct {
	ApplicantName      string `json:"applicantName"`
	ApplicantEmail     string `json:"applicantEmail"`
	ApplicantPhone     string `json:"applicantPhone"`
	PropertyAddress    string `json:"propertyAddress"`
	ProjectDescription string `json:"projectDescription"`
	ProjectType        string `json:"projectType"`
	PermitType         string `json:"permitType"`
	EstimatedCost      string `json:"estimatedCost"`
}

func (rt *Router) createApplication(w http.ResponseWriter, r *http.Request) {
	var req createApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	app, err := rt.applications.Create(r.Context(), ports.CreateApplicationInput{
		ApplicantName:      req.ApplicantName,
		ApplicantEmail:     req.ApplicantEmail,
		ApplicantPhone:     req.ApplicantPhone,
		PropertyAddress:    req.PropertyAddress,
		ProjectDescription: req.ProjectDescription,
		ProjectType:        req.ProjectType,
		PermitType:         req.PermitType,
		EstimatedCost:      req.EstimatedCost,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordApplicationCreated(serviceName, string(app.PermitType), string(app.ProjectType))
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"applicationId":     app.ID,
		"application":       app,
		"requiredDocuments": app.RequiredDocuments,
		"nextSteps":         domain.NextSteps(app),
	})
}

func (rt *Router) getApplication(w http.ResponseWriter, r *http.Request) {
	app, err := rt.applications.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(app))
}

func (rt *Router) listApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := rt.applications.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"applications": apps})
}

type updateApplicationRequest struct {
	Status         string  `json:"status"`
	Note           string  `json:"note"`
	AssignedTo     string  `json:"assignedTo"`
	EstimatedValue float64 `json:"estimatedValue"`
}

func (rt *Router) updateApplication(w http.ResponseWriter, r *http.Request) {
	var req updateApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	app, err := rt.applications.Update(r.Context(), r.PathValue("id"), ports.ApplicationUpdate{
		Status:         domain.ApplicationStatus(strings.ToLower(req.Status)),
		Note:           req.Note,
		AssignedTo:     req.AssignedTo,
		EstimatedValue: req.EstimatedValue,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.metrics != nil && req.Status != "" {
		rt.metrics.RecordDecision(serviceName, string(app.Status))
	}
	writeJSON(w, http.StatusOK, viewOf(app))
}

type submitDocumentRequest struct {
	Category  string `json:"category"`
	FileName  string `json:"fileName"`
	MimeType  string `json:"mimeType"`
	SizeBytes int64  `json:"sizeBytes"`
}

type submitDocumentResponse struct {
	DocumentID      string `json:"documentId"`
	AnalysisStatus  string `json:"analysisStatus"`
	UploadURL       string `json:"uploadUrl,omitempty"`
	UploadExpiresIn int    `json:"uploadExpiresIn,omitempty"`
}

func (rt *Router) submitDocument(w http.ResponseWriter, r *http.Request) {
	var req submitDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	receipt, err := rt.documents.Submit(
		r.Context(),
		r.PathValue("id"),
		domain.DocumentCategory(strings.ToLower(strings.TrimSpace(req.Category))),
		ports.FileMeta{FileName: req.FileName, MimeType: req.MimeType, SizeBytes: req.SizeBytes},
	)
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordDocumentSubmitted(serviceName, string(receipt.Document.Category))
	}
	writeJSON(w, http.StatusAccepted, submitDocumentResponse{
		DocumentID:      receipt.Document.ID,
		AnalysisStatus:  string(receipt.Document.AnalysisStatus),
		UploadURL:       receipt.UploadURL,
		UploadExpiresIn: receipt.UploadExpiresIn,
	})
}

func (rt *Router) resubmitDocument(w http.ResponseWriter, r *http.Request) {
	var req submitDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	receipt, err := rt.documents.Resubmit(
		r.Context(),
		r.PathValue("id"),
		r.PathValue("documentId"),
		ports.FileMeta{FileName: req.FileName, MimeType: req.MimeType, SizeBytes: req.SizeBytes},
	)
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordDocumentSubmitted(serviceName, string(receipt.Document.Category))
	}
	writeJSON(w, http.StatusAccepted, submitDocumentResponse{
		DocumentID:      receipt.Document.ID,
		AnalysisStatus:  string(receipt.Document.AnalysisStatus),
		UploadURL:       receipt.UploadURL,
		UploadExpiresIn: receipt.UploadExpiresIn,
	})
}

func (rt *Router) rejectDocument(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	app, err := rt.documents.Reject(r.Context(), r.PathValue("id"), r.PathValue("documentId"), req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(app))
}
