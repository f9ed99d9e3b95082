package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rmendes/permitflow/internal/core/domain"
	"github.com/rmendes/permitflow/internal/core/ports"
)

type leadRequest struct {
	Name               string `json:"name"`
	Email              string `json:"email"`
	Phone              string `json:"phone"`
	ServiceType        string `json:"serviceType"`
	ProjectLocation    string `json:"projectLocation"`
	ProjectTimeline    string `json:"projectTimeline"`
	ProjectDescription string `json:"projectDescription"`
	InjuryType         string `json:"injuryType"`
	InjuryDate         string `json:"injuryDate"`
	InjuryDescription  string `json:"injuryDescription"`
	HowHeard           string `json:"howHeard"`
}

func (rt *Router) createLead(w http.ResponseWriter, r *http.Request) {
	var req leadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	lead, err := rt.leads.CreateLead(r.Context(), ports.LeadInput{
		Name:               req.Name,
		Email:              req.Email,
		Phone:              req.Phone,
		ServiceType:        req.ServiceType,
		ProjectLocation:    req.ProjectLocation,
		ProjectTimeline:    req.ProjectTimeline,
		ProjectDescription: req.ProjectDescription,
		InjuryType:         req.InjuryType,
		InjuryDate:         req.InjuryDate,
		InjuryDescription:  req.InjuryDescription,
		HowHeard:           req.HowHeard,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordLeadCaptured(serviceName, "lead")
	}
	writeJSON(w, http.StatusCreated, lead)
}

func (rt *Router) listLeads(w http.ResponseWriter, r *http.Request) {
	status := domain.LeadStatus(strings.ToLower(r.URL.Query().Get("status")))
	leads, err := rt.leads.ListLeads(r.Context(), status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leads": leads})
}

func (rt *Router) getLead(w http.ResponseWriter, r *http.Request) {
	lead, err := rt.leads.GetLead(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

type leadUpdateRequest struct {
	Status         string  `json:"status"`
	Note           string  `json:"note"`
	AssignedTo     string  `json:"assignedTo"`
	EstimatedValue float64 `json:"estimatedValue"`
	Contacted      bool    `json:"contacted"`
}

func (rt *Router) updateLead(w http.ResponseWriter, r *http.Request) {
	var req leadUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	lead, err := rt.leads.UpdateLead(r.Context(), r.PathValue("id"), ports.LeadUpdate{
		Status:         domain.LeadStatus(strings.ToLower(req.Status)),
		Note:           req.Note,
		AssignedTo:     req.AssignedTo,
		EstimatedValue: req.EstimatedValue,
		Contacted:      req.Contacted,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (rt *Router) deleteLead(w http.ResponseWriter, r *http.Request) {
	if err := rt.leads.DeleteLead(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type quoteRequest struct {
	PermitType string `json:"permitType"`
	Timeline   string `json:"timeline"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
}

func (rt *Router) createQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	quote, err := rt.leads.CreateQuote(r.Context(), ports.QuoteInput{
		PermitType: req.PermitType,
		Timeline:   req.Timeline,
		Email:      req.Email,
		Phone:      req.Phone,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordLeadCaptured(serviceName, "quote")
	}
	writeJSON(w, http.StatusCreated, quote)
}

func (rt *Router) listQuotes(w http.ResponseWriter, r *http.Request) {
	status := domain.LeadStatus(strings.ToLower(r.URL.Query().Get("status")))
	quotes, err := rt.leads.ListQuotes(r.Context(), status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"quotes": quotes})
}

func (rt *Router) getQuote(w http.ResponseWriter, r *http.Request) {
	quote, err := rt.leads.GetQuote(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (rt *Router) updateQuote(w http.ResponseWriter, r *http.Request) {
	var req leadUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	quote, err := rt.leads.UpdateQuote(r.Context(), r.PathValue("id"), ports.LeadUpdate{
		Status:         domain.LeadStatus(strings.ToLower(req.Status)),
		Note:           req.Note,
		AssignedTo:     req.AssignedTo,
		EstimatedValue: req.EstimatedValue,
		Contacted:      req.Contacted,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (rt *Router) deleteQuote(w http.ResponseWriter, r *http.Request) {
	if err := rt.leads.DeleteQuote(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
