package domain

import "time"

type LeadStatus string

const (
	LeadNew        LeadStatus = "new"
	LeadContacted  LeadStatus = "contacted"
	LeadQualified  LeadStatus = "qualified"
	LeadProposal   LeadStatus = "proposal"
	LeadClosedWon  LeadStatus = "closed_won"
	LeadClosedLost LeadStatus = "closed_lost"
)

// ValidLeadStatus reports whether v names a pipeline stage.
func ValidLeadStatus(v LeadStatus) bool {
	switch v {
	case LeadNew, LeadContacted, LeadQualified, LeadProposal, LeadClosedWon, LeadClosedLost:
		return true
	default:
		return false
	}
}

// Lead is one captured inquiry from the marketing funnel, tracked through the
// CRM pipeline. Notes are append-only.
type Lead struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Email              string     `json:"email"`
	Phone              string     `json:"phone"`
	ServiceType        string     `json:"serviceType"`
	ProjectLocation    string     `json:"projectLocation,omitempty"`
	ProjectTimeline    string     `json:"projectTimeline,omitempty"`
	ProjectDescription string     `json:"projectDescription,omitempty"`
	InjuryType         string     `json:"injuryType,omitempty"`
	InjuryDate         string     `json:"injuryDate,omitempty"`
	InjuryDescription  string     `json:"injuryDescription,omitempty"`
	HowHeard           string     `json:"howHeard,omitempty"`
	Status             LeadStatus `json:"status"`
	Notes              []string   `json:"notes"`
	AssignedTo         string     `json:"assignedTo,omitempty"`
	EstimatedValue     float64    `json:"estimatedValue,omitempty"`
	LastContactDate    time.Time  `json:"lastContactDate,omitzero"`
	CreatedAt          time.Time  `json:"createdAt"`
}

// QuickQuote is the short-form quote request, tracked with the same pipeline
// fields as a full lead.
type QuickQuote struct {
	ID              string     `json:"id"`
	PermitType      string     `json:"permitType"`
	Timeline        string     `json:"timeline"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone"`
	Status          LeadStatus `json:"status"`
	Notes           []string   `json:"notes"`
	AssignedTo      string     `json:"assignedTo,omitempty"`
	EstimatedValue  float64    `json:"estimatedValue,omitempty"`
	LastContactDate time.Time  `json:"lastContactDate,omitzero"`
	CreatedAt       time.Time  `json:"createdAt"`
}
