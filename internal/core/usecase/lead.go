package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/rmendes/permitflow/internal/core/domain"
	"github.com/rmendes/permitflow/internal/core/ports"
)

// LeadBookUseCase is the CRM over funnel leads and quick quotes.
type LeadBookUseCase struct {
	repo     ports.LeadRepository
	validate *validator.Validate
}

func NewLeadBookUseCase(repo ports.LeadRepository) *LeadBookUseCase {
	return &LeadBookUseCase{
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (uc *LeadBookUseCase) CreateLead(ctx context.Context, input ports.LeadInput) (*domain.Lead, error) {
	if err := uc.validate.Struct(input); err != nil {
		return nil, domain.WrapError(domain.ErrValidation, "create lead", err)
	}

	now := time.Now().UTC()
	lead := &domain.Lead{
		ID:                 newID("LEAD"),
		Name:               input.Name,
		Email:              input.Email,
		Phone:              input.Phone,
		ServiceType:        input.ServiceType,
		ProjectLocation:    input.ProjectLocation,
		ProjectTimeline:    input.ProjectTimeline,
		ProjectDescription: input.ProjectDescription,
		InjuryType:         input.InjuryType,
		InjuryDate:         input.InjuryDate,
		InjuryDescription:  input.InjuryDescription,
		HowHeard:           input.HowHeard,
		Status:             domain.LeadNew,
		Notes:              []string{},
		LastContactDate:    now,
		CreatedAt:          now,
	}
	if err := uc.repo.CreateLead(ctx, lead); err != nil {
		return nil, fmt.Errorf("create lead record: %w", err)
	}
	return lead, nil
}

func (uc *LeadBookUseCase) GetLead(ctx context.Context, id string) (*domain.Lead, error) {
	return uc.repo.GetLead(ctx, id)
}

func (uc *LeadBookUseCase) ListLeads(ctx context.Context, status domain.LeadStatus) ([]*domain.Lead, error) {
	if status != "" && !domain.ValidLeadStatus(status) {
		return nil, domain.WrapError(domain.ErrValidation, "list leads",
			fmt.Errorf("unknown lead status %q", status))
	}
	return uc.repo.ListLeads(ctx, status)
}

func (uc *LeadBookUseCase) UpdateLead(ctx context.Context, id string, update ports.LeadUpdate) (*domain.Lead, error) {
	if update.Status != "" && !domain.ValidLeadStatus(update.Status) {
		return nil, domain.WrapError(domain.ErrValidation, "update lead",
			fmt.Errorf("unknown lead status %q", update.Status))
	}
	return uc.repo.MutateLead(ctx, id, func(lead *domain.Lead) error {
		applyLeadUpdate(update,
			&lead.Status, &lead.Notes, &lead.AssignedTo, &lead.EstimatedValue, &lead.LastContactDate)
		return nil
	})
}

func (uc *LeadBookUseCase) DeleteLead(ctx context.Context, id string) error {
	return uc.repo.DeleteLead(ctx, id)
}

func (uc *LeadBookUseCase) CreateQuote(ctx context.Context, input ports.QuoteInput) (*domain.QuickQuote, error) {
	if err := uc.validate.Struct(input); err != nil {
		return nil, domain.WrapError(domain.ErrValidation, "create quote", err)
	}

	now := time.Now().UTC()
	quote := &domain.QuickQuote{
		ID:              newID("QUOTE"),
		PermitType:      input.PermitType,
		Timeline:        input.Timeline,
		Email:           input.Email,
		Phone:           input.Phone,
		Status:          domain.LeadNew,
		Notes:           []string{},
		LastContactDate: now,
		CreatedAt:       now,
	}
	if err := uc.repo.CreateQuote(ctx, quote); err != nil {
		return nil, fmt.Errorf("create quote record: %w", err)
	}
	return quote, nil
}

func (uc *LeadBookUseCase) GetQuote(ctx context.Context, id string) (*domain.QuickQuote, error) {
	return uc.repo.GetQuote(ctx, id)
}

func (uc *LeadBookUseCase) ListQuotes(ctx context.Context, status domain.LeadStatus) ([]*domain.QuickQuote, error) {
	if status != "" && !domain.ValidLeadStatus(status) {
		return nil, domain.WrapError(domain.ErrValidation, "list quotes",
			fmt.Errorf("unknown lead status %q", status))
	}
	return uc.repo.ListQuotes(ctx, status)
}

func (uc *LeadBookUseCase) UpdateQuote(ctx context.Context, id string, update ports.LeadUpdate) (*domain.QuickQuote, error) {
	if update.Status != "" && !domain.ValidLeadStatus(update.Status) {
		return nil, domain.WrapError(domain.ErrValidation, "update quote",
			fmt.Errorf("unknown lead status %q", update.Status))
	}
	return uc.repo.MutateQuote(ctx, id, func(quote *domain.QuickQuote) error {
		applyLeadUpdate(update,
			&quote.Status, &quote.Notes, &quote.AssignedTo, &quote.EstimatedValue, &quote.LastContactDate)
		return nil
	})
}

func (uc *LeadBookUseCase) DeleteQuote(ctx context.Context, id string) error {
	return uc.repo.DeleteQuote(ctx, id)
}

// applyLeadUpdate mutates the shared CRM fields of a lead or quote. Notes
// append; nothing replaces them.
func applyLeadUpdate(
	update ports.LeadUpdate,
	status *domain.LeadStatus,
	notes *[]string,
	assignedTo *string,
	estimatedValue *float64,
	lastContact *time.Time,
) {
	if update.Status != "" {
		*status = update.Status
	}
	if update.Note != "" {
		*notes = append(*notes, update.Note)
	}
	if update.AssignedTo != "" {
		*assignedTo = update.AssignedTo
	}
	if update.EstimatedValue > 0 {
		*estimatedValue = update.EstimatedValue
	}
	if update.Contacted {
		*lastContact = time.Now().UTC()
	}
}
