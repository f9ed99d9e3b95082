package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/rmendes/permitflow/internal/core/domain"
	"github.com/rmendes/permitflow/internal/core/ports"
)

// ApplicationRegistryUseCase owns the permit application lifecycle: creation,
// lookup, and the administrative decision path.
type ApplicationRegistryUseCase struct {
	repo     ports.ApplicationRepository
	validate *validator.Validate
}

func NewApplicationRegistryUseCase(repo ports.ApplicationRepository) *ApplicationRegistryUseCase {
	return &ApplicationRegistryUseCase{
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (uc *ApplicationRegistryUseCase) Create(ctx context.Context, input ports.CreateApplicationInput) (*domain.Application, error) {
	if err := uc.validate.Struct(input); err != nil {
		return nil, domain.WrapError(domain.ErrValidation, "create application", err)
	}
	projectType := domain.ProjectType(strings.ToLower(strings.TrimSpace(input.ProjectType)))
	if !domain.ValidProjectType(projectType) {
		return nil, domain.WrapError(domain.ErrValidation, "create application",
			fmt.Errorf("unknown project type %q", input.ProjectType))
	}
	permitType := domain.PermitType(strings.ToLower(strings.TrimSpace(input.PermitType)))
	if !domain.ValidPermitType(permitType) {
		return nil, domain.WrapError(domain.ErrValidation, "create application",
			fmt.Errorf("unknown permit type %q", input.PermitType))
	}

	required := domain.RequiredDocuments(permitType, projectType)
	now := time.Now().UTC()

	app := &domain.Application{
		ID:                 newID("PERMIT"),
		ApplicantName:      input.ApplicantName,
		ApplicantEmail:     input.ApplicantEmail,
		ApplicantPhone:     input.ApplicantPhone,
		PropertyAddress:    input.PropertyAddress,
		ProjectDescription: input.ProjectDescription,
		ProjectType:        projectType,
		PermitType:         permitType,
		EstimatedCost:      input.EstimatedCost,
		Status:             domain.StatusDraft,
		RequiredDocuments:  required,
		Documents:          []domain.Document{},
		MissingItems:       append([]domain.DocumentCategory(nil), required...),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	app.AppendComment(now, domain.CommentApplicationCreated, map[string]string{
		"required_documents": joinCategories(required),
	})

	if err := uc.repo.Create(ctx, app); err != nil {
		return nil, fmt.Errorf("create application record: %w", err)
	}
	return app, nil
}

func (uc *ApplicationRegistryUseCase) Get(ctx context.Context, id string) (*domain.Application, error) {
	app, err := uc.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch application by id: %w", err)
	}
	return app, nil
}

func (uc *ApplicationRegistryUseCase) List(ctx context.Context) ([]*domain.Application, error) {
	apps, err := uc.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return apps, nil
}

// Update applies the closed set of administrative mutations. A status change
// is accepted only for the terminal decisions, and only once the deriver has
// marked the application ready for human review.
func (uc *ApplicationRegistryUseCase) Update(ctx context.Context, id string, update ports.ApplicationUpdate) (*domain.Application, error) {
	if update.Status != "" &&
		update.Status != domain.StatusApproved && update.Status != domain.StatusDenied {
		return nil, domain.WrapError(domain.ErrInvalidTransition, "update application",
			fmt.Errorf("status %q is not an allowed override", update.Status))
	}

	app, err := uc.repo.Mutate(ctx, id, func(app *domain.Application) error {
		now := time.Now().UTC()

		if update.Status != "" {
			if app.Closed() {
				return domain.WrapError(domain.ErrInvalidTransition, "update application",
					errors.New("application already decided"))
			}
			if !app.ReadyForHumanReview {
				return domain.WrapError(domain.ErrInvalidTransition, "update application",
					errors.New("application is not ready for human review"))
			}
			app.Status = update.Status
			app.AppendComment(now, domain.CommentDecision, map[string]string{
				"decision": string(update.Status),
			})
		}
		if update.Note != "" {
			app.AppendComment(now, domain.CommentNote, map[string]string{"note": update.Note})
		}
		if update.AssignedTo != "" {
			app.AssignedTo = update.AssignedTo
		}
		if update.EstimatedValue > 0 {
			app.EstimatedValue = update.EstimatedValue
		}

		app.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

func joinCategories(categories []domain.DocumentCategory) string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}
	return strings.Join(names, ",")
}
