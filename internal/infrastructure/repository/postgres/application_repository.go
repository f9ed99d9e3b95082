package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rmendes/permitflow/internal/core/domain"
	"github.com/rmendes/permitflow/internal/core/ports"
)

var _ ports.ApplicationRepository = (*ApplicationRepository)(nil)

const applicationColumns = `
id, applicant_name, applicant_email, applicant_phone, property_address, project_description,
project_type, permit_type, estimated_cost, status, required_documents, documents, missing_items,
comments, ready_for_human_review, complete, assigned_to, estimated_value, created_at, updated_at`

type ApplicationRepository struct {
	db *sql.DB
}

func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Create(ctx context.Context, app *domain.Application) error {
	required, documents, missing, comments, err := marshalAggregates(app)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO applications (`+applicationColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
`,
		app.ID, app.ApplicantName, app.ApplicantEmail, app.ApplicantPhone, app.PropertyAddress,
		app.ProjectDescription, string(app.ProjectType), string(app.PermitType), app.EstimatedCost,
		string(app.Status), required, documents, missing, comments,
		app.ReadyForHumanReview, app.Complete, app.AssignedTo, app.EstimatedValue,
		app.CreatedAt, app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (r *ApplicationRepository) Get(ctx context.Context, id string) (*domain.Application, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+applicationColumns+`
FROM applications
WHERE id = $1
`, id)
	return scanApplication(row, id)
}

func (r *ApplicationRepository) List(ctx context.Context) ([]*domain.Application, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+applicationColumns+`
FROM applications
ORDER BY created_at, id
`)
	if err != nil {
		return nil, fmt.Errorf("query applications: %w", err)
	}
	defer rows.Close()

	var out []*domain.Application
	for rows.Next() {
		app, err := scanApplication(rows, "")
		if err != nil {
			return nil, err
		}
		out = append(out, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applications: %w", err)
	}
	return out, nil
}

// Mutate loads the aggregate under a row lock, applies fn, and writes the
// result back in the same transaction. The row lock is the per-application
// serialization point shared by api and worker.
func (r *ApplicationRepository) Mutate(ctx context.Context, id string, fn func(*domain.Application) error) (*domain.Application, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin mutate tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	row := tx.QueryRowContext(ctx, `
SELECT `+applicationColumns+`
FROM applications
WHERE id = $1
FOR UPDATE
`, id)
	app, err := scanApplication(row, id)
	if err != nil {
		return nil, err
	}

	if err := fn(app); err != nil {
		return nil, err
	}

	required, documents, missing, comments, err := marshalAggregates(app)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
UPDATE applications
SET status = $2, required_documents = $3, documents = $4, missing_items = $5, comments = $6,
    ready_for_human_review = $7, complete = $8, assigned_to = $9, estimated_value = $10,
    updated_at = $11
WHERE id = $1
`,
		app.ID, string(app.Status), required, documents, missing, comments,
		app.ReadyForHumanReview, app.Complete, app.AssignedTo, app.EstimatedValue, app.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update application: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit mutate tx: %w", err)
	}
	return app, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner, id string) (*domain.Application, error) {
	var (
		app          domain.Application
		projectType  string
		permitType   string
		status       string
		requiredRaw  []byte
		documentsRaw []byte
		missingRaw   []byte
		commentsRaw  []byte
		assignedTo   sql.NullString
	)

	err := row.Scan(
		&app.ID, &app.ApplicantName, &app.ApplicantEmail, &app.ApplicantPhone,
		&app.PropertyAddress, &app.ProjectDescription, &projectType, &permitType,
		&app.EstimatedCost, &status, &requiredRaw, &documentsRaw, &missingRaw, &commentsRaw,
		&app.ReadyForHumanReview, &app.Complete, &assignedTo, &app.EstimatedValue,
		&app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get application",
				fmt.Errorf("application %s", id))
		}
		return nil, fmt.Errorf("scan application: %w", err)
	}

	app.ProjectType = domain.ProjectType(projectType)
	app.PermitType = domain.PermitType(permitType)
	app.Status = domain.ApplicationStatus(status)
	app.AssignedTo = assignedTo.String

	if err := json.Unmarshal(requiredRaw, &app.RequiredDocuments); err != nil {
		return nil, fmt.Errorf("unmarshal required documents: %w", err)
	}
	if err := json.Unmarshal(documentsRaw, &app.Documents); err != nil {
		return nil, fmt.Errorf("unmarshal documents: %w", err)
	}
	if err := json.Unmarshal(missingRaw, &app.MissingItems); err != nil {
		return nil, fmt.Errorf("unmarshal missing items: %w", err)
	}
	if err := json.Unmarshal(commentsRaw, &app.Comments); err != nil {
		return nil, fmt.Errorf("unmarshal comments: %w", err)
	}
	return &app, nil
}

func marshalAggregates(app *domain.Application) (required, documents, missing, comments []byte, err error) {
	if required, err = json.Marshal(app.RequiredDocuments); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal required documents: %w", err)
	}
	if documents, err = json.Marshal(app.Documents); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal documents: %w", err)
	}
	if missing, err = json.Marshal(app.MissingItems); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal missing items: %w", err)
	}
	if comments, err = json.Marshal(app.Comments); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal comments: %w", err)
	}
	return required, documents, missing, comments, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
