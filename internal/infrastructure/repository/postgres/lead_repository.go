package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rmendes/permitflow/internal/core/domain"
	"github.com/rmendes/permitflow/internal/core/ports"
)

var _ ports.LeadRepository = (*LeadRepository)(nil)

// leadDetails groups the optional funnel fields into one JSONB column.
type leadDetails struct {
	ProjectLocation    string `json:"project_location,omitempty"`
	ProjectTimeline    string `json:"project_timeline,omitempty"`
	ProjectDescription string `json:"project_description,omitempty"`
	InjuryType         string `json:"injury_type,omitempty"`
	InjuryDate         string `json:"injury_date,omitempty"`
	InjuryDescription  string `json:"injury_description,omitempty"`
	HowHeard           string `json:"how_heard,omitempty"`
}

type LeadRepository struct {
	db *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

func (r *LeadRepository) CreateLead(ctx context.Context, lead *domain.Lead) error {
	details, err := json.Marshal(leadDetails{
		ProjectLocation:    lead.ProjectLocation,
		ProjectTimeline:    lead.ProjectTimeline,
		ProjectDescription: lead.ProjectDescription,
		InjuryType:         lead.InjuryType,
		InjuryDate:         lead.InjuryDate,
		InjuryDescription:  lead.InjuryDescription,
		HowHeard:           lead.HowHeard,
	})
	if err != nil {
		return fmt.Errorf("marshal lead details: %w", err)
	}
	notes, err := json.Marshal(lead.Notes)
	if err != nil {
		return fmt.Errorf("marshal lead notes: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO leads (id, name, email, phone, service_type, details, status, notes, assigned_to, estimated_value, last_contact_date, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
`,
		lead.ID, lead.Name, lead.Email, lead.Phone, lead.ServiceType, details,
		string(lead.Status), notes, lead.AssignedTo, lead.EstimatedValue,
		nullTime(lead.LastContactDate), lead.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

func (r *LeadRepository) GetLead(ctx context.Context, id string) (*domain.Lead, error) {
	row := r.db.QueryRowContext(ctx, leadSelect+` WHERE id = $1`, id)
	return scanLead(row, id)
}

func (r *LeadRepository) ListLeads(ctx context.Context, status domain.LeadStatus) ([]*domain.Lead, error) {
	query := leadSelect + ` ORDER BY created_at, id`
	args := []any{}
	if status != "" {
		query = leadSelect + ` WHERE status = $1 ORDER BY created_at, id`
		args = append(args, string(status))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query leads: %w", err)
	}
	defer rows.Close()

	var out []*domain.Lead
	for rows.Next() {
		lead, err := scanLead(rows, "")
		if err != nil {
			return nil, err
		}
		out = append(out, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leads: %w", err)
	}
	return out, nil
}

func (r *LeadRepository) MutateLead(ctx context.Context, id string, fn func(*domain.Lead) error) (*domain.Lead, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin lead tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	row := tx.QueryRowContext(ctx, leadSelect+` WHERE id = $1 FOR UPDATE`, id)
	lead, err := scanLead(row, id)
	if err != nil {
		return nil, err
	}

	if err := fn(lead); err != nil {
		return nil, err
	}

	notes, err := json.Marshal(lead.Notes)
	if err != nil {
		return nil, fmt.Errorf("marshal lead notes: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
UPDATE leads
SET status = $2, notes = $3, assigned_to = $4, estimated_value = $5, last_contact_date = $6
WHERE id = $1
`, lead.ID, string(lead.Status), notes, lead.AssignedTo, lead.EstimatedValue, nullTime(lead.LastContactDate))
	if err != nil {
		return nil, fmt.Errorf("update lead: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit lead tx: %w", err)
	}
	return lead, nil
}

func (r *LeadRepository) DeleteLead(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.WrapError(domain.ErrNotFound, "delete lead", fmt.Errorf("lead %s", id))
	}
	return nil
}

func (r *LeadRepository) CreateQuote(ctx context.Context, quote *domain.QuickQuote) error {
	notes, err := json.Marshal(quote.Notes)
	if err != nil {
		return fmt.Errorf("marshal quote notes: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO quick_quotes (id, permit_type, timeline, email, phone, status, notes, assigned_to, estimated_value, last_contact_date, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
`,
		quote.ID, quote.PermitType, quote.Timeline, quote.Email, quote.Phone,
		string(quote.Status), notes, quote.AssignedTo, quote.EstimatedValue,
		nullTime(quote.LastContactDate), quote.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert quote: %w", err)
	}
	return nil
}

func (r *LeadRepository) GetQuote(ctx context.Context, id string) (*domain.QuickQuote, error) {
	row := r.db.QueryRowContext(ctx, quoteSelect+` WHERE id = $1`, id)
	return scanQuote(row, id)
}

func (r *LeadRepository) ListQuotes(ctx context.Context, status domain.LeadStatus) ([]*domain.QuickQuote, error) {
	query := quoteSelect + ` ORDER BY created_at, id`
	args := []any{}
	if status != "" {
		query = quoteSelect + ` WHERE status = $1 ORDER BY created_at, id`
		args = append(args, string(status))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()

	var out []*domain.QuickQuote
	for rows.Next() {
		quote, err := scanQuote(rows, "")
		if err != nil {
			return nil, err
		}
		out = append(out, quote)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quotes: %w", err)
	}
	return out, nil
}

func (r *LeadRepository) MutateQuote(ctx context.Context, id string, fn func(*domain.QuickQuote) error) (*domain.QuickQuote, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin quote tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	row := tx.QueryRowContext(ctx, quoteSelect+` WHERE id = $1 FOR UPDATE`, id)
	quote, err := scanQuote(row, id)
	if err != nil {
		return nil, err
	}

	if err := fn(quote); err != nil {
		return nil, err
	}

	notes, err := json.Marshal(quote.Notes)
	if err != nil {
		return nil, fmt.Errorf("marshal quote notes: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
UPDATE quick_quotes
SET status = $2, notes = $3, assigned_to = $4, estimated_value = $5, last_contact_date = $6
WHERE id = $1
`, quote.ID, string(quote.Status), notes, quote.AssignedTo, quote.EstimatedValue, nullTime(quote.LastContactDate))
	if err != nil {
		return nil, fmt.Errorf("update quote: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit quote tx: %w", err)
	}
	return quote, nil
}

func (r *LeadRepository) DeleteQuote(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM quick_quotes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete quote: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.WrapError(domain.ErrNotFound, "delete quote", fmt.Errorf("quote %s", id))
	}
	return nil
}

const leadSelect = `
SELECT id, name, email, phone, service_type, details, status, notes, assigned_to, estimated_value, last_contact_date, created_at
FROM leads`

const quoteSelect = `
SELECT id, permit_type, timeline, email, phone, status, notes, assigned_to, estimated_value, last_contact_date, created_at
FROM quick_quotes`

func scanLead(row rowScanner, id string) (*domain.Lead, error) {
	var (
		lead        domain.Lead
		detailsRaw  []byte
		notesRaw    []byte
		status      string
		assignedTo  sql.NullString
		lastContact sql.NullTime
	)
	err := row.Scan(
		&lead.ID, &lead.Name, &lead.Email, &lead.Phone, &lead.ServiceType,
		&detailsRaw, &status, &notesRaw, &assignedTo, &lead.EstimatedValue,
		&lastContact, &lead.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get lead", fmt.Errorf("lead %s", id))
		}
		return nil, fmt.Errorf("scan lead: %w", err)
	}

	var details leadDetails
	if err := json.Unmarshal(detailsRaw, &details); err != nil {
		return nil, fmt.Errorf("unmarshal lead details: %w", err)
	}
	if err := json.Unmarshal(notesRaw, &lead.Notes); err != nil {
		return nil, fmt.Errorf("unmarshal lead notes: %w", err)
	}

	lead.ProjectLocation = details.ProjectLocation
	lead.ProjectTimeline = details.ProjectTimeline
	lead.ProjectDescription = details.ProjectDescription
	lead.InjuryType = details.InjuryType
	lead.InjuryDate = details.InjuryDate
	lead.InjuryDescription = details.InjuryDescription
	lead.HowHeard = details.HowHeard
	lead.Status = domain.LeadStatus(status)
	lead.AssignedTo = assignedTo.String
	if lastContact.Valid {
		lead.LastContactDate = lastContact.Time
	}
	return &lead, nil
}

func scanQuote(row rowScanner, id string) (*domain.QuickQuote, error) {
	var (
		quote       domain.QuickQuote
		notesRaw    []byte
		status      string
		assignedTo  sql.NullString
		lastContact sql.NullTime
	)
	err := row.Scan(
		&quote.ID, &quote.PermitType, &quote.Timeline, &quote.Email, &quote.Phone,
		&status, &notesRaw, &assignedTo, &quote.EstimatedValue, &lastContact, &quote.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get quote", fmt.Errorf("quote %s", id))
		}
		return nil, fmt.Errorf("scan quote: %w", err)
	}

	if err := json.Unmarshal(notesRaw, &quote.Notes); err != nil {
		return nil, fmt.Errorf("unmarshal quote notes: %w", err)
	}
	quote.Status = domain.LeadStatus(status)
	quote.AssignedTo = assignedTo.String
	if lastContact.Valid {
		quote.LastContactDate = lastContact.Time
	}
	return &quote, nil
}
