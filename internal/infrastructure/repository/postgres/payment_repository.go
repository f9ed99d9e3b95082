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

var _ ports.PaymentRepository = (*PaymentRepository)(nil)

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	breakdown, err := json.Marshal(payment.FeeBreakdown)
	if err != nil {
		return fmt.Errorf("marshal fee breakdown: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO payments (id, application_id, amount, currency, status, permit_type, fee_breakdown, session_id, paid_at, refunded_at, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
`,
		payment.ID, payment.ApplicationID, payment.Amount, payment.Currency,
		string(payment.Status), string(payment.PermitType), breakdown, payment.SessionID,
		nullTime(payment.PaidAt), nullTime(payment.RefundedAt),
		payment.CreatedAt, payment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (r *PaymentRepository) Get(ctx context.Context, id string) (*domain.Payment, error) {
	row := r.db.QueryRowContext(ctx, paymentSelect+` WHERE id = $1`, id)
	return scanPayment(row, id)
}

func (r *PaymentRepository) GetByApplication(ctx context.Context, applicationID string) (*domain.Payment, error) {
	row := r.db.QueryRowContext(ctx, paymentSelect+` WHERE application_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`, applicationID)
	return scanPayment(row, applicationID)
}

func (r *PaymentRepository) List(ctx context.Context) ([]*domain.Payment, error) {
	rows, err := r.db.QueryContext(ctx, paymentSelect+` ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	var out []*domain.Payment
	for rows.Next() {
		payment, err := scanPayment(rows, "")
		if err != nil {
			return nil, err
		}
		out = append(out, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments: %w", err)
	}
	return out, nil
}

func (r *PaymentRepository) Mutate(ctx context.Context, id string, fn func(*domain.Payment) error) (*domain.Payment, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin payment tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	row := tx.QueryRowContext(ctx, paymentSelect+` WHERE id = $1 FOR UPDATE`, id)
	payment, err := scanPayment(row, id)
	if err != nil {
		return nil, err
	}

	if err := fn(payment); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
UPDATE payments
SET status = $2, session_id = $3, paid_at = $4, refunded_at = $5, updated_at = $6
WHERE id = $1
`, payment.ID, string(payment.Status), payment.SessionID,
		nullTime(payment.PaidAt), nullTime(payment.RefundedAt), payment.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update payment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit payment tx: %w", err)
	}
	return payment, nil
}

const paymentSelect = `
SELECT id, application_id, amount, currency, status, permit_type, fee_breakdown, session_id, paid_at, refunded_at, created_at, updated_at
FROM payments`

func scanPayment(row rowScanner, id string) (*domain.Payment, error) {
	var (
		payment      domain.Payment
		status       string
		permitType   string
		breakdownRaw []byte
		sessionID    sql.NullString
		paidAt       sql.NullTime
		refundedAt   sql.NullTime
	)
	err := row.Scan(
		&payment.ID, &payment.ApplicationID, &payment.Amount, &payment.Currency,
		&status, &permitType, &breakdownRaw, &sessionID, &paidAt, &refundedAt,
		&payment.CreatedAt, &payment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get payment", fmt.Errorf("payment %s", id))
		}
		return nil, fmt.Errorf("scan payment: %w", err)
	}

	if err := json.Unmarshal(breakdownRaw, &payment.FeeBreakdown); err != nil {
		return nil, fmt.Errorf("unmarshal fee breakdown: %w", err)
	}
	payment.Status = domain.PaymentStatus(status)
	payment.PermitType = domain.PermitType(permitType)
	payment.SessionID = sessionID.String
	if paidAt.Valid {
		payment.PaidAt = paidAt.Time
	}
	if refundedAt.Valid {
		payment.RefundedAt = refundedAt.Time
	}
	return &payment, nil
}
