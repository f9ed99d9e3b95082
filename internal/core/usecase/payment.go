package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rmendes/permitflow/internal/core/domain"
	"github.com/rmendes/permitflow/internal/core/ports"
)

// PaymentDeskUseCase handles permit fee checkout and the administrative
// payment transitions.
type PaymentDeskUseCase struct {
	payments   ports.PaymentRepository
	apps       ports.ApplicationRepository
	checkout   ports.CheckoutProvider
	successURL string
	cancelURL  string
}

func NewPaymentDeskUseCase(
	payments ports.PaymentRepository,
	apps ports.ApplicationRepository,
	checkout ports.CheckoutProvider,
	successURL, cancelURL string,
) *PaymentDeskUseCase {
	return &PaymentDeskUseCase{
		payments:   payments,
		apps:       apps,
		checkout:   checkout,
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

func (uc *PaymentDeskUseCase) Checkout(ctx context.Context, applicationID string, expedited bool) (ports.CheckoutResult, error) {
	app, err := uc.apps.Get(ctx, applicationID)
	if err != nil {
		return ports.CheckoutResult{}, fmt.Errorf("fetch application for checkout: %w", err)
	}

	estimatedCost, _ := strconv.ParseFloat(app.EstimatedCost, 64)
	breakdown := domain.CalculateFees(app.PermitType, app.ProjectType, estimatedCost, expedited)

	now := time.Now().UTC()
	payment := &domain.Payment{
		ID:            newID("PAY"),
		ApplicationID: app.ID,
		Amount:        breakdown.Total,
		Currency:      "usd",
		Status:        domain.PaymentPending,
		PermitType:    app.PermitType,
		FeeBreakdown:  breakdown,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.payments.Create(ctx, payment); err != nil {
		return ports.CheckoutResult{}, fmt.Errorf("create payment record: %w", err)
	}

	session, err := uc.checkout.CreateSession(ctx, payment, uc.successURL, uc.cancelURL)
	if err != nil {
		return ports.CheckoutResult{}, fmt.Errorf("create checkout session: %w", err)
	}

	payment, err = uc.payments.Mutate(ctx, payment.ID, func(p *domain.Payment) error {
		p.SessionID = session.SessionID
		p.Status = domain.PaymentProcessing
		p.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return ports.CheckoutResult{}, fmt.Errorf("attach checkout session: %w", err)
	}

	return ports.CheckoutResult{Payment: payment, Session: session}, nil
}

func (uc *PaymentDeskUseCase) Complete(ctx context.Context, paymentID string) (*domain.Payment, error) {
	return uc.payments.Mutate(ctx, paymentID, func(p *domain.Payment) error {
		if p.Status == domain.PaymentRefunded {
			return domain.WrapError(domain.ErrInvalidTransition, "complete payment",
				errors.New("payment already refunded"))
		}
		now := time.Now().UTC()
		p.Status = domain.PaymentSucceeded
		p.PaidAt = now
		p.UpdatedAt = now
		return nil
	})
}

func (uc *PaymentDeskUseCase) Fail(ctx context.Context, paymentID string) (*domain.Payment, error) {
	return uc.payments.Mutate(ctx, paymentID, func(p *domain.Payment) error {
		if p.Status == domain.PaymentSucceeded || p.Status == domain.PaymentRefunded {
			return domain.WrapError(domain.ErrInvalidTransition, "fail payment",
				fmt.Errorf("payment is %s", p.Status))
		}
		p.Status = domain.PaymentFailed
		p.UpdatedAt = time.Now().UTC()
		return nil
	})
}

func (uc *PaymentDeskUseCase) Refund(ctx context.Context, paymentID string) (*domain.Payment, error) {
	return uc.payments.Mutate(ctx, paymentID, func(p *domain.Payment) error {
		if p.Status != domain.PaymentSucceeded {
			return domain.WrapError(domain.ErrInvalidTransition, "refund payment",
				fmt.Errorf("only succeeded payments can be refunded, payment is %s", p.Status))
		}
		now := time.Now().UTC()
		p.Status = domain.PaymentRefunded
		p.RefundedAt = now
		p.UpdatedAt = now
		return nil
	})
}

func (uc *PaymentDeskUseCase) Get(ctx context.Context, paymentID string) (*domain.Payment, error) {
	return uc.payments.Get(ctx, paymentID)
}

// GetByApplication returns the most recent payment attempt for an application.
func (uc *PaymentDeskUseCase) GetByApplication(ctx context.Context, applicationID string) (*domain.Payment, error) {
	return uc.payments.GetByApplication(ctx, applicationID)
}

func (uc *PaymentDeskUseCase) Analytics(ctx context.Context) (domain.PaymentAnalytics, error) {
	payments, err := uc.payments.List(ctx)
	if err != nil {
		return domain.PaymentAnalytics{}, fmt.Errorf("list payments: %w", err)
	}

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var out domain.PaymentAnalytics
	out.TotalTransactions = len(payments)
	for _, p := range payments {
		switch p.Status {
		case domain.PaymentSucceeded:
			out.SucceededPayments++
			out.TotalRevenue += p.Amount
			if !p.PaidAt.Before(monthStart) {
				out.MonthlyRevenue += p.Amount
			}
		case domain.PaymentFailed:
			out.FailedPayments++
		case domain.PaymentPending, domain.PaymentProcessing:
			out.PendingPayments++
		}
	}
	if decided := out.SucceededPayments + out.FailedPayments; decided > 0 {
		rate := float64(out.SucceededPayments) / float64(decided) * 100
		out.SuccessRatePercent = float64(int(rate*10+0.5)) / 10
	}
	return out, nil
}
