package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rmendes/permitflow/internal/core/domain"
	"github.com/rmendes/permitflow/internal/core/ports"
)

type paymentRepoFake struct {
	payments map[string]*domain.Payment
}

func newPaymentRepoFake() *paymentRepoFake {
	return &paymentRepoFake{payments: make(map[string]*domain.Payment)}
}

func (f *paymentRepoFake) Create(_ context.Context, payment *domain.Payment) error {
	f.payments[payment.ID] = payment
	return nil
}

func (f *paymentRepoFake) Get(_ context.Context, id string) (*domain.Payment, error) {
	payment, ok := f.payments[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get payment", errors.New(id))
	}
	return payment, nil
}

func (f *paymentRepoFake) GetByApplication(_ context.Context, applicationID string) (*domain.Payment, error) {
	for _, p := range f.payments {
		if p.ApplicationID == applicationID {
			return p, nil
		}
	}
	return nil, domain.WrapError(domain.ErrNotFound, "get payment by application", errors.New(applicationID))
}

func (f *paymentRepoFake) List(_ context.Context) ([]*domain.Payment, error) {
	out := make([]*domain.Payment, 0, len(f.payments))
	for _, p := range f.payments {
		out = append(out, p)
	}
	return out, nil
}

func (f *paymentRepoFake) Mutate(_ context.Context, id string, fn func(*domain.Payment) error) (*domain.Payment, error) {
	payment, ok := f.payments[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "mutate payment", errors.New(id))
	}
	if err := fn(payment); err != nil {
		return nil, err
	}
	return payment, nil
}

type checkoutFake struct {
	session    ports.CheckoutSession
	err        error
	successURL string
	cancelURL  string
}

func (f *checkoutFake) CreateSession(_ context.Context, _ *domain.Payment, successURL, cancelURL string) (ports.CheckoutSession, error) {
	f.successURL = successURL
	f.cancelURL = cancelURL
	if f.err != nil {
		return ports.CheckoutSession{}, f.err
	}
	return f.session, nil
}

func buildingApp(id, estimatedCost string) *domain.Application {
	return &domain.Application{
		ID:            id,
		ProjectType:   domain.ProjectResidential,
		PermitType:    domain.PermitBuilding,
		EstimatedCost: estimatedCost,
		Status:        domain.StatusReadyForApproval,
	}
}

func newPaymentDesk(apps *appRepoFake, payments *paymentRepoFake, checkout *checkoutFake) *PaymentDeskUseCase {
	return NewPaymentDeskUseCase(payments, apps, checkout,
		"https://permits.example.com/pay/success", "https://permits.example.com/pay/cancel")
}

func TestCheckoutCreatesProcessingPayment(t *testing.T) {
	apps := newAppRepoFake(buildingApp("PERMIT-1", "50000"))
	payments := newPaymentRepoFake()
	checkout := &checkoutFake{session: ports.CheckoutSession{
		SessionID: "cs_test123",
		URL:       "https://checkout.example.com/cs_test123",
	}}
	uc := newPaymentDesk(apps, payments, checkout)

	result, err := uc.Checkout(context.Background(), "PERMIT-1", false)
	if err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}
	p := result.Payment
	if p.Amount != 23000 {
		t.Fatalf("expected 23000 cents, got %d", p.Amount)
	}
	if p.FeeBreakdown.BaseFee != 15500 {
		t.Fatalf("expected scaled base fee 15500, got %d", p.FeeBreakdown.BaseFee)
	}
	if p.Status != domain.PaymentProcessing {
		t.Fatalf("expected processing after session attach, got %s", p.Status)
	}
	if p.SessionID != "cs_test123" || result.Session.URL == "" {
		t.Fatalf("session not attached: %+v", result)
	}
	if p.Currency != "usd" {
		t.Fatalf("expected usd, got %s", p.Currency)
	}
	if checkout.successURL != "https://permits.example.com/pay/success" {
		t.Fatalf("success url not forwarded, got %s", checkout.successURL)
	}
	stored, err := payments.GetByApplication(context.Background(), "PERMIT-1")
	if err != nil || stored.ID != p.ID {
		t.Fatalf("payment not persisted for application: %v %v", stored, err)
	}
}

func TestCheckoutExpeditedAddsHalfSubtotal(t *testing.T) {
	apps := newAppRepoFake(buildingApp("PERMIT-1", "50000"))
	uc := newPaymentDesk(apps, newPaymentRepoFake(), &checkoutFake{})

	result, err := uc.Checkout(context.Background(), "PERMIT-1", true)
	if err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}
	b := result.Payment.FeeBreakdown
	if b.ExpediteFee != 11500 {
		t.Fatalf("expected expedite fee of half the subtotal, got %d", b.ExpediteFee)
	}
	if b.Total != 34500 || result.Payment.Amount != 34500 {
		t.Fatalf("expected 34500 total, got %d", b.Total)
	}
}

func TestCheckoutUnknownApplication(t *testing.T) {
	uc := newPaymentDesk(newAppRepoFake(), newPaymentRepoFake(), &checkoutFake{})

	_, err := uc.Checkout(context.Background(), "PERMIT-MISSING", false)
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCheckoutSessionFailure(t *testing.T) {
	apps := newAppRepoFake(buildingApp("PERMIT-1", "50000"))
	payments := newPaymentRepoFake()
	uc := newPaymentDesk(apps, payments, &checkoutFake{err: errors.New("provider down")})

	if _, err := uc.Checkout(context.Background(), "PERMIT-1", false); err == nil {
		t.Fatalf("expected session failure to surface")
	}
	stored, err := payments.GetByApplication(context.Background(), "PERMIT-1")
	if err != nil {
		t.Fatalf("expected pending payment record to remain, got %v", err)
	}
	if stored.Status != domain.PaymentPending {
		t.Fatalf("expected pending payment without session, got %s", stored.Status)
	}
}

func seedPayment(repo *paymentRepoFake, id string, status domain.PaymentStatus, amount int64) *domain.Payment {
	p := &domain.Payment{
		ID:            id,
		ApplicationID: "PERMIT-1",
		Amount:        amount,
		Currency:      "usd",
		Status:        status,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	repo.payments[id] = p
	return p
}

func TestCompleteSetsPaidAt(t *testing.T) {
	payments := newPaymentRepoFake()
	seedPayment(payments, "PAY-1", domain.PaymentProcessing, 23000)
	uc := newPaymentDesk(newAppRepoFake(), payments, &checkoutFake{})

	got, err := uc.Complete(context.Background(), "PAY-1")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got.Status != domain.PaymentSucceeded || got.PaidAt.IsZero() {
		t.Fatalf("completion not recorded: %+v", got)
	}
}

func TestCompleteRejectsRefundedPayment(t *testing.T) {
	payments := newPaymentRepoFake()
	seedPayment(payments, "PAY-1", domain.PaymentRefunded, 23000)
	uc := newPaymentDesk(newAppRepoFake(), payments, &checkoutFake{})

	if _, err := uc.Complete(context.Background(), "PAY-1"); !domain.IsKind(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestFailRejectsSettledPayments(t *testing.T) {
	for _, status := range []domain.PaymentStatus{domain.PaymentSucceeded, domain.PaymentRefunded} {
		payments := newPaymentRepoFake()
		seedPayment(payments, "PAY-1", status, 23000)
		uc := newPaymentDesk(newAppRepoFake(), payments, &checkoutFake{})

		if _, err := uc.Fail(context.Background(), "PAY-1"); !domain.IsKind(err, domain.ErrInvalidTransition) {
			t.Fatalf("expected invalid transition from %s, got %v", status, err)
		}
	}
}

func TestRefundRequiresSucceededPayment(t *testing.T) {
	payments := newPaymentRepoFake()
	seedPayment(payments, "PAY-1", domain.PaymentProcessing, 23000)
	uc := newPaymentDesk(newAppRepoFake(), payments, &checkoutFake{})

	if _, err := uc.Refund(context.Background(), "PAY-1"); !domain.IsKind(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestRefundSucceededPayment(t *testing.T) {
	payments := newPaymentRepoFake()
	p := seedPayment(payments, "PAY-1", domain.PaymentSucceeded, 23000)
	p.PaidAt = time.Now().UTC()
	uc := newPaymentDesk(newAppRepoFake(), payments, &checkoutFake{})

	got, err := uc.Refund(context.Background(), "PAY-1")
	if err != nil {
		t.Fatalf("Refund() error = %v", err)
	}
	if got.Status != domain.PaymentRefunded || got.RefundedAt.IsZero() {
		t.Fatalf("refund not recorded: %+v", got)
	}
}

func TestAnalyticsSummarizesOutcomes(t *testing.T) {
	payments := newPaymentRepoFake()
	now := time.Now().UTC()
	a := seedPayment(payments, "PAY-1", domain.PaymentSucceeded, 20000)
	a.PaidAt = now
	b := seedPayment(payments, "PAY-2", domain.PaymentSucceeded, 10000)
	b.PaidAt = now.AddDate(0, -2, 0)
	seedPayment(payments, "PAY-3", domain.PaymentFailed, 5000)
	seedPayment(payments, "PAY-4", domain.PaymentPending, 5000)
	uc := newPaymentDesk(newAppRepoFake(), payments, &checkoutFake{})

	got, err := uc.Analytics(context.Background())
	if err != nil {
		t.Fatalf("Analytics() error = %v", err)
	}
	if got.TotalTransactions != 4 || got.SucceededPayments != 2 || got.FailedPayments != 1 || got.PendingPayments != 1 {
		t.Fatalf("unexpected counts: %+v", got)
	}
	if got.TotalRevenue != 30000 {
		t.Fatalf("expected 30000 total revenue, got %d", got.TotalRevenue)
	}
	if got.MonthlyRevenue != 20000 {
		t.Fatalf("expected only current-month revenue, got %d", got.MonthlyRevenue)
	}
	if got.SuccessRatePercent != 66.7 {
		t.Fatalf("expected 66.7%% success rate, got %v", got.SuccessRatePercent)
	}
}

func TestAnalyticsEmptyLedger(t *testing.T) {
	uc := newPaymentDesk(newAppRepoFake(), newPaymentRepoFake(), &checkoutFake{})

	got, err := uc.Analytics(context.Background())
	if err != nil {
		t.Fatalf("Analytics() error = %v", err)
	}
	if got.TotalTransactions != 0 || got.SuccessRatePercent != 0 {
		t.Fatalf("expected zeroed analytics, got %+v", got)
	}
}
