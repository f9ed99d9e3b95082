// Package mock fabricates hosted checkout sessions. It stands in for a real
// payment processor in development and keeps the payment flow exercisable
// end to end without external credentials.
package mock

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/rmendes/permitflow/internal/core/domain"
	"github.com/rmendes/permitflow/internal/core/ports"
)

var _ ports.CheckoutProvider = (*Provider)(nil)

type Provider struct {
	baseURL string
}

func New(baseURL string) *Provider {
	if baseURL == "" {
		baseURL = "https://checkout.example.com"
	}
	return &Provider{baseURL: strings.TrimRight(baseURL, "/")}
}

func (p *Provider) CreateSession(_ context.Context, payment *domain.Payment, successURL, cancelURL string) (ports.CheckoutSession, error) {
	sessionID := "cs_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	url := fmt.Sprintf("%s/pay/%s?amount=%d&currency=%s&success_url=%s&cancel_url=%s",
		p.baseURL, sessionID, payment.Amount, payment.Currency, successURL, cancelURL)
	return ports.CheckoutSession{SessionID: sessionID, URL: url}, nil
}
