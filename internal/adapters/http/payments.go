package httpadapter

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rmendes/permitflow/internal/core/domain"
)

func (rt *Router) checkout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Expedited bool `json:"expedited"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	result, err := rt.payments.Checkout(r.Context(), r.PathValue("id"), req.Expedited)
	if err != nil {
		if rt.metrics != nil {
			rt.metrics.RecordCheckout(serviceName, "error")
		}
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordCheckout(serviceName, "created")
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"payment":     result.Payment,
		"sessionId":   result.Session.SessionID,
		"checkoutUrl": result.Session.URL,
	})
}

func (rt *Router) getApplicationPayment(w http.ResponseWriter, r *http.Request) {
	payment, err := rt.payments.GetByApplication(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

func (rt *Router) getPayment(w http.ResponseWriter, r *http.Request) {
	payment, err := rt.payments.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

func (rt *Router) completePayment(w http.ResponseWriter, r *http.Request) {
	rt.transitionPayment(w, r, rt.payments.Complete, domain.PaymentSucceeded)
}

func (rt *Router) failPayment(w http.ResponseWriter, r *http.Request) {
	rt.transitionPayment(w, r, rt.payments.Fail, domain.PaymentFailed)
}

func (rt *Router) refundPayment(w http.ResponseWriter, r *http.Request) {
	rt.transitionPayment(w, r, rt.payments.Refund, domain.PaymentRefunded)
}

func (rt *Router) transitionPayment(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, paymentID string) (*domain.Payment, error),
	outcome domain.PaymentStatus,
) {
	payment, err := op(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordCheckout(serviceName, string(outcome))
	}
	writeJSON(w, http.StatusOK, payment)
}

func (rt *Router) paymentAnalytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := rt.payments.Analytics(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics)
}
