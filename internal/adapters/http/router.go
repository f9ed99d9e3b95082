package httpadapter

import (
	"encoding/json"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/rmendes/permitflow/internal/core/ports"
	"github.com/rmendes/permitflow/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	applications ports.ApplicationRegistry
	documents    ports.DocumentLedger
	leads        ports.LeadBook
	payments     ports.PaymentDesk
	metrics      *metrics.HTTPServerMetrics
	limiter      *rate.Limiter
}

func NewRouter(
	applications ports.ApplicationRegistry,
	documents ports.DocumentLedger,
	leads ports.LeadBook,
	payments ports.PaymentDesk,
	m *metrics.HTTPServerMetrics,
	limiter *rate.Limiter,
) *Router {
	return &Router{
		applications: applications,
		documents:    documents,
		leads:        leads,
		payments:     payments,
		metrics:      m,
		limiter:      limiter,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)

	mux.HandleFunc("POST /v1/applications", rt.createApplication)
	mux.HandleFunc("GET /v1/applications", rt.listApplications)
	mux.HandleFunc("GET /v1/applications/{id}", rt.getApplication)
	mux.HandleFunc("PATCH /v1/applications/{id}", rt.updateApplication)
	mux.HandleFunc("POST /v1/applications/{id}/documents", rt.submitDocument)
	mux.HandleFunc("PUT /v1/applications/{id}/documents/{documentId}", rt.resubmitDocument)
	mux.HandleFunc("POST /v1/applications/{id}/documents/{documentId}/reject", rt.rejectDocument)

	mux.HandleFunc("POST /v1/applications/{id}/checkout", rt.checkout)
	mux.HandleFunc("GET /v1/applications/{id}/payment", rt.getApplicationPayment)
	mux.HandleFunc("GET /v1/payments/analytics", rt.paymentAnalytics)
	mux.HandleFunc("GET /v1/payments/{id}", rt.getPayment)
	mux.HandleFunc("POST /v1/payments/{id}/complete", rt.completePayment)
	mux.HandleFunc("POST /v1/payments/{id}/fail", rt.failPayment)
	mux.HandleFunc("POST /v1/payments/{id}/refund", rt.refundPayment)

	mux.HandleFunc("POST /v1/leads", rt.createLead)
	mux.HandleFunc("GET /v1/leads", rt.listLeads)
	mux.HandleFunc("GET /v1/leads/export", rt.exportLeads)
	mux.HandleFunc("GET /v1/leads/{id}", rt.getLead)
	mux.HandleFunc("PATCH /v1/leads/{id}", rt.updateLead)
	mux.HandleFunc("DELETE /v1/leads/{id}", rt.deleteLead)

	mux.HandleFunc("POST /v1/quotes", rt.createQuote)
	mux.HandleFunc("GET /v1/quotes", rt.listQuotes)
	mux.HandleFunc("GET /v1/quotes/{id}", rt.getQuote)
	mux.HandleFunc("PATCH /v1/quotes/{id}", rt.updateQuote)
	mux.HandleFunc("DELETE /v1/quotes/{id}", rt.deleteQuote)

	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = rateLimitMiddleware(rt.limiter, rt.metrics, handler)
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}
