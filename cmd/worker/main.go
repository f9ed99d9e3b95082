package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rmendes/permitflow/internal/bootstrap"
	"github.com/rmendes/permitflow/internal/config"
	"github.com/rmendes/permitflow/internal/core/ports"
	"github.com/rmendes/permitflow/internal/observability/logging"
	"github.com/rmendes/permitflow/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("worker", cfg.LogLevel))

	// A process-local memory store cannot be shared with the API binary;
	// with it the worker would only ever see an empty ledger. The API runs
	// the analysis consumer in-process in that mode.
	if cfg.InProcessAnalysis() {
		log.Fatalf("worker requires STORE=postgres, got %q", cfg.Store)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")

	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: metricsMux(workerMetrics),
	}
	go func() {
		slog.Info("worker_metrics_listening", "addr", metricsServer.Addr)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("worker metrics server error: %v", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeAnalysisRequested(ctx, func(handlerCtx context.Context, job ports.AnalysisJob) error {
		workerMetrics.ObserveQueueLag("worker", time.Since(job.EnqueuedAt))
		workerMetrics.StartAnalysis()

		start := time.Now()
		analyzeCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
		defer cancel()

		analyzeErr := app.Analyzer.AnalyzeByID(analyzeCtx, job.ApplicationID, job.DocumentID)
		workerMetrics.FinishAnalysis("worker", time.Since(start), analyzeErr)
		return analyzeErr
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}

func metricsMux(m *metrics.WorkerMetrics) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", m.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}
