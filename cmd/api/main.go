package main

import (
	"context"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/netutil"
	"golang.org/x/time/rate"

	httpadapter "github.com/rmendes/permitflow/internal/adapters/http"
	"github.com/rmendes/permitflow/internal/bootstrap"
	"github.com/rmendes/permitflow/internal/config"
	"github.com/rmendes/permitflow/internal/core/ports"
	"github.com/rmendes/permitflow/internal/observability/logging"
	"github.com/rmendes/permitflow/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("api", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	// The in-memory store is process-local, so a separate worker binary
	// would never see the documents this API commits. Run the analysis
	// consumer inside this process instead.
	if cfg.InProcessAnalysis() {
		go func() {
			slog.Info("analysis_consumer_inprocess", "subject", cfg.NATSSubject)
			err := app.Queue.SubscribeAnalysisRequested(ctx, func(handlerCtx context.Context, job ports.AnalysisJob) error {
				analyzeCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
				defer cancel()
				return app.Analyzer.AnalyzeByID(analyzeCtx, job.ApplicationID, job.DocumentID)
			})
			if err != nil {
				slog.Error("analysis_consumer_error", "error", err)
			}
		}()
	}

	httpMetrics := metrics.NewHTTPServerMetrics("api")
	limiter := rate.NewLimiter(rate.Limit(cfg.APIRateLimitRPS), cfg.APIRateLimitBurst)

	router := httpadapter.NewRouter(
		app.Applications,
		app.Documents,
		app.Leads,
		app.Payments,
		httpMetrics,
		limiter,
	).Handler()

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	listener, err := net.Listen("tcp", server.Addr)
	if err != nil {
		log.Fatalf("api listen error: %v", err)
	}
	if cfg.APIMaxConns > 0 {
		listener = netutil.LimitListener(listener, cfg.APIMaxConns)
	}

	go func() {
		slog.Info("api_listening", "addr", server.Addr, "max_conns", cfg.APIMaxConns)
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api_shutdown_error", "error", err)
	}
}
