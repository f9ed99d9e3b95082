// Package bootstrap wires configuration into concrete adapters and usecases
// shared by the api and worker binaries.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rmendes/permitflow/internal/config"
	"github.com/rmendes/permitflow/internal/core/ports"
	"github.com/rmendes/permitflow/internal/core/usecase"
	"github.com/rmendes/permitflow/internal/infrastructure/analysis/ruleset"
	"github.com/rmendes/permitflow/internal/infrastructure/checkout/mock"
	"github.com/rmendes/permitflow/internal/infrastructure/notify/smtp"
	"github.com/rmendes/permitflow/internal/infrastructure/queue/nats"
	"github.com/rmendes/permitflow/internal/infrastructure/repository/memory"
	"github.com/rmendes/permitflow/internal/infrastructure/repository/postgres"
	"github.com/rmendes/permitflow/internal/infrastructure/resilience"
	s3storage "github.com/rmendes/permitflow/internal/infrastructure/storage/s3"
)

type App struct {
	Config config.Config

	Queue        *nats.Queue
	Applications ports.ApplicationRegistry
	Documents    ports.DocumentLedger
	Leads        ports.LeadBook
	Payments     ports.PaymentDesk
	Analyzer     ports.DocumentAnalyzer

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	var (
		appRepo     ports.ApplicationRepository
		leadRepo    ports.LeadRepository
		paymentRepo ports.PaymentRepository
		closeFn     = func() {}
	)

	switch cfg.Store {
	case "postgres":
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		appRepo = postgres.NewApplicationRepository(db)
		leadRepo = postgres.NewLeadRepository(db)
		paymentRepo = postgres.NewPaymentRepository(db)
		closeFn = func() { _ = db.Close() }
	default:
		appRepo = memory.NewApplicationStore()
		leadRepo = memory.NewLeadStore()
		paymentRepo = memory.NewPaymentStore()
	}

	executor := resilience.NewExecutor(resilience.DefaultPolicy())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		closeFn()
		return nil, fmt.Errorf("init analysis queue: %w", err)
	}

	var presigner ports.UploadPresigner
	if cfg.S3Bucket != "" {
		presigner, err = s3storage.New(ctx, cfg.S3Bucket, cfg.S3Region,
			time.Duration(cfg.UploadURLTTLSeconds)*time.Second)
		if err != nil {
			queue.Close()
			closeFn()
			return nil, fmt.Errorf("init upload presigner: %w", err)
		}
	} else {
		slog.Warn("s3 bucket not configured, uploads will not be presigned")
	}

	var notifier ports.Notifier
	if cfg.SMTPHost != "" {
		notifier, err = smtp.New(smtp.Config{
			Host:          cfg.SMTPHost,
			Port:          cfg.SMTPPort,
			Username:      cfg.SMTPUser,
			Password:      cfg.SMTPPass,
			From:          cfg.SMTPFrom,
			ReviewInbox:   cfg.SMTPReviewInbox,
			SkipTLSVerify: cfg.SMTPSkipTLSVerify,
		}, executor)
		if err != nil {
			queue.Close()
			closeFn()
			return nil, fmt.Errorf("init review notifier: %w", err)
		}
	} else {
		slog.Warn("smtp not configured, review notifications disabled")
	}

	provider, err := ruleset.New(cfg.AnalysisRulesPath)
	if err != nil {
		queue.Close()
		closeFn()
		return nil, fmt.Errorf("init analysis provider: %w", err)
	}

	checkout := mock.New(cfg.CheckoutBaseURL)

	return &App{
		Config:       cfg,
		Queue:        queue,
		Applications: usecase.NewApplicationRegistryUseCase(appRepo),
		Documents:    usecase.NewDocumentLedgerUseCase(appRepo, queue, presigner),
		Leads:        usecase.NewLeadBookUseCase(leadRepo),
		Payments: usecase.NewPaymentDeskUseCase(paymentRepo, appRepo, checkout,
			cfg.CheckoutSuccessURL, cfg.CheckoutCancelURL),
		Analyzer: usecase.NewAnalyzeDocumentUseCase(appRepo, provider, notifier,
			time.Duration(cfg.AnalysisTimeoutSeconds)*time.Second),
		closeFn: func() {
			queue.Close()
			closeFn()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
