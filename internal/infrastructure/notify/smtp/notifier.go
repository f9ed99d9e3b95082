// Package smtp tells the review team when an application has cleared
// automated checks and is waiting on a human decision.
package smtp

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strings"

	mail "github.com/go-mail/mail/v2"

	"github.com/rmendes/permitflow/internal/core/domain"
	"github.com/rmendes/permitflow/internal/core/ports"
	"github.com/rmendes/permitflow/internal/infrastructure/resilience"
)

var _ ports.Notifier = (*Notifier)(nil)

type Config struct {
	Host          string
	Port          int
	Username      string
	Password      string
	From          string
	ReviewInbox   string
	SkipTLSVerify bool
}

type Notifier struct {
	dialer   *mail.Dialer
	from     string
	inbox    string
	executor *resilience.Executor
}

func New(cfg Config, executor *resilience.Executor) (*Notifier, error) {
	if cfg.Host == "" || cfg.From == "" || cfg.ReviewInbox == "" {
		return nil, fmt.Errorf("smtp notifier requires host, from, and review inbox")
	}
	port := cfg.Port
	if port == 0 {
		port = 587
	}

	dialer := mail.NewDialer(cfg.Host, port, cfg.Username, cfg.Password)
	dialer.StartTLSPolicy = mail.MandatoryStartTLS
	dialer.TLSConfig = &tls.Config{
		ServerName:         cfg.Host,
		InsecureSkipVerify: cfg.SkipTLSVerify,
	}

	return &Notifier{
		dialer:   dialer,
		from:     cfg.From,
		inbox:    cfg.ReviewInbox,
		executor: executor,
	}, nil
}

func (n *Notifier) ReviewReady(ctx context.Context, app *domain.Application) error {
	msg := mail.NewMessage()
	msg.SetHeader("From", n.from)
	msg.SetHeader("To", n.inbox)
	msg.SetHeader("Subject", fmt.Sprintf("Application %s ready for review", app.ID))
	msg.SetBody("text/plain", reviewBody(app))

	send := func(_ context.Context) error {
		if err := n.dialer.DialAndSend(msg); err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	}

	if n.executor != nil {
		return n.executor.Execute(ctx, "smtp.review_ready", send, classifySMTPError)
	}
	return send(ctx)
}

func reviewBody(app *domain.Application) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Application %s has all required documents approved.\n\n", app.ID)
	fmt.Fprintf(&b, "Applicant: %s <%s>\n", app.ApplicantName, app.ApplicantEmail)
	fmt.Fprintf(&b, "Property:  %s\n", app.PropertyAddress)
	fmt.Fprintf(&b, "Permit:    %s (%s)\n", app.PermitType, app.ProjectType)
	fmt.Fprintf(&b, "Documents: %d approved\n", len(app.Documents))
	return b.String()
}

func classifySMTPError(err error) resilience.ErrorClass {
	if err == nil {
		return resilience.ErrorClass{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClass{Retryable: false, RecordFailure: false}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClass{Retryable: true, RecordFailure: true}
	}
	return resilience.ErrorClass{Retryable: false, RecordFailure: true}
}
