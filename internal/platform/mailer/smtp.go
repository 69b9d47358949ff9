// Package mailer sends account emails over SMTP.
package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/dajohi/goemail"

	"votp_backend/internal/feature/auth/usecase"
	"votp_backend/internal/platform/config"
	"votp_backend/internal/shared/ratelimiter"
)

// SMTPMailer implements usecase.Mailer over an SMTP relay. When the relay is
// not configured the mailer runs disabled: sends are logged instead, which
// keeps local development working without a mail server.
type SMTPMailer struct {
	client   *goemail.SMTP
	from     string
	disabled bool
	limiter  ratelimiter.RateLimiterInterface
	timeout  time.Duration
}

var _ usecase.Mailer = (*SMTPMailer)(nil)

// defaultSendTimeout bounds a dispatch when no timeout is configured.
const defaultSendTimeout = 10 * time.Second

// NewSMTPMailer creates a mailer from the SMTP configuration. The limiter
// paces outbound sends so a burst of code requests cannot flood the relay.
func NewSMTPMailer(cfg config.SMTPConfig, limiter ratelimiter.RateLimiterInterface) (*SMTPMailer, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	if cfg.Host == "" || cfg.Username == "" || cfg.Password == "" {
		slog.Warn("smtp not configured, running with mail disabled")
		return &SMTPMailer{disabled: true, from: cfg.From, limiter: limiter, timeout: timeout}, nil
	}

	u := url.URL{
		Scheme: "smtps",
		User:   url.UserPassword(cfg.Username, cfg.Password),
		Host:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
	}
	tlsConfig := &tls.Config{InsecureSkipVerify: cfg.SkipVerify}

	client, err := goemail.NewSMTP(u.String(), tlsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize smtp client: %w", err)
	}

	return &SMTPMailer{client: client, from: cfg.From, limiter: limiter, timeout: timeout}, nil
}

// SendVerificationCode mails the 6-digit code to the address.
func (m *SMTPMailer) SendVerificationCode(ctx context.Context, email, code string) error {
	subject := "Verify your email"
	body := fmt.Sprintf(
		"Your verification code is %s.\n\n"+
			"The code expires in 10 minutes. If you did not request it, ignore this email.\n",
		code)
	return m.send(ctx, email, subject, body)
}

// SendWelcome mails the post-signup greeting.
func (m *SMTPMailer) SendWelcome(ctx context.Context, email, name string) error {
	subject := "Welcome"
	body := fmt.Sprintf(
		"Hi %s,\n\nYour account is ready. You can now comment on any page on the web.\n",
		name)
	return m.send(ctx, email, subject, body)
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, body string) error {
	if m.disabled {
		slog.Info("mail disabled, skipping send", "to", to, "subject", subject)
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.limiter.WaitIfNeeded()

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	msg := goemail.NewMessage(m.from, subject, body)
	msg.AddTo(to)

	// goemail's Send takes no context, so the dispatch runs in a goroutine
	// and the deadline bounds how long the caller waits for it.
	done := make(chan error, 1)
	go func() { done <- m.client.Send(msg) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
	case <-ctx.Done():
		return fmt.Errorf("smtp send to %s: %w", to, ctx.Err())
	}

	slog.Info("email sent", "to", to, "subject", subject)
	return nil
}
