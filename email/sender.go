// Package email provides the SMTP implementation of the engine's EmailSender
// collaborator, with templated verification and report mail.
package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/campusgate/campusgate"
)

// SMTPConfig carries the SMTP relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	TLS      bool
	Username string
	Password string
	// From is the envelope sender for verification mail.
	From string
	// SupportAddress receives content reports.
	SupportAddress string
}

// Sender sends templated transactional mail over SMTP. It satisfies
// [campusgate.EmailSender].
type Sender struct {
	config SMTPConfig
	client *mail.Client
	logger *slog.Logger
}

// NewSender describes the newsender operation and its observable behavior.
//
// NewSender may return an error when input validation, dependency calls, or security checks fail.
// NewSender does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewSender(config SMTPConfig, logger *slog.Logger) (*Sender, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts := []mail.Option{
		mail.WithPort(config.Port),
		mail.WithTimeout(30 * time.Second),
	}

	if config.Username != "" && config.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(config.Username),
			mail.WithPassword(config.Password),
		)
	}

	if config.TLS {
		opts = append(opts,
			mail.WithTLSConfig(&tls.Config{InsecureSkipVerify: true}),
			mail.WithTLSPolicy(mail.TLSMandatory),
		)
	} else {
		opts = append(opts,
			mail.WithTLSConfig(&tls.Config{InsecureSkipVerify: true}),
			mail.WithTLSPolicy(mail.NoTLS),
		)
	}

	client, err := mail.NewClient(config.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create mail client: %w", err)
	}

	return &Sender{
		config: config,
		client: client,
		logger: logger,
	}, nil
}

// SendVerificationCode implements [campusgate.EmailSender].
func (s *Sender) SendVerificationCode(ctx context.Context, toEmail, code string) error {
	rendered, err := renderVerification(code)
	if err != nil {
		return err
	}
	return s.deliver(ctx, toEmail, rendered)
}

// SendReport implements [campusgate.EmailSender].
func (s *Sender) SendReport(ctx context.Context, report campusgate.ContentReport) error {
	rendered, err := renderReport(report)
	if err != nil {
		return err
	}
	return s.deliver(ctx, s.config.SupportAddress, rendered)
}

func (s *Sender) deliver(ctx context.Context, toEmail string, content renderedMail) error {
	msg := mail.NewMsg()
	if err := msg.From(s.config.From); err != nil {
		return err
	}
	if err := msg.To(toEmail); err != nil {
		return err
	}
	msg.Subject(content.subject)
	msg.SetBodyString(mail.TypeTextPlain, content.text)
	msg.AddAlternativeString(mail.TypeTextHTML, content.html)

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "smtp send failed",
			"to", toEmail,
			"subject", content.subject,
			"error", err,
		)
		return err
	}
	return nil
}
