package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/spec-kit/helpdesk-service/internal/config"
)

// DefaultSendTimeout bounds a single SMTP delivery.
const DefaultSendTimeout = 10 * time.Second

// ErrInvalidMessage is returned for messages missing a recipient, subject or body.
var ErrInvalidMessage = errors.New("notify: invalid message")

// Message is a plain-text email.
type Message struct {
	To      []string
	Subject string
	Body    string
}

// Mailer delivers email notifications.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer sends mail through a gomail SMTP dialer.
type SMTPMailer struct {
	from    string
	dialer  *gomail.Dialer
	timeout time.Duration
}

// NewSMTPMailer returns nil when no SMTP host is configured.
func NewSMTPMailer(cfg config.NotificationConfig) *SMTPMailer {
	if strings.TrimSpace(cfg.SMTPHost) == "" {
		return nil
	}
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	dialer.SSL = cfg.SMTPUseTLS
	return &SMTPMailer{from: cfg.EmailFrom, dialer: dialer, timeout: DefaultSendTimeout}
}

// Send delivers msg, giving up when ctx ends or the send timeout elapses.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	gm, err := buildMessage(m.from, msg)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- m.dialer.DialAndSend(gm)
	}()

	timer := time.NewTimer(m.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("notify: smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return context.DeadlineExceeded
	}
}

func buildMessage(from string, msg Message) (*gomail.Message, error) {
	from = strings.TrimSpace(from)
	if from == "" {
		return nil, fmt.Errorf("%w: from is required", ErrInvalidMessage)
	}
	to := cleanAddrs(msg.To)
	if len(to) == 0 {
		return nil, fmt.Errorf("%w: at least one recipient is required", ErrInvalidMessage)
	}
	subject := strings.TrimSpace(msg.Subject)
	if subject == "" {
		return nil, fmt.Errorf("%w: subject is required", ErrInvalidMessage)
	}
	if strings.TrimSpace(msg.Body) == "" {
		return nil, fmt.Errorf("%w: body is required", ErrInvalidMessage)
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", from)
	gm.SetHeader("To", to...)
	gm.SetHeader("Subject", subject)
	gm.SetBody("text/plain", msg.Body)
	return gm, nil
}

func cleanAddrs(in []string) []string {
	out := make([]string, 0, len(in))
	for _, addr := range in {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
