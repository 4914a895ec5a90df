package provider

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/google/uuid"

	"github.com/sungwon/ion-notify/internal/config"
)

// SMTP implements the Provider interface by relaying through an SMTP server,
// the way a Django EMAIL_BACKEND would.
type SMTP struct {
	cfg     config.SMTPConfig
	timeout time.Duration
}

// NewSMTP creates an SMTP relay provider.
func NewSMTP(cfg ProviderConfig) *SMTP {
	return &SMTP{cfg: cfg.SMTP, timeout: cfg.Timeout}
}

func (s *SMTP) GetName() string { return "smtp" }

func (s *SMTP) addr() string {
	return net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
}

func (s *SMTP) dial(ctx context.Context) (*smtp.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tlsConfig := &tls.Config{
		ServerName:         s.cfg.Host,
		InsecureSkipVerify: s.cfg.InsecureSkipVerify, //nolint:gosec // Opt-in for relays with self-signed certs.
	}

	var (
		c   *smtp.Client
		err error
	)
	switch s.cfg.TLS {
	case "implicit":
		c, err = smtp.DialTLS(s.addr(), tlsConfig)
	case "starttls":
		c, err = smtp.DialStartTLS(s.addr(), tlsConfig)
	default:
		c, err = smtp.Dial(s.addr())
	}
	if err != nil {
		return nil, fmt.Errorf("smtp: dial %s: %w", s.addr(), err)
	}

	if s.timeout > 0 {
		c.CommandTimeout = s.timeout
		c.SubmissionTimeout = s.timeout
	}

	// DialStartTLS has already greeted the server.
	if s.cfg.HeloName != "" && s.cfg.TLS != "starttls" {
		if err := c.Hello(s.cfg.HeloName); err != nil {
			c.Close()
			return nil, fmt.Errorf("smtp: hello: %w", err)
		}
	}

	if s.cfg.Username != "" {
		if err := c.Auth(sasl.NewPlainClient("", s.cfg.Username, s.cfg.Password)); err != nil {
			c.Close()
			return nil, &ProviderError{Provider: "smtp", Message: "auth: " + err.Error(), Permanent: true}
		}
	}

	return c, nil
}

// Send composes msg and submits it to the relay in a single transaction.
func (s *SMTP) Send(ctx context.Context, msg *Message) (*DeliveryResult, error) {
	raw, err := Compose(msg)
	if err != nil {
		return nil, fmt.Errorf("smtp: %w", err)
	}

	c, err := s.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	if err := c.SendMail(msg.From, msg.To, bytes.NewReader(raw)); err != nil {
		return nil, classifySMTPError(err)
	}
	if err := c.Quit(); err != nil {
		return nil, fmt.Errorf("smtp: quit: %w", err)
	}

	id := msg.ID
	if id == "" {
		id = uuid.New().String()
	}

	return &DeliveryResult{
		ProviderMessageID: id,
		Status:            StatusSent,
		Timestamp:         time.Now(),
		Metadata: map[string]string{
			"relay": s.addr(),
		},
	}, nil
}

// HealthCheck opens a session, issues NOOP and quits.
func (s *SMTP) HealthCheck(ctx context.Context) error {
	c, err := s.dial(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Noop(); err != nil {
		return fmt.Errorf("smtp: noop: %w", err)
	}
	return c.Quit()
}

// classifySMTPError marks 5xx replies as permanent.
func classifySMTPError(err error) error {
	var se *smtp.SMTPError
	if errors.As(err, &se) {
		return &ProviderError{
			Provider:   "smtp",
			StatusCode: se.Code,
			Message:    se.Message,
			Permanent:  se.Code >= 500,
		}
	}
	return fmt.Errorf("smtp: send: %w", err)
}
