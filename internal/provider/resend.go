package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
)

// Resend implements the Provider interface using the Resend API SDK.
type Resend struct {
	client *resend.Client
}

// NewResend creates a Resend provider. A non-empty Endpoint replaces the
// SDK's base URL.
func NewResend(cfg ProviderConfig) (*Resend, error) {
	client := resend.NewCustomClient(&http.Client{Timeout: cfg.Timeout}, cfg.APIKey)
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		if !strings.HasSuffix(endpoint, "/") {
			endpoint += "/"
		}
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("resend: parse endpoint: %w", err)
		}
		client.BaseURL = u
	}
	return &Resend{client: client}, nil
}

func (r *Resend) GetName() string { return "resend" }

// Send delivers msg through the Resend emails endpoint.
func (r *Resend) Send(ctx context.Context, msg *Message) (*DeliveryResult, error) {
	req := &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTMLBody,
		Text:    msg.TextBody,
		Headers: msg.Headers,
	}

	resp, err := r.client.Emails.SendWithContext(ctx, req)
	if err != nil {
		return nil, classifyResendError(err)
	}

	return &DeliveryResult{
		ProviderMessageID: resp.Id,
		Status:            StatusSent,
		Timestamp:         time.Now(),
	}, nil
}

// HealthCheck lists the account's domains to confirm the API key works.
func (r *Resend) HealthCheck(ctx context.Context) error {
	if _, err := r.client.Domains.ListWithContext(ctx); err != nil {
		return fmt.Errorf("resend: health check: %w", err)
	}
	return nil
}

func classifyResendError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("resend: send: %w", err)
	}
	return &ProviderError{
		Provider:  "resend",
		Message:   err.Error(),
		Permanent: hasPermanentHint(err.Error()),
	}
}
