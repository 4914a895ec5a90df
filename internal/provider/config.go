package provider

import (
	"errors"
	"time"

	"github.com/sungwon/ion-notify/internal/config"
)

// ProviderConfig holds configuration for a mail provider.
type ProviderConfig struct {
	// Type identifies the provider: "smtp", "sendgrid", "resend", "stdout", "file".
	Type string

	// APIKey is the credential for API-based providers.
	APIKey string

	// Endpoint overrides the default API URL (useful for testing).
	Endpoint string

	// OutputDir is where the file provider writes messages.
	OutputDir string

	// Timeout is the maximum duration for a single send.
	Timeout time.Duration

	SMTP config.SMTPConfig
}

const defaultTimeout = 30 * time.Second

// ConfigFromMail converts the application's mail section to a ProviderConfig.
func ConfigFromMail(cfg config.MailConfig) ProviderConfig {
	return ProviderConfig{
		Type:      cfg.Provider,
		APIKey:    cfg.APIKey,
		Endpoint:  cfg.Endpoint,
		OutputDir: cfg.OutputDir,
		Timeout:   cfg.Timeout,
		SMTP:      cfg.SMTP,
	}
}

// Validate checks that required fields are set based on provider type.
func (c *ProviderConfig) Validate() error {
	if c.Type == "" {
		return errors.New("provider type is required")
	}

	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}

	switch c.Type {
	case "smtp":
		if c.SMTP.Host == "" {
			return errors.New("smtp: host is required")
		}
		if c.SMTP.Port <= 0 {
			return errors.New("smtp: port must be positive")
		}
		switch c.SMTP.TLS {
		case "", "none", "starttls", "implicit":
		default:
			return errors.New("smtp: tls must be none, starttls or implicit")
		}
		if c.SMTP.Username != "" && c.SMTP.Password == "" {
			return errors.New("smtp: password is required when username is set")
		}
	case "sendgrid":
		if c.APIKey == "" {
			return errors.New("sendgrid: api_key is required")
		}
	case "resend":
		if c.APIKey == "" {
			return errors.New("resend: api_key is required")
		}
	case "stdout", "file":
		// No configuration required.
	default:
		return errors.New("unknown provider type: " + c.Type)
	}

	return nil
}
