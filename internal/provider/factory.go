package provider

import (
	"fmt"
	"os"
)

// NewProvider creates the provider selected by cfg.Type.
func NewProvider(cfg ProviderConfig) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid provider config: %w", err)
	}

	switch cfg.Type {
	case "smtp":
		return NewSMTP(cfg), nil
	case "sendgrid":
		return NewSendGrid(cfg, NewHTTPClient(cfg.Timeout)), nil
	case "resend":
		r, err := NewResend(cfg)
		if err != nil {
			return nil, err
		}
		return r, nil
	case "stdout":
		return NewStdout(os.Stdout), nil
	case "file":
		return NewFile(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", cfg.Type)
	}
}
