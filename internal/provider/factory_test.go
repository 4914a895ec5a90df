package provider

import (
	"testing"

	"github.com/sungwon/ion-notify/internal/config"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		cfg      ProviderConfig
		wantName string
		wantErr  bool
	}{
		{"stdout", ProviderConfig{Type: "stdout"}, "stdout", false},
		{"file", ProviderConfig{Type: "file", OutputDir: t.TempDir()}, "file", false},
		{"sendgrid", ProviderConfig{Type: "sendgrid", APIKey: "k"}, "sendgrid", false},
		{"resend", ProviderConfig{Type: "resend", APIKey: "re_k"}, "resend", false},
		{"smtp", ProviderConfig{Type: "smtp", SMTP: config.SMTPConfig{Host: "localhost", Port: 25}}, "smtp", false},
		{"invalid config", ProviderConfig{Type: "sendgrid"}, "", true},
		{"unknown", ProviderConfig{Type: "pigeon"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewProvider() error = %v", err)
			}
			if p.GetName() != tt.wantName {
				t.Errorf("GetName() = %q, want %q", p.GetName(), tt.wantName)
			}
		})
	}
}
