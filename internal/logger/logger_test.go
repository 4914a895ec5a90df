package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sungwon/ion-notify/internal/config"
)

func TestNew_LevelFiltering(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		logLevel  string
		shouldLog bool
	}{
		{"info logger logs info", "info", "info", true},
		{"info logger skips debug", "info", "debug", false},
		{"debug logger logs debug", "debug", "debug", true},
		{"warn logger skips info", "warn", "info", false},
		{"invalid level behaves as info", "bogus", "debug", false},
		{"empty level behaves as info", "", "info", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(tt.level).Output(&buf)

			switch tt.logLevel {
			case "debug":
				log.Debug().Msg("test")
			case "info":
				log.Info().Msg("test")
			}

			if got := buf.Len() > 0; got != tt.shouldLog {
				t.Errorf("level=%s logAt=%s: expected output=%v, got %v", tt.level, tt.logLevel, tt.shouldLog, got)
			}
		})
	}
}

func TestNewFromConfig_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notify.log")
	log := NewFromConfig(config.LoggingConfig{
		Level:     "info",
		Output:    "file",
		FilePath:  path,
		MaxSizeMB: 1,
		MaxFiles:  1,
	})

	log.Info().Str("announcement_id", "42").Msg("email dispatched")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}

	var entry map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(data), &entry); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", data, err)
	}
	if entry["message"] != "email dispatched" {
		t.Errorf("unexpected message: %v", entry["message"])
	}
	if entry["announcement_id"] != "42" {
		t.Errorf("unexpected announcement_id: %v", entry["announcement_id"])
	}
}

func TestFromContext_WithCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	log := New("info").Output(&buf)

	ctx := WithLogger(context.Background(), log)
	ctx = WithCorrelationID(ctx, "req-abc-123")

	l := FromContext(ctx, New("info"))
	l.Info().Msg("request handled")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected valid JSON, got error: %v, output: %s", err, buf.String())
	}
	if entry["correlation_id"] != "req-abc-123" {
		t.Errorf("expected correlation_id req-abc-123, got %v", entry["correlation_id"])
	}
}

func TestFromContext_UsesFallback(t *testing.T) {
	var buf bytes.Buffer
	fallback := New("info").Output(&buf)

	l := FromContext(context.Background(), fallback)
	l.Info().Msg("fallback")

	if !strings.Contains(buf.String(), "fallback") {
		t.Errorf("expected fallback logger to receive output, got %q", buf.String())
	}
}

func TestNewCorrelationID(t *testing.T) {
	id1 := NewCorrelationID()
	id2 := NewCorrelationID()

	if id1 == "" || id1 == id2 {
		t.Errorf("expected unique non-empty IDs, got %q and %q", id1, id2)
	}
	if len(strings.Split(id1, "-")) != 5 {
		t.Errorf("expected UUID format, got %s", id1)
	}
}
