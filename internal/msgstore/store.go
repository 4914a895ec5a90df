// Package msgstore archives composed notification emails so operators can
// inspect exactly what was sent.
package msgstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sungwon/ion-notify/internal/config"
)

// ErrNotFound is returned when a requested message does not exist.
var ErrNotFound = errors.New("msgstore: message not found")

// ErrInvalidID is returned for message IDs that cannot be used as keys.
var ErrInvalidID = errors.New("msgstore: invalid message id")

// MessageStore stores raw RFC 5322 messages keyed by message ID.
type MessageStore interface {
	Put(ctx context.Context, messageID string, data []byte) error
	Get(ctx context.Context, messageID string) ([]byte, error)
}

// New creates the archive selected by cfg.Type. It returns a nil store for
// "none" or an empty type.
func New(cfg config.ArchiveConfig, logger zerolog.Logger) (MessageStore, error) {
	switch cfg.Type {
	case "", "none":
		return nil, nil
	case "local":
		return NewLocalFileStore(cfg.Path)
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, errors.New("msgstore: s3_bucket is required")
		}
		return NewS3StoreFromConfig(context.Background(), cfg)
	default:
		logger.Warn().
			Str("type", cfg.Type).
			Msg("unsupported archive type, defaulting to local")
		return NewLocalFileStore(cfg.Path)
	}
}

// objectName maps a message ID to its stored name.
func objectName(messageID string) (string, error) {
	if messageID == "" || strings.ContainsAny(messageID, `/\`) || strings.HasPrefix(messageID, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, messageID)
	}
	return messageID + ".eml", nil
}
