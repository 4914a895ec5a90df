// Package delivery renders notification emails and hands them to the mail
// provider.
package delivery

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sungwon/ion-notify/internal/config"
	"github.com/sungwon/ion-notify/internal/logger"
	"github.com/sungwon/ion-notify/internal/metrics"
	"github.com/sungwon/ion-notify/internal/msgstore"
	"github.com/sungwon/ion-notify/internal/provider"
)

// Email is one templated multipart email addressed to a list of recipients.
type Email struct {
	TextTemplate string
	HTMLTemplate string
	Data         map[string]any
	Subject      string
	To           []string
	Headers      map[string]string
}

// Sender sends templated emails.
type Sender interface {
	Send(ctx context.Context, email Email) (*provider.Message, error)
}

// Mailer renders, sends and archives emails.
type Mailer struct {
	provider      provider.Provider
	renderer      *Renderer
	archive       msgstore.MessageStore
	from          string
	subjectPrefix string
	log           zerolog.Logger
}

// NewMailer creates a Mailer. archive may be nil.
func NewMailer(
	p provider.Provider,
	renderer *Renderer,
	archive msgstore.MessageStore,
	cfg config.MailConfig,
	log zerolog.Logger,
) *Mailer {
	return &Mailer{
		provider:      p,
		renderer:      renderer,
		archive:       archive,
		from:          cfg.From,
		subjectPrefix: cfg.SubjectPrefix,
		log:           log,
	}
}

// Send renders both templates, prefixes the subject and delivers the message
// through the provider. With no recipients the message is built but not sent.
// The returned message is the one that was (or would have been) sent.
func (m *Mailer) Send(ctx context.Context, email Email) (*provider.Message, error) {
	log := logger.FromContext(ctx, m.log)

	text, err := m.renderer.RenderText(email.TextTemplate, email.Data)
	if err != nil {
		return nil, fmt.Errorf("render text body: %w", err)
	}
	html, err := m.renderer.RenderHTML(email.HTMLTemplate, email.Data)
	if err != nil {
		return nil, fmt.Errorf("render html body: %w", err)
	}

	name := templateName(email.TextTemplate)
	headers := make(map[string]string, len(email.Headers)+1)
	for k, v := range email.Headers {
		headers[k] = v
	}
	headers["X-Ion-Template"] = name

	msg := &provider.Message{
		ID:       uuid.New().String(),
		From:     m.from,
		To:       email.To,
		Subject:  m.subjectPrefix + email.Subject,
		Headers:  headers,
		TextBody: text,
		HTMLBody: html,
		Template: name,
	}

	log.Debug().
		Str("message_id", msg.ID).
		Str("template", name).
		Str("subject", msg.Subject).
		Strs("to", msg.To).
		Msg("email built")

	if len(msg.To) == 0 {
		log.Info().
			Str("message_id", msg.ID).
			Str("template", name).
			Msg("no recipients, email not sent")
		return msg, nil
	}

	providerName := m.provider.GetName()
	metrics.EmailRecipients.Observe(float64(len(msg.To)))

	start := time.Now()
	result, err := m.provider.Send(ctx, msg)
	metrics.EmailSendDuration.WithLabelValues(providerName).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.EmailSendFailuresTotal.WithLabelValues(name, providerName).Inc()
		log.Error().Err(err).
			Str("provider", providerName).
			Str("message_id", msg.ID).
			Bool("permanent", provider.IsPermanent(err)).
			Msg("provider send failed")
		return nil, fmt.Errorf("send %s email: %w", name, err)
	}
	metrics.EmailsSentTotal.WithLabelValues(name, providerName).Inc()

	log.Info().
		Str("provider", providerName).
		Str("message_id", msg.ID).
		Str("provider_message_id", result.ProviderMessageID).
		Int("recipient_count", len(msg.To)).
		Msg("email delivered")

	m.archiveMessage(ctx, log, msg)
	return msg, nil
}

// archiveMessage stores the composed message. Failures are logged only.
func (m *Mailer) archiveMessage(ctx context.Context, log zerolog.Logger, msg *provider.Message) {
	if m.archive == nil {
		return
	}
	raw, err := provider.Compose(msg)
	if err == nil {
		err = m.archive.Put(ctx, msg.ID, raw)
	}
	if err != nil {
		metrics.ArchiveFailuresTotal.Inc()
		log.Warn().Err(err).Str("message_id", msg.ID).Msg("failed to archive sent email")
	}
}

// templateName turns "announcements/emails/announcement_posted.txt" into
// "announcement_posted".
func templateName(file string) string {
	base := path.Base(file)
	return strings.TrimSuffix(base, path.Ext(base))
}
