// Package announcements sends the emails and tweets that follow an
// announcement being posted or requested.
package announcements

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sungwon/ion-notify/internal/config"
	"github.com/sungwon/ion-notify/internal/delivery"
	"github.com/sungwon/ion-notify/internal/directory"
	"github.com/sungwon/ion-notify/internal/logger"
	"github.com/sungwon/ion-notify/internal/metrics"
	"github.com/sungwon/ion-notify/internal/provider"
	"github.com/sungwon/ion-notify/internal/twitter"
)

const (
	postedTemplate  = "announcements/emails/announcement_posted"
	teacherTemplate = "announcements/emails/teacher_approve"
	adminTemplate   = "announcements/emails/admin_approve"
)

// StatusPoster posts a status update and returns the raw response text.
type StatusPoster interface {
	Enabled() bool
	ScreenName() string
	PostStatus(ctx context.Context, status string) (string, error)
}

// EmailResult describes one dispatched email.
type EmailResult struct {
	Recipients []string
	// Message is nil when the email was skipped entirely.
	Message *provider.Message
}

// Dispatcher runs the announcement notification flows.
type Dispatcher struct {
	dir     directory.Directory
	mail    delivery.Sender
	twitter StatusPoster
	links   Links
	cfg     config.AnnouncementsConfig
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(
	dir directory.Directory,
	mail delivery.Sender,
	tw StatusPoster,
	links Links,
	cfg config.AnnouncementsConfig,
	log zerolog.Logger,
) *Dispatcher {
	return &Dispatcher{
		dir:     dir,
		mail:    mail,
		twitter: tw,
		links:   links,
		cfg:     cfg,
		log:     log,
	}
}

// AnnouncementPostedEmail emails a new announcement to every opted-in user
// who can see it. It does nothing when announcement emails are disabled.
func (d *Dispatcher) AnnouncementPostedEmail(ctx context.Context, a *directory.Announcement) (*EmailResult, error) {
	log := logger.FromContext(ctx, d.log).With().Int64("announcement_id", a.ID).Logger()

	if !d.cfg.EmailEnabled {
		log.Debug().Msg("emailing announcements disabled")
		return &EmailResult{}, nil
	}

	users, err := d.dir.NewsEmailSubscribers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load news email subscribers: %w", err)
	}
	emails := ResolveRecipients(users, *a)

	log.Debug().
		Int("subscribers", len(users)).
		Int("recipients", len(emails)).
		Msg("resolved announcement recipients")

	msg, err := d.mail.Send(ctx, delivery.Email{
		TextTemplate: postedTemplate + ".txt",
		HTMLTemplate: postedTemplate + ".html",
		Data: map[string]any{
			"announcement": a,
			"link":         d.links.Announcement(a.ID),
			"base_url":     d.links.Index(),
		},
		Subject: "News: " + a.Title,
		To:      emails,
	})
	if err != nil {
		return nil, err
	}
	return &EmailResult{Recipients: emails, Message: msg}, nil
}

// AnnouncementPostedTwitter tweets a summary of a public announcement. It
// returns false without any request when the announcement is restricted or
// Twitter is not configured. Feedback is added to notices.
func (d *Dispatcher) AnnouncementPostedTwitter(ctx context.Context, a *directory.Announcement, notices *Notices) (bool, error) {
	log := logger.FromContext(ctx, d.log).With().Int64("announcement_id", a.ID).Logger()

	if !a.IsPublic() || d.twitter == nil || !d.twitter.Enabled() {
		metrics.TweetsTotal.WithLabelValues("skipped").Inc()
		log.Debug().Msg("not posting to Twitter")
		return false, nil
	}
	log.Debug().Msg("publicly available")

	status := twitter.BuildStatus(a.Title, a.Content, d.links.Announcement(a.ID))
	log.Debug().Str("status", status).Msg("posting tweet")

	resp, err := d.twitter.PostStatus(ctx, status)
	if err != nil {
		metrics.TweetsTotal.WithLabelValues("failed").Inc()
		return false, fmt.Errorf("post tweet: %w", err)
	}

	id, ok := twitter.StatusID(resp)
	if !ok {
		metrics.TweetsTotal.WithLabelValues("rejected").Inc()
		log.Warn().Str("response", resp).Msg("tweet rejected")
		notices.Error(resp)
		return false, nil
	}

	metrics.TweetsTotal.WithLabelValues("posted").Inc()
	log.Info().Str("status_id", id).Msg("tweet posted")
	notices.Success("Posted tweet: " + status)
	notices.Success(twitter.Permalink(d.twitter.ScreenName(), id))
	return true, nil
}

// RequestAnnouncementEmail asks the teachers named in the submitted form to
// approve a news post request made by actor.
func (d *Dispatcher) RequestAnnouncementEmail(
	ctx context.Context,
	actor directory.User,
	form map[string]any,
	req *directory.AnnouncementRequest,
) (*EmailResult, error) {
	log := logger.FromContext(ctx, d.log).With().Int64("request_id", req.ID).Logger()

	teacherIDs, err := TeacherIDs(form)
	if err != nil {
		return nil, err
	}
	teachers, err := d.dir.UsersByID(ctx, teacherIDs)
	if err != nil {
		return nil, fmt.Errorf("load requested teachers: %w", err)
	}

	emails := make([]string, 0, len(teachers))
	for _, t := range teachers {
		if t.FallbackEmail != "" {
			emails = append(emails, t.FallbackEmail)
		}
	}
	log.Debug().
		Ints64("teacher_ids", teacherIDs).
		Strs("emails", emails).
		Msg("resolved teacher approval recipients")

	msg, err := d.mail.Send(ctx, delivery.Email{
		TextTemplate: teacherTemplate + ".txt",
		HTMLTemplate: teacherTemplate + ".html",
		Data: map[string]any{
			"teachers":  teachers,
			"user":      actor,
			"formdata":  form,
			"info_link": d.links.ApproveRequest(req.ID),
			"base_url":  d.links.Index(),
		},
		Subject: "News Post Confirmation Request from " + actor.FullName,
		To:      emails,
	})
	if err != nil {
		return nil, err
	}
	return &EmailResult{Recipients: emails, Message: msg}, nil
}

// AdminRequestAnnouncementEmail tells the approval address that a request is
// waiting for administrative approval.
func (d *Dispatcher) AdminRequestAnnouncementEmail(
	ctx context.Context,
	form map[string]any,
	req *directory.AnnouncementRequest,
) (*EmailResult, error) {
	var emails []string
	if d.cfg.ApprovalEmail != "" {
		emails = []string{d.cfg.ApprovalEmail}
	}

	msg, err := d.mail.Send(ctx, delivery.Email{
		TextTemplate: adminTemplate + ".txt",
		HTMLTemplate: adminTemplate + ".html",
		Data: map[string]any{
			"req":       req,
			"formdata":  form,
			"info_link": d.links.AdminApprove(req.ID),
			"base_url":  d.links.Index(),
		},
		Subject: "News Post Approval Needed (" + req.Title + ")",
		To:      emails,
	})
	if err != nil {
		return nil, err
	}
	return &EmailResult{Recipients: emails, Message: msg}, nil
}
