package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Email metrics
var (
	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_emails_sent_total",
			Help: "Total number of notification emails handed to the mail provider",
		},
		[]string{"template", "provider"},
	)

	EmailSendFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_email_send_failures_total",
			Help: "Total number of notification emails the mail provider rejected",
		},
		[]string{"template", "provider"},
	)

	EmailRecipients = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "notify_email_recipients",
			Help:    "Number of recipients per notification email",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	EmailSendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notify_email_send_duration_seconds",
			Help:    "Duration of mail provider send calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	ArchiveFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notify_archive_failures_total",
			Help: "Total number of sent messages that could not be archived",
		},
	)
)

// Twitter metrics
var (
	TweetsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_tweets_total",
			Help: "Total number of tweet attempts by result",
		},
		[]string{"result"}, // posted, rejected, failed, skipped
	)
)

// API metrics
var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	APIAuthFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "api_auth_failures_total",
			Help: "Total number of API authentication failures",
		},
	)
)
