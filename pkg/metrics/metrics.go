package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records access code attempts by result (success|invalid|throttled|error).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soiree_auth_attempts_total",
			Help: "Total number of access code authentication attempts",
		},
		[]string{"result"},
	)

	// InvitesCreated counts guests created by source (invite|admin|csv|seed).
	InvitesCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soiree_invites_created_total",
			Help: "Total number of guests created",
		},
		[]string{"source"},
	)

	// Notifications counts outbound deliveries by channel (sms|email) and result (sent|failed|skipped).
	Notifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soiree_notifications_total",
			Help: "Total number of outbound notification deliveries",
		},
		[]string{"channel", "result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "soiree_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)
