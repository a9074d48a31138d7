package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records login attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecm_auth_attempts_total",
			Help: "Total number of login attempts",
		},
		[]string{"result"},
	)

	// OTPVerifications counts verification attempts and their outcome (success|failure).
	OTPVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecm_otp_verifications_total",
			Help: "Total number of OTP verification attempts",
		},
		[]string{"result"},
	)

	// PurgedAccounts counts unverified accounts removed by the cleanup job.
	PurgedAccounts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ecm_purged_accounts_total",
			Help: "Unverified accounts removed by the cleanup job",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ecm_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
