package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "account_service_requests_total",
		Help: "The total number of HTTP requests by method, path and status",
	}, []string{"method", "path", "status"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "account_service_request_duration_seconds",
		Help:    "The request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	LoginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "account_service_login_attempts_total",
		Help: "The total number of login attempts by outcome",
	}, []string{"status"})

	RegistrationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "account_service_registrations_total",
		Help: "The total number of registration attempts by outcome",
	}, []string{"status"})

	TokenRefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "account_service_token_refresh_total",
		Help: "The total number of token refreshes by outcome",
	}, []string{"status"})

	AccountsBlockedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "account_service_accounts_blocked_total",
		Help: "The total number of accounts blocked by the lockout policy",
	})

	CodesIssuedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "account_service_codes_issued_total",
		Help: "The total number of one-time codes issued by purpose",
	}, []string{"purpose"})

	CSRFRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "account_service_csrf_rejections_total",
		Help: "The total number of requests rejected by the CSRF guard",
	})

	RateLimitRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "account_service_rate_limit_rejections_total",
		Help: "The total number of requests rejected by the rate limiter",
	})
)
