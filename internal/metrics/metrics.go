package metrics

import (
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tagihanpln_requests_total",
			Help: "Total number of HTTP requests per route and outcome",
		},
		[]string{"path", "outcome"},
	)

	RequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tagihanpln_request_duration_seconds",
			Help:    "HTTP request duration in seconds per route",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 20, 40, 60, 90},
		},
		[]string{"path"},
	)

	InquiriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tagihanpln_inquiries_total",
			Help: "Total number of bill inquiries per outcome and answering provider",
		},
		[]string{"outcome", "provider"},
	)

	ProviderAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tagihanpln_provider_attempts_total",
			Help: "Total number of provider attempts per provider and result kind",
		},
		[]string{"provider", "result"},
	)

	ProviderAttemptDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tagihanpln_provider_attempt_duration_seconds",
			Help:    "Provider attempt duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30, 45, 60},
		},
		[]string{"provider"},
	)

	TotalMismatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tagihanpln_total_mismatch_total",
			Help: "Answers whose reported total differs from bill plus admin fee",
		},
		[]string{"provider"},
	)
)

// Probe gauges.
var (
	ProviderUp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tagihanpln_provider_up",
			Help: "1 when the last probe reached the provider, 0 otherwise",
		},
		[]string{"provider"},
	)

	BrowserAvailable = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tagihanpln_browser_available",
			Help: "1 when a browser for page automation is installed",
		},
	)
)

var (
	DBPoolOpenConns = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tagihanpln_db_pool_open_conns",
			Help: "Open connections in the DB pool per driver",
		},
		[]string{"driver"},
	)

	DBPoolIdleConns = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tagihanpln_db_pool_idle_conns",
			Help: "Idle connections in the DB pool per driver",
		},
		[]string{"driver"},
	)

	DBPoolInUseConns = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tagihanpln_db_pool_in_use_conns",
			Help: "Connections currently in use per driver",
		},
		[]string{"driver"},
	)

	DBPoolWaitCount = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tagihanpln_db_pool_wait_count",
			Help: "Cumulative number of connections waited for per driver",
		},
		[]string{"driver"},
	)
)

func UpdateDBPoolMetrics(driver string, s sql.DBStats) {
	DBPoolOpenConns.WithLabelValues(driver).Set(float64(s.OpenConnections))
	DBPoolIdleConns.WithLabelValues(driver).Set(float64(s.Idle))
	DBPoolInUseConns.WithLabelValues(driver).Set(float64(s.InUse))
	DBPoolWaitCount.WithLabelValues(driver).Set(float64(s.WaitCount))
}

var (
	ScheduledJobLastRun = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tagihanpln_job_last_run_timestamp",
			Help: "Unix timestamp of the last completed run for a job",
		},
		[]string{"job"},
	)

	ScheduledJobLastDurationSeconds = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tagihanpln_job_last_duration_seconds",
			Help: "Duration of the last completed run for a job",
		},
		[]string{"job"},
	)

	ScheduledJobFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tagihanpln_job_failures_total",
			Help: "Total number of failed executions per job",
		},
		[]string{"job"},
	)
)

func UpdateJobMetrics(job string, startedAt time.Time, err error) {
	ScheduledJobLastDurationSeconds.WithLabelValues(job).Set(time.Since(startedAt).Seconds())
	ScheduledJobLastRun.WithLabelValues(job).Set(float64(time.Now().Unix()))
	if err != nil {
		ScheduledJobFailuresTotal.WithLabelValues(job).Inc()
	}
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func SetProviderUp(provider string, up bool) {
	ProviderUp.WithLabelValues(provider).Set(boolGauge(up))
}

func SetBrowserAvailable(ok bool) {
	BrowserAvailable.Set(boolGauge(ok))
}
