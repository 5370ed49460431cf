package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds every metric the portal records.
type AppMetrics struct {
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec
	RateLimitedTotal    CounterVec

	AuthAttemptsTotal CounterVec

	AssessmentsSubmittedTotal CounterVec
	AssessmentScore           HistogramVec
	TrainingTransitionsTotal  CounterVec
	AlertsBroadcastTotal      CounterVec
	CertificatesUploadedTotal CounterVec

	CacheHitsTotal   CounterVec
	CacheMissesTotal CounterVec

	EventsPublishedTotal CounterVec
	EventsConsumedTotal  CounterVec

	JobRunsTotal    CounterVec
	JobDuration     HistogramVec
	JobAffectedRows CounterVec

	ErrorsTotal CounterVec
}

var (
	DefaultHTTPDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	ScoreBuckets               = []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	JobDurationBuckets         = []float64{.1, .5, 1, 5, 15, 60, 300}
)

// NewAppMetrics registers the portal metrics on collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "In-flight HTTP requests")
	m.RateLimitedTotal = collector.RegisterCounter("http_rate_limited_total", "Requests rejected by the rate limiter")

	m.AuthAttemptsTotal = collector.RegisterCounter("auth_attempts_total", "Bearer token verifications", "result", "reason")

	m.AssessmentsSubmittedTotal = collector.RegisterCounter("assessments_submitted_total", "Risk assessments submitted", "farm_type", "risk_level")
	m.AssessmentScore = collector.RegisterHistogram("assessment_score", "Risk assessment scores by area; area=overall for the overall score", ScoreBuckets, "area")
	m.TrainingTransitionsTotal = collector.RegisterCounter("training_transitions_total", "Training progress transitions", "action")
	m.AlertsBroadcastTotal = collector.RegisterCounter("alerts_broadcast_total", "Alerts created", "severity")
	m.CertificatesUploadedTotal = collector.RegisterCounter("certificates_uploaded_total", "Compliance certificates uploaded")

	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")

	m.EventsPublishedTotal = collector.RegisterCounter("events_published_total", "Domain events published", "topic", "status")
	m.EventsConsumedTotal = collector.RegisterCounter("events_consumed_total", "Domain events consumed", "topic", "status")

	m.JobRunsTotal = collector.RegisterCounter("job_runs_total", "Scheduled job runs", "job", "status")
	m.JobDuration = collector.RegisterHistogram("job_duration_seconds", "Scheduled job duration", JobDurationBuckets, "job")
	m.JobAffectedRows = collector.RegisterCounter("job_affected_rows_total", "Rows changed by scheduled jobs", "job")

	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Errors by component and code", "component", "code")
	return m
}

// NewNopMetrics returns metrics that record nothing.
func NewNopMetrics() *AppMetrics {
	return &AppMetrics{
		HTTPRequestsTotal:         noopCounterVec{},
		HTTPRequestDuration:       noopHistogramVec{},
		HTTPActiveRequests:        noopGaugeVec{},
		RateLimitedTotal:          noopCounterVec{},
		AuthAttemptsTotal:         noopCounterVec{},
		AssessmentsSubmittedTotal: noopCounterVec{},
		AssessmentScore:           noopHistogramVec{},
		TrainingTransitionsTotal:  noopCounterVec{},
		AlertsBroadcastTotal:      noopCounterVec{},
		CertificatesUploadedTotal: noopCounterVec{},
		CacheHitsTotal:            noopCounterVec{},
		CacheMissesTotal:          noopCounterVec{},
		EventsPublishedTotal:      noopCounterVec{},
		EventsConsumedTotal:       noopCounterVec{},
		JobRunsTotal:              noopCounterVec{},
		JobDuration:               noopHistogramVec{},
		JobAffectedRows:           noopCounterVec{},
		ErrorsTotal:               noopCounterVec{},
	}
}

// RecordHTTPRequest records one completed request.  path must be the route
// template, not the raw URL, to keep label cardinality bounded.
func RecordHTTPRequest(m *AppMetrics, method, path string, statusCode int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordAuthAttempt records a token verification outcome.
func RecordAuthAttempt(m *AppMetrics, success bool, reason string) {
	result := "success"
	if !success {
		result = "failure"
	}
	m.AuthAttemptsTotal.WithLabelValues(result, reason).Inc()
}

// RecordAssessment records a submitted assessment and its scores.
func RecordAssessment(m *AppMetrics, farmType, riskLevel string, overall int, areaScores map[string]int) {
	m.AssessmentsSubmittedTotal.WithLabelValues(farmType, riskLevel).Inc()
	m.AssessmentScore.WithLabelValues("overall").Observe(float64(overall))
	for area, score := range areaScores {
		m.AssessmentScore.WithLabelValues(area).Observe(float64(score))
	}
}

// RecordCacheAccess records a hit or miss on cache.
func RecordCacheAccess(m *AppMetrics, cache string, hit bool) {
	if hit {
		m.CacheHitsTotal.WithLabelValues(cache).Inc()
		return
	}
	m.CacheMissesTotal.WithLabelValues(cache).Inc()
}

// RecordEvent records a publish or consume outcome for topic.
func RecordEvent(vec CounterVec, topic string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	vec.WithLabelValues(topic, status).Inc()
}

// RecordJobRun records a scheduled job run.
func RecordJobRun(m *AppMetrics, job string, duration time.Duration, affected int64, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.JobRunsTotal.WithLabelValues(job, status).Inc()
	m.JobDuration.WithLabelValues(job).Observe(duration.Seconds())
	if affected > 0 {
		m.JobAffectedRows.WithLabelValues(job).Add(float64(affected))
	}
}
