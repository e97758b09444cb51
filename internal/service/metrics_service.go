package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/academy-desk-api/internal/models"
)

// MetricsService owns the Prometheus registry and keeps a few counters for the summary endpoint.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Histogram
	cacheWrite      prometheus.Histogram
	cacheHitRatio   prometheus.Gauge
	cacheLookups    *prometheus.CounterVec
	admissions      *prometheus.CounterVec
	approvals       *prometheus.CounterVec
	rejections      prometheus.Counter
	feeCollected    prometheus.Counter
	priceLookups    *prometheus.CounterVec
	exportJobs      *prometheus.CounterVec

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	admissionCount       uint64
	approvalCount        uint64
	rejectionCount       uint64
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	m := &MetricsService{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		cacheLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_latency_seconds",
			Help:    "Latency for cache lookups",
			Buckets: prometheus.DefBuckets,
		}),
		cacheWrite: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_write_seconds",
			Help:    "Latency for cache writes",
			Buckets: prometheus.DefBuckets,
		}),
		cacheHitRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cache_hit_ratio",
			Help: "Ratio of cache hits to total cache lookups",
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Cache lookups by result",
		}, []string{"result"}),
		admissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "academy_admissions_total",
			Help: "Admissions created, by fee mode",
		}, []string{"mode"}),
		approvals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "academy_approvals_total",
			Help: "Pending registrations approved, by whether a fee was collected",
		}, []string{"collected"}),
		rejections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "academy_rejections_total",
			Help: "Pending registrations rejected",
		}),
		feeCollected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "academy_fee_collected_total",
			Help: "Sum of fee amounts collected at admission, approval and later installments",
		}),
		priceLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "academy_session_price_lookups_total",
			Help: "Session price lookups by whether a price was configured",
		}, []string{"found"}),
		exportJobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "academy_export_jobs_total",
			Help: "Dues export jobs by format and final status",
		}, []string{"format", "status"}),
	}

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(
		m.requestDuration, m.requestTotal,
		m.cacheLatency, m.cacheWrite, m.cacheHitRatio, m.cacheLookups,
		m.admissions, m.approvals, m.rejections, m.feeCollected, m.priceLookups, m.exportJobs,
		goroutines,
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records a cache lookup and updates the hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheLookups.WithLabelValues("miss").Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	total := hits + atomic.LoadUint64(&m.cacheMissCount)
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration of cache writes.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// RecordAdmission counts an admission and the amount collected with it.
func (m *MetricsService) RecordAdmission(mode string, paid decimal.Decimal) {
	if m == nil {
		return
	}
	m.admissions.WithLabelValues(mode).Inc()
	m.addCollected(paid)
	atomic.AddUint64(&m.admissionCount, 1)
}

// RecordApproval counts an approval and the amount collected with it.
func (m *MetricsService) RecordApproval(collected bool, paid decimal.Decimal) {
	if m == nil {
		return
	}
	m.approvals.WithLabelValues(strconv.FormatBool(collected)).Inc()
	m.addCollected(paid)
	atomic.AddUint64(&m.approvalCount, 1)
}

// RecordRejection counts a rejected registration.
func (m *MetricsService) RecordRejection() {
	if m == nil {
		return
	}
	m.rejections.Inc()
	atomic.AddUint64(&m.rejectionCount, 1)
}

// RecordCollection adds a post-admission installment.
func (m *MetricsService) RecordCollection(amount decimal.Decimal) {
	if m == nil {
		return
	}
	m.addCollected(amount)
}

// RecordPriceLookup counts a session price lookup.
func (m *MetricsService) RecordPriceLookup(found bool) {
	if m == nil {
		return
	}
	m.priceLookups.WithLabelValues(strconv.FormatBool(found)).Inc()
}

// RecordExportJob counts a finished or failed export job.
func (m *MetricsService) RecordExportJob(format models.ExportFormat, status models.ExportStatus) {
	if m == nil {
		return
	}
	m.exportJobs.WithLabelValues(string(format), string(status)).Inc()
}

func (m *MetricsService) addCollected(amount decimal.Decimal) {
	if amount.IsPositive() {
		m.feeCollected.Add(amount.InexactFloat64())
	}
}

// Snapshot returns aggregated counters for the summary endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var ratio float64
	if hits+misses > 0 {
		ratio = float64(hits) / float64(hits+misses)
	}
	var avgMs float64
	if requests > 0 {
		avgMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgMs,
		CacheHits:                hits,
		CacheMisses:              misses,
		CacheHitRatio:            ratio,
		Admissions:               atomic.LoadUint64(&m.admissionCount),
		Approvals:                atomic.LoadUint64(&m.approvalCount),
		Rejections:               atomic.LoadUint64(&m.rejectionCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
