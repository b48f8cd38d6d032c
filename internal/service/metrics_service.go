package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/sma-course-api/internal/models"
)

// Decode results recorded by ObserveDocumentDecode.
const (
	DecodeResultOK       = "ok"
	DecodeResultRejected = "rejected"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	dbQueryDuration *prometheus.HistogramVec

	documentsDecoded     *prometheus.CounterVec
	documentsEncoded     *prometheus.CounterVec
	enrollmentRejections *prometheus.CounterVec
	enrollmentMutations  *prometheus.CounterVec
	snapshotJobs         *prometheus.CounterVec
	loadedCourses        prometheus.Gauge

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	dbQueryCount         uint64
	dbQueryDurationTotal uint64
	decodedCount         uint64
	decodeRejectCount    uint64
	rejectionCount       uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	documentsDecoded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "documents_decoded_total",
		Help: "Documents decoded, by kind and result",
	}, []string{"kind", "result"})

	documentsEncoded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "documents_encoded_total",
		Help: "Documents encoded, by kind",
	}, []string{"kind"})

	enrollmentRejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "enrollment_rejections_total",
		Help: "Enrollment operations rejected by capacity or lifecycle rules",
	}, []string{"operation", "reason"})

	enrollmentMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "enrollment_mutations_total",
		Help: "Enrollment operations applied to the loaded term",
	}, []string{"operation"})

	snapshotJobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "snapshot_jobs_total",
		Help: "Snapshot archival jobs, by result",
	}, []string{"result"})

	loadedCourses := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "term_loaded_courses",
		Help: "Number of courses in the loaded term",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses, dbQueryDuration,
		documentsDecoded, documentsEncoded, enrollmentRejections, enrollmentMutations, snapshotJobs, loadedCourses, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:             registry,
		handler:              handler,
		requestDuration:      requestDuration,
		requestTotal:         requestTotal,
		cacheLatency:         cacheLatency,
		cacheWrite:           cacheWrite,
		cacheHitRatio:        cacheHitRatio,
		cacheHits:            cacheHits,
		cacheMisses:          cacheMisses,
		dbQueryDuration:      dbQueryDuration,
		documentsDecoded:     documentsDecoded,
		documentsEncoded:     documentsEncoded,
		enrollmentRejections: enrollmentRejections,
		enrollmentMutations:  enrollmentMutations,
		snapshotJobs:         snapshotJobs,
		loadedCourses:        loadedCourses,
	}
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

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	if total := hits + misses; total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
	atomic.AddUint64(&m.dbQueryCount, 1)
	atomic.AddUint64(&m.dbQueryDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveDocumentDecode counts a decode attempt of a term, course or student document.
func (m *MetricsService) ObserveDocumentDecode(kind string, err error) {
	if m == nil {
		return
	}
	result := DecodeResultOK
	if err != nil {
		result = DecodeResultRejected
		atomic.AddUint64(&m.decodeRejectCount, 1)
	} else {
		atomic.AddUint64(&m.decodedCount, 1)
	}
	m.documentsDecoded.WithLabelValues(kind, result).Inc()
}

// ObserveDocumentEncode counts an encoded document.
func (m *MetricsService) ObserveDocumentEncode(kind string) {
	if m == nil {
		return
	}
	m.documentsEncoded.WithLabelValues(kind).Inc()
}

// RecordEnrollmentRejection counts an operation refused by the enrollment rules.
func (m *MetricsService) RecordEnrollmentRejection(operation, reason string) {
	if m == nil {
		return
	}
	m.enrollmentRejections.WithLabelValues(operation, reason).Inc()
	atomic.AddUint64(&m.rejectionCount, 1)
}

// RecordEnrollmentMutation counts an operation applied to the loaded term.
func (m *MetricsService) RecordEnrollmentMutation(operation string) {
	if m == nil {
		return
	}
	m.enrollmentMutations.WithLabelValues(operation).Inc()
}

// RecordSnapshotJob counts a finished snapshot job.
func (m *MetricsService) RecordSnapshotJob(result string) {
	if m == nil {
		return
	}
	m.snapshotJobs.WithLabelValues(result).Inc()
}

// SetLoadedCourses tracks the size of the loaded term.
func (m *MetricsService) SetLoadedCourses(n int) {
	if m == nil {
		return
	}
	m.loadedCourses.Set(float64(n))
}

// Snapshot returns aggregated metrics suitable for the summary endpoint.
func (m *MetricsService) Snapshot() models.MetricsSummary {
	if m == nil {
		return models.MetricsSummary{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)
	dbCount := atomic.LoadUint64(&m.dbQueryCount)
	dbDuration := atomic.LoadUint64(&m.dbQueryDurationTotal)

	var cacheRatio float64
	if totalLookups := hits + misses; totalLookups > 0 {
		cacheRatio = float64(hits) / float64(totalLookups)
	}

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	var avgDBMs float64
	if dbCount > 0 {
		avgDBMs = float64(dbDuration) / float64(dbCount) / float64(time.Millisecond)
	}

	return models.MetricsSummary{
		CacheHitRatio:            cacheRatio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		DBQueryCount:             dbCount,
		AverageDBQueryDurationMs: avgDBMs,
		DocumentsDecoded:         atomic.LoadUint64(&m.decodedCount),
		DocumentsRejected:        atomic.LoadUint64(&m.decodeRejectCount),
		EnrollmentRejections:     atomic.LoadUint64(&m.rejectionCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
