package models

import "time"

// MetricsSummary is a point-in-time digest of the process counters.
type MetricsSummary struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	DocumentsDecoded         uint64    `json:"documents_decoded"`
	DocumentsRejected        uint64    `json:"documents_rejected"`
	EnrollmentRejections     uint64    `json:"enrollment_rejections"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
