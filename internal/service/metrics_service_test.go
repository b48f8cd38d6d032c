package service

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServiceCounters(t *testing.T) {
	m := NewMetricsService()

	m.ObserveDocumentDecode("term", nil)
	m.ObserveDocumentDecode("term", errors.New("malformed"))
	m.ObserveDocumentEncode("course")
	m.RecordEnrollmentRejection(OpAddStudent, "COURSE_CAPACITY_EXCEEDED")
	m.RecordEnrollmentMutation(OpAddCourse)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := w.Body.String()
	assert.Contains(t, body, `documents_decoded_total{kind="term",result="ok"} 1`)
	assert.Contains(t, body, `documents_decoded_total{kind="term",result="rejected"} 1`)
	assert.Contains(t, body, `enrollment_rejections_total{operation="add_student",reason="COURSE_CAPACITY_EXCEEDED"} 1`)

	summary := m.Snapshot()
	assert.Equal(t, uint64(1), summary.DocumentsDecoded)
	assert.Equal(t, uint64(1), summary.DocumentsRejected)
	assert.Equal(t, uint64(1), summary.EnrollmentRejections)
	assert.Equal(t, 0.5, summary.CacheHitRatio)
}

func TestMetricsServiceHandler(t *testing.T) {
	m := NewMetricsService()
	m.RecordEnrollmentMutation(OpRemoveCourse)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `enrollment_mutations_total{operation="remove_course"} 1`)

	var nilMetrics *MetricsService
	nilMetrics.RecordEnrollmentMutation(OpAddCourse)
	w = httptest.NewRecorder()
	nilMetrics.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
