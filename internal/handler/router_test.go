package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-course-api/internal/codec"
	"github.com/noah-isme/sma-course-api/internal/models"
	"github.com/noah-isme/sma-course-api/internal/repository"
	"github.com/noah-isme/sma-course-api/internal/service"
	memcache "github.com/noah-isme/sma-course-api/pkg/cache"
	"github.com/noah-isme/sma-course-api/pkg/storage"
)

var fixedNow = time.Date(2019, time.May, 1, 12, 0, 0, 0, time.UTC)

type snapshotTable struct {
	mu   sync.Mutex
	rows []models.TermSnapshot
}

func (s *snapshotTable) Create(_ context.Context, snapshot *models.TermSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, *snapshot)
	return nil
}

func (s *snapshotTable) GetByID(_ context.Context, id string) (*models.TermSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.rows {
		if row.ID == id {
			return &row, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *snapshotTable) List(_ context.Context, termCode string, _ int) ([]models.TermSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.TermSnapshot, 0, len(s.rows))
	for _, row := range s.rows {
		if termCode == "" || row.TermCode == termCode {
			out = append(out, row)
		}
	}
	return out, nil
}

type testAPI struct {
	router    *gin.Engine
	docs      *storage.LocalStorage
	snapshots *service.SnapshotService
	registrar string
	viewer    string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	docs, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	exportsDir, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	dates := codec.DateFormat{Layout: codec.DefaultDateLayout, Location: time.UTC}
	cdc := codec.New(dates)
	metrics := service.NewMetricsService()
	enrollment := service.NewEnrollmentService(service.EnrollmentConfig{Now: func() time.Time { return fixedNow }, Dates: dates}, metrics, nil)
	terms := service.NewTermService(docs, cdc, enrollment, metrics, nil)
	cache := service.NewCacheService(repository.NewMemoryCacheRepository(memcache.NewMemory(time.Minute)), metrics, time.Minute, nil, true)
	manager := service.NewCourseManager(terms, enrollment, cache, metrics, nil)
	exports := service.NewScheduleExportService(manager, exportsDir, nil, nil, nil)
	snapshots := service.NewSnapshotService(&snapshotTable{}, manager, metrics, service.SnapshotConfig{Workers: 1}, nil)
	snapshots.Start(context.Background())
	t.Cleanup(snapshots.Stop)

	auth := service.NewAuthService(nil, service.AuthConfig{AccessTokenSecret: "secret", AccessTokenExpiry: 100 * 365 * 24 * time.Hour})
	registrar, err := auth.IssueToken("registrar", models.RoleRegistrar)
	require.NoError(t, err)
	viewer, err := auth.IssueToken("viewer", models.RoleViewer)
	require.NoError(t, err)

	router := NewRouter(RouterConfig{
		Presenter: Presenter{Dates: dates, Lifecycle: enrollment.Lifecycle},
		Auth:      auth,
		Metrics:   metrics,
		Manager:   manager,
		Exports:   exports,
		Snapshots: snapshots,
	})
	return &testAPI{router: router, docs: docs, snapshots: snapshots, registrar: registrar.AccessToken, viewer: viewer.AccessToken}
}

func (a *testAPI) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	env := decode(t, w)
	require.NotNil(t, env.Error, w.Body.String())
	return env.Error.Code
}

func onlineCourse(id int, start, end string) map[string]interface{} {
	return map[string]interface{}{
		"id":           id,
		"name":         fmt.Sprintf("CS%d", id),
		"variant":      "ONLINE",
		"startDate":    start,
		"endDate":      end,
		"meetingDays":  "M W",
		"meetingTimes": "9:00AM - 10:00AM",
		"url":          fmt.Sprintf("https://learn.example.edu/%d", id),
	}
}

func studentBody(id int) map[string]interface{} {
	return map[string]interface{}{"id": id, "firstName": "Ada", "lastName": "Lovelace", "overallGpa": 3.5, "emailAddress": "ada@example.com"}
}

func TestTermLifecycleOverHTTP(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodGet, "/term", "", nil)
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
	assert.Equal(t, "NO_TERM_LOADED", errorCode(t, w))

	w = api.do(http.MethodPost, "/term", api.registrar, map[string]string{"termCode": "SU2019"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = api.do(http.MethodPost, "/courses", api.registrar, onlineCourse(1, "06/01/2019", "08/01/2019"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var course struct {
		TermCode  string `json:"termCode"`
		Lifecycle string `json:"lifecycle"`
		Capacity  int    `json:"capacity"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &course))
	assert.Equal(t, "SU2019", course.TermCode)
	assert.Equal(t, "NOT_STARTED", course.Lifecycle)
	assert.Equal(t, 20, course.Capacity)

	w = api.do(http.MethodPost, "/courses/1/students", api.registrar, studentBody(7))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = api.do(http.MethodPost, "/courses/1/students", api.registrar, studentBody(7))
	assert.Equal(t, "DUPLICATE_STUDENT", errorCode(t, w))
	w = api.do(http.MethodPost, "/courses/42/students", api.registrar, studentBody(8))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, w))

	bad := studentBody(9)
	bad["firstName"] = "Ann\nMarie"
	w = api.do(http.MethodPost, "/courses/1/students", api.registrar, bad)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPut, "/courses/1/students/7/gpa", api.registrar, map[string]float64{"gpa": 3.0})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
	w = api.do(http.MethodPut, "/courses/1/students/8/gpa", api.registrar, map[string]float64{"gpa": 3.0})
	assert.Equal(t, "STUDENT_NOT_ENROLLED", errorCode(t, w))

	w = api.do(http.MethodGet, "/courses/1/average-gpa", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"courseId":1,"averageGpa":3}`, string(decode(t, w).Data))

	w = api.do(http.MethodGet, "/courses/1/schedule", "", nil)
	assert.Equal(t, "Days: M W, Times: 9:00AM - 10:00AM, Location : https://learn.example.edu/1", w.Body.String())

	w = api.do(http.MethodGet, "/schedule", "", nil)
	assert.Equal(t, "Days: M W, Times: 9:00AM - 10:00AM, Location : https://learn.example.edu/1", w.Body.String())

	w = api.do(http.MethodPost, "/term/save", api.registrar, map[string]string{"path": "su2019.txt"})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
	saved, err := api.docs.ReadText("su2019.txt")
	require.NoError(t, err)

	w = api.do(http.MethodGet, "/term/document", "", nil)
	assert.Equal(t, saved, w.Body.String())
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))

	w = api.do(http.MethodDelete, "/courses/1/students/7", api.registrar, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = api.do(http.MethodDelete, "/courses/1", api.registrar, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = api.do(http.MethodGet, "/courses/1", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodPost, "/term/load", api.registrar, map[string]string{"path": "su2019.txt"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = api.do(http.MethodGet, "/courses/1", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMutationsRequireRegistrar(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/term", "", map[string]string{"termCode": "SU2019"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = api.do(http.MethodPost, "/term", api.viewer, map[string]string{"termCode": "SU2019"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = api.do(http.MethodPost, "/term", "garbage", map[string]string{"termCode": "SU2019"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestErrorMapping(t *testing.T) {
	api := newTestAPI(t)
	w := api.do(http.MethodPost, "/term", api.registrar, map[string]string{"termCode": "SU2019"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = api.do(http.MethodPost, "/courses", api.registrar, onlineCourse(2, "04/01/2019", "08/01/2019"))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "COURSE_ALREADY_STARTED", errorCode(t, w))

	w = api.do(http.MethodPost, "/courses", api.registrar, onlineCourse(3, "01/01/2019", "02/01/2019"))
	assert.Equal(t, "COURSE_ALREADY_ENDED", errorCode(t, w))

	invalid := onlineCourse(4, "06/01/2019", "08/01/2019")
	delete(invalid, "url")
	w = api.do(http.MethodPost, "/courses", api.registrar, invalid)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))

	w = api.do(http.MethodGet, "/courses/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	require.NoError(t, api.docs.WriteText("broken.txt", "<term><termcode>X</termcode><courses><course><id>1</id></course></courses></term>"))
	w = api.do(http.MethodPost, "/term/load", api.registrar, map[string]string{"path": "broken.txt"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "MALFORMED_DOCUMENT", errorCode(t, w))

	w = api.do(http.MethodPost, "/term/load", api.registrar, map[string]string{"path": "missing.txt"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "DOCUMENT_UNREADABLE", errorCode(t, w))

	w = api.do(http.MethodGet, "/courses/9/average-gpa", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCourseCapacityOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/term", api.registrar, map[string]string{"termCode": "SU2019"}).Code)
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/courses", api.registrar, onlineCourse(1, "06/01/2019", "08/01/2019")).Code)

	for id := 1; id <= models.StandardCourseCapacity; id++ {
		require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/courses/1/students", api.registrar, studentBody(id)).Code)
	}
	w := api.do(http.MethodPost, "/courses/1/students", api.registrar, studentBody(99))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "COURSE_CAPACITY_EXCEEDED", errorCode(t, w))
}

func TestScheduleExport(t *testing.T) {
	api := newTestAPI(t)
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/term", api.registrar, map[string]string{"termCode": "SU2019"}).Code)
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/courses", api.registrar, onlineCourse(1, "06/01/2019", "08/01/2019")).Code)

	w := api.do(http.MethodGet, "/schedule/export?format=csv", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "schedule_SU2019_")
	assert.Contains(t, w.Body.String(), "1,CS1,ONLINE")

	w = api.do(http.MethodGet, "/schedule/export?format=pdf&courseId=1", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))

	w = api.do(http.MethodGet, "/schedule/export?format=docx", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSnapshotsOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/term", api.registrar, map[string]string{"termCode": "SU2019"}).Code)
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/courses", api.registrar, onlineCourse(1, "06/01/2019", "08/01/2019")).Code)

	w := api.do(http.MethodPost, "/snapshots", api.registrar, nil)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	var ticket models.SnapshotTicket
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &ticket))
	api.snapshots.Wait()

	w = api.do(http.MethodGet, "/snapshots?termCode=SU2019", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []models.TermSnapshot
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, ticket.ID, listed[0].ID)

	require.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, "/courses/1", api.registrar, nil).Code)
	w = api.do(http.MethodPost, "/snapshots/"+ticket.ID+"/restore", api.registrar, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/courses/1", "", nil).Code)

	w = api.do(http.MethodPost, "/snapshots/unknown/restore", api.registrar, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOperationalEndpoints(t *testing.T) {
	api := newTestAPI(t)

	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.JSONEq(t, `{"status":"ready","term_loaded":false}`, w.Body.String())

	api.do(http.MethodGet, "/term", "", nil)
	w = httptest.NewRecorder()
	api.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), `http_requests_total{method="GET",path="/api/v1/term",status="412"} 1`)

	w = api.do(http.MethodGet, "/metrics/summary", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
