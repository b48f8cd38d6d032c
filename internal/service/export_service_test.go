package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-course-api/internal/models"
	appErrors "github.com/noah-isme/sma-course-api/pkg/errors"
	"github.com/noah-isme/sma-course-api/pkg/storage"
)

func newExportServiceForTest(t *testing.T) (*ScheduleExportService, *CourseManager, string) {
	t.Helper()
	manager, _, _ := newTestManager(t)
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	svc := NewScheduleExportService(manager, store, zap.NewNop(), nil, nil)
	svc.now = func() time.Time { return testNow }
	return svc, manager, dir
}

func loadExportTerm(t *testing.T, manager *CourseManager) {
	t.Helper()
	ctx := context.Background()
	_, err := manager.StartTerm(ctx, "SU2019")
	require.NoError(t, err)
	require.NoError(t, manager.AddCourse(ctx, &models.OnlineCourse{CourseInfo: upcoming(1), URL: "https://learn.example.edu/c1"}))
	room := models.Location{BuildingName: "Hall", RoomNumber: "2E", Address: models.Address{BuildingNumber: "221", Street: "Baker", City: "London", State: "NA", ZipCode: "00000"}}
	require.NoError(t, manager.AddCourse(ctx, &models.LabCourse{CourseInfo: upcoming(2), ClassroomLocation: room, LabRoomLocation: room}))
	require.NoError(t, manager.AddStudent(ctx, student(10), 1))
	require.NoError(t, manager.ChangeStudentGPA(ctx, 10, 1, 3.5))
}

func TestParseExportFormat(t *testing.T) {
	format, err := ParseExportFormat("")
	require.NoError(t, err)
	assert.Equal(t, models.ExportFormatCSV, format)

	format, err = ParseExportFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, models.ExportFormatPDF, format)

	_, err = ParseExportFormat("xlsx")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestExportScheduleCSV(t *testing.T) {
	svc, manager, dir := newExportServiceForTest(t)
	loadExportTerm(t, manager)

	result, err := svc.ExportSchedule(context.Background(), models.ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "schedule_SU2019_20190501_120000.csv", result.Filename)

	body := string(result.Data)
	assert.Contains(t, body, "Course,Name,Variant,Days,Times,Location,Enrolled\n")
	assert.Contains(t, body, "1,COURSE1,ONLINE,M W,9:00AM - 10:00AM,https://learn.example.edu/c1,1/20\n")
	assert.Contains(t, body, "2,COURSE2,LAB,M W,9:00AM - 10:00AM,Hall 2E 221 Baker London NA 00000 / Hall 2E 221 Baker London NA 00000,0/10\n")

	stored, err := os.ReadFile(filepath.Join(dir, result.RelativePath))
	require.NoError(t, err)
	assert.Equal(t, result.Data, stored)
}

func TestExportRosterPDF(t *testing.T) {
	svc, manager, _ := newExportServiceForTest(t)
	loadExportTerm(t, manager)

	result, err := svc.ExportRoster(context.Background(), 1, models.ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "roster_SU2019_1_20190501_120000.pdf", result.Filename)
	assert.True(t, bytes.HasPrefix(result.Data, []byte("%PDF")))
}

func TestExportRosterCSVIncludesGrades(t *testing.T) {
	svc, manager, _ := newExportServiceForTest(t)
	loadExportTerm(t, manager)

	result, err := svc.ExportRoster(context.Background(), 1, models.ExportFormatCSV)
	require.NoError(t, err)
	assert.Contains(t, string(result.Data), "10,Student,10,,3.00,3.50\n")

	_, err = svc.ExportRoster(context.Background(), 99, models.ExportFormatCSV)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestExportRequiresTerm(t *testing.T) {
	svc, _, _ := newExportServiceForTest(t)
	_, err := svc.ExportSchedule(context.Background(), models.ExportFormatCSV)
	assert.True(t, errors.Is(err, appErrors.ErrNoTermLoaded))
}
