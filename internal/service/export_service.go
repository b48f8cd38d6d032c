package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-course-api/internal/models"
	appErrors "github.com/noah-isme/sma-course-api/pkg/errors"
	"github.com/noah-isme/sma-course-api/pkg/export"
)

type termReader interface {
	Term() (*models.Term, error)
	GetCourse(courseID int) (models.Course, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportResult captures a rendered export and where it was stored.
type ExportResult struct {
	RelativePath string
	Filename     string
	Format       models.ExportFormat
	Data         []byte
}

// ScheduleExportService renders the loaded term schedule and course rosters
// as CSV or PDF and keeps a copy in the exports directory.
type ScheduleExportService struct {
	terms   termReader
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	now     func() time.Time
	logger  *zap.Logger
}

// NewScheduleExportService constructs the service. Nil renderers fall back to
// the default exporters.
func NewScheduleExportService(terms termReader, storage fileStorage, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ScheduleExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ScheduleExportService{terms: terms, storage: storage, csv: csv, pdf: pdf, now: time.Now, logger: logger}
}

// ParseExportFormat validates a requested format; empty selects CSV.
func ParseExportFormat(raw string) (models.ExportFormat, error) {
	switch models.ExportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case "", models.ExportFormatCSV:
		return models.ExportFormatCSV, nil
	case models.ExportFormatPDF:
		return models.ExportFormatPDF, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", raw))
	}
}

// ExportSchedule renders one row per course of the loaded term.
func (s *ScheduleExportService) ExportSchedule(ctx context.Context, format models.ExportFormat) (*ExportResult, error) {
	term, err := s.terms.Term()
	if err != nil {
		return nil, err
	}
	return s.generate(ctx, scheduleDataset(term), "schedule_"+term.Code, format)
}

// ExportRoster renders the roster and gradebook of one course.
func (s *ScheduleExportService) ExportRoster(ctx context.Context, courseID int, format models.ExportFormat) (*ExportResult, error) {
	course, err := s.terms.GetCourse(courseID)
	if err != nil {
		return nil, err
	}
	info := course.Info()
	return s.generate(ctx, rosterDataset(course), fmt.Sprintf("roster_%s_%d", info.TermCode, info.ID), format)
}

func (s *ScheduleExportService) generate(ctx context.Context, dataset export.Dataset, base string, format models.ExportFormat) (*ExportResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var (
		payload []byte
		err     error
	)
	switch format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	filename := fmt.Sprintf("%s_%s.%s", sanitizeFilename(base), s.now().UTC().Format("20060102_150405"), format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		s.logger.Error("store export", zap.String("file", filename), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrDocumentUnwritable.Code, appErrors.ErrDocumentUnwritable.Status, "failed to store export")
	}
	s.logger.Info("export generated", zap.String("file", relPath), zap.Int("rows", len(dataset.Rows)))
	return &ExportResult{RelativePath: relPath, Filename: filename, Format: format, Data: payload}, nil
}

func scheduleDataset(term *models.Term) export.Dataset {
	rows := make([][]string, 0, len(term.Courses))
	for _, course := range term.Courses {
		info := course.Info()
		rows = append(rows, []string{
			strconv.Itoa(info.ID),
			info.Name,
			string(course.Variant()),
			info.MeetingDays,
			info.MeetingTimes,
			locationOf(course),
			fmt.Sprintf("%d/%d", len(info.Students), course.Capacity()),
		})
	}
	return export.Dataset{
		Title:   "Term " + term.Code + " schedule",
		Headers: []string{"Course", "Name", "Variant", "Days", "Times", "Location", "Enrolled"},
		Rows:    rows,
	}
}

func rosterDataset(course models.Course) export.Dataset {
	info := course.Info()
	rows := make([][]string, 0, len(info.Students))
	for _, student := range info.Students {
		grade := ""
		if gpa, ok := info.Gradebook.Get(student.ID); ok {
			grade = strconv.FormatFloat(gpa, 'f', 2, 64)
		}
		rows = append(rows, []string{
			strconv.Itoa(student.ID),
			student.FirstName,
			student.LastName,
			student.EmailAddress,
			strconv.FormatFloat(student.OverallGPA, 'f', 2, 64),
			grade,
		})
	}
	return export.Dataset{
		Title:   fmt.Sprintf("%s (%d) roster", info.Name, info.ID),
		Headers: []string{"Student", "First name", "Last name", "Email", "Overall GPA", "Course GPA"},
		Rows:    rows,
	}
}

func locationOf(course models.Course) string {
	switch c := course.(type) {
	case *models.OnlineCourse:
		return c.URL
	case *models.HybridCourse:
		return c.URL + " / " + c.ClassroomLocation.Format()
	case *models.LabCourse:
		return c.ClassroomLocation.Format() + " / " + c.LabRoomLocation.Format()
	default:
		return ""
	}
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
