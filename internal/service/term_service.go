package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-course-api/internal/codec"
	"github.com/noah-isme/sma-course-api/internal/models"
	appErrors "github.com/noah-isme/sma-course-api/pkg/errors"
)

// Document kinds used in metrics labels.
const (
	DocumentTerm     = "term"
	DocumentCourse   = "course"
	DocumentStudents = "students"
	DocumentSchedule = "schedule"
)

type documentStore interface {
	ReadText(name string) (string, error)
	WriteText(name, text string) error
}

type documentMetrics interface {
	ObserveDocumentDecode(kind string, err error)
	ObserveDocumentEncode(kind string)
}

// TermService moves terms, courses and student batches between documents on
// disk and the in-memory model. Every read loads the whole file before
// decoding; every write encodes the whole tree before touching disk.
type TermService struct {
	store      documentStore
	codec      *codec.Codec
	enrollment *EnrollmentService
	metrics    documentMetrics
	logger     *zap.Logger
}

// NewTermService creates a new term service instance.
func NewTermService(store documentStore, c *codec.Codec, enrollment *EnrollmentService, metrics documentMetrics, logger *zap.Logger) *TermService {
	if c == nil {
		c = codec.New(codec.DefaultDateFormat())
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TermService{store: store, codec: c, enrollment: enrollment, metrics: metrics, logger: logger}
}

// LoadTerm reads and decodes a term document.
func (s *TermService) LoadTerm(ctx context.Context, path string) (*models.Term, error) {
	text, err := s.read(ctx, path)
	if err != nil {
		return nil, err
	}
	term, err := s.codec.DecodeTerm(text)
	s.observeDecode(DocumentTerm, path, err)
	if err != nil {
		return nil, err
	}
	s.logger.Info("term loaded", zap.String("path", path), zap.String("term_code", term.Code), zap.Int("courses", len(term.Courses)))
	return term, nil
}

// DecodeTerm decodes a term document held in memory.
func (s *TermService) DecodeTerm(document string) (*models.Term, error) {
	term, err := s.codec.DecodeTerm(strings.ReplaceAll(document, "\r", ""))
	s.observeDecode(DocumentTerm, "", err)
	return term, err
}

// EncodeTerm renders the term document.
func (s *TermService) EncodeTerm(term *models.Term) (string, error) {
	text, err := s.codec.EncodeTerm(term)
	if err != nil {
		return "", err
	}
	s.observeEncode(DocumentTerm)
	return text, nil
}

// SaveTerm encodes the term and overwrites path with it.
func (s *TermService) SaveTerm(ctx context.Context, term *models.Term, path string) error {
	text, err := s.EncodeTerm(term)
	if err != nil {
		return err
	}
	return s.write(ctx, path, text)
}

// LoadCourse decodes a single course document and appends it to the term.
// The course is restored as persisted, so only the term capacity and
// duplicate id guards apply.
func (s *TermService) LoadCourse(ctx context.Context, term *models.Term, path string) (models.Course, error) {
	text, err := s.read(ctx, path)
	if err != nil {
		return nil, err
	}
	course, err := s.codec.DecodeCourse(text)
	s.observeDecode(DocumentCourse, path, err)
	if err != nil {
		return nil, err
	}
	if err := s.enrollment.RestoreCourse(term, course); err != nil {
		return nil, err
	}
	return course, nil
}

// LoadStudents decodes a student batch document and enrolls the whole batch
// in a course, or none of it.
func (s *TermService) LoadStudents(ctx context.Context, term *models.Term, path string, courseID int) ([]models.Student, error) {
	text, err := s.read(ctx, path)
	if err != nil {
		return nil, err
	}
	students, err := s.codec.DecodeStudents(text)
	s.observeDecode(DocumentStudents, path, err)
	if err != nil {
		return nil, err
	}
	if err := s.enrollment.AddStudents(term, students, courseID); err != nil {
		return nil, err
	}
	return students, nil
}

// SaveCourseSchedule writes the term schedule, one course per line.
func (s *TermService) SaveCourseSchedule(ctx context.Context, term *models.Term, path string) error {
	schedule := s.enrollment.TermSchedule(term)
	s.observeEncode(DocumentSchedule)
	return s.write(ctx, path, schedule)
}

func (s *TermService) read(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := s.store.ReadText(path)
	if err != nil {
		s.logger.Error("document read failed", zap.String("path", path), zap.Error(err))
		return "", appErrors.Wrap(err, appErrors.ErrDocumentUnreadable.Code, appErrors.ErrDocumentUnreadable.Status, "unable to read document "+path)
	}
	return text, nil
}

func (s *TermService) write(ctx context.Context, path, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.store.WriteText(path, text); err != nil {
		s.logger.Error("document write failed", zap.String("path", path), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrDocumentUnwritable.Code, appErrors.ErrDocumentUnwritable.Status, "unable to write document "+path)
	}
	return nil
}

func (s *TermService) observeDecode(kind, path string, err error) {
	if err != nil {
		s.logger.Warn("document rejected", zap.String("kind", kind), zap.String("path", path), zap.Error(err))
	}
	if s.metrics != nil {
		s.metrics.ObserveDocumentDecode(kind, err)
	}
}

func (s *TermService) observeEncode(kind string) {
	if s.metrics != nil {
		s.metrics.ObserveDocumentEncode(kind)
	}
}
