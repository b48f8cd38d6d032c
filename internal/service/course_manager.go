package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-course-api/internal/models"
	appErrors "github.com/noah-isme/sma-course-api/pkg/errors"
)

type termGauge interface {
	SetLoadedCourses(n int)
}

// CourseManager owns the term loaded by the running process. It serializes
// access to the term for concurrent HTTP callers; the enrollment engine and
// codec it delegates to are not safe for concurrent use on their own.
type CourseManager struct {
	mu         sync.RWMutex
	term       *models.Term
	terms      *TermService
	enrollment *EnrollmentService
	cache      *CacheService
	gauge      termGauge
	logger     *zap.Logger
}

// NewCourseManager constructs a manager with no term loaded.
func NewCourseManager(terms *TermService, enrollment *EnrollmentService, cache *CacheService, gauge termGauge, logger *zap.Logger) *CourseManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseManager{terms: terms, enrollment: enrollment, cache: cache, gauge: gauge, logger: logger}
}

// Loaded reports whether a term is loaded.
func (m *CourseManager) Loaded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.term != nil
}

// Term returns a copy of the loaded term.
func (m *CourseManager) Term() (*models.Term, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.term == nil {
		return nil, noTermLoaded()
	}
	return m.term.Clone(), nil
}

// StartTerm replaces the loaded term with an empty one.
func (m *CourseManager) StartTerm(ctx context.Context, code string) (*models.Term, error) {
	return m.replace(ctx, models.NewTerm(code))
}

// LoadTerm replaces the loaded term with the one decoded from path. The
// current term is kept when the document cannot be loaded.
func (m *CourseManager) LoadTerm(ctx context.Context, path string) (*models.Term, error) {
	term, err := m.terms.LoadTerm(ctx, path)
	if err != nil {
		return nil, err
	}
	return m.replace(ctx, term)
}

// RestoreDocument replaces the loaded term with one decoded from an archived document.
func (m *CourseManager) RestoreDocument(ctx context.Context, document string) (*models.Term, error) {
	term, err := m.terms.DecodeTerm(document)
	if err != nil {
		return nil, err
	}
	return m.replace(ctx, term)
}

func (m *CourseManager) replace(ctx context.Context, term *models.Term) (*models.Term, error) {
	m.mu.Lock()
	previous := m.term
	m.term = term
	view := term.Clone()
	m.mu.Unlock()

	if previous != nil {
		m.invalidate(ctx, previous.Code)
	}
	m.changed(ctx, term)
	return view, nil
}

// Document encodes the loaded term.
func (m *CourseManager) Document() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.term == nil {
		return "", noTermLoaded()
	}
	return m.terms.EncodeTerm(m.term)
}

// Capture encodes the loaded term into an unsaved snapshot.
func (m *CourseManager) Capture() (models.TermSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.term == nil {
		return models.TermSnapshot{}, noTermLoaded()
	}
	document, err := m.terms.EncodeTerm(m.term)
	if err != nil {
		return models.TermSnapshot{}, err
	}
	return models.TermSnapshot{
		TermCode:    m.term.Code,
		CourseCount: len(m.term.Courses),
		Document:    document,
	}, nil
}

// SaveTerm writes the loaded term to path.
func (m *CourseManager) SaveTerm(ctx context.Context, path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.term == nil {
		return noTermLoaded()
	}
	return m.terms.SaveTerm(ctx, m.term, path)
}

// AddCourse adds a course to the loaded term. A course without a term code
// takes the loaded term's.
func (m *CourseManager) AddCourse(ctx context.Context, course models.Course) error {
	return m.mutate(ctx, func(term *models.Term) error {
		if course.Info().TermCode == "" {
			course.Info().TermCode = term.Code
		}
		return m.enrollment.AddCourse(term, course)
	})
}

// LoadCourse appends the course decoded from path.
func (m *CourseManager) LoadCourse(ctx context.Context, path string) (models.Course, error) {
	var loaded models.Course
	err := m.mutate(ctx, func(term *models.Term) error {
		course, err := m.terms.LoadCourse(ctx, term, path)
		loaded = course
		return err
	})
	if err != nil {
		return nil, err
	}
	return models.CloneCourse(loaded), nil
}

// RemoveCourse removes a course that has not started.
func (m *CourseManager) RemoveCourse(ctx context.Context, courseID int) error {
	return m.mutate(ctx, func(term *models.Term) error {
		return m.enrollment.RemoveCourse(term, courseID)
	})
}

// GetCourse returns a copy of a course.
func (m *CourseManager) GetCourse(courseID int) (models.Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.term == nil {
		return nil, noTermLoaded()
	}
	course, ok := m.term.Course(courseID)
	if !ok {
		return nil, courseNotFound(courseID)
	}
	return models.CloneCourse(course), nil
}

// AddStudent enrolls a student in a course. Unlike the engine, the manager
// reports unknown course ids as NOT_FOUND.
func (m *CourseManager) AddStudent(ctx context.Context, student models.Student, courseID int) error {
	return m.mutateCourse(ctx, courseID, func(term *models.Term) error {
		return m.enrollment.AddStudent(term, student, courseID)
	})
}

// LoadStudents enrolls the student batch decoded from path.
func (m *CourseManager) LoadStudents(ctx context.Context, path string, courseID int) ([]models.Student, error) {
	var loaded []models.Student
	err := m.mutateCourse(ctx, courseID, func(term *models.Term) error {
		students, err := m.terms.LoadStudents(ctx, term, path, courseID)
		loaded = students
		return err
	})
	return loaded, err
}

// RemoveStudent drops a student from a course that has not started.
func (m *CourseManager) RemoveStudent(ctx context.Context, studentID, courseID int) error {
	return m.mutate(ctx, func(term *models.Term) error {
		return m.enrollment.RemoveStudent(term, studentID, courseID)
	})
}

// ChangeStudentGPA records a grade for an enrolled student.
func (m *CourseManager) ChangeStudentGPA(ctx context.Context, studentID, courseID int, gpa float64) error {
	return m.mutateCourse(ctx, courseID, func(term *models.Term) error {
		return m.enrollment.ChangeStudentGPA(term, studentID, courseID, gpa)
	})
}

// AverageGPA averages a course gradebook.
func (m *CourseManager) AverageGPA(courseID int) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.term == nil {
		return 0, noTermLoaded()
	}
	return m.enrollment.AverageGPA(m.term, courseID)
}

// CourseSchedule renders one course schedule; unknown courses render "".
func (m *CourseManager) CourseSchedule(courseID int) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.term == nil {
		return "", noTermLoaded()
	}
	return m.enrollment.CourseSchedule(m.term, courseID), nil
}

// TermSchedule renders the schedule of every course, served from cache when possible.
func (m *CourseManager) TermSchedule(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.term == nil {
		return "", noTermLoaded()
	}
	return m.cache.Text(ctx, ScheduleCacheKey(m.term.Code), func() (string, error) {
		return m.enrollment.TermSchedule(m.term), nil
	})
}

// SaveCourseSchedule writes the term schedule to path.
func (m *CourseManager) SaveCourseSchedule(ctx context.Context, path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.term == nil {
		return noTermLoaded()
	}
	return m.terms.SaveCourseSchedule(ctx, m.term, path)
}

func (m *CourseManager) mutate(ctx context.Context, fn func(*models.Term) error) error {
	m.mu.Lock()
	if m.term == nil {
		m.mu.Unlock()
		return noTermLoaded()
	}
	term := m.term
	err := fn(term)
	m.mu.Unlock()
	if err != nil {
		return err
	}
	m.invalidate(ctx, term.Code)
	m.changed(ctx, term)
	return nil
}

// mutateCourse is mutate for operations whose target course must exist.
func (m *CourseManager) mutateCourse(ctx context.Context, courseID int, fn func(*models.Term) error) error {
	return m.mutate(ctx, func(term *models.Term) error {
		if term.CourseIndex(courseID) < 0 {
			return courseNotFound(courseID)
		}
		return fn(term)
	})
}

func (m *CourseManager) invalidate(ctx context.Context, code string) {
	_ = m.cache.Invalidate(ctx, TermCachePattern(code))
}

func (m *CourseManager) changed(_ context.Context, term *models.Term) {
	if m.gauge == nil {
		return
	}
	m.mu.RLock()
	n := len(term.Courses)
	m.mu.RUnlock()
	m.gauge.SetLoadedCourses(n)
}

func noTermLoaded() error {
	return appErrors.Clone(appErrors.ErrNoTermLoaded, "no term is loaded; load or start a term first")
}

func courseNotFound(courseID int) error {
	return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no course found with id: %d", courseID))
}
