package service

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-course-api/internal/codec"
	"github.com/noah-isme/sma-course-api/internal/models"
	appErrors "github.com/noah-isme/sma-course-api/pkg/errors"
)

// Enrollment operation names used in logs and metrics.
const (
	OpAddCourse        = "add_course"
	OpRemoveCourse     = "remove_course"
	OpAddStudent       = "add_student"
	OpAddStudents      = "add_students"
	OpRemoveStudent    = "remove_student"
	OpChangeStudentGPA = "change_student_gpa"
	OpLoadCourse       = "load_course"
)

type enrollmentMetrics interface {
	RecordEnrollmentRejection(operation, reason string)
	RecordEnrollmentMutation(operation string)
}

// EnrollmentConfig tunes the enrollment engine.
type EnrollmentConfig struct {
	// Now is the clock used to derive course lifecycle; defaults to time.Now.
	Now func() time.Time
	// Dates formats dates embedded in error messages.
	Dates codec.DateFormat
}

// EnrollmentService enforces term and course capacity plus lifecycle rules
// on an in-memory term. It holds no term state and performs no locking.
type EnrollmentService struct {
	now     func() time.Time
	dates   codec.DateFormat
	metrics enrollmentMetrics
	logger  *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(cfg EnrollmentConfig, metrics enrollmentMetrics, logger *zap.Logger) *EnrollmentService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{now: cfg.Now, dates: cfg.Dates, metrics: metrics, logger: logger}
}

// Lifecycle reports the current lifecycle of a course.
func (s *EnrollmentService) Lifecycle(course models.Course) models.Lifecycle {
	return course.Info().Lifecycle(s.now())
}

// AddCourse appends a course that has not started yet to the term.
func (s *EnrollmentService) AddCourse(term *models.Term, course models.Course) error {
	if course == nil {
		return s.reject(OpAddCourse, appErrors.Clone(appErrors.ErrValidation, "course is required"))
	}
	switch s.Lifecycle(course) {
	case models.LifecycleInProgress:
		return s.reject(OpAddCourse, appErrors.Clone(appErrors.ErrCourseStarted, "cannot add a course that has already started or ended"))
	case models.LifecycleEnded:
		return s.reject(OpAddCourse, appErrors.Clone(appErrors.ErrCourseEnded, "cannot add a course that has already started or ended"))
	}
	return s.appendCourse(OpAddCourse, term, course)
}

// RestoreCourse appends a persisted course without the lifecycle gate.
func (s *EnrollmentService) RestoreCourse(term *models.Term, course models.Course) error {
	return s.appendCourse(OpLoadCourse, term, course)
}

func (s *EnrollmentService) appendCourse(op string, term *models.Term, course models.Course) error {
	if len(term.Courses) >= models.MaxCoursesPerTerm {
		return s.reject(op, appErrors.Clone(appErrors.ErrTermFull, fmt.Sprintf("the maximum number of courses per term is %d", models.MaxCoursesPerTerm)))
	}
	id := course.Info().ID
	if term.CourseIndex(id) >= 0 {
		return s.reject(op, appErrors.Clone(appErrors.ErrDuplicateCourse, fmt.Sprintf("course with id '%d' already exists in term %s", id, term.Code)))
	}
	if n := len(course.Info().Students); n > course.Capacity() {
		return s.reject(op, appErrors.Clone(appErrors.ErrCourseFull, fmt.Sprintf("course with id '%d' holds %d students, the maximum number of students is %d", id, n, course.Capacity())))
	}
	term.Courses = append(term.Courses, course)
	s.mutated(op, zap.Int("course_id", id))
	return nil
}

// RemoveCourse deletes a course that has not started. Unknown ids are ignored.
func (s *EnrollmentService) RemoveCourse(term *models.Term, courseID int) error {
	idx := term.CourseIndex(courseID)
	if idx < 0 {
		return nil
	}
	if s.Lifecycle(term.Courses[idx]) != models.LifecycleNotStarted {
		return s.reject(OpRemoveCourse, appErrors.Clone(appErrors.ErrCourseStarted, fmt.Sprintf("unable to delete course with id '%d' because it has already started", courseID)))
	}
	term.Courses = append(term.Courses[:idx], term.Courses[idx+1:]...)
	s.mutated(OpRemoveCourse, zap.Int("course_id", courseID))
	return nil
}

// AddStudent enrolls a student. Unknown course ids are ignored.
func (s *EnrollmentService) AddStudent(term *models.Term, student models.Student, courseID int) error {
	course, ok := term.Course(courseID)
	if !ok {
		return nil
	}
	if err := s.admit(OpAddStudent, course, []models.Student{student}); err != nil {
		return err
	}
	info := course.Info()
	info.Students = append(info.Students, student)
	s.mutated(OpAddStudent, zap.Int("course_id", courseID), zap.Int("student_id", student.ID))
	return nil
}

// AddStudents enrolls a batch of students. The batch is rejected as a whole
// when any guard fails, leaving the roster unchanged.
func (s *EnrollmentService) AddStudents(term *models.Term, students []models.Student, courseID int) error {
	course, ok := term.Course(courseID)
	if !ok {
		return nil
	}
	if err := s.admit(OpAddStudents, course, students); err != nil {
		return err
	}
	if len(students) == 0 {
		return nil
	}
	info := course.Info()
	info.Students = append(info.Students, students...)
	s.mutated(OpAddStudents, zap.Int("course_id", courseID), zap.Int("count", len(students)))
	return nil
}

func (s *EnrollmentService) admit(op string, course models.Course, incoming []models.Student) error {
	info := course.Info()
	if s.Lifecycle(course) == models.LifecycleEnded {
		return s.reject(op, appErrors.Clone(appErrors.ErrCourseEnded, fmt.Sprintf("unable to add students to this course, it has already ended on %s", s.dates.Format(info.EndDate))))
	}
	if len(info.Students)+len(incoming) > course.Capacity() {
		return s.reject(op, appErrors.Clone(appErrors.ErrCourseFull, fmt.Sprintf("the maximum number of students (%d) has been reached", course.Capacity())))
	}
	seen := make(map[int]struct{}, len(incoming))
	for _, student := range incoming {
		_, dup := seen[student.ID]
		if dup || info.HasStudent(student.ID) {
			return s.reject(op, appErrors.Clone(appErrors.ErrDuplicateStudent, fmt.Sprintf("student with id '%d' is already enrolled in course %d", student.ID, info.ID)))
		}
		seen[student.ID] = struct{}{}
	}
	return nil
}

// RemoveStudent drops a student from a course that has not started. Unknown
// course or student ids are ignored. Gradebook entries are kept.
func (s *EnrollmentService) RemoveStudent(term *models.Term, studentID, courseID int) error {
	course, ok := term.Course(courseID)
	if !ok {
		return nil
	}
	info := course.Info()
	if s.Lifecycle(course) != models.LifecycleNotStarted {
		return s.reject(OpRemoveStudent, appErrors.Clone(appErrors.ErrCourseStarted, fmt.Sprintf("unable to remove students, this course has already started on %s", s.dates.Format(info.StartDate))))
	}
	idx := info.StudentIndex(studentID)
	if idx < 0 {
		return nil
	}
	info.Students = append(info.Students[:idx], info.Students[idx+1:]...)
	s.mutated(OpRemoveStudent, zap.Int("course_id", courseID), zap.Int("student_id", studentID))
	return nil
}

// ChangeStudentGPA records a gradebook entry for an enrolled student.
// Unknown course ids are ignored.
func (s *EnrollmentService) ChangeStudentGPA(term *models.Term, studentID, courseID int, gpa float64) error {
	course, ok := term.Course(courseID)
	if !ok {
		return nil
	}
	info := course.Info()
	if !info.HasStudent(studentID) {
		return s.reject(OpChangeStudentGPA, appErrors.Clone(appErrors.ErrStudentNotEnrolled, fmt.Sprintf("no student found with id: %d", studentID)))
	}
	info.Gradebook.Set(studentID, gpa)
	s.mutated(OpChangeStudentGPA, zap.Int("course_id", courseID), zap.Int("student_id", studentID))
	return nil
}

// AverageGPA averages the gradebook of a course; an empty gradebook averages 0.
func (s *EnrollmentService) AverageGPA(term *models.Term, courseID int) (float64, error) {
	course, ok := term.Course(courseID)
	if !ok {
		return 0, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no course found with id: %d", courseID))
	}
	return course.Info().Gradebook.Average(), nil
}

// CourseSchedule renders one course schedule, or "" for an unknown course.
func (s *EnrollmentService) CourseSchedule(term *models.Term, courseID int) string {
	course, ok := term.Course(courseID)
	if !ok {
		return ""
	}
	return course.Schedule()
}

// TermSchedule renders every course schedule, one per line.
func (s *EnrollmentService) TermSchedule(term *models.Term) string {
	schedules := make([]string, 0, len(term.Courses))
	for _, course := range term.Courses {
		schedules = append(schedules, course.Schedule())
	}
	return strings.Join(schedules, "\n")
}

func (s *EnrollmentService) reject(op string, err *appErrors.Error) error {
	s.logger.Debug("enrollment rejected", zap.String("operation", op), zap.String("reason", err.Code), zap.String("message", err.Message))
	if s.metrics != nil {
		s.metrics.RecordEnrollmentRejection(op, err.Code)
	}
	return err
}

func (s *EnrollmentService) mutated(op string, fields ...zap.Field) {
	s.logger.Debug("enrollment updated", append([]zap.Field{zap.String("operation", op)}, fields...)...)
	if s.metrics != nil {
		s.metrics.RecordEnrollmentMutation(op)
	}
}
