package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors sharing the same code, so clones of a sentinel satisfy
// errors.Is against the sentinel.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrPreconditionFailed = New("PRECONDITION_FAILED", http.StatusPreconditionFailed, "precondition failed")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// Document errors raised while decoding or persisting term documents.
var (
	ErrMalformedDocument  = New("MALFORMED_DOCUMENT", http.StatusUnprocessableEntity, "malformed document")
	ErrNoCourses          = New("NO_COURSES", http.StatusUnprocessableEntity, "term document has no courses")
	ErrDocumentUnreadable = New("DOCUMENT_UNREADABLE", http.StatusNotFound, "unable to read document")
	ErrDocumentUnwritable = New("DOCUMENT_UNWRITABLE", http.StatusInternalServerError, "unable to write document")
	ErrNoTermLoaded       = New("NO_TERM_LOADED", http.StatusPreconditionFailed, "no term loaded")
)

// Enrollment errors raised by the capacity and lifecycle rules.
var (
	ErrTermFull           = New("TERM_CAPACITY_EXCEEDED", http.StatusConflict, "the maximum number of courses per term has been reached")
	ErrCourseFull         = New("COURSE_CAPACITY_EXCEEDED", http.StatusConflict, "the maximum number of students has been reached")
	ErrCourseStarted      = New("COURSE_ALREADY_STARTED", http.StatusConflict, "course has already started")
	ErrCourseEnded        = New("COURSE_ALREADY_ENDED", http.StatusConflict, "course has already ended")
	ErrStudentNotEnrolled = New("STUDENT_NOT_ENROLLED", http.StatusNotFound, "student not enrolled in course")
	ErrDuplicateCourse    = New("DUPLICATE_COURSE", http.StatusConflict, "course already exists in term")
	ErrDuplicateStudent   = New("DUPLICATE_STUDENT", http.StatusConflict, "student already enrolled in course")
)

// IsCapacity reports whether err is a term or course capacity violation.
func IsCapacity(err error) bool {
	return errors.Is(err, ErrTermFull) || errors.Is(err, ErrCourseFull)
}

// IsLifecycle reports whether err was raised because a course already started or ended.
func IsLifecycle(err error) bool {
	return errors.Is(err, ErrCourseStarted) || errors.Is(err, ErrCourseEnded)
}

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Malformed builds a MALFORMED_DOCUMENT error with a formatted message.
func Malformed(cause error, format string, args ...interface{}) *Error {
	return Wrap(cause, ErrMalformedDocument.Code, ErrMalformedDocument.Status, fmt.Sprintf(format, args...))
}
