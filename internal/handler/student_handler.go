package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/sma-course-api/internal/dto"
	"github.com/noah-isme/sma-course-api/internal/service"
	"github.com/noah-isme/sma-course-api/pkg/response"
)

// StudentHandler manages course rosters and grades.
type StudentHandler struct {
	manager  *service.CourseManager
	validate *validator.Validate
}

// NewStudentHandler constructs a student handler.
func NewStudentHandler(manager *service.CourseManager, validate *validator.Validate) *StudentHandler {
	return &StudentHandler{manager: manager, validate: validate}
}

// Add godoc
// @Summary Enroll student
// @Tags Students
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param payload body dto.StudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /courses/{id}/students [post]
func (h *StudentHandler) Add(c *gin.Context) {
	courseID, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req dto.StudentRequest
	if !bindJSON(c, h.validate, &req) {
		return
	}
	student := req.ToModel()
	if err := h.manager.AddStudent(c.Request.Context(), student, courseID); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Load godoc
// @Summary Enroll students from a document
// @Tags Students
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param payload body dto.PathRequest true "Document path"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id}/students/load [post]
func (h *StudentHandler) Load(c *gin.Context) {
	courseID, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req dto.PathRequest
	if !bindJSON(c, h.validate, &req) {
		return
	}
	students, err := h.manager.LoadStudents(c.Request.Context(), req.Path, courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.LoadStudentsResponse{CourseID: courseID, Students: students})
}

// Remove godoc
// @Summary Drop student
// @Tags Students
// @Param id path int true "Course ID"
// @Param studentId path int true "Student ID"
// @Success 204
// @Router /courses/{id}/students/{studentId} [delete]
func (h *StudentHandler) Remove(c *gin.Context) {
	courseID, ok := intParam(c, "id")
	if !ok {
		return
	}
	studentID, ok := intParam(c, "studentId")
	if !ok {
		return
	}
	if err := h.manager.RemoveStudent(c.Request.Context(), studentID, courseID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ChangeGPA godoc
// @Summary Record student grade
// @Tags Students
// @Accept json
// @Param id path int true "Course ID"
// @Param studentId path int true "Student ID"
// @Param payload body dto.GPARequest true "GPA"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /courses/{id}/students/{studentId}/gpa [put]
func (h *StudentHandler) ChangeGPA(c *gin.Context) {
	courseID, ok := intParam(c, "id")
	if !ok {
		return
	}
	studentID, ok := intParam(c, "studentId")
	if !ok {
		return
	}
	var req dto.GPARequest
	if !bindJSON(c, h.validate, &req) {
		return
	}
	if err := h.manager.ChangeStudentGPA(c.Request.Context(), studentID, courseID, *req.GPA); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
