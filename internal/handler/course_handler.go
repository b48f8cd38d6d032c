package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/sma-course-api/internal/dto"
	"github.com/noah-isme/sma-course-api/internal/service"
	appErrors "github.com/noah-isme/sma-course-api/pkg/errors"
	"github.com/noah-isme/sma-course-api/pkg/response"
)

// CourseHandler manages courses of the loaded term.
type CourseHandler struct {
	manager   *service.CourseManager
	validate  *validator.Validate
	presenter Presenter
}

// NewCourseHandler constructs a course handler.
func NewCourseHandler(manager *service.CourseManager, validate *validator.Validate, presenter Presenter) *CourseHandler {
	return &CourseHandler{manager: manager, validate: validate, presenter: presenter}
}

// Create godoc
// @Summary Add course
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body dto.CreateCourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	var req dto.CreateCourseRequest
	if !bindJSON(c, h.validate, &req) {
		return
	}
	course, err := req.ToModel(h.presenter.Dates)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, err.Error()))
		return
	}
	if err := h.manager.AddCourse(c.Request.Context(), course); err != nil {
		response.Error(c, err)
		return
	}
	h.respondCourse(c, http.StatusCreated, course.Info().ID)
}

// Load godoc
// @Summary Load course document into the term
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body dto.PathRequest true "Document path"
// @Success 201 {object} response.Envelope
// @Router /courses/load [post]
func (h *CourseHandler) Load(c *gin.Context) {
	var req dto.PathRequest
	if !bindJSON(c, h.validate, &req) {
		return
	}
	course, err := h.manager.LoadCourse(c.Request.Context(), req.Path)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewCourseResponse(course, h.presenter.Dates, h.presenter.Lifecycle(course)))
}

// Get godoc
// @Summary Get course
// @Tags Courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	h.respondCourse(c, http.StatusOK, id)
}

// Delete godoc
// @Summary Remove course
// @Tags Courses
// @Param id path int true "Course ID"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /courses/{id} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	if err := h.manager.RemoveCourse(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Schedule godoc
// @Summary Course schedule line
// @Tags Courses
// @Produce plain
// @Param id path int true "Course ID"
// @Success 200 {string} string
// @Router /courses/{id}/schedule [get]
func (h *CourseHandler) Schedule(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	schedule, err := h.manager.CourseSchedule(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Text(c, http.StatusOK, schedule)
}

// AverageGPA godoc
// @Summary Course gradebook average
// @Tags Courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/average-gpa [get]
func (h *CourseHandler) AverageGPA(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	avg, err := h.manager.AverageGPA(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.AverageGPAResponse{CourseID: id, AverageGPA: avg})
}

func (h *CourseHandler) respondCourse(c *gin.Context, status int, id int) {
	course, err := h.manager.GetCourse(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, status, dto.NewCourseResponse(course, h.presenter.Dates, h.presenter.Lifecycle(course)))
}
