package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/sma-course-api/internal/dto"
	"github.com/noah-isme/sma-course-api/internal/service"
	appErrors "github.com/noah-isme/sma-course-api/pkg/errors"
	"github.com/noah-isme/sma-course-api/pkg/response"
)

// ScheduleHandler serves the term schedule and its exports.
type ScheduleHandler struct {
	manager  *service.CourseManager
	exports  *service.ScheduleExportService
	validate *validator.Validate
}

// NewScheduleHandler constructs a schedule handler.
func NewScheduleHandler(manager *service.CourseManager, exports *service.ScheduleExportService, validate *validator.Validate) *ScheduleHandler {
	return &ScheduleHandler{manager: manager, exports: exports, validate: validate}
}

// Term godoc
// @Summary Term schedule, one course per line
// @Tags Schedule
// @Produce plain
// @Success 200 {string} string
// @Router /schedule [get]
func (h *ScheduleHandler) Term(c *gin.Context) {
	schedule, err := h.manager.TermSchedule(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Text(c, http.StatusOK, schedule)
}

// Save godoc
// @Summary Write term schedule to a file
// @Tags Schedule
// @Accept json
// @Param payload body dto.PathRequest true "Output path"
// @Success 204
// @Router /schedule/save [post]
func (h *ScheduleHandler) Save(c *gin.Context) {
	var req dto.PathRequest
	if !bindJSON(c, h.validate, &req) {
		return
	}
	if err := h.manager.SaveCourseSchedule(c.Request.Context(), req.Path); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Export term schedule or a course roster
// @Tags Schedule
// @Produce text/csv,application/pdf
// @Param format query string false "csv or pdf"
// @Param courseId query int false "Export this course roster instead of the schedule"
// @Success 200 {file} file
// @Router /schedule/export [get]
func (h *ScheduleHandler) Export(c *gin.Context) {
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}

	var result *service.ExportResult
	if raw := c.Query("courseId"); raw != "" {
		courseID, convErr := strconv.Atoi(raw)
		if convErr != nil || courseID <= 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid courseId"))
			return
		}
		result, err = h.exports.ExportRoster(c.Request.Context(), courseID, format)
	} else {
		result, err = h.exports.ExportSchedule(c.Request.Context(), format)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.Format.ContentType(), result.Data)
}
