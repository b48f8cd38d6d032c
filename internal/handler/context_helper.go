package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/sma-course-api/internal/codec"
	"github.com/noah-isme/sma-course-api/internal/models"
	appErrors "github.com/noah-isme/sma-course-api/pkg/errors"
	"github.com/noah-isme/sma-course-api/pkg/response"
)

// Presenter renders models into response DTOs.
type Presenter struct {
	Dates     codec.DateFormat
	Lifecycle func(models.Course) models.Lifecycle
}

// bindJSON decodes and validates the request body, writing a 400 on failure.
func bindJSON(c *gin.Context, validate *validator.Validate, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return false
	}
	if err := validate.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, err.Error()))
		return false
	}
	return true
}

// intParam reads a positive integer path parameter, writing a 400 on failure.
func intParam(c *gin.Context, name string) (int, bool) {
	value, err := strconv.Atoi(c.Param(name))
	if err != nil || value <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid "+name))
		return 0, false
	}
	return value, true
}
