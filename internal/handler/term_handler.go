package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/sma-course-api/internal/dto"
	"github.com/noah-isme/sma-course-api/internal/service"
	"github.com/noah-isme/sma-course-api/pkg/response"
)

// TermHandler exposes the loaded term.
type TermHandler struct {
	manager   *service.CourseManager
	validate  *validator.Validate
	presenter Presenter
}

// NewTermHandler constructs a term handler.
func NewTermHandler(manager *service.CourseManager, validate *validator.Validate, presenter Presenter) *TermHandler {
	return &TermHandler{manager: manager, validate: validate, presenter: presenter}
}

// Get godoc
// @Summary Get loaded term
// @Tags Term
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /term [get]
func (h *TermHandler) Get(c *gin.Context) {
	term, err := h.manager.Term()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewTermResponse(term, h.presenter.Dates, h.presenter.Lifecycle))
}

// Document godoc
// @Summary Get encoded term document
// @Tags Term
// @Produce plain
// @Success 200 {string} string
// @Router /term/document [get]
func (h *TermHandler) Document(c *gin.Context) {
	document, err := h.manager.Document()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Text(c, http.StatusOK, document)
}

// Start godoc
// @Summary Start an empty term
// @Tags Term
// @Accept json
// @Produce json
// @Param payload body dto.StartTermRequest true "Term code"
// @Success 201 {object} response.Envelope
// @Router /term [post]
func (h *TermHandler) Start(c *gin.Context) {
	var req dto.StartTermRequest
	if !bindJSON(c, h.validate, &req) {
		return
	}
	term, err := h.manager.StartTerm(c.Request.Context(), req.TermCode)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewTermResponse(term, h.presenter.Dates, h.presenter.Lifecycle))
}

// Load godoc
// @Summary Load term document
// @Tags Term
// @Accept json
// @Produce json
// @Param payload body dto.PathRequest true "Document path"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /term/load [post]
func (h *TermHandler) Load(c *gin.Context) {
	var req dto.PathRequest
	if !bindJSON(c, h.validate, &req) {
		return
	}
	term, err := h.manager.LoadTerm(c.Request.Context(), req.Path)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewTermResponse(term, h.presenter.Dates, h.presenter.Lifecycle))
}

// Save godoc
// @Summary Save term document
// @Tags Term
// @Accept json
// @Param payload body dto.PathRequest true "Document path"
// @Success 204
// @Router /term/save [post]
func (h *TermHandler) Save(c *gin.Context) {
	var req dto.PathRequest
	if !bindJSON(c, h.validate, &req) {
		return
	}
	if err := h.manager.SaveTerm(c.Request.Context(), req.Path); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
