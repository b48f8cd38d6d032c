package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-course-api/internal/dto"
	"github.com/noah-isme/sma-course-api/internal/service"
	"github.com/noah-isme/sma-course-api/pkg/response"
)

// SnapshotHandler archives and restores term documents.
type SnapshotHandler struct {
	snapshots *service.SnapshotService
	presenter Presenter
}

// NewSnapshotHandler constructs a snapshot handler.
func NewSnapshotHandler(snapshots *service.SnapshotService, presenter Presenter) *SnapshotHandler {
	return &SnapshotHandler{snapshots: snapshots, presenter: presenter}
}

// Create godoc
// @Summary Archive the loaded term
// @Tags Snapshots
// @Produce json
// @Success 202 {object} response.Envelope
// @Router /snapshots [post]
func (h *SnapshotHandler) Create(c *gin.Context) {
	ticket, err := h.snapshots.Archive(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, ticket)
}

// List godoc
// @Summary List archived snapshots
// @Tags Snapshots
// @Produce json
// @Param termCode query string false "Filter by term code"
// @Param limit query int false "Maximum rows"
// @Success 200 {object} response.Envelope
// @Router /snapshots [get]
func (h *SnapshotHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	snapshots, err := h.snapshots.List(c.Request.Context(), c.Query("termCode"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshots, map[string]interface{}{"count": len(snapshots)})
}

// Restore godoc
// @Summary Replace the loaded term with a snapshot
// @Tags Snapshots
// @Produce json
// @Param id path string true "Snapshot ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /snapshots/{id}/restore [post]
func (h *SnapshotHandler) Restore(c *gin.Context) {
	term, err := h.snapshots.Restore(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewTermResponse(term, h.presenter.Dates, h.presenter.Lifecycle))
}
